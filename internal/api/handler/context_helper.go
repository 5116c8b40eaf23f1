package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"campus-desk/backend/internal/api/middleware"
	"campus-desk/backend/internal/api/validator"
	"campus-desk/backend/internal/service"
	pkgerrors "campus-desk/backend/pkg/errors"
	"campus-desk/backend/pkg/jwt"
	"campus-desk/backend/pkg/response"
)

// MustGetPrincipal 从 Gin 上下文中安全提取当前用户。
// 如果 JWT 中间件未正确注入，返回 false 并写入 401 响应。
// 调用方应在 ok=false 时直接 return。
func MustGetPrincipal(c *gin.Context) (*service.Principal, bool) {
	v, exists := c.Get(middleware.ContextKeyPrincipal)
	if !exists {
		response.Unauthorized(c, "未认证")
		return nil, false
	}
	p, ok := v.(*service.Principal)
	if !ok || p == nil {
		response.Unauthorized(c, "未认证")
		return nil, false
	}
	return p, true
}

// MustGetToken 提取当前请求携带的 token 及其声明
func MustGetToken(c *gin.Context) (string, *jwt.Claims, bool) {
	token := c.GetString(middleware.ContextKeyToken)
	v, _ := c.Get(middleware.ContextKeyClaims)
	claims, ok := v.(*jwt.Claims)
	if token == "" || !ok || claims == nil {
		response.Unauthorized(c, "未认证")
		return "", nil, false
	}
	return token, claims, true
}

// parseIDParam 解析路径中的正整数 ID，失败时写入 400
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, name+" 必须是正整数")
		return 0, false
	}
	return id, true
}

// handleBindError 请求参数绑定 / 校验失败
func handleBindError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(c, http.StatusRequestEntityTooLarge, "请求体过大")
		return
	}
	response.BadRequest(c, validator.Message(err))
}

// handleError 业务错误按自身 code 渲染，其余错误记录后返回 500
func handleError(c *gin.Context, err error) {
	if be, ok := pkgerrors.As(err); ok {
		response.Error(c, be.Code, be.Message)
		return
	}
	_ = c.Error(err)
	response.InternalError(c)
}
