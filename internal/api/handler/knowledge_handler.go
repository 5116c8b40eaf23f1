package handler

import (
	"github.com/gin-gonic/gin"

	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/model"
	"campus-desk/backend/internal/service"
	"campus-desk/backend/pkg/response"
)

// KnowledgeHandler 知识库 HTTP 处理器
type KnowledgeHandler struct {
	knowledgeSvc service.KnowledgeService
}

// NewKnowledgeHandler 创建 KnowledgeHandler
func NewKnowledgeHandler(knowledgeSvc service.KnowledgeService) *KnowledgeHandler {
	return &KnowledgeHandler{knowledgeSvc: knowledgeSvc}
}

// ── 分类 ──

// GetCategoryTree 分类树
// GET /api/knowledge/categories
func (h *KnowledgeHandler) GetCategoryTree(c *gin.Context) {
	tree, err := h.knowledgeSvc.GetCategoryTree(c.Request.Context())
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, tree)
}

// GetCategory 分类详情
// GET /api/knowledge/categories/:id
func (h *KnowledgeHandler) GetCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := h.knowledgeSvc.GetCategory(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, category)
}

// CreateCategory 创建分类
// POST /api/knowledge/categories
func (h *KnowledgeHandler) CreateCategory(c *gin.Context) {
	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	category, err := h.knowledgeSvc.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "创建成功", category)
}

// UpdateCategory 更新分类
// PUT /api/knowledge/categories/:id
func (h *KnowledgeHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	category, err := h.knowledgeSvc.UpdateCategory(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "更新成功", category)
}

// DeleteCategory 删除分类
// DELETE /api/knowledge/categories/:id
func (h *KnowledgeHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.knowledgeSvc.DeleteCategory(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "删除成功", nil)
}

// ── 文章 ──

// ListArticles 文章列表，未指定状态时只返回已发布文章
// GET /api/knowledge/articles?category_id=&keyword=&status=
func (h *KnowledgeHandler) ListArticles(c *gin.Context) {
	var req dto.ArticleListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)
		return
	}
	if req.Status == nil {
		published := int(model.ArticleStatusPublished)
		req.Status = &published
	}

	list, total, err := h.knowledgeSvc.ListArticles(c.Request.Context(), &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// GetArticle 文章详情（浏览数 +1）
// GET /api/knowledge/articles/:id
func (h *KnowledgeHandler) GetArticle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	article, err := h.knowledgeSvc.GetArticle(c.Request.Context(), id)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, article)
}

// CreateArticle 创建文章，作者为当前用户
// POST /api/knowledge/articles
func (h *KnowledgeHandler) CreateArticle(c *gin.Context) {
	principal, ok := MustGetPrincipal(c)
	if !ok {
		return
	}

	var req dto.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	article, err := h.knowledgeSvc.CreateArticle(c.Request.Context(), principal, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "创建成功", article)
}

// UpdateArticle 更新文章
// PUT /api/knowledge/articles/:id
func (h *KnowledgeHandler) UpdateArticle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.UpdateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	article, err := h.knowledgeSvc.UpdateArticle(c.Request.Context(), id, &req)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "更新成功", article)
}

// DeleteArticle 删除文章
// DELETE /api/knowledge/articles/:id
func (h *KnowledgeHandler) DeleteArticle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.knowledgeSvc.DeleteArticle(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "删除成功", nil)
}

// Recommend 推荐文章
// GET /api/knowledge/articles/recommend?limit=10
func (h *KnowledgeHandler) Recommend(c *gin.Context) {
	var req dto.LimitRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)
		return
	}

	list, err := h.knowledgeSvc.Recommend(c.Request.Context(), req.GetLimit())
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, list)
}

// Related 相关文章
// GET /api/knowledge/articles/:id/related?limit=5
func (h *KnowledgeHandler) Related(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dto.LimitRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)
		return
	}

	list, err := h.knowledgeSvc.Related(c.Request.Context(), id, req.GetLimit())
	if err != nil {
		handleError(c, err)
		return
	}
	response.OK(c, list)
}

// Like 点赞
// POST /api/knowledge/articles/:id/like
func (h *KnowledgeHandler) Like(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.knowledgeSvc.Like(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "点赞成功", nil)
}

// Favorite 收藏
// POST /api/knowledge/articles/:id/favorite
func (h *KnowledgeHandler) Favorite(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.knowledgeSvc.Favorite(c.Request.Context(), id); err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "收藏成功", nil)
}
