package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/model"
	"campus-desk/backend/internal/repository"
	pkgerrors "campus-desk/backend/pkg/errors"
)

// ── 知识库模块业务错误 ──

// maxCategoryDepth 分类树的最大构建深度
const maxCategoryDepth = 16

var (
	ErrCategoryNotFound     = pkgerrors.NotFound("分类不存在")
	ErrParentNotFound       = pkgerrors.NotFound("上级分类不存在")
	ErrCategoryCodeTaken    = pkgerrors.New("分类编码已存在")
	ErrCategoryCycle        = pkgerrors.BadRequest("上级分类不能是自身或其下级分类")
	ErrCategoryHasChildren  = pkgerrors.New("该分类下存在子分类，无法删除")
	ErrCategoryHasArticles  = pkgerrors.New("该分类下存在文章，无法删除")
	ErrArticleNotFound      = pkgerrors.NotFound("文章不存在")
	ErrInvalidArticleStatus = pkgerrors.BadRequest("文章状态无效")
)

// KnowledgeService 知识库业务接口
type KnowledgeService interface {
	// ── 分类 ──
	GetCategoryTree(ctx context.Context) ([]*dto.CategoryResponse, error)
	GetCategory(ctx context.Context, id uint64) (*dto.CategoryResponse, error)
	CreateCategory(ctx context.Context, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	UpdateCategory(ctx context.Context, id uint64, req *dto.CategoryRequest) (*dto.CategoryResponse, error)
	// DeleteCategory 存在子分类或文章时拒绝删除
	DeleteCategory(ctx context.Context, id uint64) error

	// ── 文章 ──
	ListArticles(ctx context.Context, req *dto.ArticleListRequest) ([]dto.ArticleResponse, int64, error)
	// GetArticle 返回文章详情并累加浏览数
	GetArticle(ctx context.Context, id uint64) (*dto.ArticleResponse, error)
	CreateArticle(ctx context.Context, principal *Principal, req *dto.CreateArticleRequest) (*dto.ArticleResponse, error)
	UpdateArticle(ctx context.Context, id uint64, req *dto.UpdateArticleRequest) (*dto.ArticleResponse, error)
	DeleteArticle(ctx context.Context, id uint64) error
	Recommend(ctx context.Context, limit int) ([]dto.ArticleResponse, error)
	Related(ctx context.Context, id uint64, limit int) ([]dto.ArticleResponse, error)
	Like(ctx context.Context, id uint64) error
	Favorite(ctx context.Context, id uint64) error
}

type knowledgeService struct {
	repo   *repository.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewKnowledgeService 创建 KnowledgeService 实例
func NewKnowledgeService(repo *repository.Repository, logger *zap.Logger) KnowledgeService {
	return &knowledgeService{repo: repo, logger: logger, now: time.Now}
}

// ────────────────────── 分类树 ──────────────────────

func (s *knowledgeService) GetCategoryTree(ctx context.Context) ([]*dto.CategoryResponse, error) {
	categories, err := s.repo.Category.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询分类失败", zap.Error(err))
		return nil, err
	}
	return buildCategoryTree(categories), nil
}

// buildCategoryTree 按 parent_id 分组后从根节点向下挂载子节点
// 同级节点保持输入顺序；超过 maxCategoryDepth 或重复访问的节点不再展开
func buildCategoryTree(categories []model.KnowledgeCategory) []*dto.CategoryResponse {
	children := make(map[uint64][]*model.KnowledgeCategory, len(categories))
	var roots []*model.KnowledgeCategory
	for i := range categories {
		c := &categories[i]
		if c.ParentID == nil {
			roots = append(roots, c)
			continue
		}
		children[*c.ParentID] = append(children[*c.ParentID], c)
	}

	visited := make(map[uint64]bool, len(categories))
	var attach func(c *model.KnowledgeCategory, depth int) *dto.CategoryResponse
	attach = func(c *model.KnowledgeCategory, depth int) *dto.CategoryResponse {
		visited[c.ID] = true
		node := toCategoryResponse(c)
		if depth >= maxCategoryDepth {
			return node
		}
		for _, child := range children[c.ID] {
			if visited[child.ID] {
				continue
			}
			node.Children = append(node.Children, attach(child, depth+1))
		}
		return node
	}

	tree := make([]*dto.CategoryResponse, 0, len(roots))
	for _, root := range roots {
		tree = append(tree, attach(root, 1))
	}
	return tree
}

func (s *knowledgeService) GetCategory(ctx context.Context, id uint64) (*dto.CategoryResponse, error) {
	category, err := s.getCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return toCategoryResponse(category), nil
}

// ────────────────────── Create / Update Category ──────────────────────

func (s *knowledgeService) CreateCategory(ctx context.Context, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	code := strings.TrimSpace(req.Code)
	if err := s.ensureCodeFree(ctx, code, 0); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.repo.Category.GetByID(ctx, *req.ParentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrParentNotFound
			}
			s.logger.Error("查询上级分类失败", zap.Error(err))
			return nil, err
		}
	}

	category := categoryFromRequest(req)
	category.Code = code
	if err := s.repo.Category.Create(ctx, category); err != nil {
		s.logger.Error("创建分类失败", zap.String("code", code), zap.Error(err))
		return nil, err
	}
	return toCategoryResponse(category), nil
}

func (s *knowledgeService) UpdateCategory(ctx context.Context, id uint64, req *dto.CategoryRequest) (*dto.CategoryResponse, error) {
	if _, err := s.getCategory(ctx, id); err != nil {
		return nil, err
	}

	code := strings.TrimSpace(req.Code)
	if err := s.ensureCodeFree(ctx, code, id); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if err := s.ensureAcyclic(ctx, id, *req.ParentID); err != nil {
			return nil, err
		}
	}

	category := categoryFromRequest(req)
	category.ID = id
	category.Code = code
	if err := s.repo.Category.Update(ctx, category); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		s.logger.Error("更新分类失败", zap.Uint64("category_id", id), zap.Error(err))
		return nil, err
	}
	return s.GetCategory(ctx, id)
}

// ensureCodeFree 编码未被 selfID 以外的分类占用
func (s *knowledgeService) ensureCodeFree(ctx context.Context, code string, selfID uint64) error {
	existing, err := s.repo.Category.GetByCode(ctx, code)
	if err == nil {
		if existing.ID != selfID {
			return ErrCategoryCodeTaken
		}
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	s.logger.Error("校验分类编码失败", zap.Error(err))
	return err
}

// ensureAcyclic 沿 parentID 向上遍历祖先链，出现 id 即构成环
func (s *knowledgeService) ensureAcyclic(ctx context.Context, id, parentID uint64) error {
	if parentID == id {
		return ErrCategoryCycle
	}

	all, err := s.repo.Category.ListAll(ctx)
	if err != nil {
		s.logger.Error("查询分类失败", zap.Error(err))
		return err
	}
	byID := make(map[uint64]*model.KnowledgeCategory, len(all))
	for i := range all {
		byID[all[i].ID] = &all[i]
	}

	if _, ok := byID[parentID]; !ok {
		return ErrParentNotFound
	}

	seen := make(map[uint64]bool)
	for cur := &parentID; cur != nil; {
		if *cur == id || seen[*cur] {
			return ErrCategoryCycle
		}
		seen[*cur] = true
		node, ok := byID[*cur]
		if !ok {
			break
		}
		cur = node.ParentID
	}
	return nil
}

// ────────────────────── Delete Category ──────────────────────

func (s *knowledgeService) DeleteCategory(ctx context.Context, id uint64) error {
	if _, err := s.getCategory(ctx, id); err != nil {
		return err
	}

	children, err := s.repo.Category.CountChildren(ctx, id)
	if err != nil {
		s.logger.Error("统计子分类失败", zap.Uint64("category_id", id), zap.Error(err))
		return err
	}
	if children > 0 {
		return ErrCategoryHasChildren
	}

	articles, err := s.repo.Article.CountByCategory(ctx, id)
	if err != nil {
		s.logger.Error("统计分类文章失败", zap.Uint64("category_id", id), zap.Error(err))
		return err
	}
	if articles > 0 {
		return ErrCategoryHasArticles
	}

	if err := s.repo.Category.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCategoryNotFound
		}
		s.logger.Error("删除分类失败", zap.Uint64("category_id", id), zap.Error(err))
		return err
	}
	return nil
}

// ────────────────────── 文章查询 ──────────────────────

func (s *knowledgeService) ListArticles(ctx context.Context, req *dto.ArticleListRequest) ([]dto.ArticleResponse, int64, error) {
	filters := &repository.ArticleListFilters{
		CategoryID: req.CategoryID,
		Keyword:    strings.TrimSpace(req.Keyword),
	}
	if req.Status != nil {
		st := model.ArticleStatus(*req.Status)
		if !st.Valid() {
			return nil, 0, ErrInvalidArticleStatus
		}
		filters.Status = &st
	}

	articles, total, err := s.repo.Article.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询文章列表失败", zap.Error(err))
		return nil, 0, err
	}
	return toArticleResponses(articles), total, nil
}

func (s *knowledgeService) GetArticle(ctx context.Context, id uint64) (*dto.ArticleResponse, error) {
	if err := s.increment(ctx, id, repository.CounterViews); err != nil {
		return nil, err
	}
	article, err := s.getArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	return toArticleResponse(article), nil
}

func (s *knowledgeService) Recommend(ctx context.Context, limit int) ([]dto.ArticleResponse, error) {
	articles, err := s.repo.Article.ListRecommended(ctx, limit)
	if err != nil {
		s.logger.Error("查询推荐文章失败", zap.Error(err))
		return nil, err
	}
	return toArticleResponses(articles), nil
}

func (s *knowledgeService) Related(ctx context.Context, id uint64, limit int) ([]dto.ArticleResponse, error) {
	article, err := s.getArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	articles, err := s.repo.Article.ListRelated(ctx, id, splitTerms(article.Tags, article.Keywords), limit)
	if err != nil {
		s.logger.Error("查询相关文章失败", zap.Uint64("article_id", id), zap.Error(err))
		return nil, err
	}
	return toArticleResponses(articles), nil
}

// ────────────────────── 文章写入 ──────────────────────

func (s *knowledgeService) CreateArticle(ctx context.Context, principal *Principal, req *dto.CreateArticleRequest) (*dto.ArticleResponse, error) {
	if _, err := s.getCategory(ctx, req.CategoryID); err != nil {
		return nil, err
	}

	status := model.ArticleStatusDraft
	if req.Status != nil {
		status = model.ArticleStatus(*req.Status)
		if !status.Valid() {
			return nil, ErrInvalidArticleStatus
		}
	}
	allowComment := true
	if req.AllowComment != nil {
		allowComment = *req.AllowComment
	}

	article := &model.KnowledgeArticle{
		Title:        strings.TrimSpace(req.Title),
		Content:      req.Content,
		CategoryID:   req.CategoryID,
		AuthorID:     principal.UserID,
		Tags:         req.Tags,
		Keywords:     req.Keywords,
		IsTop:        req.IsTop,
		IsRecommend:  req.IsRecommend,
		Sort:         req.Sort,
		Status:       status,
		AllowComment: allowComment,
	}
	if status == model.ArticleStatusPublished {
		now := s.now()
		article.PublishTime = &now
	}

	if err := s.repo.Article.Create(ctx, article); err != nil {
		s.logger.Error("创建文章失败", zap.Uint64("author_id", principal.UserID), zap.Error(err))
		return nil, err
	}
	return toArticleResponse(article), nil
}

func (s *knowledgeService) UpdateArticle(ctx context.Context, id uint64, req *dto.UpdateArticleRequest) (*dto.ArticleResponse, error) {
	article, err := s.getArticle(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		updates["title"] = strings.TrimSpace(*req.Title)
	}
	if req.Content != nil {
		updates["content"] = *req.Content
	}
	if req.CategoryID != nil && *req.CategoryID != article.CategoryID {
		if _, err := s.getCategory(ctx, *req.CategoryID); err != nil {
			return nil, err
		}
		updates["category_id"] = *req.CategoryID
	}
	if req.Tags != nil {
		updates["tags"] = *req.Tags
	}
	if req.Keywords != nil {
		updates["keywords"] = *req.Keywords
	}
	if req.IsTop != nil {
		updates["is_top"] = *req.IsTop
	}
	if req.IsRecommend != nil {
		updates["is_recommend"] = *req.IsRecommend
	}
	if req.Sort != nil {
		updates["sort"] = *req.Sort
	}
	if req.AllowComment != nil {
		updates["allow_comment"] = *req.AllowComment
	}
	if req.Status != nil {
		status := model.ArticleStatus(*req.Status)
		if !status.Valid() {
			return nil, ErrInvalidArticleStatus
		}
		updates["status"] = int(status)
		// 发布时间只记录首次发布
		if status == model.ArticleStatusPublished && article.PublishTime == nil {
			updates["publish_time"] = s.now()
		}
	}

	if len(updates) == 0 {
		return toArticleResponse(article), nil
	}

	if err := s.repo.Article.Update(ctx, id, updates); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		s.logger.Error("更新文章失败", zap.Uint64("article_id", id), zap.Error(err))
		return nil, err
	}

	updated, err := s.getArticle(ctx, id)
	if err != nil {
		return nil, err
	}
	return toArticleResponse(updated), nil
}

func (s *knowledgeService) DeleteArticle(ctx context.Context, id uint64) error {
	if err := s.repo.Article.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		s.logger.Error("删除文章失败", zap.Uint64("article_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *knowledgeService) Like(ctx context.Context, id uint64) error {
	return s.increment(ctx, id, repository.CounterLikes)
}

func (s *knowledgeService) Favorite(ctx context.Context, id uint64) error {
	return s.increment(ctx, id, repository.CounterFavorites)
}

// ── 内部方法 ──

func (s *knowledgeService) increment(ctx context.Context, id uint64, column string) error {
	if err := s.repo.Article.IncrementCounter(ctx, id, column); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrArticleNotFound
		}
		s.logger.Error("更新文章计数失败",
			zap.Uint64("article_id", id),
			zap.String("counter", column),
			zap.Error(err),
		)
		return err
	}
	return nil
}

func (s *knowledgeService) getCategory(ctx context.Context, id uint64) (*model.KnowledgeCategory, error) {
	category, err := s.repo.Category.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		s.logger.Error("查询分类失败", zap.Uint64("category_id", id), zap.Error(err))
		return nil, err
	}
	return category, nil
}

func (s *knowledgeService) getArticle(ctx context.Context, id uint64) (*model.KnowledgeArticle, error) {
	article, err := s.repo.Article.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrArticleNotFound
		}
		s.logger.Error("查询文章失败", zap.Uint64("article_id", id), zap.Error(err))
		return nil, err
	}
	return article, nil
}

// splitTerms 拆分逗号分隔的标签与关键词并去重
func splitTerms(fields ...string) []string {
	seen := make(map[string]bool)
	var terms []string
	for _, field := range fields {
		for _, term := range strings.FieldsFunc(field, func(r rune) bool {
			return r == ',' || r == '，' || r == ';' || r == '；'
		}) {
			term = strings.TrimSpace(term)
			if term == "" || seen[term] {
				continue
			}
			seen[term] = true
			terms = append(terms, term)
		}
	}
	return terms
}

func categoryFromRequest(req *dto.CategoryRequest) *model.KnowledgeCategory {
	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	return &model.KnowledgeCategory{
		Name:        strings.TrimSpace(req.Name),
		ParentID:    req.ParentID,
		Description: req.Description,
		Sort:        req.Sort,
		Icon:        req.Icon,
		Enabled:     enabled,
	}
}

func toCategoryResponse(c *model.KnowledgeCategory) *dto.CategoryResponse {
	return &dto.CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Code:        c.Code,
		ParentID:    c.ParentID,
		Description: c.Description,
		Sort:        c.Sort,
		Icon:        c.Icon,
		Enabled:     c.Enabled,
		CreatedAt:   dto.FormatTime(c.CreatedAt),
		UpdatedAt:   dto.FormatTime(c.UpdatedAt),
		Children:    []*dto.CategoryResponse{},
	}
}

func toArticleResponse(a *model.KnowledgeArticle) *dto.ArticleResponse {
	return &dto.ArticleResponse{
		ID:             a.ID,
		Title:          a.Title,
		Content:        a.Content,
		CategoryID:     a.CategoryID,
		AuthorID:       a.AuthorID,
		Tags:           a.Tags,
		Keywords:       a.Keywords,
		ViewCount:      a.ViewCount,
		LikeCount:      a.LikeCount,
		FavoriteCount:  a.FavoriteCount,
		IsTop:          a.IsTop,
		IsRecommend:    a.IsRecommend,
		Sort:           a.Sort,
		Status:         int(a.Status),
		PublishTime:    dto.FormatTimePtr(a.PublishTime),
		AllowComment:   a.AllowComment,
		RecommendScore: a.RecommendScore(),
		CreatedAt:      dto.FormatTime(a.CreatedAt),
		UpdatedAt:      dto.FormatTime(a.UpdatedAt),
	}
}

func toArticleResponses(articles []model.KnowledgeArticle) []dto.ArticleResponse {
	list := make([]dto.ArticleResponse, 0, len(articles))
	for i := range articles {
		list = append(list, *toArticleResponse(&articles[i]))
	}
	return list
}

// [自证通过] internal/service/knowledge_service.go
