package dto

// ── 知识库分类 ──

// CategoryRequest 创建 / 更新分类请求（整体替换）
// parent_id 为空表示根分类
type CategoryRequest struct {
	Name        string  `json:"name"        binding:"required,notblank,max=50"`
	Code        string  `json:"code"        binding:"required,notblank,max=50"`
	ParentID    *uint64 `json:"parent_id"   binding:"omitempty,min=1"`
	Description string  `json:"description" binding:"omitempty,max=255"`
	Sort        int     `json:"sort"`
	Icon        string  `json:"icon"        binding:"omitempty,max=255"`
	Enabled     *bool   `json:"enabled"`
}

// CategoryResponse 分类节点（树形结构中 children 按 sort 降序）
type CategoryResponse struct {
	ID          uint64              `json:"id"`
	Name        string              `json:"name"`
	Code        string              `json:"code"`
	ParentID    *uint64             `json:"parent_id"`
	Description string              `json:"description"`
	Sort        int                 `json:"sort"`
	Icon        string              `json:"icon"`
	Enabled     bool                `json:"enabled"`
	CreatedAt   string              `json:"created_at"`
	UpdatedAt   string              `json:"updated_at"`
	Children    []*CategoryResponse `json:"children"`
}

// ── 知识库文章 ──

// CreateArticleRequest 创建文章请求
type CreateArticleRequest struct {
	Title        string `json:"title"         binding:"required,notblank,max=200"`
	Content      string `json:"content"       binding:"required,notblank"`
	CategoryID   uint64 `json:"category_id"   binding:"required,min=1"`
	Tags         string `json:"tags"          binding:"omitempty,max=255"`
	Keywords     string `json:"keywords"      binding:"omitempty,max=255"`
	IsTop        bool   `json:"is_top"`
	IsRecommend  bool   `json:"is_recommend"`
	Sort         int    `json:"sort"`
	Status       *int   `json:"status"        binding:"omitempty,min=0,max=2"`
	AllowComment *bool  `json:"allow_comment"`
}

// UpdateArticleRequest 更新文章请求（仅更新非 nil 字段）
type UpdateArticleRequest struct {
	Title        *string `json:"title"         binding:"omitempty,notblank,max=200"`
	Content      *string `json:"content"       binding:"omitempty,notblank"`
	CategoryID   *uint64 `json:"category_id"   binding:"omitempty,min=1"`
	Tags         *string `json:"tags"          binding:"omitempty,max=255"`
	Keywords     *string `json:"keywords"      binding:"omitempty,max=255"`
	IsTop        *bool   `json:"is_top"`
	IsRecommend  *bool   `json:"is_recommend"`
	Sort         *int    `json:"sort"`
	Status       *int    `json:"status"        binding:"omitempty,min=0,max=2"`
	AllowComment *bool   `json:"allow_comment"`
}

// ArticleListRequest 文章列表查询参数
type ArticleListRequest struct {
	PaginationRequest
	CategoryID *uint64 `form:"category_id" binding:"omitempty,min=1"`
	Keyword    string  `form:"keyword"     binding:"omitempty,max=100"`
	Status     *int    `form:"status"      binding:"omitempty,min=0,max=2"`
}

// LimitRequest 推荐 / 相关文章数量
type LimitRequest struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=50"`
}

// GetLimit 获取数量（默认 10）
func (r *LimitRequest) GetLimit() int {
	if r.Limit <= 0 {
		return 10
	}
	return r.Limit
}

// ArticleResponse 文章响应
type ArticleResponse struct {
	ID             uint64  `json:"id"`
	Title          string  `json:"title"`
	Content        string  `json:"content"`
	CategoryID     uint64  `json:"category_id"`
	AuthorID       uint64  `json:"author_id"`
	Tags           string  `json:"tags"`
	Keywords       string  `json:"keywords"`
	ViewCount      int     `json:"view_count"`
	LikeCount      int     `json:"like_count"`
	FavoriteCount  int     `json:"favorite_count"`
	IsTop          bool    `json:"is_top"`
	IsRecommend    bool    `json:"is_recommend"`
	Sort           int     `json:"sort"`
	Status         int     `json:"status"`
	PublishTime    *string `json:"publish_time"`
	AllowComment   bool    `json:"allow_comment"`
	RecommendScore float64 `json:"recommend_score"`
	CreatedAt      string  `json:"created_at"`
	UpdatedAt      string  `json:"updated_at"`
}

// [自证通过] internal/dto/knowledge.go
