// Package localcache 提供进程内缓存，Redis 不可用时承担 Token 吊销列表
package localcache

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// ErrWriteDropped 缓存写入被丢弃（缓冲区满或准入策略拒绝）
var ErrWriteDropped = errors.New("本地吊销列表写入失败")

// Blacklist 基于 ristretto 的 token 吊销列表
// 仅在单实例部署下有效，多实例需使用 Redis
type Blacklist struct {
	cache *ristretto.Cache[string, struct{}]
}

// NewBlacklist 创建本地吊销列表，maxEntries 为可容纳的 token 数量上限
func NewBlacklist(maxEntries int64) (*Blacklist, error) {
	if maxEntries <= 0 {
		maxEntries = 100_000
	}
	cache, err := ristretto.NewCache(&ristretto.Config[string, struct{}]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &Blacklist{cache: cache}, nil
}

// Add 写入 token，到期后自动失效
func (b *Blacklist) Add(_ context.Context, token string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if !b.cache.SetWithTTL(token, struct{}{}, 1, ttl) {
		return ErrWriteDropped
	}
	b.cache.Wait()
	return nil
}

// Contains 检查 token 是否已被吊销
func (b *Blacklist) Contains(_ context.Context, token string) (bool, error) {
	_, ok := b.cache.Get(token)
	return ok, nil
}

// Close 释放缓存后台协程
func (b *Blacklist) Close() {
	b.cache.Close()
}
