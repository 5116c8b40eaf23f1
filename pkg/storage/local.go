// Package storage 附件本地存储：按日期分目录保存，返回可公开访问的 URL
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound   = errors.New("文件不存在")
	ErrForeignURL = errors.New("文件地址不属于本存储")
)

// LocalStore 本地文件系统存储
type LocalStore struct {
	root      string
	urlPrefix string
	now       func() time.Time
}

// NewLocalStore 创建本地存储，root 不存在时自动创建
func NewLocalStore(root, urlPrefix string) (*LocalStore, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("解析存储目录失败: %w", err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("创建存储目录失败: %w", err)
	}
	if !strings.HasSuffix(urlPrefix, "/") {
		urlPrefix += "/"
	}
	return &LocalStore{root: abs, urlPrefix: urlPrefix, now: time.Now}, nil
}

// Root 返回存储根目录（绝对路径）
func (s *LocalStore) Root() string {
	return s.root
}

// Save 保存内容到 <root>/yyyy/MM/dd/<uuid><ext>，返回访问 URL
func (s *LocalStore) Save(ctx context.Context, ext string, r io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	rel := path.Join(s.now().Format("2006/01/02"), uuid.NewString()+ext)
	full := filepath.Join(s.root, filepath.FromSlash(rel))

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("创建日期目录失败: %w", err)
	}

	f, err := os.OpenFile(full, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("创建文件失败: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("写入文件失败: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(full)
		return "", fmt.Errorf("关闭文件失败: %w", err)
	}

	return s.urlPrefix + rel, nil
}

// Delete 根据 Save 返回的 URL 删除文件
func (s *LocalStore) Delete(ctx context.Context, fileURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(fileURL)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return ErrNotFound
		}
		return fmt.Errorf("删除文件失败: %w", err)
	}
	return nil
}

// resolve 将 URL 映射为根目录内的绝对路径，拒绝目录穿越
func (s *LocalStore) resolve(fileURL string) (string, error) {
	idx := strings.Index(fileURL, s.urlPrefix)
	if idx < 0 {
		return "", ErrForeignURL
	}
	rel := path.Clean("/" + fileURL[idx+len(s.urlPrefix):])
	if rel == "/" {
		return "", ErrForeignURL
	}

	full := filepath.Join(s.root, filepath.FromSlash(rel))
	within, err := filepath.Rel(s.root, full)
	if err != nil || within == "." || strings.HasPrefix(within, "..") {
		return "", ErrForeignURL
	}
	return full, nil
}
