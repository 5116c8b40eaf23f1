package handler

import (
	"github.com/gin-gonic/gin"

	"campus-desk/backend/internal/dto"
	"campus-desk/backend/internal/service"
	"campus-desk/backend/pkg/response"
)

// FileHandler 附件 HTTP 处理器
type FileHandler struct {
	fileSvc service.FileService
}

// NewFileHandler 创建 FileHandler
func NewFileHandler(fileSvc service.FileService) *FileHandler {
	return &FileHandler{fileSvc: fileSvc}
}

// Upload 上传单个附件
// POST /api/files/upload  (multipart, 字段名 file)
func (h *FileHandler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		handleError(c, service.ErrNoFiles)
		return
	}

	fileURL, err := h.fileSvc.Upload(c.Request.Context(), fh)
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "上传成功", gin.H{"url": fileURL})
}

// BatchUpload 批量上传附件
// POST /api/files/batch-upload  (multipart, 字段名 files)
func (h *FileHandler) BatchUpload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		handleError(c, service.ErrNoFiles)
		return
	}

	urls, err := h.fileSvc.BatchUpload(c.Request.Context(), form.File["files"])
	if err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "上传成功", gin.H{"urls": urls})
}

// Delete 删除单个附件
// DELETE /api/files?file_url=xx
func (h *FileHandler) Delete(c *gin.Context) {
	var req dto.DeleteFileRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		handleBindError(c, err)
		return
	}

	if err := h.fileSvc.Delete(c.Request.Context(), req.FileURL); err != nil {
		handleError(c, err)
		return
	}
	response.OKWithMessage(c, "删除成功", nil)
}

// BatchDelete 批量删除附件，逐个执行并汇总失败项
// DELETE /api/files/batch
func (h *FileHandler) BatchDelete(c *gin.Context) {
	var req dto.BatchDeleteFileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handleBindError(c, err)
		return
	}

	result := h.fileSvc.BatchDelete(c.Request.Context(), req.FileURLs)
	response.OK(c, result)
}

// [自证通过] internal/api/handler/file_handler.go
