package dto

// ── 附件 DTO ──

// DeleteFileRequest 删除单个附件（query 参数）
type DeleteFileRequest struct {
	FileURL string `form:"file_url" binding:"required,max=512"`
}

// BatchDeleteFileRequest 批量删除附件
type BatchDeleteFileRequest struct {
	FileURLs []string `json:"file_urls" binding:"required,min=1,max=50,dive,required,max=512"`
}

// BatchDeleteFileResponse 批量删除结果
type BatchDeleteFileResponse struct {
	Deleted int      `json:"deleted"`
	Failed  []string `json:"failed"`
}
