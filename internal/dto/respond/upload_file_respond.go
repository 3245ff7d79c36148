package respond

// UploadFileRespond 上传文件响应 (POST /api/upload)
type UploadFileRespond struct {
	Success  bool   `json:"success"`
	FileUrl  string `json:"fileUrl"`
	FileName string `json:"fileName"`
}
