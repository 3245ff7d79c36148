package request

import "io"

// UploadFileRequest 上传文件或头像 (multipart)，大小上限 16MB
type UploadFileRequest struct {
	WalletAddress string    `json:"walletAddress" validate:"required"`
	FileName      string    `json:"fileName" validate:"required,max=255"`
	MimeType      string    `json:"mimeType"`
	Size          int64     `json:"size" validate:"gt=0,max=16777216"`
	Body          io.Reader `json:"-" validate:"required"`
}
