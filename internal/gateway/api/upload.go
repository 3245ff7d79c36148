package api

import (
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/dto/respond"
	"poly_chat_client/internal/infrastructure/validate"
	"poly_chat_client/pkg/errorx"
)

// UploadFile POST /api/upload (multipart: file, walletAddress)
func (c *Client) UploadFile(ctx context.Context, req request.UploadFileRequest) (*respond.UploadFileRespond, error) {
	var rsp respond.UploadFileRespond
	if err := c.upload(ctx, "/api/upload", "file", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// UploadAvatar POST /api/profile/avatar (multipart: avatar, walletAddress)
func (c *Client) UploadAvatar(ctx context.Context, req request.UploadFileRequest) (*respond.AvatarRespond, error) {
	var rsp respond.AvatarRespond
	if err := c.upload(ctx, "/api/profile/avatar", "avatar", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// upload 通过 pipe 流式写 multipart，避免整个文件读入内存
func (c *Client) upload(ctx context.Context, path, field string, req request.UploadFileRequest, out any) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeParts(mw, field, req)
		if err == nil {
			err = mw.Close()
		}
		_ = pw.CloseWithError(err)
	}()

	httpReq, err := c.newRequest(ctx, http.MethodPost, path, nil, pr)
	if err != nil {
		_ = pr.Close()
		return err
	}
	httpReq.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(httpReq, out)
}

func writeParts(mw *multipart.Writer, field string, req request.UploadFileRequest) error {
	if err := mw.WriteField("walletAddress", req.WalletAddress); err != nil {
		return err
	}
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", multipart.FileContentDisposition(field, req.FileName))
	mime := req.MimeType
	if mime == "" {
		mime = "application/octet-stream"
	}
	h.Set("Content-Type", mime)
	part, err := mw.CreatePart(h)
	if err != nil {
		return err
	}
	n, err := io.Copy(part, io.LimitReader(req.Body, req.Size+1))
	if err != nil {
		return err
	}
	if n > req.Size {
		return errorx.New(errorx.CodeInvalidParam, "file is larger than declared size")
	}
	return nil
}
