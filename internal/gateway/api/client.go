// Package api 封装对服务端 REST 接口的调用
// 所有非 2xx 响应统一转换为 CodeRequest 错误，消息取自响应体的 error 字段
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"poly_chat_client/internal/dto/respond"
	"poly_chat_client/pkg/errorx"
)

// Client REST 客户端，可被多个协程并发使用
type Client struct {
	baseURL string
	http    *http.Client
}

// New 创建客户端
// baseURL: 服务端根地址，如 "http://127.0.0.1:5000"
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// getJSON GET 并解码
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	return c.doJSON(ctx, http.MethodGet, path, query, nil, out)
}

// postJSON POST JSON 体并解码
func (c *Client) postJSON(ctx context.Context, path string, body any, out any) error {
	return c.doJSON(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) doJSON(ctx context.Context, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return errorx.Wrapf(err, errorx.CodeInvalidParam, "encode %s %s", method, path)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, errorx.Wrapf(err, errorx.CodeRequest, "build request %s %s", method, path)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	return req, nil
}

// send 执行请求：网络错误和非 2xx 都是 RequestError
func (c *Client) send(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		zap.L().Warn("request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.String("request_id", req.Header.Get("X-Request-Id")),
			zap.Error(err))
		if errors.Is(err, context.Canceled) {
			return errorx.Wrap(err, errorx.CodeRequest, "Request cancelled")
		}
		return errorx.Wrap(err, errorx.CodeRequest, "Network error")
	}
	defer resp.Body.Close()

	zap.L().Debug("request done",
		zap.String("method", req.Method),
		zap.String("path", req.URL.Path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("cost", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errorx.Wrapf(err, errorx.CodeRequest, "Invalid response from %s", req.URL.Path)
	}
	return nil
}

// decodeError 从响应体提取可读原因，取不到时使用状态码
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var body respond.ErrorRespond
	reason := ""
	if json.Unmarshal(raw, &body) == nil {
		reason = body.Error
		if reason == "" {
			reason = body.Message
		}
	}
	if reason == "" {
		reason = fmt.Sprintf("Server responded with status: %d", resp.StatusCode)
	}
	return errorx.Wrap(fmt.Errorf("http status %d", resp.StatusCode), errorx.CodeRequest, reason)
}

func walletQuery(wallet string) url.Values {
	return url.Values{"walletAddress": {wallet}}
}
