package errorx

import (
	"errors"
	"fmt"
)

// CodeError 客户端错误：错误码 + 展示给用户的消息，可选地包装底层错误
type CodeError struct {
	Code  int
	Msg   string
	cause error
}

func (e *CodeError) Error() string {
	if e.cause == nil {
		return e.Msg
	}
	return e.Msg + ": " + e.cause.Error()
}

func (e *CodeError) Unwrap() error { return e.cause }

// New 不带底层错误
func New(code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg}
}

func Newf(code int, format string, args ...any) *CodeError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap 例如 errorx.Wrap(err, CodeRequest, "Failed to load friends")
func Wrap(err error, code int, msg string) *CodeError {
	return &CodeError{Code: code, Msg: msg, cause: err}
}

func Wrapf(err error, code int, format string, args ...any) *CodeError {
	return Wrap(err, code, fmt.Sprintf(format, args...))
}

// GetCode 非 CodeError 一律视为 CodeServerBusy
func GetCode(err error) int {
	if ce, ok := asCodeError(err); ok {
		return ce.Code
	}
	return CodeServerBusy
}

func asCodeError(err error) (*CodeError, bool) {
	var ce *CodeError
	ok := errors.As(err, &ce)
	return ce, ok
}

// Message 返回适合直接展示给用户的消息（不含底层错误细节）
func Message(err error) string {
	if err == nil {
		return ""
	}
	if ce, ok := asCodeError(err); ok {
		return ce.Msg
	}
	return err.Error()
}

// 错误码，1000 段沿用服务端约定，1020 起为客户端专用
const (
	CodeSuccess      = 1000 // 成功
	CodeInvalidParam = 1001 // 参数校验失败（ValidationError），在任何网络调用之前拒绝
	CodeServerBusy   = 1005 // 未知错误
	CodeUnauthorized = 1006 // 尚未获取身份
	CodeNotFound     = 1008 // 资源不存在
	CodeCacheError   = 1011 // 本地持久化存储错误
	CodeRequest      = 1020 // REST 请求失败（非 2xx 或网络错误）
	CodeTransport    = 1021 // 长连接断开或发送失败
)

// 常用错误
var (
	ErrInvalidParam = New(CodeInvalidParam, "Invalid parameter")
	ErrServerBusy   = New(CodeServerBusy, "Something went wrong")
	ErrNoIdentity   = New(CodeUnauthorized, "Wallet not connected")
	ErrNotConnected = New(CodeTransport, "Not connected to server")
)

// IsValidation 是否为参数校验错误
func IsValidation(err error) bool {
	return err != nil && GetCode(err) == CodeInvalidParam
}

// IsRequest 是否为 REST 请求错误
func IsRequest(err error) bool {
	return err != nil && GetCode(err) == CodeRequest
}

// IsTransport 是否为传输层错误
func IsTransport(err error) bool {
	return err != nil && GetCode(err) == CodeTransport
}

// IsNotFound 本地缓存或服务端资源不存在
func IsNotFound(err error) bool {
	ce, ok := asCodeError(err)
	return ok && ce.Code == CodeNotFound
}
