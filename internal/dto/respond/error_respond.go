package respond

// ErrorRespond 服务端非 2xx 响应体
// 使用位置:
//   - gateway/api/client.go: decodeError
type ErrorRespond struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
