package respond

// AvatarRespond 上传头像响应 (POST /api/profile/avatar)
type AvatarRespond struct {
	Success bool   `json:"success"`
	Avatar  string `json:"avatar"`
}
