package request

// UpdateUserInfoRequest 更新个人资料 (POST /api/profile)
// 使用位置:
//   - gateway/api/profile.go: UpdateProfile
type UpdateUserInfoRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	DisplayName   string `json:"displayName" validate:"required,max=100"`
	Bio           string `json:"bio" validate:"max=500"`
	Avatar        string `json:"avatar,omitempty"`
}
