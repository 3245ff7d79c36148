package model

import "poly_chat_client/pkg/constants"

// UserInfo 用户资料，对应 /api/profile 和 profile_updated 推送
type UserInfo struct {
	WalletAddress string `json:"walletAddress"`
	DisplayName   string `json:"displayName"`
	Avatar        string `json:"avatar"`
	Bio           string `json:"bio,omitempty"`
	LastActive    string `json:"lastActive,omitempty"`
	CreatedAt     string `json:"createdAt,omitempty"`
}

// DefaultDisplayName 服务端未设置昵称时使用的 "User 0x1234"
func DefaultDisplayName(wallet string) string {
	if len(wallet) > constants.SHORT_ADDRESS_PREFIX {
		wallet = wallet[:constants.SHORT_ADDRESS_PREFIX]
	}
	return "User " + wallet
}

// NameOrDefault 返回昵称，为空时回退到默认昵称
func (u UserInfo) NameOrDefault() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return DefaultDisplayName(u.WalletAddress)
}
