package request

// PresenceRequest 上报在线状态 (POST /api/user/presence)
type PresenceRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	Name          string `json:"name"`
}
