package request

// UnhideRoomRequest 取消隐藏房间 (POST /api/rooms/unhide)
type UnhideRoomRequest struct {
	WalletAddress string `json:"walletAddress" validate:"required"`
	RoomId        string `json:"roomId" validate:"required"`
}
