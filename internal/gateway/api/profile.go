package api

import (
	"context"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/infrastructure/validate"
	"poly_chat_client/internal/model"
)

// GetProfile GET /api/profile?walletAddress=，新用户返回服务端默认资料
func (c *Client) GetProfile(ctx context.Context, wallet string) (model.UserInfo, error) {
	var p model.UserInfo
	err := c.getJSON(ctx, "/api/profile", walletQuery(wallet), &p)
	if p.WalletAddress == "" {
		p.WalletAddress = wallet
	}
	return p, err
}

// UpdateProfile POST /api/profile
func (c *Client) UpdateProfile(ctx context.Context, req request.UpdateUserInfoRequest) (model.UserInfo, error) {
	var p model.UserInfo
	if err := validate.Struct(req); err != nil {
		return p, err
	}
	err := c.postJSON(ctx, "/api/profile", req, &p)
	return p, err
}
