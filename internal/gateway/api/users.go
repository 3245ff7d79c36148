package api

import (
	"context"
	"net/url"
	"sort"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/infrastructure/validate"
	"poly_chat_client/internal/model"
)

// Blocked GET /api/users/blocked?walletAddress=
func (c *Client) Blocked(ctx context.Context, wallet string) ([]model.BlockedUser, error) {
	var list []model.BlockedUser
	if err := c.getJSON(ctx, "/api/users/blocked", walletQuery(wallet), &list); err != nil {
		return nil, err
	}
	return list, nil
}

// BlockUser POST /api/users/block
func (c *Client) BlockUser(ctx context.Context, req request.BlackContactRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	return c.postJSON(ctx, "/api/users/block", req, nil)
}

// UnblockUser POST /api/users/unblock
func (c *Client) UnblockUser(ctx context.Context, req request.BlackContactRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	return c.postJSON(ctx, "/api/users/unblock", req, nil)
}

// SearchUsers GET /api/users/search?query=，查询至少 3 个字符
func (c *Client) SearchUsers(ctx context.Context, req request.SearchUsersRequest) ([]model.UserInfo, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	var users []model.UserInfo
	if err := c.getJSON(ctx, "/api/users/search", url.Values{"query": {req.Query}}, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ActiveUsers GET /api/users/active，服务端返回以钱包地址为键的 map
func (c *Client) ActiveUsers(ctx context.Context) ([]model.PresenceEntry, error) {
	byWallet := map[string]model.UserInfo{}
	if err := c.getJSON(ctx, "/api/users/active", nil, &byWallet); err != nil {
		return nil, err
	}
	entries := make([]model.PresenceEntry, 0, len(byWallet))
	for wallet, u := range byWallet {
		if u.WalletAddress == "" {
			u.WalletAddress = wallet
		}
		entries = append(entries, model.PresenceEntry{
			UserID:      u.WalletAddress,
			DisplayName: u.NameOrDefault(),
			Avatar:      u.Avatar,
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].UserID < entries[j].UserID })
	return entries, nil
}

// ReportPresence POST /api/user/presence
func (c *Client) ReportPresence(ctx context.Context, req request.PresenceRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	return c.postJSON(ctx, "/api/user/presence", req, nil)
}
