package api

import (
	"context"
	"net/url"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/dto/respond"
	"poly_chat_client/internal/infrastructure/validate"
	"poly_chat_client/internal/model"
)

// Friends GET /api/friends?walletAddress=
func (c *Client) Friends(ctx context.Context, wallet string) ([]model.Friend, error) {
	var friends []model.Friend
	if err := c.getJSON(ctx, "/api/friends", walletQuery(wallet), &friends); err != nil {
		return nil, err
	}
	return friends, nil
}

// IncomingRequests GET /api/friends/requests?type=received，只返回待处理的申请
func (c *Client) IncomingRequests(ctx context.Context, wallet string) ([]model.FriendRequest, error) {
	query := walletQuery(wallet)
	query.Set("type", "received")
	var reqs []model.FriendRequest
	if err := c.getJSON(ctx, "/api/friends/requests", query, &reqs); err != nil {
		return nil, err
	}
	for i := range reqs {
		reqs[i].ReceiverID = wallet
		if reqs[i].Status == "" {
			reqs[i].Status = model.RequestPending
		}
	}
	return reqs, nil
}

// PrivateChats GET /api/private-chats?walletAddress=
func (c *Client) PrivateChats(ctx context.Context, wallet string) ([]model.PrivateChat, error) {
	var chats []model.PrivateChat
	if err := c.getJSON(ctx, "/api/private-chats", walletQuery(wallet), &chats); err != nil {
		return nil, err
	}
	return chats, nil
}

// SendFriendRequest POST /api/friends/request
func (c *Client) SendFriendRequest(ctx context.Context, req request.ApplyFriendRequest) (*respond.StatusRespond, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	var rsp respond.StatusRespond
	if err := c.postJSON(ctx, "/api/friends/request", req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}

// RespondFriendRequest POST /api/friends/request/{accept|reject}
func (c *Client) RespondFriendRequest(ctx context.Context, req request.PassContactApplyRequest) (*respond.StatusRespond, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	var rsp respond.StatusRespond
	if err := c.postJSON(ctx, "/api/friends/request/"+url.PathEscape(req.Action), req, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}
