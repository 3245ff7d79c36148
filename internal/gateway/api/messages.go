package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/dto/respond"
	"poly_chat_client/internal/infrastructure/validate"
	"poly_chat_client/internal/model"
)

// GetMessageList GET /api/messages?room=|privateRoom=，按时间正序返回
func (c *Client) GetMessageList(ctx context.Context, req request.GetMessageListRequest) ([]model.Message, error) {
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	query := url.Values{}
	if req.PrivateRoom != "" {
		query.Set("privateRoom", req.PrivateRoom)
	} else {
		query.Set("room", req.Room)
	}
	if req.Limit > 0 {
		query.Set("limit", strconv.Itoa(req.Limit))
	}
	var messages []model.Message
	if err := c.getJSON(ctx, "/api/messages", query, &messages); err != nil {
		return nil, err
	}
	return messages, nil
}

// SendMessage POST /api/messages，返回服务端创建的消息
func (c *Client) SendMessage(ctx context.Context, req request.ChatMessageRequest) (model.Message, error) {
	var msg model.Message
	if err := validate.Struct(req); err != nil {
		return msg, err
	}
	err := c.postJSON(ctx, "/api/messages", req, &msg)
	return msg, err
}

// DeleteMessage DELETE /api/messages/{id}?walletAddress=&deleteForAll=
func (c *Client) DeleteMessage(ctx context.Context, wallet, messageID string, forAll bool) (*respond.DeleteMessageRespond, error) {
	query := walletQuery(wallet)
	query.Set("deleteForAll", strconv.FormatBool(forAll))
	var rsp respond.DeleteMessageRespond
	if err := c.doJSON(ctx, http.MethodDelete, "/api/messages/"+url.PathEscape(messageID), query, nil, &rsp); err != nil {
		return nil, err
	}
	return &rsp, nil
}
