package api

import (
	"context"
	"net/http"
	"net/url"
	"sort"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/infrastructure/validate"
	"poly_chat_client/internal/model"
	"poly_chat_client/pkg/constants"
)

// Rooms GET /api/rooms，服务端返回以房间名为键的 map
// 结果按名称排序，默认房间排在最前
func (c *Client) Rooms(ctx context.Context, wallet string) ([]model.Room, error) {
	var query url.Values
	if wallet != "" {
		query = walletQuery(wallet)
	}
	byName := map[string]model.Room{}
	if err := c.getJSON(ctx, "/api/rooms", query, &byName); err != nil {
		return nil, err
	}
	rooms := make([]model.Room, 0, len(byName))
	for name, r := range byName {
		if r.Name == "" {
			r.Name = name
		}
		rooms = append(rooms, r)
	}
	sort.Slice(rooms, func(i, j int) bool {
		if (rooms[i].Name == constants.DEFAULT_ROOM) != (rooms[j].Name == constants.DEFAULT_ROOM) {
			return rooms[i].Name == constants.DEFAULT_ROOM
		}
		return rooms[i].Name < rooms[j].Name
	})
	return rooms, nil
}

// HiddenRooms GET /api/rooms/hidden
func (c *Client) HiddenRooms(ctx context.Context, wallet string) ([]model.Room, error) {
	var rooms []model.Room
	if err := c.getJSON(ctx, "/api/rooms/hidden", walletQuery(wallet), &rooms); err != nil {
		return nil, err
	}
	return rooms, nil
}

// HideRoom DELETE /api/rooms/{id}
func (c *Client) HideRoom(ctx context.Context, wallet, roomID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/rooms/"+url.PathEscape(roomID), walletQuery(wallet), nil, nil)
}

// UnhideRoom POST /api/rooms/unhide
func (c *Client) UnhideRoom(ctx context.Context, req request.UnhideRoomRequest) error {
	if err := validate.Struct(req); err != nil {
		return err
	}
	return c.postJSON(ctx, "/api/rooms/unhide", req, nil)
}
