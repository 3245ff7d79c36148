// Package room 维护公共房间目录
// 公共会话以房间名为键，推送消息携带服务端房间 id，两者通过目录互相解析
package room

import (
	"context"

	"go.uber.org/zap"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/loop"
	"poly_chat_client/internal/service/projection"
	"poly_chat_client/pkg/constants"
	"poly_chat_client/pkg/errorx"
)

// API 房间相关的 REST 接口
type API interface {
	Rooms(ctx context.Context, wallet string) ([]model.Room, error)
	HiddenRooms(ctx context.Context, wallet string) ([]model.Room, error)
	HideRoom(ctx context.Context, wallet, roomID string) error
	UnhideRoom(ctx context.Context, req request.UnhideRoomRequest) error
}

// Directory 房间目录
type Directory struct {
	api   API
	sched loop.Scheduler
	obs   projection.Observer
	self  func() string

	rooms  []model.Room
	hidden []model.Room
	byName map[string]model.Room
	byID   map[string]model.Room

	gen       loop.Generation
	hiddenGen loop.Generation
}

// NewDirectory 创建目录
func NewDirectory(api API, sched loop.Scheduler, obs projection.Observer, self func() string) *Directory {
	return &Directory{
		api:    api,
		sched:  sched,
		obs:    obs,
		self:   self,
		byName: map[string]model.Room{},
		byID:   map[string]model.Room{},
	}
}

// Load 拉取房间列表并整体替换
func (d *Directory) Load() {
	wallet := d.self()
	gen := d.gen.Next()
	var rooms []model.Room
	d.sched.Go(func(ctx context.Context) (err error) {
		rooms, err = d.api.Rooms(ctx, wallet)
		return err
	}, func(err error) {
		if err != nil {
			projection.Failure(d.obs, "Failed to load rooms", err)
			return
		}
		if !d.gen.Accept(gen) {
			zap.L().Debug("stale rooms dropped", zap.Uint64("gen", gen))
			return
		}
		d.Replace(rooms)
	})
}

// Replace 用快照替换目录
func (d *Directory) Replace(rooms []model.Room) {
	d.rooms = rooms
	d.byName = make(map[string]model.Room, len(rooms))
	d.byID = make(map[string]model.Room, len(rooms))
	for _, r := range rooms {
		d.byName[r.Name] = r
		if r.ID != "" {
			d.byID[r.ID] = r
		}
	}
	d.publish()
}

// LoadHidden 拉取当前身份隐藏的房间
func (d *Directory) LoadHidden() {
	wallet := d.self()
	if wallet == "" {
		return
	}
	gen := d.hiddenGen.Next()
	var rooms []model.Room
	d.sched.Go(func(ctx context.Context) (err error) {
		rooms, err = d.api.HiddenRooms(ctx, wallet)
		return err
	}, func(err error) {
		if err != nil {
			projection.Failure(d.obs, "Failed to load hidden rooms", err)
			return
		}
		if wallet != d.self() || !d.hiddenGen.Accept(gen) {
			return
		}
		d.hidden = rooms
		d.publish()
	})
}

// Hide 对当前身份隐藏房间，成功后调用 after 并重新加载
func (d *Directory) Hide(key string, after func()) {
	d.remove(key, "Failed to hide room", `Room "`+d.Label(key)+`" hidden`, after)
}

// Delete 删除房间，接口与隐藏相同
func (d *Directory) Delete(key string, after func()) {
	d.remove(key, "Failed to delete room", "Room deleted", after)
}

func (d *Directory) remove(key, failure, success string, after func()) {
	wallet := d.self()
	if wallet == "" {
		projection.Failure(d.obs, failure, errorx.ErrNoIdentity)
		return
	}
	id := d.ResolveID(key)
	d.sched.Go(func(ctx context.Context) error {
		return d.api.HideRoom(ctx, wallet, id)
	}, func(err error) {
		if err != nil {
			projection.Failure(d.obs, failure, err)
			return
		}
		if after != nil {
			after()
		}
		d.Load()
		d.LoadHidden()
		projection.Notify(d.obs, projection.LevelSuccess, success)
	})
}

// Unhide 取消隐藏
func (d *Directory) Unhide(roomID string) {
	wallet := d.self()
	if wallet == "" {
		projection.Failure(d.obs, "Failed to unhide room", errorx.ErrNoIdentity)
		return
	}
	req := request.UnhideRoomRequest{WalletAddress: wallet, RoomId: roomID}
	d.sched.Go(func(ctx context.Context) error {
		return d.api.UnhideRoom(ctx, req)
	}, func(err error) {
		if err != nil {
			projection.Failure(d.obs, "Failed to unhide room", err)
			return
		}
		d.Load()
		d.LoadHidden()
		projection.Notify(d.obs, projection.LevelSuccess, "Room unhidden")
	})
}

// ==================== 解析 ====================

// Matches 会话键（房间名或 id）是否指向 roomID
func (d *Directory) Matches(key, roomID string) bool {
	if key == "" || roomID == "" {
		return false
	}
	if key == roomID {
		return true
	}
	if r, ok := d.byName[key]; ok && r.ID == roomID {
		return true
	}
	if r, ok := d.byID[key]; ok && r.Name == roomID {
		return true
	}
	return false
}

// ResolveID 房间名解析为服务端 id，未知时原样返回
func (d *Directory) ResolveID(key string) string {
	if r, ok := d.byName[key]; ok && r.ID != "" {
		return r.ID
	}
	return key
}

// Label 展示名
func (d *Directory) Label(key string) string {
	if r, ok := d.byName[key]; ok {
		return r.Name
	}
	if r, ok := d.byID[key]; ok {
		return r.Name
	}
	return key
}

// Description 房间描述
func (d *Directory) Description(key string) string {
	if r, ok := d.byName[key]; ok {
		return r.Description
	}
	if r, ok := d.byID[key]; ok {
		return r.Description
	}
	return ""
}

// FirstOther 隐藏当前房间后切换的目标：第一个其他房间，没有则默认房间
func (d *Directory) FirstOther(key string) string {
	for _, r := range d.rooms {
		if r.Name != key && r.ID != key {
			return r.Name
		}
	}
	return constants.DEFAULT_ROOM
}

// Rooms 可见房间
func (d *Directory) Rooms() []model.Room {
	out := make([]model.Room, len(d.rooms))
	copy(out, d.rooms)
	return out
}

// Hidden 已隐藏房间
func (d *Directory) Hidden() []model.Room {
	out := make([]model.Room, len(d.hidden))
	copy(out, d.hidden)
	return out
}

// ResetHidden 登出时清空隐藏列表
func (d *Directory) ResetHidden() {
	d.hiddenGen.Invalidate()
	d.hidden = nil
	d.publish()
}

func (d *Directory) publish() {
	d.obs.OnEvent(projection.Event{Kind: projection.RoomsChanged, Rooms: d.Rooms(), HiddenRooms: d.Hidden()})
}
