// Package presence 维护在线用户名单
// 快照（轮询）是权威数据，推送的 join/leave 只是增量提示
package presence

import (
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/block"
	"poly_chat_client/internal/service/projection"
)

// Tracker 在线用户名单
type Tracker struct {
	entries map[string]model.PresenceEntry
	order   []string
	blocks  block.Checker
	obs     projection.Observer
}

// NewTracker 创建名单
func NewTracker(blocks block.Checker, obs projection.Observer) *Tracker {
	return &Tracker{entries: map[string]model.PresenceEntry{}, blocks: blocks, obs: obs}
}

// ReplaceSnapshot 整体替换，之前应用的增量全部作废
func (t *Tracker) ReplaceSnapshot(entries []model.PresenceEntry) {
	t.entries = make(map[string]model.PresenceEntry, len(entries))
	t.order = t.order[:0]
	for _, e := range entries {
		if e.UserID == "" {
			continue
		}
		if _, dup := t.entries[e.UserID]; !dup {
			t.order = append(t.order, e.UserID)
		}
		t.entries[e.UserID] = withDefaults(e)
	}
	t.Publish()
}

// ApplyJoin 推送增量：上线；已拉黑的用户直接忽略
func (t *Tracker) ApplyJoin(userID string, meta model.PresenceEntry) bool {
	if userID == "" || t.blocks.IsBlocked(userID) {
		return false
	}
	meta.UserID = userID
	if _, ok := t.entries[userID]; !ok {
		t.order = append(t.order, userID)
	}
	t.entries[userID] = withDefaults(meta)
	t.Publish()
	return true
}

// ApplyLeave 推送增量：下线；返回离开前的条目
func (t *Tracker) ApplyLeave(userID string) (model.PresenceEntry, bool) {
	e, ok := t.entries[userID]
	if !ok || t.blocks.IsBlocked(userID) {
		return model.PresenceEntry{}, false
	}
	delete(t.entries, userID)
	for i, id := range t.order {
		if id == userID {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	t.Publish()
	return e, true
}

// UpdateProfile 资料更新推送只改已在名单中的条目
func (t *Tracker) UpdateProfile(userID, displayName, avatar string) {
	e, ok := t.entries[userID]
	if !ok || t.blocks.IsBlocked(userID) {
		return
	}
	if displayName != "" {
		e.DisplayName = displayName
	}
	if avatar != "" {
		e.Avatar = avatar
	}
	t.entries[userID] = e
	t.Publish()
}

// Lookup 查询条目（不经黑名单过滤）
func (t *Tracker) Lookup(userID string) (model.PresenceEntry, bool) {
	e, ok := t.entries[userID]
	return e, ok
}

// Roster 对外可见名单，过滤黑名单
func (t *Tracker) Roster() []model.PresenceEntry {
	out := make([]model.PresenceEntry, 0, len(t.order))
	for _, id := range t.order {
		if t.blocks.IsBlocked(id) {
			continue
		}
		out = append(out, t.entries[id])
	}
	return out
}

// Publish 发出当前名单
func (t *Tracker) Publish() {
	t.obs.OnEvent(projection.Event{Kind: projection.RosterChanged, Roster: t.Roster()})
}

// Reset 登出时清空
func (t *Tracker) Reset() {
	t.entries = map[string]model.PresenceEntry{}
	t.order = nil
	t.Publish()
}

func withDefaults(e model.PresenceEntry) model.PresenceEntry {
	if e.DisplayName == "" {
		e.DisplayName = model.DefaultDisplayName(e.UserID)
	}
	return e
}
