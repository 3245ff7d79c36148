// Package block 维护当前身份的黑名单
// Registry 是所有入站过滤器共享的只读谓词，只能通过 Service 的拉黑/取消拉黑整体替换
package block

import (
	"poly_chat_client/internal/model"
)

// Checker 入站过滤器依赖的只读接口
type Checker interface {
	IsBlocked(userID string) bool
}

// Registry 黑名单集合
type Registry struct {
	set  map[string]struct{}
	list []model.BlockedUser
}

// NewRegistry 创建空黑名单
func NewRegistry() *Registry {
	return &Registry{set: map[string]struct{}{}}
}

// IsBlocked 是否已拉黑；空 id 永远不算
func (r *Registry) IsBlocked(userID string) bool {
	if userID == "" {
		return false
	}
	_, ok := r.set[userID]
	return ok
}

// SetBlocked 用快照整体替换，不提供增量修改
func (r *Registry) SetBlocked(list []model.BlockedUser) {
	set := make(map[string]struct{}, len(list))
	kept := make([]model.BlockedUser, 0, len(list))
	for _, u := range list {
		if u.UserID == "" {
			continue
		}
		if _, dup := set[u.UserID]; dup {
			continue
		}
		set[u.UserID] = struct{}{}
		kept = append(kept, u)
	}
	r.set = set
	r.list = kept
}

// List 当前黑名单副本
func (r *Registry) List() []model.BlockedUser {
	out := make([]model.BlockedUser, len(r.list))
	copy(out, r.list)
	return out
}

// Len 黑名单人数
func (r *Registry) Len() int {
	return len(r.list)
}
