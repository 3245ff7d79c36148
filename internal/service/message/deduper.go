// Package message 按会话对消息做幂等插入，并维护删除墓碑和按查看者的隐藏
package message

import (
	"strings"

	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/block"
	"poly_chat_client/pkg/constants"
)

// Deduper 每个会话一条按到达顺序排列的消息线
// 同一会话内相同 id 只接受一次（本地回显 + 服务端广播只渲染一次）
type Deduper struct {
	threads     map[string]*thread
	blocks      block.Checker
	placeholder string
}

type thread struct {
	order []string
	byID  map[string]*entry
}

type entry struct {
	msg model.Message
	// hiddenFor 仅对这些查看者隐藏（自己删除），记录本身不删除
	hiddenFor map[string]struct{}
}

// NewDeduper 创建去重器；blocks 用于产出对外可见列表
func NewDeduper(blocks block.Checker) *Deduper {
	return &Deduper{
		threads:     map[string]*thread{},
		blocks:      blocks,
		placeholder: constants.DELETED_PLACEHOLDER,
	}
}

func (d *Deduper) thread(conv model.Conversation, create bool) *thread {
	t := d.threads[conv.Key()]
	if t == nil && create {
		t = &thread{byID: map[string]*entry{}}
		d.threads[conv.Key()] = t
	}
	return t
}

// Insert 插入消息，同一会话已存在相同 id 时拒绝（无副作用）
func (d *Deduper) Insert(conv model.Conversation, m model.Message) bool {
	if m.ID == "" || conv.IsZero() {
		return false
	}
	t := d.thread(conv, true)
	if _, ok := t.byID[m.ID]; ok {
		return false
	}
	if m.Deleted {
		m = m.Tombstone(d.placeholder)
	}
	t.byID[m.ID] = &entry{msg: m}
	t.order = append(t.order, m.ID)
	return true
}

// Replace 用历史快照替换会话消息线
// 已存在的墓碑和按查看者隐藏会保留
func (d *Deduper) Replace(conv model.Conversation, msgs []model.Message) {
	old := d.thread(conv, false)
	t := &thread{byID: make(map[string]*entry, len(msgs))}
	for _, m := range msgs {
		if m.ID == "" {
			continue
		}
		if _, dup := t.byID[m.ID]; dup {
			continue
		}
		e := &entry{msg: m}
		if old != nil {
			if prev, ok := old.byID[m.ID]; ok {
				e.hiddenFor = prev.hiddenFor
				if prev.msg.Deleted {
					e.msg.Deleted = true
				}
			}
		}
		if e.msg.Deleted {
			e.msg = e.msg.Tombstone(d.placeholder)
		}
		t.byID[m.ID] = e
		t.order = append(t.order, m.ID)
	}
	d.threads[conv.Key()] = t
}

// Forget 丢弃会话的本地消息线
func (d *Deduper) Forget(conv model.Conversation) {
	delete(d.threads, conv.Key())
}

// Reset 登出时清空
func (d *Deduper) Reset() {
	d.threads = map[string]*thread{}
}

// MarkDeleted 删除消息
// forEveryone: 替换为所有人可见的占位墓碑
// 否则只对 viewer 隐藏，其他查看者不受影响
// 返回受影响会话和处理后的消息
func (d *Deduper) MarkDeleted(id string, forEveryone bool, viewer string) (model.Conversation, model.Message, bool) {
	for key, t := range d.threads {
		e, ok := t.byID[id]
		if !ok {
			continue
		}
		conv := conversationFromKey(key)
		if forEveryone {
			e.msg = e.msg.Tombstone(d.placeholder)
			return conv, e.msg, true
		}
		if viewer == "" {
			return conv, e.msg, false
		}
		if e.hiddenFor == nil {
			e.hiddenFor = map[string]struct{}{}
		}
		e.hiddenFor[viewer] = struct{}{}
		return conv, e.msg, true
	}
	return model.Conversation{}, model.Message{}, false
}

// Visible 返回 viewer 看到的消息，按到达顺序
// 过滤掉黑名单作者和 viewer 自己隐藏的消息
func (d *Deduper) Visible(conv model.Conversation, viewer string) []model.Message {
	t := d.thread(conv, false)
	if t == nil {
		return nil
	}
	out := make([]model.Message, 0, len(t.order))
	for _, id := range t.order {
		e := t.byID[id]
		if d.blocks != nil && d.blocks.IsBlocked(e.msg.AuthorID) {
			continue
		}
		if _, hidden := e.hiddenFor[viewer]; hidden {
			continue
		}
		out = append(out, e.msg)
	}
	return out
}

// Get 按 id 查找
func (d *Deduper) Get(conv model.Conversation, id string) (model.Message, bool) {
	t := d.thread(conv, false)
	if t == nil {
		return model.Message{}, false
	}
	e, ok := t.byID[id]
	if !ok {
		return model.Message{}, false
	}
	return e.msg, true
}

// Len 会话内记录数（含隐藏）
func (d *Deduper) Len(conv model.Conversation) int {
	t := d.thread(conv, false)
	if t == nil {
		return 0
	}
	return len(t.order)
}

// RenameAuthor 资料更新推送后改写冗余的作者名和头像
func (d *Deduper) RenameAuthor(authorID, name, avatar string) {
	for _, t := range d.threads {
		for _, e := range t.byID {
			if e.msg.AuthorID != authorID {
				continue
			}
			if name != "" {
				e.msg.AuthorName = name
			}
			if avatar != "" {
				e.msg.AuthorAvatar = avatar
			}
		}
	}
}

func conversationFromKey(key string) model.Conversation {
	typ, id, _ := strings.Cut(key, ":")
	return model.Conversation{Type: model.ConversationType(typ), ID: id}
}
