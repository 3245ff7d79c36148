// Package projection 定义状态机到界面的单向通知
// 状态机只发出语义事件，渲染层作为纯订阅者
package projection

import (
	"sync"

	"poly_chat_client/internal/model"
)

// Kind 事件类型
type Kind string

const (
	ConversationChanged Kind = "conversation_changed"
	HistoryReplaced     Kind = "history_replaced"
	MessageAppended     Kind = "message_appended"
	MessageTombstoned   Kind = "message_tombstoned"
	MessageRemoved      Kind = "message_removed"
	ScrollToLatest      Kind = "scroll_to_latest"
	TypingShown         Kind = "typing_shown"
	TypingHidden        Kind = "typing_hidden"
	LocalTypingCleared  Kind = "local_typing_cleared"
	RosterChanged       Kind = "roster_changed"
	FriendsChanged      Kind = "friends_changed"
	RequestsChanged     Kind = "requests_changed"
	PrivateChatsChanged Kind = "private_chats_changed"
	BlocklistChanged    Kind = "blocklist_changed"
	RoomsChanged        Kind = "rooms_changed"
	ProfileChanged      Kind = "profile_changed"
	IdentityChanged     Kind = "identity_changed"
	SearchResults       Kind = "search_results"
	ConnectionChanged   Kind = "connection_changed"
	Notification        Kind = "notification"
)

// Level 通知级别
type Level string

const (
	LevelInfo    Level = "info"
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Event 一次语义变化，按 Kind 只填充相关字段
type Event struct {
	Kind Kind

	Conversation model.Conversation
	Message      model.Message
	Messages     []model.Message
	MessageID    string

	UserID      string
	DisplayName string

	Roster       []model.PresenceEntry
	Friends      []model.Friend
	Requests     []model.FriendRequest
	PrivateChats []model.PrivateChat
	Blocked      []model.BlockedUser
	Rooms        []model.Room
	HiddenRooms  []model.Room
	Users        []model.UserInfo
	Profile      model.UserInfo

	State string
	Level Level
	Text  string
}

// Observer 订阅者
type Observer interface {
	OnEvent(Event)
}

// ObserverFunc 函数适配器
type ObserverFunc func(Event)

func (f ObserverFunc) OnEvent(e Event) { f(e) }

// Discard 丢弃所有事件
var Discard Observer = ObserverFunc(func(Event) {})

// Fanout 把事件按注册顺序分发给多个订阅者
type Fanout []Observer

func (f Fanout) OnEvent(e Event) {
	for _, o := range f {
		o.OnEvent(e)
	}
}

// Recorder 记录所有事件，测试使用
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) OnEvent(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

// Events 返回已记录事件的副本
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// OfKind 只返回指定类型的事件
func (r *Recorder) OfKind(k Kind) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Kind == k {
			out = append(out, e)
		}
	}
	return out
}

// Last 最后一个指定类型的事件
func (r *Recorder) Last(k Kind) (Event, bool) {
	evs := r.OfKind(k)
	if len(evs) == 0 {
		return Event{}, false
	}
	return evs[len(evs)-1], true
}

// Reset 清空记录
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.events = nil
	r.mu.Unlock()
}

// Notify 发出一条临时通知
func Notify(o Observer, level Level, text string) {
	o.OnEvent(Event{Kind: Notification, Level: level, Text: text})
}
