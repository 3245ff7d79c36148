package projection

import (
	"fmt"
	"io"
	"strings"
	"time"

	"poly_chat_client/internal/model"
)

// Printer 终端渲染，每个事件输出一行或多行文本
type Printer struct {
	w io.Writer
}

// NewPrinter 创建终端渲染器
func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) OnEvent(e Event) {
	switch e.Kind {
	case ConversationChanged:
		p.printf("== %s %s", e.Conversation.Label, dim(e.Conversation.Description))
	case HistoryReplaced:
		for _, m := range e.Messages {
			p.message(m)
		}
	case MessageAppended:
		p.message(e.Message)
	case MessageTombstoned:
		p.printf("   [%s] %s", short(e.MessageID), e.Message.Content)
	case MessageRemoved:
		p.printf("   [%s] removed", short(e.MessageID))
	case TypingShown:
		p.printf("   %s is typing...", e.DisplayName)
	case RosterChanged:
		names := make([]string, 0, len(e.Roster))
		for _, u := range e.Roster {
			names = append(names, u.DisplayName)
		}
		p.printf("-- online (%d): %s", len(names), strings.Join(names, ", "))
	case FriendsChanged:
		p.printf("-- friends: %d", len(e.Friends))
	case RequestsChanged:
		for _, r := range e.Requests {
			p.printf("-- friend request from %s (%s)", r.SenderName, r.SenderID)
		}
	case PrivateChatsChanged:
		for _, c := range e.PrivateChats {
			p.printf("-- chat %s with %s: %s", short(c.ID), c.DisplayName, c.Preview())
		}
	case BlocklistChanged:
		p.printf("-- blocked: %d", len(e.Blocked))
	case RoomsChanged:
		names := make([]string, 0, len(e.Rooms))
		for _, r := range e.Rooms {
			names = append(names, r.Name)
		}
		p.printf("-- rooms: %s", strings.Join(names, ", "))
	case ProfileChanged:
		p.printf("-- profile: %s", e.Profile.NameOrDefault())
	case IdentityChanged:
		if e.UserID == "" {
			p.printf("-- logged out")
		} else {
			p.printf("-- logged in as %s", e.UserID)
		}
	case SearchResults:
		for _, u := range e.Users {
			p.printf("   %s  %s", u.WalletAddress, u.NameOrDefault())
		}
	case ConnectionChanged:
		p.printf("-- connection %s", e.State)
	case Notification:
		p.printf("!! [%s] %s", e.Level, e.Text)
	}
}

func (p *Printer) message(m model.Message) {
	ts := time.Unix(m.Timestamp, 0).Format("15:04")
	body := m.Content
	if m.Kind != model.KindText && !m.Deleted {
		body = fmt.Sprintf("[%s] %s %s", m.Kind, m.FileName, m.FileURL)
	}
	p.printf("%s %s [%s]: %s", ts, m.AuthorName, short(m.ID), body)
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format+"\n", args...)
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func dim(s string) string {
	if s == "" {
		return ""
	}
	return "(" + s + ")"
}
