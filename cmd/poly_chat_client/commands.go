package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Actions 终端命令可以触发的客户端动作
type Actions interface {
	Login(wallet string)
	Logout()
	SwitchRoom(key string)
	OpenPrivateChat(peer string)
	SendMessage(content string)
	SendFile(path, caption string)
	DeleteMessage(messageID string, forAll bool)
	Keystroke()
	Block(userID string)
	Unblock(userID string)
	SendFriendRequest(userID string)
	AcceptFriendRequest(senderID string)
	RejectFriendRequest(senderID string)
	SearchUsers(query string)
	UpdateProfile(displayName, bio string)
	UploadAvatar(path string)
	HideRoom(key string)
	UnhideRoom(roomID string)
	DeleteRoom(key string)
	Refresh()
}

const usage = `commands:
  /login <wallet>          /logout
  /room <name>             /dm <wallet|privateRoomId>
  /file <path> [caption]   /delete <id> [all]
  /block <wallet>          /unblock <wallet>
  /friend <wallet>         /accept <wallet>   /reject <wallet>
  /search <query>          /profile <name> [bio]   /avatar <path>
  /hide <room>             /unhide <roomId>   /droproom <room>
  /refresh  /help  /quit
anything else is sent as a message`

// readCommands 逐行读取输入直到 EOF 或 /quit
func readCommands(scanner *bufio.Scanner, app Actions, out io.Writer) {
	fmt.Fprintln(out, usage)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			app.Keystroke()
			app.SendMessage(line)
			continue
		}
		if !dispatch(line, app, out) {
			return
		}
	}
}

// dispatch 执行一条斜杠命令，返回 false 表示退出
func dispatch(line string, app Actions, out io.Writer) bool {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	arg, tail, _ := strings.Cut(rest, " ")
	tail = strings.TrimSpace(tail)

	switch cmd {
	case "/quit", "/exit":
		return false
	case "/help":
		fmt.Fprintln(out, usage)
	case "/login":
		app.Login(arg)
	case "/logout":
		app.Logout()
	case "/room":
		app.SwitchRoom(rest)
	case "/dm":
		app.OpenPrivateChat(arg)
	case "/file":
		app.SendFile(arg, tail)
	case "/delete":
		app.DeleteMessage(arg, tail == "all")
	case "/block":
		app.Block(arg)
	case "/unblock":
		app.Unblock(arg)
	case "/friend":
		app.SendFriendRequest(arg)
	case "/accept":
		app.AcceptFriendRequest(arg)
	case "/reject":
		app.RejectFriendRequest(arg)
	case "/search":
		app.SearchUsers(rest)
	case "/profile":
		app.UpdateProfile(arg, tail)
	case "/avatar":
		app.UploadAvatar(arg)
	case "/hide":
		app.HideRoom(rest)
	case "/unhide":
		app.UnhideRoom(arg)
	case "/droproom":
		app.DeleteRoom(rest)
	case "/refresh":
		app.Refresh()
	default:
		fmt.Fprintf(out, "unknown command %s, try /help\n", cmd)
	}
	return true
}
