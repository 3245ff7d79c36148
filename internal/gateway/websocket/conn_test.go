package websocket_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	gws "github.com/gorilla/websocket"

	"poly_chat_client/internal/dto/event"
	"poly_chat_client/internal/gateway/websocket"
	"poly_chat_client/pkg/errorx"
)

var upgrader = gws.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// echoServer 收到 join 时回复 joined，收到 bye 时关闭连接
func echoServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		for {
			_, raw, err := conn.ReadMessage()
			if err != nil {
				return
			}
			var env event.Envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				t.Errorf("server decode: %v", err)
				return
			}
			switch env.Event {
			case event.Join:
				var p event.MembershipPayload
				_ = json.Unmarshal(env.Data, &p)
				frame, _ := event.Encode(event.Joined, map[string]string{"room": p.RoomId, "type": p.Type})
				_ = conn.WriteMessage(gws.TextMessage, frame)
			case "bye":
				return
			}
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func wsURL(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func TestDialEmitReceive(t *testing.T) {
	srv := echoServer(t)
	frames := make(chan event.Envelope, 4)
	closed := make(chan error, 1)

	d := websocket.NewDialer(wsURL(srv), time.Second)
	conn, err := d.Dial(context.Background(), websocket.Callbacks{
		OnFrame: func(env event.Envelope) { frames <- env },
		OnClose: func(err error) { closed <- err },
	})
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	if conn.ID() == "" {
		t.Fatal("empty conn id")
	}

	if err := conn.Emit(event.Join, event.MembershipPayload{Type: "public", RoomId: "General"}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	select {
	case env := <-frames:
		if env.Event != event.Joined || !strings.Contains(string(env.Data), "General") {
			t.Fatalf("frame = %s %s", env.Event, env.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no joined frame")
	}

	if err := conn.Close(); err != nil {
		t.Logf("close: %v", err)
	}
	select {
	case err := <-closed:
		if err != nil {
			t.Fatalf("local close reported %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not called")
	}
	if err := conn.Emit(event.Leave, event.MembershipPayload{}); !errorx.IsTransport(err) {
		t.Fatalf("Emit after close err = %v", err)
	}
}

func TestRemoteCloseNotifies(t *testing.T) {
	srv := echoServer(t)
	closed := make(chan error, 1)
	conn, err := websocket.NewDialer(wsURL(srv), time.Second).Dial(context.Background(), websocket.Callbacks{
		OnClose: func(err error) { closed <- err },
	})
	if err != nil {
		t.Fatal(err)
	}
	_ = conn.Emit("bye", struct{}{})
	select {
	case err := <-closed:
		if err == nil {
			t.Fatal("remote close should carry an error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("OnClose not called")
	}
}

func TestDialFailureIsTransportError(t *testing.T) {
	_, err := websocket.NewDialer("ws://127.0.0.1:1/ws", 200*time.Millisecond).Dial(context.Background(), websocket.Callbacks{})
	if !errorx.IsTransport(err) {
		t.Fatalf("err = %v, want transport error", err)
	}
}
