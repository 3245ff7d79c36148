package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/gateway/api"
	"poly_chat_client/internal/model"
	"poly_chat_client/pkg/errorx"
)

// fakeServer 用 gin 模拟服务端接口
type fakeServer struct {
	hits     atomic.Int32
	lastBody map[string]any
	lastForm map[string]string
}

func newFakeServer(t *testing.T) (*fakeServer, *api.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	fs := &fakeServer{}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		fs.hits.Add(1)
		if c.GetHeader("X-Request-Id") == "" {
			t.Errorf("missing X-Request-Id on %s", c.Request.URL.Path)
		}
		c.Next()
	})

	r.GET("/api/rooms", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"Trading":    gin.H{"id": "r3", "name": "Trading"},
			"General":    gin.H{"id": "r1", "name": "General", "description": "Public chat for everyone"},
			"Developers": gin.H{"id": "r2", "name": "Developers"},
		})
	})
	r.GET("/api/messages", func(c *gin.Context) {
		if c.Query("room") == "" && c.Query("privateRoom") == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Room ID or Private Room ID required"})
			return
		}
		c.JSON(http.StatusOK, []gin.H{
			{"id": "m1", "roomId": "r1", "walletAddress": "0xa", "content": "hi", "type": "text", "timestamp": 1},
			{"id": "m2", "roomId": "r1", "walletAddress": "0xb", "content": "yo", "type": "text", "timestamp": 2},
		})
	})
	r.POST("/api/messages", func(c *gin.Context) {
		body := map[string]any{}
		_ = c.BindJSON(&body)
		fs.lastBody = body
		c.JSON(http.StatusCreated, gin.H{"id": "m9", "roomId": "r1", "walletAddress": body["walletAddress"], "content": body["content"], "type": "text"})
	})
	r.DELETE("/api/messages/:id", func(c *gin.Context) {
		if c.Query("deleteForAll") != "true" {
			c.JSON(http.StatusForbidden, gin.H{"error": "You can only delete your own messages"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "messageId": c.Param("id")})
	})
	r.POST("/api/upload", func(c *gin.Context) {
		fh, err := c.FormFile("file")
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No file part"})
			return
		}
		f, _ := fh.Open()
		data, _ := io.ReadAll(f)
		fs.lastForm = map[string]string{
			"walletAddress": c.PostForm("walletAddress"),
			"fileName":      fh.Filename,
			"content":       string(data),
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "fileUrl": "/static/uploads/1_" + fh.Filename, "fileName": fh.Filename})
	})
	r.GET("/api/friends/requests", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"senderId": "0xs", "senderName": "sam", "status": "pending"}})
	})
	r.GET("/api/users/active", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"0xb": gin.H{"walletAddress": "0xb", "displayName": "bob"},
			"0xa": gin.H{"walletAddress": "0xa"},
		})
	})
	r.GET("/api/users/search", func(c *gin.Context) {
		c.JSON(http.StatusOK, []gin.H{{"walletAddress": "0xabc", "displayName": "abc"}})
	})
	r.GET("/api/profile", func(c *gin.Context) {
		c.String(http.StatusInternalServerError, "boom")
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return fs, api.New(srv.URL, 2*time.Second)
}

func TestRoomsSortedWithDefaultFirst(t *testing.T) {
	_, c := newFakeServer(t)
	rooms, err := c.Rooms(context.Background(), "0xa")
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, r := range rooms {
		names = append(names, r.Name)
	}
	if got := strings.Join(names, ","); got != "General,Developers,Trading" {
		t.Fatalf("rooms = %s", got)
	}
}

func TestGetMessageList(t *testing.T) {
	_, c := newFakeServer(t)
	msgs, err := c.GetMessageList(context.Background(), request.GetMessageListRequest{Room: "General", Limit: 50})
	if err != nil {
		t.Fatal(err)
	}
	if len(msgs) != 2 || msgs[0].ID != "m1" || msgs[1].AuthorID != "0xb" {
		t.Fatalf("messages = %+v", msgs)
	}
}

func TestSendMessageOmitsPrivateRoom(t *testing.T) {
	fs, c := newFakeServer(t)
	msg, err := c.SendMessage(context.Background(), request.ChatMessageRequest{
		Content: "hello", WalletAddress: "0xa", Room: "General", Type: "text",
	})
	if err != nil {
		t.Fatal(err)
	}
	if msg.ID != "m9" {
		t.Fatalf("echo = %+v", msg)
	}
	if _, ok := fs.lastBody["privateRoomId"]; ok {
		t.Fatal("privateRoomId must be absent for public messages")
	}
	if fs.lastBody["room"] != "General" {
		t.Fatalf("body = %v", fs.lastBody)
	}
}

func TestValidationRejectedBeforeNetwork(t *testing.T) {
	fs, c := newFakeServer(t)
	ctx := context.Background()

	cases := []struct {
		name string
		call func() error
	}{
		{"short search", func() error {
			_, err := c.SearchUsers(ctx, request.SearchUsersRequest{Query: "ab"})
			return err
		}},
		{"empty message", func() error {
			_, err := c.SendMessage(ctx, request.ChatMessageRequest{WalletAddress: "0xa", Room: "General"})
			return err
		}},
		{"both rooms", func() error {
			_, err := c.SendMessage(ctx, request.ChatMessageRequest{Content: "x", WalletAddress: "0xa", Room: "General", PrivateRoomId: "p1"})
			return err
		}},
		{"oversized file", func() error {
			_, err := c.UploadFile(ctx, request.UploadFileRequest{
				WalletAddress: "0xa", FileName: "big.bin", Size: 16*1024*1024 + 1, Body: strings.NewReader("x"),
			})
			return err
		}},
		{"self friend request", func() error {
			_, err := c.SendFriendRequest(ctx, request.ApplyFriendRequest{SenderId: "0xa", ReceiverId: "0xa"})
			return err
		}},
		{"bad action", func() error {
			_, err := c.RespondFriendRequest(ctx, request.PassContactApplyRequest{Action: "ignore", SenderId: "0xs", ReceiverId: "0xa"})
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.call(); !errorx.IsValidation(err) {
				t.Fatalf("err = %v, want validation error", err)
			}
		})
	}
	if n := fs.hits.Load(); n != 0 {
		t.Fatalf("server hit %d times", n)
	}
}

func TestNon2xxCarriesReason(t *testing.T) {
	_, c := newFakeServer(t)
	_, err := c.DeleteMessage(context.Background(), "0xa", "m1", false)
	if !errorx.IsRequest(err) {
		t.Fatalf("err = %v", err)
	}
	if got := errorx.Message(err); got != "You can only delete your own messages" {
		t.Fatalf("message = %q", got)
	}

	_, err = c.GetProfile(context.Background(), "0xa")
	if !errorx.IsRequest(err) || !strings.Contains(errorx.Message(err), "500") {
		t.Fatalf("plain-text error = %v", err)
	}
}

func TestDeleteForAll(t *testing.T) {
	_, c := newFakeServer(t)
	rsp, err := c.DeleteMessage(context.Background(), "0xa", "m1", true)
	if err != nil || !rsp.Success || rsp.MessageId != "m1" {
		t.Fatalf("rsp = %+v, %v", rsp, err)
	}
}

func TestUploadFileMultipart(t *testing.T) {
	fs, c := newFakeServer(t)
	rsp, err := c.UploadFile(context.Background(), request.UploadFileRequest{
		WalletAddress: "0xa", FileName: "pic.png", MimeType: "image/png", Size: 4, Body: strings.NewReader("data"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if rsp.FileUrl != "/static/uploads/1_pic.png" {
		t.Fatalf("rsp = %+v", rsp)
	}
	if fs.lastForm["walletAddress"] != "0xa" || fs.lastForm["content"] != "data" {
		t.Fatalf("form = %v", fs.lastForm)
	}
}

func TestIncomingRequestsAndActiveUsers(t *testing.T) {
	_, c := newFakeServer(t)
	ctx := context.Background()

	reqs, err := c.IncomingRequests(ctx, "0xa")
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 1 || reqs[0].ReceiverID != "0xa" || reqs[0].Status != model.RequestPending {
		t.Fatalf("requests = %+v", reqs)
	}

	users, err := c.ActiveUsers(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(users) != 2 || users[0].UserID != "0xa" || users[0].DisplayName != "User 0xa" || users[1].DisplayName != "bob" {
		t.Fatalf("active = %+v", users)
	}
}

func TestNetworkErrorIsRequestError(t *testing.T) {
	c := api.New("http://127.0.0.1:1", 200*time.Millisecond)
	_, err := c.Friends(context.Background(), "0xa")
	if !errorx.IsRequest(err) {
		t.Fatalf("err = %v", err)
	}
}

func TestSearchDecodes(t *testing.T) {
	_, c := newFakeServer(t)
	users, err := c.SearchUsers(context.Background(), request.SearchUsersRequest{Query: "abc"})
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := json.Marshal(users)
	if !strings.Contains(string(raw), "0xabc") {
		t.Fatalf("users = %s", raw)
	}
}
