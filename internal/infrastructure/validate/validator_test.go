package validate

import (
	"strings"
	"testing"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/pkg/errorx"
)

func TestStructValid(t *testing.T) {
	if err := Struct(request.SearchUsersRequest{Query: "0xabc"}); err != nil {
		t.Fatal(err)
	}
}

func TestStructInvalidIsValidation(t *testing.T) {
	err := Struct(request.SearchUsersRequest{Query: "ab"})
	if !errorx.IsValidation(err) {
		t.Fatalf("err = %v", err)
	}
	if !strings.Contains(errorx.Message(err), "query") {
		t.Fatalf("message = %q", errorx.Message(err))
	}
}

func TestMessageRoomExclusive(t *testing.T) {
	both := request.ChatMessageRequest{Content: "hi", WalletAddress: "0xme", Room: "General", PrivateRoomId: "p-1"}
	if err := Struct(both); !errorx.IsValidation(err) {
		t.Fatalf("room and private room accepted together: %v", err)
	}
	neither := request.ChatMessageRequest{Content: "hi", WalletAddress: "0xme"}
	if err := Struct(neither); !errorx.IsValidation(err) {
		t.Fatal("message without conversation accepted")
	}
	file := request.ChatMessageRequest{WalletAddress: "0xme", PrivateRoomId: "p-1", Type: "image", FileUrl: "/uploads/a.png"}
	if err := Struct(file); err != nil {
		t.Fatalf("file message without caption rejected: %v", err)
	}
}

func TestSelfFriendRequestRejected(t *testing.T) {
	err := Struct(request.ApplyFriendRequest{SenderId: "0xme", ReceiverId: "0xme"})
	if !errorx.IsValidation(err) {
		t.Fatal("friend request to self accepted")
	}
}

func TestRemoveTopStruct(t *testing.T) {
	got := RemoveTopStruct(map[string]string{"SearchUsersRequest.query": "query is required"})
	if got["query"] != "query is required" {
		t.Fatalf("got %v", got)
	}
}
