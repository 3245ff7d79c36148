package model_test

import (
	"encoding/json"
	"testing"

	"poly_chat_client/internal/model"
	"poly_chat_client/pkg/errorx"
)

func TestFriendRequestTransitions(t *testing.T) {
	cases := []struct {
		from, to model.RequestStatus
		ok       bool
	}{
		{model.RequestPending, model.RequestAccepted, true},
		{model.RequestPending, model.RequestRejected, true},
		{model.RequestPending, model.RequestPending, false},
		{model.RequestAccepted, model.RequestPending, false},
		{model.RequestAccepted, model.RequestRejected, false},
		{model.RequestRejected, model.RequestAccepted, false},
		{model.RequestRejected, model.RequestPending, false},
		{"", model.RequestAccepted, false},
	}
	for _, tc := range cases {
		r := model.FriendRequest{SenderID: "0xs", ReceiverID: "0xr", Status: tc.from}
		err := r.Transition(tc.to)
		if (err == nil) != tc.ok {
			t.Errorf("%q -> %q: err = %v", tc.from, tc.to, err)
			continue
		}
		if err != nil {
			if !errorx.IsValidation(err) || r.Status != tc.from {
				t.Errorf("%q -> %q: illegal move changed state or wrong code", tc.from, tc.to)
			}
		} else if r.Status != tc.to {
			t.Errorf("%q -> %q: status = %q", tc.from, tc.to, r.Status)
		}
	}
}

func TestFriendRequestMissingStatusDecodesPending(t *testing.T) {
	var r model.FriendRequest
	if err := json.Unmarshal([]byte(`{"senderId":"0xs","receiverId":"0xr"}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.Status != model.RequestPending || r.SenderID != "0xs" {
		t.Fatalf("decoded = %+v", r)
	}
	if err := r.Transition(model.RequestAccepted); err != nil {
		t.Fatalf("pending -> accepted: %v", err)
	}

	if err := json.Unmarshal([]byte(`{"senderId":"0xs","status":"rejected"}`), &r); err != nil {
		t.Fatal(err)
	}
	if r.Status != model.RequestRejected {
		t.Fatalf("status = %q", r.Status)
	}
}

func TestFriendRequestPeer(t *testing.T) {
	r := model.FriendRequest{SenderID: "0xs", ReceiverID: "0xr"}
	if r.Peer("0xs") != "0xr" || r.Peer("0xr") != "0xs" {
		t.Fatal("Peer")
	}
}

func TestPrivateChatPreview(t *testing.T) {
	cases := []struct {
		last *model.Message
		want string
	}{
		{nil, "No messages yet"},
		{&model.Message{Kind: model.KindImage}, "Image"},
		{&model.Message{Kind: model.KindFile}, "File"},
		{&model.Message{Kind: model.KindText, Content: "short"}, "short"},
		{&model.Message{Kind: model.KindText, Content: "this is a rather long message body"}, "this is a rather lon..."},
	}
	for _, tc := range cases {
		if got := (model.PrivateChat{LastMessage: tc.last}).Preview(); got != tc.want {
			t.Errorf("Preview = %q, want %q", got, tc.want)
		}
	}
}

func TestConversationIdentity(t *testing.T) {
	a := model.PublicConversation("General")
	b := model.Conversation{Type: model.ConversationPublic, ID: "General", Label: "# General"}
	if !a.Same(b) {
		t.Fatal("label must not affect equality")
	}
	if a.Same(model.PrivateConversation("General")) {
		t.Fatal("public and private with same id are different")
	}
	if !(model.Conversation{}).IsZero() {
		t.Fatal("zero conversation")
	}
}

func TestMessageConversationAndKind(t *testing.T) {
	if c := (model.Message{RoomID: "r1"}).Conversation(); !c.Same(model.PublicConversation("r1")) {
		t.Fatalf("public = %v", c)
	}
	if c := (model.Message{PrivateRoomID: "p1"}).Conversation(); !c.Same(model.PrivateConversation("p1")) {
		t.Fatalf("private = %v", c)
	}
	if model.KindFromMIME("image/png") != model.KindImage || model.KindFromMIME("application/pdf") != model.KindFile {
		t.Fatal("KindFromMIME")
	}
}
