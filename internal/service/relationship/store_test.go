package relationship_test

import (
	"context"
	"testing"

	"poly_chat_client/internal/dto/event"
	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/dto/respond"
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/block"
	"poly_chat_client/internal/service/loop"
	"poly_chat_client/internal/service/projection"
	"poly_chat_client/internal/service/relationship"
	"poly_chat_client/pkg/errorx"
)

// fakeServer 模拟服务端的好友关系数据
type fakeServer struct {
	friends  []model.Friend
	requests []model.FriendRequest
	chats    []model.PrivateChat

	friendLoads, requestLoads, chatLoads int
	sendErr                              error
	responded                            []request.PassContactApplyRequest
}

func (f *fakeServer) Friends(ctx context.Context, wallet string) ([]model.Friend, error) {
	f.friendLoads++
	return append([]model.Friend(nil), f.friends...), nil
}

func (f *fakeServer) IncomingRequests(ctx context.Context, wallet string) ([]model.FriendRequest, error) {
	f.requestLoads++
	return append([]model.FriendRequest(nil), f.requests...), nil
}

func (f *fakeServer) PrivateChats(ctx context.Context, wallet string) ([]model.PrivateChat, error) {
	f.chatLoads++
	return append([]model.PrivateChat(nil), f.chats...), nil
}

func (f *fakeServer) SendFriendRequest(ctx context.Context, req request.ApplyFriendRequest) (*respond.StatusRespond, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	return &respond.StatusRespond{Success: true}, nil
}

func (f *fakeServer) RespondFriendRequest(ctx context.Context, req request.PassContactApplyRequest) (*respond.StatusRespond, error) {
	f.responded = append(f.responded, req)
	var kept []model.FriendRequest
	for _, r := range f.requests {
		if r.SenderID != req.SenderId {
			kept = append(kept, r)
		}
	}
	f.requests = kept
	if req.Action == "accept" {
		f.friends = append(f.friends, model.Friend{WalletAddress: req.SenderId, PrivateRoomID: "p-" + req.SenderId})
		f.chats = append(f.chats, model.PrivateChat{ID: "p-" + req.SenderId, UserID: req.SenderId})
	}
	return &respond.StatusRespond{Success: true}, nil
}

type fixture struct {
	store *relationship.Store
	srv   *fakeServer
	sched *loop.Manual
	rec   *projection.Recorder
	reg   *block.Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		srv:   &fakeServer{},
		sched: loop.NewManual(),
		rec:   &projection.Recorder{},
		reg:   block.NewRegistry(),
	}
	f.store = relationship.NewStore(f.srv, f.sched, f.rec, f.reg, func() string { return "0xme" })
	return f
}

func TestPushTriggersReloadNotMutation(t *testing.T) {
	f := newFixture(t)
	f.srv.requests = []model.FriendRequest{{SenderID: "0xs", SenderName: "sam", Status: model.RequestPending}}

	f.store.ApplyRequestReceived(event.FriendRequestPayload{SenderId: "0xs", SenderName: "sam"})
	if f.srv.requestLoads != 1 {
		t.Fatalf("requestLoads = %d", f.srv.requestLoads)
	}
	if got := f.store.IncomingRequests(); len(got) != 1 || got[0].SenderID != "0xs" {
		t.Fatalf("requests = %+v", got)
	}
	if e, _ := f.rec.Last(projection.Notification); e.Text != "sam sent you a friend request" {
		t.Fatalf("notification = %q", e.Text)
	}
}

func TestBlockedSenderPushIgnored(t *testing.T) {
	f := newFixture(t)
	f.reg.SetBlocked([]model.BlockedUser{{UserID: "0xbad"}})
	f.store.ApplyRequestReceived(event.FriendRequestPayload{SenderId: "0xbad"})
	f.store.ApplyRequestAccepted(event.FriendRequestPayload{SenderId: "0xme", ReceiverId: "0xbad"})
	if f.srv.requestLoads+f.srv.friendLoads != 0 {
		t.Fatal("blocked push reached the store")
	}
	if len(f.rec.OfKind(projection.Notification)) != 0 {
		t.Fatal("blocked push produced a notification")
	}
}

func TestAcceptAppliesFriendsAndChatsTogether(t *testing.T) {
	f := newFixture(t)
	f.srv.requests = []model.FriendRequest{{SenderID: "0xs", Status: model.RequestPending}}
	f.store.LoadIncomingRequests()
	f.rec.Reset()

	f.store.Accept("0xs")

	if len(f.srv.responded) != 1 || f.srv.responded[0].Action != "accept" || f.srv.responded[0].ReceiverId != "0xme" {
		t.Fatalf("responded = %+v", f.srv.responded)
	}
	if room, ok := f.store.PrivateRoomWith("0xs"); !ok || room != "p-0xs" {
		t.Fatalf("private room = %q %v", room, ok)
	}
	if len(f.store.Friends()) != 1 || len(f.store.IncomingRequests()) != 0 {
		t.Fatalf("friends=%v requests=%v", f.store.Friends(), f.store.IncomingRequests())
	}

	// FriendsChanged 与 PrivateChatsChanged 相邻发出，中间没有其他列表状态
	evs := f.rec.Events()
	for i, e := range evs {
		if e.Kind == projection.FriendsChanged && len(e.Friends) == 1 {
			if i+1 >= len(evs) || evs[i+1].Kind != projection.PrivateChatsChanged || len(evs[i+1].PrivateChats) != 1 {
				t.Fatalf("friends and chats not applied together: %+v", evs)
			}
			return
		}
	}
	t.Fatal("no FriendsChanged event with the new friend")
}

func TestRejectOnlyReloadsRequests(t *testing.T) {
	f := newFixture(t)
	f.srv.requests = []model.FriendRequest{{SenderID: "0xs", Status: model.RequestPending}}
	f.store.LoadIncomingRequests()

	f.store.Reject("0xs")
	if f.srv.friendLoads != 0 || f.srv.requestLoads != 2 {
		t.Fatalf("friendLoads=%d requestLoads=%d", f.srv.friendLoads, f.srv.requestLoads)
	}
	if len(f.store.IncomingRequests()) != 0 {
		t.Fatal("request still listed")
	}
}

func TestTerminalRequestCannotBeAnsweredAgain(t *testing.T) {
	f := newFixture(t)
	f.srv.requests = []model.FriendRequest{{SenderID: "0xs", Status: model.RequestAccepted}}
	f.store.LoadIncomingRequests()

	f.store.Reject("0xs")
	if len(f.srv.responded) != 0 {
		t.Fatal("illegal transition reached the server")
	}
	e, _ := f.rec.Last(projection.Notification)
	if e.Level != projection.LevelError {
		t.Fatalf("notification = %+v", e)
	}
}

func TestSendRequestFailureNoStateChange(t *testing.T) {
	f := newFixture(t)
	f.srv.sendErr = errorx.New(errorx.CodeRequest, "Friend request already sent")

	f.store.SendRequest("0xother")
	e, _ := f.rec.Last(projection.Notification)
	if e.Level != projection.LevelError || e.Text != "Failed to send friend request: Friend request already sent" {
		t.Fatalf("notification = %+v", e)
	}
	if len(f.rec.OfKind(projection.FriendsChanged))+len(f.rec.OfKind(projection.RequestsChanged)) != 0 {
		t.Fatal("failed send changed lists")
	}

	f.srv.sendErr = nil
	f.store.SendRequest("0xother")
	if e, _ := f.rec.Last(projection.Notification); e.Text != "Friend request sent" {
		t.Fatalf("notification = %+v", e)
	}
}

func TestListsFilteredByBlocklist(t *testing.T) {
	f := newFixture(t)
	f.srv.friends = []model.Friend{{WalletAddress: "0xa"}, {WalletAddress: "0xbad"}}
	f.srv.chats = []model.PrivateChat{{ID: "p1", UserID: "0xbad"}}
	f.srv.requests = []model.FriendRequest{{SenderID: "0xbad", Status: model.RequestPending}}
	f.store.LoadAll()

	f.reg.SetBlocked([]model.BlockedUser{{UserID: "0xbad"}})
	if len(f.store.Friends()) != 1 || len(f.store.PrivateChats()) != 0 || len(f.store.IncomingRequests()) != 0 {
		t.Fatal("blocked user visible")
	}
}

func TestStaleFriendsResponseDropped(t *testing.T) {
	f := newFixture(t)
	f.sched.Hold = true
	f.store.LoadFriends()
	f.store.LoadFriends()

	f.srv.friends = []model.Friend{{WalletAddress: "0xnew"}}
	f.sched.Complete(1)
	f.srv.friends = []model.Friend{{WalletAddress: "0xold"}}
	f.sched.Complete(0)

	if got := f.store.Friends(); len(got) != 1 || got[0].WalletAddress != "0xnew" {
		t.Fatalf("friends = %+v", got)
	}
}

func TestResetDropsInFlight(t *testing.T) {
	f := newFixture(t)
	f.srv.friends = []model.Friend{{WalletAddress: "0xa"}}
	f.sched.Hold = true
	f.store.LoadFriends()
	f.store.Reset()
	f.sched.CompleteAll()
	if len(f.store.Friends()) != 0 {
		t.Fatal("response applied after reset")
	}
}
