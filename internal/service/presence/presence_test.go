package presence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"poly_chat_client/internal/dto/request"
	"poly_chat_client/internal/model"
	"poly_chat_client/internal/service/block"
	"poly_chat_client/internal/service/loop"
	"poly_chat_client/internal/service/presence"
	"poly_chat_client/internal/service/projection"
)

func userIDs(r []model.PresenceEntry) []string {
	out := make([]string, len(r))
	for i, e := range r {
		out[i] = e.UserID
	}
	return out
}

func TestSnapshotWinsOverDeltas(t *testing.T) {
	tr := presence.NewTracker(block.NewRegistry(), projection.Discard)
	tr.ReplaceSnapshot([]model.PresenceEntry{{UserID: "0xa"}, {UserID: "0xb"}})
	tr.ApplyJoin("0xc", model.PresenceEntry{DisplayName: "carol"})
	tr.ApplyLeave("0xa")

	if got := userIDs(tr.Roster()); len(got) != 2 || got[0] != "0xb" || got[1] != "0xc" {
		t.Fatalf("after deltas = %v", got)
	}

	tr.ReplaceSnapshot([]model.PresenceEntry{{UserID: "0xa"}})
	if got := userIDs(tr.Roster()); len(got) != 1 || got[0] != "0xa" {
		t.Fatalf("after snapshot = %v", got)
	}
}

func TestBlockedUsersNeverVisible(t *testing.T) {
	reg := block.NewRegistry()
	reg.SetBlocked([]model.BlockedUser{{UserID: "0xbad"}})
	rec := &projection.Recorder{}
	tr := presence.NewTracker(reg, rec)

	tr.ReplaceSnapshot([]model.PresenceEntry{{UserID: "0xbad"}, {UserID: "0xok"}})
	if tr.ApplyJoin("0xbad", model.PresenceEntry{}) {
		t.Fatal("join from blocked user applied")
	}
	if _, ok := tr.ApplyLeave("0xbad"); ok {
		t.Fatal("leave from blocked user applied")
	}
	for _, e := range rec.OfKind(projection.RosterChanged) {
		for _, u := range e.Roster {
			if u.UserID == "0xbad" {
				t.Fatal("blocked user leaked into roster event")
			}
		}
	}
}

func TestDefaultDisplayName(t *testing.T) {
	tr := presence.NewTracker(block.NewRegistry(), projection.Discard)
	tr.ApplyJoin("0x123456789", model.PresenceEntry{})
	e, _ := tr.Lookup("0x123456789")
	if e.DisplayName != "User 0x1234" {
		t.Fatalf("name = %q", e.DisplayName)
	}
	tr.UpdateProfile("0x123456789", "neo", "")
	e, _ = tr.Lookup("0x123456789")
	if e.DisplayName != "neo" {
		t.Fatalf("after profile update = %q", e.DisplayName)
	}
}

type fakeAPI struct {
	snapshots [][]model.PresenceEntry
	calls     int
	err       error
	reported  []request.PresenceRequest
}

func (f *fakeAPI) ActiveUsers(ctx context.Context) ([]model.PresenceEntry, error) {
	if f.err != nil {
		return nil, f.err
	}
	i := f.calls
	f.calls++
	if i >= len(f.snapshots) {
		i = len(f.snapshots) - 1
	}
	return f.snapshots[i], nil
}

func (f *fakeAPI) ReportPresence(ctx context.Context, req request.PresenceRequest) error {
	f.reported = append(f.reported, req)
	return nil
}

func TestPollerInterval(t *testing.T) {
	api := &fakeAPI{snapshots: [][]model.PresenceEntry{{{UserID: "0xa"}}, {{UserID: "0xb"}}}}
	sched := loop.NewManual()
	tr := presence.NewTracker(block.NewRegistry(), projection.Discard)
	p := presence.NewPoller(tr, api, sched, projection.Discard, 10*time.Second)

	p.Start()
	p.Start()
	if api.calls != 1 || userIDs(tr.Roster())[0] != "0xa" {
		t.Fatalf("calls=%d roster=%v", api.calls, userIDs(tr.Roster()))
	}
	sched.Advance(9 * time.Second)
	if api.calls != 1 {
		t.Fatalf("polled early: %d", api.calls)
	}
	sched.Advance(time.Second)
	if api.calls != 2 || userIDs(tr.Roster())[0] != "0xb" {
		t.Fatalf("calls=%d roster=%v", api.calls, userIDs(tr.Roster()))
	}

	p.Stop()
	sched.Advance(time.Minute)
	if api.calls != 2 {
		t.Fatalf("polled after stop: %d", api.calls)
	}
}

func TestPollerFailureNotifiesOnce(t *testing.T) {
	api := &fakeAPI{err: errors.New("down")}
	sched := loop.NewManual()
	rec := &projection.Recorder{}
	tr := presence.NewTracker(block.NewRegistry(), projection.Discard)
	p := presence.NewPoller(tr, api, sched, rec, time.Second)

	p.Start()
	sched.Advance(3 * time.Second)
	if n := len(rec.OfKind(projection.Notification)); n != 1 {
		t.Fatalf("notifications = %d", n)
	}
}

func TestStaleSnapshotDropped(t *testing.T) {
	api := &fakeAPI{snapshots: [][]model.PresenceEntry{{{UserID: "0xnew"}}}}
	sched := loop.NewManual()
	sched.Hold = true
	tr := presence.NewTracker(block.NewRegistry(), projection.Discard)
	p := presence.NewPoller(tr, api, sched, projection.Discard, time.Minute)

	p.Poll()
	p.Poll()
	sched.Complete(1)
	api.snapshots = [][]model.PresenceEntry{{{UserID: "0xold"}}}
	sched.Complete(0)
	if got := userIDs(tr.Roster()); len(got) != 1 || got[0] != "0xnew" {
		t.Fatalf("roster = %v", got)
	}
}
