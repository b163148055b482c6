package realtime

import (
	"fmt"
	"sync"
	"testing"
)

type fakeConn struct {
	id        string
	sessionID string
	role      string

	mu     sync.Mutex
	frames []Frame
	fail   bool
}

func (c *fakeConn) ID() string        { return c.id }
func (c *fakeConn) SessionID() string { return c.sessionID }
func (c *fakeConn) Role() string      { return c.role }

func (c *fakeConn) Send(frame Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return fmt.Errorf("connection gone")
	}
	c.frames = append(c.frames, frame)
	return nil
}

func (c *fakeConn) received() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func TestAttachAndMembers(t *testing.T) {
	r := NewRegistry()
	a := &fakeConn{id: "a", sessionID: "s1", role: "user"}
	b := &fakeConn{id: "b", sessionID: "s1", role: "admin"}
	other := &fakeConn{id: "c", sessionID: "s2", role: "user"}

	r.Attach(a)
	r.Attach(b)
	r.Attach(other)

	if got := len(r.Members("s1")); got != 2 {
		t.Fatalf("expected 2 members in s1, got %d", got)
	}
	if got := len(r.Members("s2")); got != 1 {
		t.Fatalf("expected 1 member in s2, got %d", got)
	}
}

func TestDetachRemovesOnlyThatConnection(t *testing.T) {
	r := NewRegistry()
	a := &fakeConn{id: "a", sessionID: "s1", role: "user"}
	b := &fakeConn{id: "b", sessionID: "s1", role: "user"}

	r.Attach(a)
	r.Attach(b)
	r.Detach(a)

	members := r.Members("s1")
	if len(members) != 1 {
		t.Fatalf("expected 1 remaining member, got %d", len(members))
	}
	if members[0].ID() != "b" {
		t.Fatalf("wrong member remained: %s", members[0].ID())
	}
}

func TestDetachLastMemberKeepsAnsweredFlag(t *testing.T) {
	r := NewRegistry()
	a := &fakeConn{id: "a", sessionID: "s1", role: "user"}

	r.Attach(a)
	r.MarkAnswered("s1")
	r.Detach(a)

	if got := len(r.Members("s1")); got != 0 {
		t.Fatalf("expected empty member set, got %d", got)
	}
	if !r.HasAnswered("s1") {
		t.Fatal("answered flag must survive the last detach")
	}
}

func TestDetachUnknownConnectionIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Detach(&fakeConn{id: "ghost", sessionID: "nowhere", role: "user"})

	if got := len(r.Members("nowhere")); got != 0 {
		t.Fatalf("expected no members, got %d", got)
	}
}

func TestHasAnsweredDefaultsFalse(t *testing.T) {
	r := NewRegistry()
	if r.HasAnswered("s1") {
		t.Fatal("fresh session must not be marked answered")
	}

	r.MarkAnswered("s1")
	if !r.HasAnswered("s1") {
		t.Fatal("expected answered flag set")
	}
	if r.HasAnswered("s2") {
		t.Fatal("flag must not leak across sessions")
	}
}

func TestConcurrentAttachDetachAcrossSessions(t *testing.T) {
	r := NewRegistry()

	var wg sync.WaitGroup
	for s := 0; s < 8; s++ {
		sessionID := fmt.Sprintf("s%d", s)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				c := &fakeConn{id: fmt.Sprintf("%s-%d", sessionID, i), sessionID: sessionID, role: "user"}
				r.Attach(c)
				r.Members(sessionID)
				r.MarkAnswered(sessionID)
				r.Detach(c)
			}
		}()
	}
	wg.Wait()

	for s := 0; s < 8; s++ {
		sessionID := fmt.Sprintf("s%d", s)
		if got := len(r.Members(sessionID)); got != 0 {
			t.Fatalf("session %s: expected empty member set, got %d", sessionID, got)
		}
		if !r.HasAnswered(sessionID) {
			t.Fatalf("session %s: expected answered flag set", sessionID)
		}
	}
}
