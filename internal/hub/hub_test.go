package hub

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
	"github.com/DoyleJ11/quiz-show-backend/internal/session"
)

func TestHub_Create_Get_SamePointer(t *testing.T) {
	ctx := context.Background()
	h := NewHub(ctx, session.Options{})
	defer func() { h.Inbox() <- ShutdownHub{} }()
	reply := make(chan *session.Session, 1)

	state := engine.NewState(nil)
	h.Inbox() <- CreateSession{Code: "QUIZ42", State: state, Reply: reply}
	s1 := <-reply

	h.Inbox() <- GetSession{Code: "QUIZ42", Reply: reply}
	s2 := <-reply

	if s1 == nil || s2 == nil || s1 != s2 {
		t.Fatalf("expected same session pointer")
	}

	h.Inbox() <- EnsureSession{Code: "QUIZ42", State: state, Reply: reply}
	assert.Same(t, s1, <-reply)
}

func TestHub_RemoveStopsSession(t *testing.T) {
	h := NewHub(context.Background(), session.Options{})
	defer func() { h.Inbox() <- ShutdownHub{} }()
	reply := make(chan *session.Session, 1)

	h.Inbox() <- CreateSession{Code: "A", State: engine.NewState(nil), Reply: reply}
	s := <-reply
	require.NotNil(t, s)

	h.Inbox() <- RemoveSession{Code: "A"}

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("session still running")
	}

	h.Inbox() <- GetSession{Code: "A", Reply: reply}
	assert.Nil(t, <-reply)

	codes := make(chan []string, 1)
	h.Inbox() <- ListSessions{Reply: codes}
	assert.Empty(t, <-codes)
}

func TestHub_ShutdownStopsEverything(t *testing.T) {
	h := NewHub(context.Background(), session.Options{})
	reply := make(chan *session.Session, 1)
	h.Inbox() <- CreateSession{Code: "A", State: engine.NewState(nil), Reply: reply}
	s := <-reply

	h.Inbox() <- ShutdownHub{}

	for _, done := range []<-chan struct{}{h.Done(), s.Done()} {
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("not stopped")
		}
	}
}

func TestHub_RemoveAfterSessionStopped(t *testing.T) {
	h := NewHub(context.Background(), session.Options{})
	defer func() { h.Inbox() <- ShutdownHub{} }()
	reply := make(chan *session.Session, 1)

	h.Inbox() <- CreateSession{Code: "A", State: engine.NewState(nil), Reply: reply}
	s := <-reply
	require.NotNil(t, s)
	s.Inbox() <- session.Shutdown{}
	<-s.Done()

	h.Inbox() <- RemoveSession{Code: "A"}

	codes := make(chan []string, 1)
	h.Inbox() <- ListSessions{Reply: codes}
	select {
	case got := <-codes:
		assert.Empty(t, got)
	case <-time.After(time.Second):
		t.Fatal("hub blocked on a stopped session")
	}
}
