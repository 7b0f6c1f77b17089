package session

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
	"github.com/DoyleJ11/quiz-show-backend/internal/notify"
)

// helper: receive one update with a timeout so tests never hang
func recvUpdate(t *testing.T, ch <-chan Update, within time.Duration) Update {
	t.Helper()
	select {
	case u, ok := <-ch:
		if !ok {
			t.Fatalf("client outbox closed unexpectedly")
		}
		return u
	case <-time.After(within):
		t.Fatalf("timed out waiting for update")
		return Update{} // unreachable
	}
}

func recvNoUpdate(t *testing.T, ch <-chan Update, within time.Duration) {
	t.Helper()
	select {
	case u, ok := <-ch:
		if !ok {
			// channel closed → that's fine; no further updates possible
			return
		}
		t.Fatalf("expected no update within %v, but got version %d", within, u.Version)
	case <-time.After(within):
		// good: no update
	}
}

type fakeStore struct {
	mu    sync.Mutex
	saved [][]engine.Question
	fail  error
	saves chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{saves: make(chan struct{}, 16)}
}

func (f *fakeStore) LoadQuestions(context.Context) ([]engine.Question, error) { return nil, nil }

func (f *fakeStore) SaveQuestions(_ context.Context, qs []engine.Question) error {
	f.mu.Lock()
	f.saved = append(f.saved, qs)
	err := f.fail
	f.mu.Unlock()
	f.saves <- struct{}{}
	return err
}

func (f *fakeStore) Close() error { return nil }

func (f *fakeStore) last() []engine.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[len(f.saved)-1]
}

type captured struct {
	name    string
	payload any
}

func collector() (notify.Notifier, <-chan captured) {
	ch := make(chan captured, 64)
	return notify.Func(func(name string, payload any) { ch <- captured{name, payload} }), ch
}

func waitFor(t *testing.T, ch <-chan captured, name string) captured {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case c := <-ch:
			if c.name == name {
				return c
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", name)
			return captured{}
		}
	}
}

func initialState() engine.State {
	s := engine.NewState([]engine.Question{{
		ID: "q1", Text: "Stolica Francji?", Category: "Geografia",
		Answers:            []engine.Answer{{Text: "Paryż", IsCorrect: true}, {Text: "Lyon"}},
		CorrectAnswerIndex: 0,
	}})
	s.Players = []engine.Player{engine.NewPlayer("p1", "Ala"), engine.NewPlayer("p2", "Bartek")}
	return s
}

func newTestSession(t *testing.T, opts Options) *Session {
	t.Helper()
	if opts.Log == nil {
		opts.Log = zaptest.NewLogger(t)
	}
	ctx, cancel := context.WithCancel(context.Background())
	s := New(ctx, initialState(), opts)
	t.Cleanup(func() {
		cancel()
		<-s.Done()
	})
	return s
}

func TestSession_Dispatch_BroadcastsAndVersionIncrements(t *testing.T) {
	s := newTestSession(t, Options{})

	out := make(chan Update, 2)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}

	first := recvUpdate(t, out, 100*time.Millisecond)
	require.Equal(t, 0, first.Version)
	require.Equal(t, engine.PhaseNotStarted, engine.DerivePhase(first.State))

	s.Inbox() <- Dispatch{Action: engine.StartRound{Round: engine.RoundKnowledge}}

	next := recvUpdate(t, out, 100*time.Millisecond)
	assert.Equal(t, 1, next.Version)
	assert.Equal(t, engine.PhaseActive, engine.DerivePhase(next.State))
	assert.True(t, engine.ContainsEvent(next.Events, engine.EvtRoundStarted))

	s.Inbox() <- Shutdown{}
}

func TestSession_RejectedActionChangesNothing(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()

	out := make(chan Update, 2)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvUpdate(t, out, 100*time.Millisecond)

	res, err := s.Apply(ctx, engine.UseCard{PlayerID: "p1", Card: engine.CardSkip})
	require.NoError(t, err)
	assert.ErrorIs(t, res.Err, engine.ErrCardNotAvailable)
	assert.Equal(t, 0, res.Version)

	recvNoUpdate(t, out, 100*time.Millisecond)

	entries, err := s.History(ctx)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSession_PersistsQuestionSelection(t *testing.T) {
	st := newFakeStore()
	n, notes := collector()
	s := newTestSession(t, Options{Store: st, Notifier: n})

	res, err := s.Apply(context.Background(), engine.SetCurrentQuestion{QuestionID: "q1"})
	require.NoError(t, err)
	require.NoError(t, res.Err)

	select {
	case <-st.saves:
	case <-time.After(time.Second):
		t.Fatal("questions were not saved")
	}
	saved := st.last()
	require.Len(t, saved, 1)
	assert.True(t, saved[0].Used)

	shown := waitFor(t, notes, notify.QuestionShown)
	assert.Equal(t, "q1", shown.payload.(engine.Event).QuestionID)
}

func TestSession_PersistenceFailureIsOnlyAWarning(t *testing.T) {
	st := newFakeStore()
	st.fail = errors.New("disk full")
	n, notes := collector()
	s := newTestSession(t, Options{Store: st, Notifier: n})
	ctx := context.Background()

	res, err := s.Apply(ctx, engine.MarkQuestionUsed{QuestionID: "q1"})
	require.NoError(t, err)
	require.NoError(t, res.Err)

	warning := waitFor(t, notes, PersistenceWarning)
	assert.Equal(t, "disk full", warning.payload)

	view, err := s.View(ctx)
	require.NoError(t, err)
	assert.True(t, view.State.Questions[0].Used)
	assert.Empty(t, view.State.RemainingQuestions)
}

func TestSession_UndoRestoresPreviousState(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()

	_, err := s.Apply(ctx, engine.StartRound{Round: engine.RoundKnowledge})
	require.NoError(t, err)
	_, err = s.Apply(ctx, engine.SetActivePlayer{PlayerID: "p1"})
	require.NoError(t, err)
	res, err := s.Apply(ctx, engine.AnswerQuestion{Correct: true})
	require.NoError(t, err)
	require.Equal(t, 10, res.State.Players[0].Points)

	undone, err := s.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, undone.Err)
	assert.Equal(t, 0, undone.State.Players[0].Points)
	assert.Equal(t, 4, undone.Version)

	entries, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, string(engine.ActSetActivePlayer), entries[0].Type)
	assert.Equal(t, "Ala is up", entries[0].Description)

	s.Inbox() <- ClearHistory{}
	undone, err = s.Undo(ctx)
	require.NoError(t, err)
	assert.ErrorIs(t, undone.Err, ErrNothingToUndo)
}

func TestSession_TimerExpiryCostsALife(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()

	_, err := s.Apply(ctx, engine.StartRound{Round: engine.RoundSpeed})
	require.NoError(t, err)
	_, err = s.Apply(ctx, engine.SetActivePlayer{PlayerID: "p2"})
	require.NoError(t, err)

	out := make(chan Update, 4)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvUpdate(t, out, 100*time.Millisecond)

	s.Inbox() <- StartTimer{Duration: 20 * time.Millisecond}

	next := recvUpdate(t, out, 500*time.Millisecond)
	assert.Equal(t, engine.MaxLives-1, next.State.Players[1].Lives)
	require.NotEmpty(t, next.Events)
	assert.Equal(t, engine.EvtQuestionAnswered, next.Events[0].Type)
	assert.False(t, next.Events[0].Correct)

	view, err := s.View(ctx)
	require.NoError(t, err)
	assert.False(t, view.TimerArmed)
}

func TestSession_TimerDisarmedByAnswer(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()

	_, err := s.Apply(ctx, engine.StartRound{Round: engine.RoundSpeed})
	require.NoError(t, err)
	_, err = s.Apply(ctx, engine.SetActivePlayer{PlayerID: "p1"})
	require.NoError(t, err)

	out := make(chan Update, 4)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvUpdate(t, out, 100*time.Millisecond)

	s.Inbox() <- StartTimer{Duration: 150 * time.Millisecond}
	s.Inbox() <- Dispatch{Action: engine.AnswerQuestion{Correct: true}}

	answered := recvUpdate(t, out, 100*time.Millisecond)
	assert.Equal(t, engine.BasePoints*2, answered.State.Players[0].Points, "turbo from speed entry doubles")

	recvNoUpdate(t, out, 300*time.Millisecond)
}

func TestSession_StopTimer(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()
	_, err := s.Apply(ctx, engine.StartRound{Round: engine.RoundSpeed})
	require.NoError(t, err)
	_, err = s.Apply(ctx, engine.SetActivePlayer{PlayerID: "p1"})
	require.NoError(t, err)

	out := make(chan Update, 2)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvUpdate(t, out, 100*time.Millisecond)

	s.Inbox() <- StartTimer{Duration: 50 * time.Millisecond}
	s.Inbox() <- StopTimer{}

	recvNoUpdate(t, out, 200*time.Millisecond)
}

func TestSession_DropSlowClient(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()

	out := make(chan Update, 1)
	s.Inbox() <- Join{ClientID: "slow", Outbox: out}

	_, err := s.Apply(ctx, engine.StartRound{Round: engine.RoundKnowledge})
	require.NoError(t, err)

	view, err := s.View(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, view.NumClients)
}

func TestSession_ShutdownClosesClients(t *testing.T) {
	s := newTestSession(t, Options{})

	out := make(chan Update, 2)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvUpdate(t, out, 100*time.Millisecond)

	s.Inbox() <- Shutdown{}

	select {
	case _, ok := <-out:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("outbox not closed")
	}
	<-s.Done()

	_, err := s.Apply(context.Background(), engine.EndRound{})
	assert.ErrorIs(t, err, ErrClosed)
}

func TestSession_ZeroTimerNeverFires(t *testing.T) {
	s := newTestSession(t, Options{})
	ctx := context.Background()
	_, err := s.Apply(ctx, engine.StartRound{Round: engine.RoundSpeed})
	require.NoError(t, err)
	_, err = s.Apply(ctx, engine.SetActivePlayer{PlayerID: "p1"})
	require.NoError(t, err)

	out := make(chan Update, 2)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvUpdate(t, out, 100*time.Millisecond)

	s.Inbox() <- StartTimer{Duration: 0}
	recvNoUpdate(t, out, 100*time.Millisecond)

	view, err := s.View(ctx)
	require.NoError(t, err)
	assert.False(t, view.TimerArmed)
	assert.Equal(t, engine.MaxLives, view.State.Players[0].Lives)
}

func TestSession_PersistenceWarningReachesClients(t *testing.T) {
	st := newFakeStore()
	st.fail = errors.New("disk full")
	s := newTestSession(t, Options{Store: st})

	out := make(chan Update, 4)
	s.Inbox() <- Join{ClientID: "c1", Outbox: out}
	_ = recvUpdate(t, out, 100*time.Millisecond)

	res, err := s.Apply(context.Background(), engine.MarkQuestionUsed{QuestionID: "q1"})
	require.NoError(t, err)
	require.NoError(t, res.Err)

	applied := recvUpdate(t, out, time.Second)
	assert.Empty(t, applied.Warning)
	assert.Equal(t, 1, applied.Version)

	warned := recvUpdate(t, out, time.Second)
	assert.Equal(t, "disk full", warned.Warning)
	assert.Equal(t, 1, warned.Version)
}

func TestSession_UndoKeepsLaterCatalogueEdits(t *testing.T) {
	st := newFakeStore()
	s := newTestSession(t, Options{Store: st})
	ctx := context.Background()

	res, err := s.Apply(ctx, engine.AwardCard{PlayerID: "p1", Card: engine.CardSkip})
	require.NoError(t, err)
	require.NoError(t, res.Err)

	added := engine.Question{
		ID: "q2", Text: "Stolica Niemiec?", Category: "Geografia",
		Answers: []engine.Answer{{Text: "Berlin", IsCorrect: true}, {Text: "Bonn"}},
	}
	res, err = s.Apply(ctx, engine.AddQuestion{Question: added})
	require.NoError(t, err)
	require.NoError(t, res.Err)

	select {
	case <-st.saves:
	case <-time.After(time.Second):
		t.Fatal("added question was not saved")
	}
	require.Len(t, st.last(), 2)

	undone, err := s.Undo(ctx)
	require.NoError(t, err)
	require.NoError(t, undone.Err)
	assert.Empty(t, undone.State.Players[0].Cards)
	require.Len(t, undone.State.Questions, 2)
	assert.Equal(t, "q2", undone.State.Questions[1].ID)
	assert.Empty(t, undone.Events)

	select {
	case <-st.saves:
		t.Fatal("undo rewrote the catalogue")
	case <-time.After(100 * time.Millisecond):
	}
	assert.Len(t, st.last(), 2)

	entries, err := s.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, string(engine.ActAddQuestion), entries[0].Type)
}
