package session

import (
	"context"
	"errors"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
	"github.com/DoyleJ11/quiz-show-backend/internal/history"
	"github.com/DoyleJ11/quiz-show-backend/internal/notify"
	"github.com/DoyleJ11/quiz-show-backend/internal/store"
)

var ErrClosed = errors.New("session closed")
var ErrNothingToUndo = errors.New("nothing to undo")

type Msg interface{ isSessionMsg() }

// Dispatch applies one action. Reply may be nil; if set it needs room for
// one Result.
type Dispatch struct {
	Action engine.Action
	Reply  chan Result
}

func (Dispatch) isSessionMsg() {}

type Join struct {
	ClientID string
	Outbox   chan Update // where this client wants to receive updates
}

func (Join) isSessionMsg() {}

type Leave struct{ ClientID string }

func (Leave) isSessionMsg() {}

type Undo struct {
	Reply chan Result
}

func (Undo) isSessionMsg() {}

type GetState struct {
	Reply chan View
}

func (GetState) isSessionMsg() {}

type GetHistory struct {
	Reply chan []history.Entry
}

func (GetHistory) isSessionMsg() {}

type ClearHistory struct{}

func (ClearHistory) isSessionMsg() {}

// StartTimer arms the answer countdown. On expiry the active player gets a
// wrong answer. Re-arming or any applied action disarms the previous timer;
// a non-positive duration only disarms.
type StartTimer struct{ Duration time.Duration }

func (StartTimer) isSessionMsg() {}

type StopTimer struct{}

func (StopTimer) isSessionMsg() {}

type timerFired struct{ gen int }

func (timerFired) isSessionMsg() {}

type persistFailed struct{ reason string }

func (persistFailed) isSessionMsg() {}

type Shutdown struct{}

func (Shutdown) isSessionMsg() {}

// Update is what subscribers receive after every committed change. An
// update with Warning set carries no new state, only a save failure.
type Update struct {
	Version int
	State   engine.State
	Events  []engine.Event
	Warning string
}

type Result struct {
	Version int
	State   engine.State
	Events  []engine.Event
	Err     error
}

type View struct {
	Version    int
	NumClients int
	TimerArmed bool
	State      engine.State
}

type Options struct {
	Log          *zap.Logger
	Store        store.QuestionStore
	Notifier     notify.Notifier
	HistoryLimit int
}

// Session owns one game. Its loop is the only writer of the state.
type Session struct {
	inbox    chan Msg
	state    engine.State
	version  int
	clients  map[string]chan Update
	history  *history.Log
	effects  *effects
	log      *zap.Logger
	timer    *time.Timer
	timerGen int
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func New(parent context.Context, initial engine.State, opts Options) *Session {
	ctx, cancel := context.WithCancel(parent)
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}

	s := &Session{
		inbox:   make(chan Msg, 64), // Small buffer
		state:   initial.Clone(),
		clients: make(map[string]chan Update),
		history: history.New(opts.HistoryLimit),
		log:     log,
		ctx:     ctx,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	s.effects = newEffects(opts.Store, opts.Notifier, s.relayWarning, log)

	go s.loop()
	return s
}

// relayWarning runs on the effects goroutine and hands the failure to the loop.
func (s *Session) relayWarning(reason string) {
	select {
	case s.inbox <- persistFailed{reason: reason}:
	case <-s.ctx.Done():
	}
}

func (s *Session) loop() {
	defer close(s.done)
	for {
		select {
		case <-s.ctx.Done():
			s.shutdown()
			return

		case m := <-s.inbox:
			switch msg := m.(type) {
			case Join:
				s.clients[msg.ClientID] = msg.Outbox
				select {
				case msg.Outbox <- s.update(nil):
				default:
				}

			case Leave:
				delete(s.clients, msg.ClientID)

			case Dispatch:
				res := s.apply(msg.Action)
				if msg.Reply != nil {
					msg.Reply <- res
				}

			case Undo:
				res := s.undo()
				if msg.Reply != nil {
					msg.Reply <- res
				}

			case GetState:
				msg.Reply <- View{
					Version:    s.version,
					NumClients: len(s.clients),
					TimerArmed: s.timer != nil,
					State:      s.state.Clone(),
				}

			case GetHistory:
				msg.Reply <- s.history.Entries()

			case ClearHistory:
				s.history.Clear()

			case StartTimer:
				if msg.Duration <= 0 {
					s.disarmTimer()
					break
				}
				s.armTimer(msg.Duration)

			case StopTimer:
				s.disarmTimer()

			case timerFired:
				if msg.gen != s.timerGen || s.timer == nil {
					break // stale
				}
				s.timer = nil
				if engine.DerivePhase(s.state) != engine.PhaseActive {
					break
				}
				s.log.Info("answer timer expired")
				s.apply(engine.AnswerQuestion{Correct: false})

			case persistFailed:
				s.publish(Update{Version: s.version, Warning: msg.reason})

			case Shutdown:
				s.shutdown()
				return
			}
		}
	}
}

// apply runs the reducer and commits. The history snapshot is the state the
// reducer received, taken on this goroutine, so nothing can slip in between.
func (s *Session) apply(a engine.Action) Result {
	prev := s.state
	next, events, err := engine.Dispatch(s.log, prev, a)
	if err != nil {
		return Result{Version: s.version, State: prev.Clone(), Err: err}
	}

	desc, playerIDs := history.Describe(a, prev)
	s.history.AddAction(a, desc, playerIDs, map[string]any{"events": len(events)}, prev)

	s.state = next
	s.version++
	s.disarmTimer()

	s.effects.enqueue(events, s.state)
	s.broadcast(events)
	return Result{Version: s.version, State: s.state.Clone(), Events: events}
}

// undo rolls back to the newest undoable entry and then re-applies the
// catalogue edits made since, so authored questions survive.
func (s *Session) undo() Result {
	entry, replay, ok := s.history.UndoLastAction()
	if !ok {
		return Result{Version: s.version, State: s.state.Clone(), Err: ErrNothingToUndo}
	}

	restored := entry.PreviousState
	for _, a := range replay {
		next, _, err := engine.Dispatch(s.log, restored, a)
		if err != nil {
			s.log.Warn("catalogue edit could not be re-applied after undo",
				zap.String("action", string(a.Kind())), zap.Error(err))
			continue
		}
		restored = next
	}

	var events []engine.Event
	if !reflect.DeepEqual(restored.Questions, s.state.Questions) {
		events = []engine.Event{{Type: engine.EvtQuestionsChanged}}
	}

	s.state = restored
	s.version++
	s.disarmTimer()
	s.log.Info("undid action",
		zap.String("action", entry.Type),
		zap.String("description", entry.Description),
		zap.Int("replayed", len(replay)),
	)

	s.effects.enqueue(events, s.state)
	s.broadcast(events)
	return Result{Version: s.version, State: s.state.Clone(), Events: events}
}

func (s *Session) armTimer(d time.Duration) {
	s.disarmTimer()
	gen := s.timerGen
	s.timer = time.AfterFunc(d, func() {
		select {
		case s.inbox <- timerFired{gen: gen}:
		case <-s.ctx.Done():
		}
	})
}

// disarmTimer also bumps the generation so a fire already queued is ignored.
func (s *Session) disarmTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.timerGen++
}

func (s *Session) update(events []engine.Event) Update {
	return Update{Version: s.version, State: s.state.Clone(), Events: events}
}

func (s *Session) shutdown() {
	s.disarmTimer()
	for id, ch := range s.clients {
		close(ch) // Tell client no more updates
		delete(s.clients, id)
	}
	s.cancel()
	s.effects.close()
}

func (s *Session) broadcast(events []engine.Event) {
	s.publish(Update{Version: s.version, State: s.state, Events: events})
}

// publish hands every client its own copy of the state.
func (s *Session) publish(u Update) {
	for id, ch := range s.clients {
		own := u
		own.State = u.State.Clone()
		select {
		case ch <- own:
			//ok
		default:
			// Client is slow/full - drop them.
			close(ch)
			delete(s.clients, id)
		}
	}
}

// Expose the inbox so tests or the transport layer can send messages.
func (s *Session) Inbox() chan<- Msg { return s.inbox }

// Done is closed once the session loop has exited.
func (s *Session) Done() <-chan struct{} { return s.done }

// Send delivers m unless ctx ends or the session has already stopped.
func (s *Session) Send(ctx context.Context, m Msg) error {
	select {
	case s.inbox <- m:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-s.done:
		return ErrClosed
	}
}

func wait[T any](ctx context.Context, s *Session, reply <-chan T) (T, error) {
	var zero T
	select {
	case v := <-reply:
		return v, nil
	case <-ctx.Done():
		return zero, ctx.Err()
	case <-s.done:
		return zero, ErrClosed
	}
}

// Apply dispatches a and waits for the committed result. A rejected action
// comes back with Result.Err set and the unchanged state.
func (s *Session) Apply(ctx context.Context, a engine.Action) (Result, error) {
	reply := make(chan Result, 1)
	if err := s.Send(ctx, Dispatch{Action: a, Reply: reply}); err != nil {
		return Result{}, err
	}
	return wait(ctx, s, reply)
}

func (s *Session) Undo(ctx context.Context) (Result, error) {
	reply := make(chan Result, 1)
	if err := s.Send(ctx, Undo{Reply: reply}); err != nil {
		return Result{}, err
	}
	return wait(ctx, s, reply)
}

func (s *Session) View(ctx context.Context) (View, error) {
	reply := make(chan View, 1)
	if err := s.Send(ctx, GetState{Reply: reply}); err != nil {
		return View{}, err
	}
	return wait(ctx, s, reply)
}

func (s *Session) History(ctx context.Context) ([]history.Entry, error) {
	reply := make(chan []history.Entry, 1)
	if err := s.Send(ctx, GetHistory{Reply: reply}); err != nil {
		return nil, err
	}
	return wait(ctx, s, reply)
}
