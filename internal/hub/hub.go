package hub

import (
	"context"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
	"github.com/DoyleJ11/quiz-show-backend/internal/session"
)

type HubMsg interface{ isHubMsg() }

type CreateSession struct {
	Code  string
	State engine.State
	Reply chan *session.Session
}

type GetSession struct {
	Code  string
	Reply chan *session.Session
}

type EnsureSession struct {
	Code  string
	State engine.State // only used if creation happens
	Reply chan *session.Session
}

type RemoveSession struct {
	Code string
}

type ListSessions struct {
	Reply chan []string
}

type ShutdownHub struct{}

func (CreateSession) isHubMsg() {}
func (GetSession) isHubMsg()    {}
func (EnsureSession) isHubMsg() {}
func (RemoveSession) isHubMsg() {}
func (ListSessions) isHubMsg()  {}
func (ShutdownHub) isHubMsg()   {}

// Hub owns the code → session registry. Every session shares the hub's
// options, so they all persist through the same store.
type Hub struct {
	inbox    chan HubMsg
	sessions map[string]*session.Session
	opts     session.Options
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

func NewHub(parent context.Context, opts session.Options) *Hub {
	ctx, cancel := context.WithCancel(parent)
	h := &Hub{
		inbox:    make(chan HubMsg, 64),
		sessions: make(map[string]*session.Session),
		opts:     opts,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
	go h.loop()
	return h
}

func (h *Hub) Inbox() chan<- HubMsg { return h.inbox }

// Done is closed after every session has been told to stop.
func (h *Hub) Done() <-chan struct{} { return h.done }

func (h *Hub) loop() {
	defer close(h.done)
	for {
		select {
		case <-h.ctx.Done():
			h.shutdown()
			return

		case m := <-h.inbox:
			switch msg := m.(type) {
			case CreateSession, EnsureSession:
				code, state, reply := creation(msg)
				if s := h.sessions[code]; s != nil {
					reply <- s
					break
				}
				s := session.New(h.ctx, state, h.opts)
				h.sessions[code] = s
				reply <- s

			case GetSession:
				msg.Reply <- h.sessions[msg.Code] // May be nil

			case RemoveSession:
				if s := h.sessions[msg.Code]; s != nil {
					select {
					case s.Inbox() <- session.Shutdown{}:
					case <-s.Done():
					}
					delete(h.sessions, msg.Code)
				}

			case ListSessions:
				codes := make([]string, 0, len(h.sessions))
				for code := range h.sessions {
					codes = append(codes, code)
				}
				msg.Reply <- codes

			case ShutdownHub:
				h.shutdown()
				return
			}
		}
	}
}

func creation(m HubMsg) (string, engine.State, chan *session.Session) {
	switch msg := m.(type) {
	case CreateSession:
		return msg.Code, msg.State, msg.Reply
	case EnsureSession:
		return msg.Code, msg.State, msg.Reply
	}
	return "", engine.State{}, nil
}

func (h *Hub) shutdown() {
	for _, s := range h.sessions {
		select {
		case s.Inbox() <- session.Shutdown{}:
		case <-s.Done():
		}
	}
	clear(h.sessions)
	h.cancel()
}
