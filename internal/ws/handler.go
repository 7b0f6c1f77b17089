package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-show-backend/internal/hub"
	"github.com/DoyleJ11/quiz-show-backend/internal/session"
	"github.com/DoyleJ11/quiz-show-backend/internal/types"
)

const (
	writeTimeout = 3 * time.Second
	readTimeout  = 5 * time.Minute
)

// Handler upgrades to a websocket, streams snapshots of the session named by
// ?code= and turns client messages into actions.
func Handler(h *hub.Hub, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		code := r.URL.Query().Get("code")
		if code == "" {
			http.Error(w, "missing code", http.StatusBadRequest)
			return
		}

		reply := make(chan *session.Session, 1)
		h.Inbox() <- hub.GetSession{Code: code, Reply: reply}
		s := <-reply
		if s == nil {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}

		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			// In dev ONLY, you can loosen origin checks:
			// OriginPatterns: []string{"http://localhost:*", "http://127.0.0.1:*"},
		})
		if err != nil {
			log.Debug("websocket accept failed", zap.Error(err))
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		clientID := uuid.NewString()
		log := log.With(zap.String("session", code), zap.String("client", clientID))

		out := make(chan session.Update, 8)
		if err := s.Send(r.Context(), session.Join{ClientID: clientID, Outbox: out}); err != nil {
			conn.Close(websocket.StatusGoingAway, "session closed")
			return
		}
		defer func() { _ = s.Send(context.Background(), session.Leave{ClientID: clientID}) }()

		// Writer goroutine
		writeCtx, writeCancel := context.WithCancel(r.Context())
		defer writeCancel()
		go func() {
			defer writeCancel()
			for {
				select {
				case u, ok := <-out:
					if !ok {
						// Dropped as a slow client, or the session ended.
						conn.Close(websocket.StatusGoingAway, "session closed")
						return
					}
					if err := write(writeCtx, conn, serverMessage(u)); err != nil {
						log.Debug("dropping client after failed write", zap.Error(err))
						return
					}
				case <-s.Done():
					conn.Close(websocket.StatusGoingAway, "session closed")
					return
				case <-writeCtx.Done():
					return
				}
			}
		}()

		// Reader loop
		for {
			ctx, cancel := context.WithTimeout(writeCtx, readTimeout)
			_, data, err := conn.Read(ctx)
			cancel()
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("websocket read ended", zap.Error(err))
				}
				return
			}

			var cm types.ClientMessage
			if err := json.Unmarshal(data, &cm); err != nil {
				_ = write(writeCtx, conn, types.ServerMessage{Type: types.TypeError, Error: "bad json"})
				continue
			}

			if err := handle(writeCtx, s, cm); err != nil {
				_ = write(writeCtx, conn, types.Error(err))
			}
		}
	}
}

func serverMessage(u session.Update) types.ServerMessage {
	if u.Warning != "" {
		return types.Warning(u.Warning)
	}
	return types.Snapshot(u.Version, u.State, u.Events)
}

// handle routes one client message. Successful changes reach the client
// through its outbox, so only failures are returned.
func handle(ctx context.Context, s *session.Session, cm types.ClientMessage) error {
	if cm.IsControl() {
		return control(ctx, s, cm)
	}
	a, err := cm.ToAction()
	if err != nil {
		return err
	}
	res, err := s.Apply(ctx, a)
	if err != nil {
		return err
	}
	return res.Err
}

func control(ctx context.Context, s *session.Session, cm types.ClientMessage) error {
	switch strings.ToUpper(cm.Type) {
	case types.TypeUndo:
		res, err := s.Undo(ctx)
		if err != nil {
			return err
		}
		return res.Err
	case types.TypeStartTimer:
		d, err := types.TimerDuration(cm.TimerMS)
		if err != nil {
			return err
		}
		if d == 0 {
			return s.Send(ctx, session.StopTimer{})
		}
		return s.Send(ctx, session.StartTimer{Duration: d})
	default:
		return s.Send(ctx, session.StopTimer{})
	}
}

func write(ctx context.Context, conn *websocket.Conn, msg types.ServerMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, writeTimeout)
	defer cancel()
	return conn.Write(ctx, websocket.MessageText, payload)
}
