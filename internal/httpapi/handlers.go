package httpapi

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"math/big"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
	"github.com/DoyleJ11/quiz-show-backend/internal/hub"
	"github.com/DoyleJ11/quiz-show-backend/internal/session"
	"github.com/DoyleJ11/quiz-show-backend/internal/store"
	"github.com/DoyleJ11/quiz-show-backend/internal/types"
)

const requestTimeout = 5 * time.Second

// API holds what the handlers need. Store may be nil, in which case new
// sessions start with an empty catalogue.
type API struct {
	Hub   *hub.Hub
	Store store.QuestionStore
	Log   *zap.Logger
}

func GenerateCode() (string, error) {
	const charset = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	code := make([]byte, 6)
	for i := 0; i < 6; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
		if err != nil {
			return "", err
		}
		code[i] = charset[num.Int64()]
	}
	return string(code), nil
}

type createRequest struct {
	Players []struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"players"`
}

// CreateSession starts a game with the stored catalogue and the optional
// players in the body.
func (a *API) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var questions []engine.Question
	if a.Store != nil {
		qs, err := a.Store.LoadQuestions(ctx)
		if err != nil {
			a.Log.Error("loading questions failed", zap.Error(err))
			http.Error(w, "failed to load questions", http.StatusInternalServerError)
			return
		}
		questions = qs
	}

	state := engine.NewState(questions)
	for _, p := range req.Players {
		add, err := types.ClientMessage{Type: string(engine.ActAddPlayer), PlayerID: p.ID, Name: p.Name}.ToAction()
		if err != nil {
			writeError(w, err)
			return
		}
		_, next, err := engine.Apply(state, add)
		if err != nil {
			writeError(w, err)
			return
		}
		state = next
	}

	var code string
	for {
		c, err := GenerateCode()
		if err != nil {
			http.Error(w, "failed to generate code", http.StatusInternalServerError)
			return
		}
		reply := make(chan *session.Session, 1)
		a.Hub.Inbox() <- hub.GetSession{Code: c, Reply: reply}
		if <-reply == nil {
			code = c
			break
		}
		a.Log.Debug("collision on code, regenerating", zap.String("code", c))
	}

	reply := make(chan *session.Session, 1)
	a.Hub.Inbox() <- hub.EnsureSession{Code: code, State: state, Reply: reply}
	if <-reply == nil {
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}
	a.Log.Info("session created", zap.String("code", code), zap.Int("questions", len(questions)))

	writeJSON(w, http.StatusCreated, struct {
		Code string `json:"code"`
	}{Code: code})
}

func (a *API) State(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	view, err := s.View(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, struct {
		types.ServerMessage
		Phase      engine.Phase     `json:"phase"`
		NextRound  engine.RoundType `json:"next_round,omitempty"`
		NumClients int              `json:"num_clients"`
		TimerArmed bool             `json:"timer_armed"`
	}{
		ServerMessage: types.Snapshot(view.Version, view.State, nil),
		Phase:         engine.DerivePhase(view.State),
		NextRound:     nextRound(view.State),
		NumClients:    view.NumClients,
		TimerArmed:    view.TimerArmed,
	})
}

func nextRound(s engine.State) engine.RoundType {
	if s.CurrentRound == "" {
		return engine.RoundOrder[0]
	}
	next, ok := s.CurrentRound.Next()
	if !ok {
		return ""
	}
	return next
}

type categoryCount struct {
	Category  string `json:"category"`
	Remaining int    `json:"remaining"`
}

// Categories lists the catalogue's categories with their unused question
// counts, for the wheel.
func (a *API) Categories(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	view, err := s.View(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	out := []categoryCount{}
	for _, c := range engine.Categories(view.State) {
		out = append(out, categoryCount{Category: c, Remaining: len(engine.RemainingInCategory(view.State, c))})
	}
	writeJSON(w, http.StatusOK, out)
}

// Dispatch applies one action given in the websocket message shape.
func (a *API) Dispatch(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var cm types.ClientMessage
	if err := json.NewDecoder(r.Body).Decode(&cm); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	action, err := cm.ToAction()
	if err != nil {
		writeError(w, err)
		return
	}
	res, err := s.Apply(r.Context(), action)
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, res)
}

func (a *API) Undo(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	res, err := s.Undo(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeResult(w, res)
}

func (a *API) History(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	entries, err := s.History(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (a *API) ClearHistory(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	if err := s.Send(r.Context(), session.ClearHistory{}); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Timer arms the countdown for timer_ms, or stops it when timer_ms is 0.
func (a *API) Timer(w http.ResponseWriter, r *http.Request) {
	s, ok := a.session(w, r)
	if !ok {
		return
	}
	var body struct {
		TimerMS int `json:"timer_ms"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}
	d, err := types.TimerDuration(body.TimerMS)
	if err != nil {
		writeError(w, err)
		return
	}
	var msg session.Msg = session.StartTimer{Duration: d}
	if d == 0 {
		msg = session.StopTimer{}
	}
	if err := s.Send(r.Context(), msg); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (a *API) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if _, ok := a.session(w, r); !ok {
		return
	}
	a.Hub.Inbox() <- hub.RemoveSession{Code: chi.URLParam(r, "code")}
	w.WriteHeader(http.StatusNoContent)
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func (a *API) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	reply := make(chan *session.Session, 1)
	a.Hub.Inbox() <- hub.GetSession{Code: chi.URLParam(r, "code"), Reply: reply}
	s := <-reply
	if s == nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func writeResult(w http.ResponseWriter, res session.Result) {
	if res.Err != nil {
		writeError(w, res.Err)
		return
	}
	writeJSON(w, http.StatusOK, types.Snapshot(res.Version, res.State, res.Events))
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), types.Error(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, engine.ErrUnknownPlayer),
		errors.Is(err, engine.ErrUnknownQuestion):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvariant):
		return http.StatusInternalServerError
	case errors.Is(err, session.ErrClosed):
		return http.StatusGone
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	case errors.Is(err, engine.ErrUnknownRound),
		errors.Is(err, engine.ErrUnknownCard),
		errors.Is(err, engine.ErrInvalidQuestion),
		errors.Is(err, engine.ErrUnsupportedAction),
		errors.Is(err, types.ErrUnknownType),
		errors.Is(err, types.ErrBadTimer):
		return http.StatusBadRequest
	default:
		return http.StatusConflict
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
