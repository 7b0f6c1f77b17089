// Package notify is the fire-and-forget notification port. The engine's
// advisory events are relayed through it to overlays, spectators and logs.
package notify

import (
	"sync"

	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
)

// Notifier must not block; delivery is never awaited.
type Notifier interface {
	Emit(name string, payload any)
}

// Event names relayed to consumers.
const (
	RoundStarted     = "round_started"
	RoundEnded       = "round_ended"
	RoundReset       = "round_reset"
	GameRestarted    = "game_restarted"
	PlayerUp         = "player_up"
	QuestionAnswered = "question_answered"
	PlayerEliminated = "player_eliminated"
	PlayerRestored   = "player_restored"
	PlayerChanged    = "player_changed"
	CardAwarded      = "card_awarded"
	CardUsed         = "card_used"
	QuestionShown    = "question_shown"
	QuestionReverted = "question_reverted"
	WheelChanged     = "wheel_changed"
)

// EventName maps a domain event to its relay name. Events that only drive
// internal effects have no name.
func EventName(e engine.Event) (string, bool) {
	switch e.Type {
	case engine.EvtRoundStarted:
		return RoundStarted, true
	case engine.EvtRoundEnded:
		return RoundEnded, true
	case engine.EvtRoundReset:
		return RoundReset, true
	case engine.EvtGameRestarted:
		return GameRestarted, true
	case engine.EvtActivePlayerChanged:
		return PlayerUp, true
	case engine.EvtQuestionAnswered:
		return QuestionAnswered, true
	case engine.EvtPlayerEliminated:
		return PlayerEliminated, true
	case engine.EvtPlayerRestored:
		return PlayerRestored, true
	case engine.EvtPlayerAdded, engine.EvtPlayerRemoved, engine.EvtPlayerUpdated:
		return PlayerChanged, true
	case engine.EvtCardAwarded:
		return CardAwarded, true
	case engine.EvtCardUsed:
		return CardUsed, true
	case engine.EvtQuestionSelected:
		return QuestionShown, true
	case engine.EvtQuestionReverted:
		return QuestionReverted, true
	case engine.EvtWheelSpinning, engine.EvtCategorySelected:
		return WheelChanged, true
	}
	return "", false
}

// Log writes every notification to a zap logger.
type Log struct {
	log *zap.Logger
}

func NewLog(log *zap.Logger) *Log {
	return &Log{log: log}
}

func (l *Log) Emit(name string, payload any) {
	l.log.Info("notify", zap.String("event", name), zap.Any("payload", payload))
}

// Fanout forwards to several notifiers. A panicking consumer is logged and
// skipped so the rest still receive the event.
type Fanout struct {
	mu      sync.RWMutex
	targets []Notifier
	log     *zap.Logger
}

func NewFanout(log *zap.Logger, targets ...Notifier) *Fanout {
	if log == nil {
		log = zap.NewNop()
	}
	return &Fanout{targets: targets, log: log}
}

func (f *Fanout) Add(n Notifier) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, n)
}

func (f *Fanout) Emit(name string, payload any) {
	f.mu.RLock()
	targets := append([]Notifier(nil), f.targets...)
	f.mu.RUnlock()

	for _, n := range targets {
		f.emitOne(n, name, payload)
	}
}

func (f *Fanout) emitOne(n Notifier, name string, payload any) {
	defer func() {
		if r := recover(); r != nil {
			f.log.Warn("notifier panicked", zap.String("event", name), zap.Any("panic", r))
		}
	}()
	n.Emit(name, payload)
}

// Func adapts a function to Notifier.
type Func func(name string, payload any)

func (fn Func) Emit(name string, payload any) { fn(name, payload) }
