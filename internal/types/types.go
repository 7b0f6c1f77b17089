package types

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
)

// Control messages handled by the session itself rather than the reducer.
const (
	TypeUndo       = "UNDO"
	TypeStartTimer = "START_TIMER"
	TypeStopTimer  = "STOP_TIMER"
)

// Server message types.
const (
	TypeSnapshot = "StateSnapshot"
	TypeError    = "Error"
	TypeWarning  = "Warning"
)

var ErrUnknownType = errors.New("unknown message type")
var ErrBadTimer = errors.New("timer_ms must not be negative")

// ClientMessage is the JSON shape of every request from the host panel.
// Type is one of the engine action kinds or a control message.
type ClientMessage struct {
	Type       string            `json:"type"`
	PlayerID   string            `json:"player_id,omitempty"`
	Name       string            `json:"name,omitempty"`
	Round      string            `json:"round,omitempty"`
	Card       string            `json:"card,omitempty"`
	Correct    bool              `json:"correct,omitempty"`
	Delta      int               `json:"delta,omitempty"`
	Lives      int               `json:"lives,omitempty"`
	QuestionID string            `json:"question_id,omitempty"`
	Question   *engine.Question  `json:"question,omitempty"`
	Questions  []engine.Question `json:"questions,omitempty"`
	Spinning   bool              `json:"spinning,omitempty"`
	Category   string            `json:"category,omitempty"`
	TimerMS    int               `json:"timer_ms,omitempty"`
}

type ServerMessage struct {
	Type    string         `json:"type"` // "StateSnapshot" | "Error" | "Warning"
	Version int            `json:"version,omitempty"`
	State   *engine.State  `json:"state,omitempty"`
	Events  []engine.Event `json:"events,omitempty"`
	Error   string         `json:"error,omitempty"`
}

// IsControl reports whether m is handled outside the reducer.
func (m ClientMessage) IsControl() bool {
	switch strings.ToUpper(m.Type) {
	case TypeUndo, TypeStartTimer, TypeStopTimer:
		return true
	}
	return false
}

// TimerDuration converts timer_ms. Zero means stop the countdown.
func TimerDuration(ms int) (time.Duration, error) {
	if ms < 0 {
		return 0, fmt.Errorf("%w: %d", ErrBadTimer, ms)
	}
	return time.Duration(ms) * time.Millisecond, nil
}

func Warning(reason string) ServerMessage {
	return ServerMessage{Type: TypeWarning, Error: reason}
}

// ToAction converts m into an engine action. New players and questions
// without an id get a fresh one.
func (m ClientMessage) ToAction() (engine.Action, error) {
	switch engine.ActionKind(strings.ToUpper(m.Type)) {
	case engine.ActStartRound:
		r, err := engine.ParseRoundType(m.Round)
		if err != nil {
			return nil, err
		}
		return engine.StartRound{Round: r}, nil
	case engine.ActEndRound:
		return engine.EndRound{}, nil
	case engine.ActResetRound:
		return engine.ResetRound{}, nil
	case engine.ActRestartGame:
		return engine.RestartGame{}, nil
	case engine.ActSetActivePlayer:
		return engine.SetActivePlayer{PlayerID: m.PlayerID}, nil
	case engine.ActNextPlayer:
		return engine.NextPlayer{}, nil
	case engine.ActAnswerQuestion:
		return engine.AnswerQuestion{Correct: m.Correct}, nil
	case engine.ActAddPlayer:
		id := m.PlayerID
		if id == "" {
			id = uuid.NewString()
		}
		return engine.AddPlayer{ID: id, Name: m.Name}, nil
	case engine.ActRemovePlayer:
		return engine.RemovePlayer{PlayerID: m.PlayerID}, nil
	case engine.ActRenamePlayer:
		return engine.RenamePlayer{PlayerID: m.PlayerID, Name: m.Name}, nil
	case engine.ActAdjustPoints:
		return engine.AdjustPoints{PlayerID: m.PlayerID, Delta: m.Delta}, nil
	case engine.ActSetLives:
		return engine.SetLives{PlayerID: m.PlayerID, Lives: m.Lives}, nil
	case engine.ActRestoreLuckyLoser:
		return engine.RestoreLuckyLoser{}, nil
	case engine.ActUseCard, engine.ActAwardCard:
		c, err := engine.ParseCardType(m.Card)
		if err != nil {
			return nil, err
		}
		if engine.ActionKind(strings.ToUpper(m.Type)) == engine.ActUseCard {
			return engine.UseCard{PlayerID: m.PlayerID, Card: c}, nil
		}
		return engine.AwardCard{PlayerID: m.PlayerID, Card: c}, nil
	case engine.ActSetCurrentQuestion:
		return engine.SetCurrentQuestion{QuestionID: m.QuestionID}, nil
	case engine.ActRevertQuestion:
		return engine.RevertQuestion{QuestionID: m.QuestionID}, nil
	case engine.ActMarkQuestionUsed:
		return engine.MarkQuestionUsed{QuestionID: m.QuestionID}, nil
	case engine.ActAddQuestion:
		if m.Question == nil {
			return nil, fmt.Errorf("%w: missing question", engine.ErrInvalidQuestion)
		}
		q := *m.Question
		if q.ID == "" {
			q.ID = uuid.NewString()
		}
		return engine.AddQuestion{Question: q}, nil
	case engine.ActUpdateQuestion:
		if m.Question == nil {
			return nil, fmt.Errorf("%w: missing question", engine.ErrInvalidQuestion)
		}
		return engine.UpdateQuestion{Question: *m.Question}, nil
	case engine.ActRemoveQuestion:
		return engine.RemoveQuestion{QuestionID: m.QuestionID}, nil
	case engine.ActLoadQuestions:
		return engine.LoadQuestions{Questions: m.Questions}, nil
	case engine.ActResetQuestionPool:
		return engine.ResetQuestionPool{}, nil
	case engine.ActSetWheelSpinning:
		return engine.SetWheelSpinning{Spinning: m.Spinning}, nil
	case engine.ActSelectCategory:
		return engine.SelectCategory{Category: m.Category}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, m.Type)
	}
}

func Snapshot(version int, s engine.State, events []engine.Event) ServerMessage {
	return ServerMessage{Type: TypeSnapshot, Version: version, State: &s, Events: events}
}

func Error(err error) ServerMessage {
	return ServerMessage{Type: TypeError, Error: err.Error()}
}
