package engine

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

var ErrUnsupportedAction = errors.New("unsupported action")
var ErrUnknownPlayer = errors.New("unknown player")
var ErrUnknownQuestion = errors.New("unknown question")
var ErrUnknownRound = errors.New("unknown round")
var ErrUnknownCard = errors.New("unknown card")
var ErrCardNotAvailable = errors.New("card not available")
var ErrNoActivePlayer = errors.New("no active player")
var ErrPlayerEliminated = errors.New("player eliminated")
var ErrDuplicatePlayer = errors.New("duplicate player")
var ErrDuplicateQuestion = errors.New("duplicate question")
var ErrInvalidQuestion = errors.New("invalid question")
var ErrRoundInProgress = errors.New("round already in progress")
var ErrRoundNotActive = errors.New("round not active")
var ErrRoundNotStarted = errors.New("round not started")
var ErrNoLuckyLoser = errors.New("no eliminated player to restore")
var ErrCategoryMismatch = errors.New("question outside selected category")
var ErrInvariant = errors.New("internal invariant violation")

type EventType string

const (
	EvtRoundStarted        EventType = "RoundStarted"
	EvtRoundEnded          EventType = "RoundEnded"
	EvtRoundReset          EventType = "RoundReset"
	EvtGameRestarted       EventType = "GameRestarted"
	EvtActivePlayerChanged EventType = "ActivePlayerChanged"
	EvtQuestionAnswered    EventType = "QuestionAnswered"
	EvtPlayerEliminated    EventType = "PlayerEliminated"
	EvtPlayerRestored      EventType = "PlayerRestored"
	EvtPlayerAdded         EventType = "PlayerAdded"
	EvtPlayerRemoved       EventType = "PlayerRemoved"
	EvtPlayerUpdated       EventType = "PlayerUpdated"
	EvtCardAwarded         EventType = "CardAwarded"
	EvtCardUsed            EventType = "CardUsed"
	EvtQuestionSelected    EventType = "QuestionSelected"
	EvtQuestionReverted    EventType = "QuestionReverted"
	EvtWheelSpinning       EventType = "WheelSpinning"
	EvtCategorySelected    EventType = "CategorySelected"

	// EvtQuestionsChanged asks the effect runner to persist the master list.
	EvtQuestionsChanged EventType = "QuestionsChanged"
)

/*
	StartRound        -> RoundStarted -> (CardAwarded...)
	AnswerQuestion    -> QuestionAnswered -> (CardUsed) -> (PlayerEliminated) -> (CardAwarded)
	UseCard           -> CardUsed
	SetCurrentQuestion -> QuestionSelected -> QuestionsChanged
	MarkQuestionUsed  -> QuestionsChanged
	RevertQuestion    -> QuestionReverted
	The reducer only describes what happened; nothing here does I/O.
*/

// Award and usage reasons carried on card events.
const (
	ReasonHost      = "host"
	ReasonStreak    = "streak"
	ReasonThreshold = "points_threshold"
	ReasonRound     = "round_entry"
	ReasonAnswer    = "answer"
)

type Event struct {
	Type       EventType `json:"type"`
	PlayerID   string    `json:"player_id,omitempty"`
	Card       CardType  `json:"card,omitempty"`
	QuestionID string    `json:"question_id,omitempty"`
	Round      RoundType `json:"round,omitempty"`
	Category   string    `json:"category,omitempty"`
	Correct    bool      `json:"correct,omitempty"`
	Points     int       `json:"points,omitempty"`
	Lives      int       `json:"lives,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}

// Apply is the pure reducer. It never mutates s: every transition works on a
// deep clone. On error the untouched input state is returned.
func Apply(s State, a Action) ([]Event, State, error) {
	next := s.Clone()

	var events []Event
	var err error

	switch act := a.(type) {
	case StartRound:
		events, err = startRound(&next, act.Round)
	case EndRound:
		events, err = endRound(&next)
	case ResetRound:
		events, err = resetRound(&next)
	case RestartGame:
		events = restartGame(&next)

	case SetActivePlayer:
		events, err = setActivePlayer(&next, act.PlayerID)
	case NextPlayer:
		events, err = nextPlayer(&next)
	case AnswerQuestion:
		events, err = answerQuestion(&next, act.Correct)
	case AddPlayer:
		events, err = addPlayer(&next, act.ID, act.Name)
	case RemovePlayer:
		events, err = removePlayer(&next, act.PlayerID)
	case RenamePlayer:
		events, err = renamePlayer(&next, act.PlayerID, act.Name)
	case AdjustPoints:
		events, err = adjustPoints(&next, act.PlayerID, act.Delta)
	case SetLives:
		events, err = setLives(&next, act.PlayerID, act.Lives)
	case RestoreLuckyLoser:
		events, err = restoreLuckyLoser(&next)

	case UseCard:
		events, err = useCard(&next, act.PlayerID, act.Card)
	case AwardCard:
		events, err = awardCard(&next, act.PlayerID, act.Card)

	case SetCurrentQuestion:
		events, err = setCurrentQuestion(&next, act.QuestionID)
	case RevertQuestion:
		events, err = revertQuestion(&next, act.QuestionID)
	case MarkQuestionUsed:
		events, err = markQuestionUsed(&next, act.QuestionID)
	case AddQuestion:
		events, err = addQuestion(&next, act.Question)
	case UpdateQuestion:
		events, err = updateQuestion(&next, act.Question)
	case RemoveQuestion:
		events, err = removeQuestion(&next, act.QuestionID)
	case LoadQuestions:
		events, err = loadQuestions(&next, act.Questions)
	case ResetQuestionPool:
		events = resetQuestionPool(&next)

	case SetWheelSpinning:
		events = setWheelSpinning(&next, act.Spinning)
	case SelectCategory:
		events, err = selectCategory(&next, act.Category)

	default:
		return nil, s, fmt.Errorf("%w: %T", ErrUnsupportedAction, a)
	}

	if err != nil {
		return nil, s, err
	}
	return events, next, nil
}

// Dispatch is the boundary around Apply. Rejections and panics are logged
// and the previous state comes back unchanged; the error is informational.
func Dispatch(log *zap.Logger, s State, a Action) (next State, events []Event, err error) {
	if log == nil {
		log = zap.NewNop()
	}
	kind := actionKind(a)

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrInvariant, r)
			log.Error("reducer panicked, keeping previous state",
				zap.String("action", kind),
				zap.Any("panic", r),
			)
			next, events = s, nil
		}
	}()

	events, next, err = Apply(s, a)
	if err != nil {
		log.Warn("action rejected", zap.String("action", kind), zap.Error(err))
		return s, nil, err
	}
	log.Debug("action applied", zap.String("action", kind), zap.Int("events", len(events)))
	return next, events, nil
}

func actionKind(a Action) string {
	if a == nil {
		return "<nil>"
	}
	return string(a.Kind())
}
