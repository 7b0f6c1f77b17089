package engine

import (
	"fmt"
	"slices"
	"strings"
)

type RoundType string

const (
	RoundKnowledge RoundType = "knowledge"
	RoundSpeed     RoundType = "speed"
	RoundWheel     RoundType = "wheel"
)

// Configuration-only aliases. They select question sets in settings and are
// never a live round.
const (
	RoundStandard RoundType = "standard"
	RoundAll      RoundType = "all"
)

// ParseRoundType accepts only live rounds.
func ParseRoundType(s string) (RoundType, error) {
	r := RoundType(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsLive() {
		return "", fmt.Errorf("%w: %q", ErrUnknownRound, s)
	}
	return r, nil
}

func (r RoundType) IsLive() bool {
	switch r {
	case RoundKnowledge, RoundSpeed, RoundWheel:
		return true
	}
	return false
}

// costsLives reports whether a wrong answer deducts a life. The wheel reuses
// the speed round rule.
func (r RoundType) costsLives() bool {
	return r == RoundSpeed || r == RoundWheel
}

type Phase string

const (
	PhaseNotStarted Phase = "not_started"
	PhaseActive     Phase = "active"
	PhaseEnded      Phase = "ended"
)

type Card struct {
	Type   CardType `json:"type"`
	IsUsed bool     `json:"is_used"`
}

type Player struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Lives              int    `json:"lives"`
	Points             int    `json:"points"`
	Cards              []Card `json:"cards"`
	IsActive           bool   `json:"is_active"`
	Eliminated         bool   `json:"eliminated"`
	ConsecutiveCorrect int    `json:"consecutive_correct"`
}

type Answer struct {
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type Question struct {
	ID                 string   `json:"id"`
	Text               string   `json:"text"`
	Category           string   `json:"category"`
	Answers            []Answer `json:"answers"`
	CorrectAnswerIndex int      `json:"correct_answer_index"`
	Used               bool     `json:"used"`
}

type State struct {
	CurrentRound       RoundType  `json:"current_round"`
	Players            []Player   `json:"players"`
	CurrentPlayerIndex int        `json:"current_player_index"` // -1 when nobody is active
	CurrentQuestion    *Question  `json:"current_question,omitempty"`
	Questions          []Question `json:"questions"`
	RemainingQuestions []Question `json:"remaining_questions"`
	RoundStarted       bool       `json:"round_started"`
	RoundEnded         bool       `json:"round_ended"`
	WheelSpinning      bool       `json:"wheel_spinning"`
	SelectedCategory   string     `json:"selected_category,omitempty"`
}

func (p Player) clone() Player {
	p.Cards = slices.Clone(p.Cards)
	return p
}

func (q Question) clone() Question {
	q.Answers = slices.Clone(q.Answers)
	return q
}

func cloneQuestions(qs []Question) []Question {
	if qs == nil {
		return nil
	}
	out := make([]Question, len(qs))
	for i, q := range qs {
		out[i] = q.clone()
	}
	return out
}

// Clone returns a deep copy. Snapshots handed to consumers are always clones.
func (s State) Clone() State {
	out := s
	if s.Players != nil {
		out.Players = make([]Player, len(s.Players))
		for i, p := range s.Players {
			out.Players[i] = p.clone()
		}
	}
	out.Questions = cloneQuestions(s.Questions)
	out.RemainingQuestions = cloneQuestions(s.RemainingQuestions)
	if s.CurrentQuestion != nil {
		q := s.CurrentQuestion.clone()
		out.CurrentQuestion = &q
	}
	return out
}
