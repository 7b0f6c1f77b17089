package engine

import "fmt"

const (
	BasePoints           = 10
	MaxLives             = 3
	StreakThreshold      = 3
	TurboPointsThreshold = 50
)

// ResolveAnswer scores one answer for p. It returns a new player record and
// the advisory events the answer produced.
//
// An unused turbo is consumed on every answer and doubles a correct one.
// In speed and wheel a wrong answer costs a life unless an unused reanimacja
// absorbs it. Both cards can fire on the same answer.
func ResolveAnswer(p Player, correct bool, round RoundType) (Player, []Event) {
	p = p.clone()

	points := 0
	if correct {
		points = BasePoints
	}

	var cardEvents []Event
	if i := unusedCardIndex(p, CardTurbo); i >= 0 {
		points *= 2
		p.Cards[i].IsUsed = true
		cardEvents = append(cardEvents, Event{Type: EvtCardUsed, PlayerID: p.ID, Card: CardTurbo, Reason: ReasonAnswer})
	}

	before := p.Points
	p.Points += points

	if !correct && round.costsLives() {
		if i := unusedCardIndex(p, CardReanimacja); i >= 0 {
			p.Cards[i].IsUsed = true
			cardEvents = append(cardEvents, Event{Type: EvtCardUsed, PlayerID: p.ID, Card: CardReanimacja, Reason: ReasonAnswer})
		} else if p.Lives > 0 {
			p.Lives--
		}
	}

	wasEliminated := p.Eliminated
	p.Eliminated = p.Lives <= 0

	events := []Event{{
		Type:     EvtQuestionAnswered,
		PlayerID: p.ID,
		Round:    round,
		Correct:  correct,
		Points:   points,
		Lives:    p.Lives,
	}}
	events = append(events, cardEvents...)
	if p.Eliminated && !wasEliminated {
		events = append(events, Event{Type: EvtPlayerEliminated, PlayerID: p.ID, Round: round})
	}

	if correct {
		p.ConsecutiveCorrect++
		if p.ConsecutiveCorrect >= StreakThreshold {
			p.ConsecutiveCorrect = 0
			events = append(events, awardIfRoom(&p, pickStreakCard(p), ReasonStreak)...)
		}
	} else {
		p.ConsecutiveCorrect = 0
	}

	if round == RoundKnowledge &&
		before < TurboPointsThreshold && p.Points >= TurboPointsThreshold &&
		!holdsAny(p, CardTurbo) {
		events = append(events, awardIfRoom(&p, CardTurbo, ReasonThreshold)...)
	}

	return p, events
}

func answerQuestion(s *State, correct bool) ([]Event, error) {
	p, ok := ActivePlayer(*s)
	if !ok {
		return nil, ErrNoActivePlayer
	}
	if p.Eliminated {
		return nil, fmt.Errorf("%w: %s", ErrPlayerEliminated, p.ID)
	}

	resolved, events := ResolveAnswer(p, correct, s.CurrentRound)
	s.Players[s.CurrentPlayerIndex] = resolved
	if resolved.Eliminated {
		deactivate(s)
	}

	if s.CurrentQuestion != nil {
		for i := range events {
			if events[i].Type == EvtQuestionAnswered {
				events[i].QuestionID = s.CurrentQuestion.ID
			}
		}
	}
	return events, nil
}
