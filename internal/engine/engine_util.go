package engine

// NewState builds a fresh game around a question catalogue. Questions already
// flagged used stay out of the draw pool.
func NewState(questions []Question) State {
	s := State{
		CurrentRound:       RoundKnowledge,
		Players:            []Player{},
		CurrentPlayerIndex: -1,
		Questions:          cloneQuestions(questions),
	}
	if s.Questions == nil {
		s.Questions = []Question{}
	}
	s.RemainingQuestions = unusedQuestions(s.Questions)
	return s
}

func NewPlayer(id, name string) Player {
	return Player{ID: id, Name: name, Lives: MaxLives, Cards: []Card{}}
}

func ContainsEvent(events []Event, eventType EventType) bool {
	for _, event := range events {
		if event.Type == eventType {
			return true
		}
	}
	return false
}

func CountEvents(events []Event, eventType EventType) int {
	n := 0
	for _, event := range events {
		if event.Type == eventType {
			n++
		}
	}
	return n
}

func DerivePhase(s State) Phase {
	switch {
	case s.RoundEnded:
		return PhaseEnded
	case s.RoundStarted:
		return PhaseActive
	default:
		return PhaseNotStarted
	}
}

// ActivePlayer returns the player at CurrentPlayerIndex, if any.
func ActivePlayer(s State) (Player, bool) {
	if s.CurrentPlayerIndex < 0 || s.CurrentPlayerIndex >= len(s.Players) {
		return Player{}, false
	}
	return s.Players[s.CurrentPlayerIndex], true
}

func FindPlayer(s State, id string) (Player, bool) {
	i := playerIndex(s, id)
	if i < 0 {
		return Player{}, false
	}
	return s.Players[i], true
}

func playerIndex(s State, id string) int {
	for i, p := range s.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func questionIndex(qs []Question, id string) int {
	for i, q := range qs {
		if q.ID == id {
			return i
		}
	}
	return -1
}

func withoutQuestion(qs []Question, id string) []Question {
	out := qs[:0]
	for _, q := range qs {
		if q.ID != id {
			out = append(out, q)
		}
	}
	return out
}

func unusedQuestions(qs []Question) []Question {
	out := []Question{}
	for _, q := range qs {
		if !q.Used {
			out = append(out, q.clone())
		}
	}
	return out
}
