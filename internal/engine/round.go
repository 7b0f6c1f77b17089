package engine

import "fmt"

func startRound(s *State, round RoundType) ([]Event, error) {
	if !round.IsLive() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRound, round)
	}
	if DerivePhase(*s) == PhaseActive {
		return nil, fmt.Errorf("%w: %s", ErrRoundInProgress, s.CurrentRound)
	}

	s.CurrentRound = round
	s.RoundStarted = true
	s.RoundEnded = false
	s.CurrentQuestion = nil
	s.WheelSpinning = false
	s.SelectedCategory = ""
	deactivate(s)

	if round == RoundWheel {
		for i := range s.Players {
			s.Players[i].Lives = MaxLives
			s.Players[i].Eliminated = false
		}
	}

	events := []Event{{Type: EvtRoundStarted, Round: round}}
	events = append(events, roundEntryAwards(s, round)...)
	return events, nil
}

func endRound(s *State) ([]Event, error) {
	if DerivePhase(*s) != PhaseActive {
		return nil, ErrRoundNotActive
	}
	s.RoundEnded = true
	s.CurrentQuestion = nil
	s.WheelSpinning = false
	return []Event{{Type: EvtRoundEnded, Round: s.CurrentRound}}, nil
}

// resetRound re-enters the current round after a host mistake. Scores, lives
// and cards are left alone and no entry awards fire.
func resetRound(s *State) ([]Event, error) {
	if DerivePhase(*s) == PhaseNotStarted {
		return nil, ErrRoundNotStarted
	}
	s.RoundStarted = true
	s.RoundEnded = false
	s.CurrentQuestion = nil
	s.WheelSpinning = false
	s.SelectedCategory = ""
	deactivate(s)
	return []Event{{Type: EvtRoundReset, Round: s.CurrentRound}}, nil
}

func restartGame(s *State) []Event {
	for i, p := range s.Players {
		s.Players[i] = NewPlayer(p.ID, p.Name)
	}
	s.CurrentRound = RoundKnowledge
	s.CurrentPlayerIndex = -1
	s.CurrentQuestion = nil
	s.RoundStarted = false
	s.RoundEnded = false
	s.WheelSpinning = false
	s.SelectedCategory = ""
	s.RemainingQuestions = unusedQuestions(s.Questions)
	return []Event{{Type: EvtGameRestarted}}
}

func deactivate(s *State) {
	for i := range s.Players {
		s.Players[i].IsActive = false
	}
	s.CurrentPlayerIndex = -1
}
