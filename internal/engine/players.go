package engine

import (
	"fmt"
	"strings"
)

func setActivePlayer(s *State, playerID string) ([]Event, error) {
	i := playerIndex(*s, playerID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if s.Players[i].Eliminated {
		return nil, fmt.Errorf("%w: %s", ErrPlayerEliminated, playerID)
	}
	activate(s, i)
	return []Event{{Type: EvtActivePlayerChanged, PlayerID: playerID}}, nil
}

func nextPlayer(s *State) ([]Event, error) {
	i, ok := nextInTurn(*s)
	if !ok {
		return nil, ErrNoActivePlayer
	}
	activate(s, i)
	return []Event{{Type: EvtActivePlayerChanged, PlayerID: s.Players[i].ID}}, nil
}

func activate(s *State, idx int) {
	for i := range s.Players {
		s.Players[i].IsActive = i == idx
	}
	s.CurrentPlayerIndex = idx
}

func addPlayer(s *State, id, name string) ([]Event, error) {
	id = strings.TrimSpace(id)
	name = strings.TrimSpace(name)
	if id == "" || name == "" {
		return nil, fmt.Errorf("%w: player needs an id and a name", ErrUnknownPlayer)
	}
	if playerIndex(*s, id) >= 0 {
		return nil, fmt.Errorf("%w: %s", ErrDuplicatePlayer, id)
	}
	s.Players = append(s.Players, NewPlayer(id, name))
	return []Event{{Type: EvtPlayerAdded, PlayerID: id}}, nil
}

func removePlayer(s *State, playerID string) ([]Event, error) {
	i := playerIndex(*s, playerID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	s.Players = append(s.Players[:i], s.Players[i+1:]...)
	switch {
	case s.CurrentPlayerIndex == i:
		s.CurrentPlayerIndex = -1
	case s.CurrentPlayerIndex > i:
		s.CurrentPlayerIndex--
	}
	return []Event{{Type: EvtPlayerRemoved, PlayerID: playerID}}, nil
}

func renamePlayer(s *State, playerID, name string) ([]Event, error) {
	i := playerIndex(*s, playerID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: empty name for %s", ErrUnknownPlayer, playerID)
	}
	s.Players[i].Name = name
	return []Event{{Type: EvtPlayerUpdated, PlayerID: playerID}}, nil
}

// adjustPoints is a host correction; points never go below zero.
func adjustPoints(s *State, playerID string, delta int) ([]Event, error) {
	i := playerIndex(*s, playerID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	p := &s.Players[i]
	p.Points = max(0, p.Points+delta)
	return []Event{{Type: EvtPlayerUpdated, PlayerID: playerID, Points: p.Points, Lives: p.Lives}}, nil
}

func setLives(s *State, playerID string, lives int) ([]Event, error) {
	i := playerIndex(*s, playerID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	p := &s.Players[i]
	wasEliminated := p.Eliminated
	p.Lives = min(MaxLives, max(0, lives))
	p.Eliminated = p.Lives <= 0

	events := []Event{{Type: EvtPlayerUpdated, PlayerID: playerID, Points: p.Points, Lives: p.Lives}}
	if p.Eliminated && !wasEliminated {
		events = append(events, Event{Type: EvtPlayerEliminated, PlayerID: playerID, Round: s.CurrentRound})
	}
	if p.Eliminated && s.CurrentPlayerIndex == i {
		deactivate(s)
	}
	return events, nil
}

// restoreLuckyLoser brings back the eliminated player with the most points,
// first in roster order on ties, with a single life.
func restoreLuckyLoser(s *State) ([]Event, error) {
	best := -1
	for i, p := range s.Players {
		if !p.Eliminated {
			continue
		}
		if best < 0 || p.Points > s.Players[best].Points {
			best = i
		}
	}
	if best < 0 {
		return nil, ErrNoLuckyLoser
	}
	p := &s.Players[best]
	p.Lives = 1
	p.Eliminated = false
	p.ConsecutiveCorrect = 0
	return []Event{{Type: EvtPlayerRestored, PlayerID: p.ID, Lives: p.Lives, Points: p.Points}}, nil
}
