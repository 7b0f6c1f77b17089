package engine

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
)

type CardType string

// Engine-consumed cards fire inside the answer resolver.
const (
	CardTurbo      CardType = "turbo"
	CardReanimacja CardType = "reanimacja"
)

// Host-mediated cards: the engine only records usage, the host realizes the
// effect (repeat, transfer, skip, extra time, removed answer, hint).
const (
	CardDejavu     CardType = "dejavu"
	CardKontra     CardType = "kontra"
	CardSkip       CardType = "skip"
	CardRefleks2   CardType = "refleks2"
	CardRefleks3   CardType = "refleks3"
	CardLustro     CardType = "lustro"
	CardOswiecenie CardType = "oswiecenie"
)

const MaxUnusedCards = 3

var AllCardTypes = []CardType{
	CardTurbo,
	CardReanimacja,
	CardDejavu,
	CardKontra,
	CardSkip,
	CardRefleks2,
	CardRefleks3,
	CardLustro,
	CardOswiecenie,
}

// StreakRewards is the catalogue a three-answer streak draws from.
var StreakRewards = []CardType{
	CardDejavu,
	CardKontra,
	CardSkip,
	CardRefleks2,
	CardRefleks3,
	CardLustro,
	CardOswiecenie,
}

func ParseCardType(s string) (CardType, error) {
	c := CardType(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(AllCardTypes, c) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCard, s)
	}
	return c, nil
}

// pickStreakCard prefers a card the player does not already hold unused.
// Tests swap it for a deterministic pick.
var pickStreakCard = func(p Player) CardType {
	var fresh []CardType
	for _, c := range StreakRewards {
		if unusedCardIndex(p, c) < 0 {
			fresh = append(fresh, c)
		}
	}
	if len(fresh) == 0 {
		fresh = StreakRewards
	}
	return fresh[rand.IntN(len(fresh))]
}

func unusedCardIndex(p Player, c CardType) int {
	for i, card := range p.Cards {
		if card.Type == c && !card.IsUsed {
			return i
		}
	}
	return -1
}

func holdsAny(p Player, c CardType) bool {
	return slices.ContainsFunc(p.Cards, func(card Card) bool { return card.Type == c })
}

func UnusedCards(p Player) int {
	n := 0
	for _, card := range p.Cards {
		if !card.IsUsed {
			n++
		}
	}
	return n
}

// CanReceiveCard is the soft cap every automatic award checks first.
func CanReceiveCard(p Player) bool {
	return UnusedCards(p) < MaxUnusedCards
}

// SpendCard marks the first unused instance of c as used.
func SpendCard(p Player, c CardType) (Player, error) {
	i := unusedCardIndex(p, c)
	if i < 0 {
		return p, fmt.Errorf("%w: %s has no unused %s", ErrCardNotAvailable, p.ID, c)
	}
	p = p.clone()
	p.Cards[i].IsUsed = true
	return p, nil
}

// GrantCard appends an unused card. It does not check the cap.
func GrantCard(p Player, c CardType) Player {
	p = p.clone()
	p.Cards = append(p.Cards, Card{Type: c})
	return p
}

// awardIfRoom is the capped award used by every automatic rule.
func awardIfRoom(p *Player, c CardType, reason string) []Event {
	if !CanReceiveCard(*p) {
		return nil
	}
	*p = GrantCard(*p, c)
	return []Event{{Type: EvtCardAwarded, PlayerID: p.ID, Card: c, Reason: reason}}
}

func useCard(s *State, playerID string, c CardType) ([]Event, error) {
	if _, err := ParseCardType(string(c)); err != nil {
		return nil, err
	}
	i := playerIndex(*s, playerID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	p, err := SpendCard(s.Players[i], c)
	if err != nil {
		return nil, err
	}
	s.Players[i] = p
	return []Event{{Type: EvtCardUsed, PlayerID: playerID, Card: c, Reason: ReasonHost}}, nil
}

func awardCard(s *State, playerID string, c CardType) ([]Event, error) {
	if _, err := ParseCardType(string(c)); err != nil {
		return nil, err
	}
	i := playerIndex(*s, playerID)
	if i < 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	s.Players[i] = GrantCard(s.Players[i], c)
	return []Event{{Type: EvtCardAwarded, PlayerID: playerID, Card: c, Reason: ReasonHost}}, nil
}

// roundEntryAwards runs once per StartRound.
//
// speed: turbo to the top scorer, reanimacja to the bottom scorer (needs two
// players). Ties go to the first player in roster order.
// wheel: dejavu to everyone still in the game.
func roundEntryAwards(s *State, round RoundType) []Event {
	var events []Event
	switch round {
	case RoundSpeed:
		if len(s.Players) == 0 {
			return nil
		}
		hi, lo := 0, 0
		for i, p := range s.Players {
			if p.Points > s.Players[hi].Points {
				hi = i
			}
			if p.Points < s.Players[lo].Points {
				lo = i
			}
		}
		events = append(events, awardIfRoom(&s.Players[hi], CardTurbo, ReasonRound)...)
		if len(s.Players) >= 2 {
			events = append(events, awardIfRoom(&s.Players[lo], CardReanimacja, ReasonRound)...)
		}

	case RoundWheel:
		for i := range s.Players {
			if s.Players[i].Eliminated {
				continue
			}
			events = append(events, awardIfRoom(&s.Players[i], CardDejavu, ReasonRound)...)
		}
	}
	return events
}
