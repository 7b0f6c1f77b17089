package engine

var RoundOrder = []RoundType{
	RoundKnowledge,
	RoundSpeed,
	RoundWheel,
}

// Next returns the round after r, or false once the wheel is reached.
func (r RoundType) Next() (RoundType, bool) {
	for i, round := range RoundOrder {
		if round == r && i+1 < len(RoundOrder) {
			return RoundOrder[i+1], true
		}
	}
	return "", false
}

// nextInTurn walks the roster from the current index and returns the first
// player still in the game. With nobody active the walk starts at the top.
func nextInTurn(s State) (int, bool) {
	n := len(s.Players)
	if n == 0 {
		return -1, false
	}
	start := s.CurrentPlayerIndex
	for step := 1; step <= n; step++ {
		i := (start + step) % n
		if !s.Players[i].Eliminated {
			return i, true
		}
	}
	return -1, false
}
