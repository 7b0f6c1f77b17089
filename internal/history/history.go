// Package history keeps a short newest-first audit log of dispatched actions
// with single-step undo. It never gates a transition; the owner of the game
// state captures the previous snapshot and decides what to record.
package history

import (
	"time"

	"github.com/google/uuid"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
)

const DefaultLimit = 10

type Entry struct {
	ID            string         `json:"id"`
	Type          string         `json:"type"`
	Timestamp     time.Time      `json:"timestamp"`
	Description   string         `json:"description"`
	PlayerIDs     []string       `json:"player_ids"`
	Undoable      bool           `json:"undoable"`
	Data          map[string]any `json:"data,omitempty"`
	PreviousState engine.State   `json:"-"`
	Action        engine.Action  `json:"-"`
}

// Log is not safe for concurrent use; the session actor owns it.
type Log struct {
	entries []Entry // newest first
	limit   int
	now     func() time.Time
}

func New(limit int) *Log {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Log{limit: limit, now: time.Now}
}

// AddAction records an applied action. previous must be the state from before
// the dispatch; it is cloned so later transitions cannot reach into it.
func (l *Log) AddAction(a engine.Action, description string, playerIDs []string, data map[string]any, previous engine.State) Entry {
	e := Entry{
		ID:            uuid.NewString(),
		Type:          string(a.Kind()),
		Timestamp:     l.now(),
		Description:   description,
		PlayerIDs:     append([]string(nil), playerIDs...),
		Undoable:      Undoable(a),
		Data:          data,
		PreviousState: previous.Clone(),
		Action:        a,
	}
	l.entries = append([]Entry{e}, l.entries...)
	if len(l.entries) > l.limit {
		l.entries = l.entries[:l.limit]
	}
	return e
}

// UndoLastAction removes the newest undoable entry and returns its snapshot.
// The restored snapshot predates every newer entry, and those are all
// catalogue edits; their actions come back oldest first so the caller can
// re-apply them. Their entries stay in the log.
func (l *Log) UndoLastAction() (Entry, []engine.Action, bool) {
	for i, e := range l.entries {
		if e.Undoable {
			replay := make([]engine.Action, 0, i)
			for j := i - 1; j >= 0; j-- {
				replay = append(replay, l.entries[j].Action)
			}
			l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
			e.PreviousState = e.PreviousState.Clone()
			return e, replay, true
		}
	}
	return Entry{}, nil, false
}

func (l *Log) Clear() {
	l.entries = nil
}

func (l *Log) Len() int { return len(l.entries) }

// Entries returns a copy, newest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	copy(out, l.entries)
	return out
}
