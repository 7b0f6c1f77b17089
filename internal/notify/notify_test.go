package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
)

func TestEventName(t *testing.T) {
	name, ok := EventName(engine.Event{Type: engine.EvtPlayerEliminated})
	assert.True(t, ok)
	assert.Equal(t, PlayerEliminated, name)

	name, ok = EventName(engine.Event{Type: engine.EvtCardAwarded})
	assert.True(t, ok)
	assert.Equal(t, CardAwarded, name)

	_, ok = EventName(engine.Event{Type: engine.EvtQuestionsChanged})
	assert.False(t, ok, "persistence trigger is not relayed")
}

func TestFanout_SurvivesPanickingTarget(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	var got []string

	f := NewFanout(zap.New(core),
		Func(func(string, any) { panic("overlay down") }),
	)
	f.Add(Func(func(name string, _ any) { got = append(got, name) }))

	f.Emit(RoundStarted, nil)

	assert.Equal(t, []string{RoundStarted}, got)
	assert.Equal(t, 1, logs.Len())
}

func TestLog_Emits(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	NewLog(zap.New(core)).Emit(CardUsed, engine.Event{Type: engine.EvtCardUsed})

	entries := logs.FilterField(zap.String("event", CardUsed)).All()
	assert.Len(t, entries, 1)
}
