package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
)

func sampleQuestion(id string) engine.Question {
	return engine.Question{
		ID:                 id,
		Text:               "Stolica Polski?",
		Category:           "Geografia",
		Answers:            []engine.Answer{{Text: "Kraków"}, {Text: "Warszawa", IsCorrect: true}},
		CorrectAnswerIndex: 1,
	}
}

func TestMemoryStore_RoundTripIsCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore([]engine.Question{sampleQuestion("q1")})

	got, err := s.LoadQuestions(ctx)
	require.NoError(t, err)
	got[0].Answers[0].Text = "mutated"

	again, err := s.LoadQuestions(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Kraków", again[0].Answers[0].Text)

	q := sampleQuestion("q2")
	q.Used = true
	require.NoError(t, s.SaveQuestions(ctx, []engine.Question{q}))
	again, err = s.LoadQuestions(ctx)
	require.NoError(t, err)
	require.Len(t, again, 1)
	assert.True(t, again[0].Used)
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore(nil)
	require.NoError(t, s.Close())

	_, err := s.LoadQuestions(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, s.SaveQuestions(context.Background(), nil), ErrClosed)
}

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "good.json")
	require.NoError(t, os.WriteFile(good, []byte(`[
		{"id":"q1","text":"2+2?","category":"Matma",
		 "answers":[{"text":"3"},{"text":"4","is_correct":true}],
		 "correct_answer_index":1}
	]`), 0o600))

	qs, err := LoadSeedFile(good)
	require.NoError(t, err)
	require.Len(t, qs, 1)
	assert.Equal(t, "Matma", qs[0].Category)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`[{"id":"q1","text":"?","answers":[{"text":"x"}],"correct_answer_index":0}]`), 0o600))
	_, err = LoadSeedFile(bad)
	assert.ErrorIs(t, err, engine.ErrInvalidQuestion)

	_, err = LoadSeedFile(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)
}
