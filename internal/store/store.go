// Package store holds the question-pool persistence port and its in-memory
// implementation. Durable backends live in the subpackages.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
)

var ErrClosed = errors.New("store closed")

// QuestionStore is the persistence port. Callers treat writes as best-effort.
type QuestionStore interface {
	LoadQuestions(ctx context.Context) ([]engine.Question, error)
	SaveQuestions(ctx context.Context, questions []engine.Question) error
	Close() error
}

// MemoryStore keeps the catalogue in process.
type MemoryStore struct {
	questions []engine.Question
	closed    bool
	mu        sync.RWMutex
}

func NewMemoryStore(seed []engine.Question) *MemoryStore {
	return &MemoryStore{questions: copyQuestions(seed)}
}

func (s *MemoryStore) LoadQuestions(ctx context.Context) ([]engine.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}
	return copyQuestions(s.questions), nil
}

func (s *MemoryStore) SaveQuestions(ctx context.Context, questions []engine.Question) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.questions = copyQuestions(questions)
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func copyQuestions(qs []engine.Question) []engine.Question {
	out := make([]engine.Question, len(qs))
	for i, q := range qs {
		q.Answers = append([]engine.Answer(nil), q.Answers...)
		out[i] = q
	}
	return out
}

// LoadSeedFile reads a JSON array of questions, e.g. to prime an empty store.
// Every question is validated.
func LoadSeedFile(path string) ([]engine.Question, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	var questions []engine.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, fmt.Errorf("decode seed file %s: %w", path, err)
	}
	for _, q := range questions {
		if err := engine.ValidateQuestion(q); err != nil {
			return nil, fmt.Errorf("seed file %s: %w", path, err)
		}
	}
	return questions, nil
}
