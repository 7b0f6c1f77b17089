// Package sqlitestore persists the question catalogue in a local SQLite file.
package sqlitestore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS questions (
		id TEXT PRIMARY KEY,
		position INTEGER NOT NULL,
		text TEXT NOT NULL,
		category TEXT NOT NULL DEFAULT '',
		answers TEXT NOT NULL,
		correct_answer_index INTEGER NOT NULL,
		used INTEGER NOT NULL DEFAULT 0
	);`,
	`CREATE INDEX IF NOT EXISTS idx_questions_position ON questions(position);`,
}

type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func Open(path string, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer at a time keeps sqlite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		log.Warn("could not enable WAL mode", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000;"); err != nil {
		log.Warn("could not set busy timeout", zap.Error(err))
	}

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return nil, multierr.Append(fmt.Errorf("apply schema: %w", err), db.Close())
		}
	}

	log.Info("sqlite question store ready", zap.String("path", path))
	return &Store{db: db, log: log}, nil
}

func (s *Store) LoadQuestions(ctx context.Context) ([]engine.Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, text, category, answers, correct_answer_index, used
		 FROM questions ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := []engine.Question{}
	for rows.Next() {
		var (
			q       engine.Question
			answers string
		)
		if err := rows.Scan(&q.ID, &q.Text, &q.Category, &answers, &q.CorrectAnswerIndex, &q.Used); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		if err := json.Unmarshal([]byte(answers), &q.Answers); err != nil {
			return nil, fmt.Errorf("decode answers for %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return questions, nil
}

// SaveQuestions replaces the stored catalogue with questions, in order.
func (s *Store) SaveQuestions(ctx context.Context, questions []engine.Question) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer func() {
		if err != nil {
			err = multierr.Append(err, tx.Rollback())
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM questions`); err != nil {
		return fmt.Errorf("clear questions: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO questions (id, position, text, category, answers, correct_answer_index, used)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, q := range questions {
		answers, mErr := json.Marshal(q.Answers)
		if mErr != nil {
			err = fmt.Errorf("encode answers for %s: %w", q.ID, mErr)
			return err
		}
		if _, err = stmt.ExecContext(ctx, q.ID, i, q.Text, q.Category, string(answers), q.CorrectAnswerIndex, q.Used); err != nil {
			return fmt.Errorf("insert question %s: %w", q.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	s.log.Debug("questions saved", zap.Int("count", len(questions)))
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
