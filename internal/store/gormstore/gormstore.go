// Package gormstore persists the question catalogue in Postgres through gorm.
package gormstore

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
)

type QuestionRecord struct {
	ID                 string         `gorm:"primaryKey"`
	Position           int            `gorm:"index;not null"`
	Text               string         `gorm:"not null"`
	Category           string         `gorm:"index;not null;default:''"`
	CorrectAnswerIndex int            `gorm:"not null"`
	Used               bool           `gorm:"not null;default:false"`
	Answers            []AnswerRecord `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

func (QuestionRecord) TableName() string { return "questions" }

type AnswerRecord struct {
	ID         uint   `gorm:"primaryKey"`
	QuestionID string `gorm:"index;not null"`
	Position   int    `gorm:"not null"`
	Text       string `gorm:"not null"`
	IsCorrect  bool   `gorm:"not null;default:false"`
}

func (AnswerRecord) TableName() string { return "question_answers" }

type Store struct {
	db  *gorm.DB
	log *zap.Logger
}

func Open(dsn string, log *zap.Logger) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	return New(db, log)
}

// New wraps an existing connection and migrates the schema.
func New(db *gorm.DB, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := db.AutoMigrate(&QuestionRecord{}, &AnswerRecord{}); err != nil {
		return nil, fmt.Errorf("migrate question tables: %w", err)
	}
	log.Info("postgres question store ready")
	return &Store{db: db, log: log}, nil
}

func (s *Store) LoadQuestions(ctx context.Context) ([]engine.Question, error) {
	var records []QuestionRecord
	err := s.db.WithContext(ctx).
		Preload("Answers", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Order("position").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	return fromRecords(records), nil
}

// SaveQuestions replaces the stored catalogue in a single transaction.
func (s *Store) SaveQuestions(ctx context.Context, questions []engine.Question) error {
	records := toRecords(questions)
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		all := tx.Session(&gorm.Session{AllowGlobalUpdate: true})
		if err := all.Delete(&AnswerRecord{}).Error; err != nil {
			return fmt.Errorf("clear answers: %w", err)
		}
		if err := all.Delete(&QuestionRecord{}).Error; err != nil {
			return fmt.Errorf("clear questions: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("insert questions: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("save questions: %w", err)
	}
	s.log.Debug("questions saved", zap.Int("count", len(questions)))
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return fmt.Errorf("close postgres: %w", err)
	}
	return sqlDB.Close()
}

func toRecords(questions []engine.Question) []QuestionRecord {
	records := make([]QuestionRecord, len(questions))
	for i, q := range questions {
		answers := make([]AnswerRecord, len(q.Answers))
		for j, a := range q.Answers {
			answers[j] = AnswerRecord{QuestionID: q.ID, Position: j, Text: a.Text, IsCorrect: a.IsCorrect}
		}
		records[i] = QuestionRecord{
			ID:                 q.ID,
			Position:           i,
			Text:               q.Text,
			Category:           q.Category,
			CorrectAnswerIndex: q.CorrectAnswerIndex,
			Used:               q.Used,
			Answers:            answers,
		}
	}
	return records
}

func fromRecords(records []QuestionRecord) []engine.Question {
	questions := make([]engine.Question, len(records))
	for i, r := range records {
		answers := make([]engine.Answer, len(r.Answers))
		for j, a := range r.Answers {
			answers[j] = engine.Answer{Text: a.Text, IsCorrect: a.IsCorrect}
		}
		questions[i] = engine.Question{
			ID:                 r.ID,
			Text:               r.Text,
			Category:           r.Category,
			Answers:            answers,
			CorrectAnswerIndex: r.CorrectAnswerIndex,
			Used:               r.Used,
		}
	}
	return questions
}
