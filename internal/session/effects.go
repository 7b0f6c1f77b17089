package session

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/DoyleJ11/quiz-show-backend/internal/engine"
	"github.com/DoyleJ11/quiz-show-backend/internal/notify"
	"github.com/DoyleJ11/quiz-show-backend/internal/store"
)

// PersistenceWarning is emitted when a best-effort save fails.
const PersistenceWarning = "persistence_warning"

const (
	effectQueueSize = 64
	saveTimeout     = 5 * time.Second
)

type effectJob struct {
	events    []engine.Event
	questions []engine.Question // nil unless the catalogue must be saved
}

// effects runs side effects strictly after a transition has been committed.
// Jobs are handled in order on a single goroutine, so saves never race each
// other, and the session loop never waits on them.
type effects struct {
	jobs     chan effectJob
	store    store.QuestionStore
	notifier notify.Notifier
	warn     func(string) // relays save failures to the session's clients
	log      *zap.Logger
	done     chan struct{}
}

func newEffects(st store.QuestionStore, n notify.Notifier, warn func(string), log *zap.Logger) *effects {
	e := &effects{
		jobs:     make(chan effectJob, effectQueueSize),
		store:    st,
		notifier: n,
		warn:     warn,
		log:      log,
		done:     make(chan struct{}),
	}
	go e.run()
	return e
}

// enqueue never blocks. A full queue drops the job with a warning.
func (e *effects) enqueue(events []engine.Event, s engine.State) {
	if len(events) == 0 {
		return
	}
	job := effectJob{events: events}
	if engine.ContainsEvent(events, engine.EvtQuestionsChanged) {
		job.questions = s.Clone().Questions
		if job.questions == nil {
			job.questions = []engine.Question{}
		}
	}
	select {
	case e.jobs <- job:
	default:
		e.log.Warn("effect queue full, dropping effects", zap.Int("events", len(events)))
	}
}

func (e *effects) run() {
	defer close(e.done)
	for job := range e.jobs {
		if job.questions != nil {
			e.save(job.questions)
		}
		for _, ev := range job.events {
			if name, ok := notify.EventName(ev); ok {
				e.emit(name, ev)
			}
		}
	}
}

func (e *effects) save(questions []engine.Question) {
	if e.store == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
	defer cancel()
	if err := e.store.SaveQuestions(ctx, questions); err != nil {
		e.log.Warn("saving questions failed, keeping in-memory state", zap.Error(err))
		e.emit(PersistenceWarning, err.Error())
		if e.warn != nil {
			e.warn(err.Error())
		}
	}
}

func (e *effects) emit(name string, payload any) {
	if e.notifier == nil {
		return
	}
	e.notifier.Emit(name, payload)
}

// close drains the queue and waits for the worker.
func (e *effects) close() {
	close(e.jobs)
	<-e.done
}
