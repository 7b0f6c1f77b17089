package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/quiz-show-backend/internal/config"
	"github.com/DoyleJ11/quiz-show-backend/internal/httpapi"
	"github.com/DoyleJ11/quiz-show-backend/internal/hub"
	"github.com/DoyleJ11/quiz-show-backend/internal/logging"
	"github.com/DoyleJ11/quiz-show-backend/internal/notify"
	"github.com/DoyleJ11/quiz-show-backend/internal/session"
	"github.com/DoyleJ11/quiz-show-backend/internal/store"
	"github.com/DoyleJ11/quiz-show-backend/internal/store/gormstore"
	"github.com/DoyleJ11/quiz-show-backend/internal/store/sqlitestore"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() (err error) {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.Dev)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := primeStore(ctx, st, cfg.SeedFile, log); err != nil {
		return err
	}

	h := hub.NewHub(ctx, session.Options{
		Log:          log,
		Store:        st,
		Notifier:     notify.NewFanout(log, notify.NewLog(log)),
		HistoryLimit: cfg.HistoryLimit,
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.SetupRoutes(&httpapi.API{Hub: h, Store: st, Log: log}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := srv.Shutdown(shutdownCtx)
		h.Inbox() <- hub.ShutdownHub{}
		<-h.Done()
		return err
	})
	return g.Wait()
}

func openStore(cfg config.Config, log *zap.Logger) (store.QuestionStore, error) {
	switch cfg.StoreDriver {
	case config.StoreSQLite:
		return sqlitestore.Open(cfg.SQLitePath, log)
	case config.StorePostgres:
		return gormstore.Open(cfg.DatabaseURL, log)
	default:
		return store.NewMemoryStore(nil), nil
	}
}

// primeStore writes the seed file into an empty store so a fresh install
// starts with a catalogue.
func primeStore(ctx context.Context, st store.QuestionStore, seedFile string, log *zap.Logger) error {
	if seedFile == "" {
		return nil
	}
	existing, err := st.LoadQuestions(ctx)
	if err != nil {
		return fmt.Errorf("load questions: %w", err)
	}
	if len(existing) > 0 {
		log.Info("store already has questions, ignoring seed file", zap.Int("questions", len(existing)))
		return nil
	}
	seed, err := store.LoadSeedFile(seedFile)
	if err != nil {
		return err
	}
	if err := st.SaveQuestions(ctx, seed); err != nil {
		return fmt.Errorf("save seed: %w", err)
	}
	log.Info("seeded question catalogue", zap.String("file", seedFile), zap.Int("questions", len(seed)))
	return nil
}
