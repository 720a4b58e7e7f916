package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/pflag"

	"github.com/letsssgooo/learnWithJasper/internal/auth"
	"github.com/letsssgooo/learnWithJasper/internal/config"
	"github.com/letsssgooo/learnWithJasper/internal/console"
	"github.com/letsssgooo/learnWithJasper/internal/events/fetcher"
	"github.com/letsssgooo/learnWithJasper/internal/events/sender"
	"github.com/letsssgooo/learnWithJasper/internal/leaderboard"
	"github.com/letsssgooo/learnWithJasper/internal/quiz"
	"github.com/letsssgooo/learnWithJasper/internal/storage"
	"github.com/letsssgooo/learnWithJasper/internal/storage/postgres"
)

const connectTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	slog.SetDefault(config.SetupLogger(cfg, os.Stderr))

	if err := run(cfg); err != nil {
		slog.Error("learn with jasper stopped", "err", err)
		os.Exit(1)
	}
}

func run(cfg config.Config) error {
	slog.Info("starting learn with jasper...", "env", cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, closeStorage, err := setupStorage(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	accounts := auth.NewAuth(st)
	session := quiz.NewSession(accounts, quiz.Options{
		TickInterval: cfg.TickInterval,
		AdvanceDelay: cfg.AdvanceDelay,
	})
	app := console.NewApp(
		accounts,
		session,
		leaderboard.NewBoard(st),
		fetcher.NewLineFetcher(os.Stdin),
		sender.NewConsoleSender(color.Output),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_ = session.Run(ctx)
	}()

	err = app.Run(ctx)
	cancel()
	wg.Wait()

	return err
}

// setupStorage выбирает хранилище: PostgreSQL при заданном DSN, иначе память процесса.
func setupStorage(ctx context.Context, cfg config.Config) (storage.Storage, func(), error) {
	var (
		st      storage.Storage
		closeFn = func() {}
	)

	if cfg.DatabaseDSN == "" {
		st = storage.NewMemoryStorage()
		slog.Debug("using in-memory storage")
	} else {
		connectCtx, cancel := context.WithTimeout(ctx, connectTimeout)
		defer cancel()

		pg, err := postgres.NewStorage(connectCtx, cfg.DatabaseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("cannot connect to database: %w", err)
		}

		if err := pg.Migrate(connectCtx); err != nil {
			pg.Close()
			return nil, nil, fmt.Errorf("cannot migrate database: %w", err)
		}

		st, closeFn = pg, pg.Close
		slog.Debug("using postgres storage")
	}

	if cfg.Seed {
		added, err := storage.Seed(ctx, st, storage.SeedUsers(time.Now()))
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		slog.Debug("demo users seeded", "added", added)
	}

	return st, closeFn, nil
}
