package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/neexbeast/skycast/internal/config"
	"github.com/neexbeast/skycast/internal/favorites"
	"github.com/neexbeast/skycast/internal/forecast"
	"github.com/neexbeast/skycast/internal/search"
	"github.com/neexbeast/skycast/internal/session"
)

func main() {
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	if err := run(log); err != nil {
		log.Error("skycast exited with error", "err", err)
		os.Exit(1)
	}
}

func run(log *slog.Logger) error {
	cfg, err := config.LoadClient(log)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sess := &session.Session{UserID: cfg.UserID, Token: cfg.Token}

	var transition search.Transition = search.Immediate{}
	if cfg.Fade > 0 {
		transition = search.Fade{Delay: cfg.Fade}
	}

	ctrl := search.NewController(forecast.NewPipeline(nil, log), search.Options{
		Session:    sess,
		Horizons:   cfg.Horizons,
		Store:      favorites.NewClient(cfg.APIURL, cfg.Token),
		Transition: transition,
	}, log)

	if err := ctrl.LoadFavorites(ctx); err != nil {
		// The session still works without favorites.
		fmt.Fprintln(os.Stdout, "Could not load favorites.")
	}

	fmt.Fprintf(os.Stdout, "skycast (%s). Type \"help\" for commands.\n", sess.Tier())
	return newREPL(ctrl, os.Stdout).run(ctx, os.Stdin)
}
