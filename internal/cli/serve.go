package cli

import (
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"statecraft/internal/deck"
	"statecraft/internal/draft"
	"statecraft/internal/game"
	"statecraft/internal/judge"
	"statecraft/internal/report"
	"statecraft/internal/session"
	"statecraft/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the web game and authoring API",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runServe(cmd.Context())
	},
}

func runServe(ctx context.Context) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	sc, err := deck.LoadScenario(cfg.ScenarioPath)
	if err != nil {
		return fmt.Errorf("load scenario %s: %w", cfg.ScenarioPath, err)
	}
	if issues := sc.Validate(); len(issues) > 0 {
		for _, i := range issues {
			logger.Warn("scenario issue", "issue", i.String())
		}
	}

	// The authoring draft is a separate copy: play always consumes the
	// scenario loaded at startup, edits accumulate in the draft and are
	// checkpointed to SQLite.
	draftCopy := sc.Clone()
	var saver draft.Saver
	if cfg.DraftDB != "" {
		store, err := draft.Open(cfg.DraftDB)
		if err != nil {
			return fmt.Errorf("open draft store: %w", err)
		}
		defer func() { _ = store.Close() }()
		saver = store

		if saved, ok, err := store.Load(ctx); err != nil {
			logger.Warn("draft load failed, starting from scenario file", "err", err)
		} else if ok {
			logger.Info("resuming saved draft", "title", saved.Title)
			draftCopy = saved
		}
	}
	return serveWith(sc, draftCopy, saver, logger)
}

func serveWith(play, draftCopy *deck.Scenario, saver draft.Saver, logger *slog.Logger) error {
	tmpl, err := template.ParseFiles(
		filepath.Join(cfg.TemplatesDir, "layout.html"),
		filepath.Join(cfg.TemplatesDir, "game.html"),
	)
	if err != nil {
		return fmt.Errorf("parse templates: %w", err)
	}

	srv := &web.Server{
		Engine: &game.Engine{
			Scenario: play,
			Judge:    &judge.Keyword{Threshold: cfg.JudgeThreshold},
			Reporter: &report.PDF{},
			Log:      logger,
		},
		Store: session.NewMemoryStore[game.State](),
		Locks: session.NewLocker(),
		Draft: draft.NewService(draftCopy, saver, logger),
		Tmpl:  tmpl,
		Log:   logger,
	}

	logger.Info("listening", "addr", cfg.Addr, "scenario", play.Title)
	return http.ListenAndServe(cfg.Addr, srv.Routes())
}
