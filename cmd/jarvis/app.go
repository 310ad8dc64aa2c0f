package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"jarvis/config"
	"jarvis/internal/application"
	"jarvis/internal/infra/anthropic"
	"jarvis/internal/infra/gemini"
	"jarvis/internal/infra/openai"
	"jarvis/internal/infra/pushover"
	"jarvis/internal/infra/storage"
)

// app holds what every subcommand shares: config, logger and stores.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	loc       *time.Location
	kv        storage.KV
	notes     *storage.NoteStore
	reminders *storage.ReminderStore
}

func loadApp(opts *rootOptions, logOut io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	logger := setupLogger(cfg.Log, logOut)

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(cfg.Storage.Driver, cfg.Storage.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Driver, err)
	}
	kv = storage.WithQuota(kv, cfg.Storage.MaxBytes)

	logger.Debug("storage ready", "driver", cfg.Storage.Driver)

	return &app{
		cfg:       cfg,
		logger:    logger,
		loc:       loc,
		kv:        kv,
		notes:     storage.NewNoteStore(kv),
		reminders: storage.NewReminderStore(kv),
	}, nil
}

func (a *app) close() {
	if err := a.kv.Close(); err != nil {
		a.logger.Warn("closing storage", "error", err)
	}
}

func (a *app) now() time.Time {
	return time.Now().In(a.loc)
}

func (a *app) interpreter() *application.Interpreter {
	return application.NewInterpreter(a.notes, a.reminders, application.WithClock(a.now))
}

// relay returns the configured LLM relay, or nil when the provider cannot
// be constructed. A nil relay makes /api/chat report misconfiguration.
func (a *app) relay(ctx context.Context) application.Relay {
	llm := a.cfg.LLM
	switch llm.Provider {
	case "gemini":
		client, err := gemini.NewClient(ctx, llm.Gemini.APIKey, llm.Gemini.Model)
		if err != nil {
			a.logger.Warn("gemini relay unavailable", "error", err)
			return nil
		}
		return client
	case "anthropic":
		return anthropic.NewClaudeClient(llm.Anthropic.APIKey, llm.Anthropic.Model)
	default:
		return openai.NewChatClient(llm.OpenAI.APIKey, llm.OpenAI.Model)
	}
}

func (a *app) speech() application.SpeechToText {
	if a.cfg.LLM.OpenAI.APIKey == "" {
		return &application.NoopSTT{}
	}
	return openai.NewWhisperClient(a.cfg.LLM.OpenAI.APIKey, a.cfg.LLM.OpenAI.Language)
}

// notifier combines extra with Pushover when it is enabled.
func (a *app) notifier(extra ...application.Notifier) application.Notifier {
	notifiers := application.MultiNotifier(extra)
	if a.cfg.Pushover.Enabled {
		notifiers = append(notifiers, pushover.NewClient(a.cfg.Pushover.Token, a.cfg.Pushover.UserKey))
	}
	if len(notifiers) == 0 {
		return &application.NoopNotifier{}
	}
	return notifiers
}

func (a *app) scheduler(notifier application.Notifier) *application.Scheduler {
	s := application.NewScheduler(a.reminders, notifier, a.cfg.Reminders.PollInterval, a.logger)
	s.SetClock(a.now)
	return s
}

func (a *app) mode() (application.LLMMode, error) {
	return application.ParseLLMMode(a.cfg.LLM.Mode)
}
