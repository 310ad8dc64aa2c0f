package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"jarvis/internal/application"
	"jarvis/internal/infra/httpapi"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, static site and reminder scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			if port != "" {
				a.cfg.Server.Port = port
			}
			return runServe(ctx, a)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides config and PORT)")

	return cmd
}

// newServer builds the HTTP server and a scheduler that announces fired
// reminders to browser clients through it, plus Pushover when enabled.
func newServer(ctx context.Context, a *app) (*httpapi.Server, *application.Scheduler, error) {
	mode, err := a.mode()
	if err != nil {
		return nil, nil, err
	}

	relay := a.relay(ctx)
	assistant := application.NewAssistant(
		nil,
		a.speech(),
		a.interpreter(),
		relay,
		application.NoopPresenter{},
		mode,
		a.logger,
	)

	srv := httpapi.New(httpapi.Options{
		Addr:      a.cfg.Server.Addr(),
		StaticDir: a.cfg.Server.StaticDir,
		RateLimit: a.cfg.Server.RateLimit,
	}, assistant, relay, a.notes, a.reminders, a.logger)

	return srv, a.scheduler(a.notifier(srv.Announcements())), nil
}

func runServe(ctx context.Context, a *app) error {
	srv, scheduler, err := newServer(ctx, a)
	if err != nil {
		return err
	}

	a.logger.Info("starting jarvis server",
		"addr", a.cfg.Server.Addr(),
		"storage", a.cfg.Storage.Driver,
		"llm_provider", a.cfg.LLM.Provider,
		"llm_mode", a.cfg.LLM.Mode,
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Serve(gctx)
	})
	g.Go(func() error {
		return ignoreCanceled(scheduler.Run(gctx))
	})

	err = g.Wait()
	a.logger.Info("shutting down")
	return err
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
