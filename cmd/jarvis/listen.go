package main

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"jarvis/internal/application"
	"jarvis/internal/infra/source"
	"jarvis/internal/infra/terminal"
)

func newListenCommand(opts *rootOptions) *cobra.Command {
	var sourceKind string

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Answer commands from the console, a drop folder or the microphone",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			if sourceKind != "" {
				a.cfg.Source.Kind = sourceKind
			}

			src, err := createSource(a, cmd.InOrStdin())
			if err != nil {
				return err
			}

			mode, err := a.mode()
			if err != nil {
				return err
			}

			presenter, err := terminal.NewPresenter(cmd.OutOrStdout(), terminal.WithMarkdown("", 80))
			if err != nil {
				return err
			}

			assistant := application.NewAssistant(
				src,
				a.speech(),
				a.interpreter(),
				a.relay(ctx),
				presenter,
				mode,
				a.logger,
			)

			a.scheduler(a.notifier(presenter)).Start(ctx)

			return ignoreCanceled(assistant.Run(ctx))
		},
	}

	cmd.Flags().StringVar(&sourceKind, "source", "", "command source: console, file or microphone")

	return cmd
}

func createSource(a *app, stdin io.Reader) (application.CommandSource, error) {
	switch a.cfg.Source.Kind {
	case "console":
		return source.NewConsoleSource(stdin), nil
	case "file":
		return source.NewFileSource(a.cfg.Source.FileDir, a.logger), nil
	case "microphone":
		return source.NewMicrophoneSource(a.cfg.Source.SampleRate, a.logger), nil
	default:
		return nil, fmt.Errorf("unknown source %q: use console, file or microphone", a.cfg.Source.Kind)
	}
}
