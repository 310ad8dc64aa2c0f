package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jarvis/internal/application"
	"jarvis/internal/infra/terminal"
)

func newAskCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "ask <prompt>",
		Short: "Send one prompt to the configured LLM",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			relay := a.relay(cmd.Context())
			if relay == nil {
				return fmt.Errorf("no LLM relay configured for provider %q", a.cfg.LLM.Provider)
			}

			reply, err := relay.SendPrompt(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return fmt.Errorf("LLM request failed: %w", err)
			}

			presenter, err := terminal.NewPresenter(cmd.OutOrStdout(), terminal.WithMarkdown("", 80))
			if err != nil {
				return err
			}
			return presenter.Present(cmd.Context(), application.Message{
				Role:     application.RoleAssistant,
				Text:     reply,
				Markdown: true,
			})
		},
	}
}
