package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"jarvis/internal/application"
	"jarvis/internal/infra/httpapi"
)

func newNotesCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "notes [query]",
		Short: "List saved notes, fuzzy-filtered by query",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			notes, err := a.notes.Notes(cmd.Context())
			if err != nil {
				return err
			}
			if q := strings.TrimSpace(strings.Join(args, " ")); q != "" {
				notes = httpapi.FilterNotes(notes, q)
			}

			out := cmd.OutOrStdout()
			if len(notes) == 0 {
				fmt.Fprintln(out, "No notes.")
				return nil
			}
			for _, n := range notes {
				fmt.Fprintf(out, "%s  %s\n", n.CreatedAt.In(a.loc).Format(application.DateTimeLayout), n.Text)
			}
			return nil
		},
	}
}

func newRemindersCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reminders",
		Short: "List pending reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := loadApp(opts, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			reminders, err := a.reminders.Reminders(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(reminders) == 0 {
				fmt.Fprintln(out, "No pending reminders.")
				return nil
			}
			for _, r := range reminders {
				fmt.Fprintf(out, "%s  %s\n", r.DueAt.In(a.loc).Format(application.DateTimeLayout), r.Text)
			}
			return nil
		},
	}
}
