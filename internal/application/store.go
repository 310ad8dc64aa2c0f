package application

import (
	"context"

	"jarvis/internal/domain"
)

type NoteStore interface {
	Notes(ctx context.Context) ([]domain.Note, error)
	AppendNote(ctx context.Context, note domain.Note) error
}

type ReminderStore interface {
	Reminders(ctx context.Context) ([]domain.Reminder, error)
	AppendReminder(ctx context.Context, r domain.Reminder) error
	// UpdateReminders runs fn under the store lock. The returned slice is
	// written back only when fn reports a change.
	UpdateReminders(ctx context.Context, fn func([]domain.Reminder) ([]domain.Reminder, bool)) error
}
