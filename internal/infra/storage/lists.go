package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"jarvis/internal/domain"
)

type noteRecord struct {
	Text string `json:"text"`
	At   int64  `json:"at"`
}

type reminderRecord struct {
	Text string `json:"text"`
	TS   int64  `json:"ts"`
}

// list is a JSON array stored under one key. Modifications go through
// KV.Update, so concurrent writers (in this process or another) never lose
// each other's changes.
type list[T any] struct {
	kv  KV
	key string
}

func (l *list[T]) decode(data []byte) ([]T, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var items []T
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decoding %s: %w: %v", l.key, domain.ErrCorrupt, err)
	}
	return items, nil
}

func (l *list[T]) encode(items []T) ([]byte, error) {
	if items == nil {
		items = []T{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", l.key, err)
	}
	return data, nil
}

func (l *list[T]) all(ctx context.Context) ([]T, error) {
	data, err := l.kv.Get(ctx, l.key)
	if err != nil {
		return nil, err
	}
	return l.decode(data)
}

func (l *list[T]) update(ctx context.Context, fn func([]T) ([]T, bool)) error {
	return l.kv.Update(ctx, l.key, func(current []byte) ([]byte, bool, error) {
		items, err := l.decode(current)
		if err != nil {
			return nil, false, err
		}
		next, changed := fn(items)
		if !changed {
			return nil, false, nil
		}
		data, err := l.encode(next)
		if err != nil {
			return nil, false, err
		}
		return data, true, nil
	})
}

type NoteStore struct {
	list list[noteRecord]
}

func NewNoteStore(kv KV) *NoteStore {
	return &NoteStore{list: list[noteRecord]{kv: kv, key: NotesKey}}
}

func (s *NoteStore) Notes(ctx context.Context) ([]domain.Note, error) {
	recs, err := s.list.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading notes: %w", err)
	}
	notes := make([]domain.Note, len(recs))
	for i, r := range recs {
		notes[i] = domain.Note{Text: r.Text, CreatedAt: time.UnixMilli(r.At)}
	}
	return notes, nil
}

func (s *NoteStore) AppendNote(ctx context.Context, note domain.Note) error {
	rec := noteRecord{Text: note.Text, At: note.CreatedAt.UnixMilli()}
	err := s.list.update(ctx, func(recs []noteRecord) ([]noteRecord, bool) {
		return append(recs, rec), true
	})
	if err != nil {
		return fmt.Errorf("appending note: %w", err)
	}
	return nil
}

type ReminderStore struct {
	list list[reminderRecord]
}

func NewReminderStore(kv KV) *ReminderStore {
	return &ReminderStore{list: list[reminderRecord]{kv: kv, key: RemindersKey}}
}

func (s *ReminderStore) Reminders(ctx context.Context) ([]domain.Reminder, error) {
	recs, err := s.list.all(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading reminders: %w", err)
	}
	return toReminders(recs), nil
}

func (s *ReminderStore) AppendReminder(ctx context.Context, r domain.Reminder) error {
	rec := reminderRecord{Text: r.Text, TS: r.DueAt.UnixMilli()}
	err := s.list.update(ctx, func(recs []reminderRecord) ([]reminderRecord, bool) {
		return append(recs, rec), true
	})
	if err != nil {
		return fmt.Errorf("appending reminder: %w", err)
	}
	return nil
}

func (s *ReminderStore) UpdateReminders(ctx context.Context, fn func([]domain.Reminder) ([]domain.Reminder, bool)) error {
	err := s.list.update(ctx, func(recs []reminderRecord) ([]reminderRecord, bool) {
		next, changed := fn(toReminders(recs))
		if !changed {
			return recs, false
		}
		out := make([]reminderRecord, len(next))
		for i, r := range next {
			out[i] = reminderRecord{Text: r.Text, TS: r.DueAt.UnixMilli()}
		}
		return out, true
	})
	if err != nil {
		return fmt.Errorf("updating reminders: %w", err)
	}
	return nil
}

func toReminders(recs []reminderRecord) []domain.Reminder {
	out := make([]domain.Reminder, len(recs))
	for i, r := range recs {
		out[i] = domain.Reminder{Text: r.Text, DueAt: time.UnixMilli(r.TS)}
	}
	return out
}
