package application_test

import (
	"context"
	"io"
	"sync"

	"jarvis/internal/application"
	"jarvis/internal/domain"
)

type mockNoteStore struct {
	mu    sync.Mutex
	notes []domain.Note
	err   error
}

func (m *mockNoteStore) Notes(_ context.Context) ([]domain.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Note(nil), m.notes...), nil
}

func (m *mockNoteStore) AppendNote(_ context.Context, note domain.Note) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.notes = append(m.notes, note)
	return nil
}

type mockReminderStore struct {
	mu        sync.Mutex
	reminders []domain.Reminder
	writes    int
}

func (m *mockReminderStore) Reminders(_ context.Context) ([]domain.Reminder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Reminder(nil), m.reminders...), nil
}

func (m *mockReminderStore) AppendReminder(_ context.Context, r domain.Reminder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reminders = append(m.reminders, r)
	m.writes++
	return nil
}

func (m *mockReminderStore) UpdateReminders(_ context.Context, fn func([]domain.Reminder) ([]domain.Reminder, bool)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, changed := fn(append([]domain.Reminder(nil), m.reminders...))
	if changed {
		m.reminders = next
		m.writes++
	}
	return nil
}

func (m *mockReminderStore) writeCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

type mockRelay struct {
	mu      sync.Mutex
	reply   string
	err     error
	prompts []string
}

func (m *mockRelay) SendPrompt(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.prompts = append(m.prompts, prompt)
	return m.reply, m.err
}

func (m *mockRelay) Name() string { return "mock" }

type mockNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (m *mockNotifier) Notify(_ context.Context, message string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, message)
	return nil
}

func (m *mockNotifier) sent() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.messages...)
}

type mockPresenter struct {
	mu       sync.Mutex
	messages []application.Message
}

func (m *mockPresenter) Present(_ context.Context, msg application.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockPresenter) replies() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, msg := range m.messages {
		if msg.Role == application.RoleAssistant {
			out = append(out, msg.Text)
		}
	}
	return out
}

// mockSource yields its inputs in order, then io.EOF.
type mockSource struct {
	inputs  []domain.Input
	index   int
	started bool
	stopped bool
}

func (m *mockSource) Start(_ context.Context) error { m.started = true; return nil }
func (m *mockSource) Stop() error                   { m.stopped = true; return nil }
func (m *mockSource) Name() string                  { return "mock" }

func (m *mockSource) NextInput(_ context.Context) (domain.Input, error) {
	if m.index >= len(m.inputs) {
		return domain.Input{}, io.EOF
	}
	in := m.inputs[m.index]
	m.index++
	return in, nil
}

type mockSTT struct {
	transcriptions map[string]string
}

func (m *mockSTT) Transcribe(_ context.Context, audio []byte) (string, error) {
	return m.transcriptions[string(audio)], nil
}
