package application_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/application"
	"jarvis/internal/domain"
)

var fixedNow = time.Date(2026, 3, 14, 15, 4, 5, 0, time.UTC)

func newTestInterpreter(notes *mockNoteStore, reminders *mockReminderStore) *application.Interpreter {
	return application.NewInterpreter(notes, reminders,
		application.WithClock(func() time.Time { return fixedNow }),
		application.WithPicker(func(int) int { return 1 }),
	)
}

func TestInterpret_Replies(t *testing.T) {
	in := newTestInterpreter(&mockNoteStore{}, &mockReminderStore{})

	tests := []struct {
		input  string
		intent domain.Intent
		reply  string
	}{
		{"what time is it", domain.IntentTime, "It's 3:04:05 PM."},
		{"What's the DATE today?", domain.IntentDate, "Today is 3/14/2026."},
		{"tell me a joke", domain.IntentJoke, application.DefaultJokes[1]},
		{"search: golang channels", domain.IntentSearch, "Searching for golang channels"},
		{"search cheap flights", domain.IntentSearch, "Searching for cheap flights"},
		{"note: buy milk", domain.IntentNote, "Saved note: buy milk"},
		{"Remember the keys", domain.IntentNote, "Saved note: the keys"},
		{"note", domain.IntentNote, application.EmptyNoteReply},
		{"remind me in 10 minutes to drink water", domain.IntentReminder, "Reminder set: drink water at 3/14/2026, 3:14:05 PM"},
		{"remind me tomorrow", domain.IntentReminder, application.ReminderHelpReply},
		{"open the pod bay doors", domain.IntentUnknown, application.HelpReply},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			out := in.Interpret(tt.input)
			assert.Equal(t, tt.intent, out.Intent)
			assert.Equal(t, tt.reply, out.Reply)
		})
	}
}

func TestInterpret_RuleOrder(t *testing.T) {
	in := newTestInterpreter(&mockNoteStore{}, &mockReminderStore{})

	tests := []struct {
		input  string
		intent domain.Intent
	}{
		{"note: check the time", domain.IntentTime},
		{"remind me to update the date", domain.IntentDate},
		{"search: time zones", domain.IntentTime},
		{"joke about dates", domain.IntentDate},
		{"note: a joke idea", domain.IntentJoke},
		{"search: remember me", domain.IntentSearch},
		{"remember to remind me", domain.IntentNote},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.intent, in.Interpret(tt.input).Intent)
		})
	}
}

func TestInterpret_TimeHasNoSideEffect(t *testing.T) {
	notes := &mockNoteStore{}
	reminders := &mockReminderStore{}
	in := newTestInterpreter(notes, reminders)

	out, err := in.Handle(context.Background(), "is it time yet")
	require.NoError(t, err)

	assert.Contains(t, out.Reply, "3:04:05 PM")
	assert.Nil(t, out.Effect)
	assert.Empty(t, notes.notes)
	assert.Empty(t, reminders.reminders)
}

func TestInterpret_EmptyInput(t *testing.T) {
	in := newTestInterpreter(&mockNoteStore{}, &mockReminderStore{})

	out := in.Interpret("   ")
	assert.Equal(t, domain.IntentNone, out.Intent)
	assert.Empty(t, out.Reply)
	assert.False(t, out.Recognized())
}

func TestInterpret_SearchURL(t *testing.T) {
	in := newTestInterpreter(&mockNoteStore{}, &mockReminderStore{})

	out := in.Interpret("search: fish & chips")

	search, ok := out.Effect.(domain.OpenSearch)
	require.True(t, ok)
	assert.Equal(t, "fish & chips", search.Query)
	assert.Equal(t, "https://www.google.com/search?q=fish+%26+chips", search.URL)
}

func TestHandle_NoteIsNotDeduplicated(t *testing.T) {
	notes := &mockNoteStore{}
	in := newTestInterpreter(notes, &mockReminderStore{})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := in.Handle(ctx, "note: X")
		require.NoError(t, err)
	}

	require.Len(t, notes.notes, 2)
	assert.Equal(t, "X", notes.notes[0].Text)
	assert.Equal(t, "X", notes.notes[1].Text)
	assert.Equal(t, fixedNow, notes.notes[0].CreatedAt)
}

func TestHandle_EmptyNoteStoresNothing(t *testing.T) {
	notes := &mockNoteStore{}
	in := newTestInterpreter(notes, &mockReminderStore{})

	out, err := in.Handle(context.Background(), "note:   ")
	require.NoError(t, err)

	assert.Equal(t, application.EmptyNoteReply, out.Reply)
	assert.Empty(t, notes.notes)
}

func TestHandle_SchedulesReminder(t *testing.T) {
	reminders := &mockReminderStore{}
	in := newTestInterpreter(&mockNoteStore{}, reminders)

	_, err := in.Handle(context.Background(), "set reminder at 09:30 to call mom")
	require.NoError(t, err)

	require.Len(t, reminders.reminders, 1)
	assert.Equal(t, "call mom", reminders.reminders[0].Text)
	assert.Equal(t, time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC), reminders.reminders[0].DueAt)
}

func TestHandle_ReminderParseFailureStoresNothing(t *testing.T) {
	reminders := &mockReminderStore{}
	in := newTestInterpreter(&mockNoteStore{}, reminders)

	out, err := in.Handle(context.Background(), "remind me someday")
	require.NoError(t, err)

	assert.Equal(t, application.ReminderHelpReply, out.Reply)
	assert.Zero(t, reminders.writeCount())
}

func TestHandle_StoreFailure(t *testing.T) {
	notes := &mockNoteStore{err: domain.ErrQuotaExceeded}
	in := newTestInterpreter(notes, &mockReminderStore{})

	_, err := in.Handle(context.Background(), "note: "+strings.Repeat("x", 10))

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrQuotaExceeded))
}

func TestWithJokes(t *testing.T) {
	in := application.NewInterpreter(&mockNoteStore{}, &mockReminderStore{},
		application.WithJokes([]string{"only one"}),
		application.WithPicker(func(n int) int { return n - 1 }),
	)

	assert.Equal(t, "only one", in.Interpret("joke").Reply)
}
