package main

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/domain"
	"jarvis/internal/infra/storage"
)

// withFileStorage points the CLI at a temp data dir and an absent config.
func withFileStorage(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("STORAGE_DRIVER", "file")
	t.Setenv("STORAGE_DSN", dir)
	t.Setenv("JARVIS_TIMEZONE", "UTC")
	return dir
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetArgs(append([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}, args...))
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestNotesCommand_ListsAndFilters(t *testing.T) {
	dir := withFileStorage(t)

	kv, err := storage.NewFile(dir)
	require.NoError(t, err)
	notes := storage.NewNoteStore(kv)
	at := time.Date(2026, 5, 1, 9, 30, 0, 0, time.UTC)
	for _, text := range []string{"buy milk", "call the plumber"} {
		require.NoError(t, notes.AppendNote(context.Background(), domain.Note{Text: text, CreatedAt: at}))
	}

	out, err := execute(t, "", "notes")
	require.NoError(t, err)
	assert.Contains(t, out, "5/1/2026, 9:30:00 AM  buy milk")
	assert.Contains(t, out, "call the plumber")

	out, err = execute(t, "", "notes", "milk")
	require.NoError(t, err)
	assert.Contains(t, out, "buy milk")
	assert.NotContains(t, out, "plumber")
}

func TestRemindersCommand_Empty(t *testing.T) {
	withFileStorage(t)

	out, err := execute(t, "", "reminders")
	require.NoError(t, err)
	assert.Equal(t, "No pending reminders.\n", out)
}

func TestListenCommand_ConsoleSession(t *testing.T) {
	dir := withFileStorage(t)

	out, err := execute(t, "note: water the plants\nremind me in 5 minutes to stretch\n", "listen", "--source", "console")
	require.NoError(t, err)

	assert.Contains(t, out, "Saved note: water the plants")
	assert.Contains(t, out, "Reminder set: stretch at")
	assert.Less(t, strings.Index(out, "Saved note"), strings.Index(out, "Reminder set"))

	kv, err := storage.NewFile(dir)
	require.NoError(t, err)
	reminders, err := storage.NewReminderStore(kv).Reminders(context.Background())
	require.NoError(t, err)
	require.Len(t, reminders, 1)
	assert.Equal(t, "stretch", reminders[0].Text)
}

func TestListenCommand_UnknownSource(t *testing.T) {
	withFileStorage(t)

	_, err := execute(t, "", "listen", "--source", "carrier-pigeon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown source")
}

func TestAskCommand_RequiresPrompt(t *testing.T) {
	withFileStorage(t)

	_, err := execute(t, "", "ask")
	assert.Error(t, err)
}
