package source_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/application"
	"jarvis/internal/infra/source"
	"jarvis/internal/infra/storage"
)

type recordingSTT struct {
	mu    sync.Mutex
	calls int
	text  string
}

func (r *recordingSTT) Transcribe(_ context.Context, _ []byte) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return r.text, nil
}

func (r *recordingSTT) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type recordingPresenter struct {
	mu      sync.Mutex
	replies []string
}

func (r *recordingPresenter) Present(_ context.Context, msg application.Message) error {
	if msg.Role != application.RoleAssistant {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.replies = append(r.replies, msg.Text)
	return nil
}

func (r *recordingPresenter) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.replies...)
}

func TestIntegration_DropFolderToStorage(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "01.txt"), []byte("note: buy milk\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "02.wav"), []byte("RIFF fake"), 0644))

	kv := storage.NewMemory()
	notes := storage.NewNoteStore(kv)
	reminders := storage.NewReminderStore(kv)

	stt := &recordingSTT{text: "remind me in 5 minutes to stretch"}
	presenter := &recordingPresenter{}

	assistant := application.NewAssistant(
		source.NewFileSource(dir, logger),
		stt,
		application.NewInterpreter(notes, reminders),
		nil,
		presenter,
		application.LLMOff,
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- assistant.Run(ctx) }()

	require.Eventually(t, func() bool { return len(presenter.snapshot()) == 2 }, 3*time.Second, 10*time.Millisecond)

	// A command dropped while running is picked up by the watcher.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "03.txt"), []byte("what is the date"), 0644))
	require.Eventually(t, func() bool { return len(presenter.snapshot()) == 3 }, 3*time.Second, 10*time.Millisecond)

	cancel()
	<-done

	replies := presenter.snapshot()
	assert.Equal(t, "Saved note: buy milk", replies[0])
	assert.Contains(t, replies[1], "Reminder set: stretch at")
	assert.Contains(t, replies[2], "Today is")
	assert.Equal(t, 1, stt.count(), "text files must not be transcribed")

	saved, err := notes.Notes(context.Background())
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, "buy milk", saved[0].Text)

	pending, err := reminders.Reminders(context.Background())
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "stretch", pending[0].Text)

	_, err = os.Stat(filepath.Join(dir, "01.txt.processed"))
	assert.NoError(t, err)
}
