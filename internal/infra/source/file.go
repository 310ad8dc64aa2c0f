package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"

	"jarvis/internal/domain"
)

var audioExts = map[string]bool{".wav": true, ".mp3": true, ".m4a": true, ".webm": true}

// FileSource turns files dropped into a directory into commands. Text files
// carry a typed command, audio files are handed on for transcription.
// Consumed files are renamed with a ".processed" suffix.
type FileSource struct {
	dir     string
	logger  *slog.Logger
	watcher *fsnotify.Watcher
	pending chan string

	mu        sync.Mutex
	processed map[string]bool
	done      chan struct{}
	stopOnce  sync.Once
}

func NewFileSource(dir string, logger *slog.Logger) *FileSource {
	return &FileSource{
		dir:       dir,
		logger:    logger,
		pending:   make(chan string, 64),
		processed: make(map[string]bool),
		done:      make(chan struct{}),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating command dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	if err := watcher.Add(f.dir); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", f.dir, err)
	}
	f.watcher = watcher

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		watcher.Close()
		return fmt.Errorf("reading dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && supported(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		f.enqueue(filepath.Join(f.dir, name))
	}

	go f.watch()
	return nil
}

func (f *FileSource) watch() {
	for {
		select {
		case <-f.done:
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) {
				if supported(ev.Name) {
					f.enqueue(ev.Name)
				}
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Warn("file watcher error", "error", err)
		}
	}
}

func (f *FileSource) enqueue(path string) {
	select {
	case f.pending <- path:
	default:
		f.logger.Warn("command queue full, dropping file event", "path", path)
	}
}

func (f *FileSource) Stop() error {
	var err error
	f.stopOnce.Do(func() {
		close(f.done)
		if f.watcher != nil {
			err = f.watcher.Close()
		}
	})
	return err
}

func (f *FileSource) NextInput(ctx context.Context) (domain.Input, error) {
	for {
		select {
		case <-ctx.Done():
			return domain.Input{}, ctx.Err()
		case path := <-f.pending:
			in, ok, err := f.consume(path)
			if err != nil {
				return domain.Input{}, err
			}
			if ok {
				return in, nil
			}
		}
	}
}

// consume reads path once. Empty files are left alone since the writer
// may not have finished; the following write event queues them again.
func (f *FileSource) consume(path string) (domain.Input, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.processed[path] {
		return domain.Input{}, false, nil
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return domain.Input{}, false, nil
	}
	if err != nil {
		return domain.Input{}, false, fmt.Errorf("reading file %s: %w", path, err)
	}
	if len(data) == 0 {
		return domain.Input{}, false, nil
	}

	f.processed[path] = true
	if err := os.Rename(path, path+".processed"); err != nil {
		f.logger.Warn("renaming processed file", "path", path, "error", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".txt") {
		return domain.TextInput(strings.TrimSpace(string(data))), true, nil
	}
	return domain.AudioInput(data), true, nil
}

func supported(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return ext == ".txt" || audioExts[ext]
}
