// Package storage persists the note and reminder sequences as JSON arrays
// under fixed keys of a key/value backend.
package storage

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"jarvis/internal/domain"
)

const (
	NotesKey     = "jarvis_notes"
	RemindersKey = "jarvis_rmd"
)

// UpdateFunc gets the current value of a key (nil when missing) and returns
// its replacement. Nothing is written when changed is false.
type UpdateFunc func(current []byte) (next []byte, changed bool, err error)

// KV is a byte-oriented key/value backend. Get returns nil, nil for a
// missing key. Update is a read-modify-write that is atomic against every
// other Update of the same key, including ones made by other processes
// sharing the backend. fn may be called more than once.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
	Close() error
}

// Open returns the backend named by driver.
func Open(driver, dsn string) (KV, error) {
	switch strings.ToLower(driver) {
	case "", "memory":
		return NewMemory(), nil
	case "file":
		return NewFile(dsn)
	case "sqlite":
		return OpenSQLite(dsn)
	case "redis":
		return OpenRedis(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", driver)
	}
}

type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	m.data[key] = v
	return nil
}

func (m *Memory) Update(_ context.Context, key string, fn UpdateFunc) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	next, changed, err := fn(m.data[key])
	if err != nil || !changed {
		return err
	}
	v := make([]byte, len(next))
	copy(v, next)
	m.data[key] = v
	return nil
}

func (m *Memory) Close() error {
	return nil
}

// Quota rejects writes larger than max bytes, mirroring the per-origin
// limit of browser local storage.
type Quota struct {
	KV
	max int
}

func WithQuota(kv KV, max int) KV {
	if max <= 0 {
		return kv
	}
	return &Quota{KV: kv, max: max}
}

func (q *Quota) Put(ctx context.Context, key string, value []byte) error {
	if len(value) > q.max {
		return fmt.Errorf("writing %s (%d bytes, limit %d): %w", key, len(value), q.max, domain.ErrQuotaExceeded)
	}
	return q.KV.Put(ctx, key, value)
}

func (q *Quota) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return q.KV.Update(ctx, key, func(current []byte) ([]byte, bool, error) {
		next, changed, err := fn(current)
		if err == nil && changed && len(next) > q.max {
			return nil, false, fmt.Errorf("writing %s (%d bytes, limit %d): %w", key, len(next), q.max, domain.ErrQuotaExceeded)
		}
		return next, changed, err
	})
}
