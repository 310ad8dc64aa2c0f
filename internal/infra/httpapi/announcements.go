package httpapi

import (
	"context"
	"sync"
	"time"
)

const defaultAnnouncementBacklog = 100

// Announcement is an out-of-band message, such as a fired reminder, waiting
// for browser clients to pick it up.
type Announcement struct {
	ID   int64     `json:"id"`
	Text string    `json:"text"`
	At   time.Time `json:"at"`
}

// Announcements keeps the most recent messages in memory. Each client polls
// with the last ID it has seen, so every open page gets every message.
type Announcements struct {
	mu      sync.Mutex
	items   []Announcement
	lastID  int64
	backlog int
	now     func() time.Time
}

func NewAnnouncements(backlog int) *Announcements {
	if backlog <= 0 {
		backlog = defaultAnnouncementBacklog
	}
	return &Announcements{backlog: backlog, now: time.Now}
}

// Notify implements application.Notifier.
func (a *Announcements) Notify(_ context.Context, message string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.lastID++
	a.items = append(a.items, Announcement{ID: a.lastID, Text: message, At: a.now()})
	if len(a.items) > a.backlog {
		a.items = append([]Announcement(nil), a.items[len(a.items)-a.backlog:]...)
	}
	return nil
}

// Since returns the messages newer than id, oldest first, and the newest ID.
func (a *Announcements) Since(id int64) ([]Announcement, int64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := []Announcement{}
	for _, item := range a.items {
		if item.ID > id {
			out = append(out, item)
		}
	}
	return out, a.lastID
}

func (a *Announcements) LastID() int64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.lastID
}
