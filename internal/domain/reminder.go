package domain

import "time"

type Reminder struct {
	Text  string
	DueAt time.Time
}

// Due reports whether the reminder should fire at now.
func (r Reminder) Due(now time.Time) bool {
	return !r.DueAt.After(now)
}
