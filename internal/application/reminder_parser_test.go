package application_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jarvis/internal/application"
)

func TestParseReminder_Relative(t *testing.T) {
	now := time.Now()

	r, ok := application.ParseReminder("remind me in 10 minutes to drink water", now)
	require.True(t, ok)

	assert.Equal(t, "drink water", r.Text)
	delta := r.DueAt.Sub(now)
	assert.GreaterOrEqual(t, delta, 599*time.Second)
	assert.LessOrEqual(t, delta, 601*time.Second)
}

func TestParseReminder_RelativeUnits(t *testing.T) {
	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		input string
		want  time.Duration
		text  string
	}{
		{"remind me in 1 minute to breathe", time.Minute, "breathe"},
		{"remind me in 2 hours to leave", 2 * time.Hour, "leave"},
		{"Remind me IN 1 HOUR to call back", time.Hour, "call back"},
		{"set reminder in 45 minutes", 45 * time.Minute, "Reminder"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			r, ok := application.ParseReminder(tt.input, now)
			require.True(t, ok)
			assert.Equal(t, now.Add(tt.want), r.DueAt)
			assert.Equal(t, tt.text, r.Text)
		})
	}
}

func TestParseReminder_AbsoluteRollsToTomorrow(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	r, ok := application.ParseReminder("set reminder at 09:30 to call mom", now)
	require.True(t, ok)

	assert.Equal(t, "call mom", r.Text)
	assert.Equal(t, time.Date(2026, 6, 2, 9, 30, 0, 0, time.UTC), r.DueAt)
}

func TestParseReminder_AbsoluteLaterToday(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	r, ok := application.ParseReminder("remind me at 7:05 to stretch", now.Add(-5*time.Hour))
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 6, 1, 7, 5, 0, 0, time.UTC), r.DueAt)

	r, ok = application.ParseReminder("remind me at 23:59 to sleep", now)
	require.True(t, ok)
	assert.Equal(t, time.Date(2026, 6, 1, 23, 59, 0, 0, time.UTC), r.DueAt)
}

func TestParseReminder_RollForwardKeepsWallClockAcrossDST(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	// Clocks spring forward on 2026-03-08.
	now := time.Date(2026, 3, 7, 10, 0, 0, 0, ny)

	r, ok := application.ParseReminder("remind me at 09:30 to water plants", now)
	require.True(t, ok)

	assert.Equal(t, 8, r.DueAt.Day())
	assert.Equal(t, 9, r.DueAt.Hour())
	assert.Equal(t, 30, r.DueAt.Minute())
	assert.Equal(t, 22*time.Hour+30*time.Minute, r.DueAt.Sub(now))
}

func TestParseReminder_RelativeWinsOverAbsolute(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	r, ok := application.ParseReminder("remind me at 18:00 in 5 minutes to check", now)
	require.True(t, ok)
	assert.Equal(t, now.Add(5*time.Minute), r.DueAt)
}

func TestParseReminder_MessageSplitsOnFirstTo(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	// The first "to " wins even when it comes before the time phrase.
	r, ok := application.ParseReminder("remind me to go to bed in 2 hours", now)
	require.True(t, ok)
	assert.Equal(t, "go to bed in 2 hours", r.Text)
}

func TestParseReminder_Failures(t *testing.T) {
	now := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

	for _, input := range []string{
		"remember to buy milk",
		"remind me tomorrow to call",
		"remind me in a few minutes",
		"remind me at 25:00 to party",
		"remind me at 10:75 to party",
		"remind me in 3 days to rest",
	} {
		t.Run(input, func(t *testing.T) {
			_, ok := application.ParseReminder(input, now)
			assert.False(t, ok)
		})
	}
}
