package application

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"jarvis/internal/domain"
)

const defaultReminderText = "Reminder"

var (
	relativeReminder = regexp.MustCompile(`(?i)in (\d+) (minute|minutes|hour|hours)`)
	absoluteReminder = regexp.MustCompile(`(?i)at (\d{1,2}):(\d{2})`)
	reminderTo       = regexp.MustCompile(`(?i)to `)
)

// ParseReminder extracts a reminder from text such as "remind me in 10 minutes
// to stretch" or "set reminder at 09:30 to call mom". The relative form is
// tried first and wins when both are present.
func ParseReminder(text string, now time.Time) (domain.Reminder, bool) {
	if m := relativeReminder.FindStringSubmatch(text); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return domain.Reminder{}, false
		}
		unit := time.Minute
		if strings.HasPrefix(strings.ToLower(m[2]), "hour") {
			unit = time.Hour
		}
		return domain.Reminder{
			Text:  reminderMessage(text),
			DueAt: now.Add(time.Duration(n) * unit),
		}, true
	}

	if m := absoluteReminder.FindStringSubmatch(text); m != nil {
		hh, _ := strconv.Atoi(m[1])
		mm, _ := strconv.Atoi(m[2])
		if hh > 23 || mm > 59 {
			return domain.Reminder{}, false
		}
		due := time.Date(now.Year(), now.Month(), now.Day(), hh, mm, 0, 0, now.Location())
		if due.Before(now) {
			due = time.Date(now.Year(), now.Month(), now.Day()+1, hh, mm, 0, 0, now.Location())
		}
		return domain.Reminder{
			Text:  reminderMessage(text),
			DueAt: due,
		}, true
	}

	return domain.Reminder{}, false
}

// reminderMessage returns whatever follows the first "to " in the input,
// wherever it occurs.
func reminderMessage(text string) string {
	loc := reminderTo.FindStringIndex(text)
	if loc == nil {
		return defaultReminderText
	}
	msg := strings.TrimSpace(text[loc[1]:])
	if msg == "" {
		return defaultReminderText
	}
	return msg
}
