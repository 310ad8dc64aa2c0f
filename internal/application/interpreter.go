package application

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/url"
	"regexp"
	"strings"
	"time"

	"jarvis/internal/domain"
)

const (
	TimeLayout     = "3:04:05 PM"
	DateLayout     = "1/2/2006"
	DateTimeLayout = "1/2/2006, 3:04:05 PM"

	HelpReply         = "I don't understand locally. Try time, joke, search:, note, remind me, or enable LLM."
	EmptyNoteReply    = "Please add text for the note."
	ReminderHelpReply = "Could not parse reminder. Use: remind me in 10 minutes to ..."

	searchURL = "https://www.google.com/search?q="
)

var (
	searchPrefix = regexp.MustCompile(`(?i)^search[: ]+`)
	notePrefix   = regexp.MustCompile(`(?i)^(note|remember)[: ]*`)
)

// rule pairs a predicate over the lower-cased input with its handler.
// Rules are evaluated in order; later rules only see inputs that no
// earlier rule accepted.
type rule struct {
	name    domain.Intent
	matches func(low string) bool
	handle  func(in *Interpreter, txt string, now time.Time) domain.Outcome
}

var rules = []rule{
	{
		name:    domain.IntentTime,
		matches: func(low string) bool { return strings.Contains(low, "time") },
		handle: func(_ *Interpreter, _ string, now time.Time) domain.Outcome {
			return reply(domain.IntentTime, fmt.Sprintf("It's %s.", now.Format(TimeLayout)))
		},
	},
	{
		name:    domain.IntentDate,
		matches: func(low string) bool { return strings.Contains(low, "date") },
		handle: func(_ *Interpreter, _ string, now time.Time) domain.Outcome {
			return reply(domain.IntentDate, fmt.Sprintf("Today is %s.", now.Format(DateLayout)))
		},
	},
	{
		name:    domain.IntentJoke,
		matches: func(low string) bool { return strings.Contains(low, "joke") },
		handle: func(in *Interpreter, _ string, _ time.Time) domain.Outcome {
			return reply(domain.IntentJoke, in.jokes[in.pick(len(in.jokes))])
		},
	},
	{
		name: domain.IntentSearch,
		matches: func(low string) bool {
			return strings.HasPrefix(low, "search:") || strings.HasPrefix(low, "search ")
		},
		handle: func(_ *Interpreter, txt string, _ time.Time) domain.Outcome {
			q := strings.TrimSpace(searchPrefix.ReplaceAllString(txt, ""))
			return domain.Outcome{
				Intent: domain.IntentSearch,
				Reply:  "Searching for " + q,
				Effect: domain.OpenSearch{Query: q, URL: searchURL + url.QueryEscape(q)},
			}
		},
	},
	{
		name: domain.IntentNote,
		matches: func(low string) bool {
			return strings.HasPrefix(low, "note") || strings.HasPrefix(low, "remember")
		},
		handle: func(_ *Interpreter, txt string, _ time.Time) domain.Outcome {
			note := strings.TrimSpace(notePrefix.ReplaceAllString(txt, ""))
			if note == "" {
				return reply(domain.IntentNote, EmptyNoteReply)
			}
			return domain.Outcome{
				Intent: domain.IntentNote,
				Reply:  "Saved note: " + note,
				Effect: domain.SaveNote{Text: note},
			}
		},
	},
	{
		name: domain.IntentReminder,
		matches: func(low string) bool {
			return strings.HasPrefix(low, "remind me") || strings.HasPrefix(low, "set reminder")
		},
		handle: func(_ *Interpreter, txt string, now time.Time) domain.Outcome {
			r, ok := ParseReminder(txt, now)
			if !ok {
				return reply(domain.IntentReminder, ReminderHelpReply)
			}
			return domain.Outcome{
				Intent: domain.IntentReminder,
				Reply:  fmt.Sprintf("Reminder set: %s at %s", r.Text, r.DueAt.Format(DateTimeLayout)),
				Effect: domain.ScheduleReminder{Reminder: r},
			}
		},
	},
}

func reply(intent domain.Intent, text string) domain.Outcome {
	return domain.Outcome{Intent: intent, Reply: text}
}

type Interpreter struct {
	notes     NoteStore
	reminders ReminderStore
	now       func() time.Time
	pick      func(n int) int
	jokes     []string
}

type InterpreterOption func(*Interpreter)

// WithClock overrides the time source. The returned time's location is used
// for formatting and for resolving "at HH:MM" reminders.
func WithClock(now func() time.Time) InterpreterOption {
	return func(in *Interpreter) { in.now = now }
}

// WithPicker overrides the random choice used for jokes.
func WithPicker(pick func(n int) int) InterpreterOption {
	return func(in *Interpreter) { in.pick = pick }
}

func WithJokes(jokes []string) InterpreterOption {
	return func(in *Interpreter) {
		if len(jokes) > 0 {
			in.jokes = jokes
		}
	}
}

func NewInterpreter(notes NoteStore, reminders ReminderStore, opts ...InterpreterOption) *Interpreter {
	in := &Interpreter{
		notes:     notes,
		reminders: reminders,
		now:       time.Now,
		pick:      rand.IntN,
		jokes:     DefaultJokes,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// Interpret classifies raw without touching any store.
func (in *Interpreter) Interpret(raw string) domain.Outcome {
	txt := strings.TrimSpace(raw)
	low := strings.ToLower(txt)
	if low == "" {
		return domain.Outcome{Intent: domain.IntentNone}
	}

	now := in.now()
	for _, r := range rules {
		if r.matches(low) {
			return r.handle(in, txt, now)
		}
	}

	return reply(domain.IntentUnknown, HelpReply)
}

// Handle interprets raw and applies the resulting note or reminder effect.
// Search effects are left for the caller to open.
func (in *Interpreter) Handle(ctx context.Context, raw string) (domain.Outcome, error) {
	out := in.Interpret(raw)

	switch eff := out.Effect.(type) {
	case domain.SaveNote:
		note := domain.Note{Text: eff.Text, CreatedAt: in.now()}
		if err := in.notes.AppendNote(ctx, note); err != nil {
			return out, fmt.Errorf("saving note: %w", err)
		}
	case domain.ScheduleReminder:
		if err := in.reminders.AppendReminder(ctx, eff.Reminder); err != nil {
			return out, fmt.Errorf("saving reminder: %w", err)
		}
	}

	return out, nil
}
