package domain

import "time"

type Intent string

const (
	IntentNone     Intent = "none"
	IntentTime     Intent = "time"
	IntentDate     Intent = "date"
	IntentJoke     Intent = "joke"
	IntentSearch   Intent = "search"
	IntentNote     Intent = "note"
	IntentReminder Intent = "reminder"
	IntentLLM      Intent = "llm"
	IntentUnknown  Intent = "unknown"
)

// Outcome is the result of interpreting one raw input.
type Outcome struct {
	Intent Intent
	Reply  string
	Effect Effect
}

// Recognized reports whether a local rule matched the input.
func (o Outcome) Recognized() bool {
	return o.Intent != IntentUnknown && o.Intent != IntentNone
}

// Effect is a side effect requested by the interpreter.
type Effect interface {
	effect()
}

type SaveNote struct {
	Text string
}

type ScheduleReminder struct {
	Reminder Reminder
}

// OpenSearch asks the front end to open a web search in a new context.
type OpenSearch struct {
	Query string
	URL   string
}

func (SaveNote) effect()         {}
func (ScheduleReminder) effect() {}
func (OpenSearch) effect()       {}

// Input is one unit pulled from a command source: either text or audio.
type Input struct {
	Text  string
	Audio []byte
	At    time.Time
}

func TextInput(text string) Input {
	return Input{Text: text, At: time.Now()}
}

func AudioInput(audio []byte) Input {
	return Input{Audio: audio, At: time.Now()}
}

func (in Input) IsAudio() bool {
	return len(in.Audio) > 0
}
