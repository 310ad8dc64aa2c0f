package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync/atomic"

	"jarvis/internal/domain"
)

type LLMMode string

const (
	// LLMOff answers locally only.
	LLMOff LLMMode = "off"
	// LLMAlways sends every input to the relay.
	LLMAlways LLMMode = "always"
	// LLMFallback sends only unrecognized inputs to the relay.
	LLMFallback LLMMode = "fallback"
)

func ParseLLMMode(s string) (LLMMode, error) {
	switch m := LLMMode(strings.ToLower(strings.TrimSpace(s))); m {
	case LLMOff, LLMAlways, LLMFallback:
		return m, nil
	case "":
		return LLMOff, nil
	default:
		return "", fmt.Errorf("unknown llm mode %q", s)
	}
}

const (
	StatusIdle     = "idle"
	StatusThinking = "talking to LLM"
)

// Response is the assistant's answer to one input.
type Response struct {
	Transcript string
	Outcome    domain.Outcome
	Reply      string
	FromLLM    bool
}

type Assistant struct {
	source      CommandSource
	stt         SpeechToText
	interpreter *Interpreter
	relay       Relay
	presenter   Presenter
	mode        LLMMode
	logger      *slog.Logger

	// inflight counts relay calls in progress across all callers.
	inflight atomic.Int32
}

func NewAssistant(
	source CommandSource,
	stt SpeechToText,
	interpreter *Interpreter,
	relay Relay,
	presenter Presenter,
	mode LLMMode,
	logger *slog.Logger,
) *Assistant {
	return &Assistant{
		source:      source,
		stt:         stt,
		interpreter: interpreter,
		relay:       relay,
		presenter:   presenter,
		mode:        mode,
		logger:      logger,
	}
}

// Status reports StatusThinking while any relay call is in flight.
func (a *Assistant) Status() string {
	if a.inflight.Load() > 0 {
		return StatusThinking
	}
	return StatusIdle
}

func (a *Assistant) Mode() LLMMode {
	return a.mode
}

// Run pulls inputs from the source until ctx is cancelled or the source is
// exhausted. Each input is answered before the next one is read, so replies
// come out in the order the inputs went in.
func (a *Assistant) Run(ctx context.Context) error {
	a.logger.Info("starting command source", "source", a.source.Name())
	if err := a.source.Start(ctx); err != nil {
		return fmt.Errorf("starting source: %w", err)
	}
	defer a.source.Stop()

	a.logger.Info("assistant ready, listening for commands", "llm_mode", a.mode)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			if err := a.processOneInput(ctx); err != nil {
				if errors.Is(err, io.EOF) {
					a.logger.Info("command source exhausted")
					return nil
				}
				if ctx.Err() != nil {
					return ctx.Err()
				}
				a.logger.Error("processing input", "error", err)
			}
		}
	}
}

func (a *Assistant) processOneInput(ctx context.Context) error {
	in, err := a.source.NextInput(ctx)
	if err != nil {
		return fmt.Errorf("getting input: %w", err)
	}

	text := in.Text
	if in.IsAudio() {
		a.logger.Info("received audio", "bytes", len(in.Audio))
		text, err = a.stt.Transcribe(ctx, in.Audio)
		if err != nil {
			return fmt.Errorf("transcribing: %w", err)
		}
		a.logger.Info("transcribed", "text", text)
	}

	if strings.TrimSpace(text) == "" {
		return nil
	}

	if err := a.presenter.Present(ctx, Message{Role: RoleUser, Text: text}); err != nil {
		a.logger.Error("presenting input", "error", err)
	}

	resp, err := a.Respond(ctx, text)
	if err != nil {
		a.logger.Error("handling command", "error", err, "text", text)
	}

	if resp.Reply == "" {
		return nil
	}

	msg := Message{
		Role:     RoleAssistant,
		Text:     resp.Reply,
		Markdown: resp.FromLLM,
		Effect:   resp.Outcome.Effect,
	}
	if err := a.presenter.Present(ctx, msg); err != nil {
		return fmt.Errorf("presenting reply: %w", err)
	}

	return nil
}

// Transcribe converts audio to text with the configured speech backend.
func (a *Assistant) Transcribe(ctx context.Context, audio []byte) (string, error) {
	return a.stt.Transcribe(ctx, audio)
}

// Respond answers one text input according to the LLM mode. The returned
// Response always carries a user-visible reply unless the input was blank;
// a non-nil error means a local side effect could not be stored.
func (a *Assistant) Respond(ctx context.Context, text string) (Response, error) {
	if strings.TrimSpace(text) == "" {
		return Response{Outcome: domain.Outcome{Intent: domain.IntentNone}}, nil
	}

	if a.mode == LLMAlways {
		return a.ask(ctx, text), nil
	}

	out, err := a.interpreter.Handle(ctx, text)
	if err != nil {
		return Response{
			Outcome: out,
			Reply:   "Sorry, that could not be saved: " + err.Error(),
		}, err
	}

	a.logger.Debug("interpreted", "intent", out.Intent, "text", text)

	if out.Intent == domain.IntentUnknown && a.mode == LLMFallback && a.relay != nil {
		return a.ask(ctx, text), nil
	}

	return Response{Outcome: out, Reply: out.Reply}, nil
}

// ask sends prompt to the relay and turns any failure into a reply.
func (a *Assistant) ask(ctx context.Context, prompt string) Response {
	a.inflight.Add(1)
	defer a.inflight.Add(-1)

	resp := Response{
		Outcome: domain.Outcome{Intent: domain.IntentLLM},
		FromLLM: true,
	}

	if a.relay == nil {
		resp.Reply = "LLM request failed: no relay configured"
		resp.FromLLM = false
		return resp
	}

	reply, err := a.relay.SendPrompt(ctx, prompt)
	if err != nil {
		a.logger.Error("relay request failed", "relay", a.relay.Name(), "error", err)
		resp.Reply = "LLM request failed: " + err.Error()
		resp.FromLLM = false
		return resp
	}

	if strings.TrimSpace(reply) == "" {
		reply = "LLM returned empty reply"
	}
	resp.Reply = reply
	resp.Outcome.Reply = reply
	return resp
}
