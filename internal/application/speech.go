package application

import (
	"context"
	"errors"
)

// ErrNoSpeechBackend is returned for audio inputs when no transcriber is set up.
var ErrNoSpeechBackend = errors.New("speech-to-text not configured: set llm.openai.api_key or OPENAI_API_KEY to transcribe audio")

type SpeechToText interface {
	Transcribe(ctx context.Context, audio []byte) (string, error)
}

type NoopSTT struct{}

func (n *NoopSTT) Transcribe(_ context.Context, _ []byte) (string, error) {
	return "", ErrNoSpeechBackend
}
