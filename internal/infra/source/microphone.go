//go:build portaudio

package source

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gordonklaus/portaudio"

	"jarvis/internal/domain"
)

const framesPerBuffer = 1024

// MicrophoneSource records from the default input device until a second of
// silence follows speech, and yields the recording as WAV.
type MicrophoneSource struct {
	stream     *portaudio.Stream
	buffer     []int16
	sampleRate int
	logger     *slog.Logger
}

func NewMicrophoneSource(sampleRate int, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{
		sampleRate: sampleRate,
		logger:     logger,
		buffer:     make([]int16, framesPerBuffer),
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, m.buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening stream: %w", err)
	}
	m.stream = stream

	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("starting stream: %w", err)
	}

	m.logger.Info("microphone started", "sampleRate", m.sampleRate)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
	}
	portaudio.Terminate()
	return nil
}

func (m *MicrophoneSource) NextInput(ctx context.Context) (domain.Input, error) {
	m.logger.Info("listening")

	samples := make([]int16, 0, m.sampleRate*5)
	heard := false
	silence := 0

	for {
		select {
		case <-ctx.Done():
			return domain.Input{}, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil {
			return domain.Input{}, fmt.Errorf("reading from stream: %w", err)
		}

		if isSilent(m.buffer, 500) {
			if !heard {
				continue
			}
			silence += len(m.buffer)
		} else {
			heard = true
			silence = 0
		}

		samples = append(samples, m.buffer...)

		if silence > m.sampleRate || len(samples) > m.sampleRate*10 {
			break
		}
	}

	return domain.AudioInput(samplesToWav(samples, m.sampleRate)), nil
}
