package source

import (
	"bufio"
	"context"
	"io"
	"strings"
	"sync"

	"jarvis/internal/domain"
)

// ConsoleSource reads one text command per line. Once stopped, the
// scanner goroutine exits after its current read instead of waiting on a
// reader that nobody drains.
type ConsoleSource struct {
	r        io.Reader
	lines    chan string
	done     chan struct{}
	once     sync.Once
	stopOnce sync.Once
}

func NewConsoleSource(r io.Reader) *ConsoleSource {
	return &ConsoleSource{
		r:     r,
		lines: make(chan string),
		done:  make(chan struct{}),
	}
}

func (c *ConsoleSource) Name() string {
	return "console"
}

func (c *ConsoleSource) Start(ctx context.Context) error {
	c.once.Do(func() {
		go func() {
			select {
			case <-ctx.Done():
				c.Stop()
			case <-c.done:
			}
		}()

		go func() {
			defer close(c.lines)
			scanner := bufio.NewScanner(c.r)
			for scanner.Scan() {
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				select {
				case c.lines <- line:
				case <-c.done:
					return
				}
			}
		}()
	})
	return nil
}

func (c *ConsoleSource) Stop() error {
	c.stopOnce.Do(func() { close(c.done) })
	return nil
}

// NextInput returns io.EOF once the reader is exhausted or the source is
// stopped.
func (c *ConsoleSource) NextInput(ctx context.Context) (domain.Input, error) {
	select {
	case <-c.done:
		return domain.Input{}, io.EOF
	default:
	}

	select {
	case <-ctx.Done():
		return domain.Input{}, ctx.Err()
	case <-c.done:
		return domain.Input{}, io.EOF
	case line, ok := <-c.lines:
		if !ok {
			return domain.Input{}, io.EOF
		}
		return domain.TextInput(line), nil
	}
}
