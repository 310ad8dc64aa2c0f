// Package terminal prints the conversation to a terminal.
package terminal

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"jarvis/internal/application"
	"jarvis/internal/domain"
)

var (
	userStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	assistantStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	noticeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	linkStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Underline(true)
)

// Presenter writes user and assistant lines to out. LLM replies are rendered
// as Markdown when a renderer is configured.
type Presenter struct {
	mu       sync.Mutex
	out      io.Writer
	renderer *glamour.TermRenderer
}

type Option func(*Presenter) error

// WithMarkdown renders Markdown replies with glamour at the given wrap width.
// style is a glamour standard style name; empty means auto-detect.
func WithMarkdown(style string, width int) Option {
	return func(p *Presenter) error {
		opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
		if style == "" {
			opts = append(opts, glamour.WithAutoStyle())
		} else {
			opts = append(opts, glamour.WithStandardStyle(style))
		}
		r, err := glamour.NewTermRenderer(opts...)
		if err != nil {
			return fmt.Errorf("creating markdown renderer: %w", err)
		}
		p.renderer = r
		return nil
	}
}

func NewPresenter(out io.Writer, opts ...Option) (*Presenter, error) {
	p := &Presenter{out: out}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (p *Presenter) Present(_ context.Context, msg application.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch msg.Role {
	case application.RoleUser:
		_, err := fmt.Fprintf(p.out, "%s %s\n", userStyle.Render("You:"), msg.Text)
		return err
	default:
		if err := p.writeReply(msg); err != nil {
			return err
		}
	}

	if search, ok := msg.Effect.(domain.OpenSearch); ok {
		if _, err := fmt.Fprintf(p.out, "  %s\n", linkStyle.Render(search.URL)); err != nil {
			return err
		}
	}
	return nil
}

func (p *Presenter) writeReply(msg application.Message) error {
	text := msg.Text
	if msg.Markdown && p.renderer != nil {
		rendered, err := p.renderer.Render(text)
		if err == nil {
			_, err = fmt.Fprintf(p.out, "%s\n%s\n", assistantStyle.Render("Jarvis:"), strings.TrimRight(rendered, "\n"))
			return err
		}
	}
	_, err := fmt.Fprintf(p.out, "%s %s\n", assistantStyle.Render("Jarvis:"), text)
	return err
}

// Notify prints an out-of-band announcement such as a fired reminder.
func (p *Presenter) Notify(_ context.Context, message string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := fmt.Fprintf(p.out, "%s %s\n", noticeStyle.Render("!"), message)
	return err
}
