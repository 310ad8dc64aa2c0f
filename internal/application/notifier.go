package application

import (
	"context"
	"errors"

	"jarvis/internal/domain"
)

// Notifier announces fired reminders and other out-of-band messages.
type Notifier interface {
	Notify(ctx context.Context, message string) error
}

type NoopNotifier struct{}

func (n *NoopNotifier) Notify(_ context.Context, _ string) error {
	return nil
}

// MultiNotifier fans a message out to every notifier and joins their errors.
type MultiNotifier []Notifier

func (m MultiNotifier) Notify(ctx context.Context, message string) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, message); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Message is what a presenter shows and speaks.
type Message struct {
	Role     MessageRole
	Text     string
	Markdown bool
	Effect   domain.Effect
}

type Presenter interface {
	Present(ctx context.Context, msg Message) error
}

type NoopPresenter struct{}

func (NoopPresenter) Present(_ context.Context, _ Message) error {
	return nil
}
