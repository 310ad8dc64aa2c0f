package application

import (
	"context"

	"jarvis/internal/domain"
)

// CommandSource yields user inputs one at a time.
type CommandSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextInput(ctx context.Context) (domain.Input, error)
	Name() string
}
