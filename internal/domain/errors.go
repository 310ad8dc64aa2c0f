package domain

import (
	"errors"
	"fmt"
)

var (
	ErrCorrupt       = errors.New("stored data is corrupt")
	ErrQuotaExceeded = errors.New("storage quota exceeded")
)

type RelayErrorKind string

const (
	RelayMisconfigured RelayErrorKind = "misconfigured"
	RelayNetwork       RelayErrorKind = "network"
	RelayUpstream      RelayErrorKind = "upstream"
	RelayMalformed     RelayErrorKind = "malformed"
)

// RelayError is returned by prompt relays. StatusCode is set for upstream failures.
type RelayError struct {
	Kind       RelayErrorKind
	StatusCode int
	Message    string
	Err        error
}

func (e *RelayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("relay %s error %d: %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("relay %s error: %s", e.Kind, e.Message)
}

func (e *RelayError) Unwrap() error {
	return e.Err
}

func NewRelayError(kind RelayErrorKind, message string, err error) *RelayError {
	return &RelayError{Kind: kind, Message: message, Err: err}
}
