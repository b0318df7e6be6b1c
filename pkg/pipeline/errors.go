package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

type ErrorKind int

const (
	// Unauthorized means the server rejected the credential. The session is
	// already cleared by the time the caller sees this; never retried.
	Unauthorized ErrorKind = iota + 1
	// Validation is any other 4xx carrying a server supplied message.
	Validation
	// Network is a transport failure with no response at all.
	Network
	// Server is a 5xx.
	Server
)

func (k ErrorKind) String() string {
	switch k {
	case Unauthorized:
		return "unauthorized"
	case Validation:
		return "validation"
	case Network:
		return "network"
	case Server:
		return "server"
	default:
		return "unknown"
	}
}

// Error is the typed failure the pipeline raises after classifying a
// response. Message is the same text surfaced to the notifier, so callers can
// react programmatically without re-displaying it.
type Error struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Kind, e.Status, e.Message)
	}

	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func kindOf(err error) ErrorKind {
	var typed *Error
	if errors.As(err, &typed) {
		return typed.Kind
	}

	return 0
}

func IsUnauthorized(err error) bool {
	return kindOf(err) == Unauthorized
}

func IsValidation(err error) bool {
	return kindOf(err) == Validation
}

func IsNetwork(err error) bool {
	return kindOf(err) == Network
}

func IsServer(err error) bool {
	return kindOf(err) == Server
}
