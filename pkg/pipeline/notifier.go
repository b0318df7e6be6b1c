package pipeline

import (
	log "github.com/sirupsen/logrus"
)

// Notifier is the user-facing notification channel. The pipeline and the
// layers above it fire at most one notification per call; rendering is the
// consumer's problem.
type Notifier interface {
	Success(message string)
	Error(message string)
}

type NopNotifier struct{}

func (NopNotifier) Success(string) {}

func (NopNotifier) Error(string) {}

// LogNotifier renders notifications through logrus.
type LogNotifier struct{}

func (LogNotifier) Success(message string) {
	log.Info(message)
}

func (LogNotifier) Error(message string) {
	log.Error(message)
}
