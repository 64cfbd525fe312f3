// Package llm holds the remote text-generation clients.
package llm

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrNotConfigured means no credential is available; callers fall back
	// to rule-based text.
	ErrNotConfigured = errors.New("text generation is not configured")
	ErrAuth          = errors.New("text generation authentication failed")
	ErrRateLimited   = errors.New("text generation rate limited")
	ErrTransport     = errors.New("text generation transport failed")
	ErrEmptyResponse = errors.New("text generation returned no text")
)

// Completer turns a prompt into text.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Unconfigured is the Completer used when no provider credential exists.
type Unconfigured struct{}

func (Unconfigured) Complete(context.Context, string) (string, error) {
	return "", ErrNotConfigured
}

// classify maps a provider error message or status onto the package errors.
func classify(status int, msg string) error {
	lower := strings.ToLower(msg)
	switch {
	case status == 401 || status == 403 || strings.Contains(lower, "api key") || strings.Contains(lower, "unauthenticated") || strings.Contains(lower, "permission"):
		return ErrAuth
	case status == 429 || strings.Contains(lower, "429") || strings.Contains(lower, "rate limit") || strings.Contains(lower, "exhausted"):
		return ErrRateLimited
	default:
		return ErrTransport
	}
}
