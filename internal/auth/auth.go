// Package auth validates API keys on the HTTP surface and resolves the
// caller's safety configuration. Keys use the "cg_" prefix scheme; the
// Postgres-backed authenticator verifies bcrypt hashes with a
// stale-while-revalidate cache so the hot path never blocks on DB +
// bcrypt after cold start.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"
)

var (
	ErrMissingAPIKey   = errors.New("missing authorization header")
	ErrInvalidAPIKey   = errors.New("invalid API key")
	ErrAuthUnavailable = errors.New("authentication backend unavailable")
)

// Client holds the authenticated caller's configuration.
type Client struct {
	ClientID string

	// SafetyMode is "advisory" (unsafe input is reported but dispatched)
	// or "block" (unsafe input refuses dispatch).
	SafetyMode string

	// StrictSafety enables the evaluator's strict scoring for this caller.
	StrictSafety bool
}

// Authenticator validates an API key and returns the client context.
type Authenticator interface {
	Authenticate(ctx context.Context, apiKey string) (*Client, error)
}

// ExtractAPIKey pulls the bearer token from an HTTP request.
// RFC 6750: the "Bearer" scheme is case-insensitive.
func ExtractAPIKey(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingAPIKey
	}
	token := header
	if len(token) >= 7 && strings.EqualFold(token[:7], "bearer ") {
		token = token[7:]
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrMissingAPIKey
	}
	return token, nil
}

// StaticAuthenticator validates key format only — no database lookup.
// Used when no Postgres DSN is configured (local development) and as the
// explicit test double selected by configuration.
type StaticAuthenticator struct {
	SafetyMode   string
	StrictSafety bool
}

func NewStaticAuthenticator(safetyMode string, strictSafety bool) *StaticAuthenticator {
	return &StaticAuthenticator{SafetyMode: safetyMode, StrictSafety: strictSafety}
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, apiKey string) (*Client, error) {
	if !strings.HasPrefix(apiKey, "cg_") {
		return nil, ErrInvalidAPIKey
	}
	return &Client{
		ClientID:     "static",
		SafetyMode:   a.SafetyMode,
		StrictSafety: a.StrictSafety,
	}, nil
}
