package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ClientStore abstracts DB queries for testability.
type ClientStore interface {
	LookupByPrefix(ctx context.Context, prefix string) (*clientRow, error)
}

type clientRow struct {
	ClientID     string
	APIKeyHash   string
	SafetyMode   string
	StrictSafety bool
}

// sqlClientStore is the real implementation using *sql.DB.
type sqlClientStore struct {
	db *sql.DB
}

func (s *sqlClientStore) LookupByPrefix(ctx context.Context, prefix string) (*clientRow, error) {
	row := &clientRow{}
	err := s.db.QueryRowContext(ctx,
		`SELECT id, api_key_hash, safety_mode, strict_safety
		 FROM clients
		 WHERE api_key_prefix = $1`,
		prefix,
	).Scan(&row.ClientID, &row.APIKeyHash, &row.SafetyMode, &row.StrictSafety)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrInvalidAPIKey // no client with this prefix — reject, don't fail open
		}
		return nil, fmt.Errorf("sqlClientStore.LookupByPrefix: %w", err)
	}
	return row, nil
}

// keyPrefixLength is the number of leading key characters stored as the
// lookup prefix (e.g. "cg_ab12c").
const keyPrefixLength = 8

// PostgresAuthenticator validates API keys against the clients table.
// Uses AuthCache with stale-while-revalidate to avoid DB + bcrypt on the
// hot path. Auth failures always return an error — no dispatch runs
// without valid auth.
type PostgresAuthenticator struct {
	store  ClientStore
	cache  *AuthCache
	logger *zap.Logger
}

// PostgresAuthConfig configures the PostgresAuthenticator.
type PostgresAuthConfig struct {
	DB       *sql.DB
	CacheTTL time.Duration // Default: 30s
	Logger   *zap.Logger
}

// NewPostgresAuthenticator creates a new authenticator backed by PostgreSQL.
func NewPostgresAuthenticator(cfg PostgresAuthConfig) *PostgresAuthenticator {
	ttl := cfg.CacheTTL
	if ttl == 0 {
		ttl = 30 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PostgresAuthenticator{
		store:  &sqlClientStore{db: cfg.DB},
		cache:  NewAuthCache(ttl),
		logger: logger,
	}
}

// newPostgresAuthenticatorWithStore creates an authenticator with an
// injected store (for testing).
func newPostgresAuthenticatorWithStore(store ClientStore, cache *AuthCache, logger *zap.Logger) *PostgresAuthenticator {
	return &PostgresAuthenticator{
		store:  store,
		cache:  cache,
		logger: logger,
	}
}

// Authenticate validates the API key against the database.
//
// Flow:
//  1. Cache lookup (stale-while-revalidate):
//     - Fresh hit: return immediately
//     - Stale hit: return stale client, spawn background refresh
//     - Miss: do full DB + bcrypt lookup synchronously
//  2. DB errors surface as ErrAuthUnavailable; invalid keys as
//     ErrInvalidAPIKey.
func (a *PostgresAuthenticator) Authenticate(ctx context.Context, apiKey string) (*Client, error) {
	result := a.cache.Get(apiKey)

	if result.Hit {
		if result.NeedsRefresh {
			go a.backgroundRefresh(apiKey)
		}
		return result.Client, nil
	}

	client, err := a.lookupAndVerify(ctx, apiKey)
	if err != nil {
		return a.handleLookupError(err)
	}

	a.cache.Set(apiKey, client)
	return client, nil
}

// backgroundRefresh performs the DB + bcrypt lookup in a background
// goroutine. Errors are logged but don't affect the caller (they already
// got the stale value).
func (a *PostgresAuthenticator) backgroundRefresh(apiKey string) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := a.lookupAndVerify(ctx, apiKey)
	if err != nil {
		a.logger.Warn("background cache refresh failed", zap.Error(err))
		// Drop the stale entry so the next read retries synchronously.
		a.cache.Delete(apiKey)
		return
	}

	a.cache.Set(apiKey, client)
}

// lookupAndVerify does the full DB prefix lookup + bcrypt verification.
func (a *PostgresAuthenticator) lookupAndVerify(ctx context.Context, apiKey string) (*Client, error) {
	if len(apiKey) < keyPrefixLength {
		return nil, ErrInvalidAPIKey
	}
	prefix := apiKey[:keyPrefixLength]

	row, err := a.store.LookupByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("lookupAndVerify: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(row.APIKeyHash), []byte(apiKey)); err != nil {
		return nil, ErrInvalidAPIKey
	}

	return &Client{
		ClientID:     row.ClientID,
		SafetyMode:   row.SafetyMode,
		StrictSafety: row.StrictSafety,
	}, nil
}

// handleLookupError distinguishes bad keys from backend outages — no
// dispatch runs on auth failure either way.
func (a *PostgresAuthenticator) handleLookupError(lookupErr error) (*Client, error) {
	if errors.Is(lookupErr, ErrInvalidAPIKey) {
		return nil, ErrInvalidAPIKey
	}

	a.logger.Warn("auth DB unreachable", zap.Error(lookupErr))
	return nil, fmt.Errorf("%w: %v", ErrAuthUnavailable, lookupErr)
}
