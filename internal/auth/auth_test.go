package auth

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func TestExtractAPIKey(t *testing.T) {
	tests := []struct {
		name    string
		header  string
		want    string
		wantErr error
	}{
		{"bearer scheme", "Bearer cg_abc12345", "cg_abc12345", nil},
		{"lowercase scheme", "bearer cg_abc12345", "cg_abc12345", nil},
		{"bare token", "cg_abc12345", "cg_abc12345", nil},
		{"missing header", "", "", ErrMissingAPIKey},
		{"scheme only", "Bearer ", "", ErrMissingAPIKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := http.NewRequest(http.MethodPost, "/v1/dispatch", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			got, err := ExtractAPIKey(r)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("key = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestStaticAuthenticator(t *testing.T) {
	a := NewStaticAuthenticator("block", true)

	client, err := a.Authenticate(context.Background(), "cg_test_key_1")
	if err != nil {
		t.Fatalf("Authenticate: %v", err)
	}
	if client.SafetyMode != "block" || !client.StrictSafety {
		t.Errorf("client config = %+v, want block/strict", client)
	}

	if _, err := a.Authenticate(context.Background(), "sk_wrong_prefix"); !errors.Is(err, ErrInvalidAPIKey) {
		t.Errorf("wrong prefix err = %v, want ErrInvalidAPIKey", err)
	}
}

func TestAuthCache(t *testing.T) {
	t.Run("miss", func(t *testing.T) {
		c := NewAuthCache(time.Minute)
		if got := c.Get("cg_missing"); got.Hit {
			t.Errorf("Get on empty cache = %+v, want miss", got)
		}
	})

	t.Run("fresh hit", func(t *testing.T) {
		c := NewAuthCache(time.Minute)
		c.Set("cg_key", &Client{ClientID: "c1"})
		got := c.Get("cg_key")
		if !got.Hit || got.NeedsRefresh {
			t.Errorf("Get = %+v, want fresh hit", got)
		}
		if got.Client.ClientID != "c1" {
			t.Errorf("ClientID = %q, want c1", got.Client.ClientID)
		}
	})

	t.Run("stale hit flags refresh once", func(t *testing.T) {
		c := NewAuthCache(-time.Second) // everything expires immediately
		c.Set("cg_key", &Client{ClientID: "c1"})

		first := c.Get("cg_key")
		if !first.Hit || !first.NeedsRefresh {
			t.Errorf("first Get = %+v, want stale hit needing refresh", first)
		}

		second := c.Get("cg_key")
		if !second.Hit || second.NeedsRefresh {
			t.Errorf("second Get = %+v, want stale hit without refresh", second)
		}
	})

	t.Run("delete", func(t *testing.T) {
		c := NewAuthCache(time.Minute)
		c.Set("cg_key", &Client{ClientID: "c1"})
		c.Delete("cg_key")
		if got := c.Get("cg_key"); got.Hit {
			t.Errorf("Get after Delete = %+v, want miss", got)
		}
	})
}

// fakeStore returns canned rows and counts lookups.
type fakeStore struct {
	row     *clientRow
	err     error
	lookups atomic.Int64
}

func (s *fakeStore) LookupByPrefix(_ context.Context, _ string) (*clientRow, error) {
	s.lookups.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return s.row, nil
}

func hashKey(t *testing.T, key string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(key), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(h)
}

func TestPostgresAuthenticator(t *testing.T) {
	const apiKey = "cg_abc12345_fulltestkey"

	t.Run("valid key", func(t *testing.T) {
		store := &fakeStore{row: &clientRow{
			ClientID:     "acme",
			APIKeyHash:   hashKey(t, apiKey),
			SafetyMode:   "advisory",
			StrictSafety: false,
		}}
		a := newPostgresAuthenticatorWithStore(store, NewAuthCache(time.Minute), zap.NewNop())

		client, err := a.Authenticate(context.Background(), apiKey)
		if err != nil {
			t.Fatalf("Authenticate: %v", err)
		}
		if client.ClientID != "acme" || client.SafetyMode != "advisory" {
			t.Errorf("client = %+v", client)
		}

		// Second call served from cache, no store lookup.
		if _, err := a.Authenticate(context.Background(), apiKey); err != nil {
			t.Fatalf("cached Authenticate: %v", err)
		}
		if n := store.lookups.Load(); n != 1 {
			t.Errorf("store lookups = %d, want 1", n)
		}
	})

	t.Run("wrong key rejected by bcrypt", func(t *testing.T) {
		store := &fakeStore{row: &clientRow{
			ClientID:   "acme",
			APIKeyHash: hashKey(t, "cg_some_other_key_entirely"),
		}}
		a := newPostgresAuthenticatorWithStore(store, NewAuthCache(time.Minute), zap.NewNop())

		if _, err := a.Authenticate(context.Background(), apiKey); !errors.Is(err, ErrInvalidAPIKey) {
			t.Errorf("err = %v, want ErrInvalidAPIKey", err)
		}
	})

	t.Run("short key rejected without lookup", func(t *testing.T) {
		store := &fakeStore{}
		a := newPostgresAuthenticatorWithStore(store, NewAuthCache(time.Minute), zap.NewNop())

		if _, err := a.Authenticate(context.Background(), "cg_x"); !errors.Is(err, ErrInvalidAPIKey) {
			t.Errorf("err = %v, want ErrInvalidAPIKey", err)
		}
		if n := store.lookups.Load(); n != 0 {
			t.Errorf("store lookups = %d, want 0", n)
		}
	})

	t.Run("unknown prefix", func(t *testing.T) {
		store := &fakeStore{err: ErrInvalidAPIKey}
		a := newPostgresAuthenticatorWithStore(store, NewAuthCache(time.Minute), zap.NewNop())

		if _, err := a.Authenticate(context.Background(), apiKey); !errors.Is(err, ErrInvalidAPIKey) {
			t.Errorf("err = %v, want ErrInvalidAPIKey", err)
		}
	})

	t.Run("backend outage surfaces as unavailable", func(t *testing.T) {
		store := &fakeStore{err: errors.New("connection refused")}
		a := newPostgresAuthenticatorWithStore(store, NewAuthCache(time.Minute), zap.NewNop())

		if _, err := a.Authenticate(context.Background(), apiKey); !errors.Is(err, ErrAuthUnavailable) {
			t.Errorf("err = %v, want ErrAuthUnavailable", err)
		}
	})

	t.Run("nil logger defaults to no-op", func(t *testing.T) {
		a := NewPostgresAuthenticator(PostgresAuthConfig{})
		if a.logger == nil {
			t.Fatal("logger not defaulted")
		}

		// The error paths log; they must not panic without a configured logger.
		a.store = &fakeStore{err: errors.New("connection refused")}
		if _, err := a.Authenticate(context.Background(), apiKey); !errors.Is(err, ErrAuthUnavailable) {
			t.Errorf("err = %v, want ErrAuthUnavailable", err)
		}
	})
}
