// Package auth builds authenticated HTTP clients for the Analytics API from
// either a service-account private key or an installed-application
// client-secrets file with a persisted token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// ReadOnlyScope is the OAuth2 scope for read-only Analytics API access.
const ReadOnlyScope = "https://www.googleapis.com/auth/analytics.readonly"

// Credential configuration errors.
var (
	// ErrNoPrivateKey is returned when the service-account key is missing.
	ErrNoPrivateKey = errors.New("service account private key is required")

	// ErrNoTokenStore is returned when the client-secrets flow is used
	// without a token store to read and persist tokens.
	ErrNoTokenStore = errors.New("token store is required")
)

// FromServiceAccount builds an authenticated HTTP client from a
// service-account key file (JSON). Service accounts mint their own tokens,
// so no token store is involved.
func FromServiceAccount(ctx context.Context, keyJSON []byte) (*http.Client, error) {
	if len(keyJSON) == 0 {
		return nil, ErrNoPrivateKey
	}

	cfg, err := google.JWTConfigFromJSON(keyJSON, ReadOnlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}

	return cfg.Client(ctx), nil
}

// NewConfig parses an installed-application client-secrets file (JSON) into
// an OAuth2 config with the read-only Analytics scope. The config is used
// both for the one-time authorization flow (AuthCodeURL/Exchange) and for
// refreshing stored tokens.
func NewConfig(secretsJSON []byte) (*oauth2.Config, error) {
	cfg, err := google.ConfigFromJSON(secretsJSON, ReadOnlyScope)
	if err != nil {
		return nil, fmt.Errorf("parse client secrets: %w", err)
	}
	return cfg, nil
}

// ClientFromStore builds an authenticated HTTP client from a previously
// authorized token held in store. Refreshed tokens are written back to the
// store so the refresh survives process restarts.
//
// Returns ErrTokenNotFound (wrapped) when the store holds no token yet; run
// the authorization flow and persist the result with Authorize first.
func ClientFromStore(ctx context.Context, cfg *oauth2.Config, store TokenStore) (*http.Client, error) {
	if store == nil {
		return nil, ErrNoTokenStore
	}

	token, err := store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stored token: %w", err)
	}

	source := oauth2.ReuseTokenSource(token, &persistingTokenSource{
		ctx:      ctx,
		delegate: cfg.TokenSource(ctx, token),
		store:    store,
	})

	return oauth2.NewClient(ctx, source), nil
}

// Authorize exchanges an authorization code for a token and persists it to
// the store. The code comes from the user visiting cfg.AuthCodeURL.
func Authorize(ctx context.Context, cfg *oauth2.Config, store TokenStore, code string) (*oauth2.Token, error) {
	if store == nil {
		return nil, ErrNoTokenStore
	}

	token, err := cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange authorization code: %w", err)
	}

	if err := store.Put(ctx, token); err != nil {
		return nil, fmt.Errorf("persist token: %w", err)
	}

	return token, nil
}

// persistingTokenSource refreshes through the delegate source and writes
// every new token back to the store.
type persistingTokenSource struct {
	ctx      context.Context
	delegate oauth2.TokenSource
	store    TokenStore
}

func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.delegate.Token()
	if err != nil {
		return nil, err
	}

	if err := s.store.Put(s.ctx, token); err != nil {
		return nil, fmt.Errorf("persist refreshed token: %w", err)
	}

	return token, nil
}
