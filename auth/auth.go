// Package auth authorises requests to external price feeds.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"golang.org/x/oauth2"
)

// Authorizer decorates a request with credentials.
type Authorizer interface {
	SetAuthHeader(ctx context.Context, r *http.Request) error
}

// New returns the Authorizer described by conf.
func New(conf Conf) Authorizer {
	switch {
	case conf.Token != "":
		return StaticToken(conf.Token)
	case conf.ClientID != "":
		return NewClientCred(conf)
	default:
		return None{}
	}
}

// None leaves requests untouched.
type None struct{}

func (None) SetAuthHeader(context.Context, *http.Request) error { return nil }

// StaticToken sends a fixed bearer token.
type StaticToken string

func (t StaticToken) SetAuthHeader(_ context.Context, r *http.Request) error {
	r.Header.Set("Authorization", "Bearer "+string(t))
	return nil
}

// ClientCred fetches and caches an OAuth2 client-credentials token.
type ClientCred struct {
	cfg Conf

	mu    sync.Mutex
	token *oauth2.Token
}

// NewClientCred prepares a client-credentials authoriser. No request is made
// until the first token is needed.
func NewClientCred(conf Conf) *ClientCred {
	return &ClientCred{cfg: conf}
}

// GetToken returns a valid access token, requesting a new one when the
// cached token expired.
func (c *ClientCred) GetToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != nil && c.token.Valid() {
		return c.token.AccessToken, nil
	}
	if err := c.refresh(ctx); err != nil {
		return "", err
	}
	return c.token.AccessToken, nil
}

// ForceRefresh discards the cached token and requests a new one.
func (c *ClientCred) ForceRefresh(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.refresh(ctx); err != nil {
		return "", err
	}
	return c.token.AccessToken, nil
}

func (c *ClientCred) refresh(ctx context.Context) error {
	oc := c.cfg.toOauth2Config()
	tok, err := oc.Token(ctx)
	if err != nil {
		return fmt.Errorf("failed to get token: %w", err)
	}
	c.token = tok
	return nil
}

// SetAuthHeader adds the bearer token to r.
func (c *ClientCred) SetAuthHeader(ctx context.Context, r *http.Request) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == nil || !c.token.Valid() {
		if err := c.refresh(ctx); err != nil {
			return err
		}
	}
	c.token.SetAuthHeader(r)
	return nil
}
