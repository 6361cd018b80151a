// Package auth manages the OAuth credentials the google tools run with.
//
// A credential is kept per scope set in a token file. The Provider loads it, refreshes
// it when expired and falls back to an interactive or service account Acquirer when it
// cannot be refreshed.
package auth

import (
	"context"
	"errors"
	"slices"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/tasks/v1"
)

var (
	CalendarScopes = []string{calendar.CalendarScope}
	TasksScopes    = []string{tasks.TasksScope}
)

var (
	// ErrCredentialExpired is returned when a credential cannot be refreshed and there is
	// no way to acquire a new one
	ErrCredentialExpired = errors.New("credential expired and cannot be refreshed")
	// ErrNoCredential is returned when no credential is cached and there is no acquirer
	ErrNoCredential = errors.New("no credential available")
	// ErrUnknownKey is returned for an unregistered credential key
	ErrUnknownKey = errors.New("unknown credential key")
)

// Credential is an access grant for a scope set
type Credential struct {
	Scopes []string
	Token  *oauth2.Token
}

// Valid reports whether the credential can be used right now
func (c *Credential) Valid() bool {
	return c != nil && c.Token.Valid()
}

// Expiry returns the access token expiry, zero if it never expires
func (c *Credential) Expiry() time.Time {
	if c == nil || c.Token == nil {
		return time.Time{}
	}
	return c.Token.Expiry
}

// Refreshable reports whether the credential carries a refresh handle
func (c *Credential) Refreshable() bool {
	return c != nil && c.Token != nil && c.Token.RefreshToken != ""
}

// Covers reports whether the credential was granted every scope in scopes
func (c *Credential) Covers(scopes []string) bool {
	if c == nil {
		return false
	}
	for _, s := range scopes {
		if !slices.Contains(c.Scopes, s) {
			return false
		}
	}
	return true
}

// Acquirer obtains a brand new token, possibly with user interaction
type Acquirer interface {
	Acquire(ctx context.Context, scopes []string) (*oauth2.Token, error)
}

// Refresher exchanges an expired token's refresh handle for a new token
type Refresher interface {
	Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error)
}

// OAuthRefresher refreshes tokens against the oauth2 config token endpoint
type OAuthRefresher struct {
	config *oauth2.Config
}

func NewOAuthRefresher(cfg *oauth2.Config) *OAuthRefresher {
	return &OAuthRefresher{config: cfg}
}

func (r *OAuthRefresher) Refresh(ctx context.Context, token *oauth2.Token) (*oauth2.Token, error) {
	expired := *token
	expired.AccessToken = ""
	return r.config.TokenSource(ctx, &expired).Token()
}
