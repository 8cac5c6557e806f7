// Package authapi is the adapter for the external authentication service.
// It speaks the service's REST API, persists the current session between
// runs, refreshes expired access tokens, and pushes auth-state events to
// subscribers. The rest of the application only sees the Client interface.
package authapi

import (
	"context"
	"time"
)

// EventKind is the closed set of auth-state events the adapter can emit.
// Anything the wire protocol may grow that we do not recognize maps to
// EventUnknown instead of silently falling through.
type EventKind int

const (
	EventUnknown EventKind = iota
	EventSignedIn
	EventSignedOut
	EventTokenRefreshed
	EventUserUpdated
)

func (k EventKind) String() string {
	switch k {
	case EventSignedIn:
		return "SIGNED_IN"
	case EventSignedOut:
		return "SIGNED_OUT"
	case EventTokenRefreshed:
		return "TOKEN_REFRESHED"
	case EventUserUpdated:
		return "USER_UPDATED"
	default:
		return "UNKNOWN"
	}
}

// Event is delivered to OnAuthStateChange subscribers. Session is nil for
// sign-out and for unknown events without a session payload.
type Event struct {
	Kind    EventKind
	Session *Session
}

// Identity is the identity record held by the auth service: claims, not the
// application profile.
type Identity struct {
	ID        string         `json:"id"`
	Email     string         `json:"email"`
	Metadata  map[string]any `json:"user_metadata"`
	CreatedAt time.Time      `json:"created_at"`
}

// MetadataString returns the named metadata value when it is a non-empty
// string, or "" otherwise.
func (i *Identity) MetadataString(key string) string {
	if i == nil || i.Metadata == nil {
		return ""
	}
	if s, ok := i.Metadata[key].(string); ok {
		return s
	}
	return ""
}

// Session is proof of authentication issued by the auth service. Expiry is
// managed by the service; ExpiresAt mirrors it locally so the adapter knows
// when to refresh.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         *Identity `json:"user"`
}

// Expired reports whether the access token is past (or within skew of) its
// expiry.
func (s *Session) Expired(skew time.Duration) bool {
	if s == nil {
		return true
	}
	return !s.ExpiresAt.IsZero() && time.Now().Add(skew).After(s.ExpiresAt)
}

// Credentials are used for password sign-in.
type Credentials struct {
	Email    string
	Password string
}

// SignUpParams describe a registration request. Metadata travels with the
// identity record (the profile placeholder source); EmailRedirectTo is where
// the confirmation e-mail should send the user.
type SignUpParams struct {
	Email           string
	Password        string
	Metadata        map[string]any
	EmailRedirectTo string
}

// Client is the surface the application consumes from the auth service.
//
// Contract:
//   - SignInWithPassword / SignUp / SignOut mutate the held session and emit
//     the corresponding event.
//   - GetSession returns the current session (refreshing it if expired) or
//     nil when not authenticated; it never fails just because there is no
//     session.
//   - GetUser fetches the current identity from the service, or nil when
//     there is no session.
//   - OnAuthStateChange registers a handler for push events; the returned
//     function unsubscribes it.
//
// All methods must honor context cancellation/timeouts.
type Client interface {
	SignInWithPassword(ctx context.Context, creds Credentials) (*Session, error)
	SignUp(ctx context.Context, params SignUpParams) (*Session, error)
	SignOut(ctx context.Context) error
	GetSession(ctx context.Context) (*Session, error)
	GetUser(ctx context.Context) (*Identity, error)
	OnAuthStateChange(handler func(Event)) (unsubscribe func())
	Close() error
}
