// Package session exposes the consumer-facing session handle: synchronous
// read access to the current session state plus the session operations,
// without transport details leaking through.
package session

import (
	"context"

	"codgoo/client/internal/session/domain"
	"codgoo/client/internal/session/service"
	"codgoo/client/internal/session/store"
)

// Session is the read/act handle the rest of the application uses. Reads
// come straight from the credential store; operations delegate to the
// service and report failure through their returned error.
type Session struct {
	svc   *service.Service
	store store.Store
}

// New returns a session handle over the given service and store. The store
// must be the same one the service writes to.
func New(svc *service.Service, st store.Store) *Session {
	return &Session{svc: svc, store: st}
}

// Snapshot returns the full current session state.
func (s *Session) Snapshot() domain.Snapshot { return s.store.Get() }

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Session) Token() string { return s.store.Get().Token }

// User returns the current user profile, or nil.
func (s *Session) User() *domain.User { return s.store.Get().User }

// IsAuthenticated reports whether a bearer token is held.
func (s *Session) IsAuthenticated() bool { return s.store.Get().Authenticated() }

// Loading reports whether any session operation is in flight.
func (s *Session) Loading() bool { return s.store.Get().Loading }

// Err returns the last operation's failure message, or "".
func (s *Session) Err() string { return s.store.Get().Error }

// Login authenticates with email and password.
func (s *Session) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	return s.svc.Login(ctx, domain.Credentials{Email: email, Password: password})
}

// Register creates an account and signs in.
func (s *Session) Register(ctx context.Context, data domain.RegisterData) (*domain.AuthResponse, error) {
	return s.svc.Register(ctx, data)
}

// SocialLogin authenticates with a provider-issued token.
func (s *Session) SocialLogin(ctx context.Context, provider, token string) (*domain.AuthResponse, error) {
	return s.svc.SocialLogin(ctx, provider, token)
}

// Logout ends the session locally regardless of the remote outcome.
func (s *Session) Logout(ctx context.Context) error {
	return s.svc.Logout(ctx)
}

// Refresh exchanges a refresh token for new credentials.
func (s *Session) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error) {
	return s.svc.Refresh(ctx, refreshToken)
}

// CurrentUser fetches the authenticated profile.
func (s *Session) CurrentUser(ctx context.Context) (*domain.User, error) {
	return s.svc.CurrentUser(ctx)
}
