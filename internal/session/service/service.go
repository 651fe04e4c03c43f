// Package service orchestrates the session-changing operations. Every
// operation follows the same three-phase discipline over the credential
// store: mark pending, call the API, then record the fulfilled or rejected
// outcome. The service is the sole writer of session state apart from the
// API client's forced-logout path.
package service

import (
	"context"
	"errors"
	"log"

	"codgoo/client/internal/session/domain"
	"codgoo/client/internal/session/store"
	"codgoo/client/internal/telemetry"
)

// ErrMissingProvider is returned by SocialLogin when no provider is given.
var ErrMissingProvider = errors.New("social login provider is required")

// API is the minimal client surface the service needs.
type API interface {
	Get(ctx context.Context, path string, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// Service runs the session operations. Operations are not mutually
// exclusive: nothing queues or cancels a concurrent operation, so when two
// are in flight the one that settles last determines the visible snapshot.
type Service struct {
	api    API
	store  store.Store
	events telemetry.EventEmitter // may be nil
}

// New returns a session service over the given API client and credential
// store. events may be nil to disable session telemetry.
func New(api API, st store.Store, events telemetry.EventEmitter) *Service {
	return &Service{api: api, store: st, events: events}
}

// Login authenticates with email and password. On success the store holds
// the new token and user; on failure the previous token and user are
// preserved and the store's error field carries the failure message.
func (s *Service) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResponse, error) {
	s.store.SetLoading(true)
	s.store.SetError("")
	var resp domain.AuthResponse
	if err := s.api.Post(ctx, "/client/login", creds, &resp); err != nil {
		s.reject(err)
		telemetry.EmitAsync(s.events, &telemetry.SessionEvent{
			Type: telemetry.EventLoginFailed, Email: creds.Email, Reason: err.Error(),
		})
		return nil, err
	}
	s.fulfillAuth(&resp)
	telemetry.EmitAsync(s.events, &telemetry.SessionEvent{
		Type: telemetry.EventLoginSucceeded, UserID: resp.User.ID, Email: resp.User.Email,
	})
	return &resp, nil
}

// Register creates an account. The server returns a full auth response, so
// fulfilled semantics are identical to Login. ConfirmPassword matching is
// the caller's concern.
func (s *Service) Register(ctx context.Context, data domain.RegisterData) (*domain.AuthResponse, error) {
	s.store.SetLoading(true)
	s.store.SetError("")
	var resp domain.AuthResponse
	if err := s.api.Post(ctx, "/client/register", data, &resp); err != nil {
		s.reject(err)
		telemetry.EmitAsync(s.events, &telemetry.SessionEvent{
			Type: telemetry.EventRegisterFailed, Email: data.Email, Reason: err.Error(),
		})
		return nil, err
	}
	s.fulfillAuth(&resp)
	telemetry.EmitAsync(s.events, &telemetry.SessionEvent{
		Type: telemetry.EventRegisterSucceeded, UserID: resp.User.ID, Email: resp.User.Email,
	})
	return &resp, nil
}

// SocialLogin authenticates with a provider-issued token (e.g. "google").
// Fulfilled semantics are identical to Login.
func (s *Service) SocialLogin(ctx context.Context, provider, token string) (*domain.AuthResponse, error) {
	if provider == "" {
		return nil, ErrMissingProvider
	}
	s.store.SetLoading(true)
	s.store.SetError("")
	var resp domain.AuthResponse
	if err := s.api.Post(ctx, "/auth/social/"+provider, map[string]string{"token": token}, &resp); err != nil {
		s.reject(err)
		telemetry.EmitAsync(s.events, &telemetry.SessionEvent{
			Type: telemetry.EventLoginFailed, Reason: err.Error(),
		})
		return nil, err
	}
	s.fulfillAuth(&resp)
	telemetry.EmitAsync(s.events, &telemetry.SessionEvent{
		Type: telemetry.EventLoginSucceeded, UserID: resp.User.ID, Email: resp.User.Email,
	})
	return &resp, nil
}

// Logout ends the session. The remote call is best-effort: the local
// session is cleared whether or not it succeeds, and Logout always returns
// nil.
func (s *Service) Logout(ctx context.Context) error {
	s.store.SetLoading(true)
	userID := ""
	if u := s.store.Get().User; u != nil {
		userID = u.ID
	}
	if err := s.api.Post(ctx, "/client/logout", nil, nil); err != nil {
		log.Printf("session: remote logout failed, clearing local session anyway: %v", err)
	}
	s.store.Clear()
	telemetry.EmitAsync(s.events, &telemetry.SessionEvent{
		Type: telemetry.EventLogout, UserID: userID,
	})
	return nil
}

// Refresh exchanges a caller-supplied refresh token for new credentials.
// The service never stores refresh tokens and never refreshes on its own;
// the caller decides when.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*domain.AuthResponse, error) {
	s.store.SetLoading(true)
	var resp domain.AuthResponse
	if err := s.api.Post(ctx, "/auth/refresh", map[string]string{"refreshToken": refreshToken}, &resp); err != nil {
		s.reject(err)
		telemetry.EmitAsync(s.events, &telemetry.SessionEvent{
			Type: telemetry.EventRefreshFailed, Reason: err.Error(),
		})
		return nil, err
	}
	s.fulfillAuth(&resp)
	telemetry.EmitAsync(s.events, &telemetry.SessionEvent{
		Type: telemetry.EventRefreshSucceeded, UserID: resp.User.ID,
	})
	return &resp, nil
}

// CurrentUser fetches the authenticated profile and replaces the stored
// user, leaving the token untouched. The request is issued even when no
// token is held; the server's 401 then flows through the forced-logout
// policy like any other.
func (s *Service) CurrentUser(ctx context.Context) (*domain.User, error) {
	s.store.SetLoading(true)
	var u domain.User
	if err := s.api.Get(ctx, "/auth/me", &u); err != nil {
		s.reject(err)
		return nil, err
	}
	s.store.SetUser(&u)
	s.store.SetError("")
	s.store.SetLoading(false)
	return &u, nil
}

// fulfillAuth records a successful auth response: token and user replace
// the stored pair, the error clears, and loading ends.
func (s *Service) fulfillAuth(resp *domain.AuthResponse) {
	u := resp.User
	s.store.SetSession(resp.Token, &u)
	s.store.SetError("")
	s.store.SetLoading(false)
}

// reject records a failed operation: the failure message lands in the
// store, loading ends, and the token and user are left as they were.
func (s *Service) reject(err error) {
	s.store.SetError(err.Error())
	s.store.SetLoading(false)
}
