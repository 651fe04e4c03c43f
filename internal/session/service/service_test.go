package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"codgoo/client/internal/session/domain"
	"codgoo/client/internal/session/store"
)

// fakeAPI scripts responses per path and records the calls it receives.
type fakeAPI struct {
	mu       sync.Mutex
	calls    []string
	respond  map[string]any   // path -> value copied into out
	failWith map[string]error // path -> error returned
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{respond: map[string]any{}, failWith: map[string]error{}}
}

func (f *fakeAPI) Get(ctx context.Context, path string, out any) error {
	return f.call(path, out)
}

func (f *fakeAPI) Post(ctx context.Context, path string, body, out any) error {
	return f.call(path, out)
}

func (f *fakeAPI) call(path string, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, path)
	err := f.failWith[path]
	resp := f.respond[path]
	f.mu.Unlock()
	if err != nil {
		return err
	}
	if resp != nil && out != nil {
		switch v := resp.(type) {
		case domain.AuthResponse:
			*out.(*domain.AuthResponse) = v
		case domain.User:
			*out.(*domain.User) = v
		}
	}
	return nil
}

func (f *fakeAPI) called(path string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == path {
			return true
		}
	}
	return false
}

func authResponse() domain.AuthResponse {
	return domain.AuthResponse{
		User:         domain.User{ID: "1", Username: "a", Email: "a@b.com"},
		Token:        "tok123",
		RefreshToken: "r1",
		ExpiresIn:    3600,
	}
}

func TestLogin_Fulfilled(t *testing.T) {
	api := newFakeAPI()
	api.respond["/client/login"] = authResponse()
	st := store.NewMemory()
	svc := New(api, st, nil)

	resp, err := svc.Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: "x"})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Token != "tok123" || resp.RefreshToken != "r1" {
		t.Errorf("response = %+v", resp)
	}

	snap := st.Get()
	if snap.Token != "tok123" {
		t.Errorf("Token = %q, want tok123", snap.Token)
	}
	if snap.User == nil || snap.User.Email != "a@b.com" {
		t.Errorf("User = %+v", snap.User)
	}
	if snap.Loading || snap.Error != "" {
		t.Errorf("loading/error not reset: %+v", snap)
	}
	if !snap.Authenticated() {
		t.Error("expected authenticated snapshot")
	}
}

func TestLogin_RejectedPreservesSession(t *testing.T) {
	api := newFakeAPI()
	api.failWith["/client/login"] = errors.New("invalid email or password")
	st := store.NewMemory()
	st.SetSession("old-token", &domain.User{ID: "9"})
	svc := New(api, st, nil)

	_, err := svc.Login(context.Background(), domain.Credentials{Email: "a@b.com", Password: "wrong"})
	if err == nil {
		t.Fatal("expected error")
	}

	snap := st.Get()
	if snap.Token != "old-token" || snap.User == nil || snap.User.ID != "9" {
		t.Errorf("prior session not preserved: %+v", snap)
	}
	if snap.Error != "invalid email or password" {
		t.Errorf("Error = %q", snap.Error)
	}
	if snap.Loading {
		t.Error("loading still set after rejection")
	}
}

func TestLogin_ClearsStaleErrorOnPending(t *testing.T) {
	api := newFakeAPI()
	api.respond["/client/login"] = authResponse()
	st := store.NewMemory()
	st.SetError("stale failure")
	svc := New(api, st, nil)

	if _, err := svc.Login(context.Background(), domain.Credentials{}); err != nil {
		t.Fatalf("Login: %v", err)
	}
	if got := st.Get().Error; got != "" {
		t.Errorf("Error = %q, want empty", got)
	}
}

func TestRegister_FulfilledMatchesLogin(t *testing.T) {
	api := newFakeAPI()
	api.respond["/client/register"] = authResponse()
	st := store.NewMemory()
	svc := New(api, st, nil)

	resp, err := svc.Register(context.Background(), domain.RegisterData{
		Username: "a", Email: "a@b.com", Password: "x", ConfirmPassword: "x",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if resp.Token != "tok123" {
		t.Errorf("Token = %q", resp.Token)
	}
	if snap := st.Get(); snap.Token != "tok123" || snap.User == nil {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestLogout_LocallyAuthoritativeOnSuccess(t *testing.T) {
	api := newFakeAPI()
	st := store.NewMemory()
	st.SetSession("tok", &domain.User{ID: "1"})
	st.SetError("old error")
	svc := New(api, st, nil)

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	snap := st.Get()
	if snap.Token != "" || snap.User != nil || snap.Error != "" || snap.Loading {
		t.Errorf("session not fully cleared: %+v", snap)
	}
}

func TestLogout_LocallyAuthoritativeOnFailure(t *testing.T) {
	api := newFakeAPI()
	api.failWith["/client/logout"] = errors.New("network unreachable")
	st := store.NewMemory()
	st.SetSession("tok", &domain.User{ID: "1"})
	svc := New(api, st, nil)

	if err := svc.Logout(context.Background()); err != nil {
		t.Fatalf("Logout should not surface the remote failure, got %v", err)
	}
	snap := st.Get()
	if snap.Token != "" || snap.User != nil || snap.Error != "" || snap.Loading {
		t.Errorf("session not cleared despite remote failure: %+v", snap)
	}
	if !api.called("/client/logout") {
		t.Error("remote logout never attempted")
	}
}

func TestRefresh_Fulfilled(t *testing.T) {
	api := newFakeAPI()
	resp := authResponse()
	resp.Token = "tok456"
	api.respond["/auth/refresh"] = resp
	st := store.NewMemory()
	st.SetSession("tok123", &domain.User{ID: "1"})
	svc := New(api, st, nil)

	got, err := svc.Refresh(context.Background(), "r1")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if got.Token != "tok456" {
		t.Errorf("Token = %q, want tok456", got.Token)
	}
	if snap := st.Get(); snap.Token != "tok456" {
		t.Errorf("store token = %q", snap.Token)
	}
}

func TestRefresh_RejectedLeavesSession(t *testing.T) {
	api := newFakeAPI()
	api.failWith["/auth/refresh"] = errors.New("invalid or expired refresh token")
	st := store.NewMemory()
	st.SetSession("tok123", &domain.User{ID: "1"})
	svc := New(api, st, nil)

	if _, err := svc.Refresh(context.Background(), "bad"); err == nil {
		t.Fatal("expected error")
	}
	snap := st.Get()
	if snap.Token != "tok123" || snap.User == nil {
		t.Errorf("session fields touched on rejected refresh: %+v", snap)
	}
	if snap.Error != "invalid or expired refresh token" {
		t.Errorf("Error = %q", snap.Error)
	}
}

func TestCurrentUser_ReplacesUserOnly(t *testing.T) {
	api := newFakeAPI()
	api.respond["/auth/me"] = domain.User{ID: "1", Username: "fresh", Email: "a@b.com"}
	st := store.NewMemory()
	st.SetSession("tok123", &domain.User{ID: "1", Username: "stale"})
	svc := New(api, st, nil)

	u, err := svc.CurrentUser(context.Background())
	if err != nil {
		t.Fatalf("CurrentUser: %v", err)
	}
	if u.Username != "fresh" {
		t.Errorf("Username = %q", u.Username)
	}
	snap := st.Get()
	if snap.Token != "tok123" {
		t.Errorf("token touched: %q", snap.Token)
	}
	if snap.User == nil || snap.User.Username != "fresh" {
		t.Errorf("user not replaced: %+v", snap.User)
	}
}

func TestCurrentUser_IssuesRequestWithoutToken(t *testing.T) {
	api := newFakeAPI()
	api.failWith["/auth/me"] = errors.New("unauthenticated")
	st := store.NewMemory() // no token held
	svc := New(api, st, nil)

	if _, err := svc.CurrentUser(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if !api.called("/auth/me") {
		t.Error("request short-circuited locally; it must always be issued")
	}
}

func TestSocialLogin_RequiresProvider(t *testing.T) {
	svc := New(newFakeAPI(), store.NewMemory(), nil)
	if _, err := svc.SocialLogin(context.Background(), "", "tok"); !errors.Is(err, ErrMissingProvider) {
		t.Errorf("err = %v, want ErrMissingProvider", err)
	}
}

func TestSocialLogin_Fulfilled(t *testing.T) {
	api := newFakeAPI()
	api.respond["/auth/social/google"] = authResponse()
	st := store.NewMemory()
	svc := New(api, st, nil)

	if _, err := svc.SocialLogin(context.Background(), "google", "provider-token"); err != nil {
		t.Fatalf("SocialLogin: %v", err)
	}
	if !api.called("/auth/social/google") {
		t.Error("provider not interpolated into path")
	}
	if snap := st.Get(); snap.Token != "tok123" {
		t.Errorf("store token = %q", snap.Token)
	}
}
