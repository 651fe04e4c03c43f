// Package devstub is an in-memory stand-in for the Codgoo backend API. It
// implements the session endpoints with real bcrypt hashing and HS256
// tokens so the client can be exercised end to end without the production
// backend. State lives in memory and is lost on restart.
package devstub

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"codgoo/client/internal/security"
	"codgoo/client/internal/session/domain"
)

// Server holds the stub's in-memory account registry.
type Server struct {
	tokens     *security.TokenProvider
	hasher     *security.Hasher
	attendOpen bool

	mu      sync.Mutex
	byID    map[string]*account
	byEmail map[string]*account
}

type account struct {
	user         domain.User
	passwordHash string
}

// NewServer returns a stub server. attendOpen controls whether the
// attendance endpoints accept requests; when false they return 401, which
// is the scenario the client's best-effort list exists for.
func NewServer(tokens *security.TokenProvider, hasher *security.Hasher, attendOpen bool) *Server {
	return &Server{
		tokens:     tokens,
		hasher:     hasher,
		attendOpen: attendOpen,
		byID:       map[string]*account{},
		byEmail:    map[string]*account{},
	}
}

// Seed registers an account without going through the register endpoint.
// Intended for startup convenience; returns the created user.
func (s *Server) Seed(username, email, password string) (*domain.User, error) {
	hash, err := s.hasher.Hash([]byte(password))
	if err != nil {
		return nil, err
	}
	acct := &account{
		user: domain.User{
			ID:       uuid.New().String(),
			Username: username,
			Email:    strings.ToLower(email),
		},
		passwordHash: hash,
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[acct.user.ID] = acct
	s.byEmail[acct.user.Email] = acct
	return &acct.user, nil
}

// Handler returns the stub's HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /client/login", s.handleLogin)
	mux.HandleFunc("POST /client/register", s.handleRegister)
	mux.HandleFunc("POST /client/logout", s.handleLogout)
	mux.HandleFunc("POST /auth/refresh", s.handleRefresh)
	mux.HandleFunc("GET /auth/me", s.handleMe)
	mux.HandleFunc("POST /auth/social/{provider}", s.handleSocial)
	mux.HandleFunc("POST /teachers/attend/checkin", s.handleAttend)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return mux
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds domain.Credentials
	if !readJSON(w, r, &creds) {
		return
	}
	s.mu.Lock()
	acct := s.byEmail[strings.ToLower(strings.TrimSpace(creds.Email))]
	s.mu.Unlock()
	if acct == nil || s.hasher.Compare(acct.passwordHash, []byte(creds.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "invalid email or password")
		return
	}
	s.respondAuth(w, &acct.user)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var data domain.RegisterData
	if !readJSON(w, r, &data) {
		return
	}
	email := strings.ToLower(strings.TrimSpace(data.Email))
	if email == "" || data.Username == "" || data.Password == "" {
		writeMessage(w, http.StatusUnprocessableEntity, "username, email, and password are required")
		return
	}
	if data.ConfirmPassword != "" && data.ConfirmPassword != data.Password {
		writeMessage(w, http.StatusUnprocessableEntity, "passwords do not match")
		return
	}
	hash, err := s.hasher.Hash([]byte(data.Password))
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "could not hash password")
		return
	}
	acct := &account{
		user: domain.User{
			ID:       uuid.New().String(),
			Username: data.Username,
			Email:    email,
			Company:  data.Company,
			Phone:    data.Phone,
		},
		passwordHash: hash,
	}
	s.mu.Lock()
	if s.byEmail[email] != nil {
		s.mu.Unlock()
		writeMessage(w, http.StatusConflict, "email already registered")
		return
	}
	s.byID[acct.user.ID] = acct
	s.byEmail[email] = acct
	s.mu.Unlock()
	s.respondAuth(w, &acct.user)
}

// handleLogout accepts any bearer token, valid or not. Tokens are stateless
// here, so there is nothing to revoke.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	userID, err := s.tokens.ValidateRefresh(body.RefreshToken)
	if err != nil {
		// "error" key instead of "message": the real backend mixes both
		// shapes, and the client must handle either.
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired refresh token"})
		return
	}
	s.mu.Lock()
	acct := s.byID[userID]
	s.mu.Unlock()
	if acct == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unknown user"})
		return
	}
	s.respondAuth(w, &acct.user)
}

func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	acct := s.authenticate(r)
	if acct == nil {
		writeMessage(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	writeJSON(w, http.StatusOK, acct.user)
}

// handleSocial accepts any non-empty provider token and maps it to a
// deterministic account for that provider+token pair.
func (s *Server) handleSocial(w http.ResponseWriter, r *http.Request) {
	provider := r.PathValue("provider")
	var body struct {
		Token string `json:"token"`
	}
	if !readJSON(w, r, &body) {
		return
	}
	if body.Token == "" {
		writeMessage(w, http.StatusUnauthorized, "missing provider token")
		return
	}
	email := strings.ToLower(provider + "-user@example.com")
	s.mu.Lock()
	acct := s.byEmail[email]
	if acct == nil {
		acct = &account{user: domain.User{
			ID:       uuid.New().String(),
			Username: provider + "-user",
			Email:    email,
		}}
		s.byID[acct.user.ID] = acct
		s.byEmail[email] = acct
	}
	s.mu.Unlock()
	s.respondAuth(w, &acct.user)
}

// handleAttend is the endpoint that returns 401 for a reason unrelated to
// session validity: a closed attendance window. A valid session still gets
// 401 here when the window is closed.
func (s *Server) handleAttend(w http.ResponseWriter, r *http.Request) {
	if s.authenticate(r) == nil {
		writeMessage(w, http.StatusUnauthorized, "unauthenticated")
		return
	}
	if !s.attendOpen {
		writeMessage(w, http.StatusUnauthorized, "attendance window is closed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "checked in"})
}

// authenticate returns the account for the request's bearer token, or nil.
func (s *Server) authenticate(r *http.Request) *account {
	auth := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(auth) < len(prefix) || !strings.EqualFold(auth[:len(prefix)], prefix) {
		return nil
	}
	userID, err := s.tokens.ValidateAccess(strings.TrimSpace(auth[len(prefix):]))
	if err != nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byID[userID]
}

func (s *Server) respondAuth(w http.ResponseWriter, u *domain.User) {
	access, _, err := s.tokens.IssueAccess(u.ID, u.Username)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	refresh, err := s.tokens.IssueRefresh(u.ID)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	writeJSON(w, http.StatusOK, domain.AuthResponse{
		User:         *u,
		Token:        access,
		RefreshToken: refresh,
		ExpiresIn:    int64(s.tokens.AccessTTL().Seconds()),
	})
}

func readJSON(w http.ResponseWriter, r *http.Request, out any) bool {
	if err := json.NewDecoder(r.Body).Decode(out); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("devstub: write response: %v", err)
	}
}
