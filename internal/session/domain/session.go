// Package domain holds the session entities shared by the credential stores,
// the API client, and the session service.
package domain

// User is the authenticated user profile. It is built from server response
// payloads only; the client never constructs one locally.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Company  string `json:"company,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

// Snapshot is the session state visible to consumers: the bearer token, the
// user profile, whether an operation is in flight, and the last failure
// message. Token and User are empty when unauthenticated.
type Snapshot struct {
	Token   string `json:"token,omitempty"`
	User    *User  `json:"user,omitempty"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// Authenticated reports whether the snapshot carries a bearer token.
func (s Snapshot) Authenticated() bool {
	return s.Token != ""
}

// Credentials is the login request payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RegisterData is the registration request payload. ConfirmPassword matching
// is the caller's concern; the service sends the payload as-is.
type RegisterData struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Company         string `json:"company,omitempty"`
	Phone           string `json:"phone,omitempty"`
	RememberMe      bool   `json:"rememberMe,omitempty"`
}

// AuthResponse is the transport payload returned by login, register, social
// login, and refresh. It is consumed once to update the session; the refresh
// token is handed back to the caller and not retained.
type AuthResponse struct {
	User         User   `json:"user"`
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // seconds until the access token expires
}
