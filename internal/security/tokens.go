// Package security provides JWT issuance/validation for the dev stub server
// and client-side token introspection helpers.
package security

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned when a token is malformed or invalid.
	ErrInvalidToken = errors.New("invalid token")
	// ErrNoExpiry is returned by ExpiryOf when the token carries no exp claim.
	ErrNoExpiry = errors.New("token has no expiry claim")
)

// AccessClaims holds JWT claims for the access token.
type AccessClaims struct {
	jwt.RegisteredClaims
	Username string `json:"username,omitempty"`
}

// RefreshClaims holds JWT claims for the refresh token (jti enables rotation).
type RefreshClaims struct {
	jwt.RegisteredClaims
}

// TokenProvider issues and validates HS256 access and refresh tokens for the
// dev stub server.
type TokenProvider struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenProvider returns a TokenProvider signing with the given shared
// secret. issuer is set on claims and checked on validation.
func NewTokenProvider(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) *TokenProvider {
	return &TokenProvider{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}
}

// AccessTTL returns the configured access token lifetime.
func (p *TokenProvider) AccessTTL() time.Duration { return p.accessTTL }

// IssueAccess issues a short-lived access JWT for the given user.
// Returns the token string and its expiration time.
func (p *TokenProvider) IssueAccess(userID, username string) (token string, expiresAt time.Time, err error) {
	jti, err := generateJTI()
	if err != nil {
		return "", time.Time{}, err
	}
	now := time.Now().UTC()
	expiresAt = now.Add(p.accessTTL)
	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
		Username: username,
	}
	token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
	return token, expiresAt, err
}

// IssueRefresh issues a long-lived refresh JWT for the given user.
func (p *TokenProvider) IssueRefresh(userID string) (string, error) {
	jti, err := generateJTI()
	if err != nil {
		return "", err
	}
	now := time.Now().UTC()
	claims := RefreshClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   userID,
			Issuer:    p.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(p.refreshTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(p.secret)
}

// ValidateAccess parses and validates an access token (signature, exp, iss).
// Returns the user ID.
func (p *TokenProvider) ValidateAccess(tokenString string) (userID string, err error) {
	claims := &AccessClaims{}
	if err := p.parse(tokenString, claims); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

// ValidateRefresh parses and validates a refresh token (signature, exp, iss).
// Returns the user ID.
func (p *TokenProvider) ValidateRefresh(tokenString string) (userID string, err error) {
	claims := &RefreshClaims{}
	if err := p.parse(tokenString, claims); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (p *TokenProvider) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return p.secret, nil
	}, jwt.WithIssuer(p.issuer))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}

// ExpiryOf returns the exp claim of a JWT without verifying its signature.
// The client uses it for display and for bounding store TTLs; it must never
// be used to accept a token as valid.
func ExpiryOf(tokenString string) (time.Time, error) {
	if tokenString == "" {
		return time.Time{}, ErrInvalidToken
	}
	parser := jwt.NewParser()
	claims := jwt.RegisteredClaims{}
	if _, _, err := parser.ParseUnverified(tokenString, &claims); err != nil {
		return time.Time{}, ErrInvalidToken
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrNoExpiry
	}
	return claims.ExpiresAt.Time, nil
}

func generateJTI() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
