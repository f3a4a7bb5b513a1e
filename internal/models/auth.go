package models

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// LoginRequest holds credentials for authenticating a user. The role comes
// from the login endpoint path, not the payload.
type LoginRequest struct {
	Email         string   `json:"email" validate:"required,email"`
	Password      string   `json:"password" validate:"required"`
	Role          UserRole `json:"-"`
	InstitutionID string   `json:"-"`
	IP            string   `json:"-"`
	UserAgent     string   `json:"-"`
}

// LoginResponse returns the issued token pair plus user and profile info.
type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	User         UserInfo  `json:"user"`
	Profile      *Profile  `json:"profile,omitempty"`
	IssuedAt     time.Time `json:"issued_at"`
}

// RefreshTokenRequest exchanges a refresh token for a new token pair.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshTokenResponse returns the rotated pair. The client must replace
// both stored tokens; the previous refresh token is dead after this call.
type RefreshTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresIn    int64     `json:"expires_in"`
	IssuedAt     time.Time `json:"issued_at"`
}

// ValidateTokenRequest carries an access token for explicit validation.
type ValidateTokenRequest struct {
	AccessToken string `json:"access_token" validate:"required"`
}

// UserInfo describes the authenticated user in responses.
type UserInfo struct {
	ID            string   `json:"id"`
	InstitutionID string   `json:"institution_id"`
	Email         string   `json:"email"`
	FullName      string   `json:"full_name"`
	Role          UserRole `json:"role"`
}

// TokenKind distinguishes the two token flavours inside claims.
type TokenKind string

const (
	TokenKindAccess  TokenKind = "access"
	TokenKindRefresh TokenKind = "refresh"
)

// JWTClaims represents the JWT payload for both token kinds. ID (jti) keys
// the revocation denylist.
type JWTClaims struct {
	UserID        string    `json:"user_id"`
	InstitutionID string    `json:"institution_id"`
	Role          UserRole  `json:"role"`
	Email         string    `json:"email"`
	Kind          TokenKind `json:"kind"`
	jwt.RegisteredClaims
}
