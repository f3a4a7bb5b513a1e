package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/campus-api/internal/models"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type authUserRepository interface {
	FindByEmailAndRole(ctx context.Context, institutionID, email string, role models.UserRole) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	UpdateLastLogin(ctx context.Context, id string, ts time.Time) error
}

type authProfileRepository interface {
	FindByUserID(ctx context.Context, userID string) (*models.Profile, error)
}

// tokenDenylist records revoked token IDs. Rotation denies the spent refresh
// jti, so a replayed old token fails even though its signature still checks.
type tokenDenylist interface {
	Deny(ctx context.Context, jti string, ttl time.Duration) error
	IsDenied(ctx context.Context, jti string) (bool, error)
}

// AuthConfig defines configuration for authentication flows. Access and
// refresh tokens are signed with separate secrets so one kind can never be
// presented as the other.
type AuthConfig struct {
	AccessSecret  string
	RefreshSecret string
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
	Issuer        string
}

// AuthService provides role-scoped login, token rotation and revocation.
type AuthService struct {
	users     authUserRepository
	profiles  authProfileRepository
	denylist  tokenDenylist
	validator *validator.Validate
	logger    *zap.Logger
	config    AuthConfig
}

// NewAuthService constructs an AuthService instance.
func NewAuthService(users authUserRepository, profiles authProfileRepository, denylist tokenDenylist, validate *validator.Validate, logger *zap.Logger, config AuthConfig) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &AuthService{users: users, profiles: profiles, denylist: denylist, validator: validate, logger: logger, config: config}
}

// Login authenticates a user against the role collection named by the login
// endpoint and returns a fresh token pair plus the stored profile document.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid login payload")
	}
	if req.InstitutionID == "" {
		return nil, appErrors.Clone(appErrors.ErrTenantRequired, "")
	}

	user, err := s.users.FindByEmailAndRole(ctx, req.InstitutionID, req.Email, req.Role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Identical response whether the email is unknown or merely
			// registered under a different role.
			return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to fetch user")
	}

	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, appErrors.Clone(appErrors.ErrInvalidCredentials, "invalid email or password")
	}

	accessToken, refreshToken, issuedAt, err := s.issueTokenPair(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue tokens")
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID, issuedAt); err != nil {
		s.logger.Warn("failed to update last login", zap.Error(err))
	}

	var profile *models.Profile
	if s.profiles != nil {
		profile, err = s.profiles.FindByUserID(ctx, user.ID)
		if err != nil {
			// The document store is best effort at login; the relational row
			// is authoritative for identity.
			s.logger.Warn("failed to load profile document", zap.String("user_id", user.ID), zap.Error(err))
			profile = nil
		}
	}

	return &models.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.AccessExpiry.Seconds()),
		IssuedAt:     issuedAt,
		Profile:      profile,
		User: models.UserInfo{
			ID:            user.ID,
			InstitutionID: user.InstitutionID,
			Email:         user.Email,
			FullName:      user.FullName,
			Role:          user.Role,
		},
	}, nil
}

// RefreshToken rotates a refresh token: the presented token is verified,
// denied for the rest of its lifetime, and a brand new pair is issued.
// Replaying the spent token afterwards fails the denylist check.
func (s *AuthService) RefreshToken(ctx context.Context, req models.RefreshTokenRequest) (*models.RefreshTokenResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid refresh payload")
	}

	claims, err := s.parseToken(req.RefreshToken, models.TokenKindRefresh)
	if err != nil {
		return nil, err
	}

	denied, err := s.denylist.IsDenied(ctx, claims.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check token state")
	}
	if denied {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "refresh token already used or revoked")
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrUnauthorized, "associated user no longer exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	if !user.Active {
		return nil, appErrors.Clone(appErrors.ErrInactiveAccount, "account is inactive")
	}

	if err := s.denyClaims(ctx, claims); err != nil {
		// Revocation must land before the new pair goes out.
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to retire refresh token")
	}

	accessToken, refreshToken, issuedAt, err := s.issueTokenPair(user)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to issue tokens")
	}

	return &models.RefreshTokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(s.config.AccessExpiry.Seconds()),
		IssuedAt:     issuedAt,
	}, nil
}

// ValidateToken verifies an access token's signature, expiry and revocation
// state, returning the embedded claims.
func (s *AuthService) ValidateToken(ctx context.Context, tokenString string) (*models.JWTClaims, error) {
	claims, err := s.parseToken(tokenString, models.TokenKindAccess)
	if err != nil {
		return nil, err
	}

	denied, err := s.denylist.IsDenied(ctx, claims.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check token state")
	}
	if denied {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "token has been revoked")
	}

	return claims, nil
}

// Logout revokes both presented tokens immediately. Unparseable tokens are
// ignored: logout is idempotent and never fails the client out of a session
// it is trying to leave.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if claims, err := s.parseToken(accessToken, models.TokenKindAccess); err == nil {
		if err := s.denyClaims(ctx, claims); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke access token")
		}
	}
	if refreshToken != "" {
		if claims, err := s.parseToken(refreshToken, models.TokenKindRefresh); err == nil {
			if err := s.denyClaims(ctx, claims); err != nil {
				return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to revoke refresh token")
			}
		}
	}
	return nil
}

func (s *AuthService) issueTokenPair(user *models.User) (string, string, time.Time, error) {
	issuedAt := time.Now().UTC()

	accessToken, err := s.signToken(user, models.TokenKindAccess, issuedAt, s.config.AccessExpiry, s.config.AccessSecret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	refreshToken, err := s.signToken(user, models.TokenKindRefresh, issuedAt, s.config.RefreshExpiry, s.config.RefreshSecret)
	if err != nil {
		return "", "", time.Time{}, err
	}
	return accessToken, refreshToken, issuedAt, nil
}

func (s *AuthService) signToken(user *models.User, kind models.TokenKind, issuedAt time.Time, expiry time.Duration, secret string) (string, error) {
	claims := &models.JWTClaims{
		UserID:        user.ID,
		InstitutionID: user.InstitutionID,
		Role:          user.Role,
		Email:         user.Email,
		Kind:          kind,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.config.Issuer,
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

func (s *AuthService) parseToken(tokenString string, kind models.TokenKind) (*models.JWTClaims, error) {
	secret := s.config.AccessSecret
	if kind == models.TokenKindRefresh {
		secret = s.config.RefreshSecret
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrUnauthorized.Code, appErrors.ErrUnauthorized.Status, "invalid token")
	}

	claims, ok := token.Claims.(*models.JWTClaims)
	if !ok || !token.Valid {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token claims")
	}
	if claims.Kind != kind {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "wrong token kind")
	}
	return claims, nil
}

func (s *AuthService) denyClaims(ctx context.Context, claims *models.JWTClaims) error {
	if claims.ExpiresAt == nil {
		return nil
	}
	ttl := time.Until(claims.ExpiresAt.Time)
	return s.denylist.Deny(ctx, claims.ID, ttl)
}
