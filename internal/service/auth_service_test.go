package service

import (
	"context"
	"database/sql"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/campushq/campus-api/internal/models"
	appErrors "github.com/campushq/campus-api/pkg/errors"
)

type mockAuthUsers struct {
	user             *models.User
	findErr          error
	findByIDErr      error
	lastLoginUpdated bool
}

func (m *mockAuthUsers) FindByEmailAndRole(ctx context.Context, institutionID, email string, role models.UserRole) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	return m.user, nil
}

func (m *mockAuthUsers) FindByID(ctx context.Context, id string) (*models.User, error) {
	if m.findByIDErr != nil {
		return nil, m.findByIDErr
	}
	return m.user, nil
}

func (m *mockAuthUsers) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	m.lastLoginUpdated = true
	return nil
}

type mockProfiles struct {
	profile *models.Profile
	err     error
}

func (m *mockProfiles) FindByUserID(ctx context.Context, userID string) (*models.Profile, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.profile, nil
}

type mockDenylist struct {
	denied map[string]bool
	err    error
}

func (m *mockDenylist) Deny(ctx context.Context, jti string, ttl time.Duration) error {
	if m.err != nil {
		return m.err
	}
	if m.denied == nil {
		m.denied = make(map[string]bool)
	}
	m.denied[jti] = true
	return nil
}

func (m *mockDenylist) IsDenied(ctx context.Context, jti string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.denied[jti], nil
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessSecret:  "access-secret",
		RefreshSecret: "refresh-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 7 * 24 * time.Hour,
		Issuer:        "campus-api-test",
	}
}

func activeUser(t *testing.T) *models.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)
	return &models.User{
		ID:            "user-1",
		InstitutionID: "inst-1",
		Email:         "amira@campus.test",
		PasswordHash:  string(hash),
		FullName:      "Amira Khan",
		Role:          models.RoleFaculty,
		Active:        true,
	}
}

func TestAuthServiceLogin(t *testing.T) {
	users := &mockAuthUsers{user: activeUser(t)}
	profiles := &mockProfiles{profile: &models.Profile{UserID: "user-1", DisplayName: "Amira"}}
	svc := NewAuthService(users, profiles, &mockDenylist{}, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:         "amira@campus.test",
		Password:      "s3cret-pass",
		Role:          models.RoleFaculty,
		InstitutionID: "inst-1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, resp.AccessToken, resp.RefreshToken)
	assert.Equal(t, int64((15 * time.Minute).Seconds()), resp.ExpiresIn)
	assert.Equal(t, "user-1", resp.User.ID)
	require.NotNil(t, resp.Profile)
	assert.Equal(t, "Amira", resp.Profile.DisplayName)
	assert.True(t, users.lastLoginUpdated)
}

func TestAuthServiceLoginWrongRoleLooksLikeBadCredentials(t *testing.T) {
	users := &mockAuthUsers{findErr: sql.ErrNoRows}
	svc := NewAuthService(users, nil, &mockDenylist{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:         "amira@campus.test",
		Password:      "s3cret-pass",
		Role:          models.RoleStudent,
		InstitutionID: "inst-1",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	users := &mockAuthUsers{user: activeUser(t)}
	svc := NewAuthService(users, nil, &mockDenylist{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:         "amira@campus.test",
		Password:      "wrong",
		Role:          models.RoleFaculty,
		InstitutionID: "inst-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceValidateToken(t *testing.T) {
	users := &mockAuthUsers{user: activeUser(t)}
	svc := NewAuthService(users, nil, &mockDenylist{}, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:         "amira@campus.test",
		Password:      "s3cret-pass",
		Role:          models.RoleFaculty,
		InstitutionID: "inst-1",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(context.Background(), resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, models.RoleFaculty, claims.Role)
	assert.Equal(t, models.TokenKindAccess, claims.Kind)
}

func TestAuthServiceValidateTamperedToken(t *testing.T) {
	users := &mockAuthUsers{user: activeUser(t)}
	svc := NewAuthService(users, nil, &mockDenylist{}, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:         "amira@campus.test",
		Password:      "s3cret-pass",
		Role:          models.RoleFaculty,
		InstitutionID: "inst-1",
	})
	require.NoError(t, err)

	// Flip a character in the signature segment.
	parts := strings.Split(resp.AccessToken, ".")
	require.Len(t, parts, 3)
	sig := []byte(parts[2])
	if sig[0] == 'A' {
		sig[0] = 'B'
	} else {
		sig[0] = 'A'
	}
	tampered := parts[0] + "." + parts[1] + "." + string(sig)

	_, err = svc.ValidateToken(context.Background(), tampered)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRejectsAccessToken(t *testing.T) {
	users := &mockAuthUsers{user: activeUser(t)}
	svc := NewAuthService(users, nil, &mockDenylist{}, validator.New(), zap.NewNop(), testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{
		Email:         "amira@campus.test",
		Password:      "s3cret-pass",
		Role:          models.RoleFaculty,
		InstitutionID: "inst-1",
	})
	require.NoError(t, err)

	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: resp.AccessToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthServiceRefreshRotationBlocksReplay(t *testing.T) {
	users := &mockAuthUsers{user: activeUser(t)}
	denylist := &mockDenylist{}
	svc := NewAuthService(users, nil, denylist, validator.New(), zap.NewNop(), testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:         "amira@campus.test",
		Password:      "s3cret-pass",
		Role:          models.RoleFaculty,
		InstitutionID: "inst-1",
	})
	require.NoError(t, err)

	rotated, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// Replaying the spent token must fail even though the signature is valid.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)

	// The rotated token still works.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: rotated.RefreshToken})
	require.NoError(t, err)
}

func TestAuthServiceLogoutRevokesAccessToken(t *testing.T) {
	users := &mockAuthUsers{user: activeUser(t)}
	denylist := &mockDenylist{}
	svc := NewAuthService(users, nil, denylist, validator.New(), zap.NewNop(), testAuthConfig())

	login, err := svc.Login(context.Background(), models.LoginRequest{
		Email:         "amira@campus.test",
		Password:      "s3cret-pass",
		Role:          models.RoleFaculty,
		InstitutionID: "inst-1",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), login.AccessToken, login.RefreshToken))

	_, err = svc.ValidateToken(context.Background(), login.AccessToken)
	require.Error(t, err)
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	user := activeUser(t)
	user.Active = false
	users := &mockAuthUsers{user: user}
	svc := NewAuthService(users, nil, &mockDenylist{}, validator.New(), zap.NewNop(), testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:         "amira@campus.test",
		Password:      "s3cret-pass",
		Role:          models.RoleFaculty,
		InstitutionID: "inst-1",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}
