package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/edulane/educenter-api/internal/models"
	appErrors "github.com/edulane/educenter-api/pkg/errors"
)

type mockUserRepo struct {
	users     map[string]*models.User
	byEmail   map[string]string
	tokens    map[string]*models.RefreshToken
	revoked   []string
	audits    []models.AuditLog
	passwords map[string]string
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if id, ok := m.byEmail[email]; ok {
		cp := *m.users[id]
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := m.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	if m.passwords == nil {
		m.passwords = make(map[string]string)
	}
	m.passwords[id] = passwordHash
	return nil
}

func (m *mockUserRepo) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	m.revoked = append(m.revoked, "all:"+userID)
	return nil
}

func (m *mockUserRepo) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if m.tokens == nil {
		m.tokens = make(map[string]*models.RefreshToken)
	}
	cp := *token
	m.tokens[token.Token] = &cp
	return nil
}

func (m *mockUserRepo) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := m.tokens[token]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	m.revoked = append(m.revoked, id)
	for _, t := range m.tokens {
		if t.ID == id {
			t.Revoked = true
		}
	}
	return nil
}

func (m *mockUserRepo) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	m.audits = append(m.audits, *log)
	return nil
}

func authFixture(t *testing.T) (*AuthService, *mockUserRepo) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := &mockUserRepo{
		users: map[string]*models.User{
			"u1": {ID: "u1", Email: "admin@center.test", PasswordHash: string(hash), FullName: "Admin", Role: models.RoleAdmin, Active: true},
			"u2": {ID: "u2", Email: "off@center.test", PasswordHash: string(hash), FullName: "Former", Role: models.RoleTeacher, Active: false},
		},
		byEmail: map[string]string{
			"admin@center.test": "u1",
			"off@center.test":   "u2",
		},
	}
	svc := NewAuthService(repo, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "educenter-test",
	})
	return svc, repo
}

func TestAuthServiceLogin(t *testing.T) {
	svc, repo := authFixture(t)

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@center.test", Password: "secret123"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, models.RoleAdmin, resp.User.Role)
	require.Len(t, repo.audits, 1)
	assert.Equal(t, models.AuditActionLogin, repo.audits[0].Action)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
}

func TestAuthServiceLoginWrongPassword(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@center.test", Password: "nope-nope"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthServiceLoginInactiveAccount(t *testing.T) {
	svc, _ := authFixture(t)

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "off@center.test", Password: "secret123"})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErr.Code)
}

func TestAuthServiceRefreshRotatesToken(t *testing.T) {
	svc, repo := authFixture(t)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "admin@center.test", Password: "secret123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, refreshed.RefreshToken)

	// The used token was revoked; a second exchange must fail.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErr.Code)
	assert.NotEmpty(t, repo.revoked)
}

func TestAuthServiceChangePasswordRevokesSessions(t *testing.T) {
	svc, repo := authFixture(t)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "secret123",
		NewPassword: "evenmoresecret",
	})
	require.NoError(t, err)
	assert.Contains(t, repo.revoked, "all:u1")
	assert.NotEmpty(t, repo.passwords["u1"])
}

func TestAuthServiceChangePasswordWrongOld(t *testing.T) {
	svc, _ := authFixture(t)

	err := svc.ChangePassword(context.Background(), "u1", models.ChangePasswordRequest{
		OldPassword: "wrong-old",
		NewPassword: "evenmoresecret",
	})
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrForbidden.Code, appErr.Code)
}
