package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/teebox-golf/teebox-api/internal/models"
	appErrors "github.com/teebox-golf/teebox-api/pkg/errors"
)

type authRepoStub struct {
	users   map[string]*models.User
	tokens  map[string]*models.RefreshToken
	revoked []string
}

func newAuthRepoStub() *authRepoStub {
	return &authRepoStub{
		users:  map[string]*models.User{},
		tokens: map[string]*models.RefreshToken{},
	}
}

func (s *authRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.users[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	return nil
}

func (s *authRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	for _, t := range s.tokens {
		if t.UserID == userID && t.RevokedAt == nil {
			now := time.Now().UTC()
			t.RevokedAt = &now
			s.revoked = append(s.revoked, t.ID)
		}
	}
	return nil
}

func (s *authRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.tokens[token.Token] = token
	return nil
}

func (s *authRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.tokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *authRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	for _, t := range s.tokens {
		if t.ID == id {
			t.RevokedAt = &revokedAt
			s.revoked = append(s.revoked, id)
		}
	}
	return nil
}

func newAuthFixture(t *testing.T, singleSession bool) (*AuthService, *authRepoStub) {
	t.Helper()
	repo := newAuthRepoStub()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.users["u1"] = &models.User{
		ID:           "u1",
		Email:        "ops@teebox.golf",
		PasswordHash: string(hash),
		FullName:     "Ops",
		Role:         models.RoleAdmin,
		Active:       true,
	}
	svc := NewAuthService(repo, nil, nil, nil, AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  time.Minute,
		RefreshTokenExpiry: time.Hour,
		Issuer:             "teebox-api",
		SingleSession:      singleSession,
	})
	return svc, repo
}

func TestAuthLoginIssuesValidToken(t *testing.T) {
	svc, _ := newAuthFixture(t, false)

	res, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ops@teebox.golf",
		Password: "correct-horse",
	})
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)
	assert.Equal(t, "u1", res.User.ID)

	claims, err := svc.ValidateToken(res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, models.RoleAdmin, claims.Role)
	assert.Equal(t, "teebox-api", claims.Issuer)
}

func TestAuthLoginRejectsWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t, false)

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ops@teebox.golf",
		Password: "wrong",
	})
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErr.Code)
}

func TestAuthLoginRejectsInactiveAccount(t *testing.T) {
	svc, repo := newAuthFixture(t, false)
	repo.users["u1"].Active = false

	_, err := svc.Login(context.Background(), models.LoginRequest{
		Email:    "ops@teebox.golf",
		Password: "correct-horse",
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestAuthSingleSessionRevokesOlderTokens(t *testing.T) {
	svc, repo := newAuthFixture(t, true)

	first, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@teebox.golf", Password: "correct-horse"})
	require.NoError(t, err)
	_, err = svc.Login(context.Background(), models.LoginRequest{Email: "ops@teebox.golf", Password: "correct-horse"})
	require.NoError(t, err)

	assert.NotNil(t, repo.tokens[first.RefreshToken].RevokedAt)
}

func TestAuthRefreshRotatesToken(t *testing.T) {
	svc, repo := newAuthFixture(t, false)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@teebox.golf", Password: "correct-horse"})
	require.NoError(t, err)

	res, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.NoError(t, err)
	assert.NotEqual(t, login.RefreshToken, res.RefreshToken)
	assert.NotNil(t, repo.tokens[login.RefreshToken].RevokedAt)

	// The rotated-out token must not be reusable.
	_, err = svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: login.RefreshToken})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}

func TestAuthLogoutRequiresOwnership(t *testing.T) {
	svc, repo := newAuthFixture(t, false)

	login, err := svc.Login(context.Background(), models.LoginRequest{Email: "ops@teebox.golf", Password: "correct-horse"})
	require.NoError(t, err)

	err = svc.Logout(context.Background(), login.RefreshToken, "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)

	require.NoError(t, svc.Logout(context.Background(), login.RefreshToken, "u1"))
	assert.NotNil(t, repo.tokens[login.RefreshToken].RevokedAt)
}

func TestAuthValidateTokenRejectsForeignSignature(t *testing.T) {
	svc, _ := newAuthFixture(t, false)
	other, _ := newAuthFixture(t, false)
	other.config.AccessTokenSecret = "other-secret"

	login, err := other.Login(context.Background(), models.LoginRequest{Email: "ops@teebox.golf", Password: "correct-horse"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(login.AccessToken)
	require.Error(t, err)
}
