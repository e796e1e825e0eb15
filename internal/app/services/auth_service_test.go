package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klassenhub/klassenhub/internal/app/models"
	"github.com/klassenhub/klassenhub/internal/app/models/dto"
	"github.com/klassenhub/klassenhub/internal/app/repositories"
	"github.com/klassenhub/klassenhub/internal/pkg/apperrors"
	"github.com/klassenhub/klassenhub/internal/pkg/auth"
)

type fakeUserStore struct {
	users  map[string]*models.User
	nextID int64
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*models.User), nextID: 1}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *models.User) (int64, error) {
	if _, ok := f.users[user.Email]; ok {
		return 0, apperrors.ErrEmailAlreadyExists
	}
	user.ID = f.nextID
	f.nextID++
	f.users[user.Email] = user
	return user.ID, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := f.users[email]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return user, nil
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	for _, user := range f.users {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

type fakeTokenStore struct {
	tokens  map[string]repositories.RefreshToken
	revoked []string
}

func newFakeTokenStore() *fakeTokenStore {
	return &fakeTokenStore{tokens: make(map[string]repositories.RefreshToken)}
}

func (f *fakeTokenStore) SaveRefreshToken(_ context.Context, userID int64, token string, expiresAt time.Time) error {
	f.tokens[token] = repositories.RefreshToken{UserID: userID, Token: token, ExpiresAt: expiresAt}
	return nil
}

func (f *fakeTokenStore) GetRefreshToken(_ context.Context, token string) (*repositories.RefreshToken, error) {
	rt, ok := f.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return &rt, nil
}

func (f *fakeTokenStore) RevokeRefreshToken(_ context.Context, token string) error {
	if _, ok := f.tokens[token]; !ok {
		return apperrors.ErrTokenNotFound
	}
	delete(f.tokens, token)
	f.revoked = append(f.revoked, token)
	return nil
}

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SecretKey:       "test-secret",
		AccessTokenExp:  time.Hour,
		RefreshTokenExp: 24 * time.Hour,
		TokenIssuer:     "test",
	})
}

func registeredAuthService(t *testing.T) (AuthService, *fakeUserStore, *fakeTokenStore) {
	t.Helper()
	users := newFakeUserStore()
	tokens := newFakeTokenStore()
	svc := newAuthService(users, tokens, newTestJWTService())

	_, err := svc.Register(context.Background(), &dto.RegisterRequest{
		Email:     "anna@example.org",
		Password:  "geheim123",
		FirstName: "Anna",
		LastName:  "Muster",
	})
	require.NoError(t, err)
	return svc, users, tokens
}

func TestAuthService_LoginIssuesTokenPair(t *testing.T) {
	svc, _, tokens := registeredAuthService(t)

	resp, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "anna@example.org",
		Password: "geheim123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Contains(t, tokens.tokens, resp.RefreshToken)
}

func TestAuthService_LoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := registeredAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "anna@example.org",
		Password: "falsch",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_LoginRejectsUnknownEmail(t *testing.T) {
	svc, _, _ := registeredAuthService(t)

	_, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "nobody@example.org",
		Password: "geheim123",
	})
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthService_RefreshRotatesToken(t *testing.T) {
	svc, _, tokens := registeredAuthService(t)

	first, err := svc.Login(context.Background(), &dto.LoginRequest{
		Email:    "anna@example.org",
		Password: "geheim123",
	})
	require.NoError(t, err)

	second, err := svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: first.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	assert.Contains(t, tokens.revoked, first.RefreshToken)

	// the revoked token cannot be used again
	_, err = svc.RefreshToken(context.Background(), &dto.RefreshTokenRequest{
		RefreshToken: first.RefreshToken,
	})
	assert.ErrorIs(t, err, apperrors.ErrTokenNotFound)
}
