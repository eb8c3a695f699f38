package service

import (
	"context"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gemora/gemora/internal/models"
	"github.com/gemora/gemora/internal/repo"
	"github.com/gemora/gemora/pkg/tokens"
)

func initTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Token{},
		&models.Product{},
		&models.Order{},
		&models.Newsletter{},
	))

	return db
}

func newTestAuthService(t *testing.T) *AuthService {
	t.Helper()

	return &AuthService{
		Repo:          &repo.GormRepo{DB: initTestDB(t)},
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
}

func registerRequest(email string) RegisterRequest {
	return RegisterRequest{
		FirstName: "Jan",
		LastName:  "Kowalski",
		Email:     email,
		Password:  "Secret123",
	}
}

func countTokens(t *testing.T, db *gorm.DB, userID uint, valid bool) int64 {
	t.Helper()

	q := db.Model(&models.Token{}).Where("user_id = ?", userID)
	if valid {
		q = q.Where("expired = ? AND revoked = ?", false, false)
	}
	var count int64
	require.NoError(t, q.Count(&count).Error)
	return count
}

func TestAuthService_Register_Success(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.Register(ctx, registerRequest("jan@example.com"))
	require.NoError(t, err)
	require.NotEmpty(t, res.AccessToken)
	require.NotEmpty(t, res.RefreshToken)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, "jan@example.com", claims.Subject)
	assert.Equal(t, models.RoleUser, claims.Role)

	var user models.User
	require.NoError(t, svc.Repo.DB.Where("email = ?", "jan@example.com").First(&user).Error)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "Secret123", user.PasswordHash)

	var stored models.Token
	require.NoError(t, svc.Repo.DB.Where("user_id = ?", user.ID).First(&stored).Error)
	assert.Equal(t, res.AccessToken, stored.Token)
	assert.Equal(t, models.TokenTypeBearer, stored.TokenType)
	assert.False(t, stored.Expired)
	assert.False(t, stored.Revoked)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("jan@example.com"))
	require.NoError(t, err)

	req := registerRequest("jan@example.com")
	req.FirstName = "Inna"
	_, err = svc.Register(ctx, req)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestAuthService_Register_InvalidEmail_NoWrites(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		email string
	}{
		{name: "missing at", email: "janexample.com"},
		{name: "missing domain suffix", email: "jan@example"},
		{name: "empty", email: ""},
		{name: "spaces", email: "jan @example.com"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, registerRequest(tt.email))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrEmailValidation)
		})
	}

	var users, toks int64
	require.NoError(t, svc.Repo.DB.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, svc.Repo.DB.Model(&models.Token{}).Count(&toks).Error)
	assert.Zero(t, users)
	assert.Zero(t, toks)
}

func TestAuthService_Register_EmailIsCaseSensitive(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("Jan@example.com"))
	require.NoError(t, err)

	// Differently cased address is a distinct user.
	_, err = svc.Register(ctx, registerRequest("jan@example.com"))
	require.NoError(t, err)
}

func TestAuthService_Authenticate_RevokesAllPriorTokens(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("jan@example.com"))
	require.NoError(t, err)

	var user models.User
	require.NoError(t, svc.Repo.DB.Where("email = ?", "jan@example.com").First(&user).Error)

	creds := AuthenticateRequest{Email: "jan@example.com", Password: "Secret123"}
	for i := 0; i < 3; i++ {
		_, err := svc.Authenticate(ctx, creds)
		require.NoError(t, err)
	}

	assert.EqualValues(t, 4, countTokens(t, svc.Repo.DB, user.ID, false))
	assert.EqualValues(t, 1, countTokens(t, svc.Repo.DB, user.ID, true))

	var invalid []models.Token
	require.NoError(t, svc.Repo.DB.
		Where("user_id = ? AND (expired = ? OR revoked = ?)", user.ID, true, true).
		Find(&invalid).Error)
	require.Len(t, invalid, 3)
	for _, tok := range invalid {
		assert.True(t, tok.Expired)
		assert.True(t, tok.Revoked)
	}
}

func TestAuthService_Authenticate_UnknownUser(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	_, err := svc.Authenticate(context.Background(), AuthenticateRequest{
		Email:    "nobody@example.com",
		Password: "Secret123",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_Authenticate_WrongPassword(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("jan@example.com"))
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, AuthenticateRequest{
		Email:    "jan@example.com",
		Password: "wrong",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_Refresh_RotatesAccessKeepsRefresh(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("jan@example.com"))
	require.NoError(t, err)

	loginRes, err := svc.Authenticate(ctx, AuthenticateRequest{
		Email:    "jan@example.com",
		Password: "Secret123",
	})
	require.NoError(t, err)

	res, err := svc.Refresh(ctx, "Bearer "+loginRes.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, loginRes.RefreshToken, res.RefreshToken)
	assert.NotEqual(t, loginRes.AccessToken, res.AccessToken)

	var user models.User
	require.NoError(t, svc.Repo.DB.Where("email = ?", "jan@example.com").First(&user).Error)

	assert.EqualValues(t, 1, countTokens(t, svc.Repo.DB, user.ID, true))

	var valid models.Token
	require.NoError(t, svc.Repo.DB.
		Where("user_id = ? AND expired = ? AND revoked = ?", user.ID, false, false).
		First(&valid).Error)
	assert.Equal(t, res.AccessToken, valid.Token)
}

func TestAuthService_Refresh_MalformedHeader_NoMutation(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("jan@example.com"))
	require.NoError(t, err)

	var before int64
	require.NoError(t, svc.Repo.DB.Model(&models.Token{}).Count(&before).Error)

	tests := []struct {
		name   string
		header string
	}{
		{name: "empty", header: ""},
		{name: "wrong scheme", header: "Token abc"},
		{name: "lowercase bearer", header: "bearer abc"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.Refresh(ctx, tt.header)
			require.Error(t, err)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrNoToken)
		})
	}

	var after int64
	require.NoError(t, svc.Repo.DB.Model(&models.Token{}).Count(&after).Error)
	assert.Equal(t, before, after)
}

func TestAuthService_Refresh_InvalidToken(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	res, err := svc.Refresh(context.Background(), "Bearer not-a-valid-jwt")

	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestAuthService_Refresh_UserVanished(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("jan@example.com"))
	require.NoError(t, err)
	loginRes, err := svc.Authenticate(ctx, AuthenticateRequest{
		Email:    "jan@example.com",
		Password: "Secret123",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Repo.DB.Where("email = ?", "jan@example.com").Delete(&models.User{}).Error)

	res, err := svc.Refresh(ctx, "Bearer "+loginRes.RefreshToken)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestAuthService_BootstrapAdmin_Idempotent(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	res, err := svc.BootstrapAdmin(ctx, "Admin", "Admin", "admin@gemora.pl", "AdminSecret")
	require.NoError(t, err)
	require.NotNil(t, res)
	require.NotEmpty(t, res.AccessToken)

	claims, err := tokens.AccessClaimsFromToken(res.AccessToken, svc.JWTSecret)
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, claims.Role)

	res, err = svc.BootstrapAdmin(ctx, "Admin", "Admin", "admin@gemora.pl", "AdminSecret")
	require.NoError(t, err)
	assert.Nil(t, res)

	var count int64
	require.NoError(t, svc.Repo.DB.Model(&models.User{}).
		Where("email = ?", "admin@gemora.pl").
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestAuthService_UserExists_Idempotent(t *testing.T) {
	t.Parallel()

	svc := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest("jan@example.com"))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		exists, err := svc.UserExists(ctx, "jan@example.com")
		require.NoError(t, err)
		assert.True(t, exists)

		exists, err = svc.UserExists(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.False(t, exists)
	}
}
