package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/gemora/gemora/internal/models"
	"github.com/gemora/gemora/internal/repo"
	"github.com/gemora/gemora/internal/validation"
	"github.com/gemora/gemora/pkg/hash"
	"github.com/gemora/gemora/pkg/logging"
	"github.com/gemora/gemora/pkg/tokens"
)

var (
	ErrEmailValidation     = errors.New("invalid email format")
	ErrEmailExists         = errors.New("email already exists")
	ErrUserNotFound        = errors.New("user not found")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrNoToken             = errors.New("no bearer token")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 7 * 24 * time.Hour

	bearerPrefix = "Bearer "
)

type AuthService struct {
	Repo          *repo.GormRepo
	JWTSecret     []byte
	RefreshSecret []byte
}

type RegisterRequest struct {
	FirstName string `json:"firstname"`
	LastName  string `json:"lastname"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role,omitempty"`
}

type AuthenticateRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register", "email", req.Email)

	if !validation.IsValidEmail(req.Email) {
		l.Warn("register_failed", "status", 400, "reason", "invalid_email_format")
		return nil, fmt.Errorf("%w: %s", ErrEmailValidation, req.Email)
	}

	exists, err := s.Repo.UserExists(ctx, req.Email)
	if err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}
	if exists {
		l.Warn("register_failed", "status", 409, "reason", "email_exists")
		return nil, ErrEmailExists
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := models.User{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: pwHash,
		Role:         role,
	}
	if err := s.Repo.CreateUser(ctx, &user); err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}

	res, err := s.issueTokens(user)
	if err != nil {
		l.Error("register_failed", "status", 500, "reason", "cannot create token", "error", err)
		return nil, err
	}

	// A brand-new user holds no tokens, so nothing to revoke here.
	if err := s.Repo.SaveToken(ctx, &models.Token{
		UserID:    user.ID,
		Token:     res.AccessToken,
		TokenType: models.TokenTypeBearer,
	}); err != nil {
		l.Error("register_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("register_success")
	return res, nil
}

func (s *AuthService) Authenticate(ctx context.Context, req AuthenticateRequest) (*AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.authenticate", "email", req.Email)

	user, err := s.Repo.FindUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("authenticate_failed", "status", 400, "reason", "user_not_found")
			return nil, ErrUserNotFound
		}
		l.Error("authenticate_failed", "status", 500, "error", err)
		return nil, err
	}

	if !hash.CheckPassword(user.PasswordHash, req.Password) {
		l.Warn("authenticate_failed", "status", 401, "reason", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	res, err := s.issueTokens(*user)
	if err != nil {
		l.Error("authenticate_failed", "status", 500, "reason", "cannot create token", "error", err)
		return nil, err
	}

	if err := s.Repo.RotateUserToken(ctx, user.ID, &models.Token{
		UserID:    user.ID,
		Token:     res.AccessToken,
		TokenType: models.TokenTypeBearer,
	}); err != nil {
		l.Error("authenticate_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("authenticate_success")
	return res, nil
}

// Refresh rotates the access token from a presented refresh token. The
// refresh token itself is returned unchanged.
func (s *AuthService) Refresh(ctx context.Context, authHeader string) (*AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return nil, ErrNoToken
	}
	refreshToken := strings.TrimPrefix(authHeader, bearerPrefix)

	claims, err := tokens.RefreshClaimsFromToken(refreshToken, s.RefreshSecret)
	if err != nil || claims.Subject == "" {
		l.Warn("refresh_failed", "status", 401, "reason", "invalid_refresh_token", "error", err)
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.Repo.FindUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("refresh_failed", "status", 404, "reason", "user_not_found")
			return nil, ErrUserNotFound
		}
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	if claims.Subject != user.Email {
		l.Warn("refresh_failed", "status", 401, "reason", "subject_mismatch")
		return nil, ErrInvalidRefreshToken
	}

	accessToken, err := tokens.SignAccessToken(user.Email, user.Role, s.JWTSecret, time.Now().Add(accessTTL))
	if err != nil {
		l.Error("refresh_failed", "status", 500, "reason", "cannot create token", "error", err)
		return nil, err
	}

	if err := s.Repo.RotateUserToken(ctx, user.ID, &models.Token{
		UserID:    user.ID,
		Token:     accessToken,
		TokenType: models.TokenTypeBearer,
	}); err != nil {
		l.Error("refresh_failed", "status", 500, "error", err)
		return nil, err
	}

	l.Info("refresh_success")
	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// BootstrapAdmin seeds the configured admin account at process start. Re-runs
// are skipped when the admin email already exists.
func (s *AuthService) BootstrapAdmin(ctx context.Context, firstName, lastName, email, password string) (*AuthResponse, error) {
	l := logging.FromContext(ctx).With("svc", "auth.bootstrap_admin", "email", email)

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	admin := models.User{
		FirstName:    firstName,
		LastName:     lastName,
		Email:        email,
		PasswordHash: pwHash,
		Role:         models.RoleAdmin,
	}
	created, err := s.Repo.CreateUserIfNotExists(ctx, &admin)
	if err != nil {
		l.Error("bootstrap_failed", "error", err)
		return nil, err
	}
	if !created {
		l.Info("bootstrap_skipped", "reason", "admin_exists")
		return nil, nil
	}

	res, err := s.issueTokens(admin)
	if err != nil {
		l.Error("bootstrap_failed", "reason", "cannot create token", "error", err)
		return nil, err
	}

	if err := s.Repo.SaveToken(ctx, &models.Token{
		UserID:    admin.ID,
		Token:     res.AccessToken,
		TokenType: models.TokenTypeBearer,
	}); err != nil {
		l.Error("bootstrap_failed", "error", err)
		return nil, err
	}

	l.Info("bootstrap_success")
	return res, nil
}

func (s *AuthService) UserExists(ctx context.Context, email string) (bool, error) {
	return s.Repo.UserExists(ctx, email)
}

func (s *AuthService) issueTokens(user models.User) (*AuthResponse, error) {
	accessToken, err := tokens.SignAccessToken(user.Email, user.Role, s.JWTSecret, time.Now().Add(accessTTL))
	if err != nil {
		return nil, err
	}

	refreshToken, err := tokens.SignRefreshToken(user.Email, s.RefreshSecret, time.Now().Add(refreshTTL))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}
