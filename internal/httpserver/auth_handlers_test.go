package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gemora/gemora/internal/models"
	"github.com/gemora/gemora/internal/mykafka"
	"github.com/gemora/gemora/internal/repo"
	"github.com/gemora/gemora/internal/service"
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

func newAuthEnv(t *testing.T) (*AuthHTTP, *service.AuthService) {
	t.Helper()

	svc := &service.AuthService{
		Repo:          &repo.GormRepo{DB: initTestDB(t)},
		JWTSecret:     []byte("test-jwt-secret"),
		RefreshSecret: []byte("test-refresh-secret"),
	}
	return &AuthHTTP{Svc: svc, Producer: &mykafka.Producer{}}, svc
}

func jsonRequest(t *testing.T, method, path string, payload any) (*httptest.ResponseRecorder, echo.Context) {
	t.Helper()

	var body bytes.Buffer
	if payload != nil {
		require.NoError(t, json.NewEncoder(&body).Encode(payload))
	}

	e := echo.New()
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return rec, e.NewContext(req, rec)
}

func registerPayload(email string) map[string]string {
	return map[string]string{
		"firstname": "Jan",
		"lastname":  "Kowalski",
		"email":     email,
		"password":  "Secret123",
	}
}

func TestRegisterHandler_Success(t *testing.T) {
	t.Parallel()

	h, _ := newAuthEnv(t)
	rec, c := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerPayload("jan@example.com"))

	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var res service.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
}

func TestRegisterHandler_DuplicateEmail(t *testing.T) {
	t.Parallel()

	h, _ := newAuthEnv(t)

	rec, c := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerPayload("jan@example.com"))
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusOK, rec.Code)

	_, c = jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerPayload("jan@example.com"))
	err := h.Register(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusConflict, he.Code)
}

func TestRegisterHandler_InvalidEmail(t *testing.T) {
	t.Parallel()

	h, _ := newAuthEnv(t)
	rec, c := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerPayload("janexample.com"))

	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res validationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res.ValidationErrors, "email")
}

func TestRegisterHandler_BlankFields(t *testing.T) {
	t.Parallel()

	h, _ := newAuthEnv(t)
	rec, c := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", map[string]string{
		"email": "jan@example.com",
	})

	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res validationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res.ValidationErrors, "firstname")
	assert.Contains(t, res.ValidationErrors, "lastname")
	assert.Contains(t, res.ValidationErrors, "password")
}

func TestAuthenticateHandler_Success(t *testing.T) {
	t.Parallel()

	h, _ := newAuthEnv(t)
	_, c := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerPayload("jan@example.com"))
	require.NoError(t, h.Register(c))

	rec, c := jsonRequest(t, http.MethodPost, "/api/v1/auth/authenticate", map[string]string{
		"email":    "jan@example.com",
		"password": "Secret123",
	})
	require.NoError(t, h.Authenticate(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var res service.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.NotEmpty(t, res.AccessToken)
	assert.NotEmpty(t, res.RefreshToken)
}

func TestAuthenticateHandler_UnknownUser(t *testing.T) {
	t.Parallel()

	h, _ := newAuthEnv(t)
	rec, c := jsonRequest(t, http.MethodPost, "/api/v1/auth/authenticate", map[string]string{
		"email":    "nobody@example.com",
		"password": "Secret123",
	})

	require.NoError(t, h.Authenticate(c))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var res validationErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Contains(t, res.ValidationErrors, "error")
}

func TestAuthenticateHandler_WrongPassword(t *testing.T) {
	t.Parallel()

	h, _ := newAuthEnv(t)
	_, c := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerPayload("jan@example.com"))
	require.NoError(t, h.Register(c))

	_, c = jsonRequest(t, http.MethodPost, "/api/v1/auth/authenticate", map[string]string{
		"email":    "jan@example.com",
		"password": "wrong",
	})
	err := h.Authenticate(c)
	he, ok := err.(*echo.HTTPError)
	require.True(t, ok, "expected HTTPError")
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestRefreshTokenHandler_MissingHeader(t *testing.T) {
	t.Parallel()

	h, _ := newAuthEnv(t)
	rec, c := jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh-token", nil)

	require.NoError(t, h.RefreshToken(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Empty(t, rec.Body.Bytes())
}

func TestRefreshTokenHandler_Success(t *testing.T) {
	t.Parallel()

	h, _ := newAuthEnv(t)
	rec, c := jsonRequest(t, http.MethodPost, "/api/v1/auth/register", registerPayload("jan@example.com"))
	require.NoError(t, h.Register(c))

	var registered service.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &registered))

	rec, c = jsonRequest(t, http.MethodPost, "/api/v1/auth/refresh-token", nil)
	c.Request().Header.Set(echo.HeaderAuthorization, "Bearer "+registered.RefreshToken)

	require.NoError(t, h.RefreshToken(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var res service.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, registered.RefreshToken, res.RefreshToken)
	assert.NotEqual(t, registered.AccessToken, res.AccessToken)
}
