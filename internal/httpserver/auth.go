package httpserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/gemora/gemora/internal/mykafka"
	"github.com/gemora/gemora/internal/service"
	"github.com/gemora/gemora/pkg/logging"
)

type AuthHTTP struct {
	Svc      *service.AuthService
	Producer *mykafka.Producer
}

type validationErrorResponse struct {
	ValidationErrors map[string]string `json:"validationErrors"`
}

func validationErrors(c echo.Context, errs map[string]string) error {
	return c.JSON(http.StatusBadRequest, validationErrorResponse{ValidationErrors: errs})
}

func (h *AuthHTTP) publish(c echo.Context, key string, event map[string]any) {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Producer.PublishEvent(ctx, "user_events", key, event); err != nil {
		c.Logger().Errorf("Kafka publish error: %v", err)
	}
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req service.RegisterRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	errs := map[string]string{}
	if req.FirstName == "" {
		errs["firstname"] = "must not be blank"
	}
	if req.LastName == "" {
		errs["lastname"] = "must not be blank"
	}
	if req.Password == "" {
		errs["password"] = "must not be blank"
	}
	if len(errs) > 0 {
		l.Warn("register_error", "status", 400, "reason", "validation")
		return validationErrors(c, errs)
	}

	res, err := h.Svc.Register(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailValidation):
			return validationErrors(c, map[string]string{"email": "Invalid email format. Example: gemora@com.pl"})
		case errors.Is(err, service.ErrEmailExists):
			return echo.NewHTTPError(http.StatusConflict, "email already exists")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	h.publish(c, req.Email, map[string]any{
		"type":  "user_registered",
		"email": req.Email,
	})

	return c.JSON(http.StatusOK, res)
}

func (h *AuthHTTP) Authenticate(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_authenticate")

	var req service.AuthenticateRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("authenticate_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.Email == "" || req.Password == "" {
		l.Warn("authenticate_error", "status", 400, "reason", "validation")
		return validationErrors(c, map[string]string{"error": "email and password are required"})
	}

	res, err := h.Svc.Authenticate(ctx, req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			return validationErrors(c, map[string]string{"error": "user does not exist"})
		case errors.Is(err, service.ErrInvalidCredentials):
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	h.publish(c, req.Email, map[string]any{
		"type":  "user_logged_in",
		"email": req.Email,
	})

	return c.JSON(http.StatusOK, res)
}

// RefreshToken answers with a token pair only when the presented refresh token
// passes validation; every failure path produces an empty body.
func (h *AuthHTTP) RefreshToken(c echo.Context) error {
	ctx := c.Request().Context()

	header := c.Request().Header.Get(echo.HeaderAuthorization)
	res, err := h.Svc.Refresh(ctx, header)
	if err != nil {
		if errors.Is(err, service.ErrNoToken) {
			return c.NoContent(http.StatusUnauthorized)
		}
		if errors.Is(err, service.ErrUserNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		if errors.Is(err, service.ErrInvalidRefreshToken) {
			return c.NoContent(http.StatusUnauthorized)
		}
		return c.NoContent(http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, res)
}
