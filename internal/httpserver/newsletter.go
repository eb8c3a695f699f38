package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gemora/gemora/internal/service"
	"github.com/gemora/gemora/pkg/logging"
)

type NewsletterHTTP struct {
	Svc *service.NewsletterService
}

func (h *NewsletterHTTP) Subscribe(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "newsletter_subscribe")

	var req struct {
		EmailAddress string `json:"emailAddress"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("subscribe_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	if err := h.Svc.Subscribe(ctx, req.EmailAddress); err != nil {
		switch {
		case errors.Is(err, service.ErrEmailValidation):
			return validationErrors(c, map[string]string{"emailAddress": "Invalid email format. Example: gemora@com.pl"})
		case errors.Is(err, service.ErrEmailExists):
			return echo.NewHTTPError(http.StatusConflict, "email already exists")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "email added"})
}
