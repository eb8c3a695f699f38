package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/gemora/gemora/internal/service"
)

type UserHTTP struct {
	Svc *service.UserService
}

func (h *UserHTTP) GetUser(c echo.Context) error {
	email := c.Param("email")

	user, err := h.Svc.GetUser(c.Request().Context(), email)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "user not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}

	return c.JSON(http.StatusOK, user)
}
