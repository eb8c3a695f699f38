package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/gemora/gemora/internal/models"
	"github.com/gemora/gemora/internal/repo"
	"github.com/gemora/gemora/pkg/tokens"
)

const bearerPrefix = "Bearer "

type AuthMiddleware struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
}

func NewAuthMiddleware(r *repo.GormRepo, secret []byte) *AuthMiddleware {
	return &AuthMiddleware{Repo: r, JWTSecret: secret}
}

// RequireAuth accepts only access tokens that are both cryptographically valid
// and still marked usable in the tokens table.
func (m *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		if !strings.HasPrefix(header, bearerPrefix) {
			return echo.NewHTTPError(http.StatusUnauthorized, "missing access token")
		}
		raw := strings.TrimPrefix(header, bearerPrefix)

		claims, err := tokens.AccessClaimsFromToken(raw, m.JWTSecret)
		if err != nil || claims == nil {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		stored, err := m.Repo.FindToken(c.Request().Context(), raw)
		if err != nil || stored.Expired || stored.Revoked {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid or expired token")
		}

		c.Set("email", claims.Subject)
		c.Set("role", claims.Role)

		return next(c)
	}
}

func (m *AuthMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.RequireAuth(func(c echo.Context) error {
		role, _ := c.Get("role").(string)
		if role != models.RoleAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin only")
		}
		return next(c)
	})
}
