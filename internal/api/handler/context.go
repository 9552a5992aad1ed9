package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/smartcompute/monitoring-system/internal/core/domain"
)

// ctxClaims extracts the auth claims injected by the Auth middleware and
// performs a fast-fail check before any service call:
//   - role must be non-empty (presence proves the middleware ran).
//   - analyst role requires a non-empty team_id; without it the JWT is
//     structurally valid but operationally unusable, so reject with 401.
func ctxClaims(c echo.Context) (role, teamID string, err error) {
	role, _ = c.Get("role").(string)
	if role == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	teamID, _ = c.Get("team_id").(string)
	if role == domain.RoleAnalyst && teamID == "" {
		return "", "", echo.NewHTTPError(http.StatusUnauthorized, "token missing team identity")
	}

	return role, teamID, nil
}
