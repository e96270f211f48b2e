package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// sessionRequired gates a route behind a valid session cookie. Anonymous or
// expired sessions are softly redirected to the login page.
func (s *server) sessionRequired(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		cookie, err := ctx.Cookie(s.deps.Conf.Server.SessionCookieName)
		if err != nil || cookie.Value == "" {
			return s.redirectToLogin(ctx)
		}
		claims, err := parseToken(cookie.Value, s.deps.Conf)
		if err != nil {
			s.clearSessionCookie(ctx)
			return s.redirectToLogin(ctx)
		}
		ctx.Set(contextClaimsKey, claims)
		return next(ctx)
	}
}

// requireRole gates a route behind a role. The wrong role never gets an
// error page; it is flashed a warning and sent back to its dashboard.
func (s *server) requireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return s.redirectToLogin(ctx)
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			addFlash(ctx, flashWarning, "You do not have permission to access this page.")
			return ctx.Redirect(http.StatusSeeOther, "/dashboard")
		}
	}
}

func (s *server) redirectToLogin(ctx echo.Context) error {
	addFlash(ctx, flashWarning, "Please log in to continue.")
	return ctx.Redirect(http.StatusSeeOther, "/login")
}
