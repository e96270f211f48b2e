package echoweb

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

func (s *server) game(ctx echo.Context) error {
	usr, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return s.redirectToLogin(ctx)
	}
	return s.render(ctx, "game", struct{ Coins int }{usr.GreenCoins})
}

// saveGameProgress overwrites the player's green coin balance with the value
// the game client reports.
func (s *server) saveGameProgress(ctx echo.Context) error {
	usr, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return s.redirectToLogin(ctx)
	}

	coins, err := strconv.Atoi(ctx.FormValue("coins"))
	if err != nil {
		addFlash(ctx, flashDanger, "Invalid coin count.")
		return ctx.Redirect(http.StatusSeeOther, "/game")
	}

	if _, err = s.deps.UserSvc.SetGreenCoins(ctx.Request().Context(), usr.ID, coins); err != nil {
		return errors.Wrap(err, "setting green coins")
	}
	addFlash(ctx, flashSuccess, "Progress saved!")
	return ctx.Redirect(http.StatusSeeOther, "/game")
}
