package echoweb

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const flashCookieName = "mzflash"

// flash levels
const (
	flashInfo    = "info"
	flashSuccess = "success"
	flashWarning = "warning"
	flashDanger  = "danger"
)

// addFlash queues a notification for the next rendered page.
func addFlash(ctx echo.Context, level, message string) {
	flashes := readFlashes(ctx)
	flashes = append(flashes, Flash{Level: level, Message: message})

	data, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	ctx.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    base64.URLEncoding.EncodeToString(data),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// popFlashes returns the queued notifications and clears them.
func popFlashes(ctx echo.Context) []Flash {
	flashes := readFlashes(ctx)
	if len(flashes) > 0 {
		ctx.SetCookie(&http.Cookie{
			Name:     flashCookieName,
			Value:    "",
			Path:     "/",
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Expires:  time.Unix(0, 0),
			MaxAge:   -1,
		})
	}
	return flashes
}

func readFlashes(ctx echo.Context) []Flash {
	cookie, err := ctx.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return nil
	}
	data, err := base64.URLEncoding.DecodeString(cookie.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err = json.Unmarshal(data, &flashes); err != nil {
		return nil
	}
	return flashes
}
