package echoweb

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/user"
)

var (
	errSessionInvalid       = errors.New("session invalid or expired")
	errAuthenticationFailed = errors.New("authentication failed")
	errPageNotFound         = echo.NewHTTPError(http.StatusNotFound, "page not found")
)

// fieldErrors extracts per-field messages from a validation error so a form
// page can re-render with them inline.
func (s *server) fieldErrors(err error) (map[string]string, bool) {
	switch origErr := errors.Cause(err).(type) {
	case validator.ValidationErrors:
		fldErrs := make(map[string]string, len(origErr))
		for _, vErr := range origErr {
			fldErrs[vErr.Field()] = vErr.Translate(s.deps.Translator)
		}
		return fldErrs, true
	case *core.ValidationError:
		fldErrs := make(map[string]string, len(origErr.Fields))
		for _, fErr := range origErr.Fields {
			fldErrs[fErr.Field] = fErr.Error
		}
		if len(fldErrs) == 0 && origErr.Err != nil {
			fldErrs["detail"] = origErr.Error()
		}
		return fldErrs, true
	}
	return nil, false
}

// newHTTPErrorHandler handles whatever the handlers did not: 404s for missing
// entities, plain error pages for the rest. A core shutdown error signals the
// server to stop.
func (s *server) newHTTPErrorHandler() echo.HTTPErrorHandler {
	return func(err error, ctx echo.Context) {
		code := http.StatusInternalServerError
		message := http.StatusText(code)

		switch origErr := errors.Cause(err).(type) {
		case *echo.HTTPError:
			code = origErr.Code
			if msg, ok := origErr.Message.(string); ok {
				message = msg
			}
		default:
			var usr user.User
			if claims, cErr := getContextClaims(ctx); cErr == nil {
				usr.ID = claims.UserID()
				usr.Name = claims.Name
				usr.Email = claims.Email
			}
			s.deps.Logger.Error(message, errors.Wrap(err, message), usr)

			if core.IsShutdown(err) {
				s.shutdown <- nil
			}
		}

		if ctx.Echo().Debug && code >= http.StatusInternalServerError {
			message = err.Error()
		}

		if !ctx.Response().Committed {
			var rErr error
			if ctx.Request().Method == http.MethodHead {
				rErr = ctx.NoContent(code)
			} else {
				rErr = ctx.String(code, message)
			}
			if rErr != nil {
				ctx.Echo().Logger.Error(rErr)
			}
		}
	}
}

// notFound maps a missing-entity error to a hard 404; anything else passes
// through for the error handler.
func notFound(err error, notFoundErrs ...error) error {
	cause := errors.Cause(err)
	for _, nfErr := range notFoundErrs {
		if cause == nfErr {
			return errPageNotFound
		}
	}
	return err
}
