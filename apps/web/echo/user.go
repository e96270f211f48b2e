package echoweb

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/challenge"
	"github.com/trezcool/mazingira/core/user"
)

const topUserCount = 5

type LoginRequest struct {
	Email    string `form:"email" validate:"required"`
	Password string `form:"password" validate:"required"`
}

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (s *server) home(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	modules, err := s.deps.LearningSvc.QueryModules(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	challenges, err := s.deps.ChallengeSvc.QueryAll(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying challenges")
	}
	topUsers, err := s.deps.UserSvc.TopUsers(reqCtx, topUserCount)
	if err != nil {
		return errors.Wrap(err, "querying top users")
	}

	return s.render(ctx, "index", struct {
		Modules    interface{}
		Challenges interface{}
		TopUsers   []user.User
	}{modules, challenges, topUsers})
}

func (s *server) registerPage(ctx echo.Context) error {
	return s.render(ctx, "register", user.NewUser{})
}

func (s *server) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}

	if err := data.Validate(ctx.Request().Context(), s.deps.Validate, s.deps.UserSvc); err != nil {
		if errors.Cause(err) == user.ErrEmailExists || causeIsEmailExists(err) {
			addFlash(ctx, flashDanger, "This email is already registered.")
			return ctx.Redirect(http.StatusSeeOther, "/register")
		}
		if fldErrs, ok := s.fieldErrors(err); ok {
			return s.render(ctx, "register", data, fldErrs)
		}
		return err
	}

	if _, err := s.deps.UserSvc.Register(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "registering user")
	}
	addFlash(ctx, flashSuccess, "Registration successful. Please log in.")
	return ctx.Redirect(http.StatusSeeOther, "/login")
}

// causeIsEmailExists detects the uniqueness failure buried in a ValidationError.
func causeIsEmailExists(err error) bool {
	if vErr, ok := errors.Cause(err).(*core.ValidationError); ok {
		return errors.Cause(vErr.Err) == user.ErrEmailExists
	}
	return false
}

func (s *server) loginPage(ctx echo.Context) error {
	return s.render(ctx, "login", LoginRequest{})
}

func (s *server) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			return s.render(ctx, "login", data, fldErrs)
		}
		return err
	}

	usr, err := s.authenticate(ctx.Request().Context(), data.Email, data.Password)
	if err != nil {
		if errors.Cause(err) == errAuthenticationFailed {
			return s.render(ctx, "login", data, map[string]string{"credentials": "Invalid email or password"})
		}
		return errors.Wrap(err, "authenticating")
	}

	if err = s.setSessionCookie(ctx, usr); err != nil {
		return errors.Wrap(err, "setting session cookie")
	}
	addFlash(ctx, flashSuccess, fmt.Sprintf("Welcome back, %s!", usr.Name))
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *server) logout(ctx echo.Context) error {
	s.clearSessionCookie(ctx)
	addFlash(ctx, flashInfo, "You have been logged out.")
	return ctx.Redirect(http.StatusSeeOther, "/")
}

// submissionRow pairs a submission with its author's name for the teacher
// dashboard table.
type submissionRow struct {
	challenge.Submission
	UserName string
}

func (s *server) dashboard(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	usr, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return s.redirectToLogin(ctx)
	}

	modules, err := s.deps.LearningSvc.QueryModules(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying modules")
	}
	challenges, err := s.deps.ChallengeSvc.QueryAll(reqCtx)
	if err != nil {
		return errors.Wrap(err, "querying challenges")
	}

	if usr.IsTeacher() {
		subs, err := s.deps.ChallengeSvc.QuerySubmissions(reqCtx)
		if err != nil {
			return errors.Wrap(err, "querying submissions")
		}
		rows, err := s.submissionRows(ctx, subs)
		if err != nil {
			return err
		}
		return s.render(ctx, "dashboard_teacher", struct {
			Modules     interface{}
			Challenges  interface{}
			Submissions []submissionRow
		}{modules, challenges, rows})
	}

	leaderboard, err := s.deps.UserSvc.Leaderboard(reqCtx, topUserCount)
	if err != nil {
		return errors.Wrap(err, "querying leaderboard")
	}
	return s.render(ctx, "dashboard_student", struct {
		Modules     interface{}
		Challenges  interface{}
		Leaderboard []user.User
	}{modules, challenges, leaderboard})
}

func (s *server) submissionRows(ctx echo.Context, subs []challenge.Submission) ([]submissionRow, error) {
	ids := make([]int, 0, len(subs))
	seen := make(map[int]bool, len(subs))
	for _, sub := range subs {
		if !seen[sub.UserID] {
			seen[sub.UserID] = true
			ids = append(ids, sub.UserID)
		}
	}

	users, err := s.deps.UserSvc.GetByIDs(ctx.Request().Context(), ids)
	if err != nil {
		return nil, errors.Wrap(err, "querying submission authors")
	}
	names := make(map[int]string, len(users))
	for _, u := range users {
		names[u.ID] = u.Name
	}

	rows := make([]submissionRow, 0, len(subs))
	for _, sub := range subs {
		rows = append(rows, submissionRow{Submission: sub, UserName: names[sub.UserID]})
	}
	return rows, nil
}
