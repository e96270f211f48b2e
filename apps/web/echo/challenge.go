package echoweb

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core/challenge"
)

type challengeDetail struct {
	Challenge  challenge.Challenge
	Done       bool
	Submission challenge.Submission
}

func (s *server) challenge(ctx echo.Context) error {
	detail, err := s.challengeDetail(ctx)
	if err != nil {
		return err
	}
	return s.render(ctx, "challenge", detail)
}

func (s *server) challengeDetail(ctx echo.Context) (challengeDetail, error) {
	id, err := intParam(ctx, "id")
	if err != nil {
		return challengeDetail{}, err
	}
	ch, err := s.deps.ChallengeSvc.Get(ctx.Request().Context(), id)
	if err != nil {
		return challengeDetail{}, notFound(err, challenge.ErrNotFound)
	}

	usr, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return challengeDetail{}, s.redirectToLogin(ctx)
	}

	detail := challengeDetail{Challenge: ch}
	sub, err := s.deps.ChallengeSvc.GetUserSubmission(ctx.Request().Context(), usr.ID, ch.ID)
	if err == nil {
		detail.Done = true
		detail.Submission = sub
	} else if errors.Cause(err) != challenge.ErrSubmissionNotFound {
		return challengeDetail{}, errors.Wrap(err, "finding user submission")
	}
	return detail, nil
}

func (s *server) submitChallenge(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	ch, err := s.deps.ChallengeSvc.Get(ctx.Request().Context(), id)
	if err != nil {
		return notFound(err, challenge.ErrNotFound)
	}

	usr, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return s.redirectToLogin(ctx)
	}

	file, err := ctx.FormFile("proof_file")
	if err != nil {
		return s.renderSubmitError(ctx, ch, map[string]string{"proof_file": "a proof file is required"})
	}
	if file.Size > s.deps.Conf.Uploads.MaxSize {
		return s.renderSubmitError(ctx, ch, map[string]string{"proof_file": "file is too large"})
	}

	src, err := file.Open()
	if err != nil {
		return errors.Wrap(err, "opening proof file")
	}
	defer func() { _ = src.Close() }()

	if _, err = s.deps.ChallengeSvc.Submit(ctx.Request().Context(), usr, ch, file.Filename, src); err != nil {
		switch cause := errors.Cause(err); {
		case cause == challenge.ErrAlreadySubmitted:
			addFlash(ctx, flashWarning, "You have already submitted this challenge.")
			return ctx.Redirect(http.StatusSeeOther, "/challenge/"+ctx.Param("id"))
		default:
			if fldErrs, ok := s.fieldErrors(err); ok {
				return s.renderSubmitError(ctx, ch, fldErrs)
			}
			return errors.Wrap(err, "submitting challenge")
		}
	}

	addFlash(ctx, flashSuccess, "Submission received! Awaiting review.")
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *server) renderSubmitError(ctx echo.Context, ch challenge.Challenge, fldErrs map[string]string) error {
	return s.render(ctx, "challenge", challengeDetail{Challenge: ch}, fldErrs)
}

type challengeForm struct {
	challenge.NewChallenge
	Edit bool
}

func (s *server) challengePage(ctx echo.Context) error {
	form := challengeForm{NewChallenge: challenge.NewChallenge{Points: challenge.DefaultPoints}}
	if ctx.Param("id") != "" {
		id, err := intParam(ctx, "id")
		if err != nil {
			return err
		}
		ch, err := s.deps.ChallengeSvc.Get(ctx.Request().Context(), id)
		if err != nil {
			return notFound(err, challenge.ErrNotFound)
		}
		form = challengeForm{
			NewChallenge: challenge.NewChallenge{Title: ch.Title, Description: ch.Description, Points: ch.Points},
			Edit:         true,
		}
	}
	return s.render(ctx, "challenge_form", form)
}

func (s *server) createChallenge(ctx echo.Context) error {
	var data challenge.NewChallenge
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChallenge")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			return s.render(ctx, "challenge_form", challengeForm{NewChallenge: data}, fldErrs)
		}
		return err
	}

	if _, err := s.deps.ChallengeSvc.Create(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "creating challenge")
	}
	addFlash(ctx, flashSuccess, "Challenge created.")
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *server) editChallenge(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data challenge.NewChallenge
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewChallenge")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			return s.render(ctx, "challenge_form", challengeForm{NewChallenge: data, Edit: true}, fldErrs)
		}
		return err
	}

	if _, err := s.deps.ChallengeSvc.Update(ctx.Request().Context(), id, data); err != nil {
		return notFound(err, challenge.ErrNotFound)
	}
	addFlash(ctx, flashSuccess, "Challenge updated.")
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *server) deleteChallenge(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := s.deps.ChallengeSvc.Delete(ctx.Request().Context(), id); err != nil {
		return notFound(err, challenge.ErrNotFound)
	}
	addFlash(ctx, flashInfo, "Challenge deleted.")
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

// reviewSubmission applies a teacher's decision. Unknown actions fall through
// as a no-op; points are only ever awarded on the pending → approved
// transition.
func (s *server) reviewSubmission(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	action := ctx.Param("action")
	sub, err := s.deps.ChallengeSvc.Review(ctx.Request().Context(), id, action)
	if err != nil {
		return notFound(err, challenge.ErrSubmissionNotFound)
	}

	switch {
	case action == challenge.ActionApprove && sub.Status == challenge.StatusApproved:
		addFlash(ctx, flashSuccess, "Submission approved and points awarded.")
	case action == challenge.ActionReject && sub.Status == challenge.StatusRejected:
		addFlash(ctx, flashInfo, "Submission rejected.")
	}
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}
