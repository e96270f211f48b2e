package echoweb

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core/learning"
)

func intParam(ctx echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(ctx.Param(name))
	if err != nil {
		return 0, errPageNotFound
	}
	return id, nil
}

// Modules

func (s *server) module(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	mod, err := s.deps.LearningSvc.GetModule(ctx.Request().Context(), id)
	if err != nil {
		return notFound(err, learning.ErrModuleNotFound)
	}
	quizzes, err := s.deps.LearningSvc.QueryQuizzes(ctx.Request().Context(), mod.ID)
	if err != nil {
		return errors.Wrap(err, "querying module quizzes")
	}

	return s.render(ctx, "module", struct {
		Module  learning.Module
		Quizzes []learning.Quiz
	}{mod, quizzes})
}

type moduleForm struct {
	learning.NewModule
	Edit bool
}

func (s *server) modulePage(ctx echo.Context) error {
	form := moduleForm{}
	if ctx.Param("id") != "" {
		id, err := intParam(ctx, "id")
		if err != nil {
			return err
		}
		mod, err := s.deps.LearningSvc.GetModule(ctx.Request().Context(), id)
		if err != nil {
			return notFound(err, learning.ErrModuleNotFound)
		}
		form = moduleForm{
			NewModule: learning.NewModule{Title: mod.Title, Description: mod.Description, Content: mod.Content.String},
			Edit:      true,
		}
	}
	return s.render(ctx, "module_form", form)
}

func (s *server) createModule(ctx echo.Context) error {
	var data learning.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			return s.render(ctx, "module_form", moduleForm{NewModule: data}, fldErrs)
		}
		return err
	}

	if _, err := s.deps.LearningSvc.CreateModule(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "creating module")
	}
	addFlash(ctx, flashSuccess, "Module created.")
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *server) editModule(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data learning.NewModule
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewModule")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			return s.render(ctx, "module_form", moduleForm{NewModule: data, Edit: true}, fldErrs)
		}
		return err
	}

	if _, err := s.deps.LearningSvc.UpdateModule(ctx.Request().Context(), id, data); err != nil {
		return notFound(err, learning.ErrModuleNotFound)
	}
	addFlash(ctx, flashSuccess, "Module updated.")
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *server) deleteModule(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := s.deps.LearningSvc.DeleteModule(ctx.Request().Context(), id); err != nil {
		return notFound(err, learning.ErrModuleNotFound)
	}
	addFlash(ctx, flashInfo, "Module deleted.")
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

// Quizzes

func (s *server) quiz(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	qz, err := s.deps.LearningSvc.GetQuiz(ctx.Request().Context(), id)
	if err != nil {
		return notFound(err, learning.ErrQuizNotFound)
	}
	return s.render(ctx, "quiz", struct{ Quiz learning.Quiz }{qz})
}

func (s *server) takeQuiz(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	qz, err := s.deps.LearningSvc.GetQuiz(ctx.Request().Context(), id)
	if err != nil {
		return notFound(err, learning.ErrQuizNotFound)
	}

	usr, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return s.redirectToLogin(ctx)
	}

	correct, points, err := s.deps.LearningSvc.EvaluateAnswer(ctx.Request().Context(), usr, qz, ctx.FormValue("answer"))
	if err != nil {
		return errors.Wrap(err, "evaluating quiz answer")
	}
	if correct {
		addFlash(ctx, flashSuccess, fmt.Sprintf("Correct! You earned %d Eco Points.", points))
	} else {
		addFlash(ctx, flashDanger, "Incorrect answer. Try again!")
	}
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func packQuizOptions(options []string) (string, error) {
	data, err := json.Marshal(options)
	return string(data), errors.Wrap(err, "encoding quiz options")
}

type quizForm struct {
	learning.NewQuiz
	Edit    bool
	Modules []learning.Module
}

func (s *server) newQuizForm(ctx echo.Context, data learning.NewQuiz, edit bool) (quizForm, error) {
	modules, err := s.deps.LearningSvc.QueryModules(ctx.Request().Context())
	if err != nil {
		return quizForm{}, errors.Wrap(err, "querying modules")
	}
	return quizForm{NewQuiz: data, Edit: edit, Modules: modules}, nil
}

func (s *server) quizPage(ctx echo.Context) error {
	var data learning.NewQuiz
	var edit bool
	if ctx.Param("id") != "" {
		id, err := intParam(ctx, "id")
		if err != nil {
			return err
		}
		qz, err := s.deps.LearningSvc.GetQuiz(ctx.Request().Context(), id)
		if err != nil {
			return notFound(err, learning.ErrQuizNotFound)
		}
		options, err := packQuizOptions(qz.Options)
		if err != nil {
			return err
		}
		data = learning.NewQuiz{
			Question:      qz.Question,
			Options:       options,
			CorrectAnswer: qz.CorrectAnswer,
			Points:        qz.Points,
			ModuleID:      qz.ModuleID,
		}
		edit = true
	}

	form, err := s.newQuizForm(ctx, data, edit)
	if err != nil {
		return err
	}
	return s.render(ctx, "quiz_form", form)
}

func (s *server) createQuiz(ctx echo.Context) error {
	var data learning.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			form, fErr := s.newQuizForm(ctx, data, false)
			if fErr != nil {
				return fErr
			}
			return s.render(ctx, "quiz_form", form, fldErrs)
		}
		return err
	}

	if _, err := s.deps.LearningSvc.CreateQuiz(ctx.Request().Context(), data); err != nil {
		return notFound(err, learning.ErrModuleNotFound)
	}
	addFlash(ctx, flashSuccess, "Quiz created.")
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *server) editQuiz(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}

	var data learning.NewQuiz
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewQuiz")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			form, fErr := s.newQuizForm(ctx, data, true)
			if fErr != nil {
				return fErr
			}
			return s.render(ctx, "quiz_form", form, fldErrs)
		}
		return err
	}

	if _, err := s.deps.LearningSvc.UpdateQuiz(ctx.Request().Context(), id, data); err != nil {
		return notFound(err, learning.ErrQuizNotFound, learning.ErrModuleNotFound)
	}
	addFlash(ctx, flashSuccess, "Quiz updated.")
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}

func (s *server) deleteQuiz(ctx echo.Context) error {
	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	if err := s.deps.LearningSvc.DeleteQuiz(ctx.Request().Context(), id); err != nil {
		return notFound(err, learning.ErrQuizNotFound)
	}
	addFlash(ctx, flashInfo, "Quiz deleted.")
	return ctx.Redirect(http.StatusSeeOther, "/dashboard")
}
