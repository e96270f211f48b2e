package learning

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mazingira/core"
)

// DefaultQuizPoints is awarded when a quiz has no point value set.
const DefaultQuizPoints = 10

type Module struct {
	ID          int         `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Content     null.String `json:"content"`
}

type Quiz struct {
	ID            int      `json:"id"`
	Question      string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correct_answer"`
	Points        int      `json:"points"`
	ModuleID      int      `json:"module_id"`
}

// NewModule contains the module form fields; used for both create and edit.
type NewModule struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description" validate:"required"`
	Content     string `form:"content"`
}

func (nm *NewModule) Validate(validate *validator.Validate) error {
	nm.Title = core.CleanString(nm.Title)
	nm.Description = core.CleanString(nm.Description)
	nm.Content = core.CleanString(nm.Content)
	return validate.Struct(nm)
}

// NewQuiz contains the quiz form fields; Options is submitted as a JSON string.
type NewQuiz struct {
	Question      string `form:"question" validate:"required"`
	Options       string `form:"options" validate:"required"`
	CorrectAnswer string `form:"correct_answer" validate:"required"`
	Points        int    `form:"points" validate:"omitempty,min=1,max=100"`
	ModuleID      int    `form:"module_id" validate:"required"`

	options []string
}

func (nq *NewQuiz) Validate(validate *validator.Validate) error {
	nq.Question = core.CleanString(nq.Question)
	nq.Options = core.CleanString(nq.Options)
	nq.CorrectAnswer = core.CleanString(nq.CorrectAnswer)

	if err := validate.Struct(nq); err != nil {
		return err
	}

	if err := json.Unmarshal([]byte(nq.Options), &nq.options); err != nil {
		return core.NewValidationError(err, core.FieldError{Field: "options", Error: "options must be a JSON array of strings"})
	}
	if len(nq.options) < 2 {
		return core.NewValidationError(nil, core.FieldError{Field: "options", Error: "at least 2 options are required"})
	}
	return nil
}

// OptionList returns the decoded options; only valid after Validate.
func (nq *NewQuiz) OptionList() []string { return nq.options }
