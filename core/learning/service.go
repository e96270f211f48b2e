package learning

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/user"
)

var (
	ErrModuleNotFound = errors.New("module not found")
	ErrQuizNotFound   = errors.New("quiz not found")
)

type (
	Repository interface {
		CreateModule(ctx context.Context, mod Module, exec ...core.DBExecutor) (Module, error)
		QueryAllModules(ctx context.Context, exec ...core.DBExecutor) ([]Module, error)
		GetModuleByID(ctx context.Context, id int, exec ...core.DBExecutor) (Module, error)
		UpdateModule(ctx context.Context, mod Module, exec ...core.DBExecutor) (Module, error)
		DeleteModule(ctx context.Context, id int, exec ...core.DBExecutor) error

		CreateQuiz(ctx context.Context, qz Quiz, exec ...core.DBExecutor) (Quiz, error)
		GetQuizByID(ctx context.Context, id int, exec ...core.DBExecutor) (Quiz, error)
		QueryQuizzesByModule(ctx context.Context, moduleID int, exec ...core.DBExecutor) ([]Quiz, error)
		UpdateQuiz(ctx context.Context, qz Quiz, exec ...core.DBExecutor) (Quiz, error)
		DeleteQuiz(ctx context.Context, id int, exec ...core.DBExecutor) error
	}

	Service struct {
		db      core.DB
		repo    Repository
		usrRepo user.Repository
	}
)

func NewService(db core.DB, repo Repository, usrRepo user.Repository) *Service {
	return &Service{db: db, repo: repo, usrRepo: usrRepo}
}

// Modules

func (svc *Service) CreateModule(ctx context.Context, nm NewModule) (Module, error) {
	mod := Module{Title: nm.Title, Description: nm.Description}
	if nm.Content != "" {
		mod.Content.SetValid(nm.Content)
	}
	mod, err := svc.repo.CreateModule(ctx, mod, svc.db)
	return mod, errors.Wrap(err, "creating module")
}

func (svc *Service) QueryModules(ctx context.Context) ([]Module, error) {
	return svc.repo.QueryAllModules(ctx, svc.db)
}

func (svc *Service) GetModule(ctx context.Context, id int) (Module, error) {
	return svc.repo.GetModuleByID(ctx, id, svc.db)
}

func (svc *Service) UpdateModule(ctx context.Context, id int, nm NewModule) (Module, error) {
	mod := Module{ID: id, Title: nm.Title, Description: nm.Description}
	if nm.Content != "" {
		mod.Content.SetValid(nm.Content)
	}
	mod, err := svc.repo.UpdateModule(ctx, mod, svc.db)
	return mod, errors.Wrap(err, "updating module")
}

func (svc *Service) DeleteModule(ctx context.Context, id int) error {
	return svc.repo.DeleteModule(ctx, id, svc.db)
}

// Quizzes

func (svc *Service) CreateQuiz(ctx context.Context, nq NewQuiz) (Quiz, error) {
	if _, err := svc.repo.GetModuleByID(ctx, nq.ModuleID, svc.db); err != nil {
		return Quiz{}, errors.Wrap(err, "finding quiz module")
	}
	qz := Quiz{
		Question:      nq.Question,
		Options:       nq.OptionList(),
		CorrectAnswer: nq.CorrectAnswer,
		Points:        nq.Points,
		ModuleID:      nq.ModuleID,
	}
	if qz.Points <= 0 {
		qz.Points = DefaultQuizPoints
	}
	qz, err := svc.repo.CreateQuiz(ctx, qz, svc.db)
	return qz, errors.Wrap(err, "creating quiz")
}

func (svc *Service) GetQuiz(ctx context.Context, id int) (Quiz, error) {
	return svc.repo.GetQuizByID(ctx, id, svc.db)
}

func (svc *Service) QueryQuizzes(ctx context.Context, moduleID int) ([]Quiz, error) {
	return svc.repo.QueryQuizzesByModule(ctx, moduleID, svc.db)
}

func (svc *Service) UpdateQuiz(ctx context.Context, id int, nq NewQuiz) (Quiz, error) {
	if _, err := svc.repo.GetModuleByID(ctx, nq.ModuleID, svc.db); err != nil {
		return Quiz{}, errors.Wrap(err, "finding quiz module")
	}
	qz := Quiz{
		ID:            id,
		Question:      nq.Question,
		Options:       nq.OptionList(),
		CorrectAnswer: nq.CorrectAnswer,
		Points:        nq.Points,
		ModuleID:      nq.ModuleID,
	}
	if qz.Points <= 0 {
		qz.Points = DefaultQuizPoints
	}
	qz, err := svc.repo.UpdateQuiz(ctx, qz, svc.db)
	return qz, errors.Wrap(err, "updating quiz")
}

func (svc *Service) DeleteQuiz(ctx context.Context, id int) error {
	return svc.repo.DeleteQuiz(ctx, id, svc.db)
}

// EvaluateAnswer compares a submitted answer against the quiz's correct answer
// (case-insensitive, whitespace-trimmed) and awards the quiz's points to the
// user on a match. A mismatch mutates nothing; the user may retry indefinitely.
// Returns whether the answer was correct and the number of points awarded.
func (svc *Service) EvaluateAnswer(ctx context.Context, usr user.User, qz Quiz, answer string) (bool, int, error) {
	if !strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(qz.CorrectAnswer)) {
		return false, 0, nil
	}

	points := qz.Points
	if points <= 0 {
		points = DefaultQuizPoints
	}
	if err := svc.usrRepo.AddEcoPoints(ctx, usr.ID, points, svc.db); err != nil {
		return true, 0, errors.Wrap(err, "awarding quiz points")
	}
	return true, points, nil
}
