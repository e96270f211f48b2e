package sqlxrepos

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/learning"
)

type moduleRow struct {
	ID          int         `db:"id"`
	Title       string      `db:"title"`
	Description string      `db:"description"`
	Content     null.String `db:"content"`
}

func (row moduleRow) unpack() learning.Module {
	return learning.Module{
		ID:          row.ID,
		Title:       row.Title,
		Description: row.Description,
		Content:     row.Content,
	}
}

type quizRow struct {
	ID            int    `db:"id"`
	Question      string `db:"question"`
	Options       string `db:"options"` // JSON array of strings
	CorrectAnswer string `db:"correct_answer"`
	Points        int    `db:"points"`
	ModuleID      int    `db:"module_id"`
}

func (row quizRow) unpack() (learning.Quiz, error) {
	qz := learning.Quiz{
		ID:            row.ID,
		Question:      row.Question,
		CorrectAnswer: row.CorrectAnswer,
		Points:        row.Points,
		ModuleID:      row.ModuleID,
	}
	if err := json.Unmarshal([]byte(row.Options), &qz.Options); err != nil {
		return learning.Quiz{}, errors.Wrap(err, "decoding quiz options")
	}
	return qz, nil
}

func packOptions(options []string) (string, error) {
	data, err := json.Marshal(options)
	if err != nil {
		return "", errors.Wrap(err, "encoding quiz options")
	}
	return string(data), nil
}

type learningRepository struct {
	db *sqlx.DB
}

var _ learning.Repository = (*learningRepository)(nil) // interface compliance check

func NewLearningRepository(db *sql.DB) *learningRepository {
	return &learningRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo learningRepository) trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// Modules

func (repo learningRepository) CreateModule(ctx context.Context, mod learning.Module, exec ...core.DBExecutor) (learning.Module, error) {
	err := repo.db.GetContext(ctx, &mod.ID, `
		INSERT INTO modules (title, description, content) VALUES ($1, $2, $3) RETURNING id`,
		mod.Title, mod.Description, mod.Content,
	)
	if err != nil {
		return learning.Module{}, errors.Wrap(err, "inserting module")
	}
	return mod, nil
}

func (repo learningRepository) QueryAllModules(ctx context.Context, exec ...core.DBExecutor) ([]learning.Module, error) {
	var rows []moduleRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM modules ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying modules")
	}
	mods := make([]learning.Module, 0, len(rows))
	for _, row := range rows {
		mods = append(mods, row.unpack())
	}
	return mods, nil
}

func (repo learningRepository) GetModuleByID(ctx context.Context, id int, exec ...core.DBExecutor) (learning.Module, error) {
	var row moduleRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM modules WHERE id = $1`, id); err != nil {
		return learning.Module{}, repo.trapNoRowsErr(err, learning.ErrModuleNotFound, "finding module")
	}
	return row.unpack(), nil
}

func (repo learningRepository) UpdateModule(ctx context.Context, mod learning.Module, exec ...core.DBExecutor) (learning.Module, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE modules SET title = $1, description = $2, content = $3 WHERE id = $4`,
		mod.Title, mod.Description, mod.Content, mod.ID,
	)
	if err != nil {
		return learning.Module{}, errors.Wrap(err, "updating module")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return learning.Module{}, learning.ErrModuleNotFound
	}
	return mod, nil
}

func (repo learningRepository) DeleteModule(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM modules WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting module")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return learning.ErrModuleNotFound
	}
	return nil
}

// Quizzes

func (repo learningRepository) CreateQuiz(ctx context.Context, qz learning.Quiz, exec ...core.DBExecutor) (learning.Quiz, error) {
	options, err := packOptions(qz.Options)
	if err != nil {
		return learning.Quiz{}, err
	}
	err = repo.db.GetContext(ctx, &qz.ID, `
		INSERT INTO quizzes (question, options, correct_answer, points, module_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		qz.Question, options, qz.CorrectAnswer, qz.Points, qz.ModuleID,
	)
	if err != nil {
		return learning.Quiz{}, errors.Wrap(err, "inserting quiz")
	}
	return qz, nil
}

func (repo learningRepository) GetQuizByID(ctx context.Context, id int, exec ...core.DBExecutor) (learning.Quiz, error) {
	var row quizRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM quizzes WHERE id = $1`, id); err != nil {
		return learning.Quiz{}, repo.trapNoRowsErr(err, learning.ErrQuizNotFound, "finding quiz")
	}
	return row.unpack()
}

func (repo learningRepository) QueryQuizzesByModule(ctx context.Context, moduleID int, exec ...core.DBExecutor) ([]learning.Quiz, error) {
	var rows []quizRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM quizzes WHERE module_id = $1 ORDER BY id`, moduleID); err != nil {
		return nil, errors.Wrap(err, "querying quizzes")
	}
	quizzes := make([]learning.Quiz, 0, len(rows))
	for _, row := range rows {
		qz, err := row.unpack()
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, qz)
	}
	return quizzes, nil
}

func (repo learningRepository) UpdateQuiz(ctx context.Context, qz learning.Quiz, exec ...core.DBExecutor) (learning.Quiz, error) {
	options, err := packOptions(qz.Options)
	if err != nil {
		return learning.Quiz{}, err
	}
	res, err := repo.db.ExecContext(ctx, `
		UPDATE quizzes SET question = $1, options = $2, correct_answer = $3, points = $4, module_id = $5
		WHERE id = $6`,
		qz.Question, options, qz.CorrectAnswer, qz.Points, qz.ModuleID, qz.ID,
	)
	if err != nil {
		return learning.Quiz{}, errors.Wrap(err, "updating quiz")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return learning.Quiz{}, learning.ErrQuizNotFound
	}
	return qz, nil
}

func (repo learningRepository) DeleteQuiz(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting quiz")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return learning.ErrQuizNotFound
	}
	return nil
}
