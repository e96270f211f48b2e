package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/challenge"
)

const pqUniqueViolation = "23505"

type submissionRow struct {
	ID          int       `db:"id"`
	UserID      int       `db:"user_id"`
	ChallengeID int       `db:"challenge_id"`
	ProofLink   string    `db:"proof_link"`
	Status      string    `db:"status"`
	CreatedAt   time.Time `db:"created_at"`
}

func (row submissionRow) unpack() challenge.Submission {
	return challenge.Submission{
		ID:          row.ID,
		UserID:      row.UserID,
		ChallengeID: row.ChallengeID,
		ProofLink:   row.ProofLink,
		Status:      row.Status,
		CreatedAt:   row.CreatedAt,
	}
}

type challengeRepository struct {
	db *sqlx.DB
}

var _ challenge.Repository = (*challengeRepository)(nil) // interface compliance check

func NewChallengeRepository(db *sql.DB) *challengeRepository {
	return &challengeRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo challengeRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db.DB
}

func (repo challengeRepository) trapNoRowsErr(err, notFound error, msg string) error {
	if err == sql.ErrNoRows {
		return notFound
	}
	return errors.Wrap(err, msg)
}

// Challenges

func (repo challengeRepository) CreateChallenge(ctx context.Context, ch challenge.Challenge, exec ...core.DBExecutor) (challenge.Challenge, error) {
	err := repo.db.GetContext(ctx, &ch.ID, `
		INSERT INTO challenges (title, description, points) VALUES ($1, $2, $3) RETURNING id`,
		ch.Title, ch.Description, ch.Points,
	)
	if err != nil {
		return challenge.Challenge{}, errors.Wrap(err, "inserting challenge")
	}
	return ch, nil
}

func (repo challengeRepository) QueryAllChallenges(ctx context.Context, exec ...core.DBExecutor) ([]challenge.Challenge, error) {
	var challenges []challenge.Challenge
	if err := repo.db.SelectContext(ctx, &challenges, `SELECT * FROM challenges ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying challenges")
	}
	return challenges, nil
}

func (repo challengeRepository) GetChallengeByID(ctx context.Context, id int, exec ...core.DBExecutor) (challenge.Challenge, error) {
	var ch challenge.Challenge
	if err := repo.db.GetContext(ctx, &ch, `SELECT * FROM challenges WHERE id = $1`, id); err != nil {
		return challenge.Challenge{}, repo.trapNoRowsErr(err, challenge.ErrNotFound, "finding challenge")
	}
	return ch, nil
}

func (repo challengeRepository) UpdateChallenge(ctx context.Context, ch challenge.Challenge, exec ...core.DBExecutor) (challenge.Challenge, error) {
	res, err := repo.db.ExecContext(ctx, `
		UPDATE challenges SET title = $1, description = $2, points = $3 WHERE id = $4`,
		ch.Title, ch.Description, ch.Points, ch.ID,
	)
	if err != nil {
		return challenge.Challenge{}, errors.Wrap(err, "updating challenge")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return challenge.Challenge{}, challenge.ErrNotFound
	}
	return ch, nil
}

func (repo challengeRepository) DeleteChallenge(ctx context.Context, id int, exec ...core.DBExecutor) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM challenges WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting challenge")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return challenge.ErrNotFound
	}
	return nil
}

// Submissions

func (repo challengeRepository) CreateSubmission(ctx context.Context, sub challenge.Submission, exec ...core.DBExecutor) (challenge.Submission, error) {
	err := repo.getExec(exec).
		QueryRowContext(ctx, `
			INSERT INTO submissions (user_id, challenge_id, proof_link, status, created_at)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			sub.UserID, sub.ChallengeID, sub.ProofLink, sub.Status, sub.CreatedAt,
		).
		Scan(&sub.ID)
	if err != nil {
		if pqErr, ok := errors.Cause(err).(*pq.Error); ok && pqErr.Code == pqUniqueViolation {
			return challenge.Submission{}, challenge.ErrAlreadySubmitted
		}
		return challenge.Submission{}, errors.Wrap(err, "inserting submission")
	}
	return sub, nil
}

func (repo challengeRepository) GetSubmissionByID(ctx context.Context, id int, exec ...core.DBExecutor) (challenge.Submission, error) {
	var row submissionRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM submissions WHERE id = $1`, id); err != nil {
		return challenge.Submission{}, repo.trapNoRowsErr(err, challenge.ErrSubmissionNotFound, "finding submission")
	}
	return row.unpack(), nil
}

func (repo challengeRepository) GetUserSubmission(ctx context.Context, userID, challengeID int, exec ...core.DBExecutor) (challenge.Submission, error) {
	var row submissionRow
	err := repo.db.GetContext(ctx, &row, `SELECT * FROM submissions WHERE user_id = $1 AND challenge_id = $2`, userID, challengeID)
	if err != nil {
		return challenge.Submission{}, repo.trapNoRowsErr(err, challenge.ErrSubmissionNotFound, "finding user submission")
	}
	return row.unpack(), nil
}

func (repo challengeRepository) QuerySubmissions(ctx context.Context, exec ...core.DBExecutor) ([]challenge.Submission, error) {
	var rows []submissionRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM submissions ORDER BY id DESC`); err != nil {
		return nil, errors.Wrap(err, "querying submissions")
	}
	subs := make([]challenge.Submission, 0, len(rows))
	for _, row := range rows {
		subs = append(subs, row.unpack())
	}
	return subs, nil
}

func (repo challengeRepository) TransitionSubmissionStatus(ctx context.Context, id int, from, to string, exec ...core.DBExecutor) (bool, error) {
	res, err := repo.getExec(exec).ExecContext(ctx, `
		UPDATE submissions SET status = $1 WHERE id = $2 AND status = $3`,
		to, id, from,
	)
	if err != nil {
		return false, errors.Wrap(err, "transitioning submission status")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errors.Wrap(err, "transitioning submission status")
	}
	return n > 0, nil
}
