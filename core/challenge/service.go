package challenge

import (
	"context"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/user"
)

var (
	ErrNotFound           = errors.New("challenge not found")
	ErrSubmissionNotFound = errors.New("submission not found")
	ErrAlreadySubmitted   = errors.New("a submission for this challenge already exists")

	// DefaultPoints is the challenge form default.
	DefaultPoints = 20
)

type (
	Repository interface {
		CreateChallenge(ctx context.Context, ch Challenge, exec ...core.DBExecutor) (Challenge, error)
		QueryAllChallenges(ctx context.Context, exec ...core.DBExecutor) ([]Challenge, error)
		GetChallengeByID(ctx context.Context, id int, exec ...core.DBExecutor) (Challenge, error)
		UpdateChallenge(ctx context.Context, ch Challenge, exec ...core.DBExecutor) (Challenge, error)
		DeleteChallenge(ctx context.Context, id int, exec ...core.DBExecutor) error

		// CreateSubmission inserts atomically; a duplicate (user, challenge)
		// pair fails with ErrAlreadySubmitted.
		CreateSubmission(ctx context.Context, sub Submission, exec ...core.DBExecutor) (Submission, error)
		GetSubmissionByID(ctx context.Context, id int, exec ...core.DBExecutor) (Submission, error)
		GetUserSubmission(ctx context.Context, userID, challengeID int, exec ...core.DBExecutor) (Submission, error)
		// QuerySubmissions returns all submissions, most recent first (id desc).
		QuerySubmissions(ctx context.Context, exec ...core.DBExecutor) ([]Submission, error)
		// TransitionSubmissionStatus sets the status only if the current status
		// matches from; reports whether the transition happened.
		TransitionSubmissionStatus(ctx context.Context, id int, from, to string, exec ...core.DBExecutor) (bool, error)
	}

	Service struct {
		db      core.DB
		repo    Repository
		usrRepo user.Repository
		files   core.FileStore
		conf    *core.Config
	}
)

func NewService(db core.DB, repo Repository, usrRepo user.Repository, files core.FileStore, conf *core.Config) *Service {
	return &Service{db: db, repo: repo, usrRepo: usrRepo, files: files, conf: conf}
}

// Challenges

func (svc *Service) Create(ctx context.Context, nc NewChallenge) (Challenge, error) {
	ch := Challenge{Title: nc.Title, Description: nc.Description, Points: nc.Points}
	if ch.Points <= 0 {
		ch.Points = DefaultPoints
	}
	ch, err := svc.repo.CreateChallenge(ctx, ch, svc.db)
	return ch, errors.Wrap(err, "creating challenge")
}

func (svc *Service) QueryAll(ctx context.Context) ([]Challenge, error) {
	return svc.repo.QueryAllChallenges(ctx, svc.db)
}

func (svc *Service) Get(ctx context.Context, id int) (Challenge, error) {
	return svc.repo.GetChallengeByID(ctx, id, svc.db)
}

func (svc *Service) Update(ctx context.Context, id int, nc NewChallenge) (Challenge, error) {
	ch := Challenge{ID: id, Title: nc.Title, Description: nc.Description, Points: nc.Points}
	if ch.Points <= 0 {
		ch.Points = DefaultPoints
	}
	ch, err := svc.repo.UpdateChallenge(ctx, ch, svc.db)
	return ch, errors.Wrap(err, "updating challenge")
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteChallenge(ctx, id, svc.db)
}

// Submissions

func (svc *Service) GetSubmission(ctx context.Context, id int) (Submission, error) {
	return svc.repo.GetSubmissionByID(ctx, id, svc.db)
}

func (svc *Service) GetUserSubmission(ctx context.Context, userID, challengeID int) (Submission, error) {
	return svc.repo.GetUserSubmission(ctx, userID, challengeID, svc.db)
}

func (svc *Service) QuerySubmissions(ctx context.Context) ([]Submission, error) {
	return svc.repo.QuerySubmissions(ctx, svc.db)
}

// Submit stores the proof file and records a pending submission for the user.
// A second submission for the same (user, challenge) fails with
// ErrAlreadySubmitted, racing duplicates included.
func (svc *Service) Submit(ctx context.Context, usr user.User, ch Challenge, filename string, src io.Reader) (Submission, error) {
	name := core.SanitizeFilename(filename)
	if name == "" {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "proof_file", Error: "invalid file name"})
	}
	if !svc.extAllowed(name) {
		return Submission{}, core.NewValidationError(nil, core.FieldError{Field: "proof_file", Error: "only images, PDFs, or documents are allowed"})
	}

	link, err := svc.files.Save(name, src)
	if err != nil {
		return Submission{}, errors.Wrap(err, "storing proof file")
	}

	sub := Submission{
		UserID:      usr.ID,
		ChallengeID: ch.ID,
		ProofLink:   link,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}
	sub, err = svc.repo.CreateSubmission(ctx, sub, svc.db)
	if err != nil {
		if errors.Cause(err) == ErrAlreadySubmitted {
			return Submission{}, err
		}
		return Submission{}, errors.Wrap(err, "creating submission")
	}
	return sub, nil
}

// Review applies a teacher's decision to a submission. approve transitions
// pending → approved and awards the challenge's points to the submitter,
// exactly once; reject transitions pending → rejected. Any other action is a
// no-op. Terminal states are never re-reviewed, so re-invoking approve cannot
// double-award.
func (svc *Service) Review(ctx context.Context, id int, action string) (Submission, error) {
	sub, err := svc.repo.GetSubmissionByID(ctx, id, svc.db)
	if err != nil {
		return Submission{}, err
	}

	switch action {
	case ActionApprove:
		if err := svc.approve(ctx, &sub); err != nil {
			return Submission{}, err
		}
	case ActionReject:
		transitioned, err := svc.repo.TransitionSubmissionStatus(ctx, sub.ID, StatusPending, StatusRejected, svc.db)
		if err != nil {
			return Submission{}, errors.Wrap(err, "rejecting submission")
		}
		if transitioned {
			sub.Status = StatusRejected
		}
	}
	return sub, nil
}

func (svc *Service) approve(ctx context.Context, sub *Submission) error {
	ch, err := svc.repo.GetChallengeByID(ctx, sub.ChallengeID, svc.db)
	if err != nil {
		return errors.Wrap(err, "finding submission challenge")
	}

	tx, err := svc.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	transitioned, err := svc.repo.TransitionSubmissionStatus(ctx, sub.ID, StatusPending, StatusApproved, tx)
	if err != nil {
		return errors.Wrap(err, "approving submission")
	}
	if transitioned {
		if err = svc.usrRepo.AddEcoPoints(ctx, sub.UserID, ch.Points, tx); err != nil {
			return errors.Wrap(err, "awarding challenge points")
		}
		sub.Status = StatusApproved
	}
	return errors.Wrap(tx.Commit(), "committing review")
}

func (svc *Service) extAllowed(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, allowed := range svc.conf.Uploads.AllowedExts {
		if ext == allowed {
			return true
		}
	}
	return false
}
