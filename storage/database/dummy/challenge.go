package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/challenge"
)

type challengeRepository struct {
	db *challengeTable
}

var _ challenge.Repository = (*challengeRepository)(nil) // interface compliance check

func NewChallengeRepository(db *DB) challenge.Repository {
	return &challengeRepository{db: db.challenge}
}

// Challenges

func (repo *challengeRepository) CreateChallenge(ctx context.Context, ch challenge.Challenge, exec ...core.DBExecutor) (challenge.Challenge, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.chPkCount++
	ch.ID = repo.db.chPkCount
	repo.db.challenges[ch.ID] = &ch
	return ch, nil
}

func (repo *challengeRepository) QueryAllChallenges(ctx context.Context, exec ...core.DBExecutor) ([]challenge.Challenge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	challenges := make([]challenge.Challenge, 0, len(repo.db.challenges))
	for _, ch := range repo.db.challenges {
		challenges = append(challenges, *ch)
	}
	sort.Slice(challenges, func(i, j int) bool { return challenges[i].ID < challenges[j].ID })
	return challenges, nil
}

func (repo *challengeRepository) GetChallengeByID(ctx context.Context, id int, exec ...core.DBExecutor) (challenge.Challenge, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if ch, ok := repo.db.challenges[id]; ok {
		return *ch, nil
	}
	return challenge.Challenge{}, challenge.ErrNotFound
}

func (repo *challengeRepository) UpdateChallenge(ctx context.Context, ch challenge.Challenge, exec ...core.DBExecutor) (challenge.Challenge, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.challenges[ch.ID]; !ok {
		return challenge.Challenge{}, challenge.ErrNotFound
	}
	repo.db.challenges[ch.ID] = &ch
	return ch, nil
}

func (repo *challengeRepository) DeleteChallenge(ctx context.Context, id int, exec ...core.DBExecutor) error {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.challenges[id]; !ok {
		return challenge.ErrNotFound
	}
	delete(repo.db.challenges, id)
	return nil
}

// Submissions

func (repo *challengeRepository) CreateSubmission(ctx context.Context, sub challenge.Submission, exec ...core.DBExecutor) (challenge.Submission, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	// UNIQUE (user_id, challenge_id)
	for _, existing := range repo.db.submissions {
		if existing.UserID == sub.UserID && existing.ChallengeID == sub.ChallengeID {
			return challenge.Submission{}, challenge.ErrAlreadySubmitted
		}
	}

	repo.db.subPkCount++
	sub.ID = repo.db.subPkCount
	repo.db.submissions[sub.ID] = &sub
	return sub, nil
}

func (repo *challengeRepository) GetSubmissionByID(ctx context.Context, id int, exec ...core.DBExecutor) (challenge.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if sub, ok := repo.db.submissions[id]; ok {
		return *sub, nil
	}
	return challenge.Submission{}, challenge.ErrSubmissionNotFound
}

func (repo *challengeRepository) GetUserSubmission(ctx context.Context, userID, challengeID int, exec ...core.DBExecutor) (challenge.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	for _, sub := range repo.db.submissions {
		if sub.UserID == userID && sub.ChallengeID == challengeID {
			return *sub, nil
		}
	}
	return challenge.Submission{}, challenge.ErrSubmissionNotFound
}

func (repo *challengeRepository) QuerySubmissions(ctx context.Context, exec ...core.DBExecutor) ([]challenge.Submission, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	subs := make([]challenge.Submission, 0, len(repo.db.submissions))
	for _, sub := range repo.db.submissions {
		subs = append(subs, *sub)
	}
	sort.Slice(subs, func(i, j int) bool { return subs[i].ID > subs[j].ID })
	return subs, nil
}

func (repo *challengeRepository) TransitionSubmissionStatus(ctx context.Context, id int, from, to string, exec ...core.DBExecutor) (bool, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	sub, ok := repo.db.submissions[id]
	if !ok || sub.Status != from {
		return false, nil
	}
	sub.Status = to
	return true, nil
}
