package challenge_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/challenge"
	"github.com/trezcool/mazingira/core/user"
	dummydb "github.com/trezcool/mazingira/storage/database/dummy"
	testutil "github.com/trezcool/mazingira/tests"
)

func setUpService(t *testing.T) (*challenge.Service, challenge.Repository, user.Repository, *testutil.MemFileStore) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewChallengeRepository(db)
	usrRepo := dummydb.NewUserRepository(db)
	files := testutil.NewMemFileStore()
	svc := challenge.NewService(db, repo, usrRepo, files, core.NewConfig())
	return svc, repo, usrRepo, files
}

func TestServiceCreate(t *testing.T) {
	svc, _, _, _ := setUpService(t)
	ctx := context.Background()

	ch, err := svc.Create(ctx, challenge.NewChallenge{Title: "Plant a tree", Description: "Plant and photograph a seedling"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	if ch.ID == 0 {
		t.Error("Create() did not assign an ID")
	}
	if ch.Points != challenge.DefaultPoints {
		t.Errorf("Create() points = %d; want default %d", ch.Points, challenge.DefaultPoints)
	}
}

func TestServiceSubmit(t *testing.T) {
	svc, _, usrRepo, files := setUpService(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, usrRepo, "Jane Doe", "jane@test.com", "", user.RoleStudent, true)
	ch, err := svc.Create(ctx, challenge.NewChallenge{Title: "Plant a tree", Description: "Plant and photograph a seedling", Points: 25})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	// disallowed extension
	_, err = svc.Submit(ctx, usr, ch, "malware.exe", strings.NewReader("nope"))
	verr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("Submit() error = %v; want *core.ValidationError", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "proof_file" {
		t.Errorf("Submit() fields = %v; want [proof_file]", verr.Fields)
	}

	// nothing safe left in the file name
	if _, err = svc.Submit(ctx, usr, ch, "???", strings.NewReader("nope")); err == nil {
		t.Error("Submit() expected an error for an unusable file name")
	}

	sub, err := svc.Submit(ctx, usr, ch, "my tree.jpg", strings.NewReader("proof"))
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}
	if sub.ID == 0 {
		t.Error("Submit() did not assign an ID")
	}
	if sub.Status != challenge.StatusPending {
		t.Errorf("Submit() status = %q; want %q", sub.Status, challenge.StatusPending)
	}
	if content, ok := files.Files[sub.ProofLink]; !ok || string(content) != "proof" {
		t.Errorf("proof file %q not stored", sub.ProofLink)
	}
	if strings.Contains(sub.ProofLink, " ") {
		t.Errorf("proof link %q was not sanitized", sub.ProofLink)
	}

	// one submission per (user, challenge)
	if _, err = svc.Submit(ctx, usr, ch, "again.jpg", strings.NewReader("proof")); errors.Cause(err) != challenge.ErrAlreadySubmitted {
		t.Errorf("Submit() error = %v; want %v", err, challenge.ErrAlreadySubmitted)
	}

	got, err := svc.GetUserSubmission(ctx, usr.ID, ch.ID)
	if err != nil {
		t.Fatalf("GetUserSubmission() failed: %v", err)
	}
	if got.ID != sub.ID {
		t.Errorf("GetUserSubmission() ID = %d; want %d", got.ID, sub.ID)
	}
}

func TestServiceSubmitRacingDuplicates(t *testing.T) {
	svc, _, usrRepo, _ := setUpService(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, usrRepo, "Jane Doe", "jane@test.com", "", user.RoleStudent, true)
	ch, err := svc.Create(ctx, challenge.NewChallenge{Title: "Plant a tree", Description: "Plant and photograph a seedling"})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}

	const attempts = 8
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		accepted int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(ctx, usr, ch, "tree.jpg", strings.NewReader("proof"))
			if err == nil {
				mu.Lock()
				accepted++
				mu.Unlock()
			} else if errors.Cause(err) != challenge.ErrAlreadySubmitted {
				t.Errorf("Submit() unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if accepted != 1 {
		t.Errorf("accepted %d racing submissions; want exactly 1", accepted)
	}
	subs, err := svc.QuerySubmissions(ctx)
	if err != nil {
		t.Fatalf("QuerySubmissions() failed: %v", err)
	}
	if len(subs) != 1 {
		t.Errorf("QuerySubmissions() returned %d submissions; want 1", len(subs))
	}
}

func TestServiceReview(t *testing.T) {
	svc, _, usrRepo, _ := setUpService(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, usrRepo, "Jane Doe", "jane@test.com", "", user.RoleStudent, true)
	ch, err := svc.Create(ctx, challenge.NewChallenge{Title: "Plant a tree", Description: "Plant and photograph a seedling", Points: 25})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	sub, err := svc.Submit(ctx, usr, ch, "tree.jpg", strings.NewReader("proof"))
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	ecoPoints := func() int {
		got, err := usrRepo.GetUserByID(ctx, usr.ID)
		if err != nil {
			t.Fatalf("GetUserByID() failed: %v", err)
		}
		return got.EcoPoints
	}

	// an unknown action is a no-op
	got, err := svc.Review(ctx, sub.ID, "escalate")
	if err != nil {
		t.Fatalf("Review() failed: %v", err)
	}
	if got.Status != challenge.StatusPending {
		t.Errorf("Review() status = %q; want %q", got.Status, challenge.StatusPending)
	}
	if pts := ecoPoints(); pts != 0 {
		t.Errorf("EcoPoints = %d; want 0", pts)
	}

	// approve awards the challenge points
	got, err = svc.Review(ctx, sub.ID, challenge.ActionApprove)
	if err != nil {
		t.Fatalf("Review() failed: %v", err)
	}
	if got.Status != challenge.StatusApproved {
		t.Errorf("Review() status = %q; want %q", got.Status, challenge.StatusApproved)
	}
	if pts := ecoPoints(); pts != 25 {
		t.Errorf("EcoPoints = %d; want 25", pts)
	}

	// a second approval cannot double-award
	if _, err = svc.Review(ctx, sub.ID, challenge.ActionApprove); err != nil {
		t.Fatalf("Review() failed: %v", err)
	}
	if pts := ecoPoints(); pts != 25 {
		t.Errorf("EcoPoints = %d after re-approval; want 25", pts)
	}

	// approved is terminal
	got, err = svc.Review(ctx, sub.ID, challenge.ActionReject)
	if err != nil {
		t.Fatalf("Review() failed: %v", err)
	}
	if got.Status != challenge.StatusApproved {
		t.Errorf("Review() status = %q; want %q", got.Status, challenge.StatusApproved)
	}

	if _, err = svc.Review(ctx, 999, challenge.ActionApprove); errors.Cause(err) != challenge.ErrSubmissionNotFound {
		t.Errorf("Review() error = %v; want %v", err, challenge.ErrSubmissionNotFound)
	}
}

func TestServiceReviewReject(t *testing.T) {
	svc, _, usrRepo, _ := setUpService(t)
	ctx := context.Background()

	usr := testutil.CreateUser(t, usrRepo, "Jane Doe", "jane@test.com", "", user.RoleStudent, true)
	ch, err := svc.Create(ctx, challenge.NewChallenge{Title: "Plant a tree", Description: "Plant and photograph a seedling", Points: 25})
	if err != nil {
		t.Fatalf("Create() failed: %v", err)
	}
	sub, err := svc.Submit(ctx, usr, ch, "tree.jpg", strings.NewReader("proof"))
	if err != nil {
		t.Fatalf("Submit() failed: %v", err)
	}

	got, err := svc.Review(ctx, sub.ID, challenge.ActionReject)
	if err != nil {
		t.Fatalf("Review() failed: %v", err)
	}
	if got.Status != challenge.StatusRejected {
		t.Errorf("Review() status = %q; want %q", got.Status, challenge.StatusRejected)
	}

	// rejected is terminal; no points can be awarded afterwards
	got, err = svc.Review(ctx, sub.ID, challenge.ActionApprove)
	if err != nil {
		t.Fatalf("Review() failed: %v", err)
	}
	if got.Status != challenge.StatusRejected {
		t.Errorf("Review() status = %q; want %q", got.Status, challenge.StatusRejected)
	}
	usr, err = usrRepo.GetUserByID(ctx, usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if usr.EcoPoints != 0 {
		t.Errorf("EcoPoints = %d; want 0", usr.EcoPoints)
	}
}
