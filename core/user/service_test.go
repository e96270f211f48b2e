package user_test

import (
	"context"
	"testing"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/user"
	emailsvc "github.com/trezcool/mazingira/services/email"
	dummydb "github.com/trezcool/mazingira/storage/database/dummy"
	testutil "github.com/trezcool/mazingira/tests"
)

func setUpService(t *testing.T) (*user.Service, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewUserRepository(db)
	conf := core.NewConfig()
	core.ParseEmailTemplates(conf, testutil.Logger{T: t})
	svc := user.NewService(db, repo, emailsvc.NewConsoleServiceMock(conf), conf)
	return svc, repo
}

func TestServiceRegister(t *testing.T) {
	svc, _ := setUpService(t)
	ctx := context.Background()
	sentCount := len(emailsvc.SentMessages)

	usr, err := svc.Register(ctx, user.NewUser{
		Name:     "Jane Doe",
		Email:    "jane@test.com",
		Password: "S3cure#pass!x",
	})
	if err != nil {
		t.Fatalf("Register() failed: %v", err)
	}
	if usr.ID == 0 {
		t.Error("Register() did not assign an ID")
	}
	if usr.Role != user.RoleStudent {
		t.Errorf("Register() role = %q; want %q", usr.Role, user.RoleStudent)
	}
	if !usr.IsActive {
		t.Error("Register() user is not active")
	}
	if usr.EcoPoints != 0 || usr.GreenCoins != 0 {
		t.Errorf("Register() points = (%d, %d); want (0, 0)", usr.EcoPoints, usr.GreenCoins)
	}
	if err = usr.CheckPassword("S3cure#pass!x"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}

	// welcome email
	if len(emailsvc.SentMessages) != sentCount+1 {
		t.Fatalf("expected 1 sent message; got %d", len(emailsvc.SentMessages)-sentCount)
	}
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	if want := "Welcome to Mazingira"; msg.Subject != want {
		t.Errorf("welcome email subject = %q; want %q", msg.Subject, want)
	}
	if len(msg.To) != 1 || msg.To[0].Address != "jane@test.com" {
		t.Errorf("welcome email recipients = %v; want [jane@test.com]", msg.To)
	}
	if !msg.HasContent() {
		t.Error("welcome email has no content")
	}
}

func TestServiceCheckEmailUniqueness(t *testing.T) {
	svc, repo := setUpService(t)
	ctx := context.Background()
	testutil.CreateUser(t, repo, "Jane Doe", "jane@test.com", "", user.RoleStudent, true)

	if err := svc.CheckEmailUniqueness(ctx, "new@test.com"); err != nil {
		t.Errorf("CheckEmailUniqueness() unexpected error: %v", err)
	}

	err := svc.CheckEmailUniqueness(ctx, "jane@test.com")
	verr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("CheckEmailUniqueness() error = %v; want *core.ValidationError", err)
	}
	if len(verr.Fields) != 1 || verr.Fields[0].Field != "email" {
		t.Errorf("CheckEmailUniqueness() fields = %v; want [email]", verr.Fields)
	}
}

func TestServiceLeaderboard(t *testing.T) {
	svc, repo := setUpService(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, repo, "Alice", "alice@test.com", "", user.RoleStudent, true)
	bob := testutil.CreateUser(t, repo, "Bob", "bob@test.com", "", user.RoleStudent, true)
	carol := testutil.CreateUser(t, repo, "Carol", "carol@test.com", "", user.RoleStudent, true)
	teacher := testutil.CreateUser(t, repo, "Mr. Mwangi", "mwangi@test.com", "", user.RoleTeacher, true)

	addPoints := func(id, points int) {
		if err := repo.AddEcoPoints(ctx, id, points); err != nil {
			t.Fatalf("AddEcoPoints() failed: %v", err)
		}
	}
	addPoints(alice.ID, 30)
	addPoints(bob.ID, 50)
	addPoints(carol.ID, 30) // ties with alice; alice wins on lower id
	addPoints(teacher.ID, 100)

	top, err := svc.Leaderboard(ctx, 5)
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	wantIDs := []int{bob.ID, alice.ID, carol.ID}
	if len(top) != len(wantIDs) {
		t.Fatalf("Leaderboard() returned %d users; want %d", len(top), len(wantIDs))
	}
	for i, id := range wantIDs {
		if top[i].ID != id {
			t.Errorf("Leaderboard()[%d].ID = %d; want %d", i, top[i].ID, id)
		}
	}

	// limit applies
	top, err = svc.Leaderboard(ctx, 2)
	if err != nil {
		t.Fatalf("Leaderboard() failed: %v", err)
	}
	if len(top) != 2 || top[0].ID != bob.ID || top[1].ID != alice.ID {
		t.Errorf("Leaderboard(2) = %v; want [bob, alice]", top)
	}

	// the overall leaderboard includes teachers
	top, err = svc.TopUsers(ctx, 5)
	if err != nil {
		t.Fatalf("TopUsers() failed: %v", err)
	}
	if len(top) != 4 || top[0].ID != teacher.ID {
		t.Errorf("TopUsers() = %v; want the teacher first of 4", top)
	}
}

func TestServiceSetGreenCoins(t *testing.T) {
	svc, repo := setUpService(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Jane Doe", "jane@test.com", "", user.RoleStudent, true)

	usr, err := svc.SetGreenCoins(ctx, usr.ID, 42)
	if err != nil {
		t.Fatalf("SetGreenCoins() failed: %v", err)
	}
	if usr.GreenCoins != 42 {
		t.Errorf("GreenCoins = %d; want 42", usr.GreenCoins)
	}

	// negative balances are clamped
	usr, err = svc.SetGreenCoins(ctx, usr.ID, -5)
	if err != nil {
		t.Fatalf("SetGreenCoins() failed: %v", err)
	}
	if usr.GreenCoins != 0 {
		t.Errorf("GreenCoins = %d; want 0", usr.GreenCoins)
	}

	if _, err = svc.SetGreenCoins(ctx, 999, 10); err != user.ErrNotFound {
		t.Errorf("SetGreenCoins() error = %v; want %v", err, user.ErrNotFound)
	}
}
