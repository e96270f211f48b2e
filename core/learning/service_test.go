package learning_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core/learning"
	"github.com/trezcool/mazingira/core/user"
	dummydb "github.com/trezcool/mazingira/storage/database/dummy"
	testutil "github.com/trezcool/mazingira/tests"
)

func setUpService(t *testing.T) (*learning.Service, learning.Repository, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewLearningRepository(db)
	usrRepo := dummydb.NewUserRepository(db)
	return learning.NewService(db, repo, usrRepo), repo, usrRepo
}

func TestServiceCreateQuiz(t *testing.T) {
	svc, repo, _ := setUpService(t)
	ctx := context.Background()
	mod := testutil.CreateModule(t, repo, "Recycling 101", "Sorting household waste")

	nq := learning.NewQuiz{
		Question:      "Which bin takes glass bottles?",
		Options:       `["Green", "Blue", "Black"]`,
		CorrectAnswer: "Green",
		ModuleID:      mod.ID,
	}

	// the module must exist
	nq.ModuleID = 999
	if _, err := svc.CreateQuiz(ctx, nq); errors.Cause(err) != learning.ErrModuleNotFound {
		t.Errorf("CreateQuiz() error = %v; want %v", err, learning.ErrModuleNotFound)
	}

	nq.ModuleID = mod.ID
	qz, err := svc.CreateQuiz(ctx, nq)
	if err != nil {
		t.Fatalf("CreateQuiz() failed: %v", err)
	}
	if qz.ID == 0 {
		t.Error("CreateQuiz() did not assign an ID")
	}
	if qz.Points != learning.DefaultQuizPoints {
		t.Errorf("CreateQuiz() points = %d; want default %d", qz.Points, learning.DefaultQuizPoints)
	}
	if qz.ModuleID != mod.ID {
		t.Errorf("CreateQuiz() module = %d; want %d", qz.ModuleID, mod.ID)
	}
}

func TestServiceDeleteModuleCascades(t *testing.T) {
	svc, repo, _ := setUpService(t)
	ctx := context.Background()

	mod := testutil.CreateModule(t, repo, "Composting", "Turning scraps into soil")
	testutil.CreateQuiz(t, repo, "What goes in a compost bin?", []string{"Peels", "Glass"}, "Peels", 10, mod.ID)

	if err := svc.DeleteModule(ctx, mod.ID); err != nil {
		t.Fatalf("DeleteModule() failed: %v", err)
	}
	if _, err := svc.GetModule(ctx, mod.ID); errors.Cause(err) != learning.ErrModuleNotFound {
		t.Errorf("GetModule() error = %v; want %v", err, learning.ErrModuleNotFound)
	}
	quizzes, err := svc.QueryQuizzes(ctx, mod.ID)
	if err != nil {
		t.Fatalf("QueryQuizzes() failed: %v", err)
	}
	if len(quizzes) != 0 {
		t.Errorf("QueryQuizzes() returned %d quizzes after module delete; want 0", len(quizzes))
	}
}

func TestServiceEvaluateAnswer(t *testing.T) {
	svc, repo, usrRepo := setUpService(t)
	ctx := context.Background()

	mod := testutil.CreateModule(t, repo, "Water", "Saving water at home")
	qz := testutil.CreateQuiz(t, repo, "Best way to reuse greywater?", []string{"Garden", "Drink"}, "Garden", 15, mod.ID)
	usr := testutil.CreateUser(t, usrRepo, "Jane Doe", "jane@test.com", "", user.RoleStudent, true)

	tests := []struct {
		name        string
		answer      string
		wantCorrect bool
		wantPoints  int
	}{
		{"exact match", "Garden", true, 15},
		{"case insensitive", "gArDeN", true, 15},
		{"surrounding whitespace", "  Garden \t", true, 15},
		{"wrong answer", "Drink", false, 0},
		{"empty answer", "", false, 0},
	}

	total := 0
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			correct, points, err := svc.EvaluateAnswer(ctx, usr, qz, tt.answer)
			if err != nil {
				t.Fatalf("EvaluateAnswer() failed: %v", err)
			}
			if correct != tt.wantCorrect || points != tt.wantPoints {
				t.Errorf("EvaluateAnswer() = (%v, %d); want (%v, %d)", correct, points, tt.wantCorrect, tt.wantPoints)
			}
			total += points

			got, err := usrRepo.GetUserByID(ctx, usr.ID)
			if err != nil {
				t.Fatalf("GetUserByID() failed: %v", err)
			}
			if got.EcoPoints != total {
				t.Errorf("EcoPoints = %d; want %d", got.EcoPoints, total)
			}
		})
	}
}

func TestServiceEvaluateAnswerDefaultPoints(t *testing.T) {
	svc, repo, usrRepo := setUpService(t)
	ctx := context.Background()

	mod := testutil.CreateModule(t, repo, "Energy", "Cutting power use")
	qz := testutil.CreateQuiz(t, repo, "Which bulb uses the least power?", []string{"LED", "Halogen"}, "LED", 0, mod.ID)
	usr := testutil.CreateUser(t, usrRepo, "Jane Doe", "jane@test.com", "", user.RoleStudent, true)

	correct, points, err := svc.EvaluateAnswer(ctx, usr, qz, "LED")
	if err != nil {
		t.Fatalf("EvaluateAnswer() failed: %v", err)
	}
	if !correct || points != learning.DefaultQuizPoints {
		t.Errorf("EvaluateAnswer() = (%v, %d); want (true, %d)", correct, points, learning.DefaultQuizPoints)
	}
}
