package testutil

import (
	"context"
	"io"
	"io/ioutil"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/challenge"
	"github.com/trezcool/mazingira/core/learning"
	"github.com/trezcool/mazingira/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateModule(t *testing.T, repo learning.Repository, title, description string) learning.Module {
	mod, err := repo.CreateModule(context.Background(), learning.Module{Title: title, Description: description})
	if err != nil {
		t.Fatalf("CreateModule() failed: %v", err)
	}
	return mod
}

func CreateQuiz(
	t *testing.T,
	repo learning.Repository,
	question string,
	options []string,
	correctAnswer string,
	points, moduleID int,
) learning.Quiz {
	qz, err := repo.CreateQuiz(context.Background(), learning.Quiz{
		Question:      question,
		Options:       options,
		CorrectAnswer: correctAnswer,
		Points:        points,
		ModuleID:      moduleID,
	})
	if err != nil {
		t.Fatalf("CreateQuiz() failed: %v", err)
	}
	return qz
}

func CreateChallenge(t *testing.T, repo challenge.Repository, title, description string, points int) challenge.Challenge {
	ch, err := repo.CreateChallenge(context.Background(), challenge.Challenge{
		Title:       title,
		Description: description,
		Points:      points,
	})
	if err != nil {
		t.Fatalf("CreateChallenge() failed: %v", err)
	}
	return ch
}

// MemFileStore keeps uploads in memory.
type MemFileStore struct {
	mu    sync.Mutex
	Files map[string][]byte
}

var _ core.FileStore = (*MemFileStore)(nil)

func NewMemFileStore() *MemFileStore {
	return &MemFileStore{Files: make(map[string][]byte)}
}

func (st *MemFileStore) Save(name string, src io.Reader) (string, error) {
	content, err := ioutil.ReadAll(src)
	if err != nil {
		return "", err
	}
	st.mu.Lock()
	st.Files[name] = content
	st.mu.Unlock()
	return name, nil
}

// Logger funnels app logs into the test log.
type Logger struct {
	T *testing.T
}

var _ core.Logger = (*Logger)(nil)

func (l Logger) log(level, msg string, args []interface{}) {
	l.T.Helper()
	l.T.Logf("%s: %s %v", level, msg, args)
}

func (l Logger) Debug(msg string, args ...interface{}) { l.log("DEBUG", msg, args) }
func (l Logger) Info(msg string, args ...interface{})  { l.log("INFO", msg, args) }
func (l Logger) Warn(msg string, args ...interface{})  { l.log("WARN", msg, args) }
func (l Logger) Error(msg string, args ...interface{}) { l.log("ERROR", msg, args) }
func (l Logger) Fatal(msg string, args ...interface{}) { l.T.Fatalf("FATAL: %s %v", msg, args) }
