package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/challenge"
	"github.com/trezcool/mazingira/core/forum"
	"github.com/trezcool/mazingira/core/learning"
	"github.com/trezcool/mazingira/core/user"
)

type (
	DB struct {
		user      *userTable
		learning  *learningTable
		challenge *challengeTable
		forum     *forumTable
	}

	userTable struct {
		sync.RWMutex
		pkCount int
		table   map[int]*user.User
	}

	learningTable struct {
		sync.RWMutex
		modPkCount  int
		quizPkCount int
		modules     map[int]*learning.Module
		quizzes     map[int]*learning.Quiz
	}

	challengeTable struct {
		sync.RWMutex
		chPkCount   int
		subPkCount  int
		challenges  map[int]*challenge.Challenge
		submissions map[int]*challenge.Submission
	}

	forumTable struct {
		sync.RWMutex
		postPkCount int
		cmtPkCount  int
		posts       map[int]*forum.Post
		comments    map[int]*forum.Comment
	}
)

func Open() (*DB, error) {
	db := &DB{
		user: &userTable{table: make(map[int]*user.User)},
		learning: &learningTable{
			modules: make(map[int]*learning.Module),
			quizzes: make(map[int]*learning.Quiz),
		},
		challenge: &challengeTable{
			challenges:  make(map[int]*challenge.Challenge),
			submissions: make(map[int]*challenge.Submission),
		},
		forum: &forumTable{
			posts:    make(map[int]*forum.Post),
			comments: make(map[int]*forum.Comment),
		},
	}
	return db, nil
}

// *DB satisfies core.DB so services can be wired the same way they are in
// production; the repositories keep their state in memory and never touch
// the executor.
var _ core.DB = (*DB)(nil)

func (db *DB) Exec(query string, args ...interface{}) (sql.Result, error) { return nil, nil }
func (db *DB) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (db *DB) Query(query string, args ...interface{}) (*sql.Rows, error) { return nil, nil }
func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (db *DB) QueryRow(query string, args ...interface{}) *sql.Row { return nil }
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}
func (db *DB) Begin() (core.DBTransactor, error) { return tx{}, nil }
func (db *DB) BeginTx(ctx context.Context, opts *sql.TxOptions) (core.DBTransactor, error) {
	return tx{}, nil
}

type tx struct{}

var _ core.DBTransactor = tx{}

func (tx) Exec(query string, args ...interface{}) (sql.Result, error) { return nil, nil }
func (tx) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, nil
}
func (tx) Query(query string, args ...interface{}) (*sql.Rows, error) { return nil, nil }
func (tx) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, nil
}
func (tx) QueryRow(query string, args ...interface{}) *sql.Row { return nil }
func (tx) QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return nil
}
func (tx) Commit() error   { return nil }
func (tx) Rollback() error { return nil }
