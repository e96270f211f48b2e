package main

import (
	"context"
	"database/sql"
	"reflect"
	"testing"

	"github.com/trezcool/mazingira/core/user"
	dummydb "github.com/trezcool/mazingira/storage/database/dummy"
	testutil "github.com/trezcool/mazingira/tests"
)

func setUpCLI(t *testing.T) (*commandLine, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	repo := dummydb.NewUserRepository(db)
	return &commandLine{usrRepo: repo}, repo
}

func mockPassword(t *testing.T, pwd string) {
	t.Helper()

	orig := readPasswordFunc
	readPasswordFunc = func(fd int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

func TestCommandLineUsage(t *testing.T) {
	cli, _ := setUpCLI(t)
	mockPassword(t, "S3cure#pass!x")

	tests := []struct {
		name string
		args []string
	}{
		{"no command", []string{"admin"}},
		{"unknown command", []string{"admin", "frobnicate"}},
		{"adduser without flags", []string{"admin", "adduser"}},
		{"adduser missing email", []string{"admin", "adduser", "-name", "Jane Doe"}},
		{"resetpassword without flags", []string{"admin", "resetpassword"}},
		{"migrate without args", []string{"admin", "migrate"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(tt.args); err != errHelp {
				t.Errorf("run(%v) error = %v; want %v", tt.args, err, errHelp)
			}
		})
	}
}

func TestCommandLineEmptyPassword(t *testing.T) {
	cli, _ := setUpCLI(t)
	mockPassword(t, "")

	args := []string{"admin", "adduser", "-name", "Jane Doe", "-email", "jane@test.com"}
	if err := cli.run(args); err != errHelp {
		t.Errorf("run(%v) error = %v; want %v", args, err, errHelp)
	}
}

func TestCommandLineAddUser(t *testing.T) {
	cli, repo := setUpCLI(t)
	ctx := context.Background()
	mockPassword(t, "S3cure#pass!x")

	args := []string{"admin", "adduser", "-name", " Mr. Mwangi ", "-email", "Mwangi@Test.com", "-role", user.RoleTeacher}
	if err := cli.run(args); err != nil {
		t.Fatalf("run(%v) failed: %v", args, err)
	}

	usr, err := repo.GetUserByEmail(ctx, "mwangi@test.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	if usr.Name != "Mr. Mwangi" {
		t.Errorf("name = %q; want %q", usr.Name, "Mr. Mwangi")
	}
	if usr.Role != user.RoleTeacher {
		t.Errorf("role = %q; want %q", usr.Role, user.RoleTeacher)
	}
	if !usr.IsActive {
		t.Error("created user is not active")
	}
	if err = usr.CheckPassword("S3cure#pass!x"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}

	// defaults to the student role
	args = []string{"admin", "adduser", "-name", "Jane Doe", "-email", "jane@test.com"}
	if err = cli.run(args); err != nil {
		t.Fatalf("run(%v) failed: %v", args, err)
	}
	usr, err = repo.GetUserByEmail(ctx, "jane@test.com")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed: %v", err)
	}
	if usr.Role != user.RoleStudent {
		t.Errorf("role = %q; want %q", usr.Role, user.RoleStudent)
	}
}

func TestCommandLineAddUserExisting(t *testing.T) {
	cli, repo := setUpCLI(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Jane Doe", "jane@test.com", "Old#pass1x", user.RoleStudent, true)
	mockPassword(t, "New#pass2x")

	// a second adduser only resets the password; the role never changes
	args := []string{"admin", "adduser", "-name", "Jane Doe", "-email", "jane@test.com", "-role", user.RoleAdmin}
	if err := cli.run(args); err != nil {
		t.Fatalf("run(%v) failed: %v", args, err)
	}

	got, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if got.Role != user.RoleStudent {
		t.Errorf("role = %q; want %q", got.Role, user.RoleStudent)
	}
	if err = got.CheckPassword("New#pass2x"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}
	if got.CheckPassword("Old#pass1x") == nil {
		t.Error("old password still valid")
	}
}

func TestCommandLineResetPassword(t *testing.T) {
	cli, repo := setUpCLI(t)
	ctx := context.Background()
	usr := testutil.CreateUser(t, repo, "Jane Doe", "jane@test.com", "Old#pass1x", user.RoleStudent, true)
	mockPassword(t, "New#pass2x")

	args := []string{"admin", "resetpassword", "-email", "jane@test.com"}
	if err := cli.run(args); err != nil {
		t.Fatalf("run(%v) failed: %v", args, err)
	}

	got, err := repo.GetUserByID(ctx, usr.ID)
	if err != nil {
		t.Fatalf("GetUserByID() failed: %v", err)
	}
	if err = got.CheckPassword("New#pass2x"); err != nil {
		t.Errorf("CheckPassword() failed: %v", err)
	}

	// unknown user
	args = []string{"admin", "resetpassword", "-email", "nobody@test.com"}
	if err = cli.run(args); err != user.ErrNotFound {
		t.Errorf("run(%v) error = %v; want %v", args, err, user.ErrNotFound)
	}
}

func TestCommandLineMigrate(t *testing.T) {
	cli, _ := setUpCLI(t)

	var gotCommand string
	var gotArgs []string
	orig := gooseRunFunc
	gooseRunFunc = func(command string, db *sql.DB, args ...string) error {
		gotCommand = command
		gotArgs = args
		return nil
	}
	t.Cleanup(func() { gooseRunFunc = orig })

	if err := cli.run([]string{"admin", "migrate", "up"}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if gotCommand != "up" || len(gotArgs) != 0 {
		t.Errorf("goose called with (%q, %v); want (%q, [])", gotCommand, gotArgs, "up")
	}

	if err := cli.run([]string{"admin", "migrate", "down-to", "2"}); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	if gotCommand != "down-to" || !reflect.DeepEqual(gotArgs, []string{"2"}) {
		t.Errorf("goose called with (%q, %v); want (%q, [2])", gotCommand, gotArgs, "down-to")
	}
}
