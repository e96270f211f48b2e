package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"
	"github.com/volatiletech/strmangle"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/user"
)

type userRow struct {
	ID           int       `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Role         string    `db:"role"`
	EcoPoints    int       `db:"eco_points"`
	GreenCoins   int       `db:"green_coins"`
	IsActive     bool      `db:"is_active"`
	PasswordHash []byte    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
	LastLogin    null.Time `db:"last_login"`
}

func (row userRow) unpack() user.User {
	return user.User{
		ID:           row.ID,
		Name:         row.Name,
		Email:        row.Email,
		Role:         row.Role,
		EcoPoints:    row.EcoPoints,
		GreenCoins:   row.GreenCoins,
		IsActive:     row.IsActive,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt,
		UpdatedAt:    row.UpdatedAt,
		LastLogin:    row.LastLogin.Time,
	}
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(db *sql.DB) *userRepository {
	return &userRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo userRepository) getExec(svcExec []core.DBExecutor) core.DBExecutor {
	if len(svcExec) > 0 {
		return svcExec[0]
	}
	return repo.db.DB
}

// trapNoRowsErr maps psql "no rows" err to user.ErrNotFound
func (repo userRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return user.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo userRepository) CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error {
	var exists bool
	err := repo.getExec(exec).
		QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).
		Scan(&exists)
	if err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if exists {
		return user.ErrEmailExists
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	err := repo.db.GetContext(ctx, &usr.ID, `
		INSERT INTO users (name, email, password_hash, role, eco_points, green_coins, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`,
		usr.Name, usr.Email, usr.PasswordHash, usr.Role, usr.EcoPoints, usr.GreenCoins, usr.IsActive,
		usr.CreatedAt, usr.UpdatedAt,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by id")
	}
	return row.unpack(), nil
}

func (repo userRepository) GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM users WHERE email = $1`, email); err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "finding user by email")
	}
	return row.unpack(), nil
}

func (repo userRepository) QueryTopUsers(ctx context.Context, limit int, role string, exec ...core.DBExecutor) ([]user.User, error) {
	query := `SELECT * FROM users`
	args := []interface{}{limit}
	if role != "" {
		query += ` WHERE role = $2`
		args = append(args, role)
	}
	query += ` ORDER BY eco_points DESC, id ASC LIMIT $1`

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying top users")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.unpack())
	}
	return users, nil
}

func (repo userRepository) QueryUsersByID(ctx context.Context, ids []int, exec ...core.DBExecutor) ([]user.User, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	query := `SELECT * FROM users WHERE id IN (` + strmangle.Placeholders(true /* indexPlaceholders */, len(ids), 1, 1) + `)`
	args := make([]interface{}, 0, len(ids))
	for _, id := range ids {
		args = append(args, id)
	}

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying users by id")
	}
	users := make([]user.User, 0, len(rows))
	for _, row := range rows {
		users = append(users, row.unpack())
	}
	return users, nil
}

func (repo userRepository) UpdatePassword(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	_, err := repo.getExec(exec).ExecContext(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2`,
		usr.PasswordHash, usr.ID,
	)
	if err != nil {
		return user.User{}, errors.Wrap(err, "updating password")
	}
	return usr, nil
}

func (repo userRepository) AddEcoPoints(ctx context.Context, userID, points int, exec ...core.DBExecutor) error {
	res, err := repo.getExec(exec).ExecContext(ctx, `
		UPDATE users SET eco_points = eco_points + $1, updated_at = now() WHERE id = $2`,
		points, userID,
	)
	if err != nil {
		return errors.Wrap(err, "adding eco points")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (repo userRepository) SetGreenCoins(ctx context.Context, userID, coins int, exec ...core.DBExecutor) (user.User, error) {
	var row userRow
	err := repo.db.GetContext(ctx, &row, `
		UPDATE users SET green_coins = $1, updated_at = now() WHERE id = $2
		RETURNING *`,
		coins, userID,
	)
	if err != nil {
		return user.User{}, repo.trapNoRowsErr(err, "setting green coins")
	}
	return row.unpack(), nil
}

func (repo userRepository) SetLastLogin(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	now := time.Now().UTC()
	_, err := repo.getExec(exec).ExecContext(ctx, `UPDATE users SET last_login = $1 WHERE id = $2`, now, usr.ID)
	if err != nil {
		return user.User{}, errors.Wrap(err, "setting last login")
	}
	usr.LastLogin = now
	return usr, nil
}
