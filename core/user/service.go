package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("a user with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, exec ...core.DBExecutor) error
		CreateUser(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		GetUserByID(ctx context.Context, id int, exec ...core.DBExecutor) (User, error)
		GetUserByEmail(ctx context.Context, email string, exec ...core.DBExecutor) (User, error)
		// QueryTopUsers returns users ordered by descending eco points
		// (ties broken by ascending id), optionally restricted to a role.
		QueryTopUsers(ctx context.Context, limit int, role string, exec ...core.DBExecutor) ([]User, error)
		QueryUsersByID(ctx context.Context, ids []int, exec ...core.DBExecutor) ([]User, error)
		UpdatePassword(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
		AddEcoPoints(ctx context.Context, userID, points int, exec ...core.DBExecutor) error
		SetGreenCoins(ctx context.Context, userID, coins int, exec ...core.DBExecutor) (User, error)
		SetLastLogin(ctx context.Context, usr User, exec ...core.DBExecutor) (User, error)
	}

	ServiceInterface interface {
		CheckEmailUniqueness(ctx context.Context, email string) error
		Register(ctx context.Context, nu NewUser) (User, error)
		GetByID(ctx context.Context, id int) (User, error)
		GetByEmail(ctx context.Context, email string) (User, error)
		TopUsers(ctx context.Context, limit int) ([]User, error)
		Leaderboard(ctx context.Context, limit int) ([]User, error)
		GetByIDs(ctx context.Context, ids []int) ([]User, error)
		SetGreenCoins(ctx context.Context, userID, coins int) (User, error)
		SetLastLogin(ctx context.Context, usr User) (User, error)
	}

	Service struct {
		db      core.DB
		repo    Repository
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ ServiceInterface = (*Service)(nil)

func NewService(db core.DB, repo Repository, mailSvc core.EmailService, conf *core.Config) *Service {
	return &Service{db: db, repo: repo, mailSvc: mailSvc, conf: conf}
}

func (svc *Service) CheckEmailUniqueness(ctx context.Context, email string) error {
	if err := svc.repo.CheckEmailUniqueness(ctx, email, svc.db); err != nil {
		if errors.Cause(err) == ErrEmailExists {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Register creates a new account and sends a welcome email.
func (svc *Service) Register(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	usr := User{
		Name:      nu.Name,
		Email:     nu.Email,
		Role:      nu.Role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if usr.Role == "" {
		usr.Role = RoleStudent
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}

	usr, err := svc.repo.CreateUser(ctx, usr, svc.db)
	if err != nil {
		return User{}, errors.Wrap(err, "creating user")
	}

	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: usr,
	})
	return usr, nil
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id, svc.db)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */), svc.db)
}

// TopUsers returns the overall leaderboard shown on the landing page.
func (svc *Service) TopUsers(ctx context.Context, limit int) ([]User, error) {
	return svc.repo.QueryTopUsers(ctx, limit, "", svc.db)
}

// Leaderboard returns the top students by eco points.
func (svc *Service) Leaderboard(ctx context.Context, limit int) ([]User, error) {
	return svc.repo.QueryTopUsers(ctx, limit, RoleStudent, svc.db)
}

func (svc *Service) GetByIDs(ctx context.Context, ids []int) ([]User, error) {
	return svc.repo.QueryUsersByID(ctx, ids, svc.db)
}

// SetGreenCoins overwrites the user's green coin balance with a
// client-reported value; negatives are clamped to keep the balance invariant.
func (svc *Service) SetGreenCoins(ctx context.Context, userID, coins int) (User, error) {
	if coins < 0 {
		coins = 0
	}
	return svc.repo.SetGreenCoins(ctx, userID, coins, svc.db)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	return svc.repo.SetLastLogin(ctx, usr, svc.db)
}
