package challenge

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mazingira/core"
)

// Submission statuses. pending is the initial state;
// approved and rejected are terminal.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// Review actions. Any other action token is a silent no-op.
const (
	ActionApprove = "approve"
	ActionReject  = "reject"
)

type Challenge struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Points      int    `json:"points"`
}

type Submission struct {
	ID          int       `json:"id"`
	UserID      int       `json:"user_id"`
	ChallengeID int       `json:"challenge_id"`
	ProofLink   string    `json:"proof_link"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"` // UTC
}

// NewChallenge contains the challenge form fields; used for both create and edit.
type NewChallenge struct {
	Title       string `form:"title" validate:"required,max=200"`
	Description string `form:"description" validate:"required"`
	Points      int    `form:"points" validate:"omitempty,min=1,max=200"`
}

func (nc *NewChallenge) Validate(validate *validator.Validate) error {
	nc.Title = core.CleanString(nc.Title)
	nc.Description = core.CleanString(nc.Description)
	return validate.Struct(nc)
}
