package forum

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/trezcool/mazingira/core"
)

type Post struct {
	ID         int       `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	UserID     int       `json:"user_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

type Comment struct {
	ID         int       `json:"id"`
	Content    string    `json:"content"`
	UserID     int       `json:"user_id"`
	PostID     int       `json:"post_id"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

type NewPost struct {
	Title   string `form:"title" validate:"required,max=200"`
	Content string `form:"content" validate:"required"`
}

func (np *NewPost) Validate(validate *validator.Validate) error {
	np.Title = core.CleanString(np.Title)
	np.Content = core.CleanString(np.Content)
	return validate.Struct(np)
}

type NewComment struct {
	Content string `form:"content" validate:"required"`
}

func (nc *NewComment) Validate(validate *validator.Validate) error {
	nc.Content = core.CleanString(nc.Content)
	return validate.Struct(nc)
}
