package forum

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/user"
)

var ErrPostNotFound = errors.New("post not found")

type (
	Repository interface {
		CreatePost(ctx context.Context, post Post, exec ...core.DBExecutor) (Post, error)
		// QueryAllPosts returns posts most recent first.
		QueryAllPosts(ctx context.Context, exec ...core.DBExecutor) ([]Post, error)
		GetPostByID(ctx context.Context, id int, exec ...core.DBExecutor) (Post, error)
		CreateComment(ctx context.Context, cmt Comment, exec ...core.DBExecutor) (Comment, error)
		QueryCommentsByPost(ctx context.Context, postID int, exec ...core.DBExecutor) ([]Comment, error)
	}

	Service struct {
		db   core.DB
		repo Repository
	}
)

func NewService(db core.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func (svc *Service) CreatePost(ctx context.Context, usr user.User, np NewPost) (Post, error) {
	post := Post{
		Title:     np.Title,
		Content:   np.Content,
		UserID:    usr.ID,
		CreatedAt: time.Now().UTC(),
	}
	post, err := svc.repo.CreatePost(ctx, post, svc.db)
	return post, errors.Wrap(err, "creating post")
}

func (svc *Service) QueryPosts(ctx context.Context) ([]Post, error) {
	return svc.repo.QueryAllPosts(ctx, svc.db)
}

func (svc *Service) GetPost(ctx context.Context, id int) (Post, error) {
	return svc.repo.GetPostByID(ctx, id, svc.db)
}

func (svc *Service) CreateComment(ctx context.Context, usr user.User, postID int, nc NewComment) (Comment, error) {
	cmt := Comment{
		Content:   nc.Content,
		UserID:    usr.ID,
		PostID:    postID,
		CreatedAt: time.Now().UTC(),
	}
	cmt, err := svc.repo.CreateComment(ctx, cmt, svc.db)
	return cmt, errors.Wrap(err, "creating comment")
}

func (svc *Service) QueryComments(ctx context.Context, postID int) ([]Comment, error) {
	return svc.repo.QueryCommentsByPost(ctx, postID, svc.db)
}
