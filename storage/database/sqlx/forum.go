package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/forum"
)

type postRow struct {
	ID         int       `db:"id"`
	Title      string    `db:"title"`
	Content    string    `db:"content"`
	UserID     int       `db:"user_id"`
	AuthorName string    `db:"author_name"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row postRow) unpack() forum.Post {
	return forum.Post{
		ID:         row.ID,
		Title:      row.Title,
		Content:    row.Content,
		UserID:     row.UserID,
		AuthorName: row.AuthorName,
		CreatedAt:  row.CreatedAt,
	}
}

type commentRow struct {
	ID         int       `db:"id"`
	Content    string    `db:"content"`
	UserID     int       `db:"user_id"`
	PostID     int       `db:"post_id"`
	AuthorName string    `db:"author_name"`
	CreatedAt  time.Time `db:"created_at"`
}

func (row commentRow) unpack() forum.Comment {
	return forum.Comment{
		ID:         row.ID,
		Content:    row.Content,
		UserID:     row.UserID,
		PostID:     row.PostID,
		AuthorName: row.AuthorName,
		CreatedAt:  row.CreatedAt,
	}
}

type forumRepository struct {
	db *sqlx.DB
}

var _ forum.Repository = (*forumRepository)(nil) // interface compliance check

func NewForumRepository(db *sql.DB) *forumRepository {
	return &forumRepository{db: sqlx.NewDb(db, "postgres")}
}

func (repo forumRepository) CreatePost(ctx context.Context, post forum.Post, exec ...core.DBExecutor) (forum.Post, error) {
	err := repo.db.GetContext(ctx, &post.ID, `
		INSERT INTO forum_posts (title, content, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		post.Title, post.Content, post.UserID, post.CreatedAt,
	)
	if err != nil {
		return forum.Post{}, errors.Wrap(err, "inserting post")
	}
	return post, nil
}

func (repo forumRepository) QueryAllPosts(ctx context.Context, exec ...core.DBExecutor) ([]forum.Post, error) {
	var rows []postRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT p.*, u.name AS author_name
		FROM forum_posts p JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC`)
	if err != nil {
		return nil, errors.Wrap(err, "querying posts")
	}
	posts := make([]forum.Post, 0, len(rows))
	for _, row := range rows {
		posts = append(posts, row.unpack())
	}
	return posts, nil
}

func (repo forumRepository) GetPostByID(ctx context.Context, id int, exec ...core.DBExecutor) (forum.Post, error) {
	var row postRow
	err := repo.db.GetContext(ctx, &row, `
		SELECT p.*, u.name AS author_name
		FROM forum_posts p JOIN users u ON u.id = p.user_id
		WHERE p.id = $1`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return forum.Post{}, forum.ErrPostNotFound
		}
		return forum.Post{}, errors.Wrap(err, "finding post")
	}
	return row.unpack(), nil
}

func (repo forumRepository) CreateComment(ctx context.Context, cmt forum.Comment, exec ...core.DBExecutor) (forum.Comment, error) {
	err := repo.db.GetContext(ctx, &cmt.ID, `
		INSERT INTO comments (content, user_id, post_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		cmt.Content, cmt.UserID, cmt.PostID, cmt.CreatedAt,
	)
	if err != nil {
		return forum.Comment{}, errors.Wrap(err, "inserting comment")
	}
	return cmt, nil
}

func (repo forumRepository) QueryCommentsByPost(ctx context.Context, postID int, exec ...core.DBExecutor) ([]forum.Comment, error) {
	var rows []commentRow
	err := repo.db.SelectContext(ctx, &rows, `
		SELECT c.*, u.name AS author_name
		FROM comments c JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.id`, postID)
	if err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	comments := make([]forum.Comment, 0, len(rows))
	for _, row := range rows {
		comments = append(comments, row.unpack())
	}
	return comments, nil
}
