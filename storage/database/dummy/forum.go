package dummydb

import (
	"context"
	"sort"

	"github.com/trezcool/mazingira/core"
	"github.com/trezcool/mazingira/core/forum"
)

type forumRepository struct {
	db    *forumTable
	users *userTable
}

var _ forum.Repository = (*forumRepository)(nil) // interface compliance check

func NewForumRepository(db *DB) forum.Repository {
	return &forumRepository{db: db.forum, users: db.user}
}

func (repo *forumRepository) authorName(userID int) string {
	repo.users.RLock()
	defer repo.users.RUnlock()

	if usr, ok := repo.users.table[userID]; ok {
		return usr.Name
	}
	return ""
}

func (repo *forumRepository) CreatePost(ctx context.Context, post forum.Post, exec ...core.DBExecutor) (forum.Post, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.postPkCount++
	post.ID = repo.db.postPkCount
	repo.db.posts[post.ID] = &post
	return post, nil
}

func (repo *forumRepository) QueryAllPosts(ctx context.Context, exec ...core.DBExecutor) ([]forum.Post, error) {
	repo.db.RLock()
	posts := make([]forum.Post, 0, len(repo.db.posts))
	for _, post := range repo.db.posts {
		posts = append(posts, *post)
	}
	repo.db.RUnlock()

	sort.Slice(posts, func(i, j int) bool {
		if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].CreatedAt.After(posts[j].CreatedAt)
		}
		return posts[i].ID > posts[j].ID
	})
	for i := range posts {
		posts[i].AuthorName = repo.authorName(posts[i].UserID)
	}
	return posts, nil
}

func (repo *forumRepository) GetPostByID(ctx context.Context, id int, exec ...core.DBExecutor) (forum.Post, error) {
	repo.db.RLock()
	post, ok := repo.db.posts[id]
	if !ok {
		repo.db.RUnlock()
		return forum.Post{}, forum.ErrPostNotFound
	}
	found := *post
	repo.db.RUnlock()

	found.AuthorName = repo.authorName(found.UserID)
	return found, nil
}

func (repo *forumRepository) CreateComment(ctx context.Context, cmt forum.Comment, exec ...core.DBExecutor) (forum.Comment, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	repo.db.cmtPkCount++
	cmt.ID = repo.db.cmtPkCount
	repo.db.comments[cmt.ID] = &cmt
	return cmt, nil
}

func (repo *forumRepository) QueryCommentsByPost(ctx context.Context, postID int, exec ...core.DBExecutor) ([]forum.Comment, error) {
	repo.db.RLock()
	comments := make([]forum.Comment, 0)
	for _, cmt := range repo.db.comments {
		if cmt.PostID == postID {
			comments = append(comments, *cmt)
		}
	}
	repo.db.RUnlock()

	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	for i := range comments {
		comments[i].AuthorName = repo.authorName(comments[i].UserID)
	}
	return comments, nil
}
