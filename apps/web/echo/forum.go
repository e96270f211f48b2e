package echoweb

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/mazingira/core/forum"
)

func (s *server) forum(ctx echo.Context) error {
	posts, err := s.deps.ForumSvc.QueryPosts(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying posts")
	}
	return s.render(ctx, "forum", struct{ Posts []forum.Post }{posts})
}

func (s *server) createPost(ctx echo.Context) error {
	usr, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return s.redirectToLogin(ctx)
	}

	var data forum.NewPost
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPost")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			posts, pErr := s.deps.ForumSvc.QueryPosts(ctx.Request().Context())
			if pErr != nil {
				return errors.Wrap(pErr, "querying posts")
			}
			return s.render(ctx, "forum", struct{ Posts []forum.Post }{posts}, fldErrs)
		}
		return err
	}

	if _, err := s.deps.ForumSvc.CreatePost(ctx.Request().Context(), usr, data); err != nil {
		return errors.Wrap(err, "creating post")
	}
	addFlash(ctx, flashSuccess, "Posted to the forum.")
	return ctx.Redirect(http.StatusSeeOther, "/forum")
}

type forumPostDetail struct {
	Post     forum.Post
	Comments []forum.Comment
}

func (s *server) forumPost(ctx echo.Context) error {
	detail, err := s.forumPostDetail(ctx)
	if err != nil {
		return err
	}
	return s.render(ctx, "forum_post", detail)
}

func (s *server) forumPostDetail(ctx echo.Context) (forumPostDetail, error) {
	id, err := intParam(ctx, "id")
	if err != nil {
		return forumPostDetail{}, err
	}
	post, err := s.deps.ForumSvc.GetPost(ctx.Request().Context(), id)
	if err != nil {
		return forumPostDetail{}, notFound(err, forum.ErrPostNotFound)
	}
	comments, err := s.deps.ForumSvc.QueryComments(ctx.Request().Context(), post.ID)
	if err != nil {
		return forumPostDetail{}, errors.Wrap(err, "querying comments")
	}
	return forumPostDetail{Post: post, Comments: comments}, nil
}

func (s *server) createComment(ctx echo.Context) error {
	usr, err := getContextUser(ctx, s.deps.UserSvc)
	if err != nil {
		return s.redirectToLogin(ctx)
	}

	id, err := intParam(ctx, "id")
	if err != nil {
		return err
	}
	post, err := s.deps.ForumSvc.GetPost(ctx.Request().Context(), id)
	if err != nil {
		return notFound(err, forum.ErrPostNotFound)
	}

	var data forum.NewComment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewComment")
	}
	if err := data.Validate(s.deps.Validate); err != nil {
		if fldErrs, ok := s.fieldErrors(err); ok {
			detail, dErr := s.forumPostDetail(ctx)
			if dErr != nil {
				return dErr
			}
			return s.render(ctx, "forum_post", detail, fldErrs)
		}
		return err
	}

	if _, err := s.deps.ForumSvc.CreateComment(ctx.Request().Context(), usr, post.ID, data); err != nil {
		return errors.Wrap(err, "creating comment")
	}
	return ctx.Redirect(http.StatusSeeOther, "/forum/"+strconv.Itoa(post.ID))
}
