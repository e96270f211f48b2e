package forum_test

import (
	"context"
	"testing"

	"github.com/trezcool/mazingira/core/forum"
	"github.com/trezcool/mazingira/core/user"
	dummydb "github.com/trezcool/mazingira/storage/database/dummy"
	testutil "github.com/trezcool/mazingira/tests"
)

func setUpService(t *testing.T) (*forum.Service, user.Repository) {
	t.Helper()

	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open() failed: %v", err)
	}
	return forum.NewService(db, dummydb.NewForumRepository(db)), dummydb.NewUserRepository(db)
}

func TestServicePostsAndComments(t *testing.T) {
	svc, usrRepo := setUpService(t)
	ctx := context.Background()

	alice := testutil.CreateUser(t, usrRepo, "Alice", "alice@test.com", "", user.RoleStudent, true)
	bob := testutil.CreateUser(t, usrRepo, "Bob", "bob@test.com", "", user.RoleStudent, true)

	first, err := svc.CreatePost(ctx, alice, forum.NewPost{Title: "Beach cleanup", Content: "Who is in this Saturday?"})
	if err != nil {
		t.Fatalf("CreatePost() failed: %v", err)
	}
	second, err := svc.CreatePost(ctx, bob, forum.NewPost{Title: "Composting tips", Content: "Share your setups"})
	if err != nil {
		t.Fatalf("CreatePost() failed: %v", err)
	}

	// most recent first
	posts, err := svc.QueryPosts(ctx)
	if err != nil {
		t.Fatalf("QueryPosts() failed: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("QueryPosts() returned %d posts; want 2", len(posts))
	}
	if posts[0].ID != second.ID || posts[1].ID != first.ID {
		t.Errorf("QueryPosts() order = [%d, %d]; want [%d, %d]", posts[0].ID, posts[1].ID, second.ID, first.ID)
	}
	if posts[0].AuthorName != "Bob" {
		t.Errorf("AuthorName = %q; want %q", posts[0].AuthorName, "Bob")
	}

	if _, err = svc.GetPost(ctx, 999); err != forum.ErrPostNotFound {
		t.Errorf("GetPost() error = %v; want %v", err, forum.ErrPostNotFound)
	}

	cmt, err := svc.CreateComment(ctx, bob, first.ID, forum.NewComment{Content: "Count me in!"})
	if err != nil {
		t.Fatalf("CreateComment() failed: %v", err)
	}
	if cmt.PostID != first.ID || cmt.UserID != bob.ID {
		t.Errorf("CreateComment() = %+v; want post %d by user %d", cmt, first.ID, bob.ID)
	}

	comments, err := svc.QueryComments(ctx, first.ID)
	if err != nil {
		t.Fatalf("QueryComments() failed: %v", err)
	}
	if len(comments) != 1 || comments[0].AuthorName != "Bob" {
		t.Errorf("QueryComments() = %+v; want 1 comment by Bob", comments)
	}
	if comments, _ = svc.QueryComments(ctx, second.ID); len(comments) != 0 {
		t.Errorf("QueryComments() returned %d comments; want 0", len(comments))
	}
}
