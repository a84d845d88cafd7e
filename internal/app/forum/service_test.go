package forum_test

import (
	"context"
	"testing"

	"github.com/nikhilbhosale/smartfarm-api/internal/adapters/storage/memory"
	"github.com/nikhilbhosale/smartfarm-api/internal/app/forum"
	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
)

func TestCreatePostAndComment(t *testing.T) {
	ctx := context.Background()
	svc := forum.NewService(memory.NewForumStore())

	post, err := svc.CreatePost(ctx, "Farmer", "Irrigation tips", "Drip works well")
	if err != nil {
		t.Fatalf("CreatePost failed: %v", err)
	}
	if post.Index != 0 {
		t.Fatalf("expected index 0, got %d", post.Index)
	}

	if err := svc.AddComment(ctx, 0, "Thanks!"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	posts, err := svc.ListPosts(ctx)
	if err != nil {
		t.Fatalf("ListPosts failed: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	if len(posts[0].Comments) != 1 || posts[0].Comments[0] != "Thanks!" {
		t.Fatalf("unexpected comments: %v", posts[0].Comments)
	}
}

func TestValidationErrorsForwardedVerbatim(t *testing.T) {
	ctx := context.Background()
	store := memory.NewForumStore()
	svc := forum.NewService(store)

	_, svcErr := svc.CreatePost(ctx, "Farmer", "", "content")
	_, storeErr := store.CreatePost("Farmer", "", "content")
	if svcErr == nil || storeErr == nil {
		t.Fatalf("expected validation errors, got %v / %v", svcErr, storeErr)
	}
	if svcErr.Error() != storeErr.Error() {
		t.Fatalf("service must forward store errors verbatim: %q vs %q", svcErr.Error(), storeErr.Error())
	}
	if !domain.IsValidation(svcErr) {
		t.Fatalf("expected validation error, got %v", svcErr)
	}

	if err := svc.AddComment(ctx, 7, "hello"); !domain.IsValidation(err) {
		t.Fatalf("expected validation error for missing post, got %v", err)
	}
}
