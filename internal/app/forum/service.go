package forum

import (
	"context"

	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
	"github.com/nikhilbhosale/smartfarm-api/internal/observability"
)

// Service is the thin controller over the forum store: it dispatches
// and forwards the store's validation errors verbatim.
type Service struct {
	store domain.ForumStore
}

func NewService(store domain.ForumStore) *Service {
	return &Service{store: store}
}

func (s *Service) CreatePost(ctx context.Context, author, title, content string) (*domain.ForumPost, error) {
	log := observability.LoggerFromContext(ctx).With("author", author)

	post, err := s.store.CreatePost(author, title, content)
	if err != nil {
		if !domain.IsValidation(err) {
			log.Error("failed to create post", "error", err)
		}
		return nil, err
	}

	log.Info("post created", "post_index", post.Index, "post_id", post.ID)
	return post, nil
}

func (s *Service) AddComment(ctx context.Context, index int, text string) error {
	log := observability.LoggerFromContext(ctx).With("post_index", index)

	if err := s.store.AddComment(index, text); err != nil {
		if !domain.IsValidation(err) {
			log.Error("failed to add comment", "error", err)
		}
		return err
	}

	log.Info("comment added")
	return nil
}

func (s *Service) ListPosts(ctx context.Context) ([]*domain.ForumPost, error) {
	return s.store.Posts()
}
