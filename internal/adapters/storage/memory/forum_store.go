package memory

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
)

// ForumStore is the in-memory post table shared by every session in
// the process. All mutations go through one mutex so post indices stay
// stable and comment order stays append-only under concurrent use.
type ForumStore struct {
	mu    sync.RWMutex
	posts []*domain.ForumPost
	now   func() time.Time
}

func NewForumStore() *ForumStore {
	return &ForumStore{
		now: time.Now,
	}
}

func (s *ForumStore) CreatePost(author, title, content string) (*domain.ForumPost, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, domain.NewValidationError("Please fill in both title and content.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	post := &domain.ForumPost{
		ID:        domain.PostID(uuid.NewString()),
		Index:     len(s.posts),
		Author:    author,
		Title:     title,
		Content:   content,
		Comments:  []string{},
		CreatedAt: s.now(),
	}
	s.posts = append(s.posts, post)

	return snapshotPost(post), nil
}

func (s *ForumStore) AddComment(index int, text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.NewValidationError("Please enter a comment.")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.posts) {
		return domain.NewValidationError("Post %d does not exist.", index)
	}

	post := s.posts[index]
	post.Comments = append(post.Comments, text)
	return nil
}

func (s *ForumStore) Posts() ([]*domain.ForumPost, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.ForumPost, 0, len(s.posts))
	for _, p := range s.posts {
		out = append(out, snapshotPost(p))
	}
	return out, nil
}

// snapshotPost copies a post so callers cannot mutate store state
// through the returned pointer.
func snapshotPost(p *domain.ForumPost) *domain.ForumPost {
	cp := *p
	cp.Comments = make([]string, len(p.Comments))
	copy(cp.Comments, p.Comments)
	return &cp
}
