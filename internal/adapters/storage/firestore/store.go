package firestore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
)

// Store implements domain.SessionStore, domain.ChatStore and
// domain.ForumStore on Firestore. It trades the default in-memory,
// process-lifetime state for durable state; forum post indices are
// assigned through a transactional counter so they stay stable across
// concurrent writers.
type Store struct {
	client *firestore.Client
}

func NewStore(ctx context.Context, projectID string) (*Store, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID is required for Firestore store")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("creating firestore client: %w", err)
	}

	return &Store{client: client}, nil
}

// ─────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────

func (s *Store) sessionsCol() *firestore.CollectionRef {
	return s.client.Collection("sessions")
}

func (s *Store) sessionDocRef(id domain.SessionID) *firestore.DocumentRef {
	return s.sessionsCol().Doc(string(id))
}

func (s *Store) turnsCol(sessionID domain.SessionID) *firestore.CollectionRef {
	return s.sessionDocRef(sessionID).Collection("turns")
}

func (s *Store) postsCol() *firestore.CollectionRef {
	return s.client.Collection("posts")
}

func (s *Store) forumMetaRef() *firestore.DocumentRef {
	return s.client.Collection("meta").Doc("forum")
}

// ─────────────────────────────────────────
// Firestore Types
// ─────────────────────────────────────────

type sessionDoc struct {
	UserName    string    `firestore:"user_name"`
	PostCreated bool      `firestore:"post_created"`
	CreatedAt   time.Time `firestore:"created_at"`
	UpdatedAt   time.Time `firestore:"updated_at"`
}

type turnDoc struct {
	SessionID string    `firestore:"session_id"`
	Role      string    `firestore:"role"`
	Text      string    `firestore:"text"`
	CreatedAt time.Time `firestore:"created_at"`
}

type postDoc struct {
	Index     int64     `firestore:"index"`
	Author    string    `firestore:"author"`
	Title     string    `firestore:"title"`
	Content   string    `firestore:"content"`
	Comments  []string  `firestore:"comments"`
	CreatedAt time.Time `firestore:"created_at"`
}

type forumMetaDoc struct {
	NextIndex int64 `firestore:"next_index"`
}

// ─────────────────────────────────────────
// SessionStore implementation
// ─────────────────────────────────────────

func (s *Store) CreateSession(session *domain.Session) error {
	ctx := context.Background()

	doc := sessionDoc{
		UserName:    session.UserName,
		PostCreated: session.PostCreated,
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}

	if _, err := s.sessionDocRef(session.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("firestore CreateSession: %w", err)
	}
	return nil
}

func (s *Store) UpdateSession(session *domain.Session) error {
	ctx := context.Background()

	doc := map[string]interface{}{
		"user_name":    session.UserName,
		"post_created": session.PostCreated,
		"created_at":   session.CreatedAt,
		"updated_at":   session.UpdatedAt,
	}

	if _, err := s.sessionDocRef(session.ID).Set(ctx, doc, firestore.MergeAll); err != nil {
		return fmt.Errorf("firestore UpdateSession: %w", err)
	}
	return nil
}

func (s *Store) GetSession(id domain.SessionID) (*domain.Session, error) {
	ctx := context.Background()

	snap, err := s.sessionDocRef(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("firestore GetSession: %w", err)
	}

	var doc sessionDoc
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("firestore GetSession decode: %w", err)
	}

	return &domain.Session{
		ID:          id,
		UserName:    doc.UserName,
		PostCreated: doc.PostCreated,
		CreatedAt:   doc.CreatedAt,
		UpdatedAt:   doc.UpdatedAt,
	}, nil
}

// ─────────────────────────────────────────
// ChatStore implementation
// ─────────────────────────────────────────

func (s *Store) AppendTurn(turn *domain.ChatTurn) error {
	ctx := context.Background()

	doc := turnDoc{
		SessionID: string(turn.SessionID),
		Role:      string(turn.Role),
		Text:      turn.Text,
		CreatedAt: turn.CreatedAt,
	}

	if _, err := s.turnsCol(turn.SessionID).Doc(string(turn.ID)).Set(ctx, doc); err != nil {
		return fmt.Errorf("firestore AppendTurn: %w", err)
	}
	return nil
}

func (s *Store) TurnsBySession(sessionID domain.SessionID, limit int) ([]*domain.ChatTurn, error) {
	ctx := context.Background()

	q := s.turnsCol(sessionID).OrderBy("created_at", firestore.Asc)
	if limit > 0 {
		q = q.LimitToLast(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var out []*domain.ChatTurn
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore TurnsBySession: %w", err)
		}

		var doc turnDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode turnDoc: %w", err)
		}

		out = append(out, &domain.ChatTurn{
			ID:        domain.TurnID(snap.Ref.ID),
			SessionID: sessionID,
			Role:      domain.Role(doc.Role),
			Text:      doc.Text,
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, nil
}

// ─────────────────────────────────────────
// ForumStore implementation
// ─────────────────────────────────────────

func (s *Store) CreatePost(author, title, content string) (*domain.ForumPost, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, domain.NewValidationError("Please fill in both title and content.")
	}

	ctx := context.Background()
	now := time.Now()
	id := uuid.NewString()

	var assigned int64
	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		var meta forumMetaDoc
		snap, err := tx.Get(s.forumMetaRef())
		switch {
		case err == nil:
			if err := snap.DataTo(&meta); err != nil {
				return fmt.Errorf("decode forumMetaDoc: %w", err)
			}
		case status.Code(err) == codes.NotFound:
			meta.NextIndex = 0
		default:
			return err
		}

		assigned = meta.NextIndex

		if err := tx.Set(s.postsCol().Doc(id), postDoc{
			Index:     assigned,
			Author:    author,
			Title:     title,
			Content:   content,
			Comments:  []string{},
			CreatedAt: now,
		}); err != nil {
			return err
		}

		return tx.Set(s.forumMetaRef(), forumMetaDoc{NextIndex: assigned + 1})
	})
	if err != nil {
		return nil, fmt.Errorf("firestore CreatePost: %w", err)
	}

	return &domain.ForumPost{
		ID:        domain.PostID(id),
		Index:     int(assigned),
		Author:    author,
		Title:     title,
		Content:   content,
		Comments:  []string{},
		CreatedAt: now,
	}, nil
}

func (s *Store) AddComment(index int, text string) error {
	if strings.TrimSpace(text) == "" {
		return domain.NewValidationError("Please enter a comment.")
	}

	ctx := context.Background()

	err := s.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		q := s.postsCol().Where("index", "==", int64(index)).Limit(1)
		docs := tx.Documents(q)
		defer docs.Stop()

		snap, err := docs.Next()
		if err == iterator.Done {
			return domain.NewValidationError("Post %d does not exist.", index)
		}
		if err != nil {
			return err
		}

		var doc postDoc
		if err := snap.DataTo(&doc); err != nil {
			return fmt.Errorf("decode postDoc: %w", err)
		}

		// ArrayUnion would deduplicate; comments may repeat, so the
		// whole slice is rewritten inside the transaction instead.
		doc.Comments = append(doc.Comments, text)
		return tx.Set(snap.Ref, doc)
	})
	if err != nil {
		if domain.IsValidation(err) {
			return err
		}
		return fmt.Errorf("firestore AddComment: %w", err)
	}
	return nil
}

func (s *Store) Posts() ([]*domain.ForumPost, error) {
	ctx := context.Background()

	iter := s.postsCol().OrderBy("index", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var out []*domain.ForumPost
	for {
		snap, err := iter.Next()
		if err != nil {
			if err == iterator.Done {
				break
			}
			return nil, fmt.Errorf("firestore Posts: %w", err)
		}

		var doc postDoc
		if err := snap.DataTo(&doc); err != nil {
			return nil, fmt.Errorf("decode postDoc: %w", err)
		}

		comments := doc.Comments
		if comments == nil {
			comments = []string{}
		}

		out = append(out, &domain.ForumPost{
			ID:        domain.PostID(snap.Ref.ID),
			Index:     int(doc.Index),
			Author:    doc.Author,
			Title:     doc.Title,
			Content:   doc.Content,
			Comments:  comments,
			CreatedAt: doc.CreatedAt,
		})
	}
	return out, nil
}
