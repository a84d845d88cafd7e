package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
	"github.com/nikhilbhosale/smartfarm-api/internal/observability"
)

// Service glues user actions to the model gateway and the session
// state. It validates input and dispatches; the analysis, chat and
// session semantics themselves live behind the ports.
type Service struct {
	gateway      domain.ModelGateway
	sessionStore domain.SessionStore
	chatStore    domain.ChatStore
	historyLimit int
	now          func() time.Time
}

func NewService(
	gateway domain.ModelGateway,
	sessionStore domain.SessionStore,
	chatStore domain.ChatStore,
	historyLimit int,
) *Service {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &Service{
		gateway:      gateway,
		sessionStore: sessionStore,
		chatStore:    chatStore,
		historyLimit: historyLimit,
		now:          time.Now,
	}
}

// StartSession creates a fresh session. State created here lives until
// the process stops (or, with the Firestore backend, beyond it).
func (s *Service) StartSession(ctx context.Context, userName string) (*domain.Session, error) {
	if strings.TrimSpace(userName) == "" {
		userName = "Farmer"
	}

	log := observability.LoggerFromContext(ctx).With("user_name", userName)
	log.Info("starting new session")

	now := s.now()
	session := &domain.Session{
		ID:        domain.SessionID(uuid.NewString()),
		UserName:  userName,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessionStore.CreateSession(session); err != nil {
		log.Error("failed to create session", "error", err)
		return nil, err
	}

	log.Info("session started", "session_id", session.ID)
	return session, nil
}

// GetTranscript returns a session and its full chat transcript.
func (s *Service) GetTranscript(ctx context.Context, sessionID domain.SessionID) (*domain.Session, []*domain.ChatTurn, error) {
	session, err := s.sessionStore.GetSession(sessionID)
	if err != nil {
		return nil, nil, err
	}

	turns, err := s.chatStore.TurnsBySession(sessionID, 0)
	if err != nil {
		return nil, nil, err
	}

	return session, turns, nil
}

// MarkPostCreated flips the session's one-shot post-created flag.
func (s *Service) MarkPostCreated(ctx context.Context, sessionID domain.SessionID) error {
	session, err := s.sessionStore.GetSession(sessionID)
	if err != nil {
		return err
	}
	if session.PostCreated {
		return nil
	}
	session.PostCreated = true
	session.UpdatedAt = s.now()
	return s.sessionStore.UpdateSession(session)
}

type AnalyzeInput struct {
	Category domain.AnalysisCategory
	Image    domain.ImagePayload
}

// Analyze runs one image analysis. Each submission is independent:
// nothing is accumulated across calls, unlike chat.
func (s *Service) Analyze(ctx context.Context, in AnalyzeInput) (string, error) {
	if len(in.Image.Data) == 0 {
		return "", domain.NewValidationError("Please upload an image to analyze.")
	}

	switch in.Image.MIMEType {
	case "image/png", "image/jpeg":
	default:
		return "", domain.NewValidationError("Unsupported image type %q: upload a PNG or JPEG.", in.Image.MIMEType)
	}

	log := observability.LoggerFromContext(ctx).With(
		"category", in.Category,
		"image_bytes", len(in.Image.Data),
	)
	log.Info("running image analysis")

	text, err := s.gateway.AnalyzeImage(ctx, in.Category, in.Image)
	if err != nil {
		log.Error("image analysis failed", "error", err)
		return "", err
	}

	log.Info("image analysis completed")
	return text, nil
}

type ChatInput struct {
	SessionID domain.SessionID
	Text      string
}

// Chat appends the user's turn and opens a streamed model reply. The
// caller drains the returned stream; the model turn is committed to the
// transcript from whatever accumulated, whether the stream ended
// cleanly, failed mid-flight, or was closed early.
func (s *Service) Chat(ctx context.Context, in ChatInput) (*ChatStream, error) {
	if strings.TrimSpace(in.Text) == "" {
		return nil, domain.NewValidationError("Please enter a message.")
	}

	session, err := s.sessionStore.GetSession(in.SessionID)
	if err != nil {
		return nil, err
	}

	log := observability.LoggerFromContext(ctx).With(
		"session_id", session.ID,
		"user_name", session.UserName,
	)
	log.Info("chat message received")

	// History is captured before the new turn is appended; the gateway
	// receives the new message separately.
	history, err := s.chatStore.TurnsBySession(session.ID, s.historyLimit)
	if err != nil {
		log.Error("failed to load history", "error", err)
		return nil, err
	}

	userTurn := &domain.ChatTurn{
		ID:        domain.TurnID(uuid.NewString()),
		SessionID: session.ID,
		Role:      domain.RoleUser,
		Text:      in.Text,
		CreatedAt: s.now(),
	}
	if err := s.chatStore.AppendTurn(userTurn); err != nil {
		log.Error("failed to append user turn", "error", err)
		return nil, err
	}

	fragments, err := s.gateway.Converse(ctx, history, in.Text)
	if err != nil {
		log.Error("converse failed", "error", err)
		return nil, err
	}

	return &ChatStream{
		svc:      s,
		session:  session,
		inner:    fragments,
		userTurn: userTurn,
	}, nil
}
