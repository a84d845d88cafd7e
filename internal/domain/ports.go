package domain

import "context"

// ModelGateway defines how the core application talks to the external
// generative model service. Failures come back as *GatewayError values,
// never as panics: a model-service failure must not take down the
// interaction.
type ModelGateway interface {
	// AnalyzeImage sends a single-shot request pairing the image with
	// the fixed instruction prompt for the category and returns the
	// model's full text.
	AnalyzeImage(ctx context.Context, category AnalysisCategory, image ImagePayload) (string, error)

	// Converse sends the running transcript plus the new message and
	// returns the reply as a fragment stream. Fragments arrive in
	// generation order; the full reply is their concatenation.
	Converse(ctx context.Context, history []*ChatTurn, message string) (FragmentStream, error)
}

// FragmentStream is a finite, non-restartable, pull-based sequence of
// partial reply texts. Next returns io.EOF after the last fragment and
// a *GatewayError on mid-stream failure; fragments already yielded stay
// valid either way. Close releases the underlying connection and is
// safe to call at any point.
type FragmentStream interface {
	Next() (string, error)
	Close()
}

// SessionStore defines session persistence.
type SessionStore interface {
	CreateSession(session *Session) error
	UpdateSession(session *Session) error
	GetSession(id SessionID) (*Session, error)
}

// ChatStore defines chat transcript persistence. Append-only.
type ChatStore interface {
	AppendTurn(turn *ChatTurn) error

	// TurnsBySession returns the last `limit` turns in submission
	// order, or all of them when limit <= 0.
	TurnsBySession(sessionID SessionID, limit int) ([]*ChatTurn, error)
}
