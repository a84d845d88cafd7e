package domain

// ChatTurn is one entry in a session's chat transcript (user or model).
// Turns are append-only: never reordered, never removed while the
// session lives.
type ChatTurn struct {
	ID        TurnID
	SessionID SessionID
	Role      Role
	Text      string
	CreatedAt Timestamp
}

// Session represents one user's continuous interaction lifetime with
// the assistant. All chat and flag state hangs off it.
type Session struct {
	ID        SessionID
	UserName  string
	CreatedAt Timestamp
	UpdatedAt Timestamp

	// PostCreated is a one-shot flag: set after the session's first
	// forum post so the creation form is not shown again.
	PostCreated bool
}

// ImagePayload carries an uploaded image into the model gateway.
type ImagePayload struct {
	Data     []byte
	MIMEType string
}
