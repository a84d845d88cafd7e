package assistant

import (
	"strings"

	"github.com/google/uuid"

	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
	"github.com/nikhilbhosale/smartfarm-api/internal/observability"
)

// ChatStream is the reply side of one chat exchange: a pull-based
// fragment sequence that accumulates what it yields. Fragments arrive
// in generation order and the full reply is their concatenation.
type ChatStream struct {
	svc      *Service
	session  *domain.Session
	inner    domain.FragmentStream
	userTurn *domain.ChatTurn

	text      strings.Builder
	committed bool
}

// Recv returns the next fragment. io.EOF ends a clean stream; a
// *domain.GatewayError reports a mid-stream failure. Either way the
// accumulated text so far is committed as the model turn, so partial
// output is never discarded.
func (cs *ChatStream) Recv() (string, error) {
	frag, err := cs.inner.Next()
	if err != nil {
		cs.commit()
		return "", err
	}
	cs.text.WriteString(frag)
	return frag, nil
}

// Text returns everything received so far.
func (cs *ChatStream) Text() string {
	return cs.text.String()
}

// Close releases the underlying stream and commits any accumulated
// text. Safe to call after Recv has already finished the stream.
func (cs *ChatStream) Close() {
	cs.inner.Close()
	cs.commit()
}

func (cs *ChatStream) commit() {
	if cs.committed {
		return
	}
	cs.committed = true

	log := observability.Logger().With("session_id", cs.session.ID)

	if cs.text.Len() > 0 {
		modelTurn := &domain.ChatTurn{
			ID:        domain.TurnID(uuid.NewString()),
			SessionID: cs.session.ID,
			Role:      domain.RoleModel,
			Text:      cs.text.String(),
			CreatedAt: cs.svc.now(),
		}
		if err := cs.svc.chatStore.AppendTurn(modelTurn); err != nil {
			log.Error("failed to append model turn", "error", err)
		}
	}

	cs.session.UpdatedAt = cs.svc.now()
	if err := cs.svc.sessionStore.UpdateSession(cs.session); err != nil {
		log.Error("failed to update session", "error", err)
	}
}
