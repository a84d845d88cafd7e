package llm

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
)

// MockGateway is a scripted domain.ModelGateway for local development
// and tests: no network, deterministic output. When Err is set, calls
// fail at the gateway boundary; a Converse stream still yields its
// fragments first, then fails instead of ending, which mirrors a
// mid-stream transport failure.
type MockGateway struct {
	mu sync.Mutex

	Fragments []string
	Err       error

	AnalyzeCalls  int
	ConverseCalls int
}

func NewMockGateway() *MockGateway {
	return &MockGateway{
		Fragments: []string{"This is a mock ", "reply from the ", "model gateway."},
	}
}

func (m *MockGateway) AnalyzeImage(
	ctx context.Context,
	category domain.AnalysisCategory,
	image domain.ImagePayload,
) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.AnalyzeCalls++
	if m.Err != nil {
		return "", domain.NewGatewayError("analyze image", m.Err)
	}

	return fmt.Sprintf(
		"Mock %s analysis of a %d-byte %s image. Consult with an Agricultural Expert before making any decisions.",
		category, len(image.Data), image.MIMEType,
	), nil
}

func (m *MockGateway) Converse(
	ctx context.Context,
	history []*domain.ChatTurn,
	message string,
) (domain.FragmentStream, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.ConverseCalls++

	frags := make([]string, len(m.Fragments))
	copy(frags, m.Fragments)

	var failWith error
	if m.Err != nil {
		failWith = domain.NewGatewayError("stream chat", m.Err)
	}

	return &mockStream{fragments: frags, failWith: failWith}, nil
}

type mockStream struct {
	fragments []string
	pos       int
	failWith  error
	closed    bool
}

func (s *mockStream) Next() (string, error) {
	if s.closed {
		return "", io.EOF
	}
	if s.pos < len(s.fragments) {
		f := s.fragments[s.pos]
		s.pos++
		return f, nil
	}
	s.closed = true
	if s.failWith != nil {
		return "", s.failWith
	}
	return "", io.EOF
}

func (s *mockStream) Close() {
	s.closed = true
}
