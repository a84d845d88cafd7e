package httpadapter_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/nikhilbhosale/smartfarm-api/internal/adapters/http"
	"github.com/nikhilbhosale/smartfarm-api/internal/adapters/llm"
	"github.com/nikhilbhosale/smartfarm-api/internal/adapters/storage/memory"
	"github.com/nikhilbhosale/smartfarm-api/internal/app/assistant"
	"github.com/nikhilbhosale/smartfarm-api/internal/app/forum"
)

var pngHeader = []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}

func newTestServer(t *testing.T, gateway *llm.MockGateway) http.Handler {
	t.Helper()

	assistantSvc := assistant.NewService(gateway, memory.NewSessionStore(), memory.NewChatStore(), 20)
	forumSvc := forum.NewService(memory.NewForumStore())

	return httpadapter.NewServer(assistantSvc, forumSvc)
}

func createSession(t *testing.T, srv http.Handler) string {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/sessions", strings.NewReader(`{"user_name":"Farmer"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding session response: %v", err)
	}
	return resp.ID
}

func multipartImage(t *testing.T, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("image", "photo.png")
	if err != nil {
		t.Fatalf("creating form file: %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("writing form file: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("closing multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t, llm.NewMockGateway())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestAnalyzeWithoutImage(t *testing.T) {
	gateway := llm.NewMockGateway()
	srv := newTestServer(t, gateway)
	sessionID := createSession(t, srv)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("note", "no file here")
	_ = mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/analyses/soil-health", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Please upload an image to analyze.") {
		t.Fatalf("expected validation message, got %s", w.Body.String())
	}
	if gateway.AnalyzeCalls != 0 {
		t.Fatalf("gateway must not be called without an image")
	}
}

func TestAnalyzeUploadedImage(t *testing.T) {
	srv := newTestServer(t, llm.NewMockGateway())
	sessionID := createSession(t, srv)

	body, contentType := multipartImage(t, pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/analyses/pest-disease", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		Category string `json:"category"`
		Analysis string `json:"analysis"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding analysis response: %v", err)
	}
	if resp.Category != "pest-disease" {
		t.Fatalf("unexpected category %q", resp.Category)
	}
	if resp.Analysis == "" {
		t.Fatalf("expected non-empty analysis")
	}
}

func TestAnalyzeUnknownCategory(t *testing.T) {
	srv := newTestServer(t, llm.NewMockGateway())
	sessionID := createSession(t, srv)

	body, contentType := multipartImage(t, pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/analyses/astrology", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAnalyzeGatewayFailure(t *testing.T) {
	gateway := llm.NewMockGateway()
	gateway.Err = errors.New("deadline exceeded")
	srv := newTestServer(t, gateway)
	sessionID := createSession(t, srv)

	body, contentType := multipartImage(t, pngHeader)
	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/analyses/weather", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "deadline exceeded") {
		t.Fatalf("error message should carry the failure detail, got %s", w.Body.String())
	}
}

func TestChatStreamsFragmentsAsSSE(t *testing.T) {
	gateway := llm.NewMockGateway()
	gateway.Fragments = []string{"Hello ", "from ", "the model."}
	srv := newTestServer(t, gateway)
	sessionID := createSession(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/chat", strings.NewReader(`{"text":"hi"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("expected SSE content type, got %q", ct)
	}

	body := w.Body.String()
	if !strings.Contains(body, "event: message") {
		t.Fatalf("expected message events, got %s", body)
	}
	if !strings.Contains(body, "event: done") {
		t.Fatalf("expected done event, got %s", body)
	}
	if !strings.Contains(body, "Hello from the model.") {
		t.Fatalf("done event should carry the concatenated text, got %s", body)
	}

	// The committed transcript matches what was streamed.
	req = httptest.NewRequest(http.MethodGet, "/sessions/"+sessionID, nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var resp struct {
		Turns []struct {
			Role string `json:"role"`
			Text string `json:"text"`
		} `json:"turns"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decoding session response: %v", err)
	}
	if len(resp.Turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(resp.Turns))
	}
	if resp.Turns[1].Role != "model" || resp.Turns[1].Text != "Hello from the model." {
		t.Fatalf("unexpected model turn: %+v", resp.Turns[1])
	}
}

func TestChatRejectsEmptyMessage(t *testing.T) {
	srv := newTestServer(t, llm.NewMockGateway())
	sessionID := createSession(t, srv)

	req := httptest.NewRequest(http.MethodPost, "/sessions/"+sessionID+"/chat", strings.NewReader(`{"text":""}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d, body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "Please enter a message.") {
		t.Fatalf("expected validation message, got %s", w.Body.String())
	}
}

func TestChatUnknownSession(t *testing.T) {
	srv := newTestServer(t, llm.NewMockGateway())

	req := httptest.NewRequest(http.MethodPost, "/sessions/nope/chat", strings.NewReader(`{"text":"hi"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestForumFlow(t *testing.T) {
	srv := newTestServer(t, llm.NewMockGateway())
	sessionID := createSession(t, srv)

	// Create post, tied to the session so its one-shot flag flips.
	postBody := `{"session_id":"` + sessionID + `","title":"Irrigation tips","content":"Drip works well"}`
	req := httptest.NewRequest(http.MethodPost, "/posts", strings.NewReader(postBody))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d, body=%s", w.Code, w.Body.String())
	}

	var created struct {
		Index  int    `json:"index"`
		Author string `json:"author"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil {
		t.Fatalf("decoding post response: %v", err)
	}
	if created.Index != 0 {
		t.Fatalf("expected index 0, got %d", created.Index)
	}
	if created.Author != "Farmer" {
		t.Fatalf("expected default author Farmer, got %q", created.Author)
	}

	// Comment on it.
	req = httptest.NewRequest(http.MethodPost, "/posts/0/comments", strings.NewReader(`{"text":"Thanks!"}`))
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d, body=%s", w.Code, w.Body.String())
	}

	// List shows the comment.
	req = httptest.NewRequest(http.MethodGet, "/posts", nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var listed struct {
		Posts []struct {
			Title    string   `json:"title"`
			Comments []string `json:"comments"`
		} `json:"posts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listed); err != nil {
		t.Fatalf("decoding posts response: %v", err)
	}
	if len(listed.Posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(listed.Posts))
	}
	if len(listed.Posts[0].Comments) != 1 || listed.Posts[0].Comments[0] != "Thanks!" {
		t.Fatalf("unexpected comments: %v", listed.Posts[0].Comments)
	}

	// Session flag is now set.
	req = httptest.NewRequest(http.MethodGet, "/sessions/"+sessionID, nil)
	w = httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	var sess struct {
		Session struct {
			PostCreated bool `json:"post_created"`
		} `json:"session"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &sess); err != nil {
		t.Fatalf("decoding session response: %v", err)
	}
	if !sess.Session.PostCreated {
		t.Fatalf("expected post_created flag to be set")
	}
}

func TestCommentOnMissingPost(t *testing.T) {
	srv := newTestServer(t, llm.NewMockGateway())

	req := httptest.NewRequest(http.MethodPost, "/posts/5/comments", strings.NewReader(`{"text":"hello"}`))
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d, body=%s", w.Code, w.Body.String())
	}
}
