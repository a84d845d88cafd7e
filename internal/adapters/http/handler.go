package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/nikhilbhosale/smartfarm-api/internal/app/assistant"
	"github.com/nikhilbhosale/smartfarm-api/internal/app/forum"
	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
)

// maxImageBytes caps uploaded analysis images.
const maxImageBytes = 10 << 20

type Server struct {
	assistant *assistant.Service
	forum     *forum.Service
}

func NewServer(assistantSvc *assistant.Service, forumSvc *forum.Service) http.Handler {
	s := &Server{assistant: assistantSvc, forum: forumSvc}
	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", s.handleHealthz)

	// /sessions                          → POST: create session
	mux.HandleFunc("/sessions", s.handleSessions)

	// /sessions/{id}                     →  GET: session + transcript
	// /sessions/{id}/chat                → POST: send chat message (SSE reply)
	// /sessions/{id}/analyses/{category} → POST: analyze an uploaded image
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	// /posts                             →  GET: list posts, POST: create post
	mux.HandleFunc("/posts", s.handlePosts)

	// /posts/{index}/comments            → POST: add comment
	mux.HandleFunc("/posts/", s.handlePostWithIndex)

	return chainMiddlewares(mux, withCORS, withLogging, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type createSessionRequest struct {
	UserName string `json:"user_name,omitempty"`
}

type sessionResponse struct {
	ID          string    `json:"id"`
	UserName    string    `json:"user_name"`
	PostCreated bool      `json:"post_created"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type turnResponse struct {
	ID        string    `json:"id"`
	SessionID string    `json:"session_id"`
	Role      string    `json:"role"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

type getSessionResponse struct {
	Session sessionResponse `json:"session"`
	Turns   []turnResponse  `json:"turns"`
}

type analyzeResponse struct {
	Category string `json:"category"`
	Analysis string `json:"analysis"`
}

type createPostRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Author    string `json:"author,omitempty"`
	Title     string `json:"title"`
	Content   string `json:"content"`
}

type postResponse struct {
	ID        string    `json:"id"`
	Index     int       `json:"index"`
	Author    string    `json:"author"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Comments  []string  `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
}

type addCommentRequest struct {
	Text string `json:"text"`
}

type chatRequest struct {
	Text string `json:"text"`
}

// ─────────────────────────────────────────────
// Basic routing
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// /sessions
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /sessions/{id}, /sessions/{id}/chat or /sessions/{id}/analyses/{category}
func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := parts[0]
	if id == "" {
		http.NotFound(w, r)
		return
	}
	sessionID := domain.SessionID(id)

	switch {
	case len(parts) == 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGetSession(w, r, sessionID)

	case len(parts) == 2 && parts[1] == "chat":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleChat(w, r, sessionID)

	case len(parts) == 3 && parts[1] == "analyses":
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleAnalyze(w, r, sessionID, parts[2])

	default:
		http.NotFound(w, r)
	}
}

// /posts
func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListPosts(w, r)
	case http.MethodPost:
		s.handleCreatePost(w, r)
	default:
		methodNotAllowed(w)
	}
}

// /posts/{index}/comments
func (s *Server) handlePostWithIndex(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/posts/")
	parts := strings.Split(path, "/")

	if len(parts) != 2 || parts[1] != "comments" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	index, err := strconv.Atoi(parts[0])
	if err != nil {
		badRequest(w, "invalid post index")
		return
	}

	s.handleAddComment(w, r, index)
}

// ─────────────────────────────────────────────
// Concrete handlers
// ─────────────────────────────────────────────

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			badRequest(w, "invalid JSON body")
			return
		}
	}

	session, err := s.assistant.StartSession(r.Context(), req.UserName)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	session, turns, err := s.assistant.GetTranscript(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := getSessionResponse{
		Session: toSessionResponse(session),
		Turns:   toTurnsResponse(turns),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID, rawCategory string) {
	category, ok := parseAnalysisCategory(rawCategory)
	if !ok {
		badRequest(w, "unknown analysis category: "+rawCategory)
		return
	}

	image, err := readImageUpload(r)
	if err != nil {
		writeError(w, err)
		return
	}

	analysis, err := s.assistant.Analyze(r.Context(), assistant.AnalyzeInput{
		Category: category,
		Image:    image,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		Category: string(category),
		Analysis: analysis,
	})
}

// handleChat streams the model's reply as SSE: "message" events per
// fragment, then one "done" event with the full text, or an "error"
// event carrying the failure detail. Fragments already sent stay on
// the wire even when the stream fails mid-flight.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request, sessionID domain.SessionID) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	stream, err := s.assistant.Chat(r.Context(), assistant.ChatInput{
		SessionID: sessionID,
		Text:      req.Text,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	defer stream.Close()

	sse := newSSEWriter(w)
	for {
		frag, err := stream.Recv()
		if err == io.EOF {
			_ = sse.writeEvent("done", map[string]string{"text": stream.Text()})
			return
		}
		if err != nil {
			_ = sse.writeEvent("error", map[string]string{"error": err.Error()})
			return
		}
		if err := sse.writeEvent("message", map[string]string{"text": frag}); err != nil {
			// Client went away; Close commits what accumulated.
			return
		}
	}
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.forum.ListPosts(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]postResponse, 0, len(posts))
	for _, p := range posts {
		out = append(out, toPostResponse(p))
	}
	writeJSON(w, http.StatusOK, map[string][]postResponse{"posts": out})
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	author := req.Author
	if author == "" {
		author = "Farmer"
	}

	post, err := s.forum.CreatePost(r.Context(), author, req.Title, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}

	// One-shot flag: the creation form is hidden for this session from
	// now on. Best-effort; the post itself already exists.
	if req.SessionID != "" {
		_ = s.assistant.MarkPostCreated(r.Context(), domain.SessionID(req.SessionID))
	}

	writeJSON(w, http.StatusCreated, toPostResponse(post))
}

func (s *Server) handleAddComment(w http.ResponseWriter, r *http.Request, index int) {
	var req addCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	if err := s.forum.AddComment(r.Context(), index, req.Text); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ─────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────

// readImageUpload pulls the "image" file out of a multipart form. A
// missing file is not a transport error: it is the validation case the
// analysis tabs must surface.
func readImageUpload(r *http.Request) (domain.ImagePayload, error) {
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		return domain.ImagePayload{}, domain.NewValidationError("Please upload an image to analyze.")
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		return domain.ImagePayload{}, domain.NewValidationError("Please upload an image to analyze.")
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageBytes))
	if err != nil {
		return domain.ImagePayload{}, domain.NewValidationError("could not read the uploaded image")
	}

	mimeType := header.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}

	return domain.ImagePayload{Data: data, MIMEType: mimeType}, nil
}

func parseAnalysisCategory(s string) (domain.AnalysisCategory, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "soil-health", "soil":
		return domain.CategorySoilHealth, true
	case "pest-disease", "pest":
		return domain.CategoryPestDisease, true
	case "weather":
		return domain.CategoryWeather, true
	default:
		return "", false
	}
}

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:          string(s.ID),
		UserName:    s.UserName,
		PostCreated: s.PostCreated,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

func toTurnsResponse(turns []*domain.ChatTurn) []turnResponse {
	out := make([]turnResponse, 0, len(turns))
	for _, t := range turns {
		out = append(out, turnResponse{
			ID:        string(t.ID),
			SessionID: string(t.SessionID),
			Role:      string(t.Role),
			Text:      t.Text,
			CreatedAt: t.CreatedAt,
		})
	}
	return out
}

func toPostResponse(p *domain.ForumPost) postResponse {
	comments := p.Comments
	if comments == nil {
		comments = []string{}
	}
	return postResponse{
		ID:        string(p.ID),
		Index:     p.Index,
		Author:    p.Author,
		Title:     p.Title,
		Content:   p.Content,
		Comments:  comments,
		CreatedAt: p.CreatedAt,
	}
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps the error taxonomy onto responses. Every failure
// becomes a displayable message; nothing crosses this boundary as a
// raw failure.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, domain.ErrSessionNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case domain.IsGateway(err):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{"error": msg})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
