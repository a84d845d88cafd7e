package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"

	httpadapter "github.com/nikhilbhosale/smartfarm-api/internal/adapters/http"
	"github.com/nikhilbhosale/smartfarm-api/internal/adapters/llm"
	firestorestore "github.com/nikhilbhosale/smartfarm-api/internal/adapters/storage/firestore"
	memstore "github.com/nikhilbhosale/smartfarm-api/internal/adapters/storage/memory"
	"github.com/nikhilbhosale/smartfarm-api/internal/app/assistant"
	"github.com/nikhilbhosale/smartfarm-api/internal/app/forum"
	"github.com/nikhilbhosale/smartfarm-api/internal/config"
	"github.com/nikhilbhosale/smartfarm-api/internal/domain"
	"github.com/nikhilbhosale/smartfarm-api/internal/observability"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	switch cfg.LogLevel {
	case "debug":
		observability.SetLevel(slog.LevelDebug)
	case "warn":
		observability.SetLevel(slog.LevelWarn)
	case "error":
		observability.SetLevel(slog.LevelError)
	}

	// Model gateway: mock or Gemini (useful for dev without a key)
	var gateway domain.ModelGateway
	if cfg.UseMockGateway {
		log.Println("[GATEWAY] Using MOCK model gateway")
		gateway = llm.NewMockGateway()
	} else {
		log.Println("[GATEWAY] Using Gemini model gateway")
		gateway, err = llm.NewGeminiGateway(ctx, cfg.GeminiAPIKey, cfg.VisionModel, cfg.ChatModel)
		if err != nil {
			log.Fatalf("error initializing Gemini gateway: %v", err)
		}
	}

	// Storage: Firestore or Memory
	var (
		sessionStore domain.SessionStore
		chatStore    domain.ChatStore
		forumStore   domain.ForumStore
	)

	switch cfg.StorageBackend {
	case "firestore":
		log.Printf("[STORE] Using Firestore storage (project=%s)", cfg.GCPProjectID)
		fsStore, err := firestorestore.NewStore(ctx, cfg.GCPProjectID)
		if err != nil {
			log.Fatalf("error initializing Firestore store: %v", err)
		}

		// 1 store, implements 3 interfaces
		sessionStore = fsStore
		chatStore = fsStore
		forumStore = fsStore

	default:
		log.Println("[STORE] Using in-memory storage")
		sessionStore = memstore.NewSessionStore()
		chatStore = memstore.NewChatStore()
		forumStore = memstore.NewForumStore()
	}

	assistantSvc := assistant.NewService(gateway, sessionStore, chatStore, cfg.HistoryLimit)
	forumSvc := forum.NewService(forumStore)

	handler := httpadapter.NewServer(assistantSvc, forumSvc)

	addr := ":" + cfg.Port
	log.Println("SmartFarm API listening on", addr)
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatal(err)
	}
}
