package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"github.com/kbot-ai/cli/config"
	"github.com/kbot-ai/cli/internal/db"
	"github.com/kbot-ai/cli/internal/documents"
	"github.com/kbot-ai/cli/internal/embeddings"
	"github.com/kbot-ai/cli/internal/ollama"
	"github.com/kbot-ai/cli/internal/rag"
	"github.com/kbot-ai/cli/internal/tui"
	"github.com/kbot-ai/cli/internal/vectorstore"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// .env is optional; real environment variables take precedence.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx := context.Background()

	database, err := db.New(ctx, cfg.Database.ConnectionString)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	store, err := vectorstore.New(ctx, cfg.Vector.ConnectionString, cfg.Vector.Dimension)
	if err != nil {
		return fmt.Errorf("failed to open vector store: %w", err)
	}
	defer store.Close()

	embedder := embeddings.NewTextEmbedder(cfg.Ollama.BaseURL, cfg.Embeddings.TextModel)
	processor := documents.NewProcessor(database, store, embedder,
		cfg.Processing.ChunkSize, cfg.Processing.ChunkOverlap)

	if err := os.MkdirAll(cfg.Paths.DocumentsDir, 0755); err != nil {
		return fmt.Errorf("failed to create documents folder: %w", err)
	}

	count, err := processor.ProcessAll(ctx, cfg.Paths.DocumentsDir)
	if err != nil {
		return fmt.Errorf("failed to process documents folder: %w", err)
	}
	log.Printf("ingested %d new document(s) from %s", count, cfg.Paths.DocumentsDir)

	if docs, err := database.ListDocuments(ctx); err == nil {
		log.Printf("knowledge base holds %d document(s)", len(docs))
	}

	watcher, err := documents.NewWatcher(processor,
		time.Duration(cfg.Watcher.DebounceSeconds)*time.Second)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Watch(cfg.Paths.DocumentsDir); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer watcher.Stop()

	retriever := rag.NewRetriever(store, embedder, cfg.Processing.TopK)
	contextSvc := rag.NewContextService(database, cfg.Chat.HistoryLimit)
	llm := ollama.NewClient(cfg.Ollama.BaseURL)

	app := tui.New(retriever, contextSvc, llm, cfg.Ollama.ChatModel, cfg.Chat.SystemPrompt)
	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run chat: %w", err)
	}

	return nil
}
