package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/articles"
	"github.com/VictorGoic0/SpendSense-sub000/internal/config"
	"github.com/VictorGoic0/SpendSense-sub000/internal/embedding"
	"github.com/VictorGoic0/SpendSense-sub000/internal/features"
	"github.com/VictorGoic0/SpendSense-sub000/internal/llm"
	"github.com/VictorGoic0/SpendSense-sub000/internal/persona"
	"github.com/VictorGoic0/SpendSense-sub000/internal/products"
	"github.com/VictorGoic0/SpendSense-sub000/internal/recommend"
	"github.com/VictorGoic0/SpendSense-sub000/internal/storage"
)

// app holds the shared components every subcommand needs: config, logger,
// and the opened stores. LLM and embedding clients are built on demand by
// the commands that use them.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   *storage.Store
	vectors *storage.VectorStore
}

func newApp() (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	store, err := storage.Open(cfg.Storage.DBPath)
	if err != nil {
		logger.Sync()
		return nil, fmt.Errorf("open storage: %w", err)
	}

	vectors, err := storage.NewVectorStore(store.DB())
	if err != nil {
		store.Close()
		logger.Sync()
		return nil, fmt.Errorf("open vector store: %w", err)
	}

	return &app{cfg: cfg, logger: logger, store: store, vectors: vectors}, nil
}

func (a *app) Close() {
	a.store.Close()
	a.logger.Sync()
}

func (a *app) aggregator() *features.Aggregator {
	return features.NewAggregator(a.store, a.store, a.logger)
}

func (a *app) personaService() *persona.Service {
	return persona.NewService(a.store, a.store, a.logger)
}

// orchestrator builds the full generation pipeline. It needs both API
// keys: Gemini for content and OpenAI for article embeddings.
func (a *app) orchestrator(ctx context.Context) (*recommend.Orchestrator, error) {
	if a.cfg.LLM.APIKey == "" {
		return nil, fmt.Errorf("llm.api_key is required (or set GEMINI_API_KEY)")
	}

	generator, err := llm.NewGeminiGenerator(ctx, a.cfg.LLM.APIKey, a.cfg.LLM.Model,
		time.Duration(a.cfg.LLM.TimeoutSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("init generator: %w", err)
	}

	embedder := embedding.NewOpenAIClient(a.cfg.Embedding.APIKey, a.cfg.Embedding.Model)
	articleMatcher := articles.NewMatcher(embedder, a.vectors, a.store,
		a.cfg.Articles.SimilarityThreshold, a.logger)

	return recommend.NewOrchestrator(recommend.Deps{
		Store:     a.store,
		Generator: generator,
		Products:  products.NewMatcher(a.store, a.logger),
		Articles:  articleMatcher,
		Logger:    a.logger,
	}), nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
