package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/VictorGoic0/SpendSense-sub000/internal/articles"
	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
	"github.com/VictorGoic0/SpendSense-sub000/internal/embedding"
)

var indexArticlesCmd = &cobra.Command{
	Use:   "index-articles [file]",
	Short: "Embed and index an article catalog",
	Long: `Load a JSON array of articles, embed each title and summary, and
store both the catalog rows and their vectors.

Example:
  spendsense index-articles fixtures/articles.json`,
	Args: cobra.ExactArgs(1),
	RunE: runIndexArticles,
}

func runIndexArticles(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	if a.cfg.Embedding.APIKey == "" {
		return fmt.Errorf("embedding.api_key is required (or set OPENAI_API_KEY)")
	}

	raw, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read catalog: %w", err)
	}

	var catalog []domain.Article
	if err := json.Unmarshal(raw, &catalog); err != nil {
		return fmt.Errorf("parse catalog: %w", err)
	}

	embedder := embedding.NewOpenAIClient(a.cfg.Embedding.APIKey, a.cfg.Embedding.Model)
	indexer := articles.NewIndexer(embedder, a.vectors, a.store, a.logger)

	count, err := indexer.Index(context.Background(), catalog)
	if err != nil {
		return fmt.Errorf("index articles: %w", err)
	}

	fmt.Printf("Indexed %d articles\n", count)
	return nil
}
