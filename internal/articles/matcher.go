package articles

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
	"github.com/VictorGoic0/SpendSense-sub000/internal/storage"
)

// Embedder generates text embeddings. Implemented by
// *embedding.OpenAIClient.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher runs top-K cosine search over the article index. Implemented
// by *storage.VectorStore.
type Searcher interface {
	Search(ctx context.Context, queryVec []float32, limit int) []storage.ScoredArticle
}

// ArticleSource reads article catalog rows. Implemented by *storage.Store.
type ArticleSource interface {
	GetArticle(articleID string) (*domain.Article, error)
}

// Attachment links a recommendation to its best-matching article.
type Attachment struct {
	ArticleID  string
	Title      string
	Similarity float64
}

// Matcher attaches the closest catalog article to an education item when
// similarity clears the threshold.
type Matcher struct {
	embedder  Embedder
	index     Searcher
	articles  ArticleSource
	threshold float64
	logger    *zap.Logger
}

// NewMatcher creates an article matcher. A non-positive threshold falls
// back to 0.75.
func NewMatcher(embedder Embedder, index Searcher, articles ArticleSource, threshold float64, logger *zap.Logger) *Matcher {
	if threshold <= 0 {
		threshold = 0.75
	}
	return &Matcher{
		embedder:  embedder,
		index:     index,
		articles:  articles,
		threshold: threshold,
		logger:    logger,
	}
}

// MatchArticle embeds the item text, searches the top 3 nearest articles,
// and returns the best one if its similarity clears the threshold. Any
// failure degrades to nil: article enrichment must never fail generation.
func (m *Matcher) MatchArticle(ctx context.Context, title, content string) *Attachment {
	vec, err := m.embedder.Embed(ctx, title+"\n\n"+content)
	if err != nil {
		m.logger.Warn("article embedding failed, skipping attachment", zap.Error(err))
		return nil
	}

	results := m.index.Search(ctx, vec, 3)
	if len(results) == 0 {
		return nil
	}

	best := results[0]
	if best.Score < m.threshold {
		m.logger.Debug("no article above similarity threshold",
			zap.Float64("best_score", best.Score),
			zap.Float64("threshold", m.threshold))
		return nil
	}

	article, err := m.articles.GetArticle(best.ArticleID)
	if err != nil {
		m.logger.Warn("matched article missing from catalog",
			zap.String("article_id", best.ArticleID), zap.Error(err))
		return nil
	}

	return &Attachment{
		ArticleID:  article.ArticleID,
		Title:      article.Title,
		Similarity: best.Score,
	}
}

// VectorWriter persists article embeddings. Implemented by
// *storage.VectorStore.
type VectorWriter interface {
	Upsert(ctx context.Context, articleID string, vector []float32) error
}

// ArticleWriter persists article catalog rows. Implemented by
// *storage.Store.
type ArticleWriter interface {
	UpsertArticle(a *domain.Article) error
}

// BatchEmbedder embeds many texts at once. Implemented by
// *embedding.OpenAIClient.
type BatchEmbedder interface {
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// Indexer embeds and stores the article catalog.
type Indexer struct {
	embedder BatchEmbedder
	vectors  VectorWriter
	articles ArticleWriter
	logger   *zap.Logger
}

// NewIndexer creates an article catalog indexer.
func NewIndexer(embedder BatchEmbedder, vectors VectorWriter, articles ArticleWriter, logger *zap.Logger) *Indexer {
	return &Indexer{
		embedder: embedder,
		vectors:  vectors,
		articles: articles,
		logger:   logger,
	}
}

// Index embeds every article's title+summary and upserts both the catalog
// row and its vector. Returns the number of articles indexed.
func (ix *Indexer) Index(ctx context.Context, items []domain.Article) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}

	texts := make([]string, len(items))
	for i, a := range items {
		texts[i] = a.Title + "\n\n" + a.Summary
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed articles: %w", err)
	}
	if len(vectors) != len(items) {
		return 0, fmt.Errorf("expected %d vectors, got %d", len(items), len(vectors))
	}

	for i := range items {
		a := items[i]
		if err := ix.articles.UpsertArticle(&a); err != nil {
			return i, fmt.Errorf("save article %s: %w", a.ArticleID, err)
		}
		if err := ix.vectors.Upsert(ctx, a.ArticleID, vectors[i]); err != nil {
			return i, fmt.Errorf("save vector %s: %w", a.ArticleID, err)
		}
	}

	ix.logger.Info("indexed article catalog", zap.Int("count", len(items)))
	return len(items), nil
}
