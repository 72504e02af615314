package articles

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
	"github.com/VictorGoic0/SpendSense-sub000/internal/storage"
)

var errMockEmbed = errors.New("mock embedding error")

type mockEmbedder struct {
	vector    []float32
	callCount int
	fail      bool
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	m.callCount++
	if m.fail {
		return nil, errMockEmbed
	}
	return m.vector, nil
}

func (m *mockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	m.callCount++
	if m.fail {
		return nil, errMockEmbed
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = m.vector
	}
	return out, nil
}

type mockSearcher struct {
	results []storage.ScoredArticle
}

func (m *mockSearcher) Search(ctx context.Context, queryVec []float32, limit int) []storage.ScoredArticle {
	if len(m.results) > limit {
		return m.results[:limit]
	}
	return m.results
}

type mockArticleStore struct {
	articles map[string]*domain.Article
	upserts  int
}

func (m *mockArticleStore) GetArticle(articleID string) (*domain.Article, error) {
	a, ok := m.articles[articleID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return a, nil
}

func (m *mockArticleStore) UpsertArticle(a *domain.Article) error {
	if m.articles == nil {
		m.articles = make(map[string]*domain.Article)
	}
	m.articles[a.ArticleID] = a
	m.upserts++
	return nil
}

type mockVectorWriter struct {
	vectors map[string][]float32
}

func (m *mockVectorWriter) Upsert(ctx context.Context, articleID string, vector []float32) error {
	if m.vectors == nil {
		m.vectors = make(map[string][]float32)
	}
	m.vectors[articleID] = vector
	return nil
}

func TestMatchArticle_AboveThreshold(t *testing.T) {
	embedder := &mockEmbedder{vector: []float32{1, 0, 0}}
	index := &mockSearcher{results: []storage.ScoredArticle{
		{ArticleID: "art_1", Score: 0.82},
		{ArticleID: "art_2", Score: 0.60},
	}}
	catalog := &mockArticleStore{articles: map[string]*domain.Article{
		"art_1": {ArticleID: "art_1", Title: "Credit Utilization Explained"},
	}}

	m := NewMatcher(embedder, index, catalog, 0.75, zap.NewNop())
	got := m.MatchArticle(context.Background(), "Utilization", "Keep balances low.")

	if got == nil {
		t.Fatal("expected an attachment")
	}
	if got.ArticleID != "art_1" || got.Similarity != 0.82 {
		t.Errorf("attachment = %+v", got)
	}
	if got.Title != "Credit Utilization Explained" {
		t.Errorf("title = %q", got.Title)
	}
}

func TestMatchArticle_BelowThreshold(t *testing.T) {
	embedder := &mockEmbedder{vector: []float32{1, 0, 0}}
	index := &mockSearcher{results: []storage.ScoredArticle{
		{ArticleID: "art_1", Score: 0.70},
	}}
	catalog := &mockArticleStore{articles: map[string]*domain.Article{
		"art_1": {ArticleID: "art_1", Title: "T"},
	}}

	m := NewMatcher(embedder, index, catalog, 0.75, zap.NewNop())
	if got := m.MatchArticle(context.Background(), "T", "C"); got != nil {
		t.Errorf("attachment = %+v, want nil below threshold", got)
	}
}

func TestMatchArticle_EmbeddingFailureDegrades(t *testing.T) {
	embedder := &mockEmbedder{fail: true}
	index := &mockSearcher{results: []storage.ScoredArticle{{ArticleID: "art_1", Score: 0.9}}}
	catalog := &mockArticleStore{}

	m := NewMatcher(embedder, index, catalog, 0.75, zap.NewNop())
	if got := m.MatchArticle(context.Background(), "T", "C"); got != nil {
		t.Errorf("attachment = %+v, want nil on embedding failure", got)
	}
}

func TestMatchArticle_MissingCatalogRowDegrades(t *testing.T) {
	embedder := &mockEmbedder{vector: []float32{1, 0, 0}}
	index := &mockSearcher{results: []storage.ScoredArticle{{ArticleID: "art_gone", Score: 0.9}}}
	catalog := &mockArticleStore{}

	m := NewMatcher(embedder, index, catalog, 0.75, zap.NewNop())
	if got := m.MatchArticle(context.Background(), "T", "C"); got != nil {
		t.Errorf("attachment = %+v, want nil for missing catalog row", got)
	}
}

func TestMatchArticle_DefaultThreshold(t *testing.T) {
	m := NewMatcher(&mockEmbedder{}, &mockSearcher{}, &mockArticleStore{}, 0, zap.NewNop())
	if m.threshold != 0.75 {
		t.Errorf("threshold = %v, want 0.75 default", m.threshold)
	}
}

func TestIndexer_Index(t *testing.T) {
	embedder := &mockEmbedder{vector: []float32{1, 0, 0}}
	vectors := &mockVectorWriter{}
	catalog := &mockArticleStore{}

	items := []domain.Article{
		{ArticleID: "art_1", Title: "T1", Summary: "S1"},
		{ArticleID: "art_2", Title: "T2", Summary: "S2"},
	}

	ix := NewIndexer(embedder, vectors, catalog, zap.NewNop())
	count, err := ix.Index(context.Background(), items)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}

	if count != 2 {
		t.Errorf("count = %d, want 2", count)
	}
	if catalog.upserts != 2 || len(vectors.vectors) != 2 {
		t.Errorf("upserts = %d catalog, %d vectors, want 2/2", catalog.upserts, len(vectors.vectors))
	}
	if embedder.callCount != 1 {
		t.Errorf("embed calls = %d, want 1 batch call", embedder.callCount)
	}
}

func TestIndexer_EmptyCatalog(t *testing.T) {
	embedder := &mockEmbedder{}
	ix := NewIndexer(embedder, &mockVectorWriter{}, &mockArticleStore{}, zap.NewNop())

	count, err := ix.Index(context.Background(), nil)
	if err != nil {
		t.Fatalf("Index: %v", err)
	}
	if count != 0 || embedder.callCount != 0 {
		t.Errorf("count = %d, embed calls = %d, want 0/0", count, embedder.callCount)
	}
}
