package storage

import (
	"container/heap"
	"context"
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sync"
)

// VectorStore provides brute-force cosine search over article embeddings,
// backed by SQLite BLOBs with an in-memory copy of every vector. The
// article catalog is small (hundreds of rows), so exact search stays
// sub-millisecond.
type VectorStore struct {
	db *sql.DB

	mu      sync.RWMutex
	vectors map[string][]float32 // article_id -> normalized embedding
}

// ScoredArticle pairs an article ID with a cosine similarity score.
type ScoredArticle struct {
	ArticleID string
	Score     float64
}

// NewVectorStore creates a vector store sharing the given SQLite handle.
// It creates the article_vectors table if needed and loads existing
// vectors into memory.
func NewVectorStore(db *sql.DB) (*VectorStore, error) {
	vs := &VectorStore{
		db:      db,
		vectors: make(map[string][]float32),
	}

	if err := vs.migrate(); err != nil {
		return nil, fmt.Errorf("vector store migrate: %w", err)
	}

	if err := vs.loadAll(); err != nil {
		return nil, fmt.Errorf("vector store load: %w", err)
	}

	return vs, nil
}

func (vs *VectorStore) migrate() error {
	_, err := vs.db.Exec(`
		CREATE TABLE IF NOT EXISTS article_vectors (
			article_id TEXT PRIMARY KEY,
			embedding  BLOB NOT NULL,
			dimensions INTEGER NOT NULL
		)
	`)
	return err
}

func (vs *VectorStore) loadAll() error {
	rows, err := vs.db.Query("SELECT article_id, embedding, dimensions FROM article_vectors")
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		var blob []byte
		var dims int

		if err := rows.Scan(&id, &blob, &dims); err != nil {
			return err
		}

		vs.vectors[id] = blobToFloat32(blob, dims)
	}
	return rows.Err()
}

// Upsert stores an article embedding. Vectors are normalized on insert so
// dot product equals cosine similarity.
func (vs *VectorStore) Upsert(ctx context.Context, articleID string, vector []float32) error {
	normalized := normalize(vector)
	blob := float32ToBlob(normalized)

	vs.mu.Lock()
	defer vs.mu.Unlock()

	_, err := vs.db.ExecContext(ctx, `
		INSERT INTO article_vectors (article_id, embedding, dimensions)
		VALUES (?, ?, ?)
		ON CONFLICT(article_id) DO UPDATE SET
			embedding=excluded.embedding, dimensions=excluded.dimensions
	`, articleID, blob, len(normalized))
	if err != nil {
		return err
	}

	vs.vectors[articleID] = normalized
	return nil
}

// Search returns the top-K articles by cosine similarity to the query
// vector, using a min-heap to track only the top K.
func (vs *VectorStore) Search(ctx context.Context, queryVec []float32, limit int) []ScoredArticle {
	if limit <= 0 {
		limit = 3
	}
	normalizedQuery := normalize(queryVec)

	vs.mu.RLock()
	h := &minHeap{}
	heap.Init(h)
	for id, vec := range vs.vectors {
		if len(vec) != len(normalizedQuery) {
			continue
		}
		score := dotProduct(normalizedQuery, vec)
		if h.Len() < limit {
			heap.Push(h, ScoredArticle{ArticleID: id, Score: score})
		} else if score > (*h)[0].Score {
			(*h)[0] = ScoredArticle{ArticleID: id, Score: score}
			heap.Fix(h, 0)
		}
	}
	vs.mu.RUnlock()

	results := make([]ScoredArticle, h.Len())
	for i := len(results) - 1; i >= 0; i-- {
		results[i] = heap.Pop(h).(ScoredArticle)
	}
	return results
}

// Count returns the number of stored vectors.
func (vs *VectorStore) Count() int {
	vs.mu.RLock()
	defer vs.mu.RUnlock()
	return len(vs.vectors)
}

// minHeap implements heap.Interface for top-K selection (min at root).
type minHeap []ScoredArticle

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return h[i].Score < h[j].Score }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(ScoredArticle)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

func normalize(v []float32) []float32 {
	var norm float64
	for _, x := range v {
		norm += float64(x) * float64(x)
	}
	norm = math.Sqrt(norm)

	out := make([]float32, len(v))
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}

func dotProduct(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func float32ToBlob(v []float32) []byte {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return buf
}

func blobToFloat32(b []byte, dims int) []float32 {
	v := make([]float32, dims)
	for i := 0; i < dims && i*4+4 <= len(b); i++ {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return v
}
