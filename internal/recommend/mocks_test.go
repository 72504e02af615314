package recommend

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/VictorGoic0/SpendSense-sub000/internal/articles"
	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
	"github.com/VictorGoic0/SpendSense-sub000/internal/llm"
	"github.com/VictorGoic0/SpendSense-sub000/internal/products"
)

var (
	errMockGenerate = errors.New("mock generation error")
	errMockStorage  = errors.New("mock storage error")
)

// mockStore implements the orchestrator's Store interface in memory.
type mockStore struct {
	mu sync.Mutex

	user        *domain.User
	snapshot    *domain.FeatureSnapshot
	assignment  *domain.PersonaAssignment
	accounts    []domain.Account
	txns        []domain.Transaction
	liabilities []domain.Liability

	pending []*domain.Recommendation
	saved   []*domain.Recommendation

	failInsert bool
	listCount  int
}

func (m *mockStore) GetUser(userID string) (*domain.User, error) {
	if m.user == nil {
		return nil, domain.ErrNotFound
	}
	return m.user, nil
}

func (m *mockStore) GetSnapshot(userID string, windowDays int) (*domain.FeatureSnapshot, error) {
	if m.snapshot == nil {
		return nil, domain.ErrNotFound
	}
	return m.snapshot, nil
}

func (m *mockStore) GetPersona(userID string, windowDays int) (*domain.PersonaAssignment, error) {
	if m.assignment == nil {
		return nil, domain.ErrPersonaNotAssigned
	}
	return m.assignment, nil
}

func (m *mockStore) GetAccounts(userID string) ([]domain.Account, error) {
	return m.accounts, nil
}

func (m *mockStore) GetTransactionsSince(userID string, since time.Time) ([]domain.Transaction, error) {
	return m.txns, nil
}

func (m *mockStore) GetLiabilities(userID string) ([]domain.Liability, error) {
	return m.liabilities, nil
}

func (m *mockStore) ListRecommendations(userID, status string, windowDays int) ([]*domain.Recommendation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCount++
	return m.pending, nil
}

func (m *mockStore) InsertRecommendations(recs []*domain.Recommendation) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failInsert {
		return errMockStorage
	}
	m.saved = append(m.saved, recs...)
	return nil
}

// mockGenerator implements Generator.
type mockGenerator struct {
	mu        sync.Mutex
	items     []llm.GeneratedItem
	callCount int
	fail      bool
}

func (m *mockGenerator) Generate(ctx context.Context, prompt string) ([]llm.GeneratedItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	if m.fail {
		return nil, errMockGenerate
	}
	return m.items, nil
}

// mockProductMatcher implements ProductMatcher.
type mockProductMatcher struct {
	matches   []products.Match
	callCount int
	fail      bool
}

func (m *mockProductMatcher) Match(personaType string, snap *domain.FeatureSnapshot, accounts []domain.Account) ([]products.Match, error) {
	m.callCount++
	if m.fail {
		return nil, errMockStorage
	}
	return m.matches, nil
}

// mockArticleMatcher implements ArticleMatcher.
type mockArticleMatcher struct {
	mu         sync.Mutex
	attachment *articles.Attachment
	callCount  int
}

func (m *mockArticleMatcher) MatchArticle(ctx context.Context, title, content string) *articles.Attachment {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callCount++
	return m.attachment
}
