package recommend

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/articles"
	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
	"github.com/VictorGoic0/SpendSense-sub000/internal/llm"
	"github.com/VictorGoic0/SpendSense-sub000/internal/products"
)

// recommendationTTL is how long a generated recommendation stays valid.
const recommendationTTL = 30 * 24 * time.Hour

// Generator produces education items from a prompt. Implemented by
// *llm.GeminiGenerator.
type Generator interface {
	Generate(ctx context.Context, prompt string) ([]llm.GeneratedItem, error)
}

// ProductMatcher surfaces eligible partner offers. Implemented by
// *products.Matcher.
type ProductMatcher interface {
	Match(personaType string, snap *domain.FeatureSnapshot, accounts []domain.Account) ([]products.Match, error)
}

// ArticleMatcher attaches catalog articles to education items.
// Implemented by *articles.Matcher.
type ArticleMatcher interface {
	MatchArticle(ctx context.Context, title, content string) *articles.Attachment
}

// Store is the persistence surface the pipeline needs. Implemented by
// *storage.Store.
type Store interface {
	GetUser(userID string) (*domain.User, error)
	GetSnapshot(userID string, windowDays int) (*domain.FeatureSnapshot, error)
	GetPersona(userID string, windowDays int) (*domain.PersonaAssignment, error)
	GetAccounts(userID string) ([]domain.Account, error)
	GetTransactionsSince(userID string, since time.Time) ([]domain.Transaction, error)
	GetLiabilities(userID string) ([]domain.Liability, error)
	ListRecommendations(userID, status string, windowDays int) ([]*domain.Recommendation, error)
	InsertRecommendations(recs []*domain.Recommendation) error
}

// Deps bundles the orchestrator's collaborators for injection.
type Deps struct {
	Store     Store
	Generator Generator
	Products  ProductMatcher
	Articles  ArticleMatcher
	Logger    *zap.Logger
}

// Orchestrator runs the generation pipeline: consent gate, idempotency
// check, persona gate, context build, LLM call, tone validation,
// enrichment, and atomic persistence.
type Orchestrator struct {
	store     Store
	generator Generator
	products  ProductMatcher
	articles  ArticleMatcher
	logger    *zap.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex // per-owner generation locks
}

// NewOrchestrator creates the recommendation pipeline from its deps.
func NewOrchestrator(deps Deps) *Orchestrator {
	return &Orchestrator{
		store:     deps.Store,
		generator: deps.Generator,
		products:  deps.Products,
		articles:  deps.Articles,
		logger:    deps.Logger,
		now:       time.Now,
		locks:     make(map[string]*sync.Mutex),
	}
}

// lockFor returns the generation lock for one owner. Serializing per
// owner closes the read-then-write race in the idempotency check.
func (o *Orchestrator) lockFor(userID string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	l, ok := o.locks[userID]
	if !ok {
		l = &sync.Mutex{}
		o.locks[userID] = l
	}
	return l
}

// Generate runs the full pipeline for (userID, windowDays). With force
// false, existing pending recommendations for the window are returned
// unchanged without any external call. Gate failures abort before the
// LLM is reached; generation failures abort with zero writes.
func (o *Orchestrator) Generate(ctx context.Context, userID string, windowDays int, force bool) ([]*domain.Recommendation, error) {
	lock := o.lockFor(userID)
	lock.Lock()
	defer lock.Unlock()

	// Consent gate
	user, err := o.store.GetUser(userID)
	if err != nil {
		return nil, err
	}
	if !user.ConsentStatus {
		return nil, fmt.Errorf("user %s: %w", userID, domain.ErrConsentDenied)
	}

	// Idempotency check
	if !force {
		existing, err := o.store.ListRecommendations(userID, domain.StatusPendingApproval, windowDays)
		if err != nil {
			return nil, err
		}
		if len(existing) > 0 {
			o.logger.Info("returning existing pending recommendations",
				zap.String("user_id", userID),
				zap.Int("window_days", windowDays),
				zap.Int("count", len(existing)))
			return existing, nil
		}
	}

	// Persona gate
	assignment, err := o.store.GetPersona(userID, windowDays)
	if err != nil {
		return nil, err
	}

	snap, err := o.store.GetSnapshot(userID, windowDays)
	if err != nil {
		return nil, err
	}
	accounts, err := o.store.GetAccounts(userID)
	if err != nil {
		return nil, err
	}
	txns, err := o.store.GetTransactionsSince(userID, o.now().AddDate(0, 0, -windowDays))
	if err != nil {
		return nil, err
	}
	liabilities, err := o.store.GetLiabilities(userID)
	if err != nil {
		return nil, err
	}

	contextJSON, err := BuildContext(snap, assignment, accounts, txns, liabilities)
	if err != nil {
		return nil, err
	}
	prompt := BuildPrompt(assignment.PersonaType, contextJSON)

	started := o.now()
	items, err := o.generator.Generate(ctx, prompt)
	if err != nil {
		return nil, &domain.GenerationError{Stage: "generate", Err: err}
	}
	latencyMS := int(o.now().Sub(started).Milliseconds())

	// Product and article enrichment are independent; run them
	// concurrently and degrade each to empty on failure.
	var wg sync.WaitGroup
	var matches []products.Match
	attachments := make([]*articles.Attachment, len(items))

	wg.Add(1)
	go func() {
		defer wg.Done()
		result, err := o.products.Match(assignment.PersonaType, snap, accounts)
		if err != nil {
			o.logger.Warn("product matching failed, continuing education-only",
				zap.String("user_id", userID), zap.Error(err))
			return
		}
		matches = result
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i, item := range items {
			attachments[i] = o.articles.MatchArticle(ctx, item.Title, item.Content)
		}
	}()

	wg.Wait()

	generatedAt := o.now()
	expiresAt := generatedAt.Add(recommendationTTL)

	recs := make([]*domain.Recommendation, 0, len(items)+len(matches))
	for i, item := range items {
		meta := domain.RecommendationMetadata{
			ValidationWarnings: ValidateTone(item.Content),
		}
		if a := attachments[i]; a != nil {
			meta.ArticleID = a.ArticleID
			meta.ArticleTitle = a.Title
			meta.ArticleSimilarity = a.Similarity
		}
		recs = append(recs, &domain.Recommendation{
			RecommendationID: newRecommendationID(),
			UserID:           userID,
			PersonaType:      assignment.PersonaType,
			WindowDays:       windowDays,
			ContentType:      domain.ContentEducation,
			Title:            item.Title,
			Content:          AppendDisclosure(item.Content),
			Rationale:        item.Rationale,
			Status:           domain.StatusPendingApproval,
			Metadata:         meta,
			GeneratedAt:      generatedAt,
			GenerationTimeMS: latencyMS,
			ExpiresAt:        &expiresAt,
		})
	}

	for _, m := range matches {
		recs = append(recs, &domain.Recommendation{
			RecommendationID: newRecommendationID(),
			UserID:           userID,
			PersonaType:      assignment.PersonaType,
			WindowDays:       windowDays,
			ContentType:      domain.ContentPartnerOffer,
			Title:            m.Product.ProductName,
			Content:          AppendDisclosure(m.Product.ShortDescription),
			Rationale:        m.Rationale,
			Status:           domain.StatusPendingApproval,
			Metadata: domain.RecommendationMetadata{
				ProductID:      m.Product.ProductID,
				RelevanceScore: m.RelevanceScore,
			},
			GeneratedAt:      generatedAt,
			GenerationTimeMS: latencyMS,
			ExpiresAt:        &expiresAt,
		})
	}

	if err := o.store.InsertRecommendations(recs); err != nil {
		return nil, fmt.Errorf("persist recommendations: %w", err)
	}

	o.logger.Info("generated recommendations",
		zap.String("user_id", userID),
		zap.Int("window_days", windowDays),
		zap.String("persona", assignment.PersonaType),
		zap.Int("education_items", len(items)),
		zap.Int("partner_offers", len(matches)),
		zap.Int("generation_time_ms", latencyMS))

	return recs, nil
}

// newRecommendationID returns a rec_<16 hex chars> identifier.
func newRecommendationID() string {
	hex := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "rec_" + hex[:16]
}
