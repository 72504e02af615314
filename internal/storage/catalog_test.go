package storage

import (
	"errors"
	"reflect"
	"testing"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

func TestStore_ProductRoundTrip(t *testing.T) {
	store := openTestStore(t)

	p := &domain.ProductOffer{
		ProductID:            "prod_hysa",
		ProductName:          "High-Yield Savings",
		ProductType:          "deposit_account",
		Category:             "hysa",
		ShortDescription:     "Earn more on your savings.",
		Benefits:             []string{"4.5% APY", "No fees"},
		TypicalAPYOrFee:      "4.5% APY",
		PartnerName:          "Partner Bank",
		PersonaTargets:       []string{domain.PersonaSavingsBuilder, domain.PersonaGeneralWellness},
		MinIncome:            1000,
		MaxCreditUtilization: 0.9,
		Active:               true,
	}
	if err := store.UpsertProduct(p); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.GetProduct("prod_hysa")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ProductName != p.ProductName || got.MinIncome != p.MinIncome {
		t.Errorf("got %+v", got)
	}
	if !reflect.DeepEqual(got.Benefits, p.Benefits) {
		t.Errorf("benefits = %v, want %v", got.Benefits, p.Benefits)
	}
	if !reflect.DeepEqual(got.PersonaTargets, p.PersonaTargets) {
		t.Errorf("persona targets = %v, want %v", got.PersonaTargets, p.PersonaTargets)
	}

	_, err = store.GetProduct("prod_missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStore_ListActiveProductsExcludesInactive(t *testing.T) {
	store := openTestStore(t)

	active := &domain.ProductOffer{ProductID: "prod_a", ProductName: "A", Category: "hysa", Active: true}
	inactive := &domain.ProductOffer{ProductID: "prod_b", ProductName: "B", Category: "hysa", Active: false}
	for _, p := range []*domain.ProductOffer{active, inactive} {
		if err := store.UpsertProduct(p); err != nil {
			t.Fatalf("upsert: %v", err)
		}
	}

	got, err := store.ListActiveProducts()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 1 || got[0].ProductID != "prod_a" {
		t.Errorf("active products = %v", got)
	}
}

func TestStore_ArticleRoundTrip(t *testing.T) {
	store := openTestStore(t)

	a := &domain.Article{
		ArticleID:   "art_1",
		Title:       "Credit Utilization Explained",
		Summary:     "How utilization affects your score and what you can do about it.",
		Category:    "credit",
		URL:         "https://example.com/utilization",
		PersonaTags: []string{domain.PersonaHighUtilization},
	}
	if err := store.UpsertArticle(a); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	got, err := store.GetArticle("art_1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != a.Title || got.URL != a.URL {
		t.Errorf("got %+v", got)
	}
	if !reflect.DeepEqual(got.PersonaTags, a.PersonaTags) {
		t.Errorf("persona tags = %v", got.PersonaTags)
	}

	_, err = store.GetArticle("art_missing")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
