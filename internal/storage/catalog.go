package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// UpsertProduct inserts or replaces a catalog product.
func (s *Store) UpsertProduct(p *domain.ProductOffer) error {
	benefits, _ := json.Marshal(p.Benefits)
	targets, _ := json.Marshal(p.PersonaTargets)

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO products (product_id, product_name, product_type, category, short_description, benefits, typical_apy_or_fee, partner_name, partner_link, disclosure, persona_targets, min_income, max_credit_utilization, requires_no_existing_savings, requires_no_existing_investment, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ProductID, p.ProductName, p.ProductType, p.Category, p.ShortDescription, string(benefits), p.TypicalAPYOrFee,
		p.PartnerName, p.PartnerLink, p.Disclosure, string(targets), p.MinIncome, p.MaxCreditUtilization,
		p.RequiresNoExistingSavings, p.RequiresNoExistingInvestment, p.Active)

	return err
}

const productColumns = `product_id, product_name, product_type, category, short_description, benefits, typical_apy_or_fee, partner_name, partner_link, disclosure, persona_targets, min_income, max_credit_utilization, requires_no_existing_savings, requires_no_existing_investment, active`

func scanProduct(row interface{ Scan(...any) error }) (*domain.ProductOffer, error) {
	var p domain.ProductOffer
	var benefits, targets string
	err := row.Scan(&p.ProductID, &p.ProductName, &p.ProductType, &p.Category, &p.ShortDescription, &benefits, &p.TypicalAPYOrFee,
		&p.PartnerName, &p.PartnerLink, &p.Disclosure, &targets, &p.MinIncome, &p.MaxCreditUtilization,
		&p.RequiresNoExistingSavings, &p.RequiresNoExistingInvestment, &p.Active)
	if err != nil {
		return nil, err
	}
	json.Unmarshal([]byte(benefits), &p.Benefits)
	json.Unmarshal([]byte(targets), &p.PersonaTargets)
	return &p, nil
}

// GetProduct retrieves a product by ID.
func (s *Store) GetProduct(productID string) (*domain.ProductOffer, error) {
	row := s.db.QueryRow(`SELECT `+productColumns+` FROM products WHERE product_id = ?`, productID)
	p, err := scanProduct(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("product %s: %w", productID, domain.ErrNotFound)
		}
		return nil, err
	}
	return p, nil
}

// ListActiveProducts returns every active catalog product.
func (s *Store) ListActiveProducts() ([]*domain.ProductOffer, error) {
	rows, err := s.db.Query(`SELECT ` + productColumns + ` FROM products WHERE active = 1 ORDER BY product_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var products []*domain.ProductOffer
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

// UpsertArticle inserts or replaces an article catalog row. Its embedding
// lives in the vector store under the same ID.
func (s *Store) UpsertArticle(a *domain.Article) error {
	tags, _ := json.Marshal(a.PersonaTags)

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO articles (article_id, title, summary, category, url, persona_tags)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ArticleID, a.Title, a.Summary, a.Category, a.URL, string(tags))

	return err
}

// GetArticle retrieves an article by ID.
func (s *Store) GetArticle(articleID string) (*domain.Article, error) {
	row := s.db.QueryRow(`
		SELECT article_id, title, summary, category, url, persona_tags
		FROM articles WHERE article_id = ?
	`, articleID)

	var a domain.Article
	var tags string
	err := row.Scan(&a.ArticleID, &a.Title, &a.Summary, &a.Category, &a.URL, &tags)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("article %s: %w", articleID, domain.ErrNotFound)
		}
		return nil, err
	}
	json.Unmarshal([]byte(tags), &a.PersonaTags)
	return &a, nil
}
