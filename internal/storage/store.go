package storage

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Store handles all SQLite persistence: users and consent, bank data,
// feature snapshots, persona assignments, recommendations, and the
// product/article catalogs.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at dbPath and runs migrations.
// Pass ":memory:" for an ephemeral store in tests.
func Open(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		if strings.HasPrefix(dbPath, "~") {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			dbPath = filepath.Join(home, dbPath[1:])
		}
		if dir := filepath.Dir(dbPath); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, err
			}
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, err
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

// DB exposes the underlying handle so the vector store can share it.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the necessary tables
func (s *Store) migrate() error {
	schema := `
		CREATE TABLE IF NOT EXISTS users (
			user_id TEXT PRIMARY KEY,
			full_name TEXT NOT NULL,
			email TEXT NOT NULL,
			consent_status INTEGER NOT NULL DEFAULT 0,
			consent_granted_at DATETIME,
			consent_revoked_at DATETIME,
			created_at DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS consent_log (
			log_id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			action TEXT NOT NULL,
			timestamp DATETIME NOT NULL,
			FOREIGN KEY (user_id) REFERENCES users(user_id)
		);

		CREATE TABLE IF NOT EXISTS accounts (
			account_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			type TEXT NOT NULL,
			subtype TEXT,
			balance_available REAL NOT NULL DEFAULT 0,
			balance_current REAL NOT NULL DEFAULT 0,
			balance_limit REAL NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS transactions (
			transaction_id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			date DATETIME NOT NULL,
			amount REAL NOT NULL,
			merchant_name TEXT,
			payment_channel TEXT,
			category_primary TEXT,
			category_detailed TEXT,
			pending INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS liabilities (
			liability_id TEXT PRIMARY KEY,
			account_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			liability_type TEXT NOT NULL,
			apr_purchase REAL,
			apr_balance_transfer REAL,
			minimum_payment_amount REAL,
			last_payment_amount REAL,
			is_overdue INTEGER NOT NULL DEFAULT 0,
			next_payment_due_date DATETIME
		);

		CREATE TABLE IF NOT EXISTS feature_snapshots (
			user_id TEXT NOT NULL,
			window_days INTEGER NOT NULL,
			computed_at DATETIME NOT NULL,
			signals TEXT NOT NULL,
			PRIMARY KEY (user_id, window_days)
		);

		CREATE TABLE IF NOT EXISTS persona_assignments (
			user_id TEXT NOT NULL,
			window_days INTEGER NOT NULL,
			persona_type TEXT NOT NULL,
			confidence REAL NOT NULL,
			reasoning TEXT,
			assigned_at DATETIME NOT NULL,
			PRIMARY KEY (user_id, window_days)
		);

		CREATE TABLE IF NOT EXISTS recommendations (
			recommendation_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			persona_type TEXT NOT NULL,
			window_days INTEGER NOT NULL,
			content_type TEXT NOT NULL,
			title TEXT NOT NULL,
			content TEXT NOT NULL,
			rationale TEXT,
			status TEXT NOT NULL,
			approved_by TEXT,
			approved_at DATETIME,
			override_reason TEXT,
			original_content TEXT,
			metadata TEXT,
			generated_at DATETIME NOT NULL,
			generation_time_ms INTEGER NOT NULL DEFAULT 0,
			expires_at DATETIME
		);

		CREATE TABLE IF NOT EXISTS operator_actions (
			action_id INTEGER PRIMARY KEY AUTOINCREMENT,
			operator_id TEXT NOT NULL,
			action_type TEXT NOT NULL,
			recommendation_id TEXT NOT NULL,
			user_id TEXT NOT NULL,
			reason TEXT,
			timestamp DATETIME NOT NULL
		);

		CREATE TABLE IF NOT EXISTS products (
			product_id TEXT PRIMARY KEY,
			product_name TEXT NOT NULL,
			product_type TEXT,
			category TEXT NOT NULL,
			short_description TEXT,
			benefits TEXT,
			typical_apy_or_fee TEXT,
			partner_name TEXT,
			partner_link TEXT,
			disclosure TEXT,
			persona_targets TEXT,
			min_income REAL NOT NULL DEFAULT 0,
			max_credit_utilization REAL NOT NULL DEFAULT 0,
			requires_no_existing_savings INTEGER NOT NULL DEFAULT 0,
			requires_no_existing_investment INTEGER NOT NULL DEFAULT 0,
			active INTEGER NOT NULL DEFAULT 1
		);

		CREATE TABLE IF NOT EXISTS articles (
			article_id TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			summary TEXT NOT NULL,
			category TEXT,
			url TEXT,
			persona_tags TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_transactions_user_date ON transactions(user_id, date);
		CREATE INDEX IF NOT EXISTS idx_accounts_user ON accounts(user_id);
		CREATE INDEX IF NOT EXISTS idx_liabilities_user ON liabilities(user_id);
		CREATE INDEX IF NOT EXISTS idx_recommendations_user ON recommendations(user_id);
		CREATE INDEX IF NOT EXISTS idx_recommendations_status ON recommendations(status);
		CREATE INDEX IF NOT EXISTS idx_operator_actions_rec ON operator_actions(recommendation_id);
	`

	_, err := s.db.Exec(schema)
	return err
}
