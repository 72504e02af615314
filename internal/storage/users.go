package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// SaveUser inserts or replaces a user row.
func (s *Store) SaveUser(u *domain.User) error {
	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO users (user_id, full_name, email, consent_status, consent_granted_at, consent_revoked_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, u.UserID, u.FullName, u.Email, u.ConsentStatus, u.ConsentGrantedAt, u.ConsentRevokedAt, u.CreatedAt)

	return err
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(userID string) (*domain.User, error) {
	row := s.db.QueryRow(`
		SELECT user_id, full_name, email, consent_status, consent_granted_at, consent_revoked_at, created_at
		FROM users WHERE user_id = ?
	`, userID)

	var u domain.User
	err := row.Scan(&u.UserID, &u.FullName, &u.Email, &u.ConsentStatus, &u.ConsentGrantedAt, &u.ConsentRevokedAt, &u.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
		}
		return nil, err
	}

	return &u, nil
}

// SetConsent updates a user's consent status and appends an audit log row.
func (s *Store) SetConsent(userID string, granted bool, at time.Time) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var res sql.Result
	action := "revoked"
	if granted {
		action = "granted"
		res, err = tx.Exec(`UPDATE users SET consent_status = 1, consent_granted_at = ? WHERE user_id = ?`, at, userID)
	} else {
		res, err = tx.Exec(`UPDATE users SET consent_status = 0, consent_revoked_at = ? WHERE user_id = ?`, at, userID)
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", userID, domain.ErrNotFound)
	}

	if _, err := tx.Exec(`INSERT INTO consent_log (user_id, action, timestamp) VALUES (?, ?, ?)`, userID, action, at); err != nil {
		return err
	}

	return tx.Commit()
}

// GetConsentLog returns the consent history for a user, oldest first.
func (s *Store) GetConsentLog(userID string) ([]domain.ConsentLogEntry, error) {
	rows, err := s.db.Query(`
		SELECT log_id, user_id, action, timestamp
		FROM consent_log WHERE user_id = ? ORDER BY timestamp ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.ConsentLogEntry
	for rows.Next() {
		var e domain.ConsentLogEntry
		if err := rows.Scan(&e.LogID, &e.UserID, &e.Action, &e.Timestamp); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ListConsentedUserIDs returns IDs of every user with active consent.
// The batch worker iterates this set.
func (s *Store) ListConsentedUserIDs() ([]string, error) {
	rows, err := s.db.Query(`SELECT user_id FROM users WHERE consent_status = 1 ORDER BY user_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
