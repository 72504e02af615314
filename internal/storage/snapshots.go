package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// UpsertSnapshot writes a feature snapshot, replacing any prior row for
// the same (user, window) pair.
func (s *Store) UpsertSnapshot(snap *domain.FeatureSnapshot) error {
	signals, err := json.Marshal(snap)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO feature_snapshots (user_id, window_days, computed_at, signals)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, window_days) DO UPDATE SET
			computed_at=excluded.computed_at, signals=excluded.signals
	`, snap.UserID, snap.WindowDays, snap.ComputedAt, string(signals))

	return err
}

// GetSnapshot retrieves the snapshot for a (user, window) pair.
func (s *Store) GetSnapshot(userID string, windowDays int) (*domain.FeatureSnapshot, error) {
	row := s.db.QueryRow(`
		SELECT signals FROM feature_snapshots WHERE user_id = ? AND window_days = ?
	`, userID, windowDays)

	var signals string
	if err := row.Scan(&signals); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("snapshot %s/%dd: %w", userID, windowDays, domain.ErrNotFound)
		}
		return nil, err
	}

	var snap domain.FeatureSnapshot
	if err := json.Unmarshal([]byte(signals), &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// UpsertPersona writes a persona assignment, replacing any prior row for
// the same (user, window) pair.
func (s *Store) UpsertPersona(p *domain.PersonaAssignment) error {
	reasoning, err := json.Marshal(p.Reasoning)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`
		INSERT INTO persona_assignments (user_id, window_days, persona_type, confidence, reasoning, assigned_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, window_days) DO UPDATE SET
			persona_type=excluded.persona_type, confidence=excluded.confidence,
			reasoning=excluded.reasoning, assigned_at=excluded.assigned_at
	`, p.UserID, p.WindowDays, p.PersonaType, p.Confidence, string(reasoning), p.AssignedAt)

	return err
}

// GetPersona retrieves the persona assignment for a (user, window) pair.
// Returns domain.ErrPersonaNotAssigned when none exists.
func (s *Store) GetPersona(userID string, windowDays int) (*domain.PersonaAssignment, error) {
	row := s.db.QueryRow(`
		SELECT user_id, window_days, persona_type, confidence, reasoning, assigned_at
		FROM persona_assignments WHERE user_id = ? AND window_days = ?
	`, userID, windowDays)

	var p domain.PersonaAssignment
	var reasoning string
	err := row.Scan(&p.UserID, &p.WindowDays, &p.PersonaType, &p.Confidence, &reasoning, &p.AssignedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("persona %s/%dd: %w", userID, windowDays, domain.ErrPersonaNotAssigned)
		}
		return nil, err
	}

	json.Unmarshal([]byte(reasoning), &p.Reasoning)
	return &p, nil
}

// GetPersonas returns every persona assignment for a user across windows.
func (s *Store) GetPersonas(userID string) ([]domain.PersonaAssignment, error) {
	rows, err := s.db.Query(`
		SELECT user_id, window_days, persona_type, confidence, reasoning, assigned_at
		FROM persona_assignments WHERE user_id = ? ORDER BY window_days ASC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []domain.PersonaAssignment
	for rows.Next() {
		var p domain.PersonaAssignment
		var reasoning string
		if err := rows.Scan(&p.UserID, &p.WindowDays, &p.PersonaType, &p.Confidence, &reasoning, &p.AssignedAt); err != nil {
			return nil, err
		}
		json.Unmarshal([]byte(reasoning), &p.Reasoning)
		assignments = append(assignments, p)
	}
	return assignments, rows.Err()
}

// PersonaDistribution counts current assignments per persona type.
func (s *Store) PersonaDistribution() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT persona_type, COUNT(*) FROM persona_assignments GROUP BY persona_type`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dist := make(map[string]int)
	for rows.Next() {
		var persona string
		var n int
		if err := rows.Scan(&persona, &n); err != nil {
			return nil, err
		}
		dist[persona] = n
	}
	return dist, rows.Err()
}
