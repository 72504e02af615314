package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// InsertRecommendation persists a freshly generated recommendation.
func (s *Store) InsertRecommendation(r *domain.Recommendation) error {
	return insertRecommendation(s.db, r)
}

// InsertRecommendations persists a batch atomically: either every item is
// written or none are.
func (s *Store) InsertRecommendations(recs []*domain.Recommendation) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, r := range recs {
		if err := insertRecommendation(tx, r); err != nil {
			return err
		}
	}
	return tx.Commit()
}

type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertRecommendation(e execer, r *domain.Recommendation) error {
	meta, err := json.Marshal(r.Metadata)
	if err != nil {
		return err
	}

	_, err = e.Exec(`
		INSERT INTO recommendations (recommendation_id, user_id, persona_type, window_days, content_type, title, content, rationale, status, approved_by, approved_at, override_reason, original_content, metadata, generated_at, generation_time_ms, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, r.RecommendationID, r.UserID, r.PersonaType, r.WindowDays, r.ContentType, r.Title, r.Content, r.Rationale, r.Status,
		r.ApprovedBy, r.ApprovedAt, r.OverrideReason, r.OriginalContent, string(meta), r.GeneratedAt, r.GenerationTimeMS, r.ExpiresAt)

	return err
}

const recommendationColumns = `recommendation_id, user_id, persona_type, window_days, content_type, title, content, rationale, status, approved_by, approved_at, override_reason, original_content, metadata, generated_at, generation_time_ms, expires_at`

func scanRecommendation(row interface{ Scan(...any) error }) (*domain.Recommendation, error) {
	var r domain.Recommendation
	var approvedBy, overrideReason, originalContent, rationale, meta sql.NullString
	err := row.Scan(&r.RecommendationID, &r.UserID, &r.PersonaType, &r.WindowDays, &r.ContentType, &r.Title, &r.Content, &rationale, &r.Status,
		&approvedBy, &r.ApprovedAt, &overrideReason, &originalContent, &meta, &r.GeneratedAt, &r.GenerationTimeMS, &r.ExpiresAt)
	if err != nil {
		return nil, err
	}
	r.Rationale = rationale.String
	r.ApprovedBy = approvedBy.String
	r.OverrideReason = overrideReason.String
	r.OriginalContent = originalContent.String
	if meta.Valid {
		json.Unmarshal([]byte(meta.String), &r.Metadata)
	}
	return &r, nil
}

// GetRecommendation retrieves a recommendation by ID.
func (s *Store) GetRecommendation(recID string) (*domain.Recommendation, error) {
	row := s.db.QueryRow(`SELECT `+recommendationColumns+` FROM recommendations WHERE recommendation_id = ?`, recID)

	r, err := scanRecommendation(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recommendation %s: %w", recID, domain.ErrNotFound)
		}
		return nil, err
	}
	return r, nil
}

// ListRecommendations returns a user's recommendations, newest first.
// Empty status or zero windowDays disables that filter.
func (s *Store) ListRecommendations(userID, status string, windowDays int) ([]*domain.Recommendation, error) {
	query := `SELECT ` + recommendationColumns + ` FROM recommendations WHERE user_id = ?`
	args := []any{userID}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}
	if windowDays > 0 {
		query += ` AND window_days = ?`
		args = append(args, windowDays)
	}
	query += ` ORDER BY generated_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*domain.Recommendation
	for rows.Next() {
		r, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// ListByStatus returns all recommendations in the given status,
// newest first. The operator dashboard reads the pending queue with this.
func (s *Store) ListByStatus(status string) ([]*domain.Recommendation, error) {
	rows, err := s.db.Query(`SELECT `+recommendationColumns+` FROM recommendations WHERE status = ? ORDER BY generated_at DESC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var recs []*domain.Recommendation
	for rows.Next() {
		r, err := scanRecommendation(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, r)
	}
	return recs, rows.Err()
}

// Transition applies a one-way status change and records the operator
// action atomically. Override archives the original content before
// replacing title/content. Returns domain.ErrInvalidTransition when the
// recommendation is not pending.
func (s *Store) Transition(recID string, action domain.OperatorAction, newTitle, newContent string, at time.Time) (*domain.Recommendation, error) {
	var target string
	switch action.ActionType {
	case domain.ActionApprove:
		target = domain.StatusApproved
	case domain.ActionReject:
		target = domain.StatusRejected
	case domain.ActionOverride:
		target = domain.StatusOverridden
	default:
		return nil, fmt.Errorf("unknown action %q: %w", action.ActionType, domain.ErrInvalidTransition)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	row := tx.QueryRow(`SELECT status, user_id, title, content FROM recommendations WHERE recommendation_id = ?`, recID)
	var status, userID, title, content string
	if err := row.Scan(&status, &userID, &title, &content); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("recommendation %s: %w", recID, domain.ErrNotFound)
		}
		return nil, err
	}

	if !domain.CanTransition(status, target) {
		return nil, fmt.Errorf("%s -> %s: %w", status, target, domain.ErrInvalidTransition)
	}

	switch action.ActionType {
	case domain.ActionApprove:
		_, err = tx.Exec(`UPDATE recommendations SET status = ?, approved_by = ?, approved_at = ? WHERE recommendation_id = ?`,
			target, action.OperatorID, at, recID)
	case domain.ActionReject:
		_, err = tx.Exec(`UPDATE recommendations SET status = ?, approved_by = ?, approved_at = ?, override_reason = ? WHERE recommendation_id = ?`,
			target, action.OperatorID, at, action.Reason, recID)
	case domain.ActionOverride:
		original, _ := json.Marshal(map[string]string{"title": title, "content": content})
		_, err = tx.Exec(`UPDATE recommendations SET status = ?, approved_by = ?, approved_at = ?, override_reason = ?, original_content = ?, title = ?, content = ? WHERE recommendation_id = ?`,
			target, action.OperatorID, at, action.Reason, string(original), newTitle, newContent, recID)
	}
	if err != nil {
		return nil, err
	}

	if _, err := tx.Exec(`
		INSERT INTO operator_actions (operator_id, action_type, recommendation_id, user_id, reason, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, action.OperatorID, action.ActionType, recID, userID, action.Reason, at); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return s.GetRecommendation(recID)
}

// GetOperatorActions returns the audit trail for a recommendation.
func (s *Store) GetOperatorActions(recID string) ([]domain.OperatorAction, error) {
	rows, err := s.db.Query(`
		SELECT action_id, operator_id, action_type, recommendation_id, user_id, reason, timestamp
		FROM operator_actions WHERE recommendation_id = ? ORDER BY timestamp ASC
	`, recID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var actions []domain.OperatorAction
	for rows.Next() {
		var a domain.OperatorAction
		var reason sql.NullString
		if err := rows.Scan(&a.ActionID, &a.OperatorID, &a.ActionType, &a.RecommendationID, &a.UserID, &reason, &a.Timestamp); err != nil {
			return nil, err
		}
		a.Reason = reason.String
		actions = append(actions, a)
	}
	return actions, rows.Err()
}

// DashboardStats aggregates review-queue metrics for operators.
type DashboardStats struct {
	StatusCounts        map[string]int `json:"status_counts"`
	PersonaDistribution map[string]int `json:"persona_distribution"`
	AvgGenerationTimeMS float64        `json:"avg_generation_time_ms"`
}

// GetDashboardStats computes status counts, persona distribution, and the
// mean generation latency across all recommendations.
func (s *Store) GetDashboardStats() (*DashboardStats, error) {
	stats := &DashboardStats{StatusCounts: make(map[string]int)}

	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM recommendations GROUP BY status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		stats.StatusCounts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	var avg sql.NullFloat64
	if err := s.db.QueryRow(`SELECT AVG(generation_time_ms) FROM recommendations`).Scan(&avg); err != nil {
		return nil, err
	}
	stats.AvgGenerationTimeMS = avg.Float64

	dist, err := s.PersonaDistribution()
	if err != nil {
		return nil, err
	}
	stats.PersonaDistribution = dist

	return stats, nil
}
