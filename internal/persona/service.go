package persona

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
)

// SnapshotSource reads feature snapshots. Implemented by *storage.Store.
type SnapshotSource interface {
	GetSnapshot(userID string, windowDays int) (*domain.FeatureSnapshot, error)
}

// AssignmentWriter persists persona assignments keyed by (user, window).
// Implemented by *storage.Store.
type AssignmentWriter interface {
	UpsertPersona(p *domain.PersonaAssignment) error
}

// Service runs classification against stored snapshots and persists the
// result.
type Service struct {
	snapshots SnapshotSource
	personas  AssignmentWriter
	logger    *zap.Logger
	now       func() time.Time
}

// NewService creates a persona assignment service.
func NewService(snapshots SnapshotSource, personas AssignmentWriter, logger *zap.Logger) *Service {
	return &Service{
		snapshots: snapshots,
		personas:  personas,
		logger:    logger,
		now:       time.Now,
	}
}

// Assign classifies the stored snapshot for (userID, windowDays) and
// upserts the assignment. A snapshot must already exist for the window.
func (s *Service) Assign(userID string, windowDays int) (*domain.PersonaAssignment, error) {
	snap, err := s.snapshots.GetSnapshot(userID, windowDays)
	if err != nil {
		return nil, fmt.Errorf("classification requires a feature snapshot: %w", err)
	}

	assignment := Classify(Input{
		Snapshot:         snap,
		DerogatoryIn180d: s.derogatoryIn180d(userID, snap),
	})
	assignment.AssignedAt = s.now()

	if err := s.personas.UpsertPersona(assignment); err != nil {
		return nil, fmt.Errorf("save persona: %w", err)
	}

	s.logger.Info("assigned persona",
		zap.String("user_id", userID),
		zap.Int("window_days", windowDays),
		zap.String("persona", assignment.PersonaType),
		zap.Float64("confidence", assignment.Confidence))

	return assignment, nil
}

// derogatoryIn180d checks the long window for interest charges or overdue
// liabilities. When the 180-day snapshot is missing the current window's
// flags stand in, so a short-window run never invents a clean history.
func (s *Service) derogatoryIn180d(userID string, current *domain.FeatureSnapshot) bool {
	long := current
	if current.WindowDays != domain.WindowLong {
		snap, err := s.snapshots.GetSnapshot(userID, domain.WindowLong)
		if err != nil {
			if !errors.Is(err, domain.ErrNotFound) {
				s.logger.Warn("long-window snapshot lookup failed", zap.String("user_id", userID), zap.Error(err))
			}
		} else {
			long = snap
		}
	}
	return long.InterestChargesPresent || long.AnyOverdue
}
