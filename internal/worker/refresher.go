package worker

import (
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
	"github.com/VictorGoic0/SpendSense-sub000/internal/features"
	"github.com/VictorGoic0/SpendSense-sub000/internal/persona"
)

// UserSource lists users whose data the batch refresh may touch.
// Implemented by *storage.Store.
type UserSource interface {
	ListConsentedUserIDs() ([]string, error)
}

// Refresher recomputes snapshots and persona assignments for every
// consented user on a cron schedule.
type Refresher struct {
	users      UserSource
	aggregator *features.Aggregator
	personas   *persona.Service
	logger     *zap.Logger
	spec       string
	cron       *cron.Cron
}

// NewRefresher creates the batch refresh worker with a standard 5-field
// cron spec.
func NewRefresher(users UserSource, aggregator *features.Aggregator, personas *persona.Service, spec string, logger *zap.Logger) *Refresher {
	return &Refresher{
		users:      users,
		aggregator: aggregator,
		personas:   personas,
		logger:     logger,
		spec:       spec,
		cron:       cron.New(),
	}
}

// Start registers the schedule and begins running it.
func (r *Refresher) Start() error {
	if _, err := r.cron.AddFunc(r.spec, r.RunOnce); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", r.spec, err)
	}
	r.cron.Start()
	r.logger.Info("batch refresh scheduled", zap.String("cron_spec", r.spec))
	return nil
}

// Stop halts the schedule; a run already in progress finishes.
func (r *Refresher) Stop() {
	r.cron.Stop()
}

// RunOnce refreshes both windows for every consented user. Per-user
// failures are logged and the run continues; one bad ledger must not
// starve everyone else's refresh.
func (r *Refresher) RunOnce() {
	userIDs, err := r.users.ListConsentedUserIDs()
	if err != nil {
		r.logger.Error("batch refresh could not list users", zap.Error(err))
		return
	}

	windows := []int{domain.WindowShort, domain.WindowLong}
	refreshed := 0
	for _, userID := range userIDs {
		failed := false
		// The long window runs first so the short-window classification
		// sees fresh 180-day derogatory flags.
		for i := len(windows) - 1; i >= 0; i-- {
			windowDays := windows[i]
			if _, err := r.aggregator.Compute(userID, windowDays); err != nil {
				r.logger.Error("batch snapshot failed",
					zap.String("user_id", userID),
					zap.Int("window_days", windowDays),
					zap.Error(err))
				failed = true
				continue
			}
			if _, err := r.personas.Assign(userID, windowDays); err != nil {
				r.logger.Error("batch persona assignment failed",
					zap.String("user_id", userID),
					zap.Int("window_days", windowDays),
					zap.Error(err))
				failed = true
			}
		}
		if !failed {
			refreshed++
		}
	}

	r.logger.Info("batch refresh complete",
		zap.Int("users", len(userIDs)),
		zap.Int("refreshed", refreshed))
}
