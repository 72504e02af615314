package worker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/VictorGoic0/SpendSense-sub000/internal/domain"
	"github.com/VictorGoic0/SpendSense-sub000/internal/features"
	"github.com/VictorGoic0/SpendSense-sub000/internal/persona"
)

var errMockData = errors.New("mock data error")

type snapshotKey struct {
	userID string
	window int
}

// mockBackend stands in for the store across the whole refresh pipeline:
// user listing, bank data reads, snapshot writes/reads, and persona writes.
type mockBackend struct {
	mu          sync.Mutex
	userIDs     []string
	failUser    string // GetAccounts fails for this user
	failList    bool
	snapshots   map[snapshotKey]*domain.FeatureSnapshot
	assignments map[snapshotKey]*domain.PersonaAssignment
	writeOrder  []snapshotKey
}

func newMockBackend(userIDs ...string) *mockBackend {
	return &mockBackend{
		userIDs:     userIDs,
		snapshots:   make(map[snapshotKey]*domain.FeatureSnapshot),
		assignments: make(map[snapshotKey]*domain.PersonaAssignment),
	}
}

func (m *mockBackend) ListConsentedUserIDs() ([]string, error) {
	if m.failList {
		return nil, errMockData
	}
	return m.userIDs, nil
}

func (m *mockBackend) GetAccounts(userID string) ([]domain.Account, error) {
	if userID == m.failUser {
		return nil, errMockData
	}
	return nil, nil
}

func (m *mockBackend) GetTransactionsSince(userID string, since time.Time) ([]domain.Transaction, error) {
	return nil, nil
}

func (m *mockBackend) GetLiabilities(userID string) ([]domain.Liability, error) {
	return nil, nil
}

func (m *mockBackend) UpsertSnapshot(snap *domain.FeatureSnapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := snapshotKey{snap.UserID, snap.WindowDays}
	m.snapshots[key] = snap
	m.writeOrder = append(m.writeOrder, key)
	return nil
}

func (m *mockBackend) GetSnapshot(userID string, windowDays int) (*domain.FeatureSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[snapshotKey{userID, windowDays}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return snap, nil
}

func (m *mockBackend) UpsertPersona(p *domain.PersonaAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[snapshotKey{p.UserID, p.WindowDays}] = p
	return nil
}

func newTestRefresher(backend *mockBackend, spec string) *Refresher {
	logger := zap.NewNop()
	aggregator := features.NewAggregator(backend, backend, logger)
	personas := persona.NewService(backend, backend, logger)
	return NewRefresher(backend, aggregator, personas, spec, logger)
}

func TestRefresher_RunOnceRefreshesBothWindows(t *testing.T) {
	backend := newMockBackend("user_1", "user_2")
	r := newTestRefresher(backend, "0 2 * * *")

	r.RunOnce()

	for _, userID := range []string{"user_1", "user_2"} {
		for _, window := range []int{domain.WindowShort, domain.WindowLong} {
			key := snapshotKey{userID, window}
			if backend.snapshots[key] == nil {
				t.Errorf("no snapshot for %s/%dd", userID, window)
			}
			if backend.assignments[key] == nil {
				t.Errorf("no persona assignment for %s/%dd", userID, window)
			}
		}
	}
}

func TestRefresher_LongWindowComputedFirst(t *testing.T) {
	backend := newMockBackend("user_1")
	r := newTestRefresher(backend, "0 2 * * *")

	r.RunOnce()

	if len(backend.writeOrder) != 2 {
		t.Fatalf("snapshot writes = %d, want 2", len(backend.writeOrder))
	}
	if backend.writeOrder[0].window != domain.WindowLong {
		t.Errorf("first write window = %d, want %d", backend.writeOrder[0].window, domain.WindowLong)
	}
	if backend.writeOrder[1].window != domain.WindowShort {
		t.Errorf("second write window = %d, want %d", backend.writeOrder[1].window, domain.WindowShort)
	}
}

func TestRefresher_ContinuesPastFailingUser(t *testing.T) {
	backend := newMockBackend("user_bad", "user_good")
	backend.failUser = "user_bad"
	r := newTestRefresher(backend, "0 2 * * *")

	r.RunOnce()

	if backend.snapshots[snapshotKey{"user_bad", domain.WindowShort}] != nil {
		t.Error("failing user should not get a snapshot")
	}
	if backend.snapshots[snapshotKey{"user_good", domain.WindowShort}] == nil {
		t.Error("healthy user should still be refreshed")
	}
	if backend.assignments[snapshotKey{"user_good", domain.WindowLong}] == nil {
		t.Error("healthy user should still be classified")
	}
}

func TestRefresher_ListFailureAborts(t *testing.T) {
	backend := newMockBackend("user_1")
	backend.failList = true
	r := newTestRefresher(backend, "0 2 * * *")

	r.RunOnce()

	if len(backend.snapshots) != 0 {
		t.Errorf("snapshots = %d, want 0 when listing fails", len(backend.snapshots))
	}
}

func TestRefresher_StartRejectsInvalidCronSpec(t *testing.T) {
	backend := newMockBackend()
	r := newTestRefresher(backend, "not a cron spec")

	if err := r.Start(); err == nil {
		t.Fatal("expected error for invalid cron spec")
	}
}

func TestRefresher_StartAndStop(t *testing.T) {
	backend := newMockBackend()
	r := newTestRefresher(backend, "0 2 * * *")

	if err := r.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	r.Stop()
}
