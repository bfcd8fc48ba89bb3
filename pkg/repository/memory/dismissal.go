package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/noticekit/pkg/domain/interfaces"
	"github.com/secmon-lab/noticekit/pkg/domain/model"
	"github.com/secmon-lab/noticekit/pkg/domain/types"
)

// Memory keeps dismissal records in process memory. Used for development and tests.
type Memory struct {
	mu      sync.RWMutex
	records map[types.UserID]model.DismissalRecord
	now     func() time.Time
}

var _ interfaces.DismissalStore = &Memory{}

// Option configures Memory
type Option func(*Memory)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Memory) {
		m.now = now
	}
}

func New(opts ...Option) *Memory {
	m := &Memory{
		records: make(map[types.UserID]model.DismissalRecord),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) GetDismissal(ctx context.Context, userID types.UserID, key string) (time.Time, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	at, ok := m.records[userID].DismissedAt(key)
	return at, ok, nil
}

func (m *Memory) GetDismissals(ctx context.Context, userID types.UserID) (model.DismissalRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Return a copy to prevent external modifications
	return m.records[userID].Clone(), nil
}

func (m *Memory) SetDismissed(ctx context.Context, userID types.UserID, key string) error {
	if userID == "" {
		return goerr.New("user ID is required")
	}
	if key == "" {
		return goerr.New("notice key is required", goerr.V("user_id", userID))
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	record := m.records[userID].Clone()
	record.Set(key, m.now())
	m.records[userID] = record
	return nil
}

func (m *Memory) Close() error {
	return nil
}
