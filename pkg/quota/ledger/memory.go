package ledger

import (
	"context"
	"sync"
	"time"
)

// MemoryStore implements Store with an in-process map.
//
// All data is lost when the process exits, which makes it suitable for
// tests and ephemeral deployments only. MemoryStore is thread-safe using
// sync.RWMutex; a whole Delta applies under one lock acquisition, so
// concurrent increments for the same user never lose an update.
type MemoryStore struct {
	rows   map[string]*Ledger
	mu     sync.RWMutex
	closed bool
}

// NewMemoryStore creates an empty in-memory ledger store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		rows: make(map[string]*Ledger),
	}
}

// Get returns a copy of the user's row, or an all-zero row if none exists.
func (m *MemoryStore) Get(ctx context.Context, userID string) (*Ledger, error) {
	if userID == "" {
		return nil, ErrEmptyUserID
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	row, ok := m.rows[userID]
	if !ok {
		return &Ledger{UserID: userID}, nil
	}

	copied := *row
	return &copied, nil
}

// Increment applies a delta to the user's row, creating it if needed.
func (m *MemoryStore) Increment(ctx context.Context, userID string, delta Delta) error {
	if userID == "" {
		return ErrEmptyUserID
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	now := time.Now()

	row, ok := m.rows[userID]
	if !ok {
		row = &Ledger{UserID: userID, CreatedAt: now}
		m.rows[userID] = row
	}

	if delta.ResetDaily {
		row.TotalMinutesUsed = delta.Minutes
		row.InputSecondsUsed = delta.InputSeconds
		row.OutputSecondsUsed = delta.OutputSeconds
	} else {
		row.TotalMinutesUsed += delta.Minutes
		row.InputSecondsUsed += delta.InputSeconds
		row.OutputSecondsUsed += delta.OutputSeconds
	}

	if delta.ResetHourly {
		row.RequestsThisHour = delta.HourRequests
	} else {
		row.RequestsThisHour += delta.HourRequests
	}

	row.RequestCount += delta.Requests
	row.SavingsAccumulated += delta.Savings
	row.BonusMinutesEarned += delta.BonusEarned
	row.BonusMinutesUsed += delta.BonusUsed

	if !delta.LastUsedAt.IsZero() {
		row.LastUsedAt = delta.LastUsedAt
	}
	row.UpdatedAt = now

	return nil
}

// Size returns the number of stored rows. Useful for tests.
func (m *MemoryStore) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.rows)
}

// Close marks the store closed. Further operations fail.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
