package analytics

import (
	"context"
	"sync"

	"github.com/patrickwarner/chatads/internal/models"
)

var _ Service = (*MockAnalytics)(nil)

// MockAnalytics records calls in memory for tests.
type MockAnalytics struct {
	mu        sync.Mutex
	Events    []models.Event
	Decisions []models.RequestRecord
	Err       error
}

// NewMockAnalytics creates a new mock analytics instance
func NewMockAnalytics() *MockAnalytics {
	return &MockAnalytics{}
}

func (m *MockAnalytics) RecordEvent(_ context.Context, ev models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ev)
	return m.Err
}

func (m *MockAnalytics) RecordDecision(_ context.Context, rec models.RequestRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Decisions = append(m.Decisions, rec)
	return m.Err
}

// EventCount returns the number of recorded events.
func (m *MockAnalytics) EventCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Events)
}

// DecisionCount returns the number of recorded decisions.
func (m *MockAnalytics) DecisionCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Decisions)
}
