package state

import (
	"context"
	"sync"
)

var _ Store = (*MockStore)(nil)

// MockStore is an in-memory Store for testing. Saved states are kept so Load returns
// the last save unless LoadFunc overrides it. It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	LoadFunc func() (State, error)
	SaveFunc func(s State) error

	// Call records
	LoadCalls  int
	SaveCalls  []State
	CloseCalls int

	saved State
}

// NewMock creates a new mock seeded with initial, which may be nil.
func NewMock(initial State) *MockStore {
	return &MockStore{saved: initial.Clone()}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls = 0
	m.SaveCalls = nil
	m.CloseCalls = 0
}

func (m *MockStore) Load(ctx context.Context) (State, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.LoadCalls++
	if m.LoadFunc != nil {
		return m.LoadFunc()
	}
	return m.saved.Clone(), nil
}

func (m *MockStore) Save(ctx context.Context, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls = append(m.SaveCalls, s.Clone())
	if m.SaveFunc != nil {
		if err := m.SaveFunc(s); err != nil {
			return err
		}
	}
	m.saved = s.Clone()
	return nil
}

func (m *MockStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CloseCalls++
	return nil
}

// Saved returns a copy of the last successfully saved state.
func (m *MockStore) Saved() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saved.Clone()
}

// SaveCount returns the number of Save calls.
func (m *MockStore) SaveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.SaveCalls)
}
