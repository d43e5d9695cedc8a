package riot

import (
	"context"
	"sync"
)

var _ Gateway = (*MockClient)(nil)

// MockClient is a mock implementation of the Gateway interface for testing.
// It is safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Spies for method calls
	ResolveIdentityFunc   func(riotID string) (string, error)
	GetRankStandingFunc   func(puuid string) (*RankSnapshot, error)
	GetRecentMatchIDsFunc func(puuid string, count int) ([]string, error)
	GetMatchDetailsFunc   func(matchID string) (*Match, error)

	// Call records
	ResolveIdentityCalls   []string
	GetRankStandingCalls   []string
	GetRecentMatchIDsCalls []string
	GetMatchDetailsCalls   []string
}

// NewMockClient creates a new mock instance.
func NewMockClient() *MockClient {
	return &MockClient{}
}

// Reset clears all call records.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResolveIdentityCalls = nil
	m.GetRankStandingCalls = nil
	m.GetRecentMatchIDsCalls = nil
	m.GetMatchDetailsCalls = nil
}

func (m *MockClient) ResolveIdentity(ctx context.Context, riotID string) (string, error) {
	m.mu.Lock()
	m.ResolveIdentityCalls = append(m.ResolveIdentityCalls, riotID)
	fn := m.ResolveIdentityFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(riotID)
	}
	return "", ErrNotFound
}

func (m *MockClient) GetRankStanding(ctx context.Context, puuid string) (*RankSnapshot, error) {
	m.mu.Lock()
	m.GetRankStandingCalls = append(m.GetRankStandingCalls, puuid)
	fn := m.GetRankStandingFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(puuid)
	}
	return nil, nil
}

func (m *MockClient) GetRecentMatchIDs(ctx context.Context, puuid string, count int) ([]string, error) {
	m.mu.Lock()
	m.GetRecentMatchIDsCalls = append(m.GetRecentMatchIDsCalls, puuid)
	fn := m.GetRecentMatchIDsFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(puuid, count)
	}
	return []string{}, nil
}

func (m *MockClient) GetMatchDetails(ctx context.Context, matchID string) (*Match, error) {
	m.mu.Lock()
	m.GetMatchDetailsCalls = append(m.GetMatchDetailsCalls, matchID)
	fn := m.GetMatchDetailsFunc
	m.mu.Unlock()
	if fn != nil {
		return fn(matchID)
	}
	return nil, ErrNotFound
}

// CallCount returns how many times the named method was called.
func (m *MockClient) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch method {
	case "ResolveIdentity":
		return len(m.ResolveIdentityCalls)
	case "GetRankStanding":
		return len(m.GetRankStandingCalls)
	case "GetRecentMatchIDs":
		return len(m.GetRecentMatchIDsCalls)
	case "GetMatchDetails":
		return len(m.GetMatchDetailsCalls)
	}
	return 0
}
