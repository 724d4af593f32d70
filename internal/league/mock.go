package league

import (
	"sync"
	"time"
)

// MockStore is a mock implementation of the LeagueStore interface for testing.
// It is safe for concurrent use.
type MockStore struct {
	mu sync.Mutex

	// Spies for method calls
	UpsertPlayersFunc     func(players []PlayerSeed) error
	FetchPlayersFunc      func() (map[string]*Player, error)
	FetchTeamsFunc        func() (map[string]*Team, error)
	PersistSnapshotFunc   func(players map[string]*Player, teams map[string]*Team) error
	SaveFixturesFunc      func(runID, mode string, matches []*Match) error
	ExistingMatchIDsFunc  func() ([]string, error)
	ReportResultFunc      func(matchID string, scoreA, scoreB int, playedAt time.Time) error
	ReportedMatchesFunc   func() ([]*Match, error)
	MarkProcessedFunc     func(matchID string) error
	AllMatchesFunc        func() ([]*Match, error)
	PlayerLeaderboardFunc func() ([]*Player, error)
	TeamLeaderboardFunc   func() ([]*Team, error)
	FindPlayerByNameFunc  func(name string) (*Player, error)

	// Call records
	UpsertPlayersCalls   [][]PlayerSeed
	PersistSnapshotCalls []struct {
		Players map[string]*Player
		Teams   map[string]*Team
	}
	SaveFixturesCalls []struct {
		RunID   string
		Mode    string
		Matches []*Match
	}
	ReportResultCalls []struct {
		MatchID        string
		ScoreA, ScoreB int
	}
	MarkProcessedCalls []string
	ClearCalls         int
	ClearMatchCalls    []string
}

// NewMock creates a new mock instance.
func NewMock() *MockStore {
	return &MockStore{}
}

// Reset clears all call records.
func (m *MockStore) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = nil
	m.PersistSnapshotCalls = nil
	m.SaveFixturesCalls = nil
	m.ReportResultCalls = nil
	m.MarkProcessedCalls = nil
	m.ClearCalls = 0
	m.ClearMatchCalls = nil
}

func (m *MockStore) UpsertPlayers(players []PlayerSeed) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPlayersCalls = append(m.UpsertPlayersCalls, players)
	if m.UpsertPlayersFunc != nil {
		return m.UpsertPlayersFunc(players)
	}
	return nil
}

func (m *MockStore) FetchPlayers() (map[string]*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchPlayersFunc != nil {
		return m.FetchPlayersFunc()
	}
	return map[string]*Player{}, nil
}

func (m *MockStore) FetchTeams() (map[string]*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FetchTeamsFunc != nil {
		return m.FetchTeamsFunc()
	}
	return map[string]*Team{}, nil
}

func (m *MockStore) PersistSnapshot(players map[string]*Player, teams map[string]*Team) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistSnapshotCalls = append(m.PersistSnapshotCalls, struct {
		Players map[string]*Player
		Teams   map[string]*Team
	}{players, teams})
	if m.PersistSnapshotFunc != nil {
		return m.PersistSnapshotFunc(players, teams)
	}
	return nil
}

func (m *MockStore) SaveFixtures(runID, mode string, matches []*Match) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveFixturesCalls = append(m.SaveFixturesCalls, struct {
		RunID   string
		Mode    string
		Matches []*Match
	}{runID, mode, matches})
	if m.SaveFixturesFunc != nil {
		return m.SaveFixturesFunc(runID, mode, matches)
	}
	return nil
}

func (m *MockStore) ExistingMatchIDs() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ExistingMatchIDsFunc != nil {
		return m.ExistingMatchIDsFunc()
	}
	return nil, nil
}

func (m *MockStore) ReportResult(matchID string, scoreA, scoreB int, playedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ReportResultCalls = append(m.ReportResultCalls, struct {
		MatchID        string
		ScoreA, ScoreB int
	}{matchID, scoreA, scoreB})
	if m.ReportResultFunc != nil {
		return m.ReportResultFunc(matchID, scoreA, scoreB, playedAt)
	}
	return nil
}

func (m *MockStore) ReportedMatches() ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ReportedMatchesFunc != nil {
		return m.ReportedMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) MarkProcessed(matchID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.MarkProcessedCalls = append(m.MarkProcessedCalls, matchID)
	if m.MarkProcessedFunc != nil {
		return m.MarkProcessedFunc(matchID)
	}
	return nil
}

func (m *MockStore) AllMatches() ([]*Match, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.AllMatchesFunc != nil {
		return m.AllMatchesFunc()
	}
	return nil, nil
}

func (m *MockStore) PlayerLeaderboard() ([]*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PlayerLeaderboardFunc != nil {
		return m.PlayerLeaderboardFunc()
	}
	return nil, nil
}

func (m *MockStore) TeamLeaderboard() ([]*Team, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.TeamLeaderboardFunc != nil {
		return m.TeamLeaderboardFunc()
	}
	return nil, nil
}

func (m *MockStore) FindPlayerByName(name string) (*Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FindPlayerByNameFunc != nil {
		return m.FindPlayerByNameFunc(name)
	}
	return nil, ErrPlayerNotFound
}

func (m *MockStore) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearCalls++
}

func (m *MockStore) ClearMatch(matchID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ClearMatchCalls = append(m.ClearMatchCalls, matchID)
}
