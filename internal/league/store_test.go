package league_test

import (
	"database/sql"
	"testing"
	"time"

	"github.com/mauv0809/courtkeeper/internal/database"
	"github.com/mauv0809/courtkeeper/internal/league"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var playedAt = time.Date(2025, 6, 1, 18, 0, 0, 0, time.UTC)

// setupTestDB creates a temporary in-memory SQLite database for testing.
func setupTestDB(t *testing.T) (league.LeagueStore, *sql.DB, func()) {
	t.Helper()

	db, dbTeardown, err := database.InitDB(":memory:", "", "", "../../migrations")
	require.NoError(t, err)

	store := league.New(db)
	teardown := func() {
		dbTeardown()
	}

	return store, db, teardown
}

func seedPlayers(t *testing.T, store league.LeagueStore) {
	t.Helper()
	err := store.UpsertPlayers([]league.PlayerSeed{
		{ID: "p1", Name: "Anna", Rating: 50},
		{ID: "p2", Name: "Bo", Rating: 50},
	})
	require.NoError(t, err)
}

func scheduledMatch(id string) *league.Match {
	return &league.Match{
		ID:            id,
		CompetitionID: "summer",
		Round:         1,
		Court:         1,
		SideA:         league.Side{Players: []league.PlayerRef{{ID: "p1", Name: "Anna"}}},
		SideB:         league.Side{Players: []league.PlayerRef{{ID: "p2", Name: "Bo"}}},
		Status:        league.StatusScheduled,
		CreatedAt:     playedAt.Add(-24 * time.Hour),
	}
}

func TestUpsertPlayers(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	seedPlayers(t, store)

	players, err := store.FetchPlayers()
	require.NoError(t, err)
	require.Len(t, players, 2)
	assert.Equal(t, "Anna", players["p1"].Name)
	assert.Equal(t, 50.0, players["p1"].Rating)

	t.Run("re-upsert keeps aggregates and refreshes the name", func(t *testing.T) {
		players["p1"].Wins = 3
		players["p1"].Rating = 120
		require.NoError(t, store.PersistSnapshot(players, nil))

		err := store.UpsertPlayers([]league.PlayerSeed{{ID: "p1", Name: "Anna B", Rating: 50}})
		require.NoError(t, err)

		refreshed, err := store.FetchPlayers()
		require.NoError(t, err)
		assert.Equal(t, "Anna B", refreshed["p1"].Name)
		assert.Equal(t, 3, refreshed["p1"].Wins)
		assert.Equal(t, 120.0, refreshed["p1"].Rating)
	})
}

func TestPersistSnapshot_RoundTrip(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store)

	players, err := store.FetchPlayers()
	require.NoError(t, err)

	p := players["p1"]
	p.Wins = 4
	p.Losses = 1
	p.GamesPlayed = 5
	p.WinPercentage = 80
	p.ResultLog = []string{"W", "W", "L", "W", "W"}
	p.CurrentStreak = league.Streak{Type: league.StreakWin, Count: 2}
	p.HighestWinStreak = 2
	p.WinStreak3 = 1
	p.DemonWins = 2
	p.TotalPoints = 101
	p.TotalPointDifference = 23
	p.PointDifferenceLog = []int{6, 8, -3, 5, 7}
	p.AveragePointDifference = 4.6
	p.Rating = 145.5
	p.PrevMatchRatingDelta = 30
	p.LastActive = playedAt

	teams := map[string]*league.Team{
		"p1-p2": {
			Key:     "p1-p2",
			Label:   "Anna & Bo",
			Members: []league.PlayerRef{{ID: "p1", Name: "Anna"}, {ID: "p2", Name: "Bo"}},
			Performance: league.Performance{
				Wins:   2,
				Rating: 90,
			},
			LossesTo: map[string]int{"p3-p4": 2},
			Rival:    &league.Rival{Key: "p3-p4", Label: "Carla & Dan"},
		},
	}

	require.NoError(t, store.PersistSnapshot(players, teams))

	gotPlayers, err := store.FetchPlayers()
	require.NoError(t, err)
	got := gotPlayers["p1"]
	assert.Equal(t, 4, got.Wins)
	assert.Equal(t, []string{"W", "W", "L", "W", "W"}, got.ResultLog)
	assert.Equal(t, league.Streak{Type: league.StreakWin, Count: 2}, got.CurrentStreak)
	assert.Equal(t, []int{6, 8, -3, 5, 7}, got.PointDifferenceLog)
	assert.Equal(t, 145.5, got.Rating)
	assert.Equal(t, playedAt, got.LastActive)

	gotTeams, err := store.FetchTeams()
	require.NoError(t, err)
	require.Len(t, gotTeams, 1)
	gt := gotTeams["p1-p2"]
	assert.Equal(t, "Anna & Bo", gt.Label)
	require.Len(t, gt.Members, 2)
	assert.Equal(t, map[string]int{"p3-p4": 2}, gt.LossesTo)
	require.NotNil(t, gt.Rival)
	assert.Equal(t, "Carla & Dan", gt.Rival.Label)
}

func TestSaveFixturesAndMatchLifecycle(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store)

	matches := []*league.Match{scheduledMatch("summer-20250601-1"), scheduledMatch("summer-20250601-2")}
	matches[1].Round = 2
	require.NoError(t, store.SaveFixtures("run-1", "singles", matches))

	ids, err := store.ExistingMatchIDs()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"summer-20250601-1", "summer-20250601-2"}, ids)

	all, err := store.AllMatches()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, league.StatusScheduled, all[0].Status)
	assert.Equal(t, "run-1", all[0].FixtureRunID)
	assert.Equal(t, "p1", all[0].SideA.Players[0].ID)

	t.Run("report result moves it to reported", func(t *testing.T) {
		require.NoError(t, store.ReportResult("summer-20250601-1", 21, 15, playedAt))

		reported, err := store.ReportedMatches()
		require.NoError(t, err)
		require.Len(t, reported, 1)
		m := reported[0]
		assert.Equal(t, 21, m.SideA.Score)
		assert.Equal(t, 15, m.SideB.Score)
		assert.Equal(t, league.StatusReported, m.Status)
		assert.Equal(t, playedAt, m.PlayedAt)
	})

	t.Run("corrections are allowed before processing", func(t *testing.T) {
		require.NoError(t, store.ReportResult("summer-20250601-1", 22, 20, playedAt))

		reported, err := store.ReportedMatches()
		require.NoError(t, err)
		require.Len(t, reported, 1)
		assert.Equal(t, 22, reported[0].SideA.Score)
	})

	t.Run("mark processed removes it from the queue", func(t *testing.T) {
		require.NoError(t, store.MarkProcessed("summer-20250601-1"))

		reported, err := store.ReportedMatches()
		require.NoError(t, err)
		assert.Empty(t, reported)
	})

	t.Run("processed matches reject new results", func(t *testing.T) {
		err := store.ReportResult("summer-20250601-1", 21, 10, playedAt)
		assert.Error(t, err)
	})

	t.Run("unknown match id errors", func(t *testing.T) {
		err := store.ReportResult("nope", 21, 10, playedAt)
		assert.Error(t, err)
	})
}

func TestReportedMatches_OrderedByPlayedAt(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store)

	matches := []*league.Match{
		scheduledMatch("summer-20250601-1"),
		scheduledMatch("summer-20250601-2"),
		scheduledMatch("summer-20250601-3"),
	}
	require.NoError(t, store.SaveFixtures("run-1", "singles", matches))

	require.NoError(t, store.ReportResult("summer-20250601-2", 21, 15, playedAt.Add(2*time.Hour)))
	require.NoError(t, store.ReportResult("summer-20250601-3", 21, 15, playedAt))
	require.NoError(t, store.ReportResult("summer-20250601-1", 21, 15, playedAt.Add(time.Hour)))

	reported, err := store.ReportedMatches()
	require.NoError(t, err)
	require.Len(t, reported, 3)
	assert.Equal(t, "summer-20250601-3", reported[0].ID)
	assert.Equal(t, "summer-20250601-1", reported[1].ID)
	assert.Equal(t, "summer-20250601-2", reported[2].ID)
}

func TestLeaderboards(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store)

	players, err := store.FetchPlayers()
	require.NoError(t, err)
	players["p1"].Rating = 80
	players["p2"].Rating = 120
	require.NoError(t, store.PersistSnapshot(players, map[string]*league.Team{
		"p1-p2": {Key: "p1-p2", Label: "Anna & Bo", Performance: league.Performance{Rating: 70}},
		"p3-p4": {Key: "p3-p4", Label: "Carla & Dan", Performance: league.Performance{Rating: 90}},
	}))

	ranked, err := store.PlayerLeaderboard()
	require.NoError(t, err)
	require.Len(t, ranked, 2)
	assert.Equal(t, "p2", ranked[0].ID)

	teams, err := store.TeamLeaderboard()
	require.NoError(t, err)
	require.Len(t, teams, 2)
	assert.Equal(t, "p3-p4", teams[0].Key)

	t.Run("equal ratings rank by wins", func(t *testing.T) {
		players["p1"].Rating = 120
		players["p1"].Wins = 5
		require.NoError(t, store.PersistSnapshot(players, nil))

		ranked, err := store.PlayerLeaderboard()
		require.NoError(t, err)
		assert.Equal(t, "p1", ranked[0].ID)
	})
}

func TestFindPlayerByName(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()

	err := store.UpsertPlayers([]league.PlayerSeed{
		{ID: "p1", Name: "Morten Voss", Rating: 50},
		{ID: "p2", Name: "Annika Berg", Rating: 50},
	})
	require.NoError(t, err)

	t.Run("partial lowercase query", func(t *testing.T) {
		got, err := store.FindPlayerByName("morten")
		require.NoError(t, err)
		assert.Equal(t, "p1", got.ID)
	})

	t.Run("exact match", func(t *testing.T) {
		got, err := store.FindPlayerByName("Annika Berg")
		require.NoError(t, err)
		assert.Equal(t, "p2", got.ID)
	})

	t.Run("no match", func(t *testing.T) {
		_, err := store.FindPlayerByName("zzzz")
		assert.ErrorIs(t, err, league.ErrPlayerNotFound)
	})
}

func TestClear(t *testing.T) {
	store, db, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store)
	require.NoError(t, store.SaveFixtures("run-1", "singles", []*league.Match{scheduledMatch("summer-20250601-1")}))

	store.Clear()

	players, err := store.FetchPlayers()
	require.NoError(t, err)
	assert.Empty(t, players)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM matches").Scan(&count))
	assert.Zero(t, count)
}

func TestClearMatch(t *testing.T) {
	store, _, teardown := setupTestDB(t)
	defer teardown()
	seedPlayers(t, store)
	require.NoError(t, store.SaveFixtures("run-1", "singles", []*league.Match{
		scheduledMatch("summer-20250601-1"),
		scheduledMatch("summer-20250601-2"),
	}))

	store.ClearMatch("summer-20250601-1")

	ids, err := store.ExistingMatchIDs()
	require.NoError(t, err)
	assert.Equal(t, []string{"summer-20250601-2"}, ids)
}
