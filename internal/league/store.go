package league

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrPlayerNotFound is returned when a name lookup matches no league member.
var ErrPlayerNotFound = errors.New("player not found")

// store handles all database operations for the league.
type store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new LeagueStore.
func New(db *sql.DB) LeagueStore {
	return &store{db: db}
}

const perfColumns = `wins, losses, games_played, win_percentage, result_log,
	streak_type, streak_count, highest_win_streak, highest_loss_streak,
	win_streak3, win_streak5, win_streak7, demon_wins,
	total_points, total_point_diff, pd_log, avg_point_diff,
	rating, prev_delta, last_active`

const perfPlaceholders = "?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?"

func perfArgs(p *Performance) ([]any, error) {
	resultLog, err := json.Marshal(p.ResultLog)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result log: %w", err)
	}
	pdLog, err := json.Marshal(p.PointDifferenceLog)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal point difference log: %w", err)
	}
	return []any{
		p.Wins, p.Losses, p.GamesPlayed, p.WinPercentage, string(resultLog),
		string(p.CurrentStreak.Type), p.CurrentStreak.Count, p.HighestWinStreak, p.HighestLossStreak,
		p.WinStreak3, p.WinStreak5, p.WinStreak7, p.DemonWins,
		p.TotalPoints, p.TotalPointDifference, string(pdLog), p.AveragePointDifference,
		p.Rating, p.PrevMatchRatingDelta, p.LastActive.Unix(),
	}, nil
}

// scanPerf fills a Performance from the perfColumns portion of a row. The two
// JSON logs tolerate legacy NULLs.
func scanPerf(p *Performance, resultLog, pdLog sql.NullString, streakType string, lastActive int64) {
	p.CurrentStreak.Type = StreakType(streakType)
	if resultLog.Valid && resultLog.String != "" {
		if err := json.Unmarshal([]byte(resultLog.String), &p.ResultLog); err != nil {
			log.Error("Failed to unmarshal result log", "error", err)
		}
	}
	if pdLog.Valid && pdLog.String != "" {
		if err := json.Unmarshal([]byte(pdLog.String), &p.PointDifferenceLog); err != nil {
			log.Error("Failed to unmarshal point difference log", "error", err)
		}
	}
	if lastActive > 0 {
		p.LastActive = time.Unix(lastActive, 0).UTC()
	}
}

// UpsertPlayers registers league members, keeping existing aggregates intact
// on conflict and only refreshing the display name.
func (s *store) UpsertPlayers(players []PlayerSeed) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO players (id, name, rating)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare player upsert: %w", err)
	}
	defer stmt.Close()

	for _, p := range players {
		if _, err := stmt.Exec(p.ID, p.Name, p.Rating); err != nil {
			return fmt.Errorf("failed to upsert player %s: %w", p.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit player upsert: %w", err)
	}
	log.Info("Upserted players", "count", len(players))
	return nil
}

func (s *store) FetchPlayers() (map[string]*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, ` + perfColumns + ` FROM players`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	players := make(map[string]*Player)
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			log.Error("Failed to scan player row", "error", err)
			continue
		}
		players[p.ID] = p
	}
	return players, rows.Err()
}

func scanPlayer(rows *sql.Rows) (*Player, error) {
	var p Player
	var name, streakType string
	var resultLog, pdLog sql.NullString
	var lastActive int64
	err := rows.Scan(
		&p.ID, &name,
		&p.Wins, &p.Losses, &p.GamesPlayed, &p.WinPercentage, &resultLog,
		&streakType, &p.CurrentStreak.Count, &p.HighestWinStreak, &p.HighestLossStreak,
		&p.WinStreak3, &p.WinStreak5, &p.WinStreak7, &p.DemonWins,
		&p.TotalPoints, &p.TotalPointDifference, &pdLog, &p.AveragePointDifference,
		&p.Rating, &p.PrevMatchRatingDelta, &lastActive,
	)
	if err != nil {
		return nil, err
	}
	p.Name = name
	scanPerf(&p.Performance, resultLog, pdLog, streakType, lastActive)
	return &p, nil
}

func (s *store) FetchTeams() (map[string]*Team, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT key, label, members_json, losses_to, rival_key, rival_label, ` + perfColumns + ` FROM teams`)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	teams := make(map[string]*Team)
	for rows.Next() {
		t, err := scanTeam(rows)
		if err != nil {
			log.Error("Failed to scan team row", "error", err)
			continue
		}
		teams[t.Key] = t
	}
	return teams, rows.Err()
}

func scanTeam(rows *sql.Rows) (*Team, error) {
	var t Team
	var streakType string
	var membersJSON, lossesTo, resultLog, pdLog, rivalKey, rivalLabel sql.NullString
	var lastActive int64
	err := rows.Scan(
		&t.Key, &t.Label, &membersJSON, &lossesTo, &rivalKey, &rivalLabel,
		&t.Wins, &t.Losses, &t.GamesPlayed, &t.WinPercentage, &resultLog,
		&streakType, &t.CurrentStreak.Count, &t.HighestWinStreak, &t.HighestLossStreak,
		&t.WinStreak3, &t.WinStreak5, &t.WinStreak7, &t.DemonWins,
		&t.TotalPoints, &t.TotalPointDifference, &pdLog, &t.AveragePointDifference,
		&t.Rating, &t.PrevMatchRatingDelta, &lastActive,
	)
	if err != nil {
		return nil, err
	}
	scanPerf(&t.Performance, resultLog, pdLog, streakType, lastActive)
	if membersJSON.Valid && membersJSON.String != "" {
		if err := json.Unmarshal([]byte(membersJSON.String), &t.Members); err != nil {
			log.Error("Failed to unmarshal team members", "error", err, "teamKey", t.Key)
		}
	}
	t.LossesTo = make(map[string]int)
	if lossesTo.Valid && lossesTo.String != "" {
		if err := json.Unmarshal([]byte(lossesTo.String), &t.LossesTo); err != nil {
			log.Error("Failed to unmarshal losses_to", "error", err, "teamKey", t.Key)
		}
	}
	if rivalKey.Valid && rivalKey.String != "" {
		t.Rival = &Rival{Key: rivalKey.String, Label: rivalLabel.String}
	}
	return &t, nil
}

// PersistSnapshot writes back the updated player and team aggregates in one
// transaction.
func (s *store) PersistSnapshot(players map[string]*Player, teams map[string]*Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin snapshot transaction: %w", err)
	}
	defer tx.Rollback()

	playerStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO players (id, name, ` + perfColumns + `)
		VALUES (?, ?, ` + perfPlaceholders + `)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare player snapshot: %w", err)
	}
	defer playerStmt.Close()

	for _, p := range players {
		args, err := perfArgs(&p.Performance)
		if err != nil {
			return err
		}
		if _, err := playerStmt.Exec(append([]any{p.ID, p.Name}, args...)...); err != nil {
			return fmt.Errorf("failed to persist player %s: %w", p.ID, err)
		}
	}

	teamStmt, err := tx.Prepare(`
		INSERT OR REPLACE INTO teams (key, label, members_json, losses_to, rival_key, rival_label, ` + perfColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ` + perfPlaceholders + `)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare team snapshot: %w", err)
	}
	defer teamStmt.Close()

	for _, t := range teams {
		args, err := perfArgs(&t.Performance)
		if err != nil {
			return err
		}
		membersJSON, err := json.Marshal(t.Members)
		if err != nil {
			return fmt.Errorf("failed to marshal members for team %s: %w", t.Key, err)
		}
		lossesTo, err := json.Marshal(t.LossesTo)
		if err != nil {
			return fmt.Errorf("failed to marshal losses_to for team %s: %w", t.Key, err)
		}
		var rivalKey, rivalLabel string
		if t.Rival != nil {
			rivalKey, rivalLabel = t.Rival.Key, t.Rival.Label
		}
		head := []any{t.Key, t.Label, string(membersJSON), string(lossesTo), rivalKey, rivalLabel}
		if _, err := teamStmt.Exec(append(head, args...)...); err != nil {
			return fmt.Errorf("failed to persist team %s: %w", t.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}
	log.Debug("Persisted snapshot", "players", len(players), "teams", len(teams))
	return nil
}

// SaveFixtures stores a scheduling run's matches.
func (s *store) SaveFixtures(runID, mode string, matches []*Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin fixtures transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO matches (id, competition_id, round, court, side_a_json, side_b_json, score_a, score_b, status, fixture_run_id, played_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, 0, 0, ?, ?, 0, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare fixture insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range matches {
		sideA, err := json.Marshal(m.SideA.Players)
		if err != nil {
			return fmt.Errorf("failed to marshal side A for match %s: %w", m.ID, err)
		}
		sideB, err := json.Marshal(m.SideB.Players)
		if err != nil {
			return fmt.Errorf("failed to marshal side B for match %s: %w", m.ID, err)
		}
		_, err = stmt.Exec(m.ID, m.CompetitionID, m.Round, m.Court, string(sideA), string(sideB),
			string(StatusScheduled), runID, m.CreatedAt.Unix())
		if err != nil {
			return fmt.Errorf("failed to insert fixture %s: %w", m.ID, err)
		}
	}

	count := len(matches)
	rounds := 0
	for _, m := range matches {
		if m.Round > rounds {
			rounds = m.Round
		}
	}
	_, err = tx.Exec(`
		INSERT INTO fixture_runs (id, mode, rounds, matches, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, runID, mode, rounds, count, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("failed to record fixture run: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit fixtures: %w", err)
	}
	log.Info("Saved fixtures", "runID", runID, "mode", mode, "matches", count, "rounds", rounds)
	return nil
}

func (s *store) ExistingMatchIDs() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query("SELECT id FROM matches")
	if err != nil {
		return nil, fmt.Errorf("failed to query match ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ReportResult records the final scoreline for a scheduled match. Scores are
// assumed valid for the sport by the time they get here.
func (s *store) ReportResult(matchID string, scoreA, scoreB int, playedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`
		UPDATE matches SET score_a = ?, score_b = ?, status = ?, played_at = ?
		WHERE id = ? AND status != ?
	`, scoreA, scoreB, string(StatusReported), playedAt.Unix(), matchID, string(StatusProcessed))
	if err != nil {
		return fmt.Errorf("failed to report result for %s: %w", matchID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("match %s not found or already processed", matchID)
	}
	log.Info("Recorded match result", "matchID", matchID, "scoreA", scoreA, "scoreB", scoreB)
	return nil
}

// ReportedMatches returns matches awaiting processing, oldest first. Streaks
// and ratings are path-dependent, so the order here is the order the engine
// will apply them in.
func (s *store) ReportedMatches() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches(`WHERE status = ? ORDER BY played_at ASC, id ASC`, string(StatusReported))
}

func (s *store) AllMatches() ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMatches(`ORDER BY created_at DESC`)
}

func (s *store) queryMatches(clause string, args ...any) ([]*Match, error) {
	rows, err := s.db.Query(`
		SELECT id, competition_id, round, court, side_a_json, side_b_json, score_a, score_b, status, fixture_run_id, played_at, created_at
		FROM matches `+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func scanMatch(rows *sql.Rows) (*Match, error) {
	var m Match
	var sideA, sideB, fixtureRunID sql.NullString
	var status string
	var playedAt, createdAt int64
	err := rows.Scan(&m.ID, &m.CompetitionID, &m.Round, &m.Court, &sideA, &sideB,
		&m.SideA.Score, &m.SideB.Score, &status, &fixtureRunID, &playedAt, &createdAt)
	if err != nil {
		return nil, err
	}
	m.Status = MatchStatus(status)
	m.FixtureRunID = fixtureRunID.String
	if playedAt > 0 {
		m.PlayedAt = time.Unix(playedAt, 0).UTC()
	}
	if createdAt > 0 {
		m.CreatedAt = time.Unix(createdAt, 0).UTC()
	}
	if sideA.Valid && sideA.String != "" {
		if err := json.Unmarshal([]byte(sideA.String), &m.SideA.Players); err != nil {
			log.Error("Failed to unmarshal side A", "error", err, "matchID", m.ID)
		}
	}
	if sideB.Valid && sideB.String != "" {
		if err := json.Unmarshal([]byte(sideB.String), &m.SideB.Players); err != nil {
			log.Error("Failed to unmarshal side B", "error", err, "matchID", m.ID)
		}
	}
	return &m, nil
}

func (s *store) MarkProcessed(matchID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec("UPDATE matches SET status = ? WHERE id = ?", string(StatusProcessed), matchID)
	if err != nil {
		return fmt.Errorf("failed to mark match %s processed: %w", matchID, err)
	}
	return nil
}

func (s *store) PlayerLeaderboard() ([]*Player, error) {
	players, err := s.FetchPlayers()
	if err != nil {
		return nil, err
	}
	ranked := make([]*Player, 0, len(players))
	for _, p := range players {
		ranked = append(ranked, p)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].Wins > ranked[j].Wins
	})
	return ranked, nil
}

func (s *store) TeamLeaderboard() ([]*Team, error) {
	teams, err := s.FetchTeams()
	if err != nil {
		return nil, err
	}
	ranked := make([]*Team, 0, len(teams))
	for _, t := range teams {
		ranked = append(ranked, t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Rating != ranked[j].Rating {
			return ranked[i].Rating > ranked[j].Rating
		}
		return ranked[i].Wins > ranked[j].Wins
	})
	return ranked, nil
}

// FindPlayerByName does a fuzzy, case-insensitive lookup ("morten" matches
// "Morten Voss") and returns the closest match.
func (s *store) FindPlayerByName(name string) (*Player, error) {
	players, err := s.FetchPlayers()
	if err != nil {
		return nil, err
	}

	byName := make(map[string]*Player, len(players))
	names := make([]string, 0, len(players))
	for _, p := range players {
		byName[p.Name] = p
		names = append(names, p.Name)
	}

	ranks := fuzzy.RankFindNormalizedFold(name, names)
	if len(ranks) == 0 {
		log.Info("No player matched name", "name", name)
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}
	sort.Sort(ranks)
	best := byName[ranks[0].Target]
	log.Debug("Found player by name", "query", name, "player", best.Name)
	return best, nil
}

func (s *store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		log.Error("Failed to begin transaction for clearing store", "error", err)
		return
	}
	for _, table := range []string{"matches", "fixture_runs", "teams", "players"} {
		if _, err := tx.Exec("DELETE FROM " + table); err != nil {
			log.Error("Failed to clear table", "table", table, "error", err)
			tx.Rollback()
			return
		}
	}
	if err := tx.Commit(); err != nil {
		log.Error("Failed to commit transaction for clearing store", "error", err)
	}
}

func (s *store) ClearMatch(matchID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.db.Exec("DELETE FROM matches WHERE id = ?", matchID); err != nil {
		log.Error("Failed to clear match", "error", err, "matchID", matchID)
	}
}
