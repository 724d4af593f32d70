package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/mauv0809/courtkeeper/internal/fixtures"
	"github.com/mauv0809/courtkeeper/internal/league"
	"github.com/mauv0809/courtkeeper/internal/pubsub"
)

func (s *Server) HealthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Debug("Received health check request")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK!")
	}
}

func (s *Server) ClearStoreHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matchID := r.URL.Query().Get("matchID")
		if matchID != "" {
			log.Info("Received request to clear a specific match", "matchID", matchID)
			s.Store.ClearMatch(matchID)
			w.WriteHeader(http.StatusOK)
			fmt.Fprintf(w, "Cleared match %s from store!", matchID)
			return
		}
		log.Info("Received request to clear entire store")
		s.Store.Clear()
		w.WriteHeader(http.StatusOK)
		fmt.Fprint(w, "Store cleared!")
	}
}

func (s *Server) PlayerLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		players, err := s.Store.PlayerLeaderboard()
		if err != nil {
			log.Error("Failed to load player leaderboard", "error", err)
			http.Error(w, "Failed to load leaderboard", http.StatusInternalServerError)
			return
		}
		writeJSON(w, players)
	}
}

func (s *Server) TeamLeaderboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		teams, err := s.Store.TeamLeaderboard()
		if err != nil {
			log.Error("Failed to load team leaderboard", "error", err)
			http.Error(w, "Failed to load leaderboard", http.StatusInternalServerError)
			return
		}
		writeJSON(w, teams)
	}
}

func (s *Server) PlayerStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.URL.Query().Get("name")
		if name == "" {
			http.Error(w, "Missing 'name' query parameter", http.StatusBadRequest)
			return
		}
		player, err := s.Store.FindPlayerByName(name)
		if err != nil {
			if errors.Is(err, league.ErrPlayerNotFound) {
				http.Error(w, err.Error(), http.StatusNotFound)
				return
			}
			log.Error("Failed to find player", "name", name, "error", err)
			http.Error(w, "Failed to find player", http.StatusInternalServerError)
			return
		}
		writeJSON(w, player)
	}
}

func (s *Server) ListMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		matches, err := s.Store.AllMatches()
		if err != nil {
			log.Error("Failed to load matches", "error", err)
			http.Error(w, "Failed to load matches", http.StatusInternalServerError)
			return
		}
		writeJSON(w, matches)
	}
}

// ScheduleHandler generates a full round-robin fixture list for the current
// league members (singles) or registered teams (teams mode) and saves it.
func (s *Server) ScheduleHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		isDryRun := isDryRunFromContext(r)

		mode := r.URL.Query().Get("mode")
		if mode == "" {
			mode = "singles"
		}

		courts := s.Cfg.Courts
		if courtsStr := r.URL.Query().Get("courts"); courtsStr != "" {
			parsed, err := strconv.Atoi(courtsStr)
			if err != nil || parsed < 1 {
				http.Error(w, "Invalid 'courts' query parameter", http.StatusBadRequest)
				return
			}
			courts = parsed
		}

		entrants, err := s.entrantsFor(mode)
		if err != nil {
			log.Error("Failed to build entrant list", "mode", mode, "error", err)
			http.Error(w, "Failed to build entrant list", http.StatusInternalServerError)
			return
		}

		existingIDs, err := s.Store.ExistingMatchIDs()
		if err != nil {
			log.Error("Failed to load existing match ids", "error", err)
			http.Error(w, "Failed to load existing matches", http.StatusInternalServerError)
			return
		}

		scheduler := fixtures.NewScheduler(s.Cfg.CompetitionID, courts)
		var rounds []fixtures.Round
		switch mode {
		case "singles":
			rounds, err = scheduler.Singles(entrants, existingIDs)
		case "teams":
			rounds, err = scheduler.Teams(entrants, existingIDs)
		default:
			http.Error(w, fmt.Sprintf("Unknown mode %q; want 'singles' or 'teams'", mode), http.StatusBadRequest)
			return
		}
		if err != nil {
			if errors.Is(err, fixtures.ErrNotEnoughEntrants) {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			log.Error("Failed to generate fixtures", "mode", mode, "error", err)
			http.Error(w, "Failed to generate fixtures", http.StatusInternalServerError)
			return
		}

		s.Metrics.IncScheduleRuns()

		var matches []*league.Match
		for _, round := range rounds {
			matches = append(matches, round.Matches...)
		}

		runID := uuid.New().String()
		if !isDryRun {
			if err := s.Store.SaveFixtures(runID, mode, matches); err != nil {
				log.Error("Failed to save fixtures", "error", err)
				http.Error(w, "Failed to save fixtures", http.StatusInternalServerError)
				return
			}
			if err := s.pubsub.SendMessage(pubsub.EventFixturesPublished, rounds); err != nil {
				log.Error("Failed to publish fixtures event", "error", err)
			}
		} else {
			log.Info("[Dry Run] Would have saved fixtures", "runID", runID, "matches", len(matches))
		}

		writeJSON(w, map[string]any{
			"run_id":  runID,
			"mode":    mode,
			"courts":  courts,
			"rounds":  rounds,
			"matches": len(matches),
		})
	}
}

// entrantsFor builds the schedulable units: every registered player for
// singles, every registered doubles team for teams mode.
func (s *Server) entrantsFor(mode string) ([]fixtures.Entrant, error) {
	if mode == "teams" {
		teams, err := s.Store.FetchTeams()
		if err != nil {
			return nil, err
		}
		entrants := make([]fixtures.Entrant, 0, len(teams))
		for _, t := range teams {
			entrants = append(entrants, fixtures.Entrant{ID: t.Key, Label: t.Label, Players: t.Members})
		}
		sortEntrants(entrants)
		return entrants, nil
	}

	players, err := s.Store.FetchPlayers()
	if err != nil {
		return nil, err
	}
	entrants := make([]fixtures.Entrant, 0, len(players))
	for _, p := range players {
		entrants = append(entrants, fixtures.Entrant{
			ID:      p.ID,
			Label:   p.Name,
			Players: []league.PlayerRef{{ID: p.ID, Name: p.Name}},
		})
	}
	sortEntrants(entrants)
	return entrants, nil
}

func (s *Server) ReportResultHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		matchID := r.URL.Query().Get("matchID")
		if matchID == "" {
			http.Error(w, "Missing 'matchID' query parameter", http.StatusBadRequest)
			return
		}
		scoreA, errA := strconv.Atoi(r.URL.Query().Get("scoreA"))
		scoreB, errB := strconv.Atoi(r.URL.Query().Get("scoreB"))
		if errA != nil || errB != nil {
			http.Error(w, "Invalid 'scoreA'/'scoreB' query parameters", http.StatusBadRequest)
			return
		}

		playedAt := time.Now()
		if ts := r.URL.Query().Get("playedAt"); ts != "" {
			parsed, err := time.Parse(time.RFC3339, ts)
			if err != nil {
				http.Error(w, "Invalid 'playedAt'; want RFC3339", http.StatusBadRequest)
				return
			}
			playedAt = parsed
		}

		if err := s.Store.ReportResult(matchID, scoreA, scoreB, playedAt); err != nil {
			log.Error("Failed to report result", "matchID", matchID, "error", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "Result recorded for match %s", matchID)
	}
}

func (s *Server) ProcessMatchesHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		isDryRun := isDryRunFromContext(r)
		report, err := s.Processor.ProcessReported(isDryRun)
		if err != nil {
			log.Error("Failed to process matches", "error", err)
			http.Error(w, "Failed to process matches", http.StatusInternalServerError)
			return
		}
		writeJSON(w, report)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

// sortEntrants pins generation order; map iteration would reshuffle the
// schedule on every run.
func sortEntrants(entrants []fixtures.Entrant) {
	sort.Slice(entrants, func(i, j int) bool { return entrants[i].ID < entrants[j].ID })
}
