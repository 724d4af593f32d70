package processor

import (
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mauv0809/courtkeeper/internal/league"
	"github.com/mauv0809/courtkeeper/internal/metrics"
	"github.com/mauv0809/courtkeeper/internal/pubsub"
	"github.com/mauv0809/courtkeeper/internal/rating"
	"github.com/mauv0809/courtkeeper/internal/team"
)

// New creates a new Processor.
func New(store Store, metrics metrics.Metrics, pubsub pubsub.PubSubClient, players *rating.Engine, teams *team.Engine) *Processor {
	return &Processor{
		store:   store,
		pubsub:  pubsub,
		metrics: metrics,
		players: players,
		teams:   teams,
	}
}

// Apply runs one reported match through the rating engines against the given
// snapshot and returns the updated snapshot. Participants missing from the
// snapshot are skipped with a warning rather than failing the match; a match
// with no derivable result is an error.
func (p *Processor) Apply(match *league.Match, snap Snapshot) (Snapshot, []string, error) {
	result, ok := match.Result()
	if !ok {
		return snap, nil, fmt.Errorf("match %s has no derivable result", match.ID)
	}

	next := snap.Clone()
	var warnings []string

	combinedWinner := p.combinedRating(next, result.Winner.Players)
	combinedLoser := p.combinedRating(next, result.Loser.Players)

	outcome := rating.Outcome{
		WinnerScore:          result.Winner.Score,
		LoserScore:           result.Loser.Score,
		CombinedWinnerRating: combinedWinner,
		CombinedLoserRating:  combinedLoser,
	}

	warnings = append(warnings, p.updateSide(next, result.Winner.Players, outcome, true, match)...)
	warnings = append(warnings, p.updateSide(next, result.Loser.Players, outcome, false, match)...)

	if match.Doubles() {
		p.teams.Apply(next.Teams, result.Winner.Players, result.Loser.Players,
			result.Winner.Score, result.Loser.Score, match.PlayedAt)
	}

	return next, warnings, nil
}

func (p *Processor) updateSide(snap Snapshot, roster []league.PlayerRef, base rating.Outcome, isWinner bool, match *league.Match) []string {
	var warnings []string
	for _, ref := range roster {
		player, ok := snap.Players[ref.ID]
		if !ok {
			msg := fmt.Sprintf("match %s references unknown player %s (%s); skipping their update", match.ID, ref.ID, ref.Name)
			log.Warn("Skipping unknown player", "matchID", match.ID, "playerID", ref.ID, "name", ref.Name)
			warnings = append(warnings, msg)
			continue
		}
		outcome := base
		outcome.IsWinner = isWinner
		player.Performance = p.players.Update(player.Performance, outcome, match.PlayedAt)
		p.metrics.IncRatingUpdates()
	}
	return warnings
}

// combinedRating sums a side's current ratings. Players missing from the
// snapshot contribute nothing; the engine neutralizes a zero winner sum.
func (p *Processor) combinedRating(snap Snapshot, roster []league.PlayerRef) float64 {
	sum := 0.0
	for _, ref := range roster {
		if player, ok := snap.Players[ref.ID]; ok {
			sum += player.Rating
		}
	}
	return sum
}

// ApplyBatch processes matches strictly in chronological order, threading each
// match's updated snapshot into the next. Streaks, ratings and rivalries are
// path-dependent, so the order is not negotiable.
func (p *Processor) ApplyBatch(matches []*league.Match, snap Snapshot) (Snapshot, BatchReport) {
	ordered := append([]*league.Match(nil), matches...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PlayedAt.Before(ordered[j].PlayedAt)
	})

	var report BatchReport
	for _, match := range ordered {
		start := time.Now()
		next, warnings, err := p.Apply(match, snap)
		p.metrics.ObserveProcessingDuration(time.Since(start).Seconds())
		report.Warnings = append(report.Warnings, warnings...)
		if err != nil {
			log.Error("Failed to apply match", "matchID", match.ID, "error", err)
			report.Failed++
			report.FailedIDs = append(report.FailedIDs, match.ID)
			p.metrics.IncBatchFailures()
			continue
		}
		snap = next
		report.Processed++
		report.ProcessedIDs = append(report.ProcessedIDs, match.ID)
		p.metrics.IncMatchesProcessed()
	}
	return snap, report
}

// ProcessReported fetches all reported matches, applies them against fresh
// snapshots and persists the outcome. With dryRun set, nothing is written or
// published.
func (p *Processor) ProcessReported(dryRun bool) (BatchReport, error) {
	log.Info("Starting match processing...")
	matches, err := p.store.ReportedMatches()
	if err != nil {
		return BatchReport{}, fmt.Errorf("failed to get reported matches: %w", err)
	}
	if len(matches) == 0 {
		log.Info("No matches to process.")
		return BatchReport{}, nil
	}
	log.Info("Found matches to process", "count", len(matches))

	players, err := p.store.FetchPlayers()
	if err != nil {
		return BatchReport{}, fmt.Errorf("failed to fetch players: %w", err)
	}
	teams, err := p.store.FetchTeams()
	if err != nil {
		return BatchReport{}, fmt.Errorf("failed to fetch teams: %w", err)
	}

	snap, report := p.ApplyBatch(matches, Snapshot{Players: players, Teams: teams})

	if dryRun {
		log.Info("[Dry Run] Would persist snapshot and mark matches processed",
			"processed", report.Processed, "failed", report.Failed)
		return report, nil
	}

	if err := p.store.PersistSnapshot(snap.Players, snap.Teams); err != nil {
		return report, fmt.Errorf("failed to persist snapshot: %w", err)
	}
	for _, id := range report.ProcessedIDs {
		if err := p.store.MarkProcessed(id); err != nil {
			log.Error("Failed to mark match processed", "matchID", id, "error", err)
		}
	}
	if err := p.pubsub.SendMessage(pubsub.EventStatsUpdated, report); err != nil {
		log.Error("Failed to publish stats-updated event", "error", err)
	}

	log.Info("Match processing finished.", "processed", report.Processed, "failed", report.Failed)
	return report, nil
}
