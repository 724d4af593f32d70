package team

import (
	"sort"
	"strings"

	"github.com/mauv0809/courtkeeper/internal/league"
)

// ResolvedBy tags how a team record was located, so callers can tell a fresh
// pairing apart from a legacy name-keyed record.
type ResolvedBy int

const (
	// ResolvedByID means the canonical sorted-id key matched.
	ResolvedByID ResolvedBy = iota
	// ResolvedByName means only the legacy sorted-display-name key matched.
	ResolvedByName
	// ResolvedNone means no existing record was found.
	ResolvedNone
)

// Key builds the canonical identity for a doubles pairing: the member ids
// sorted lexicographically and joined, independent of roster order.
func Key(players []league.PlayerRef) string {
	ids := make([]string, len(players))
	for i, p := range players {
		ids[i] = p.ID
	}
	sort.Strings(ids)
	return strings.Join(ids, "-")
}

// nameKey is the legacy identity used before teams were keyed by player ids:
// the sorted display names joined. Kept only for resolving old records.
func nameKey(names []string) string {
	return strings.Join(names, "-")
}

// Resolve locates the team record for a roster in the supplied collection. It
// tries the id key first, then falls back to the legacy sorted-name key so
// records persisted under the old scheme keep accumulating history.
func Resolve(teams map[string]*league.Team, roster []league.PlayerRef) (*league.Team, ResolvedBy) {
	if t, ok := teams[Key(roster)]; ok {
		return t, ResolvedByID
	}

	legacy := nameKey(league.SortedNames(roster))
	for _, t := range teams {
		if nameKey(league.SortedNames(t.Members)) == legacy {
			return t, ResolvedByName
		}
	}
	return nil, ResolvedNone
}

// NewTeam seeds a zeroed team record for a roster, labelled with the sorted
// display names.
func NewTeam(roster []league.PlayerRef, initialRating float64) *league.Team {
	members := append([]league.PlayerRef(nil), roster...)
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return &league.Team{
		Key:     Key(roster),
		Label:   league.TeamLabel(roster),
		Members: members,
		Performance: league.Performance{
			Rating: initialRating,
		},
		LossesTo: make(map[string]int),
	}
}
