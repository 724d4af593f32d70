package processor

import (
	"github.com/mauv0809/courtkeeper/internal/league"
	"github.com/mauv0809/courtkeeper/internal/metrics"
	"github.com/mauv0809/courtkeeper/internal/pubsub"
	"github.com/mauv0809/courtkeeper/internal/rating"
	"github.com/mauv0809/courtkeeper/internal/team"
)

// Processor sequences reported matches through the rating engines against
// snapshot collections and hands the updated snapshots back for persistence.
type Processor struct {
	store   Store
	pubsub  pubsub.PubSubClient
	metrics metrics.Metrics
	players *rating.Engine
	teams   *team.Engine
}

// Snapshot is the in-memory working copy of all participant aggregates.
type Snapshot struct {
	Players map[string]*league.Player
	Teams   map[string]*league.Team
}

// Clone deep-copies the snapshot so engine updates never leak into the
// caller's copy.
func (s Snapshot) Clone() Snapshot {
	out := Snapshot{
		Players: make(map[string]*league.Player, len(s.Players)),
		Teams:   make(map[string]*league.Team, len(s.Teams)),
	}
	for id, p := range s.Players {
		cp := *p
		cp.ResultLog = append([]string(nil), p.ResultLog...)
		cp.PointDifferenceLog = append([]int(nil), p.PointDifferenceLog...)
		out.Players[id] = &cp
	}
	for key, t := range s.Teams {
		ct := *t
		ct.Members = append([]league.PlayerRef(nil), t.Members...)
		ct.ResultLog = append([]string(nil), t.ResultLog...)
		ct.PointDifferenceLog = append([]int(nil), t.PointDifferenceLog...)
		ct.LossesTo = make(map[string]int, len(t.LossesTo))
		for k, v := range t.LossesTo {
			ct.LossesTo[k] = v
		}
		if t.Rival != nil {
			rv := *t.Rival
			ct.Rival = &rv
		}
		out.Teams[key] = &ct
	}
	return out
}

// BatchReport summarizes a bulk processing run. A bad match never aborts the
// batch; it is counted and named here instead.
type BatchReport struct {
	Processed    int      `json:"processed"`
	Failed       int      `json:"failed"`
	ProcessedIDs []string `json:"processed_ids,omitempty"`
	FailedIDs    []string `json:"failed_ids,omitempty"`
	Warnings     []string `json:"warnings,omitempty"`
}
