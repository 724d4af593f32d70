package http

import (
	"net/http"

	"github.com/mauv0809/courtkeeper/internal/config"
	"github.com/mauv0809/courtkeeper/internal/league"
	"github.com/mauv0809/courtkeeper/internal/metrics"
	"github.com/mauv0809/courtkeeper/internal/processor"
	"github.com/mauv0809/courtkeeper/internal/pubsub"
)

func NewServer(store league.LeagueStore, metricsSvc metrics.Metrics, metricsHandler http.Handler, cfg config.Config, proc *processor.Processor, pubsub pubsub.PubSubClient) *Server {
	server := &Server{
		Store:          store,
		Metrics:        metricsSvc,
		MetricsHandler: metricsHandler,
		Cfg:            cfg,
		Processor:      proc,
		Router:         http.NewServeMux(),
		pubsub:         pubsub,
	}

	server.routes()
	return server
}

func (s *Server) routes() {
	// All handlers are wrapped with middleware using the Chain helper.
	s.Router.Handle("/metrics", s.MetricsHandler)
	s.Router.Handle("/health", Chain(s.HealthCheckHandler(), paramsMiddleware))
	s.Router.Handle("/clear", Chain(s.ClearStoreHandler(), paramsMiddleware))
	s.Router.Handle("/players", Chain(s.PlayerLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/teams", Chain(s.TeamLeaderboardHandler(), paramsMiddleware))
	s.Router.Handle("/player-stats", Chain(s.PlayerStatsHandler(), paramsMiddleware))
	s.Router.Handle("/matches", Chain(s.ListMatchesHandler(), paramsMiddleware))
	s.Router.Handle("/schedule", Chain(s.ScheduleHandler(), paramsMiddleware))
	s.Router.Handle("/report", Chain(s.ReportResultHandler(), paramsMiddleware))
	s.Router.Handle("/process", Chain(s.ProcessMatchesHandler(), paramsMiddleware))
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.Router.ServeHTTP(w, r)
}
