package http

import (
	"net/http"

	"github.com/mauv0809/courtkeeper/internal/config"
	"github.com/mauv0809/courtkeeper/internal/league"
	"github.com/mauv0809/courtkeeper/internal/metrics"
	"github.com/mauv0809/courtkeeper/internal/processor"
	"github.com/mauv0809/courtkeeper/internal/pubsub"
)

type Server struct {
	Store          league.LeagueStore
	Metrics        metrics.Metrics
	MetricsHandler http.Handler
	Cfg            config.Config
	Processor      *processor.Processor
	Router         *http.ServeMux
	pubsub         pubsub.PubSubClient
}
