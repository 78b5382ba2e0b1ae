package aliasserver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// serviceMetrics holds the Prometheus instruments for the alias service.
type serviceMetrics struct {
	// aliasesCreated counts successful alias creations.
	aliasesCreated prometheus.Counter

	// aliasHits counts alias fetches that found a live record.
	aliasHits prometheus.Counter

	// aliasMisses counts alias fetches for unknown or expired records.
	// Every miss turns into a 404, the signal clients recreate from.
	aliasMisses prometheus.Counter
}

func newServiceMetrics(reg prometheus.Registerer) *serviceMetrics {
	factory := promauto.With(reg)

	return &serviceMetrics{
		aliasesCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "alias_server_aliases_created_total",
			Help: "Aliases created through the management endpoint.",
		}),
		aliasHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "alias_server_alias_hits_total",
			Help: "Alias fetches answered from a live record.",
		}),
		aliasMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "alias_server_alias_misses_total",
			Help: "Alias fetches for unknown or expired records.",
		}),
	}
}
