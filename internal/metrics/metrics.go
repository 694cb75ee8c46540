package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Set bundles the oracle's counters. A nil *Set is a no-op, so callers can
// run without metrics wired.
type Set struct {
	priceRequests   prometheus.Counter
	revertedCalls   prometheus.Counter
	unpricedResults prometheus.Counter
	feedRecords     prometheus.Counter
	tvlRecomputes   prometheus.Counter
}

// NewSet registers the oracle counters with the given registerer.
func NewSet(reg prometheus.Registerer) *Set {
	factory := promauto.With(reg)
	return &Set{
		priceRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "oracle_price_requests_total",
			Help: "Coin price resolutions attempted.",
		}),
		revertedCalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "oracle_reverted_calls_total",
			Help: "Contract queries that reverted or failed.",
		}),
		unpricedResults: factory.NewCounter(prometheus.CounterOpts{
			Name: "oracle_unpriced_results_total",
			Help: "Price resolutions that degraded to zero.",
		}),
		feedRecords: factory.NewCounter(prometheus.CounterOpts{
			Name: "oracle_price_feed_records_total",
			Help: "Price feed records appended.",
		}),
		tvlRecomputes: factory.NewCounter(prometheus.CounterOpts{
			Name: "oracle_tvl_recomputations_total",
			Help: "Aggregate TVL recomputations performed.",
		}),
	}
}

func (s *Set) IncPriceRequests() {
	if s != nil {
		s.priceRequests.Inc()
	}
}

func (s *Set) IncRevertedCalls() {
	if s != nil {
		s.revertedCalls.Inc()
	}
}

func (s *Set) IncUnpricedResults() {
	if s != nil {
		s.unpricedResults.Inc()
	}
}

func (s *Set) IncFeedRecords() {
	if s != nil {
		s.feedRecords.Inc()
	}
}

func (s *Set) IncTvlRecomputes() {
	if s != nil {
		s.tvlRecomputes.Inc()
	}
}

// Serve exposes /metrics on the given address.
func Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return server.ListenAndServe()
}
