package engine

import (
	"github.com/go-kit/kit/metrics"
	"github.com/go-kit/kit/metrics/discard"
	"github.com/go-kit/kit/metrics/prometheus"
	stdprometheus "github.com/prometheus/client_golang/prometheus"
)

const (
	// MetricsSubsystem is a subsystem shared by all metrics exposed by this
	// package.
	MetricsSubsystem = "auction"
)

// Metrics contains metrics exposed by this package.
type Metrics struct {
	// Number of auctions opened.
	AuctionsOpened metrics.Counter
	// Number of bids accepted.
	BidsAccepted metrics.Counter
	// Number of auctions cancelled by their owner.
	AuctionsCancelled metrics.Counter
	// Number of auctions settled by a claim.
	AuctionsClaimed metrics.Counter
	// Number of rejected operations, labeled by operation.
	Rejections metrics.Counter
	// Time spent executing an operation, labeled by operation.
	OperationDuration metrics.Histogram
}

// PrometheusMetrics returns Metrics build using Prometheus client library.
// Optionally, labels can be provided along with their values ("foo",
// "fooValue"). The collectors are registered with the default registry.
func PrometheusMetrics(namespace string, labelsAndValues ...string) *Metrics {
	return PrometheusMetricsWithRegistry(stdprometheus.DefaultRegisterer, namespace, labelsAndValues...)
}

// PrometheusMetricsWithRegistry is PrometheusMetrics registering the
// collectors with reg.
func PrometheusMetricsWithRegistry(reg stdprometheus.Registerer, namespace string, labelsAndValues ...string) *Metrics {
	labels := []string{}
	for i := 0; i < len(labelsAndValues); i += 2 {
		labels = append(labels, labelsAndValues[i])
	}
	opLabels := append(append([]string{}, labels...), "operation")

	counter := func(name, help string, labels []string) metrics.Counter {
		cv := stdprometheus.NewCounterVec(stdprometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: MetricsSubsystem,
			Name:      name,
			Help:      help,
		}, labels)
		reg.MustRegister(cv)
		return prometheus.NewCounter(cv).With(labelsAndValues...)
	}

	duration := stdprometheus.NewHistogramVec(stdprometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: MetricsSubsystem,
		Name:      "operation_duration_seconds",
		Help:      "Time spent executing an operation.",
		Buckets:   stdprometheus.ExponentialBuckets(0.00002, 5, 6),
	}, opLabels)
	reg.MustRegister(duration)

	return &Metrics{
		AuctionsOpened:    counter("auctions_opened", "Number of auctions opened.", labels),
		BidsAccepted:      counter("bids_accepted", "Number of bids accepted.", labels),
		AuctionsCancelled: counter("auctions_cancelled", "Number of auctions cancelled by their owner.", labels),
		AuctionsClaimed:   counter("auctions_claimed", "Number of auctions settled by a claim.", labels),
		Rejections:        counter("rejections", "Number of rejected operations.", opLabels),
		OperationDuration: prometheus.NewHistogram(duration).With(labelsAndValues...),
	}
}

// NopMetrics returns no-op Metrics.
func NopMetrics() *Metrics {
	return &Metrics{
		AuctionsOpened:    discard.NewCounter(),
		BidsAccepted:      discard.NewCounter(),
		AuctionsCancelled: discard.NewCounter(),
		AuctionsClaimed:   discard.NewCounter(),
		Rejections:        discard.NewCounter(),
		OperationDuration: discard.NewHistogram(),
	}
}
