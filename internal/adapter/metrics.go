package adapter

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmcdole/sift/internal/domain"
	"github.com/mmcdole/sift/internal/query"
)

// PrometheusObserver exports query coordinator telemetry to Prometheus.
type PrometheusObserver struct {
	fetchDuration *promclient.HistogramVec
	fetchFailures *promclient.CounterVec
	cacheLookups  *promclient.CounterVec
	discarded     promclient.Counter
}

// NewPrometheusObserver registers the query metrics with reg. Registering
// twice against the same registry reuses the existing collectors.
func NewPrometheusObserver(namespace string, reg promclient.Registerer) (*PrometheusObserver, error) {
	if namespace == "" {
		namespace = "sift"
	}
	if reg == nil {
		reg = promclient.DefaultRegisterer
	}

	o := &PrometheusObserver{
		fetchDuration: promclient.NewHistogramVec(promclient.HistogramOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "fetch_duration_seconds",
			Help:      "Latency of provider searches that were applied.",
			Buckets:   promclient.DefBuckets,
		}, []string{"outcome"}),
		fetchFailures: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "fetch_failures_total",
			Help:      "Count of failed provider searches by error kind.",
		}, []string{"kind"}),
		cacheLookups: promclient.NewCounterVec(promclient.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "cache_lookups_total",
			Help:      "Count of query cache lookups by result.",
		}, []string{"result"}),
		discarded: promclient.NewCounter(promclient.CounterOpts{
			Namespace: namespace,
			Subsystem: "query",
			Name:      "discarded_responses_total",
			Help:      "Count of provider responses dropped because a newer query superseded them.",
		}),
	}

	var err error
	if o.fetchDuration, err = register(reg, o.fetchDuration); err != nil {
		return nil, fmt.Errorf("register fetch histogram: %w", err)
	}
	if o.fetchFailures, err = register(reg, o.fetchFailures); err != nil {
		return nil, fmt.Errorf("register failure counter: %w", err)
	}
	if o.cacheLookups, err = register(reg, o.cacheLookups); err != nil {
		return nil, fmt.Errorf("register cache counter: %w", err)
	}
	if o.discarded, err = register(reg, o.discarded); err != nil {
		return nil, fmt.Errorf("register discard counter: %w", err)
	}
	return o, nil
}

// register adds c to reg, returning the already registered collector of the
// same type if one exists.
func register[C promclient.Collector](reg promclient.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var are promclient.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordFetch tracks latency and failures of applied provider searches.
func (o *PrometheusObserver) RecordFetch(duration time.Duration, kind domain.ErrorKind) {
	if o == nil {
		return
	}
	outcome := "ok"
	if kind != domain.KindNone {
		outcome = "error"
		o.fetchFailures.WithLabelValues(kind.String()).Inc()
	}
	o.fetchDuration.WithLabelValues(outcome).Observe(duration.Seconds())
}

func (o *PrometheusObserver) RecordCacheHit() {
	if o == nil {
		return
	}
	o.cacheLookups.WithLabelValues("hit").Inc()
}

func (o *PrometheusObserver) RecordCacheMiss() {
	if o == nil {
		return
	}
	o.cacheLookups.WithLabelValues("miss").Inc()
}

func (o *PrometheusObserver) RecordDiscard() {
	if o == nil {
		return
	}
	o.discarded.Inc()
}

// MetricsHandler serves the metrics gathered by g in the Prometheus text format
func MetricsHandler(g promclient.Gatherer) http.Handler {
	if g == nil {
		g = promclient.DefaultGatherer
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

var _ query.Observer = (*PrometheusObserver)(nil)
