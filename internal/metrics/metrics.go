// Package metrics provides Prometheus counters for pipeline runs. A batch
// process does not live long enough to be scraped, so Push sends the registry
// to a Pushgateway at the end of a run.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const namespace = "newspulse"

// Recorder owns a private registry and the run counters. A nil *Recorder is
// valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	ItemsCollected prometheus.Counter
	ItemsFresh     prometheus.Counter
	ItemsScored    *prometheus.CounterVec
	OracleFailures *prometheus.CounterVec
	Messages       *prometheus.CounterVec
	RunsTotal      *prometheus.CounterVec
}

// New registers every collector on a fresh registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		ItemsCollected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_collected_total",
			Help:      "Candidate items returned by the feed sources",
		}),
		ItemsFresh: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_fresh_total",
			Help:      "Candidate items not seen within the retention window",
		}),
		ItemsScored: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "items_scored_total",
			Help:      "Items scored, by origin and tier",
		}, []string{"origin", "tier"}),
		OracleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oracle_failures_total",
			Help:      "Oracle calls that fell back, by stage",
		}, []string{"stage"}),
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_total",
			Help:      "Notification messages, by kind and status",
		}, []string{"kind", "status"}),
		RunsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Pipeline runs, by mode and status",
		}, []string{"mode", "status"}),
	}
	reg.MustRegister(r.ItemsCollected, r.ItemsFresh, r.ItemsScored, r.OracleFailures, r.Messages, r.RunsTotal)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// Collected adds n collected items.
func (r *Recorder) Collected(n int) {
	if r == nil {
		return
	}
	r.ItemsCollected.Add(float64(n))
}

// Fresh adds n unseen items.
func (r *Recorder) Fresh(n int) {
	if r == nil {
		return
	}
	r.ItemsFresh.Add(float64(n))
}

// Scored records one scored item.
func (r *Recorder) Scored(origin, tier string) {
	if r == nil {
		return
	}
	r.ItemsScored.WithLabelValues(origin, tier).Inc()
}

// OracleFailure records a fallback at stage (call, parse, summary, translate).
func (r *Recorder) OracleFailure(stage string) {
	if r == nil {
		return
	}
	r.OracleFailures.WithLabelValues(stage).Inc()
}

// Message records one notification attempt.
func (r *Recorder) Message(kind string, ok bool) {
	if r == nil {
		return
	}
	r.Messages.WithLabelValues(kind, status(ok)).Inc()
}

// Run records one pipeline run.
func (r *Recorder) Run(mode string, ok bool) {
	if r == nil {
		return
	}
	r.RunsTotal.WithLabelValues(mode, status(ok)).Inc()
}

// Push sends the registry to a Pushgateway. An empty url is a no-op.
func (r *Recorder) Push(url, job string) error {
	if r == nil || url == "" {
		return nil
	}
	if job == "" {
		job = namespace
	}
	if err := push.New(url, job).Gatherer(r.registry).Push(); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}

func status(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
