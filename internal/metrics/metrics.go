// Package metrics holds the Prometheus collectors for the serving path.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "adserver"

// Render failure reasons.
const (
	ReasonZoneNotFound = "zone_not_found"
	ReasonNoAds        = "no_ads"
	ReasonError        = "error"
)

type Metrics struct {
	Impressions       *prometheus.CounterVec
	Clicks            prometheus.Counter
	RenderFailures    *prometheus.CounterVec
	SelectionDuration prometheus.Histogram
}

// New creates the collectors and registers them on reg. A nil reg leaves them
// unregistered, which tests use to avoid global state.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Impressions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "impressions_total",
			Help:      "Ads rendered, by zone",
		}, []string{"zone_id"}),
		Clicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "clicks_total",
			Help:      "Click redirects served",
		}),
		RenderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "render_failures_total",
			Help:      "Render requests that produced no ad",
		}, []string{"reason"}),
		SelectionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "selection_duration_seconds",
			Help:      "Time spent aggregating counts and drawing an ad",
			Buckets:   []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Impressions, m.Clicks, m.RenderFailures, m.SelectionDuration)
	}
	return m
}

func (m *Metrics) RecordImpression(zoneID int64) {
	m.Impressions.WithLabelValues(strconv.FormatInt(zoneID, 10)).Inc()
}

func (m *Metrics) RecordClick() {
	m.Clicks.Inc()
}

func (m *Metrics) RecordRenderFailure(reason string) {
	m.RenderFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveSelection(start time.Time) {
	m.SelectionDuration.Observe(time.Since(start).Seconds())
}
