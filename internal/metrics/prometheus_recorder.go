package metrics

import (
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

const namespace = "docsite"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	pageResolves    *prom.CounterVec
	httpDuration    *prom.HistogramVec
	feedbackEvents  *prom.CounterVec
	reindexDuration *prom.HistogramVec
	documents       prom.Gauge
}

// NewPrometheusRecorder constructs the metrics and registers them on reg.
// A nil reg gets a private registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		pageResolves: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_resolves_total",
			Help:      "Page lookups by result",
		}, []string{"result"}),
		httpDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern, method and status",
			Buckets:   prom.DefBuckets,
		}, []string{"route", "method", "status"}),
		feedbackEvents: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "feedback_events_total",
			Help:      "Feedback events by outcome",
		}, []string{"outcome"}),
		reindexDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "reindex_duration_seconds",
			Help:      "Duration of content index rebuilds",
			Buckets:   prom.DefBuckets,
		}, []string{"result"}),
		documents: prom.NewGauge(prom.GaugeOpts{
			Namespace: namespace,
			Name:      "indexed_documents",
			Help:      "Documents in the currently published content index",
		}),
	}
	reg.MustRegister(pr.pageResolves, pr.httpDuration, pr.feedbackEvents, pr.reindexDuration, pr.documents)
	return pr
}

func (p *PrometheusRecorder) IncPageResolve(result ResolveResult) {
	if p == nil {
		return
	}
	p.pageResolves.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) ObserveHTTPRequest(route, method string, status int, d time.Duration) {
	if p == nil {
		return
	}
	p.httpDuration.WithLabelValues(route, method, strconv.Itoa(status)).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncFeedbackEvent(outcome FeedbackOutcome) {
	if p == nil {
		return
	}
	p.feedbackEvents.WithLabelValues(string(outcome)).Inc()
}

func (p *PrometheusRecorder) ObserveReindex(d time.Duration, success bool) {
	if p == nil {
		return
	}
	res := "failed"
	if success {
		res = "success"
	}
	p.reindexDuration.WithLabelValues(res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) SetIndexedDocuments(n int) {
	if p == nil {
		return
	}
	p.documents.Set(float64(n))
}
