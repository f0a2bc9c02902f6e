package metrics

import (
	"net/http"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "spacetraveling"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	reg           *prom.Registry
	fetchDuration *prom.HistogramVec
	fetchResults  *prom.CounterVec
	skippedDocs   *prom.CounterVec
	pageLoads     *prom.CounterVec
	cacheLookups  *prom.CounterVec
	staleServes   prom.Counter
}

// NewPrometheusRecorder registers its collectors on reg, or on a fresh
// registry when reg is nil.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		reg: reg,
		fetchDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "cms_fetch_duration_seconds",
			Help:      "Duration of CMS API calls",
			Buckets:   prom.DefBuckets,
		}, []string{"op"}),
		fetchResults: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cms_fetch_results_total",
			Help:      "CMS API calls by operation and outcome",
		}, []string{"op", "result"}),
		skippedDocs: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "skipped_documents_total",
			Help:      "Documents dropped from listings because they could not be normalized",
		}, []string{"reason"}),
		pageLoads: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "page_loads_total",
			Help:      "Listing page loads by outcome",
		}, []string{"result"}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "listing_cache_lookups_total",
			Help:      "Listing cache lookups by hit/miss",
		}, []string{"outcome"}),
		staleServes: prom.NewCounter(prom.CounterOpts{
			Namespace: namespace,
			Name:      "stale_post_pages_total",
			Help:      "Post pages served from a snapshot after a CMS failure",
		}),
	}
	reg.MustRegister(
		pr.fetchDuration, pr.fetchResults, pr.skippedDocs, pr.pageLoads, pr.cacheLookups, pr.staleServes,
		collectors.NewGoCollector(),
	)
	return pr
}

func (p *PrometheusRecorder) ObserveFetch(op string, d time.Duration, result ResultLabel) {
	p.fetchDuration.WithLabelValues(op).Observe(d.Seconds())
	p.fetchResults.WithLabelValues(op, string(result)).Inc()
}

func (p *PrometheusRecorder) IncSkippedDocument(reason string) {
	p.skippedDocs.WithLabelValues(reason).Inc()
}

func (p *PrometheusRecorder) IncPageLoad(result ResultLabel) {
	p.pageLoads.WithLabelValues(string(result)).Inc()
}

func (p *PrometheusRecorder) IncCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	p.cacheLookups.WithLabelValues(outcome).Inc()
}

func (p *PrometheusRecorder) IncStaleServe() {
	p.staleServes.Inc()
}

// Handler serves the recorder's registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
