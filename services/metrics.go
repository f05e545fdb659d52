package services

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics 服务指标，nil 时所有方法为空操作
type Metrics struct {
	ReportRequests  *prometheus.CounterVec
	ComputeDuration prometheus.Histogram
	CacheLookups    *prometheus.CounterVec
	RecordsIngested *prometheus.CounterVec
	IntegrityErrors prometheus.Counter
	DigestRuns      *prometheus.CounterVec
	DigestSubjects  prometheus.Gauge
}

// NewMetrics 在 reg 上注册全部指标
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ReportRequests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "altermood_report_requests_total",
			Help: "Analytics report requests by period.",
		}, []string{"period"}),
		ComputeDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "altermood_report_compute_seconds",
			Help:    "Time spent fetching records and computing a report.",
			Buckets: prometheus.DefBuckets,
		}),
		CacheLookups: f.NewCounterVec(prometheus.CounterOpts{
			Name: "altermood_report_cache_lookups_total",
			Help: "Report cache lookups by result.",
		}, []string{"result"}),
		RecordsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Name: "altermood_records_ingested_total",
			Help: "Emotion records written, by source.",
		}, []string{"source"}),
		IntegrityErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "altermood_record_integrity_errors_total",
			Help: "Stored records rejected during normalization.",
		}),
		DigestRuns: f.NewCounterVec(prometheus.CounterOpts{
			Name: "altermood_digest_runs_total",
			Help: "Scheduled digest runs by status.",
		}, []string{"status"}),
		DigestSubjects: f.NewGauge(prometheus.GaugeOpts{
			Name: "altermood_digest_subjects",
			Help: "Subjects refreshed by the last digest run.",
		}),
	}
}

func (m *Metrics) reportRequested(period string) {
	if m == nil {
		return
	}
	m.ReportRequests.WithLabelValues(period).Inc()
}

func (m *Metrics) observeCompute(start time.Time) {
	if m == nil {
		return
	}
	m.ComputeDuration.Observe(time.Since(start).Seconds())
}

func (m *Metrics) cacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func (m *Metrics) ingested(source string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RecordsIngested.WithLabelValues(source).Add(float64(n))
}

func (m *Metrics) integrityError() {
	if m == nil {
		return
	}
	m.IntegrityErrors.Inc()
}

func (m *Metrics) digestRun(status string, subjects int) {
	if m == nil {
		return
	}
	m.DigestRuns.WithLabelValues(status).Inc()
	m.DigestSubjects.Set(float64(subjects))
}
