package stats

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the counters of a single run in their own registry, so they can be
// written out as a node-exporter textfile once the run finishes.
type Metrics struct {
	registry *prometheus.Registry

	documentsRead   prometheus.Counter
	recordsTotal    *prometheus.CounterVec
	recordsRejected *prometheus.CounterVec
	viewRows        *prometheus.GaugeVec
	sinkBytes       *prometheus.GaugeVec
	sinkFailures    *prometheus.CounterVec
	archiveFailures prometheus.Counter
	runDuration     prometheus.Gauge
	lastRun         prometheus.Gauge
}

func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		documentsRead: factory.NewCounter(prometheus.CounterOpts{
			Name: "positionstats_documents_read_total",
			Help: "Input documents read in the batch",
		}),
		recordsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "positionstats_records_total",
			Help: "Position records by processing stage",
		}, []string{"stage"}),
		recordsRejected: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "positionstats_records_rejected_total",
			Help: "Position records dropped during normalization",
		}, []string{"reason"}),
		viewRows: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "positionstats_view_rows",
			Help: "Rows in each materialized view",
		}, []string{"view"}),
		sinkBytes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "positionstats_sink_bytes",
			Help: "Bytes written per view and sink",
		}, []string{"view", "sink"}),
		sinkFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "positionstats_sink_failures_total",
			Help: "Failed view writes per view and sink",
		}, []string{"view", "sink"}),
		archiveFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "positionstats_archive_failures_total",
			Help: "Failed input archive writes",
		}),
		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "positionstats_run_duration_seconds",
			Help: "Wall time of the run",
		}),
		lastRun: factory.NewGauge(prometheus.GaugeOpts{
			Name: "positionstats_last_run_timestamp_seconds",
			Help: "Unix time the run started",
		}),
	}
}

func (m *Metrics) Observe(report *Report) {
	m.documentsRead.Add(float64(report.Documents))

	m.recordsTotal.WithLabelValues("raw").Add(float64(report.RawRecords))
	m.recordsTotal.WithLabelValues("accepted").Add(float64(report.AcceptedRecords))
	for reason, count := range report.RejectedRecords {
		m.recordsRejected.WithLabelValues(string(reason)).Add(float64(count))
	}

	for view, rows := range report.Rows {
		m.viewRows.WithLabelValues(view).Set(float64(rows))
	}

	for _, result := range report.Sinks {
		if result.Err != nil {
			m.sinkFailures.WithLabelValues(result.View, string(result.Sink)).Inc()
			continue
		}

		m.sinkBytes.WithLabelValues(result.View, string(result.Sink)).Set(float64(result.Bytes))
	}

	if report.ArchiveError != nil {
		m.archiveFailures.Inc()
	}

	m.runDuration.Set(report.Duration.Seconds())
	m.lastRun.Set(float64(report.StartTime.Unix()))
}

func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
