package pipeline

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	LinesProcessed prometheus.Counter
	LinesParsed    prometheus.Counter
	LinesFailed    prometheus.Counter
	EntriesIndexed prometheus.Counter
	BufferDepth    prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LinesProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "logpipeline_lines_processed_total",
			Help: "Total number of log lines read from the application log file.",
		}),
		LinesParsed: factory.NewCounter(prometheus.CounterOpts{
			Name: "logpipeline_lines_parsed_total",
			Help: "Total number of log lines successfully parsed and validated.",
		}),
		LinesFailed: factory.NewCounter(prometheus.CounterOpts{
			Name: "logpipeline_lines_failed_total",
			Help: "Total number of log lines rejected during parsing or validation.",
		}),
		EntriesIndexed: factory.NewCounter(prometheus.CounterOpts{
			Name: "logpipeline_entries_indexed_total",
			Help: "Total number of log entries flushed to Elasticsearch.",
		}),
		BufferDepth: factory.NewGauge(prometheus.GaugeOpts{
			Name: "logpipeline_write_buffer_depth",
			Help: "Number of log entries currently buffered for bulk indexing.",
		}),
	}
}
