package pipeline

import (
	"context"
	"time"

	"github.com/shopmetrics/logpipeline/pkg/log/aggregation"
	"github.com/shopmetrics/logpipeline/pkg/log/enrichment"
	"github.com/shopmetrics/logpipeline/pkg/log/model"
	"github.com/shopmetrics/logpipeline/pkg/log/parser"
	"github.com/shopmetrics/logpipeline/pkg/write_buffer"
	"go.uber.org/zap"
)

const defaultFlushInterval = 5 * time.Second
const defaultSnapshotInterval = 30 * time.Second
const shutdownFlushTimeout = 10 * time.Second

// Pipeline wires the streaming stages together: tailed line -> parser ->
// enrichment -> aggregations -> write buffer.
type Pipeline struct {
	tailer           *Tailer
	parser           *parser.Parser
	uaParser         *enrichment.UserAgentParser
	aggregator       *aggregation.Aggregator
	buffer           write_buffer.DatabaseWriteBuffer[model.LogEntry]
	metrics          *Metrics
	logger           *zap.Logger
	flushInterval    time.Duration
	snapshotInterval time.Duration
}

type Option func(*Pipeline)

func WithFlushInterval(interval time.Duration) Option {
	return func(p *Pipeline) {
		if interval > 0 {
			p.flushInterval = interval
		}
	}
}

func NewPipeline(
	tailer *Tailer,
	logParser *parser.Parser,
	uaParser *enrichment.UserAgentParser,
	aggregator *aggregation.Aggregator,
	buffer write_buffer.DatabaseWriteBuffer[model.LogEntry],
	metrics *Metrics,
	logger *zap.Logger,
	opts ...Option,
) *Pipeline {
	p := &Pipeline{
		tailer:           tailer,
		parser:           logParser,
		uaParser:         uaParser,
		aggregator:       aggregator,
		buffer:           buffer,
		metrics:          metrics,
		logger:           logger,
		flushInterval:    defaultFlushInterval,
		snapshotInterval: defaultSnapshotInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run processes lines until ctx is cancelled, then flushes what is left in
// the buffer.
func (p *Pipeline) Run(ctx context.Context) error {
	lines := p.tailer.Lines(ctx)

	flushTicker := time.NewTicker(p.flushInterval)
	defer flushTicker.Stop()
	snapshotTicker := time.NewTicker(p.snapshotInterval)
	defer snapshotTicker.Stop()

	p.logger.Info("Log pipeline started")
	for {
		select {
		case <-ctx.Done():
			return p.shutdown()
		case line, ok := <-lines:
			if !ok {
				return p.shutdown()
			}
			p.ProcessLine(line)
		case <-flushTicker.C:
			if err := p.flush(); err != nil {
				p.logger.Error("Failed to flush write buffer", zap.Error(err))
			}
		case <-snapshotTicker.C:
			p.logSnapshot()
		}
	}
}

// ProcessLine runs a single log line through the pipeline stages.
func (p *Pipeline) ProcessLine(line string) {
	p.metrics.LinesProcessed.Inc()

	entry := p.parser.ParseLine(line)
	if entry == nil {
		p.metrics.LinesFailed.Inc()
		return
	}
	p.metrics.LinesParsed.Inc()

	info := p.uaParser.Parse(entry.UserAgent)
	entry.DeviceType = info.DeviceType
	entry.OsName = info.OsName

	p.aggregator.Update(entry)
	p.buffer.WriteToBuffer([]model.LogEntry{*entry})
	p.metrics.BufferDepth.Set(float64(p.buffer.Size()))
}

func (p *Pipeline) flush() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownFlushTimeout)
	defer cancel()
	err := p.buffer.Flush(ctx)
	p.metrics.BufferDepth.Set(float64(p.buffer.Size()))
	return err
}

func (p *Pipeline) shutdown() error {
	p.logger.Info("Log pipeline stopping, flushing buffered entries")
	if err := p.flush(); err != nil {
		return err
	}
	p.logSnapshot()
	return nil
}

func (p *Pipeline) logSnapshot() {
	stats := p.parser.Stats()
	snapshot := p.aggregator.Snapshot()
	p.logger.Info("Pipeline statistics",
		zap.Int64("parsed", stats.Parsed),
		zap.Int64("failed", stats.Failed),
		zap.Any("event_type_counts", snapshot.EventTypeCounts),
		zap.Any("location_traffic", snapshot.LocationTraffic),
		zap.Any("device_type_traffic", snapshot.DeviceTypeTraffic),
		zap.Any("os_traffic", snapshot.OsTraffic),
		zap.Int64("purchase_count", snapshot.PurchaseCount),
		zap.Float64("purchase_total_amount", snapshot.PurchaseTotalAmount),
		zap.Any("error_counts", snapshot.ErrorCounts),
		zap.Float64("avg_session_duration_seconds", snapshot.AverageSessionDuration()),
	)
}
