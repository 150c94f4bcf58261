package pipeline

import (
	"context"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopmetrics/logpipeline/pkg/log/aggregation"
	"github.com/shopmetrics/logpipeline/pkg/log/enrichment"
	"github.com/shopmetrics/logpipeline/pkg/log/model"
	"github.com/shopmetrics/logpipeline/pkg/log/parser"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeBuffer struct {
	mu      sync.Mutex
	entries []model.LogEntry
	flushed int
}

func (b *fakeBuffer) WriteToBuffer(value []model.LogEntry) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, value...)
}

func (b *fakeBuffer) Flush(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushed++
	return nil
}

func (b *fakeBuffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.entries)
}

func newTestPipeline(t *testing.T, buffer *fakeBuffer) *Pipeline {
	t.Helper()
	logger := zap.NewNop()
	uaParser, err := enrichment.NewUserAgentParser()
	assert.Nil(t, err)
	return NewPipeline(
		NewTailer("unused.log", true, logger),
		parser.NewParser(logger),
		uaParser,
		aggregation.NewAggregator(),
		buffer,
		NewMetrics(prometheus.NewRegistry()),
		logger,
	)
}

const desktopLine = `{"timestamp": "2025-07-03T16:29:10.565498", "event_type": "purchase", ` +
	`"session_id": "s1", "user_id": "u1", "ip_address": "5.230.32.189", ` +
	`"user_agent": "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/100.0.4896.75 Safari/537.36", ` +
	`"location": "USA", "data": {"user_id": "u1", "total_amount": 99.5}}`

func TestPipeline_ProcessLine(t *testing.T) {
	t.Run("should enrich and buffer a valid line", func(t *testing.T) {
		buffer := &fakeBuffer{}
		p := newTestPipeline(t, buffer)

		p.ProcessLine(desktopLine)

		assert.Len(t, buffer.entries, 1)
		entry := buffer.entries[0]
		assert.Equal(t, model.EventPurchase, entry.EventType)
		assert.Equal(t, enrichment.DeviceDesktop, entry.DeviceType)
		assert.Equal(t, "Windows 10", entry.OsName)
	})

	t.Run("should update aggregations for a valid line", func(t *testing.T) {
		buffer := &fakeBuffer{}
		p := newTestPipeline(t, buffer)

		p.ProcessLine(desktopLine)

		snapshot := p.aggregator.Snapshot()
		assert.Equal(t, int64(1), snapshot.EventTypeCounts[model.EventPurchase])
		assert.Equal(t, int64(1), snapshot.PurchaseCount)
		assert.InDelta(t, 99.5, snapshot.PurchaseTotalAmount, 0.001)
	})

	t.Run("should flush the buffer on shutdown", func(t *testing.T) {
		buffer := &fakeBuffer{}
		p := newTestPipeline(t, buffer)

		p.ProcessLine(desktopLine)
		assert.Nil(t, p.shutdown())

		assert.Equal(t, 1, buffer.flushed)
	})

	t.Run("should drop a malformed line without buffering it", func(t *testing.T) {
		buffer := &fakeBuffer{}
		p := newTestPipeline(t, buffer)

		p.ProcessLine("not json at all")

		assert.Empty(t, buffer.entries)
		assert.Equal(t, int64(1), p.parser.Stats().Failed)
	})
}
