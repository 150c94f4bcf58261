package write_buffer

import (
	"context"
	"fmt"
	"sync"
	"time"

	esClient "github.com/shopmetrics/logpipeline/pkg/elasticsearch/client"
	"go.uber.org/zap"
)

const WriteQueueSize = 50
const flushTimeOut = 10 * time.Second

type DatabaseWriteBuffer[ValueType any] interface {
	WriteToBuffer(value []ValueType)
	Flush(ctx context.Context) error
	Size() int
}

// DatabaseWriteBufferImpl batches documents and bulk-indexes them, routing
// each document to the index chosen by indexFor. Entries with different
// target indices may sit in the same batch; they are flushed per index.
// onFlushed, when non-nil, is called with the number of documents each
// Flush successfully indexed.
type DatabaseWriteBufferImpl[ValueType any] struct {
	writeQueue []ValueType
	lc         esClient.LogClient
	indexFor   func(ValueType) string
	onFlushed  func(count int)
	logger     *zap.Logger
	mu         sync.Mutex
}

func NewDatabaseWriteBufferImpl[ValueType any](
	lc esClient.LogClient,
	indexFor func(ValueType) string,
	onFlushed func(count int),
	logger *zap.Logger,
) *DatabaseWriteBufferImpl[ValueType] {
	return &DatabaseWriteBufferImpl[ValueType]{
		writeQueue: []ValueType{},
		lc:         lc,
		indexFor:   indexFor,
		onFlushed:  onFlushed,
		logger:     logger,
	}
}

func (wbc *DatabaseWriteBufferImpl[ValueType]) WriteToBuffer(
	value []ValueType,
) {
	wbc.mu.Lock()
	shouldFlush := false
	wbc.writeQueue = append(wbc.writeQueue, value...)
	if len(wbc.writeQueue) > WriteQueueSize {
		shouldFlush = true
	}
	wbc.mu.Unlock()
	if shouldFlush {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), flushTimeOut)
			defer cancel()
			if err := wbc.Flush(ctx); err != nil {
				wbc.logger.Error("Failed to flush to Elasticsearch", zap.Error(err))
			}
		}()
	}
}

// Flush bulk-indexes everything currently buffered, grouped by target index.
// Groups that fail stay queued for the next flush; groups that succeed are
// dropped immediately so a partial failure never re-sends them.
func (wbc *DatabaseWriteBufferImpl[ValueType]) Flush(ctx context.Context) error {
	wbc.mu.Lock()
	defer wbc.mu.Unlock()
	if len(wbc.writeQueue) == 0 {
		return nil
	}

	byIndex := make(map[string][]ValueType)
	for _, v := range wbc.writeQueue {
		index := wbc.indexFor(v)
		byIndex[index] = append(byIndex[index], v)
	}

	var retained []ValueType
	var flushErr error
	flushed := 0
	for index, values := range byIndex {
		metaMap, dataMap, err := esClient.ToMetaAndDataMap(values)
		if err != nil {
			retained = append(retained, values...)
			flushErr = fmt.Errorf("error converting write queue to meta and data map: %w", err)
			continue
		}
		if err := wbc.lc.BulkIndex(ctx, metaMap, dataMap, index); err != nil {
			retained = append(retained, values...)
			flushErr = fmt.Errorf("error bulk indexing to index %s: %w", index, err)
			continue
		}
		flushed += len(values)
	}
	wbc.writeQueue = retained
	if wbc.onFlushed != nil && flushed > 0 {
		wbc.onFlushed(flushed)
	}
	return flushErr
}

// Size reports the number of buffered documents.
func (wbc *DatabaseWriteBufferImpl[ValueType]) Size() int {
	wbc.mu.Lock()
	defer wbc.mu.Unlock()
	return len(wbc.writeQueue)
}
