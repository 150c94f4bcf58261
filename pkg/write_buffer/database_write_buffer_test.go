package write_buffer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopmetrics/logpipeline/pkg/elasticsearch/bootstrapper"
	esClient "github.com/shopmetrics/logpipeline/pkg/elasticsearch/client"
	esModel "github.com/shopmetrics/logpipeline/pkg/elasticsearch/model"
	"github.com/shopmetrics/logpipeline/pkg/log/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type capturingClient struct {
	mu      sync.Mutex
	indexed map[string][]esClient.DocumentMap
}

func newCapturingClient() *capturingClient {
	return &capturingClient{indexed: make(map[string][]esClient.DocumentMap)}
}

func (c *capturingClient) BulkIndex(
	_ context.Context,
	_ []esClient.MetaMap,
	documentInfo []esClient.DocumentMap,
	index string,
) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.indexed[index] = append(c.indexed[index], documentInfo...)
	return nil
}

func (c *capturingClient) Index(
	ctx context.Context,
	metaInfo esClient.MetaMap,
	documentInfo esClient.DocumentMap,
	index string,
) error {
	return c.BulkIndex(ctx, []esClient.MetaMap{metaInfo}, []esClient.DocumentMap{documentInfo}, index)
}

func (c *capturingClient) Search(
	context.Context, string, []string, *int,
) ([]map[string]interface{}, error) {
	return nil, nil
}

func (c *capturingClient) SearchAggregations(
	context.Context, string, []string,
) (map[string]esModel.AggregationResult, error) {
	return nil, nil
}

func (c *capturingClient) Count(context.Context, string, []string) (int64, error) {
	return 0, nil
}

// failingClient rejects bulk requests for one index and accepts the rest.
type failingClient struct {
	capturingClient
	failIndex string
}

func (c *failingClient) BulkIndex(
	ctx context.Context,
	metaInfo []esClient.MetaMap,
	documentInfo []esClient.DocumentMap,
	index string,
) error {
	if index == c.failIndex {
		return assert.AnError
	}
	return c.capturingClient.BulkIndex(ctx, metaInfo, documentInfo, index)
}

func entryAt(ts time.Time) model.LogEntry {
	return model.LogEntry{
		Timestamp: ts,
		EventType: model.EventPageView,
		SessionId: "session",
		UserId:    "user",
		IpAddress: "10.0.0.1",
		UserAgent: "ua",
		Location:  "France",
		Data:      map[string]interface{}{},
	}
}

func indexForEntry(e model.LogEntry) string {
	return bootstrapper.DailyIndexName(e.Timestamp)
}

func TestDatabaseWriteBuffer_Flush(t *testing.T) {
	logger := zap.NewNop()

	t.Run("should route entries to their daily index", func(t *testing.T) {
		client := newCapturingClient()
		buffer := NewDatabaseWriteBufferImpl(client, indexForEntry, nil, logger)

		day1 := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		day2 := time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC)
		buffer.WriteToBuffer([]model.LogEntry{entryAt(day1), entryAt(day1), entryAt(day2)})

		err := buffer.Flush(context.Background())
		assert.Nil(t, err)
		assert.Len(t, client.indexed["logs-2024.01.15"], 2)
		assert.Len(t, client.indexed["logs-2024.01.16"], 1)
	})

	t.Run("should empty the buffer after a flush", func(t *testing.T) {
		client := newCapturingClient()
		buffer := NewDatabaseWriteBufferImpl(client, indexForEntry, nil, logger)
		buffer.WriteToBuffer([]model.LogEntry{entryAt(time.Now().UTC())})

		err := buffer.Flush(context.Background())
		assert.Nil(t, err)
		assert.Equal(t, 0, buffer.Size())
	})

	t.Run("should be a no-op when the buffer is empty", func(t *testing.T) {
		client := newCapturingClient()
		buffer := NewDatabaseWriteBufferImpl(client, indexForEntry, nil, logger)

		err := buffer.Flush(context.Background())
		assert.Nil(t, err)
		assert.Empty(t, client.indexed)
	})

	t.Run("should retain only the failed group on a partial flush failure", func(t *testing.T) {
		client := &failingClient{
			capturingClient: capturingClient{indexed: make(map[string][]esClient.DocumentMap)},
			failIndex:       "logs-2024.01.16",
		}
		buffer := NewDatabaseWriteBufferImpl[model.LogEntry](client, indexForEntry, nil, logger)

		day1 := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		day2 := time.Date(2024, 1, 16, 10, 0, 0, 0, time.UTC)
		buffer.WriteToBuffer([]model.LogEntry{entryAt(day1), entryAt(day1), entryAt(day2)})

		err := buffer.Flush(context.Background())
		assert.NotNil(t, err)
		assert.Equal(t, 1, buffer.Size())
		assert.Len(t, client.indexed["logs-2024.01.15"], 2)

		// the recovered index must not receive the already indexed entries again
		client.failIndex = ""
		err = buffer.Flush(context.Background())
		assert.Nil(t, err)
		assert.Equal(t, 0, buffer.Size())
		assert.Len(t, client.indexed["logs-2024.01.15"], 2)
		assert.Len(t, client.indexed["logs-2024.01.16"], 1)
	})

	t.Run("should report the flushed count through the callback", func(t *testing.T) {
		client := newCapturingClient()
		flushedCounts := make(chan int, 1)
		buffer := NewDatabaseWriteBufferImpl(client, indexForEntry, func(count int) {
			flushedCounts <- count
		}, logger)

		day := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		buffer.WriteToBuffer([]model.LogEntry{entryAt(day), entryAt(day), entryAt(day)})

		err := buffer.Flush(context.Background())
		assert.Nil(t, err)
		assert.Equal(t, 3, <-flushedCounts)
	})

	t.Run("should flush asynchronously once the queue size is exceeded", func(t *testing.T) {
		client := newCapturingClient()
		buffer := NewDatabaseWriteBufferImpl(client, indexForEntry, nil, logger)

		day := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
		entries := make([]model.LogEntry, WriteQueueSize+1)
		for i := range entries {
			entries[i] = entryAt(day)
		}
		buffer.WriteToBuffer(entries)

		assert.Eventually(t, func() bool {
			client.mu.Lock()
			defer client.mu.Unlock()
			return len(client.indexed["logs-2024.01.15"]) == WriteQueueSize+1
		}, 2*time.Second, 10*time.Millisecond)
	})
}
