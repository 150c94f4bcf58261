package aggregation

import (
	"testing"
	"time"

	"github.com/shopmetrics/logpipeline/pkg/log/model"
	"github.com/stretchr/testify/assert"
)

func makeEntry(eventType string, hour int, data map[string]interface{}) *model.LogEntry {
	if data == nil {
		data = map[string]interface{}{}
	}
	return &model.LogEntry{
		Timestamp:  time.Date(2025, 7, 3, hour, 15, 0, 0, time.UTC),
		EventType:  eventType,
		SessionId:  "session",
		UserId:     "user",
		Location:   "France",
		DeviceType: "Desktop",
		OsName:     "Linux",
		Data:       data,
	}
}

func TestAggregator_Update(t *testing.T) {
	t.Run("should count events by type and hour", func(t *testing.T) {
		agg := NewAggregator()
		agg.Update(makeEntry(model.EventPageView, 9, nil))
		agg.Update(makeEntry(model.EventPageView, 9, nil))
		agg.Update(makeEntry(model.EventLogin, 17, nil))

		snapshot := agg.Snapshot()
		assert.Equal(t, int64(2), snapshot.EventTypeCounts[model.EventPageView])
		assert.Equal(t, int64(1), snapshot.EventTypeCounts[model.EventLogin])
		assert.Equal(t, int64(2), snapshot.HourlyTraffic[9])
		assert.Equal(t, int64(1), snapshot.HourlyTraffic[17])
	})

	t.Run("should track traffic by location, device and OS", func(t *testing.T) {
		agg := NewAggregator()
		agg.Update(makeEntry(model.EventPageView, 10, nil))

		snapshot := agg.Snapshot()
		assert.Equal(t, int64(1), snapshot.LocationTraffic["France"])
		assert.Equal(t, int64(1), snapshot.DeviceTypeTraffic["Desktop"])
		assert.Equal(t, int64(1), snapshot.OsTraffic["Linux"])
	})

	t.Run("should accumulate the purchase summary", func(t *testing.T) {
		agg := NewAggregator()
		agg.Update(makeEntry(model.EventPurchase, 12, map[string]interface{}{"total_amount": 49.99}))
		agg.Update(makeEntry(model.EventPurchase, 13, map[string]interface{}{"total_amount": 50.01}))

		snapshot := agg.Snapshot()
		assert.Equal(t, int64(2), snapshot.PurchaseCount)
		assert.InDelta(t, 100.0, snapshot.PurchaseTotalAmount, 0.001)
	})

	t.Run("should count errors by code with a fallback for missing codes", func(t *testing.T) {
		agg := NewAggregator()
		agg.Update(makeEntry(model.EventError, 12, map[string]interface{}{"error_code": "PAYMENT_FAILED"}))
		agg.Update(makeEntry(model.EventError, 12, map[string]interface{}{"error_code": "PAYMENT_FAILED"}))
		agg.Update(makeEntry(model.EventError, 12, nil))

		snapshot := agg.Snapshot()
		assert.Equal(t, int64(2), snapshot.ErrorCounts["PAYMENT_FAILED"])
		assert.Equal(t, int64(1), snapshot.ErrorCounts["UNKNOWN_ERROR"])
	})

	t.Run("should average session durations", func(t *testing.T) {
		agg := NewAggregator()
		agg.Update(makeEntry(model.EventUserSessionEnd, 20, map[string]interface{}{"duration_seconds": float64(30)}))
		agg.Update(makeEntry(model.EventUserSessionEnd, 21, map[string]interface{}{"duration_seconds": float64(90)}))

		snapshot := agg.Snapshot()
		assert.Equal(t, int64(2), snapshot.SessionDurationCount)
		assert.InDelta(t, 60.0, snapshot.AverageSessionDuration(), 0.001)
	})

	t.Run("should report a zero average before any session ends", func(t *testing.T) {
		agg := NewAggregator()
		assert.Equal(t, 0.0, agg.Snapshot().AverageSessionDuration())
	})

	t.Run("should return a snapshot detached from later updates", func(t *testing.T) {
		agg := NewAggregator()
		agg.Update(makeEntry(model.EventPageView, 9, nil))
		snapshot := agg.Snapshot()
		agg.Update(makeEntry(model.EventPageView, 9, nil))
		assert.Equal(t, int64(1), snapshot.EventTypeCounts[model.EventPageView])
	})
}
