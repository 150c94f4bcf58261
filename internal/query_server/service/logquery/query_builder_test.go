package logquery

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func marshalQuery(t *testing.T, query map[string]interface{}) string {
	t.Helper()
	queryJson, err := json.Marshal(query)
	assert.NoError(t, err)
	return string(queryJson)
}

func TestGetLogSearchQuery(t *testing.T) {
	t.Run("should match all documents when no parameters are given", func(t *testing.T) {
		queryJson := marshalQuery(t, getLogSearchQuery(SearchParams{}))
		assert.Contains(t, queryJson, `"match_all"`)
		assert.Contains(t, queryJson, `"sort"`)
	})

	t.Run("should include a timestamp range when start and end times are given", func(t *testing.T) {
		startTime := "2024-05-01T00:00:00Z"
		endTime := "2024-05-02T00:00:00Z"
		queryJson := marshalQuery(t, getLogSearchQuery(SearchParams{
			StartTime: &startTime,
			EndTime:   &endTime,
		}))
		assert.Contains(t, queryJson, `"range"`)
		assert.Contains(t, queryJson, `"gte":"2024-05-01T00:00:00Z"`)
		assert.Contains(t, queryJson, `"lte":"2024-05-02T00:00:00Z"`)
	})

	t.Run("should filter on event types when given", func(t *testing.T) {
		queryJson := marshalQuery(t, getLogSearchQuery(SearchParams{
			EventTypes: []string{"purchase", "error"},
		}))
		assert.Contains(t, queryJson, `"terms":{"event_type":["purchase","error"]}`)
	})

	t.Run("should filter on user, session and location when given", func(t *testing.T) {
		userId := "user_42"
		sessionId := "session_1"
		location := "Germany"
		queryJson := marshalQuery(t, getLogSearchQuery(SearchParams{
			UserId:    &userId,
			SessionId: &sessionId,
			Location:  &location,
		}))
		assert.Contains(t, queryJson, `"term":{"user_id":"user_42"}`)
		assert.Contains(t, queryJson, `"term":{"session_id":"session_1"}`)
		assert.Contains(t, queryJson, `"term":{"location":"Germany"}`)
	})
}

func TestGetErrorQueries(t *testing.T) {
	t.Run("should always restrict to error events", func(t *testing.T) {
		queryJson := marshalQuery(t, getErrorFilterQuery(SearchParams{}))
		assert.Contains(t, queryJson, `"term":{"event_type":"error"}`)
	})

	t.Run("should aggregate on the error code keyword field", func(t *testing.T) {
		queryJson := marshalQuery(t, getErrorSummaryQuery(SearchParams{}))
		assert.Contains(t, queryJson, `"error_codes"`)
		assert.Contains(t, queryJson, `"field":"data.error_code.keyword"`)
	})

	t.Run("should sort recent errors by timestamp descending", func(t *testing.T) {
		queryJson := marshalQuery(t, getRecentErrorsQuery(SearchParams{}))
		assert.Contains(t, queryJson, `"timestamp":{"order":"desc"}`)
	})
}

func TestGetTrafficQueries(t *testing.T) {
	t.Run("should break traffic down by event type, hour and location", func(t *testing.T) {
		queryJson := marshalQuery(t, getTrafficSummaryQuery(SearchParams{}))
		assert.Contains(t, queryJson, `"event_types"`)
		assert.Contains(t, queryJson, `"calendar_interval":"hour"`)
		assert.Contains(t, queryJson, `"field":"location"`)
	})

	t.Run("should sum the purchase total amount over purchase events only", func(t *testing.T) {
		queryJson := marshalQuery(t, getPurchaseSummaryQuery(SearchParams{}))
		assert.Contains(t, queryJson, `"term":{"event_type":"purchase"}`)
		assert.Contains(t, queryJson, `"sum":{"field":"data.total_amount"}`)
	})
}
