package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopmetrics/logpipeline/internal/query_server/handler"
	"github.com/shopmetrics/logpipeline/internal/query_server/service/logquery"
	logModel "github.com/shopmetrics/logpipeline/pkg/log/model"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeQueryService struct {
	logs           []logModel.LogEntry
	errorSummary   logquery.ErrorSummary
	trafficSummary logquery.TrafficSummary
	lastParams     logquery.SearchParams
	err            error
}

func (f *fakeQueryService) GetLogs(
	_ context.Context,
	searchParams logquery.SearchParams,
) ([]logModel.LogEntry, error) {
	f.lastParams = searchParams
	return f.logs, f.err
}

func (f *fakeQueryService) GetErrorSummary(
	_ context.Context,
	searchParams logquery.SearchParams,
) (logquery.ErrorSummary, error) {
	f.lastParams = searchParams
	return f.errorSummary, f.err
}

func (f *fakeQueryService) GetTrafficSummary(
	_ context.Context,
	searchParams logquery.SearchParams,
) (logquery.TrafficSummary, error) {
	f.lastParams = searchParams
	return f.trafficSummary, f.err
}

func TestLogSearchHandler(t *testing.T) {
	logger := zap.NewNop()

	t.Run("should return the matching logs as DTOs", func(t *testing.T) {
		service := &fakeQueryService{
			logs: []logModel.LogEntry{
				{
					Id:         "abc123",
					Timestamp:  time.Date(2024, 5, 1, 14, 0, 0, 0, time.UTC),
					EventType:  logModel.EventPurchase,
					SessionId:  "session_1",
					UserId:     "user_42",
					IpAddress:  "192.168.1.10",
					UserAgent:  "Mozilla/5.0",
					Location:   "Germany",
					DeviceType: "Desktop",
					OsName:     "Windows 10",
					Data:       map[string]interface{}{"total_amount": 99.99},
				},
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/logs", strings.NewReader(`{"user_id":"user_42"}`))
		rec := httptest.NewRecorder()

		handler.LogSearchHandler(context.Background(), service, logger)(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response handler.LogResponseDTO
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Len(t, response.Logs, 1)
		assert.Equal(t, "abc123", response.Logs[0].Id)
		assert.Equal(t, logModel.EventPurchase, response.Logs[0].EventType)
		assert.Equal(t, "user_42", *service.lastParams.UserId)
	})

	t.Run("should return 400 on a malformed request body", func(t *testing.T) {
		service := &fakeQueryService{}
		req := httptest.NewRequest(http.MethodPost, "/logs", strings.NewReader(`{not json`))
		rec := httptest.NewRecorder()

		handler.LogSearchHandler(context.Background(), service, logger)(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var message handler.ErrorMessage
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&message))
		assert.Equal(t, "Invalid request payload", message.Message)
	})

	t.Run("should return 500 when the query service fails", func(t *testing.T) {
		service := &fakeQueryService{err: assert.AnError}
		req := httptest.NewRequest(http.MethodPost, "/logs", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		handler.LogSearchHandler(context.Background(), service, logger)(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestErrorSummaryHandler(t *testing.T) {
	logger := zap.NewNop()

	t.Run("should return the error summary with counts by code", func(t *testing.T) {
		service := &fakeQueryService{
			errorSummary: logquery.ErrorSummary{
				Total: 12,
				CountsByCode: map[string]int64{
					"PAYMENT_FAILED": 8,
					"OUT_OF_STOCK":   4,
				},
				RecentErrors: []logModel.LogEntry{
					{
						EventType: logModel.EventError,
						Data:      map[string]interface{}{"error_code": "PAYMENT_FAILED"},
					},
				},
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/errors", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		handler.ErrorSummaryHandler(context.Background(), service, logger)(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response handler.ErrorSummaryDTO
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, int64(12), response.Total)
		assert.Equal(t, int64(8), response.CountsByCode["PAYMENT_FAILED"])
		assert.Len(t, response.RecentErrors, 1)
	})
}

func TestTrafficSummaryHandler(t *testing.T) {
	logger := zap.NewNop()

	t.Run("should return the traffic summary with hourly buckets in order", func(t *testing.T) {
		service := &fakeQueryService{
			trafficSummary: logquery.TrafficSummary{
				EventTypeCounts: map[string]int64{"page_view": 100, "purchase": 7},
				HourlyTraffic: []logquery.HourlyBucket{
					{Hour: "2024-05-01T13:00:00.000Z", Count: 40},
					{Hour: "2024-05-01T14:00:00.000Z", Count: 60},
				},
				LocationTraffic:     map[string]int64{"USA": 80, "Germany": 27},
				PurchaseCount:       7,
				PurchaseTotalAmount: 432.10,
			},
		}
		req := httptest.NewRequest(http.MethodPost, "/aggregations", strings.NewReader(`{}`))
		rec := httptest.NewRecorder()

		handler.TrafficSummaryHandler(context.Background(), service, logger)(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var response handler.TrafficSummaryDTO
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&response))
		assert.Equal(t, int64(100), response.EventTypeCounts["page_view"])
		assert.Len(t, response.HourlyTraffic, 2)
		assert.Equal(t, int64(60), response.HourlyTraffic[1].Count)
		assert.Equal(t, int64(7), response.PurchaseCount)
		assert.InDelta(t, 432.10, response.PurchaseTotalAmount, 0.001)
	})
}
