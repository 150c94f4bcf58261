package logquery

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopmetrics/logpipeline/pkg/elasticsearch/bootstrapper"
	"github.com/shopmetrics/logpipeline/pkg/elasticsearch/client"
	"github.com/shopmetrics/logpipeline/pkg/log/helper"
	logModel "github.com/shopmetrics/logpipeline/pkg/log/model"
	"go.uber.org/zap"
)

const timeout = 10 * time.Second
const querySize = 1000
const recentErrorsSize = 50

type SearchParams struct {
	StartTime  *string  `json:"start_time,omitempty"`
	EndTime    *string  `json:"end_time,omitempty"`
	EventTypes []string `json:"event_types,omitempty"`
	UserId     *string  `json:"user_id,omitempty"`
	SessionId  *string  `json:"session_id,omitempty"`
	Location   *string  `json:"location,omitempty"`
}

type HourlyBucket struct {
	Hour  string
	Count int64
}

type ErrorSummary struct {
	Total        int64
	CountsByCode map[string]int64
	RecentErrors []logModel.LogEntry
}

type TrafficSummary struct {
	EventTypeCounts     map[string]int64
	HourlyTraffic       []HourlyBucket
	LocationTraffic     map[string]int64
	PurchaseCount       int64
	PurchaseTotalAmount float64
}

type LogQueryService interface {
	GetLogs(ctx context.Context, searchParams SearchParams) ([]logModel.LogEntry, error)
	GetErrorSummary(ctx context.Context, searchParams SearchParams) (ErrorSummary, error)
	GetTrafficSummary(ctx context.Context, searchParams SearchParams) (TrafficSummary, error)
}

type LogQueryServiceImpl struct {
	lc     client.LogClient
	logger *zap.Logger
}

func NewLogQueryService(lc client.LogClient, logger *zap.Logger) *LogQueryServiceImpl {
	return &LogQueryServiceImpl{
		lc:     lc,
		logger: logger,
	}
}

func (lqs *LogQueryServiceImpl) GetLogs(
	ctx context.Context,
	searchParams SearchParams,
) ([]logModel.LogEntry, error) {
	query := getLogSearchQuery(searchParams)
	queryJson, err := json.Marshal(query)
	if err != nil {
		lqs.logger.Error("Error when marshalling query to JSON", zap.Error(err))
		return nil, err
	}
	localQuerySize := querySize
	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	res, err := lqs.lc.Search(
		queryCtx,
		string(queryJson),
		[]string{bootstrapper.IndexPattern()},
		&localQuerySize,
	)
	if err != nil {
		lqs.logger.Error("Error when searching for logs", zap.Error(err))
		return nil, err
	}
	logs, err := helper.ConvertFromDocuments(res)
	if err != nil {
		lqs.logger.Error("Error when converting search result to LogEntry", zap.Error(err))
		return nil, err
	}
	return logs, nil
}

func (lqs *LogQueryServiceImpl) GetErrorSummary(
	ctx context.Context,
	searchParams SearchParams,
) (ErrorSummary, error) {
	countQuery, err := json.Marshal(getErrorFilterQuery(searchParams))
	if err != nil {
		lqs.logger.Error("Error when marshalling error count query to JSON", zap.Error(err))
		return ErrorSummary{}, err
	}
	aggQuery, err := json.Marshal(getErrorSummaryQuery(searchParams))
	if err != nil {
		lqs.logger.Error("Error when marshalling error summary query to JSON", zap.Error(err))
		return ErrorSummary{}, err
	}
	recentQuery, err := json.Marshal(getRecentErrorsQuery(searchParams))
	if err != nil {
		lqs.logger.Error("Error when marshalling recent errors query to JSON", zap.Error(err))
		return ErrorSummary{}, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	indices := []string{bootstrapper.IndexPattern()}
	total, err := lqs.lc.Count(queryCtx, string(countQuery), indices)
	if err != nil {
		lqs.logger.Error("Error when counting errors", zap.Error(err))
		return ErrorSummary{}, err
	}

	aggregations, err := lqs.lc.SearchAggregations(queryCtx, string(aggQuery), indices)
	if err != nil {
		lqs.logger.Error("Error when aggregating error codes", zap.Error(err))
		return ErrorSummary{}, err
	}
	countsByCode := make(map[string]int64)
	if codes, ok := aggregations["error_codes"]; ok {
		for _, bucket := range codes.Buckets {
			if key, ok := bucket.Key.(string); ok {
				countsByCode[key] = bucket.DocCount
			}
		}
	}

	localSize := recentErrorsSize
	recentDocs, err := lqs.lc.Search(queryCtx, string(recentQuery), indices, &localSize)
	if err != nil {
		lqs.logger.Error("Error when searching for recent errors", zap.Error(err))
		return ErrorSummary{}, err
	}
	recentErrors, err := helper.ConvertFromDocuments(recentDocs)
	if err != nil {
		lqs.logger.Error("Error when converting search result to LogEntry", zap.Error(err))
		return ErrorSummary{}, err
	}

	return ErrorSummary{
		Total:        total,
		CountsByCode: countsByCode,
		RecentErrors: recentErrors,
	}, nil
}

func (lqs *LogQueryServiceImpl) GetTrafficSummary(
	ctx context.Context,
	searchParams SearchParams,
) (TrafficSummary, error) {
	trafficQuery, err := json.Marshal(getTrafficSummaryQuery(searchParams))
	if err != nil {
		lqs.logger.Error("Error when marshalling traffic summary query to JSON", zap.Error(err))
		return TrafficSummary{}, err
	}
	purchaseAggQuery, err := json.Marshal(getPurchaseSummaryQuery(searchParams))
	if err != nil {
		lqs.logger.Error("Error when marshalling purchase summary query to JSON", zap.Error(err))
		return TrafficSummary{}, err
	}
	purchaseCountQuery, err := json.Marshal(getPurchaseFilterQuery(searchParams))
	if err != nil {
		lqs.logger.Error("Error when marshalling purchase count query to JSON", zap.Error(err))
		return TrafficSummary{}, err
	}

	queryCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	indices := []string{bootstrapper.IndexPattern()}
	aggregations, err := lqs.lc.SearchAggregations(queryCtx, string(trafficQuery), indices)
	if err != nil {
		lqs.logger.Error("Error when aggregating traffic", zap.Error(err))
		return TrafficSummary{}, err
	}

	summary := TrafficSummary{
		EventTypeCounts: make(map[string]int64),
		LocationTraffic: make(map[string]int64),
	}
	if eventTypes, ok := aggregations["event_types"]; ok {
		for _, bucket := range eventTypes.Buckets {
			if key, ok := bucket.Key.(string); ok {
				summary.EventTypeCounts[key] = bucket.DocCount
			}
		}
	}
	if hourly, ok := aggregations["hourly_traffic"]; ok {
		for _, bucket := range hourly.Buckets {
			summary.HourlyTraffic = append(summary.HourlyTraffic, HourlyBucket{
				Hour:  bucket.KeyAsString,
				Count: bucket.DocCount,
			})
		}
	}
	if locations, ok := aggregations["locations"]; ok {
		for _, bucket := range locations.Buckets {
			if key, ok := bucket.Key.(string); ok {
				summary.LocationTraffic[key] = bucket.DocCount
			}
		}
	}

	purchaseAggregations, err := lqs.lc.SearchAggregations(queryCtx, string(purchaseAggQuery), indices)
	if err != nil {
		lqs.logger.Error("Error when aggregating purchases", zap.Error(err))
		return TrafficSummary{}, err
	}
	if purchaseTotal, ok := purchaseAggregations["purchase_total"]; ok && purchaseTotal.Value != nil {
		summary.PurchaseTotalAmount = *purchaseTotal.Value
	}

	purchaseCount, err := lqs.lc.Count(queryCtx, string(purchaseCountQuery), indices)
	if err != nil {
		lqs.logger.Error("Error when counting purchases", zap.Error(err))
		return TrafficSummary{}, err
	}
	summary.PurchaseCount = purchaseCount

	return summary, nil
}
