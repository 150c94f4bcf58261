package logquery

import (
	logModel "github.com/shopmetrics/logpipeline/pkg/log/model"
)

const aggregationBucketSize = 50

func getFilterClauses(params SearchParams) []map[string]interface{} {
	var mustClauses []map[string]interface{}

	if params.StartTime != nil || params.EndTime != nil {
		timeRange := map[string]interface{}{}
		if params.StartTime != nil {
			timeRange["gte"] = *params.StartTime
		}
		if params.EndTime != nil {
			timeRange["lte"] = *params.EndTime
		}
		mustClauses = append(mustClauses, map[string]interface{}{
			"range": map[string]interface{}{
				"timestamp": timeRange,
			},
		})
	}

	if len(params.EventTypes) > 0 {
		mustClauses = append(mustClauses, map[string]interface{}{
			"terms": map[string]interface{}{
				"event_type": params.EventTypes,
			},
		})
	}

	if params.UserId != nil {
		mustClauses = append(mustClauses, map[string]interface{}{
			"term": map[string]interface{}{
				"user_id": *params.UserId,
			},
		})
	}

	if params.SessionId != nil {
		mustClauses = append(mustClauses, map[string]interface{}{
			"term": map[string]interface{}{
				"session_id": *params.SessionId,
			},
		})
	}

	if params.Location != nil {
		mustClauses = append(mustClauses, map[string]interface{}{
			"term": map[string]interface{}{
				"location": *params.Location,
			},
		})
	}

	return mustClauses
}

func boolQuery(mustClauses []map[string]interface{}) map[string]interface{} {
	if len(mustClauses) == 0 {
		return map[string]interface{}{
			"match_all": map[string]interface{}{},
		}
	}
	return map[string]interface{}{
		"bool": map[string]interface{}{
			"must": mustClauses,
		},
	}
}

func getLogSearchQuery(params SearchParams) map[string]interface{} {
	return map[string]interface{}{
		"query": boolQuery(getFilterClauses(params)),
		"sort": []map[string]interface{}{
			{
				"timestamp": map[string]interface{}{
					"order": "desc",
				},
			},
		},
	}
}

func withEventType(params SearchParams, eventType string) []map[string]interface{} {
	return append(getFilterClauses(params), map[string]interface{}{
		"term": map[string]interface{}{
			"event_type": eventType,
		},
	})
}

func getErrorFilterQuery(params SearchParams) map[string]interface{} {
	return map[string]interface{}{
		"query": boolQuery(withEventType(params, logModel.EventError)),
	}
}

func getErrorSummaryQuery(params SearchParams) map[string]interface{} {
	return map[string]interface{}{
		"query": boolQuery(withEventType(params, logModel.EventError)),
		"aggs": map[string]interface{}{
			"error_codes": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "data.error_code.keyword",
					"size":  aggregationBucketSize,
				},
			},
		},
	}
}

func getRecentErrorsQuery(params SearchParams) map[string]interface{} {
	return map[string]interface{}{
		"query": boolQuery(withEventType(params, logModel.EventError)),
		"sort": []map[string]interface{}{
			{
				"timestamp": map[string]interface{}{
					"order": "desc",
				},
			},
		},
	}
}

func getTrafficSummaryQuery(params SearchParams) map[string]interface{} {
	return map[string]interface{}{
		"query": boolQuery(getFilterClauses(params)),
		"aggs": map[string]interface{}{
			"event_types": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "event_type",
					"size":  aggregationBucketSize,
				},
			},
			"hourly_traffic": map[string]interface{}{
				"date_histogram": map[string]interface{}{
					"field":             "timestamp",
					"calendar_interval": "hour",
				},
			},
			"locations": map[string]interface{}{
				"terms": map[string]interface{}{
					"field": "location",
					"size":  aggregationBucketSize,
				},
			},
		},
	}
}

func getPurchaseFilterQuery(params SearchParams) map[string]interface{} {
	return map[string]interface{}{
		"query": boolQuery(withEventType(params, logModel.EventPurchase)),
	}
}

func getPurchaseSummaryQuery(params SearchParams) map[string]interface{} {
	return map[string]interface{}{
		"query": boolQuery(withEventType(params, logModel.EventPurchase)),
		"aggs": map[string]interface{}{
			"purchase_total": map[string]interface{}{
				"sum": map[string]interface{}{
					"field": "data.total_amount",
				},
			},
		},
	}
}
