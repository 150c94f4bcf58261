package model

type EsAggregationResponse struct {
	Took         int                          `json:"took"`
	TimedOut     bool                         `json:"timed_out"`
	Aggregations map[string]AggregationResult `json:"aggregations"`
}

// AggregationResult covers both bucket aggregations (terms, date_histogram)
// and single-value metric aggregations (sum, avg).
type AggregationResult struct {
	Value   *float64            `json:"value"`
	Buckets []AggregationBucket `json:"buckets"`
}

type AggregationBucket struct {
	Key         interface{} `json:"key"`
	KeyAsString string      `json:"key_as_string"`
	DocCount    int64       `json:"doc_count"`
}
