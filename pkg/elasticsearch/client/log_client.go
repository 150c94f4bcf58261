package client

import (
	"context"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/shopmetrics/logpipeline/pkg/elasticsearch/model"
)

const SearchResultSize = 100

type RefreshRate string

const (
	// Wait for the changes made by the request to be made visible by a refresh before replying.
	Wait RefreshRate = "wait_for"
	// Immediate Refresh the relevant primary and replica shards (not the whole index) immediately after the operation occurs.
	Immediate RefreshRate = "true"
	// Async Take no refresh related actions. The changes made by this request will be made visible at some point after the request returns.
	Async RefreshRate = "false"
)

type LogClient interface {
	// BulkIndex indexes (inserts) multiple documents in the same index
	// https://www.elastic.co/guide/en/elasticsearch/reference/master/docs-bulk.html
	BulkIndex(ctx context.Context, metaInfo []MetaMap, documentInfo []DocumentMap, index string) error
	// Index indexes (inserts) a single document in the index
	// https://www.elastic.co/guide/en/elasticsearch/reference/master/docs-index_.html
	Index(ctx context.Context, metaInfo MetaMap, documentInfo DocumentMap, index string) error
	// Search searches for documents matching the query and returns the hit sources,
	// with the document id stored under "_id".
	// https://www.elastic.co/guide/en/elasticsearch/reference/master/search-search.html
	// queryResultSize is the number of results to return, -1 for default
	Search(ctx context.Context, query string, indices []string, queryResultSize *int) ([]map[string]interface{}, error)
	// SearchAggregations runs a query whose interesting output is its aggregations
	// rather than its hits.
	// https://www.elastic.co/guide/en/elasticsearch/reference/master/search-aggregations.html
	SearchAggregations(ctx context.Context, query string, indices []string) (map[string]model.AggregationResult, error)
	// Count counts the number of documents in the index matching the query
	// https://www.elastic.co/guide/en/elasticsearch/reference/master/search-count.html
	Count(ctx context.Context, query string, indices []string) (int64, error)
}

type LogClientImpl struct {
	es          *elasticsearch.Client
	refreshRate string
}

func NewLogClientImpl(es *elasticsearch.Client, refreshRate RefreshRate) *LogClientImpl {
	return &LogClientImpl{es: es, refreshRate: string(refreshRate)}
}
