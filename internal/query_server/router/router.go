package router

import (
	"context"
	"net/http"

	"github.com/shopmetrics/logpipeline/internal/query_server/handler"
	"github.com/shopmetrics/logpipeline/internal/query_server/service/logquery"
	"go.uber.org/zap"
)
import "github.com/gorilla/mux"

func CreateRouter(
	ctx context.Context,
	logQueryService logquery.LogQueryService,
	logger *zap.Logger,
) http.Handler {
	r := mux.NewRouter()

	r.Handle(
		"/logs", handler.LogSearchHandler(
			ctx,
			logQueryService,
			logger,
		),
	).Methods("POST")

	r.Handle(
		"/errors", handler.ErrorSummaryHandler(
			ctx,
			logQueryService,
			logger,
		),
	).Methods("POST")

	r.Handle(
		"/aggregations", handler.TrafficSummaryHandler(
			ctx,
			logQueryService,
			logger,
		),
	).Methods("POST")

	return r
}
