package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/shopmetrics/logpipeline/internal/query_server/service/logquery"
	"go.uber.org/zap"
)

// LogSearchHandler creates a handler for searching logs using search parameters.
// @Summary Search enriched log events.
// @Tags logs
// @Accept json
// @Produce json
// @Param search body logquery.SearchParams true "The optional search parameters"
// @Success 200 {object} LogResponseDTO "List of matching log events"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /logs [post]
func LogSearchHandler(
	ctx context.Context,
	lqs logquery.LogQueryService,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logquery.SearchParams
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logger.Error("Error encountered when decoding request body", zap.Error(err))
			HttpError(w, "Invalid request payload", http.StatusBadRequest, logger)
			return
		}

		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logger.Error("Error encountered when closing request body", zap.Error(err))
			}
		}(r.Body)

		logs, err := lqs.GetLogs(ctx, req)
		if err != nil {
			logger.Error("Error encountered when searching for logs", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}

		logResult := convertLogsToLogResponse(logs)
		err = json.NewEncoder(w).Encode(logResult)
		if err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}

// ErrorSummaryHandler creates a handler for summarizing error events.
// @Summary Get error counts by code and the most recent error events.
// @Tags logs
// @Accept json
// @Produce json
// @Param search body logquery.SearchParams true "The optional search parameters"
// @Success 200 {object} ErrorSummaryDTO "Summary of error events"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /errors [post]
func ErrorSummaryHandler(
	ctx context.Context,
	lqs logquery.LogQueryService,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logquery.SearchParams
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logger.Error("Error encountered when decoding request body", zap.Error(err))
			HttpError(w, "Invalid request payload", http.StatusBadRequest, logger)
			return
		}

		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logger.Error("Error encountered when closing request body", zap.Error(err))
			}
		}(r.Body)

		summary, err := lqs.GetErrorSummary(ctx, req)
		if err != nil {
			logger.Error("Error encountered when summarizing errors", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}

		err = json.NewEncoder(w).Encode(convertErrorSummaryToDTO(summary))
		if err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}

// TrafficSummaryHandler creates a handler for aggregating traffic.
// @Summary Get traffic broken down by event type, hour and location.
// @Tags logs
// @Accept json
// @Produce json
// @Param search body logquery.SearchParams true "The optional search parameters"
// @Success 200 {object} TrafficSummaryDTO "Summary of event traffic"
// @Failure 500 {object} ErrorMessage "Internal server error"
// @Router /aggregations [post]
func TrafficSummaryHandler(
	ctx context.Context,
	lqs logquery.LogQueryService,
	logger *zap.Logger,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req logquery.SearchParams
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logger.Error("Error encountered when decoding request body", zap.Error(err))
			HttpError(w, "Invalid request payload", http.StatusBadRequest, logger)
			return
		}

		defer func(Body io.ReadCloser) {
			err := Body.Close()
			if err != nil {
				logger.Error("Error encountered when closing request body", zap.Error(err))
			}
		}(r.Body)

		summary, err := lqs.GetTrafficSummary(ctx, req)
		if err != nil {
			logger.Error("Error encountered when summarizing traffic", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}

		err = json.NewEncoder(w).Encode(convertTrafficSummaryToDTO(summary))
		if err != nil {
			logger.Error("Error encountered when encoding response", zap.Error(err))
			HttpError(w, "Internal server error", http.StatusInternalServerError, logger)
			return
		}
	}
}
