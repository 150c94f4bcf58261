package handler

import (
	"github.com/shopmetrics/logpipeline/internal/query_server/service/logquery"
	logModel "github.com/shopmetrics/logpipeline/pkg/log/model"
)

func convertLogsToLogResponse(input []logModel.LogEntry) LogResponseDTO {
	logs := make([]LogDTO, len(input))
	for i, logEntry := range input {
		logs[i] = mapLogEntryToDTO(logEntry)
	}
	return LogResponseDTO{
		Logs: logs,
	}
}

func mapLogEntryToDTO(input logModel.LogEntry) LogDTO {
	return LogDTO{
		Id:         input.Id,
		Timestamp:  input.Timestamp,
		EventType:  input.EventType,
		SessionId:  input.SessionId,
		UserId:     input.UserId,
		IpAddress:  input.IpAddress,
		UserAgent:  input.UserAgent,
		Location:   input.Location,
		DeviceType: input.DeviceType,
		OsName:     input.OsName,
		Data:       input.Data,
	}
}

func convertErrorSummaryToDTO(input logquery.ErrorSummary) ErrorSummaryDTO {
	recentErrors := make([]LogDTO, len(input.RecentErrors))
	for i, logEntry := range input.RecentErrors {
		recentErrors[i] = mapLogEntryToDTO(logEntry)
	}
	return ErrorSummaryDTO{
		Total:        input.Total,
		CountsByCode: input.CountsByCode,
		RecentErrors: recentErrors,
	}
}

func convertTrafficSummaryToDTO(input logquery.TrafficSummary) TrafficSummaryDTO {
	hourlyTraffic := make([]HourlyBucketDTO, len(input.HourlyTraffic))
	for i, bucket := range input.HourlyTraffic {
		hourlyTraffic[i] = HourlyBucketDTO{
			Hour:  bucket.Hour,
			Count: bucket.Count,
		}
	}
	return TrafficSummaryDTO{
		EventTypeCounts:     input.EventTypeCounts,
		HourlyTraffic:       hourlyTraffic,
		LocationTraffic:     input.LocationTraffic,
		PurchaseCount:       input.PurchaseCount,
		PurchaseTotalAmount: input.PurchaseTotalAmount,
	}
}
