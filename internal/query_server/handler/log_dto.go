package handler

import "time"

// LogDTO represents a single enriched log event
// @swagger:model LogDTO
type LogDTO struct {
	Id         string                 `json:"id"`
	Timestamp  time.Time              `json:"timestamp"`
	EventType  string                 `json:"event_type"`
	SessionId  string                 `json:"session_id"`
	UserId     string                 `json:"user_id"`
	IpAddress  string                 `json:"ip_address"`
	UserAgent  string                 `json:"user_agent"`
	Location   string                 `json:"location"`
	DeviceType string                 `json:"device_type,omitempty"`
	OsName     string                 `json:"os_name,omitempty"`
	Data       map[string]interface{} `json:"data,omitempty"`
}

// LogResponseDTO represents the response to a log search request
// @swagger:model LogResponseDTO
type LogResponseDTO struct {
	// The logs matching the search parameters, most recent first
	Logs []LogDTO `json:"logs"`
}

// ErrorSummaryDTO represents the response to an error summary request
// @swagger:model ErrorSummaryDTO
type ErrorSummaryDTO struct {
	// The total number of error events matching the search parameters
	Total int64 `json:"total"`
	// The number of error events per error code
	CountsByCode map[string]int64 `json:"counts_by_code"`
	// The most recent error events, most recent first
	RecentErrors []LogDTO `json:"recent_errors"`
}

// HourlyBucketDTO represents the traffic volume within one hour
// @swagger:model HourlyBucketDTO
type HourlyBucketDTO struct {
	Hour  string `json:"hour"`
	Count int64  `json:"count"`
}

// TrafficSummaryDTO represents the response to a traffic summary request
// @swagger:model TrafficSummaryDTO
type TrafficSummaryDTO struct {
	// The number of events per event type
	EventTypeCounts map[string]int64 `json:"event_type_counts"`
	// The number of events per hour
	HourlyTraffic []HourlyBucketDTO `json:"hourly_traffic"`
	// The number of events per location
	LocationTraffic map[string]int64 `json:"location_traffic"`
	// The number of purchase events
	PurchaseCount int64 `json:"purchase_count"`
	// The summed total_amount across purchase events
	PurchaseTotalAmount float64 `json:"purchase_total_amount"`
}

// ErrorMessage represents an error message for failed requests
// @swagger:model ErrorMessage
type ErrorMessage struct {
	Message string `json:"message"`
}
