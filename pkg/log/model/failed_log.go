package model

import "time"

type FailureReason string

const (
	ReasonJsonDecodeError  FailureReason = "json_decode_error"
	ReasonValidationFailed FailureReason = "validation_failed"
	ReasonInvalidTimestamp FailureReason = "invalid_timestamp"
)

// FailedLog captures a log line that could not be parsed or validated, kept
// around for later inspection.
type FailedLog struct {
	Timestamp    time.Time     `json:"timestamp"`
	OriginalLine string        `json:"original_line"`
	Reason       FailureReason `json:"reason"`
	Message      string        `json:"message"`
}
