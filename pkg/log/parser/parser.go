package parser

import (
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopmetrics/logpipeline/pkg/log/model"
	"go.uber.org/zap"
)

// maxFailedLogs bounds the in-memory capture of unparseable lines; older
// entries are discarded first.
const maxFailedLogs = 1000

// timestampLayouts accepts RFC3339 timestamps as well as the zoneless ISO
// form the application emits. Zoneless timestamps are taken as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

type Stats struct {
	Parsed int64 `json:"parsed"`
	Failed int64 `json:"failed"`
}

// Parser parses and validates JSON log lines. Safe for concurrent use.
type Parser struct {
	validate   *validator.Validate
	logger     *zap.Logger
	mu         sync.Mutex
	stats      Stats
	failedLogs []model.FailedLog
}

func NewParser(logger *zap.Logger) *Parser {
	return &Parser{
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger,
	}
}

// rawLogEntry mirrors the wire schema with the timestamp still a string so
// that format errors can be reported separately from structural ones.
type rawLogEntry struct {
	Timestamp string                 `json:"timestamp" validate:"required"`
	EventType string                 `json:"event_type" validate:"required"`
	SessionId string                 `json:"session_id" validate:"required"`
	UserId    string                 `json:"user_id" validate:"required"`
	IpAddress string                 `json:"ip_address" validate:"required,ip"`
	UserAgent string                 `json:"user_agent" validate:"required"`
	Location  string                 `json:"location" validate:"required"`
	Data      map[string]interface{} `json:"data"`
}

// ParseLine parses a single JSON log line into a LogEntry. On failure the
// line is recorded with a reason and nil is returned; a malformed line never
// produces an error that would stop the caller's loop.
func (p *Parser) ParseLine(line string) *model.LogEntry {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	var raw rawLogEntry
	if err := json.Unmarshal([]byte(trimmed), &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			p.recordFailure(trimmed, model.ReasonValidationFailed, "field "+typeErr.Field+" has incorrect type")
		} else {
			p.recordFailure(trimmed, model.ReasonJsonDecodeError, err.Error())
		}
		return nil
	}

	if err := p.validate.Struct(raw); err != nil {
		p.recordFailure(trimmed, model.ReasonValidationFailed, err.Error())
		return nil
	}
	if raw.Data == nil {
		p.recordFailure(trimmed, model.ReasonValidationFailed, "missing required field data")
		return nil
	}

	timestamp, err := parseTimestamp(raw.Timestamp)
	if err != nil {
		p.recordFailure(trimmed, model.ReasonInvalidTimestamp, "invalid timestamp format: "+raw.Timestamp)
		return nil
	}

	p.mu.Lock()
	p.stats.Parsed++
	p.mu.Unlock()

	return &model.LogEntry{
		Timestamp: timestamp,
		EventType: raw.EventType,
		SessionId: raw.SessionId,
		UserId:    raw.UserId,
		IpAddress: raw.IpAddress,
		UserAgent: raw.UserAgent,
		Location:  raw.Location,
		Data:      raw.Data,
	}
}

func parseTimestamp(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range timestampLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func (p *Parser) recordFailure(line string, reason model.FailureReason, message string) {
	p.logger.Warn("Failed to parse log line",
		zap.String("reason", string(reason)),
		zap.String("message", message),
	)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stats.Failed++
	p.failedLogs = append(p.failedLogs, model.FailedLog{
		Timestamp:    time.Now().UTC(),
		OriginalLine: line,
		Reason:       reason,
		Message:      message,
	})
	if len(p.failedLogs) > maxFailedLogs {
		p.failedLogs = p.failedLogs[len(p.failedLogs)-maxFailedLogs:]
	}
}

func (p *Parser) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stats
}

// FailedLogs returns a copy of the captured failures.
func (p *Parser) FailedLogs() []model.FailedLog {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.FailedLog, len(p.failedLogs))
	copy(out, p.failedLogs)
	return out
}
