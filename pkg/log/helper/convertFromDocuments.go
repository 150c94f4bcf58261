package helper

import (
	"fmt"
	"time"

	"github.com/shopmetrics/logpipeline/pkg/log/model"
)

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp format '%s'", value)
}

func ConvertFromDocuments(documents []map[string]interface{}) ([]model.LogEntry, error) {
	var logs []model.LogEntry

	for _, item := range documents {
		doc := model.LogEntry{}

		timestamp, ok := item["timestamp"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert timestamp to string %v", item["timestamp"])
		}
		timestampParsed, err := parseTimestamp(timestamp)
		if err != nil {
			return nil, fmt.Errorf("failed to convert timestamp '%s' to time.Time: %v", timestamp, err)
		}
		doc.Timestamp = timestampParsed

		eventType, ok := item["event_type"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert event_type to string")
		}
		doc.EventType = eventType

		sessionId, ok := item["session_id"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert session_id to string")
		}
		doc.SessionId = sessionId

		userId, ok := item["user_id"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert user_id to string")
		}
		doc.UserId = userId

		ipAddress, ok := item["ip_address"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert ip_address to string")
		}
		doc.IpAddress = ipAddress

		userAgent, ok := item["user_agent"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert user_agent to string")
		}
		doc.UserAgent = userAgent

		location, ok := item["location"].(string)
		if !ok {
			return nil, fmt.Errorf("failed to convert location to string")
		}
		doc.Location = location

		if deviceType, ok := item["device_type"].(string); ok {
			doc.DeviceType = deviceType
		}
		if osName, ok := item["os_name"].(string); ok {
			doc.OsName = osName
		}

		if data, ok := item["data"].(map[string]interface{}); ok {
			doc.Data = data
		}

		if id, ok := item["_id"].(string); ok {
			doc.Id = id
		}
		logs = append(logs, doc)
	}

	return logs, nil
}
