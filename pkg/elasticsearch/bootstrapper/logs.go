package bootstrapper

import "time"

const DefaultTemplateName = "logs_template"

const indexPrefix = "logs"

// IndexPattern matches every daily log index. Used both in the template and
// for cross-day queries.
func IndexPattern() string {
	return indexPrefix + "-*"
}

// DailyIndexName returns the index a log entry belongs to based on its own
// timestamp, one index per UTC calendar day.
func DailyIndexName(t time.Time) string {
	return indexPrefix + "-" + t.UTC().Format("2006.01.02")
}

func logsIndexTemplate(policyName string) map[string]interface{} {
	return map[string]interface{}{
		"index_patterns": []string{IndexPattern()},
		"priority":       200,
		"template": map[string]interface{}{
			"settings": map[string]interface{}{
				"number_of_shards":     1,
				"number_of_replicas":   1,
				"index.lifecycle.name": policyName,
			},
			"mappings": map[string]interface{}{
				"properties": map[string]interface{}{
					"timestamp": map[string]interface{}{
						"type": "date",
					},
					"event_type": map[string]interface{}{
						"type": "keyword",
					},
					"session_id": map[string]interface{}{
						"type": "keyword",
					},
					"user_id": map[string]interface{}{
						"type": "keyword",
					},
					"ip_address": map[string]interface{}{
						"type": "ip",
					},
					"user_agent": map[string]interface{}{
						"type": "text",
						"fields": map[string]interface{}{
							"keyword": map[string]interface{}{
								"type":         "keyword",
								"ignore_above": 512,
							},
						},
					},
					"location": map[string]interface{}{
						"type": "keyword",
					},
					"device_type": map[string]interface{}{
						"type": "keyword",
					},
					"os_name": map[string]interface{}{
						"type": "keyword",
					},
					"data": map[string]interface{}{
						"type":    "object",
						"dynamic": true,
					},
				},
			},
		},
	}
}
