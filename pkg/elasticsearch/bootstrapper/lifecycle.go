package bootstrapper

import "fmt"

const DefaultPolicyName = "logs_policy"
const DefaultRetentionDays = 30

// lifecyclePolicy builds the ILM policy for the daily log indices: a hot phase
// without rollover (one index per calendar day already bounds index size) and
// a delete phase once an index is older than the retention window.
func lifecyclePolicy(retentionDays int) map[string]interface{} {
	return map[string]interface{}{
		"policy": map[string]interface{}{
			"phases": map[string]interface{}{
				"hot": map[string]interface{}{
					"min_age": "0ms",
					"actions": map[string]interface{}{
						"set_priority": map[string]interface{}{
							"priority": 100,
						},
					},
				},
				"delete": map[string]interface{}{
					"min_age": fmt.Sprintf("%dd", retentionDays),
					"actions": map[string]interface{}{
						"delete": map[string]interface{}{},
					},
				},
			},
		},
	}
}
