package aggregation

import (
	"sync"

	"github.com/shopmetrics/logpipeline/pkg/log/model"
)

// Snapshot is a point-in-time copy of the running aggregations.
type Snapshot struct {
	EventTypeCounts      map[string]int64 `json:"event_type_counts"`
	HourlyTraffic        [24]int64        `json:"hourly_traffic"`
	LocationTraffic      map[string]int64 `json:"location_traffic"`
	DeviceTypeTraffic    map[string]int64 `json:"device_type_traffic"`
	OsTraffic            map[string]int64 `json:"os_traffic"`
	PurchaseCount        int64            `json:"purchase_count"`
	PurchaseTotalAmount  float64          `json:"purchase_total_amount"`
	ErrorCounts          map[string]int64 `json:"error_counts"`
	SessionDurationSum   float64          `json:"session_duration_sum"`
	SessionDurationCount int64            `json:"session_duration_count"`
}

// AverageSessionDuration returns the mean session duration in seconds, zero
// when no session has ended yet.
func (s Snapshot) AverageSessionDuration() float64 {
	if s.SessionDurationCount == 0 {
		return 0
	}
	return s.SessionDurationSum / float64(s.SessionDurationCount)
}

// Aggregator maintains real-time traffic aggregations over enriched log
// entries. Safe for concurrent use.
type Aggregator struct {
	mu       sync.Mutex
	snapshot Snapshot
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		snapshot: Snapshot{
			EventTypeCounts:   make(map[string]int64),
			LocationTraffic:   make(map[string]int64),
			DeviceTypeTraffic: make(map[string]int64),
			OsTraffic:         make(map[string]int64),
			ErrorCounts:       make(map[string]int64),
		},
	}
}

func (a *Aggregator) Update(entry *model.LogEntry) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.snapshot.EventTypeCounts[entry.EventType]++
	a.snapshot.HourlyTraffic[entry.Timestamp.UTC().Hour()]++
	a.snapshot.LocationTraffic[entry.Location]++
	a.snapshot.DeviceTypeTraffic[entry.DeviceType]++
	a.snapshot.OsTraffic[entry.OsName]++

	switch entry.EventType {
	case model.EventPurchase:
		a.snapshot.PurchaseCount++
		if amount, ok := toFloat(entry.Data["total_amount"]); ok {
			a.snapshot.PurchaseTotalAmount += amount
		}
	case model.EventError:
		code, ok := entry.Data["error_code"].(string)
		if !ok || code == "" {
			code = "UNKNOWN_ERROR"
		}
		a.snapshot.ErrorCounts[code]++
	case model.EventUserSessionEnd:
		if duration, ok := toFloat(entry.Data["duration_seconds"]); ok {
			a.snapshot.SessionDurationSum += duration
			a.snapshot.SessionDurationCount++
		}
	}
}

// Snapshot returns a deep copy so callers never race with Update.
func (a *Aggregator) Snapshot() Snapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := a.snapshot
	out.EventTypeCounts = copyCounts(a.snapshot.EventTypeCounts)
	out.LocationTraffic = copyCounts(a.snapshot.LocationTraffic)
	out.DeviceTypeTraffic = copyCounts(a.snapshot.DeviceTypeTraffic)
	out.OsTraffic = copyCounts(a.snapshot.OsTraffic)
	out.ErrorCounts = copyCounts(a.snapshot.ErrorCounts)
	return out
}

func copyCounts(in map[string]int64) map[string]int64 {
	out := make(map[string]int64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// toFloat handles the numeric types a decoded JSON payload can carry.
func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
