package cache

// Key builders keep every Redis key for one event under a common prefix so
// an event teardown can sweep them.

// CheckinStatsKey caches the aggregated check-in counters for one event.
func CheckinStatsKey(eventID string) string {
	return "wedly:event:" + eventID + ":checkin:stats"
}
