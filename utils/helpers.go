package utils

// IsValidInterval reports whether interval is one of the time-bucket units
// the stats queries accept. The names are interpolated into SQL, so
// anything outside this set must be rejected before it gets near a query.
func IsValidInterval(interval string) bool {
	switch interval {
	case "Minute", "Hour", "Day", "Week", "Month", "Quarter", "Year":
		return true
	}
	return false
}
