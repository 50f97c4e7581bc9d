package forecast

import "time"

// CurrentIndex returns the largest i with rows[i].Time <= now. The scan runs
// from the tail because "now" usually sits near the end of a short series.
// When every row lies in the future, or rows is empty, it returns 0.
func CurrentIndex(now time.Time, rows []HourlyRecord) int {
	for i := len(rows) - 1; i >= 0; i-- {
		if !rows[i].Time.After(now) {
			return i
		}
	}
	return 0
}
