package service

import (
	"fmt"
	"time"
)

var timeAgoBuckets = []struct {
	unit  string
	below int64
	size  int64
}{
	{"second", 60, 1},
	{"minute", 3600, 60},
	{"hour", 86400, 3600},
	{"day", 30 * 86400, 86400},
	{"month", 365 * 86400, 30 * 86400},
}

// TimeAgo renders the time elapsed between t and now as "N unit(s) ago".
// Timestamps in the future count as zero seconds.
func TimeAgo(t, now time.Time) string {
	seconds := int64(now.Sub(t) / time.Second)
	if seconds < 0 {
		seconds = 0
	}

	unit, n := "year", seconds/(365*86400)
	for _, b := range timeAgoBuckets {
		if seconds < b.below {
			unit, n = b.unit, seconds/b.size
			break
		}
	}

	if n != 1 {
		unit += "s"
	}
	return fmt.Sprintf("%d %s ago", n, unit)
}
