package reminder

import (
	"fmt"
	"math"
	"time"
)

// FormatRelativeTime renders the distance between now and scheduledAt in
// Vietnamese, e.g. "Quá hạn 3 giờ" or "Sau 15 phút".
func FormatRelativeTime(scheduledAt, now time.Time) string {
	diff := scheduledAt.Sub(now)
	mins := roundHalfUp(float64(diff) / float64(time.Minute))
	hours := roundHalfUp(float64(diff) / float64(time.Hour))
	days := roundHalfUp(float64(diff) / float64(24*time.Hour))

	if diff < 0 {
		mins, hours, days = abs(mins), abs(hours), abs(days)
		switch {
		case mins < 60:
			return fmt.Sprintf("Quá hạn %d phút", mins)
		case hours < 24:
			return fmt.Sprintf("Quá hạn %d giờ", hours)
		}
		return fmt.Sprintf("Quá hạn %d ngày", days)
	}

	switch {
	case mins < 60:
		return fmt.Sprintf("Sau %d phút", mins)
	case hours < 24:
		return fmt.Sprintf("Sau %d giờ", hours)
	case days == 1:
		return "Ngày mai"
	}
	return fmt.Sprintf("%d ngày nữa", days)
}

// roundHalfUp rounds halves toward positive infinity, so -1.5 becomes -1.
func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
