package stats

import (
	"fmt"
	"time"
)

var nowFunc = time.Now

// RelativeAge describes how long ago t was, relative to now.
func RelativeAge(t, now time.Time) string {
	diff := now.Sub(t)
	seconds := int(diff / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	months := days / 30

	switch {
	case months == 1:
		return "1 month ago"
	case months > 1:
		return fmt.Sprintf("%d months ago", months)
	case days > 0:
		return fmt.Sprintf("%dd ago", days)
	case hours > 0:
		return fmt.Sprintf("%dh ago", hours)
	case minutes > 0:
		return fmt.Sprintf("%dmin ago", minutes)
	case seconds > 0:
		return fmt.Sprintf("%ds ago", seconds)
	default:
		return "just now"
	}
}
