package boardview

import (
	"fmt"
	"time"

	"github.com/HyperCol/taipo-fire-php-re/internal/domain"
)

// DisplayZone wall clock used for absolute times (the estate is in Hong Kong).
var DisplayZone = time.FixedZone("HKT", 8*60*60)

// FormatRelativeTime buckets the time elapsed since ts. Values are truncated,
// not rounded, and never grammar-corrected ("1 hours ago"). Empty or
// unparseable input yields "". Future timestamps read as "just now".
func FormatRelativeTime(ts string, now time.Time) string {
	t, ok := domain.ParseTimestamp(ts)
	if !ok {
		return ""
	}
	minutes := int64(now.Sub(t) / time.Minute)
	switch {
	case minutes < 1:
		return "just now"
	case minutes < 60:
		return fmt.Sprintf("%d minutes ago", minutes)
	case minutes < 24*60:
		return fmt.Sprintf("%d hours ago", minutes/60)
	default:
		return fmt.Sprintf("%d days ago", minutes/(24*60))
	}
}

// FormatFullTime renders ts like "Nov 27 16:30" in DisplayZone, or "-".
func FormatFullTime(ts string) string {
	t, ok := domain.ParseTimestamp(ts)
	if !ok {
		return "-"
	}
	return t.In(DisplayZone).Format("Jan 2 15:04")
}
