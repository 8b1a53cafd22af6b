package notify

import (
	"fmt"
	"strings"
	"time"
)

// FormatDuration renders a track duration as m:ss or h:mm:ss. Zero means a
// live stream.
func FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "Live"
	}
	total := int(d.Seconds())
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60
	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// ProgressBar renders playback progress as a fixed-width bar.
func ProgressBar(position, total time.Duration, width int) string {
	if width <= 0 {
		width = 20
	}
	if total <= 0 {
		return strings.Repeat("░", width)
	}
	filled := int(float64(width) * float64(position) / float64(total))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

// Truncate caps text at max runes, appending an ellipsis when cut.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
