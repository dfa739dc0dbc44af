package tui

import (
	"fmt"
	"time"
)

// FormatBytes formats bytes into human-readable format (e.g., "1.5 MB")
func FormatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// FormatDuration formats duration into human-readable format (e.g., "2m 30s")
func FormatDuration(duration time.Duration) string {
	duration = duration.Round(time.Second)
	hours := duration / time.Hour
	duration %= time.Hour
	minutes := duration / time.Minute
	duration %= time.Minute
	seconds := duration / time.Second

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}

	return fmt.Sprintf("%ds", seconds)
}

// FormatRate formats a count per second (e.g., "1250 entries/s")
func FormatRate(count int, elapsed time.Duration) string {
	if elapsed <= 0 {
		return "0 entries/s"
	}

	return fmt.Sprintf("%.0f entries/s", float64(count)/elapsed.Seconds())
}

// TruncatePath shortens p to at most maxLen runes by eliding its middle.
func TruncatePath(p string, maxLen int) string {
	runes := []rune(p)
	if len(runes) <= maxLen {
		return p
	}

	keep := maxLen - len(PathEllipsis)
	if keep <= 0 {
		return string(runes[len(runes)-maxLen:])
	}

	head := keep / 2 //nolint:mnd // split evenly
	tail := keep - head

	return string(runes[:head]) + PathEllipsis + string(runes[len(runes)-tail:])
}
