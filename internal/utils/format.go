package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"
)

var stderr io.Writer = os.Stderr

// PrintErr writes a formatted line to stderr. Empty messages are dropped.
func PrintErr(format string, args ...any) {
	msg := strings.TrimRight(fmt.Sprintf(format, args...), "\n")
	if msg == "" {
		return
	}
	fmt.Fprintln(stderr, msg)
}

// FormatDuration renders run times for logs: milliseconds under a second,
// tenths of a second under a minute, then zero-padded minutes and hours.
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Truncate(100*time.Millisecond).Seconds())
	case d < time.Hour:
		d = d.Truncate(time.Second)
		return fmt.Sprintf("%dm%02ds", int(d/time.Minute), int(d%time.Minute/time.Second))
	default:
		d = d.Truncate(time.Minute)
		return fmt.Sprintf("%dh%02dm", int(d/time.Hour), int(d%time.Hour/time.Minute))
	}
}
