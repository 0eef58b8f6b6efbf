package status

import (
	"fmt"
	"time"
)

// Formatter defines how a run summary should be formatted
type Formatter interface {
	// FormatSummary formats the end of run message
	FormatSummary(c Counts, d time.Duration) string

	// FormatFailure formats a single failure
	FormatFailure(f Failure) string
}

// DefaultFormatter provides a default implementation of Formatter
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// FormatSummary formats the end of run message with emojis
func (f *DefaultFormatter) FormatSummary(c Counts, d time.Duration) string {
	msg := fmt.Sprintf("sorted %d/%d files (%s) in %s", c.Copied, c.Total(), formatBytes(c.Bytes), d.Round(time.Millisecond))
	if c.Skipped > 0 {
		msg += fmt.Sprintf(", %d skipped", c.Skipped)
	}
	if c.Failed > 0 || c.Skipped > 0 {
		return "⚠️  " + msg
	}
	return "✅ " + msg
}

// FormatFailure formats a failure with emoji
func (f *DefaultFormatter) FormatFailure(fail Failure) string {
	if fail.Err == nil {
		return fmt.Sprintf("❌ %s %s", fail.Outcome, fail.Path)
	}
	return fmt.Sprintf("❌ %s %s: %v", fail.Outcome, fail.Path, fail.Err)
}

func formatBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
