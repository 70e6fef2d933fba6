// Package format holds the display formatters shared by the CLI and the
// specs table: dates, sizes, status icons, progress and truncation.
package format

import (
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// DateLayout is the display layout for calendar dates.
const DateLayout = "Jan 2, 2006"

var dateInputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Date formats a stored date string. Empty input renders as "-"; input that
// does not parse as a date is returned unchanged.
func Date(value string) string {
	if value == "" {
		return "-"
	}
	for _, layout := range dateInputLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format(DateLayout)
		}
	}
	return value
}

// Time formats t with DateLayout, or "-" for the zero time.
func Time(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format(DateLayout)
}

// Relative renders t relative to now ("3 hours ago"), or "-" for the zero time.
func Relative(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// Size renders a byte count in binary units.
func Size(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	return humanize.IBytes(uint64(bytes))
}

// Percent returns done/total as a rounded percentage, 0 when total is 0.
func Percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(done) / float64(total) * 100))
}

// StatusIcon maps a spec status to its icon.
func StatusIcon(status string) string {
	switch status {
	case "completed":
		return "✅"
	case "in_progress":
		return "⏳"
	case "pending":
		return "⭕"
	default:
		return "❓"
	}
}

// TaskStatusIcon maps a task status to its icon.
func TaskStatusIcon(status string) string {
	switch status {
	case "completed":
		return "✅"
	case "in_progress":
		return "🔄"
	case "pending":
		return "⭕"
	case "blocked":
		return "⛔"
	case "cancelled":
		return "✖"
	default:
		return "❓"
	}
}

// StatusColor picks the terminal color for a spec or task status.
func StatusColor(status string) color.Attribute {
	switch status {
	case "completed":
		return color.FgGreen
	case "in_progress":
		return color.FgYellow
	case "blocked", "cancelled":
		return color.FgRed
	default:
		return color.FgHiBlack
	}
}
