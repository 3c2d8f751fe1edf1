// ABOUTME: Shared formatting and parsing helpers for CLI commands.
// ABOUTME: Covers time parsing, ID prefixes and colored output.
package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/harperreed/gymlog/internal/models"
)

var (
	faint  = color.New(color.Faint)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
	cyan   = color.New(color.FgCyan)
)

func success(w io.Writer, format string, args ...any) {
	green.Fprintf(w, "✓ "+format+"\n", args...)
}

func removed(w io.Writer, format string, args ...any) {
	yellow.Fprintf(w, "✗ "+format+"\n", args...)
}

// parseTime accepts the formats users type on the command line, in the
// configured zone.
func parseTime(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	formats := []string{
		"2006-01-02 15:04",
		"2006-01-02T15:04",
		"2006-01-02",
	}
	for _, f := range formats {
		if t, err := time.ParseInLocation(f, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format")
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func padRight(s string, length int) string {
	n := len([]rune(s))
	if n >= length {
		return s
	}
	return s + strings.Repeat(" ", length-n)
}

// describeMetrics renders a set's metrics on one line.
func describeMetrics(m models.Metrics) string {
	switch v := m.(type) {
	case models.Weighted:
		return fmt.Sprintf("%g kg × %d", v.Weight, v.Reps)
	case models.Bodyweight:
		if v.AddedWeight > 0 {
			return fmt.Sprintf("%d reps (+%g kg)", v.Reps, v.AddedWeight)
		}
		return fmt.Sprintf("%d reps", v.Reps)
	case models.Timed:
		s := fmt.Sprintf("%g min", v.Duration)
		if v.Distance != nil {
			s += fmt.Sprintf(" | %g km", *v.Distance)
		}
		if v.Elevation != nil {
			s += fmt.Sprintf(" | %g m", *v.Elevation)
		}
		return s
	}
	return ""
}

func printSet(w io.Writer, s *models.Set, loc *time.Location) {
	fmt.Fprintf(w, "%s %s %s %s\n",
		faint.Sprint(shortID(s.ID)),
		faint.Sprint(s.Timestamp.In(loc).Format("2006-01-02 15:04")),
		padRight(truncate(s.Exercise, 24), 24),
		describeMetrics(s.Metrics))
}
