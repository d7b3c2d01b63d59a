/******************************************************************************
 * Copyright (c) 2025-2026 Tenebris Technologies Inc.                         *
 * Please see the LICENSE file for details                                    *
 ******************************************************************************/

package global

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	hoursPattern   = regexp.MustCompile(`(\d+)\s*h`)
	minutesPattern = regexp.MustCompile(`(\d+)\s*m`)
)

// ParseDuration converts a human duration such as "2h", "45m" or "1h 30m" to
// milliseconds. A bare number is taken as minutes.
func ParseDuration(s string) (int64, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0, fmt.Errorf("duration cannot be empty")
	}

	var total int64
	h := hoursPattern.FindStringSubmatch(s)
	m := minutesPattern.FindStringSubmatch(s)

	if h != nil {
		n, _ := strconv.ParseInt(h[1], 10, 64)
		total += n * int64(time.Hour/time.Millisecond)
	}
	if m != nil {
		n, _ := strconv.ParseInt(m[1], 10, 64)
		total += n * int64(time.Minute/time.Millisecond)
	}

	if h == nil && m == nil {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid duration format: %s", s)
		}
		total = n * int64(time.Minute/time.Millisecond)
	}

	if total < 0 {
		return 0, fmt.Errorf("duration cannot be negative: %s", s)
	}
	return total, nil
}

// FormatDuration renders milliseconds as "Xh Ym" or "Ym"
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return "0m"
	}
	hours := ms / int64(time.Hour/time.Millisecond)
	minutes := (ms % int64(time.Hour/time.Millisecond)) / int64(time.Minute/time.Millisecond)
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// isoLayouts are tried in order by ParseISOTime
var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseISOTime parses an ISO 8601 date or date-time. Values without a zone are
// interpreted in loc (UTC when loc is nil).
func ParseISOTime(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range isoLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 date: %q", s)
}

// ParseISOMillis parses an ISO 8601 value into a Unix timestamp in milliseconds
func ParseISOMillis(s string) (int64, error) {
	t, err := ParseISOTime(s, time.UTC)
	if err != nil {
		return 0, err
	}
	return t.UnixMilli(), nil
}
