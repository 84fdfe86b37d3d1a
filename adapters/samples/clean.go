package samples

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DurationColumns hold elapsed times in contact-centre exports. Their values
// are converted to minutes.
var DurationColumns = map[string]bool{
	"handle_time":     true,
	"speed_of_answer": true,
	"accept_time":     true,
}

// NormalizeHeader lower-cases a header and replaces spaces with underscores,
// so "Handle Time" and "handle_time" name the same column.
func NormalizeHeader(header string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(header)), " ", "_")
}

// isMissing reports placeholder cells: blanks and a lone dash.
func isMissing(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw == "" || raw == "-"
}

// ParseValue converts one cell of column into a number. ok is false for missing
// cells, including NaN and infinity spellings; err is set for cells that are
// present but cannot be parsed.
func ParseValue(column, raw string) (value float64, ok bool, err error) {
	if isMissing(raw) {
		return 0, false, nil
	}
	raw = strings.TrimSpace(raw)

	if DurationColumns[NormalizeHeader(column)] {
		d, err := ParseDuration(raw)
		if err != nil {
			return 0, false, err
		}
		return d.Minutes(), true, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fmt.Errorf("column %s: %q is not a number", column, raw)
	}
	// ParseFloat accepts "NaN" and "Inf"; exports use them as placeholders.
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, nil
	}
	return v, true, nil
}

// ParseDuration accepts clock notation ("01:02:03", "00:00:07.5", "1 days 00:10:00")
// as well as Go duration strings ("1m30s").
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)

	var days time.Duration
	if idx := strings.Index(raw, " day"); idx > 0 {
		n, err := strconv.Atoi(strings.TrimSpace(raw[:idx]))
		if err != nil {
			return 0, fmt.Errorf("invalid day count in duration %q", raw)
		}
		days = time.Duration(n) * 24 * time.Hour
		rest := raw[idx+len(" day"):]
		rest = strings.TrimPrefix(rest, "s")
		raw = strings.TrimSpace(rest)
		if raw == "" {
			return days, nil
		}
	}

	if !strings.Contains(raw, ":") {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		return days + d, nil
	}

	parts := strings.Split(raw, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("invalid clock duration %q, want HH:MM:SS", raw)
	}
	hours, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("invalid hours in duration %q", raw)
	}
	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes >= 60 {
		return 0, fmt.Errorf("invalid minutes in duration %q", raw)
	}
	seconds, err := strconv.ParseFloat(parts[2], 64)
	if err != nil || seconds < 0 || seconds >= 60 {
		return 0, fmt.Errorf("invalid seconds in duration %q", raw)
	}

	d := time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second))
	return days + d, nil
}
