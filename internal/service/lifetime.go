package service

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultTokenLifetime is used when no lifetime is configured.
const DefaultTokenLifetime = 7 * 24 * time.Hour

// maxLifetimeLen matches the input limit of the "ms" format.
const maxLifetimeLen = 100

var lifetimePattern = regexp.MustCompile(`^(\d*\.?\d+) *([a-z]+)?$`)

var lifetimeUnits = map[string]time.Duration{
	"milliseconds": time.Millisecond,
	"millisecond":  time.Millisecond,
	"msecs":        time.Millisecond,
	"msec":         time.Millisecond,
	"ms":           time.Millisecond,
	"seconds":      time.Second,
	"second":       time.Second,
	"secs":         time.Second,
	"sec":          time.Second,
	"s":            time.Second,
	"minutes":      time.Minute,
	"minute":       time.Minute,
	"mins":         time.Minute,
	"min":          time.Minute,
	"m":            time.Minute,
	"hours":        time.Hour,
	"hour":         time.Hour,
	"hrs":          time.Hour,
	"hr":           time.Hour,
	"h":            time.Hour,
	"days":         24 * time.Hour,
	"day":          24 * time.Hour,
	"d":            24 * time.Hour,
	"weeks":        7 * 24 * time.Hour,
	"week":         7 * 24 * time.Hour,
	"w":            7 * 24 * time.Hour,
	"years":        365*24*time.Hour + 6*time.Hour,
	"year":         365*24*time.Hour + 6*time.Hour,
	"yrs":          365*24*time.Hour + 6*time.Hour,
	"yr":           365*24*time.Hour + 6*time.Hour,
	"y":            365*24*time.Hour + 6*time.Hour,
}

// ParseLifetime turns a configured token lifetime into a duration, reading
// it the way JWT_EXPIRES_IN has always been read: a number with an optional
// unit ("7d", "7 days", "2 hours", "1.5h", "1 week"), where a bare number
// counts milliseconds. Compound Go durations ("168h30m") are accepted as
// well. An empty string yields DefaultTokenLifetime.
func ParseLifetime(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultTokenLifetime, nil
	}
	if len(s) > maxLifetimeLen {
		return 0, fmt.Errorf("invalid token lifetime %q: too long", s)
	}

	m := lifetimePattern.FindStringSubmatch(strings.ToLower(s))
	if m == nil {
		if d, err := time.ParseDuration(s); err == nil {
			return checkLifetime(s, d)
		}
		return 0, fmt.Errorf("invalid token lifetime %q", s)
	}

	unit := time.Millisecond
	if m[2] != "" {
		var ok bool
		if unit, ok = lifetimeUnits[m[2]]; !ok {
			return 0, fmt.Errorf("invalid token lifetime %q: unknown unit %q", s, m[2])
		}
	}
	n, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token lifetime %q: %w", s, err)
	}
	if n >= float64(math.MaxInt64)/float64(unit) {
		return 0, fmt.Errorf("invalid token lifetime %q: out of range", s)
	}
	return checkLifetime(s, time.Duration(n*float64(unit)))
}

func checkLifetime(raw string, d time.Duration) (time.Duration, error) {
	if d <= 0 {
		return 0, fmt.Errorf("invalid token lifetime %q: must be positive", raw)
	}
	return d, nil
}
