package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ParseDurationEnv reads a duration from an env value. A bare integer means
// seconds; anything else goes through time.ParseDuration. Matching single or
// double quotes around the value are dropped.
func ParseDurationEnv(s string) (time.Duration, error) {
	v := unquote(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("empty duration")
	}
	if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("duration %q: want seconds or a Go duration like 10s: %w", v, err)
	}
	return d, nil
}

func unquote(s string) string {
	if len(s) < 2 {
		return s
	}
	if q := s[0]; (q == '"' || q == '\'') && s[len(s)-1] == q {
		return s[1 : len(s)-1]
	}
	return s
}

// ParseNonNegativeInt parses a base-10 integer that must be >= 0.
func ParseNonNegativeInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
