package token

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"time"
)

// numericDate reads an RFC 7519 NumericDate as whole seconds. present is
// false when the claim is absent; err is set when it is not a number.
// Values outside the int64 range saturate at its bounds.
func numericDate(claims map[string]any, name string) (secs int64, present bool, err error) {
	v, ok := claims[name]
	if !ok {
		return 0, false, nil
	}
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, true, fmt.Errorf("%s: %w", name, err)
		}
		return floorSeconds(name, f)
	case float64:
		return floorSeconds(name, n)
	case int64:
		return n, true, nil
	case int:
		return int64(n), true, nil
	default:
		return 0, true, fmt.Errorf("%s is %T, not a number", name, v)
	}
}

func floorSeconds(name string, f float64) (int64, bool, error) {
	switch {
	case math.IsNaN(f):
		return 0, true, fmt.Errorf("%s is not a number", name)
	case f >= math.MaxInt64:
		return math.MaxInt64, true, nil
	case f < math.MinInt64:
		return math.MinInt64, true, nil
	}
	return int64(math.Floor(f)), true, nil
}

// Bounds of the years 0001 through 9999, the range time.Time marshals to JSON.
const (
	minTimeClaim = -62135596800
	maxTimeClaim = 253402300799
)

// timeClaim converts a NumericDate claim to UTC, or the zero time when the
// claim is absent, malformed or outside years 0001 through 9999.
func timeClaim(claims map[string]any, name string) time.Time {
	secs, present, err := numericDate(claims, name)
	if !present || err != nil || secs < minTimeClaim || secs > maxTimeClaim {
		return time.Time{}
	}
	return time.Unix(secs, 0).UTC()
}

func stringClaim(claims map[string]any, name string) string {
	s, _ := claims[name].(string)
	return s
}

// stringList accepts a JSON string or an array of strings. Non-string
// array members and empty strings are dropped.
func stringList(v any) []string {
	switch l := v.(type) {
	case string:
		if l == "" {
			return []string{}
		}
		return []string{l}
	case []string:
		out := make([]string, 0, len(l))
		for _, s := range l {
			if s != "" {
				out = append(out, s)
			}
		}
		return out
	case []any:
		out := make([]string, 0, len(l))
		for _, e := range l {
			if s, ok := e.(string); ok && s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

// audienceContains reports whether aud, a string or array of strings,
// names want.
func audienceContains(aud any, want string) bool {
	if s, ok := aud.(string); ok {
		return s == want
	}
	return slices.Contains(stringList(aud), want)
}
