package timeutil

import (
	"strconv"
	"strings"
)

// durationGrammar is one accepted spelling of a playlist duration. Fields are
// the colon/dot separated integer groups; the last group is fractional when
// hasFraction is set.
type durationGrammar struct {
	separators  string
	hasFraction bool
	compute     func(parts []int64) int64
}

// Grammars are tried in priority order. The first one that consumes the whole
// input wins.
var durationGrammars = []durationGrammar{
	// H:MM:SS.fff
	{separators: "::.", hasFraction: true, compute: func(p []int64) int64 { return p[0]*3600 + p[1]*60 + p[2] }},
	// H:MM:SS
	{separators: "::", compute: func(p []int64) int64 { return p[0]*3600 + p[1]*60 + p[2] }},
	// MM:SS.fff
	{separators: ":.", hasFraction: true, compute: func(p []int64) int64 { return p[0]*60 + p[1] }},
	// MM:SS
	{separators: ":", compute: func(p []int64) int64 { return p[0]*60 + p[1] }},
	// MM.SS
	{separators: ".", compute: func(p []int64) int64 { return p[0]*60 + p[1] }},
	// bare seconds
	{separators: "", compute: func(p []int64) int64 { return p[0] }},
}

// ParseDuration converts the free-form durations found in playlists and feeds
// into whole seconds.
//
//	"01:00:01.01" -> 3601
//	"24.59"       -> 1499
//	"500"         -> 500
//
// A value whose integral part is zero but whose fraction is not rounds up to 1.
// The second return value is false when no grammar matches.
func ParseDuration(raw string) (int64, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, false
	}

	for _, g := range durationGrammars {
		parts, ok := splitDuration(s, g.separators)
		if !ok {
			continue
		}
		seconds := g.compute(parts)
		if g.hasFraction && seconds == 0 && parts[len(parts)-1] > 0 {
			seconds = 1
		}
		return seconds, true
	}
	return 0, false
}

// splitDuration matches s against a sequence of digit groups joined by exactly
// the given separators, in order.
func splitDuration(s string, separators string) ([]int64, bool) {
	parts := make([]int64, 0, len(separators)+1)
	rest := s
	for i := 0; i <= len(separators); i++ {
		end := len(rest)
		if i < len(separators) {
			end = strings.IndexByte(rest, separators[i])
			if end < 0 {
				return nil, false
			}
		}
		group := rest[:end]
		if group == "" || !isDigits(group) {
			return nil, false
		}
		n, err := strconv.ParseInt(group, 10, 64)
		if err != nil {
			return nil, false
		}
		parts = append(parts, n)
		if i < len(separators) {
			rest = rest[end+1:]
		}
	}
	return parts, true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
