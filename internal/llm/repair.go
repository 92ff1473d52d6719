package llm

import "regexp"

var (
	reDoubleColonTime = regexp.MustCompile(`T(\d{1,2})::(\d{2})`)
	reShortTime       = regexp.MustCompile(`T(\d{1,2}):(\d{2})"`)
)

// ExtractJSONObject returns the first balanced {...} span of s. Braces inside
// JSON strings are ignored. ok is false when no object closes.
func ExtractJSONObject(s string) (string, bool) {
	start := -1
	depth := 0
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if start < 0 {
			if c == '{' {
				start, depth = i, 1
			}
			continue
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}

// RepairTimestamps fixes the two time shapes models commonly emit:
// "T12::00" and a missing seconds field before the closing quote.
func RepairTimestamps(s string) string {
	s = reDoubleColonTime.ReplaceAllString(s, "T${1}:${2}:00")
	return reShortTime.ReplaceAllString(s, `T${1}:${2}:00"`)
}
