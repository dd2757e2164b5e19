package naming

import (
	"regexp"
	"strings"
)

// Characters that are illegal in Windows filenames. A version extracted
// from a filename can never contain them, so both sides of a comparison
// are purged before matching.
var illegalVersionChars = []byte{'#', '!', '?', '\\', '/', '~', '|', '&', '$'}

// NormalizeVersionName canonicalizes a version string for comparison:
// leading and trailing runs of illegal filesystem characters are purged
// (each character independently, both ends), underscores become spaces,
// and surrounding whitespace plus trailing periods are trimmed.
// The function is idempotent.
func NormalizeVersionName(version string) string {
	s := version
	for {
		before := s
		for _, c := range illegalVersionChars {
			s = trimLeadingRun(s, c)
			s = trimTrailingRun(s, c)
		}
		// Stripping one character can expose a run of another, so purge
		// until stable.
		if s == before {
			break
		}
	}

	s = strings.ReplaceAll(s, "_", " ")
	for {
		t := strings.TrimRight(strings.TrimSpace(s), ".")
		if t == s {
			return s
		}
		s = t
	}
}

// trimLeadingRun removes a leading run of c. A string consisting only of c
// keeps its last character, so repeated application is stable.
func trimLeadingRun(s string, c byte) string {
	i := 0
	for i < len(s) && s[i] == c {
		i++
	}
	if i == 0 {
		return s
	}
	if i == len(s) {
		return s[len(s)-1:]
	}
	return s[i:]
}

// trimTrailingRun removes a trailing run of c, keeping the first character
// when the whole string is the run.
func trimTrailingRun(s string, c byte) string {
	j := len(s)
	for j > 0 && s[j-1] == c {
		j--
	}
	if j == len(s) {
		return s
	}
	if j == 0 {
		return s[:1]
	}
	return s[:j]
}

// reHyphenNoSpace matches a letter glued to a hyphen and a non-space, the
// typical artifact of a title whose " - " separator lost its spaces.
var reHyphenNoSpace = regexp.MustCompile(`(?i)([a-zá-úñ])-([^\s])`)

// RepairHyphenSpacing rewrites "<letter>-<text>" into "<letter> - <text>"
// until no glued hyphen remains. Each pass spaces out at least one
// offending hyphen and never introduces a new one, so the loop terminates;
// applying the function to its own output is a no-op.
func RepairHyphenSpacing(name string) string {
	for {
		repaired := reHyphenNoSpace.ReplaceAllString(name, "$1 - $2")
		if repaired == name {
			return name
		}
		name = repaired
	}
}
