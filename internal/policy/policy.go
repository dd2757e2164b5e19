// Package policy loads the optional JSON data file that tunes identity
// resolution and version reconciliation: name-cleanup patterns, name
// replacements, version-equivalence groups, roman-numeral substitutions,
// goodie product ids, and delisted product names.
//
// A missing or empty file yields an all-empty policy. A malformed file is a
// fatal input error. A section of the wrong type is logged and replaced by
// its empty value so one bad entry does not take the whole run down.
package policy

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// Logger is the minimal logging surface needed while loading the data file.
type Logger interface {
	Info(string, ...interface{})
	Warn(string, ...interface{})
}

// Policy holds the immutable reconciliation policy data for one run.
type Policy struct {
	// NameCleanup patterns are removed (case-insensitively) from raw
	// product names before searching, in configured order.
	NameCleanup []*regexp.Regexp

	// ReplaceNames maps an extracted product name to its canonical
	// catalog title.
	ReplaceNames map[string]string

	// MatchVersions maps a product id to groups of version strings that
	// are considered equal despite textual difference.
	MatchVersions map[string][][]string

	// RomanNumerals maps a roman numeral word to its decimal value, used
	// for search retries.
	RomanNumerals map[string]int

	// GoodieIDs maps root game ids of bonus-content installers to their
	// display names.
	GoodieIDs map[string]string

	// DelistedGames holds product names that are skipped entirely.
	DelistedGames map[string]bool
}

// Empty returns a policy with every section empty. Used when no data file
// exists.
func Empty() *Policy {
	return &Policy{
		ReplaceNames:  map[string]string{},
		MatchVersions: map[string][][]string{},
		RomanNumerals: map[string]int{},
		GoodieIDs:     map[string]string{},
		DelistedGames: map[string]bool{},
	}
}

// Load reads the JSON data file at path. A missing file is not an error;
// malformed content is. The file is decoded with yaml.v3, which accepts
// JSON while preserving key case (product names and numerals are
// case-sensitive).
func Load(path string, log Logger) (*Policy, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn("Data file %q doesn't exist. Loading empty content.", path)
			return Empty(), nil
		}
		return nil, fmt.Errorf("reading data file %q: %w", path, err)
	}

	var sections map[string]interface{}
	if err := yaml.Unmarshal(raw, &sections); err != nil {
		return nil, fmt.Errorf("decoding data file %q: %w", path, err)
	}
	if len(sections) == 0 {
		log.Info("No data file or data file empty, using empty policy data.")
		return Empty(), nil
	}

	p := Empty()
	p.NameCleanup = loadCleanupPatterns(sections, log)
	p.ReplaceNames = loadStringMap(sections, log, "Replace_Names")
	p.MatchVersions = loadVersionGroups(sections, log)
	p.RomanNumerals = loadNumerals(sections, log)
	p.GoodieIDs = loadStringMap(sections, log, "Goodies_ID")
	p.DelistedGames = loadNameSet(sections, log, "Delisted_Games")
	return p, nil
}

// VersionsMatch reports whether local and remote co-occur in any
// equivalence group configured for productID.
func (p *Policy) VersionsMatch(productID, local, remote string) bool {
	for _, group := range p.MatchVersions[productID] {
		foundLocal, foundRemote := false, false
		for _, v := range group {
			if v == local {
				foundLocal = true
			}
			if v == remote {
				foundRemote = true
			}
		}
		if foundLocal && foundRemote {
			return true
		}
	}
	return false
}

// SortedNumerals returns the configured roman numerals in deterministic
// order, longest first so "VIII" is consumed before "III" or "II" can
// match inside it.
func (p *Policy) SortedNumerals() []string {
	numerals := make([]string, 0, len(p.RomanNumerals))
	for n := range p.RomanNumerals {
		numerals = append(numerals, n)
	}
	sort.Slice(numerals, func(i, j int) bool {
		if len(numerals[i]) != len(numerals[j]) {
			return len(numerals[i]) > len(numerals[j])
		}
		return numerals[i] < numerals[j]
	})
	return numerals
}

// --- Section loaders (type-tolerant, matching the data file contract) ---

func loadCleanupPatterns(sections map[string]interface{}, log Logger) []*regexp.Regexp {
	raw, present := sections["Strings_To_Remove"]
	if !present || raw == nil {
		return nil
	}
	list, ok := raw.([]interface{})
	if !ok {
		log.Warn("Content type of \"Strings_To_Remove\" is invalid, it should be a list and currently is %T", raw)
		return nil
	}
	var patterns []*regexp.Regexp
	for _, item := range list {
		s, ok := item.(string)
		if !ok {
			log.Warn("Ignoring non-string entry %v in \"Strings_To_Remove\"", item)
			continue
		}
		re, err := regexp.Compile("(?i)" + s)
		if err != nil {
			log.Warn("Ignoring invalid pattern %q in \"Strings_To_Remove\": %v", s, err)
			continue
		}
		patterns = append(patterns, re)
	}
	return patterns
}

func loadStringMap(sections map[string]interface{}, log Logger, key string) map[string]string {
	out := map[string]string{}
	raw, present := sections[key]
	if !present || raw == nil {
		return out
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		log.Warn("Content type of %q is invalid, it should be a dict and currently is %T", key, raw)
		return out
	}
	for k, val := range m {
		s, ok := val.(string)
		if !ok {
			log.Warn("Ignoring non-string value for %q in %q", k, key)
			continue
		}
		out[k] = s
	}
	return out
}

func loadVersionGroups(sections map[string]interface{}, log Logger) map[string][][]string {
	out := map[string][][]string{}
	raw, present := sections["Match_Versions"]
	if !present || raw == nil {
		return out
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		log.Warn("Content type of \"Match_Versions\" is invalid, it should be a dict and currently is %T", raw)
		return out
	}
	for id, val := range m {
		groups, ok := val.([]interface{})
		if !ok {
			log.Warn("Data type in data file is invalid, %q should only contain a list of one or more lists.", id)
			continue
		}
		for _, g := range groups {
			items, ok := g.([]interface{})
			if !ok {
				log.Warn("Data type in data file is invalid, %q should only contain a list of one or more lists.", id)
				continue
			}
			if len(items) < 2 {
				log.Warn("List length in data file is invalid, groups for %q need at least two versions.", id)
				continue
			}
			group := make([]string, 0, len(items))
			for _, it := range items {
				s, ok := it.(string)
				if !ok {
					group = nil
					break
				}
				group = append(group, s)
			}
			if group == nil {
				log.Warn("Ignoring non-string version group for %q in \"Match_Versions\"", id)
				continue
			}
			out[id] = append(out[id], group)
		}
	}
	return out
}

func loadNumerals(sections map[string]interface{}, log Logger) map[string]int {
	out := map[string]int{}
	raw, present := sections["Roman_Numerals"]
	if !present || raw == nil {
		return out
	}
	m, ok := raw.(map[string]interface{})
	if !ok {
		log.Warn("Content type of \"Roman_Numerals\" is invalid, it should be a dict and currently is %T", raw)
		return out
	}
	for numeral, val := range m {
		switch n := val.(type) {
		case int:
			out[numeral] = n
		case float64:
			out[numeral] = int(n)
		default:
			log.Warn("Ignoring non-numeric value for %q in \"Roman_Numerals\"", numeral)
		}
	}
	return out
}

func loadNameSet(sections map[string]interface{}, log Logger, key string) map[string]bool {
	out := map[string]bool{}
	raw, present := sections[key]
	if !present || raw == nil {
		return out
	}
	list, ok := raw.([]interface{})
	if !ok {
		log.Warn("Content type of %q is invalid, it should be a list and currently is %T", key, raw)
		return out
	}
	for _, item := range list {
		if s, ok := item.(string); ok {
			out[s] = true
		}
	}
	return out
}
