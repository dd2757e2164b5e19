// Package resolver maps a local installer file onto its GOG product id.
// Identity comes from the archive listing when possible, and from the
// embedded product name plus a catalog search otherwise.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sahilm/fuzzy"

	"github.com/1024mb/gog-installer-update-checker/internal/gog"
	"github.com/1024mb/gog-installer-update-checker/internal/naming"
	"github.com/1024mb/gog-installer-update-checker/internal/peinfo"
	"github.com/1024mb/gog-installer-update-checker/internal/policy"
)

// Sentinel outcomes of a resolution attempt. Callers map them onto log
// levels and skip behavior.
var (
	ErrSkippedDelisted = errors.New("product is delisted")
	ErrMissingName     = errors.New("no product name available")
	ErrNotFound        = errors.New("product not found in catalog")
	ErrAmbiguous       = errors.New("multiple catalog candidates")
)

// Archive listings name either a temporary ini or the game descriptor, both
// carrying the product id.
var (
	reTempIniID  = regexp.MustCompile(`(?i)^.+?"tmp\\([0-9]+)\.ini"`)
	reGameDataID = regexp.MustCompile(`(?i)^.+?"(?:.+?\\)?goggame-([0-9]+)\.(?:hashdb|info|script|id)"`)
)

// ProductIDFromListing scans an innoextract listing for the product id.
func ProductIDFromListing(listing string) (string, bool) {
	for _, line := range strings.Split(listing, "\n") {
		if m := reTempIniID.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
		if m := reGameDataID.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// Logger is the logging surface the resolver needs.
type Logger interface {
	Debug(string, ...interface{})
	Info(string, ...interface{})
	Warn(string, ...interface{})
}

// Searcher queries the catalog by product name.
type Searcher interface {
	SearchProducts(ctx context.Context, name string) (*gog.SearchResult, error)
}

// MetadataReader reads embedded executable metadata.
type MetadataReader interface {
	Read(path string) (*peinfo.Info, error)
}

// Resolver resolves installers to product ids.
type Resolver struct {
	policy *policy.Policy
	search Searcher
	meta   MetadataReader
	log    Logger
}

// New returns a Resolver over the given policy, catalog search and metadata
// reader.
func New(pol *policy.Policy, search Searcher, meta MetadataReader, log Logger) *Resolver {
	return &Resolver{policy: pol, search: search, meta: meta, log: log}
}

// CleanProductName canonicalizes a raw embedded product name: configured
// cleanup patterns are removed, the replacement table is consulted (cleaned
// name first, raw name second), and glued hyphens get their spaces back.
func (r *Resolver) CleanProductName(raw string) string {
	cleaned := raw
	for _, re := range r.policy.NameCleanup {
		cleaned = re.ReplaceAllString(cleaned, "")
	}
	cleaned = strings.TrimSpace(cleaned)
	if repl, ok := r.policy.ReplaceNames[cleaned]; ok {
		cleaned = repl
	} else if repl, ok := r.policy.ReplaceNames[raw]; ok {
		cleaned = repl
	}
	return naming.RepairHyphenSpacing(cleaned)
}

// Resolve determines the product id for the installer at path. The listing
// is consulted first; when it carries no id the embedded product name is
// cleaned and searched in the catalog.
func (r *Resolver) Resolve(ctx context.Context, path, listing string) (string, error) {
	if id, ok := ProductIDFromListing(listing); ok {
		r.log.Debug("Product id %s found in archive listing of %s", id, path)
		return id, nil
	}

	info, err := r.meta.Read(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrMissingName, err)
	}
	if info.ProductName == "" {
		return "", ErrMissingName
	}
	if r.policy.DelistedGames[info.ProductName] {
		return "", ErrSkippedDelisted
	}

	name := r.CleanProductName(info.ProductName)
	return r.searchWithRomanRetry(ctx, name)
}

// searchWithRomanRetry searches the catalog for name. On a miss, configured
// roman numerals found in the name are substituted with their decimal values
// and the search retried; each numeral is consumed at most once, so the loop
// is bounded by the policy table size.
func (r *Resolver) searchWithRomanRetry(ctx context.Context, name string) (string, error) {
	consumed := map[string]bool{}
	for {
		id, err := r.searchOnce(ctx, name)
		if err == nil || !errors.Is(err, ErrNotFound) {
			return id, err
		}

		substituted := false
		for _, numeral := range r.policy.SortedNumerals() {
			if consumed[numeral] {
				continue
			}
			if !containsWord(name, numeral) {
				continue
			}
			name = replaceWord(name, numeral, strconv.Itoa(r.policy.RomanNumerals[numeral]))
			consumed[numeral] = true
			substituted = true
		}
		if !substituted {
			return "", ErrNotFound
		}
		r.log.Debug("Retrying catalog search as %q", name)
	}
}

func (r *Resolver) searchOnce(ctx context.Context, name string) (string, error) {
	result, err := r.search.SearchProducts(ctx, name)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	// The catalog's total drives the branch, not the page size; a paginated
	// response can carry one product for a query that matched several.
	switch {
	case result.TotalGamesFound == 0 || len(result.Products) == 0:
		return "", ErrNotFound
	case result.TotalGamesFound == 1:
		return result.Products[0].ID.String(), nil
	}

	// Multiple candidates: an exact title match wins, in catalog order.
	for _, p := range result.Products {
		if strings.EqualFold(p.Title, name) {
			return p.ID.String(), nil
		}
	}

	titles := make([]string, len(result.Products))
	for i, p := range result.Products {
		titles[i] = p.Title
	}
	matches := fuzzy.Find(name, titles)
	if len(matches) > 3 {
		matches = matches[:3]
	}
	closest := make([]string, len(matches))
	for i, m := range matches {
		closest[i] = titles[m.Index]
	}
	r.log.Warn("Search for %q returned %d candidates, none titled exactly; closest: %s",
		name, len(result.Products), strings.Join(closest, ", "))
	return "", ErrAmbiguous
}

// containsWord reports whether name contains numeral as a whole
// space-separated word.
func containsWord(name, numeral string) bool {
	for _, field := range strings.Fields(name) {
		if field == numeral {
			return true
		}
	}
	return false
}

// replaceWord substitutes every whole-word occurrence of numeral.
func replaceWord(name, numeral, value string) string {
	fields := strings.Fields(name)
	for i, field := range fields {
		if field == numeral {
			fields[i] = value
		}
	}
	return strings.Join(fields, " ")
}

// Dedup collapses a path-to-id map so each product id keeps exactly one
// path. Ids are processed in sorted order and the lexicographically first
// path wins, making the outcome independent of discovery order.
func Dedup(byPath map[string]string) map[string]string {
	bestByID := map[string]string{}
	for path, id := range byPath {
		if best, ok := bestByID[id]; !ok || path < best {
			bestByID[id] = path
		}
	}

	ids := make([]string, 0, len(bestByID))
	for id := range bestByID {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make(map[string]string, len(ids))
	for _, id := range ids {
		out[bestByID[id]] = id
	}
	return out
}
