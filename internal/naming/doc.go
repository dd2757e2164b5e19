// Package naming implements the filename grammar for GOG offline
// installers: the installer recognizer, the legacy version suffix, and the
// patterns that recover version and build markers from filenames and
// embedded ProductVersion strings.
//
// Versioning in installer names varies wildly, so every pattern here is a
// best-effort heuristic. Each rule is kept as an independently documented
// regex so behavior can be pinned by the table tests in naming_test.go.
package naming
