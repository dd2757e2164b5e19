package naming

import (
	"path/filepath"
	"regexp"
	"strings"
)

// Generation distinguishes the two GOG installer packaging schemes.
type Generation int

const (
	// GenModern installers carry a monotonic numeric build id.
	GenModern Generation = iota
	// GenLegacy installers predate build ids; the version is a free-text
	// string, often only recoverable from the filename.
	GenLegacy
)

// String returns "legacy" or "modern" for log output.
func (g Generation) String() string {
	if g == GenLegacy {
		return "legacy"
	}
	return "modern"
}

// --- Compiled grammar patterns ---

var (
	// reInstaller recognizes GOG offline installer names:
	// setup_<name parts>[_extra]_<version or (build)>[_(lang)].exe
	// The name part allows accented letters because GOG localizes some
	// installer names.
	reInstaller = regexp.MustCompile(
		`(?i)(?:\\|/|^)setup((?:_+[A-Za-zÁ-Úá-úÑñ0-9\-.]+)+)(_.+)?(_+\([0-9]+\)|_[0-9]+(?:\.[0-9]+)+)(_\([^\)]+\))?\.exe$`)

	// reLegacyVersion matches the trailing dotted version the legacy
	// packaging scheme appends to the filename, e.g. "_1.0.2.exe".
	reLegacyVersion = regexp.MustCompile(
		`(?i)_([0-9]+(?:\.[0-9]+)+)\.exe`)

	// reBuildID finds the bracketed trailing build id in a ProductVersion
	// string, e.g. "1.2.3.[54321]".
	reBuildID = regexp.MustCompile(
		`^.+?\.\[([0-9]+)\]`)

	// reVersionName strips the trailing ".[build]" suffix from a
	// ProductVersion string, keeping only the human version.
	reVersionName = regexp.MustCompile(
		`^(.+?)\.(?:\[[0-9]*\]?)?$`)

	// reFilenameVersion extracts the version token sitting between an
	// underscore run and the "_(" that opens the build/language suffix.
	// Case-sensitive on purpose: version tokens in installer names are
	// lowercase, and widening the classes makes the lazy groups swallow
	// name fragments.
	reFilenameVersion = regexp.MustCompile(
		`_+((?:v\.?)?(?:[a-zá-úñ0-9]+\-)?(?:[0-9\-]+(?:\.[0-9a-z\-_]+?(?:\([^\)]+?\))?)*))_\(`)
)

// IsInstaller reports whether path looks like a GOG offline installer.
func IsInstaller(path string) bool {
	return reInstaller.MatchString(path)
}

// Classify returns the installer generation for path. The legacy convention
// is purely a filename property: a trailing "_<dotted version>.exe" suffix.
func Classify(path string) Generation {
	if reLegacyVersion.MatchString(path) {
		return GenLegacy
	}
	return GenModern
}

// LegacyVersion extracts the dotted version from a legacy installer
// filename. ok is false when the filename carries no legacy suffix.
func LegacyVersion(filename string) (version string, ok bool) {
	m := reLegacyVersion.FindStringSubmatch(filename)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// VersionFromFilename recovers a free-text version from a modern installer
// filename. This is the last-resort source: underscores become spaces and
// the token is trimmed.
func VersionFromFilename(filename string) (version string, ok bool) {
	m := reFilenameVersion.FindStringSubmatch(filepath.Base(filename))
	if m == nil {
		return "", false
	}
	v := strings.TrimSpace(strings.ReplaceAll(m[1], "_", " "))
	if v == "" {
		return "", false
	}
	return v, true
}

// BuildIDFromProductVersion pulls the bracketed build id out of an embedded
// ProductVersion string such as "2.1.0.7.[83276]".
func BuildIDFromProductVersion(pv string) (build string, ok bool) {
	m := reBuildID.FindStringSubmatch(pv)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// VersionNameFromProductVersion strips the trailing bracketed-build suffix
// from an embedded ProductVersion string, returning the plain version name.
func VersionNameFromProductVersion(pv string) (version string, ok bool) {
	m := reVersionName.FindStringSubmatch(pv)
	if m == nil {
		return "", false
	}
	return m[1], true
}
