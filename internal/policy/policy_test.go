package policy

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// testLogger records messages so loaders' warnings can be asserted.
type testLogger struct {
	infos []string
	warns []string
}

func (l *testLogger) Info(format string, args ...interface{}) {
	l.infos = append(l.infos, fmt.Sprintf(format, args...))
}

func (l *testLogger) Warn(format string, args ...interface{}) {
	l.warns = append(l.warns, fmt.Sprintf(format, args...))
}

func writeDataFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoad_MissingFile(t *testing.T) {
	log := &testLogger{}
	p, err := Load(filepath.Join(t.TempDir(), "nope.json"), log)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.ReplaceNames) != 0 || len(p.RomanNumerals) != 0 {
		t.Error("missing file should yield an empty policy")
	}
	if len(log.warns) != 1 {
		t.Errorf("warns = %v, want one missing-file warning", log.warns)
	}
}

func TestLoad_Malformed(t *testing.T) {
	path := writeDataFile(t, `{"Replace_Names": {`)
	if _, err := Load(path, &testLogger{}); err == nil {
		t.Fatal("malformed data file should be a fatal error")
	}
}

func TestLoad_FullFile(t *testing.T) {
	path := writeDataFile(t, `{
		"Strings_To_Remove": ["\\s*\\(demo\\)", " for Windows"],
		"Replace_Names": {"The Witcher 3 Wild Hunt": "The Witcher 3: Wild Hunt"},
		"Match_Versions": {"1207664663": [["1.2", "1.2.0"]]},
		"Roman_Numerals": {"II": 2, "VIII": 8},
		"Goodies_ID": {"1207666183": "Some Game Soundtrack"},
		"Delisted_Games": ["Gone Game"]
	}`)
	log := &testLogger{}
	p, err := Load(path, log)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.NameCleanup) != 2 {
		t.Errorf("NameCleanup = %d patterns, want 2", len(p.NameCleanup))
	}
	if got := p.NameCleanup[0].ReplaceAllString("Some Game (Demo)", ""); got != "Some Game" {
		t.Errorf("cleanup pattern is not case-insensitive: %q", got)
	}
	if p.ReplaceNames["The Witcher 3 Wild Hunt"] != "The Witcher 3: Wild Hunt" {
		t.Errorf("ReplaceNames = %v", p.ReplaceNames)
	}
	if p.RomanNumerals["II"] != 2 || p.RomanNumerals["VIII"] != 8 {
		t.Errorf("RomanNumerals = %v (keys must keep their case)", p.RomanNumerals)
	}
	if p.GoodieIDs["1207666183"] == "" {
		t.Errorf("GoodieIDs = %v", p.GoodieIDs)
	}
	if !p.DelistedGames["Gone Game"] {
		t.Errorf("DelistedGames = %v", p.DelistedGames)
	}
	if len(log.warns) != 0 {
		t.Errorf("unexpected warnings: %v", log.warns)
	}
}

func TestLoad_WrongSectionTypes(t *testing.T) {
	path := writeDataFile(t, `{
		"Strings_To_Remove": {"not": "a list"},
		"Replace_Names": ["not", "a", "dict"],
		"Match_Versions": {"123": "not a list"},
		"Roman_Numerals": {"II": "two"},
		"Delisted_Games": {"not": "a list"}
	}`)
	log := &testLogger{}
	p, err := Load(path, log)
	if err != nil {
		t.Fatal(err)
	}
	if len(p.NameCleanup) != 0 || len(p.ReplaceNames) != 0 || len(p.MatchVersions) != 0 ||
		len(p.RomanNumerals) != 0 || len(p.DelistedGames) != 0 {
		t.Error("wrong-typed sections should load as empty")
	}
	if len(log.warns) < 5 {
		t.Errorf("warns = %v, want one per bad section", log.warns)
	}
}

func TestLoad_ShortVersionGroup(t *testing.T) {
	path := writeDataFile(t, `{"Match_Versions": {"99": [["only-one"], ["1.0", "1.0.0"]]}}`)
	log := &testLogger{}
	p, err := Load(path, log)
	if err != nil {
		t.Fatal(err)
	}
	want := map[string][][]string{"99": {{"1.0", "1.0.0"}}}
	if !reflect.DeepEqual(p.MatchVersions, want) {
		t.Errorf("MatchVersions = %v, want %v", p.MatchVersions, want)
	}
	if len(log.warns) != 1 {
		t.Errorf("warns = %v, want one short-group warning", log.warns)
	}
}

func TestVersionsMatch(t *testing.T) {
	p := Empty()
	p.MatchVersions["42"] = [][]string{{"1.2", "1.2.0"}, {"gold", "1.0 gold"}}
	tests := []struct {
		name          string
		id            string
		local, remote string
		want          bool
	}{
		{"same group", "42", "1.2", "1.2.0", true},
		{"same group reversed", "42", "1.2.0", "1.2", true},
		{"second group", "42", "gold", "1.0 gold", true},
		{"cross-group", "42", "1.2", "gold", false},
		{"unknown product", "7", "1.2", "1.2.0", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := p.VersionsMatch(tt.id, tt.local, tt.remote); got != tt.want {
				t.Errorf("VersionsMatch(%q, %q, %q) = %v, want %v", tt.id, tt.local, tt.remote, got, tt.want)
			}
		})
	}
}

func TestSortedNumerals(t *testing.T) {
	p := Empty()
	p.RomanNumerals = map[string]int{"II": 2, "VIII": 8, "III": 3, "IV": 4}
	got := p.SortedNumerals()
	want := []string{"VIII", "III", "II", "IV"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("SortedNumerals() = %v, want %v", got, want)
	}
}
