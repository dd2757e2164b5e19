package pipeline

import (
	"os"
	"path/filepath"
	"testing"
)

type testLogger struct {
	infos []string
}

func (l *testLogger) Debug(string, ...interface{})   {}
func (l *testLogger) Success(string, ...interface{}) {}
func (l *testLogger) Warn(string, ...interface{})    {}
func (l *testLogger) Error(string, ...interface{})   {}
func (l *testLogger) Info(format string, args ...interface{}) {
	l.infos = append(l.infos, format)
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
}

func basenames(paths []string) []string {
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = filepath.Base(p)
	}
	return out
}

func sliceEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// --- Discover tests ---

func TestDiscover_FiltersInstallers(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "setup_torchlight_1.15.exe")
	touch(t, dir, "setup_cyber_game_(77777).exe")
	touch(t, dir, "patch_cyber_game_(77777).exe")
	touch(t, dir, "unins000.exe")
	touch(t, dir, "setup_cyber_game_(77777).bin")
	touch(t, dir, "readme.txt")

	files, err := Discover([]string{dir}, &testLogger{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}

	want := []string{"setup_cyber_game_(77777).exe", "setup_torchlight_1.15.exe"}
	if got := basenames(files); !sliceEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestDiscover_Recurses(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "witcher")
	if err := os.MkdirAll(sub, 0755); err != nil {
		t.Fatal(err)
	}
	touch(t, sub, "setup_the_witcher_3_wild_hunt_1.32_(47429).exe")

	files, err := Discover([]string{dir}, &testLogger{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("files = %v", files)
	}
}

func TestDiscover_MultiplePathsSorted(t *testing.T) {
	dirB := t.TempDir()
	dirA := t.TempDir()
	touch(t, dirB, "setup_zort_2.0.1.exe")
	touch(t, dirA, "setup_alpha_1.0.1.exe")

	files, err := Discover([]string{dirB, dirA}, &testLogger{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("files = %v", files)
	}
	if files[0] > files[1] {
		t.Errorf("not sorted: %v", files)
	}
}

func TestDiscover_UppercaseExtension(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "SETUP_SOME_GAME_1.0.2.EXE")

	files, err := Discover([]string{dir}, &testLogger{})
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 1 {
		t.Errorf("files = %v", files)
	}
}

func TestDiscover_EmptyPathLogged(t *testing.T) {
	log := &testLogger{}
	files, err := Discover([]string{t.TempDir()}, log)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(files) != 0 {
		t.Errorf("files = %v", files)
	}
	if len(log.infos) != 1 {
		t.Errorf("infos = %v, want one empty-path notice", log.infos)
	}
}

func TestDiscover_MissingPath(t *testing.T) {
	if _, err := Discover([]string{filepath.Join(t.TempDir(), "nope")}, &testLogger{}); err == nil {
		t.Error("missing path should error")
	}
}
