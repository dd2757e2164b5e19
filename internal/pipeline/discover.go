package pipeline

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/1024mb/gog-installer-update-checker/internal/naming"
)

// Logger is the logging surface the pipeline needs.
type Logger interface {
	Debug(string, ...interface{})
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// Discover walks every scan path, collects .exe files whose names follow the
// installer grammar, and returns the paths sorted lexicographically for
// deterministic processing order.
func Discover(paths []string, log Logger) ([]string, error) {
	var installers []string
	for _, root := range paths {
		found := 0
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			if !strings.EqualFold(filepath.Ext(path), ".exe") {
				return nil
			}
			if naming.IsInstaller(path) {
				installers = append(installers, path)
				found++
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
		if found == 0 {
			log.Info("No installers found in %s", root)
		}
	}
	sort.Strings(installers)
	return installers, nil
}
