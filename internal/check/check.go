// Package check provides system diagnostics (--check mode) and pre-pipeline
// dependency validation (CheckDeps) for innoextract, 7z, and the scan paths.
package check

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/1024mb/gog-installer-update-checker/internal/config"
)

// Sentinel errors returned by CheckDeps when a required tool or path is
// missing.
var (
	ErrInnoextractNotFound = errors.New("innoextract not found")
	ErrPathNotFound        = errors.New("scan path does not exist")
	ErrPathNotDirectory    = errors.New("scan path is not a directory")
)

// Logger is the minimal logging interface needed by RunCheck.
// Defined here (rather than importing the logging package) so that check
// remains dependency-light and testable with a mock logger.
type Logger interface {
	Info(string, ...interface{})
	Success(string, ...interface{})
	Warn(string, ...interface{})
	Error(string, ...interface{})
}

// RunCheck runs the interactive --check flow: prints availability of
// innoextract, 7z, and the catalog endpoint. This is informational only,
// it does not stop on failure.
func RunCheck(cfg *config.Config, log Logger) {
	log.Info("=== System Check ===")

	checkInnoextract(cfg, log)
	checkSevenZip(log)
	checkCatalog(log)
}

// checkInnoextract verifies the configured innoextract binary (or the one on
// PATH) and logs its version string.
func checkInnoextract(cfg *config.Config, log Logger) {
	path := cfg.InnoextractPath
	if path == "" {
		found, err := exec.LookPath("innoextract")
		if err != nil {
			log.Error("innoextract not found on PATH")
			return
		}
		path = found
	}
	out, err := exec.Command(path, "--version").Output()
	if err != nil {
		log.Warn("innoextract found but --version failed: %v", err)
		return
	}
	firstLine := strings.TrimSpace(string(out))
	if idx := strings.Index(firstLine, "\n"); idx > 0 {
		firstLine = firstLine[:idx]
	}
	log.Success("innoextract: %s", firstLine)
}

// checkSevenZip verifies 7z is on PATH. It is only needed for
// first-generation installers, so absence is a warning.
func checkSevenZip(log Logger) {
	if _, err := exec.LookPath("7z"); err != nil {
		log.Warn("7z not found; first-generation installers cannot be inspected")
		return
	}
	log.Success("7z found")
}

// checkCatalog probes the content-system endpoint with a short timeout.
func checkCatalog(log Logger) {
	log.Info("Testing catalog reachability...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "https://content-system.gog.com/", nil)
	if err != nil {
		log.Warn("Catalog check failed: %v", err)
		return
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Warn("Catalog unreachable: %v", err)
		return
	}
	resp.Body.Close()
	log.Success("Catalog reachable (%s)", resp.Status)
}

// CheckDeps is the pre-pipeline validation: it resolves the innoextract
// binary and verifies every scan path is an existing directory. The resolved
// binary path is written back into cfg.
func CheckDeps(cfg *config.Config) error {
	if cfg.InnoextractPath == "" {
		found, err := exec.LookPath("innoextract")
		if err != nil {
			return ErrInnoextractNotFound
		}
		cfg.InnoextractPath = found
	} else {
		fi, err := os.Stat(cfg.InnoextractPath)
		if err != nil || fi.IsDir() {
			return fmt.Errorf("%w: %s", ErrInnoextractNotFound, cfg.InnoextractPath)
		}
	}

	for _, path := range cfg.Paths {
		fi, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		if !fi.IsDir() {
			return fmt.Errorf("%w: %s", ErrPathNotDirectory, path)
		}
	}
	return nil
}
