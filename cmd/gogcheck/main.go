// Command gogcheck scans directories of GOG offline installers and reports
// which ones are outdated against the GOG catalog.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/1024mb/gog-installer-update-checker/internal/check"
	"github.com/1024mb/gog-installer-update-checker/internal/config"
	"github.com/1024mb/gog-installer-update-checker/internal/logging"
	"github.com/1024mb/gog-installer-update-checker/internal/pipeline"
	"github.com/1024mb/gog-installer-update-checker/internal/policy"
)

// defaultLogName is used when --log-file is not given; the run timestamp is
// inserted before the extension either way.
const defaultLogName = "gog_installer_update_checker.log"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.DefaultConfig()
	if err := config.ParseFlags(&cfg); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}

	logName := cfg.LogFile
	if logName == "" {
		logName = defaultLogName
	}
	logPath := config.TimestampPath(logName, time.Now())

	log, err := logging.NewLogger(&cfg, logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	defer closeLog(log)

	if cfg.CheckOnly {
		check.RunCheck(&cfg, log)
		return 0
	}

	if err := check.CheckDeps(&cfg); err != nil {
		log.Error("%v", err)
		return 1
	}

	pol, err := policy.Load(cfg.DataFile, log)
	if err != nil {
		log.Error("%v", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := pipeline.Run(ctx, &cfg, log, pol); err != nil {
		log.Error("%v", err)
		return 1
	}
	// Degraded runs (any error-level event) fail the process even when the
	// pipeline itself completed.
	if log.Errored() {
		return 1
	}
	return 0
}

// closeLog closes the file sink and removes it when the run produced no log
// output at all.
func closeLog(l *logging.Logger) {
	path := l.FilePath()
	_ = l.Close()
	if path == "" {
		return
	}
	if fi, err := os.Stat(path); err == nil && fi.Size() == 0 {
		_ = os.Remove(path)
	}
}
