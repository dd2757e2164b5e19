package check

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/1024mb/gog-installer-update-checker/internal/config"
)

func TestCheckDeps_MissingInnoextract(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.InnoextractPath = filepath.Join(t.TempDir(), "missing")
	cfg.Paths = []string{t.TempDir()}
	if err := CheckDeps(&cfg); !errors.Is(err, ErrInnoextractNotFound) {
		t.Errorf("err = %v, want ErrInnoextractNotFound", err)
	}
}

func TestCheckDeps_PathValidation(t *testing.T) {
	dir := t.TempDir()
	binary := filepath.Join(dir, "innoextract")
	if err := os.WriteFile(binary, []byte("#!/bin/sh\n"), 0755); err != nil {
		t.Fatal(err)
	}

	t.Run("valid", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.InnoextractPath = binary
		cfg.Paths = []string{dir}
		if err := CheckDeps(&cfg); err != nil {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("missing path", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.InnoextractPath = binary
		cfg.Paths = []string{filepath.Join(dir, "nope")}
		if err := CheckDeps(&cfg); !errors.Is(err, ErrPathNotFound) {
			t.Errorf("err = %v, want ErrPathNotFound", err)
		}
	})

	t.Run("path is a file", func(t *testing.T) {
		cfg := config.DefaultConfig()
		cfg.InnoextractPath = binary
		cfg.Paths = []string{binary}
		if err := CheckDeps(&cfg); !errors.Is(err, ErrPathNotDirectory) {
			t.Errorf("err = %v, want ErrPathNotDirectory", err)
		}
	})
}
