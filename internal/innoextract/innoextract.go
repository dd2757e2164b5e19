// Package innoextract wraps the external innoextract and 7z binaries used to
// pull the goggame-<id>.info descriptor out of an offline installer without
// unpacking the whole archive.
package innoextract

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// ErrInfoNotExtracted is returned when neither extraction strategy produced
// the descriptor file.
var ErrInfoNotExtracted = errors.New("descriptor file not extracted")

// Tool runs innoextract (and 7z for first-generation installers).
type Tool struct {
	path     string
	sevenZip string
}

// New returns a Tool using the given innoextract binary. 7z is resolved from
// PATH at invocation time.
func New(path string) *Tool {
	return &Tool{path: path, sevenZip: "7z"}
}

// List returns the archive listing of the installer. The listing header
// names the temporary ini or descriptor file that carries the product id.
// A failure here means innoextract itself is broken and the run cannot
// continue.
func (t *Tool) List(ctx context.Context, installerPath string) (string, error) {
	cmd := exec.CommandContext(ctx, t.path, "-l", installerPath)
	var out bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &out
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("innoextract -l %q: %w", installerPath, err)
	}
	return out.String(), nil
}

// ExtractInfoFile extracts goggame-<productID>.info from a current-generation
// installer into destDir and returns the descriptor path. innoextract's exit
// code is unreliable for partial extractions, so success is judged by the
// destination directory contents.
func (t *Tool) ExtractInfoFile(ctx context.Context, productID, installerPath, destDir string) (string, error) {
	name := descriptorName(productID)
	cmd := exec.CommandContext(ctx, t.path, "-e", "-I", name, "-d", destDir, installerPath)
	cmd.Stdout = nil
	cmd.Stderr = nil
	_ = cmd.Run()
	return locateDescriptor(destDir, name)
}

// ExtractInfoFileLegacy extracts the descriptor from a first-generation
// installer. Those keep the payload in a sibling RAR volume protected with a
// product-id derived password; when no volume is found the installer is
// treated as self-contained and the current-generation path is used.
func (t *Tool) ExtractInfoFileLegacy(ctx context.Context, productID, installerPath, destDir string) (string, error) {
	bin, ok := payloadVolume(installerPath)
	if !ok {
		return t.ExtractInfoFile(ctx, productID, installerPath, destDir)
	}
	name := descriptorName(productID)
	cmd := exec.CommandContext(ctx, t.sevenZip,
		"e", bin,
		"-o"+destDir,
		`game\`+name,
		"-aoa", "-y",
		"-p"+legacyArchivePassword(productID),
	)
	cmd.Stdout = nil
	cmd.Stderr = nil
	_ = cmd.Run()
	return locateDescriptor(destDir, name)
}

func descriptorName(productID string) string {
	return "goggame-" + productID + ".info"
}

// payloadVolume finds the first payload volume next to the installer:
// "<base>-1.bin" style names first, then a plain "<base>.bin".
func payloadVolume(installerPath string) (string, bool) {
	base := strings.TrimSuffix(installerPath, filepath.Ext(installerPath))
	matches, err := filepath.Glob(base + "-*.bin")
	if err == nil && len(matches) > 0 {
		return matches[0], true
	}
	plain := base + ".bin"
	if fi, err := os.Stat(plain); err == nil && !fi.IsDir() {
		return plain, true
	}
	return "", false
}

// legacyArchivePassword derives the payload password from the product id.
func legacyArchivePassword(productID string) string {
	sum := md5.Sum([]byte(productID))
	return hex.EncodeToString(sum[:])
}

// locateDescriptor finds the extracted descriptor in destDir. Extractors may
// recreate the archive's directory layout, so nested hits are moved to the
// root before returning.
func locateDescriptor(destDir, name string) (string, error) {
	rootPath := filepath.Join(destDir, name)
	if fi, err := os.Stat(rootPath); err == nil && !fi.IsDir() {
		return rootPath, nil
	}

	var nested string
	_ = filepath.WalkDir(destDir, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if strings.EqualFold(d.Name(), name) {
			nested = path
			return filepath.SkipAll
		}
		return nil
	})
	if nested == "" {
		return "", ErrInfoNotExtracted
	}
	if err := os.Rename(nested, rootPath); err != nil {
		return "", fmt.Errorf("moving descriptor to %q: %w", rootPath, err)
	}
	return rootPath, nil
}
