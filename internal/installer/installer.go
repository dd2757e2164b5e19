// Package installer models one local installer file: its identity, its
// generation, and the version and build markers recovered from executable
// metadata, the extracted descriptor, and the filename.
package installer

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/1024mb/gog-installer-update-checker/internal/naming"
	"github.com/1024mb/gog-installer-update-checker/internal/peinfo"
)

// Record is the accumulated local state of one installer. Empty strings mean
// unknown.
type Record struct {
	Path        string
	ProductID   string
	ProductName string
	Generation  naming.Generation
	BuildID     string
	VersionName string
}

// NewRecord builds a Record from the installer path and its executable
// metadata. The generation is a filename property; modern markers come from
// the embedded ProductVersion string.
func NewRecord(path, productID string, info *peinfo.Info) *Record {
	rec := &Record{
		Path:        path,
		ProductID:   productID,
		ProductName: info.ProductName,
		Generation:  naming.Classify(path),
	}
	switch rec.Generation {
	case naming.GenModern:
		if build, ok := naming.BuildIDFromProductVersion(info.ProductVersion); ok {
			rec.BuildID = build
		}
		if version, ok := naming.VersionNameFromProductVersion(info.ProductVersion); ok {
			rec.VersionName = version
		}
	case naming.GenLegacy:
		rec.VersionName = info.ProductVersion
	}
	return rec
}

// GameInfo is the goggame-<id>.info descriptor payload.
type GameInfo struct {
	GameID           string      `json:"gameId"`
	RootGameID       string      `json:"rootGameId"`
	DependencyGameID *string     `json:"dependencyGameId"`
	BuildID          json.Number `json:"buildId"`
	Name             string      `json:"name"`
}

// ParseGameInfo decodes a descriptor file's contents.
func ParseGameInfo(data []byte) (*GameInfo, error) {
	var gi GameInfo
	if err := json.Unmarshal(data, &gi); err != nil {
		return nil, fmt.Errorf("parsing game descriptor: %w", err)
	}
	return &gi, nil
}

// IsBaseGame reports whether the descriptor describes a base game rather
// than a DLC or bonus-content installer. An explicitly empty dependency id
// marks a base game regardless of the remaining fields.
func (gi *GameInfo) IsBaseGame(goodies map[string]string) bool {
	if gi.DependencyGameID != nil {
		return *gi.DependencyGameID == ""
	}
	if gi.GameID != gi.RootGameID {
		return false
	}
	if _, isGoodie := goodies[gi.RootGameID]; isGoodie {
		return false
	}
	return true
}

// ApplyGameInfo fills unknown Record fields from the descriptor, then falls
// back to the filename. The filename fallback only runs here: once the
// descriptor was extracted the filename is trusted as a last resort, but a
// failed extraction leaves the record unverifiable on purpose.
func (rec *Record) ApplyGameInfo(gi *GameInfo) {
	if gi.Name != "" {
		rec.ProductName = gi.Name
	}
	switch rec.Generation {
	case naming.GenModern:
		if rec.BuildID == "" && gi.BuildID.String() != "" {
			rec.BuildID = gi.BuildID.String()
		}
		if rec.VersionName == "" {
			if version, ok := naming.VersionFromFilename(filepath.Base(rec.Path)); ok {
				rec.VersionName = version
			}
		}
	case naming.GenLegacy:
		if rec.VersionName == "" {
			if version, ok := naming.LegacyVersion(filepath.Base(rec.Path)); ok {
				rec.VersionName = version
			}
		}
	}
}
