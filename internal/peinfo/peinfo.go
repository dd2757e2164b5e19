// Package peinfo reads the VERSIONINFO resource embedded in Windows PE
// executables. Installers carry the product name, version and build marker
// there, which is the primary identity source when the descriptor file
// cannot be extracted.
package peinfo

import (
	"debug/pe"
	"encoding/binary"
	"errors"
	"fmt"
)

// ErrNoVersionInfo is returned when the executable has no VERSIONINFO
// resource.
var ErrNoVersionInfo = errors.New("no version information resource")

// Info holds the string table of a VERSIONINFO resource. Absent fields are
// empty strings.
type Info struct {
	Comments         string
	InternalName     string
	ProductName      string
	CompanyName      string
	LegalCopyright   string
	ProductVersion   string
	FileDescription  string
	LegalTrademarks  string
	PrivateBuild     string
	FileVersion      string
	OriginalFilename string
	SpecialBuild     string
}

// Reader extracts Info from executables, caching by path. Installer files
// are read twice per run (identification, then enrichment) and parsing the
// resource tree is not free.
type Reader struct {
	cache map[string]*Info
}

// NewReader returns an empty Reader.
func NewReader() *Reader {
	return &Reader{cache: map[string]*Info{}}
}

// Read parses the VERSIONINFO resource of the executable at path.
func (r *Reader) Read(path string) (*Info, error) {
	if info, ok := r.cache[path]; ok {
		return info, nil
	}
	f, err := pe.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	defer f.Close()

	raw, err := versionResource(f)
	if err != nil {
		return nil, fmt.Errorf("reading version resource of %q: %w", path, err)
	}
	info, err := parseVersionResource(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing version resource of %q: %w", path, err)
	}
	r.cache[path] = info
	return info, nil
}

// rtVersion is the RT_VERSION resource type id.
const rtVersion = 16

// resourceDirHeaderSize is sizeof(IMAGE_RESOURCE_DIRECTORY); entries of 8
// bytes each follow it.
const resourceDirHeaderSize = 16

// versionResource locates the first RT_VERSION resource in the .rsrc
// section: type directory, then first name, then first language.
func versionResource(f *pe.File) ([]byte, error) {
	sect := f.Section(".rsrc")
	if sect == nil {
		return nil, ErrNoVersionInfo
	}
	rsrc, err := sect.Data()
	if err != nil {
		return nil, err
	}

	typeSubdir, ok := findTypeEntry(rsrc, rtVersion)
	if !ok {
		return nil, ErrNoVersionInfo
	}
	nameSubdir, ok := firstEntry(rsrc, typeSubdir)
	if !ok || nameSubdir&0x80000000 == 0 {
		return nil, ErrNoVersionInfo
	}
	langEntry, ok := firstEntry(rsrc, nameSubdir&^0x80000000)
	if !ok || langEntry&0x80000000 != 0 {
		return nil, ErrNoVersionInfo
	}

	// langEntry points at an IMAGE_RESOURCE_DATA_ENTRY: RVA, size,
	// codepage, reserved.
	if int(langEntry)+8 > len(rsrc) {
		return nil, ErrNoVersionInfo
	}
	rva := binary.LittleEndian.Uint32(rsrc[langEntry:])
	size := binary.LittleEndian.Uint32(rsrc[langEntry+4:])
	if rva < sect.VirtualAddress {
		return nil, ErrNoVersionInfo
	}
	start := rva - sect.VirtualAddress
	if int(start)+int(size) > len(rsrc) {
		return nil, ErrNoVersionInfo
	}
	return rsrc[start : start+size], nil
}

// findTypeEntry scans the root directory's id entries for the resource type
// and returns the subdirectory offset.
func findTypeEntry(rsrc []byte, typeID uint32) (uint32, bool) {
	named, ids, ok := dirCounts(rsrc, 0)
	if !ok {
		return 0, false
	}
	// Named entries come first; type ids follow.
	for i := named; i < named+ids; i++ {
		off := resourceDirHeaderSize + int(i)*8
		if off+8 > len(rsrc) {
			return 0, false
		}
		name := binary.LittleEndian.Uint32(rsrc[off:])
		val := binary.LittleEndian.Uint32(rsrc[off+4:])
		if name == typeID && val&0x80000000 != 0 {
			return val &^ 0x80000000, true
		}
	}
	return 0, false
}

// firstEntry returns the offset field of the first entry of the directory
// at dirOff, high bit included.
func firstEntry(rsrc []byte, dirOff uint32) (uint32, bool) {
	named, ids, ok := dirCounts(rsrc, dirOff)
	if !ok || named+ids == 0 {
		return 0, false
	}
	off := int(dirOff) + resourceDirHeaderSize
	if off+8 > len(rsrc) {
		return 0, false
	}
	return binary.LittleEndian.Uint32(rsrc[off+4:]), true
}

func dirCounts(rsrc []byte, dirOff uint32) (named, ids uint32, ok bool) {
	if int(dirOff)+resourceDirHeaderSize > len(rsrc) {
		return 0, 0, false
	}
	named = uint32(binary.LittleEndian.Uint16(rsrc[dirOff+12:]))
	ids = uint32(binary.LittleEndian.Uint16(rsrc[dirOff+14:]))
	return named, ids, true
}
