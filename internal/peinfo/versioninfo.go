package peinfo

import (
	"encoding/binary"
	"fmt"
	"strings"
	"unicode/utf16"
)

// The VERSIONINFO resource is a tree of length-prefixed blocks:
// wLength, wValueLength, wType (0 binary, 1 text), a UTF-16 szKey, padding
// to a 4-byte boundary, the value, more padding, then child blocks until
// wLength is exhausted. See VS_VERSIONINFO in the Windows SDK.
type block struct {
	key         string
	valueStart  int // absolute offset of the value
	valueLen    int // value size in bytes
	childrenOff int // absolute offset of the first child
	end         int // absolute offset just past the block
}

func parseBlock(data []byte, off int) (block, error) {
	if off+6 > len(data) {
		return block{}, fmt.Errorf("version block at %d truncated", off)
	}
	length := int(binary.LittleEndian.Uint16(data[off:]))
	valueLen := int(binary.LittleEndian.Uint16(data[off+2:]))
	typ := binary.LittleEndian.Uint16(data[off+4:])
	if length < 6 || off+length > len(data) {
		return block{}, fmt.Errorf("version block at %d has bad length %d", off, length)
	}

	key, keyEnd, err := readUTF16Z(data, off+6, off+length)
	if err != nil {
		return block{}, err
	}

	b := block{key: key, end: off + length}
	b.valueStart = align4(keyEnd)
	b.valueLen = valueLen
	if typ == 1 {
		// Text values measure wValueLength in 16-bit words.
		b.valueLen = valueLen * 2
	}
	if b.valueStart+b.valueLen > b.end {
		return block{}, fmt.Errorf("version block %q value overruns block", key)
	}
	b.childrenOff = align4(b.valueStart + b.valueLen)
	return b, nil
}

// children iterates the sub-blocks of b, calling fn for each.
func (b block) children(data []byte, fn func(block) error) error {
	for off := b.childrenOff; off < b.end; {
		child, err := parseBlock(data, off)
		if err != nil {
			return err
		}
		if err := fn(child); err != nil {
			return err
		}
		next := align4(child.end)
		if next <= off {
			return fmt.Errorf("version block %q makes no progress", child.key)
		}
		off = next
	}
	return nil
}

// textValue decodes a text block's value, dropping the terminating NUL.
func (b block) textValue(data []byte) string {
	s := decodeUTF16(data[b.valueStart : b.valueStart+b.valueLen])
	return strings.TrimRight(s, "\x00")
}

// parseVersionResource extracts the string table from a raw VS_VERSIONINFO
// blob. When a VarFileInfo translation is present the matching string table
// is preferred; otherwise the first table wins.
func parseVersionResource(data []byte) (*Info, error) {
	root, err := parseBlock(data, 0)
	if err != nil {
		return nil, err
	}
	if !strings.EqualFold(root.key, "VS_VERSION_INFO") {
		return nil, fmt.Errorf("unexpected root block %q", root.key)
	}

	tables := map[string]*Info{}
	var tableOrder []string
	var preferred string

	err = root.children(data, func(child block) error {
		switch {
		case strings.EqualFold(child.key, "StringFileInfo"):
			return child.children(data, func(table block) error {
				info := &Info{}
				if err := table.children(data, func(s block) error {
					setField(info, s.key, s.textValue(data))
					return nil
				}); err != nil {
					return err
				}
				key := strings.ToLower(table.key)
				tables[key] = info
				tableOrder = append(tableOrder, key)
				return nil
			})
		case strings.EqualFold(child.key, "VarFileInfo"):
			return child.children(data, func(v block) error {
				if strings.EqualFold(v.key, "Translation") && v.valueLen >= 4 {
					lang := binary.LittleEndian.Uint16(data[v.valueStart:])
					cp := binary.LittleEndian.Uint16(data[v.valueStart+2:])
					preferred = fmt.Sprintf("%04x%04x", lang, cp)
				}
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if len(tableOrder) == 0 {
		return nil, ErrNoVersionInfo
	}
	if info, ok := tables[preferred]; ok {
		return info, nil
	}
	return tables[tableOrder[0]], nil
}

func setField(info *Info, key, value string) {
	switch key {
	case "Comments":
		info.Comments = value
	case "InternalName":
		info.InternalName = value
	case "ProductName":
		info.ProductName = value
	case "CompanyName":
		info.CompanyName = value
	case "LegalCopyright":
		info.LegalCopyright = value
	case "ProductVersion":
		info.ProductVersion = value
	case "FileDescription":
		info.FileDescription = value
	case "LegalTrademarks":
		info.LegalTrademarks = value
	case "PrivateBuild":
		info.PrivateBuild = value
	case "FileVersion":
		info.FileVersion = value
	case "OriginalFilename":
		info.OriginalFilename = value
	case "SpecialBuild":
		info.SpecialBuild = value
	}
}

// readUTF16Z reads a NUL-terminated UTF-16LE string starting at off,
// returning the string and the offset past the terminator.
func readUTF16Z(data []byte, off, limit int) (string, int, error) {
	var units []uint16
	for i := off; i+2 <= limit; i += 2 {
		u := binary.LittleEndian.Uint16(data[i:])
		if u == 0 {
			return string(utf16.Decode(units)), i + 2, nil
		}
		units = append(units, u)
	}
	return "", 0, fmt.Errorf("unterminated key at %d", off)
}

func decodeUTF16(b []byte) string {
	units := make([]uint16, 0, len(b)/2)
	for i := 0; i+2 <= len(b); i += 2 {
		units = append(units, binary.LittleEndian.Uint16(b[i:]))
	}
	return string(utf16.Decode(units))
}

func align4(off int) int {
	return (off + 3) &^ 3
}
