// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Package zipcontainerlib reads the central directory of an in-memory ZIP
// archive and serves member payloads. It is deliberately forgiving: damaged
// archives yield whatever entries could be parsed before the damage.
package zipcontainerlib

import (
	"encoding/binary"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/encoding/charmap"

	"invoice-architect/internal/diagnostic"
	inflatelib "invoice-architect/internal/preprocessors/text-extractors/inflate-lib"
)

const (
	eocdSignature          = 0x06054b50
	centralHeaderSignature = 0x02014b50
	localHeaderSignature   = 0x04034b50

	eocdSize          = 22
	maxCommentLength  = 0xFFFF
	centralHeaderSize = 46
	localHeaderSize   = 30

	flagUTF8 = 1 << 11
)

// Compression methods understood by Open.
const (
	MethodStore   uint16 = 0
	MethodDeflate uint16 = 8
)

var (
	// ErrEntryNotFound is returned by Open for names absent from the directory.
	ErrEntryNotFound = errors.New("zip entry not found")
	// ErrUnsupportedMethod is returned by Open for compression methods other than store and deflate.
	ErrUnsupportedMethod = errors.New("unsupported zip compression method")
	// ErrTruncatedEntry is returned when an entry's payload runs past the buffer.
	ErrTruncatedEntry = errors.New("zip entry payload is truncated")
)

// EntryMetadata locates one member's payload inside the archive buffer.
type EntryMetadata struct {
	Name              string
	Compression       uint16
	CompressedSize    uint32
	UncompressedSize  uint32
	LocalHeaderOffset uint32
	DataOffset        int
}

// Directory is the parsed central directory of one archive buffer.
type Directory struct {
	data     []byte
	entries  map[string]EntryMetadata
	names    []string
	declared int
}

// ReadDirectory parses the central directory of data. It never fails: when
// the end-of-central-directory record is missing the directory is empty, and
// a malformed record stops the walk with the entries parsed so far.
func ReadDirectory(data []byte) (*Directory, diagnostic.List) {
	var diags diagnostic.List
	dir := &Directory{data: data, entries: make(map[string]EntryMetadata)}

	eocd := findEOCD(data)
	if eocd < 0 {
		diags.Add(diagnostic.StageZip, "end of central directory record not found", nil)
		return dir, diags
	}

	total := int(binary.LittleEndian.Uint16(data[eocd+10:]))
	cdOffset := int(binary.LittleEndian.Uint32(data[eocd+16:]))
	dir.declared = total

	ptr := cdOffset
	for i := 0; i < total; i++ {
		if ptr < 0 || ptr+centralHeaderSize > len(data) {
			diags.Addf(diagnostic.StageZip, "central directory truncated after %d of %d entries", i, total)
			break
		}
		if binary.LittleEndian.Uint32(data[ptr:]) != centralHeaderSignature {
			diags.Addf(diagnostic.StageZip, "bad central directory signature at offset %d after %d of %d entries", ptr, i, total)
			break
		}

		flags := binary.LittleEndian.Uint16(data[ptr+8:])
		method := binary.LittleEndian.Uint16(data[ptr+10:])
		compressed := binary.LittleEndian.Uint32(data[ptr+20:])
		uncompressed := binary.LittleEndian.Uint32(data[ptr+24:])
		nameLen := int(binary.LittleEndian.Uint16(data[ptr+28:]))
		extraLen := int(binary.LittleEndian.Uint16(data[ptr+30:]))
		commentLen := int(binary.LittleEndian.Uint16(data[ptr+32:]))
		localOffset := binary.LittleEndian.Uint32(data[ptr+42:])

		nameStart := ptr + centralHeaderSize
		if nameStart+nameLen > len(data) {
			diags.Addf(diagnostic.StageZip, "entry name runs past end of archive at offset %d", ptr)
			break
		}
		name := decodeName(data[nameStart:nameStart+nameLen], flags)
		ptr = nameStart + nameLen + extraLen + commentLen

		dataOffset, ok := localDataOffset(data, int(localOffset))
		if !ok {
			diags.Addf(diagnostic.StageZip, "local header for %q is missing or damaged", name)
			continue
		}

		if _, dup := dir.entries[name]; !dup {
			dir.names = append(dir.names, name)
		}
		dir.entries[name] = EntryMetadata{
			Name:              name,
			Compression:       method,
			CompressedSize:    compressed,
			UncompressedSize:  uncompressed,
			LocalHeaderOffset: localOffset,
			DataOffset:        dataOffset,
		}
	}

	return dir, diags
}

// findEOCD scans backwards for the end-of-central-directory signature,
// bounded by the maximum archive comment length.
func findEOCD(data []byte) int {
	start := len(data) - eocdSize
	if start < 0 {
		return -1
	}
	limit := max(0, len(data)-maxCommentLength-eocdSize)
	for i := start; i >= limit; i-- {
		if binary.LittleEndian.Uint32(data[i:]) == eocdSignature {
			return i
		}
	}
	return -1
}

// localDataOffset re-reads the local header, whose name and extra lengths
// may differ from the central directory copy.
func localDataOffset(data []byte, offset int) (int, bool) {
	if offset < 0 || offset+localHeaderSize > len(data) {
		return 0, false
	}
	if binary.LittleEndian.Uint32(data[offset:]) != localHeaderSignature {
		return 0, false
	}
	nameLen := int(binary.LittleEndian.Uint16(data[offset+26:]))
	extraLen := int(binary.LittleEndian.Uint16(data[offset+28:]))
	return offset + localHeaderSize + nameLen + extraLen, true
}

func decodeName(raw []byte, flags uint16) string {
	if flags&flagUTF8 != 0 {
		return string(raw)
	}
	name, err := charmap.CodePage437.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw)
	}
	return string(name)
}

// Len returns the number of entries parsed.
func (d *Directory) Len() int { return len(d.entries) }

// Declared returns the entry count the archive claims to hold.
func (d *Directory) Declared() int { return d.declared }

// Names returns entry names in directory order.
func (d *Directory) Names() []string {
	out := make([]string, len(d.names))
	copy(out, d.names)
	return out
}

// Entry returns the metadata of name.
func (d *Directory) Entry(name string) (EntryMetadata, bool) {
	e, ok := d.entries[name]
	return e, ok
}

// Match returns entry names under dir (non-recursive) ending in suffix,
// sorted by name.
func (d *Directory) Match(dir, suffix string) []string {
	var out []string
	for _, name := range d.names {
		if path.Dir(name) != strings.TrimSuffix(dir, "/") {
			continue
		}
		if strings.HasSuffix(name, suffix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// Open returns the uncompressed payload of name. Stored entries are returned
// as a copy; deflated entries are inflated through inf.
func (d *Directory) Open(name string, inf inflatelib.Inflater) ([]byte, error) {
	e, ok := d.entries[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	end := e.DataOffset + int(e.CompressedSize)
	if e.DataOffset > len(d.data) || end > len(d.data) || end < e.DataOffset {
		return nil, fmt.Errorf("%w: %s", ErrTruncatedEntry, name)
	}
	payload := d.data[e.DataOffset:end]

	switch e.Compression {
	case MethodStore:
		out := make([]byte, len(payload))
		copy(out, payload)
		return out, nil
	case MethodDeflate:
		if inf == nil || !inf.CanInflate() {
			return nil, fmt.Errorf("inflate %s: %w", name, inflatelib.ErrUnavailable)
		}
		out, err := inf.Inflate(payload, inflatelib.Raw)
		if err != nil {
			return nil, fmt.Errorf("inflate %s: %w", name, err)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w %d: %s", ErrUnsupportedMethod, e.Compression, name)
	}
}
