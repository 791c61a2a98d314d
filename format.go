// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import (
	"encoding/binary"
	"fmt"
	"io"
)

// VOL format constants
const (
	// Magic signature "VOL\x1A" in little-endian
	volMagic = 0x1A4C4F56

	// Format version written and accepted by this package
	volVersion = 1

	// Size of the fixed header in bytes
	headerSize = 48

	// ChunkSize is the byte window covered by one checksum-table entry.
	// The header carries no chunk-size field, so the window is fixed by
	// the format itself.
	ChunkSize = 32768

	// The metadata stream (header through string table) is zero-padded
	// to this boundary.
	metaAlign = 2048

	// Defaults used by Options when fields are left zero.
	DefaultSectorSize   = 2048
	DefaultMaxSplitSize = 1 << 30
)

// volHeader is the fixed 48-byte index header. All fields are little-endian
// and the order is part of the format.
type volHeader struct {
	Magic               uint32 // "VOL\x1A"
	Version             uint32 // format version, must equal volVersion
	Checksum            uint32 // whole-archive CRC16, zero-extended
	SectorSize          uint32 // alignment unit for padded entries, power of two
	MaxSplitSize        uint32 // sub-file size ceiling the archive was built with
	FileCount           uint32 // number of entry-table records
	SubFileCount        uint32 // number of sub-file-table records
	StringTableLength   uint32 // bytes of string data (padding excluded)
	SubFileTableOffset  uint32 // from start of the index stream
	EntryTableOffset    uint32
	ChecksumTableOffset uint32
	StringTableOffset   uint32
}

// subFileEntry marks where one physical sub-file ends within the logical
// data space and where its checksum chunks begin in the checksum table.
type subFileEntry struct {
	EndOffset  uint32 // cumulative logical offset of this sub-file's end
	ChunkIndex uint32 // first checksum-table entry for this sub-file
}

// fileEntry is one record of the entry table. The four name fields are byte
// offsets into the string table; DataOffset addresses the logical
// concatenation of all sub-files.
type fileEntry struct {
	NamePart1  uint32 // shared-prefix part of the base name
	NamePart2  uint32 // remainder of the base name
	Path       uint32 // directory path, "" for the archive root
	Extension  uint32 // extension including the leading dot, "" if none
	DataOffset uint32
	Length     uint32
}

// readHeader parses and validates the fixed header. Magic and version are
// checked before any other field is trusted.
func readHeader(r io.Reader) (*volHeader, error) {
	h := &volHeader{}
	if err := binary.Read(r, binary.LittleEndian, h); err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	if h.Magic != volMagic {
		return nil, &FormatError{Reason: fmt.Sprintf("bad magic 0x%08X", h.Magic)}
	}
	if h.Version != volVersion {
		return nil, &FormatError{Reason: fmt.Sprintf("unsupported version %d", h.Version)}
	}
	return h, nil
}

// readSubFileTable reads count sub-file records and checks that the
// cumulative offsets are strictly increasing (an empty leading sub-file is
// the one permitted exception for an archive with no data at all).
func readSubFileTable(r io.Reader, count uint32) ([]subFileEntry, error) {
	table := make([]subFileEntry, count)
	if err := binary.Read(r, binary.LittleEndian, table); err != nil {
		return nil, fmt.Errorf("read sub-file table: %w", err)
	}
	for i := 1; i < len(table); i++ {
		if table[i].EndOffset <= table[i-1].EndOffset {
			return nil, &FormatError{Reason: "sub-file offsets not increasing"}
		}
	}
	return table, nil
}

func readEntryTable(r io.Reader, count uint32) ([]fileEntry, error) {
	table := make([]fileEntry, count)
	if err := binary.Read(r, binary.LittleEndian, table); err != nil {
		return nil, fmt.Errorf("read entry table: %w", err)
	}
	return table, nil
}

func readChecksumTable(r io.Reader, count uint32) ([]uint16, error) {
	table := make([]uint16, count)
	if err := binary.Read(r, binary.LittleEndian, table); err != nil {
		return nil, fmt.Errorf("read checksum table: %w", err)
	}
	return table, nil
}

// subFileName derives the conventional name of the numbered split file next
// to the index: BASENAME.000, BASENAME.001, ...
func subFileName(indexPath string, n int) string {
	base := indexPath
	for i := len(base) - 1; i >= 0; i-- {
		if base[i] == '/' || base[i] == '\\' {
			break
		}
		if base[i] == '.' {
			base = base[:i]
			break
		}
	}
	return fmt.Sprintf("%s.%03d", base, n)
}
