// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Options configures archive creation. Zero-value fields fall back to the
// format defaults.
type Options struct {
	// SectorSize is the alignment unit for padded entries. Must be a
	// power of two. Defaults to DefaultSectorSize.
	SectorSize uint32

	// MaxSplitSize is the sub-file size ceiling. Must be a multiple of
	// SectorSize. Defaults to DefaultMaxSplitSize.
	MaxSplitSize uint32

	// Checksums enables the per-chunk checksum table. The whole-archive
	// index checksum is always written.
	Checksums bool

	// AlignExtensions lists file extensions (with or without the leading
	// dot, any casing) whose data is padded to the next sector boundary.
	AlignExtensions []string
}

func (o Options) withDefaults() Options {
	if o.SectorSize == 0 {
		o.SectorSize = DefaultSectorSize
	}
	if o.MaxSplitSize == 0 {
		o.MaxSplitSize = DefaultMaxSplitSize
	}
	return o
}

func (o Options) validate() error {
	if o.SectorSize == 0 || o.SectorSize&(o.SectorSize-1) != 0 {
		return fmt.Errorf("sector size %d is not a power of two", o.SectorSize)
	}
	if o.MaxSplitSize == 0 || o.MaxSplitSize%o.SectorSize != 0 {
		return fmt.Errorf("max split size %d is not a multiple of sector size %d",
			o.MaxSplitSize, o.SectorSize)
	}
	return nil
}

// Archive represents a VOL archive: one index file plus numbered data
// sub-files (NAME.000, NAME.001, ...).
type Archive struct {
	path string
	mode string // "r" for read, "w" for write

	// write mode
	opts    Options
	pending []pendingFile

	// read mode
	header  *volHeader
	entries []fileEntry
	names   map[string]int
	strings []byte
	chunks  []uint16
	space   *splitSpace
	file    *os.File
}

// pendingFile is a file queued for the build pass.
type pendingFile struct {
	name string
	data []byte
}

// Create starts a new archive at path. Nothing is written until Close;
// output goes to temp files first and is renamed into place on success.
func Create(path string, opts Options) (*Archive, error) {
	opts = opts.withDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create directory: %w", err)
	}
	return &Archive{
		path: path,
		mode: "w",
		opts: opts,
	}, nil
}

// Open opens an existing archive for reading. It parses and validates the
// index, builds the name catalog and opens every referenced sub-file.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}

	a, err := parseArchive(file, path)
	if err != nil {
		file.Close()
		return nil, err
	}
	return a, nil
}

func parseArchive(file *os.File, path string) (*Archive, error) {
	header, err := readHeader(file)
	if err != nil {
		return nil, err
	}

	if header.SubFileTableOffset != headerSize ||
		header.EntryTableOffset < header.SubFileTableOffset ||
		header.ChecksumTableOffset < header.EntryTableOffset ||
		header.StringTableOffset < header.ChecksumTableOffset {
		return nil, &FormatError{Reason: "table offsets out of order"}
	}
	if uint64(header.EntryTableOffset) != uint64(header.SubFileTableOffset)+uint64(header.SubFileCount)*8 ||
		uint64(header.ChecksumTableOffset) != uint64(header.EntryTableOffset)+uint64(header.FileCount)*24 {
		return nil, &FormatError{Reason: "table sizes disagree with header counts"}
	}
	if (header.StringTableOffset-header.ChecksumTableOffset)%2 != 0 {
		return nil, &FormatError{Reason: "checksum table has odd byte length"}
	}

	// Bound every declared table against the physical index before any
	// count-sized allocation.
	stat, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat index: %w", err)
	}
	if uint64(header.StringTableOffset)+uint64(header.StringTableLength) > uint64(stat.Size()) {
		return nil, &FormatError{Reason: "tables extend past end of index"}
	}

	if _, err := file.Seek(int64(header.SubFileTableOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to sub-file table: %w", err)
	}
	subFiles, err := readSubFileTable(file, header.SubFileCount)
	if err != nil {
		return nil, err
	}

	if _, err := file.Seek(int64(header.EntryTableOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to entry table: %w", err)
	}
	entries, err := readEntryTable(file, header.FileCount)
	if err != nil {
		return nil, err
	}

	if _, err := file.Seek(int64(header.ChecksumTableOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to checksum table: %w", err)
	}
	chunkCount := (header.StringTableOffset - header.ChecksumTableOffset) / 2
	chunks, err := readChecksumTable(file, chunkCount)
	if err != nil {
		return nil, err
	}

	if _, err := file.Seek(int64(header.StringTableOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek to string table: %w", err)
	}
	strTable := make([]byte, header.StringTableLength)
	if _, err := io.ReadFull(file, strTable); err != nil {
		return nil, fmt.Errorf("read string table: %w", err)
	}

	space := &splitSpace{
		table: subFiles,
		files: make([]*os.File, len(subFiles)),
		paths: make([]string, len(subFiles)),
	}
	for i := range subFiles {
		sp := subFileName(path, i)
		space.paths[i] = sp
		f, err := os.Open(sp)
		if err != nil {
			if os.IsNotExist(err) {
				space.close()
				return nil, &MissingSubFileError{Path: sp, Index: i}
			}
			space.close()
			return nil, fmt.Errorf("open sub-file %03d: %w", i, err)
		}
		space.files[i] = f
	}

	a := &Archive{
		path:    path,
		mode:    "r",
		header:  header,
		entries: entries,
		strings: strTable,
		chunks:  chunks,
		space:   space,
		file:    file,
		names:   make(map[string]int, len(entries)),
	}

	for i := range entries {
		e := &entries[i]
		if int64(e.DataOffset)+int64(e.Length) > space.size() {
			space.close()
			return nil, &FormatError{Reason: "entry extends past end of data space"}
		}
		dir, name, err := a.entryName(e)
		if err != nil {
			space.close()
			return nil, err
		}
		full := joinEntryPath(dir, name)
		if unsafeEntryPath(full) {
			space.close()
			return nil, &FormatError{Reason: "entry path escapes the archive root"}
		}
		a.names[full] = i
	}

	return a, nil
}

// AddFile queues the file at srcPath for the archive under archivePath.
// Names are case-folded to uppercase; both slash styles are accepted.
// Only valid for archives opened with Create.
func (a *Archive) AddFile(srcPath, archivePath string) error {
	data, err := os.ReadFile(srcPath)
	if err != nil {
		return fmt.Errorf("read file %s: %w", srcPath, err)
	}
	return a.AddBytes(archivePath, data)
}

// AddBytes queues an in-memory blob for the archive under archivePath.
// Paths with "." or ".." segments are rejected; an archived name must stay
// below the extraction root.
func (a *Archive) AddBytes(archivePath string, data []byte) error {
	if a.mode != "w" {
		return fmt.Errorf("archive not opened for writing")
	}
	name := normalizeName(archivePath)
	if name == "" || unsafeEntryPath(name) {
		return fmt.Errorf("unsafe archive path %q", archivePath)
	}
	a.pending = append(a.pending, pendingFile{name: archivePath, data: data})
	return nil
}

// HasFile returns true if the archive contains the named file.
func (a *Archive) HasFile(name string) bool {
	if a.mode == "w" {
		key := normalizeName(name)
		for _, pf := range a.pending {
			if normalizeName(pf.name) == key {
				return true
			}
		}
		return false
	}
	_, ok := a.names[normalizeName(name)]
	return ok
}

// Close closes the archive. For archives opened with Create, this runs the
// build pass and writes the archive to disk.
func (a *Archive) Close() error {
	if a.mode == "r" {
		var first error
		if a.space != nil {
			first = a.space.close()
		}
		if a.file != nil {
			if err := a.file.Close(); err != nil && first == nil {
				first = err
			}
		}
		return first
	}
	return a.writeArchive()
}

// entryName resolves an entry's interned string parts into its directory
// and filename.
func (a *Archive) entryName(e *fileEntry) (dir, name string, err error) {
	part1, err := lookupString(a.strings, e.NamePart1)
	if err != nil {
		return "", "", err
	}
	part2, err := lookupString(a.strings, e.NamePart2)
	if err != nil {
		return "", "", err
	}
	ext, err := lookupString(a.strings, e.Extension)
	if err != nil {
		return "", "", err
	}
	dir, err = lookupString(a.strings, e.Path)
	if err != nil {
		return "", "", err
	}
	return dir, part1 + part2 + ext, nil
}

// normalizeName canonicalizes a lookup name the same way the build pass
// canonicalizes stored names.
func normalizeName(name string) string {
	name = strings.ToUpper(strings.ReplaceAll(name, "\\", "/"))
	return strings.TrimPrefix(name, "/")
}

func joinEntryPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}

// unsafeEntryPath reports whether a normalized archive path contains a
// segment that would resolve outside the extraction root.
func unsafeEntryPath(p string) bool {
	for _, seg := range strings.Split(p, "/") {
		if seg == "." || seg == ".." {
			return true
		}
	}
	return false
}
