// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// FileInfo describes one archive entry.
type FileInfo struct {
	Name string // filename, extension included
	Path string // directory within the archive, "" for the root
	Size uint32
}

// Files enumerates the catalog in entry-table order. The order is whatever
// the archive was built with, not necessarily sorted.
func (a *Archive) Files() ([]FileInfo, error) {
	if a.mode != "r" {
		return nil, fmt.Errorf("archive not opened for reading")
	}
	infos := make([]FileInfo, len(a.entries))
	for i := range a.entries {
		dir, name, err := a.entryName(&a.entries[i])
		if err != nil {
			return nil, err
		}
		infos[i] = FileInfo{Name: name, Path: dir, Size: a.entries[i].Length}
	}
	return infos, nil
}

// ReadFile returns the contents of the named entry. The name is the full
// archive path and is matched case-insensitively.
func (a *Archive) ReadFile(name string) ([]byte, error) {
	if a.mode != "r" {
		return nil, fmt.Errorf("archive not opened for reading")
	}
	i, ok := a.names[normalizeName(name)]
	if !ok {
		return nil, &FileNotFoundError{Name: name}
	}
	return a.readEntry(&a.entries[i])
}

func (a *Archive) readEntry(e *fileEntry) ([]byte, error) {
	data := make([]byte, e.Length)
	if err := a.space.readAt(data, int64(e.DataOffset)); err != nil {
		return nil, err
	}
	return data, nil
}

// Extract writes every entry below destDir, creating parent directories as
// needed.
func (a *Archive) Extract(destDir string) error {
	if a.mode != "r" {
		return fmt.Errorf("archive not opened for reading")
	}
	for i := range a.entries {
		dir, name, err := a.entryName(&a.entries[i])
		if err != nil {
			return err
		}
		if unsafeEntryPath(joinEntryPath(dir, name)) {
			return &FormatError{Reason: "entry path escapes the archive root"}
		}
		data, err := a.readEntry(&a.entries[i])
		if err != nil {
			return err
		}
		outDir := filepath.Join(destDir, filepath.FromSlash(dir))
		if err := os.MkdirAll(outDir, 0755); err != nil {
			return fmt.Errorf("create directory: %w", err)
		}
		if err := os.WriteFile(filepath.Join(outDir, name), data, 0644); err != nil {
			return fmt.Errorf("write file: %w", err)
		}
	}
	return nil
}

// Verify checks the archive against its checksums: first the whole-archive
// checksum over the index stream, then, when a checksum table is present,
// every full chunk window of every sub-file. The trailing partial window of
// a sub-file carries no checksum and is not verified; that asymmetry is part
// of the format.
func (a *Archive) Verify() error {
	if a.mode != "r" {
		return fmt.Errorf("archive not opened for reading")
	}

	if err := a.verifyIndex(); err != nil {
		return err
	}
	if len(a.chunks) == 0 {
		return nil
	}
	return a.verifyChunks()
}

func (a *Archive) verifyIndex() error {
	stat, err := a.file.Stat()
	if err != nil {
		return fmt.Errorf("stat index: %w", err)
	}
	index := make([]byte, stat.Size())
	if _, err := a.file.ReadAt(index, 0); err != nil && err != io.EOF {
		return fmt.Errorf("read index: %w", err)
	}

	// The stored checksum covers the stream with its own field zeroed.
	binary.LittleEndian.PutUint32(index[8:12], 0)
	sum := newChunkSummer(0)
	sum.apply(index)
	actual := sum.sum()
	if uint32(actual) != a.header.Checksum {
		return &ChecksumMismatchError{
			Expected: uint16(a.header.Checksum),
			Actual:   actual,
			SubFile:  -1,
		}
	}
	return nil
}

func (a *Archive) verifyChunks() error {
	window := make([]byte, ChunkSize)
	for i, sub := range a.space.table {
		var start int64
		if i > 0 {
			start = int64(a.space.table[i-1].EndOffset)
		}
		end := int64(sub.EndOffset)
		idx := int(sub.ChunkIndex)
		for off := start; off+ChunkSize <= end; off += ChunkSize {
			if idx >= len(a.chunks) {
				return &FormatError{Reason: "checksum table shorter than chunked data"}
			}
			if err := a.space.readAt(window, off); err != nil {
				return err
			}
			if actual := crc16(window); actual != a.chunks[idx] {
				return &ChecksumMismatchError{
					Expected: a.chunks[idx],
					Actual:   actual,
					SubFile:  i,
					Offset:   off - start,
				}
			}
			idx++
		}
	}
	return nil
}
