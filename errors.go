// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import "fmt"

// FormatError indicates that a stream is not a valid VOL index: bad magic,
// unsupported version, or tables that contradict the header. An archive
// producing a FormatError is rejected before any other field is trusted.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string {
	return "vol: invalid archive: " + e.Reason
}

// ChecksumMismatchError reports a failed checksum comparison, either for the
// whole index (SubFile == -1) or for a single chunk window of a sub-file.
type ChecksumMismatchError struct {
	Expected uint16
	Actual   uint16
	SubFile  int   // sub-file index, or -1 for the whole-archive checksum
	Offset   int64 // byte offset of the failed window within the sub-file
}

func (e *ChecksumMismatchError) Error() string {
	if e.SubFile < 0 {
		return fmt.Sprintf("vol: archive checksum mismatch: expected 0x%04X, got 0x%04X",
			e.Expected, e.Actual)
	}
	return fmt.Sprintf("vol: chunk checksum mismatch in sub-file %d at byte %d: expected 0x%04X, got 0x%04X",
		e.SubFile, e.Offset, e.Expected, e.Actual)
}

// MissingSubFileError indicates that a physical split file referenced by the
// sub-file table does not exist on disk.
type MissingSubFileError struct {
	Path  string
	Index int
}

func (e *MissingSubFileError) Error() string {
	return fmt.Sprintf("vol: missing sub-file %03d: %s", e.Index, e.Path)
}

// FileNotFoundError indicates that a named entry is absent from the catalog.
// Unlike the other error types it is recoverable by the caller.
type FileNotFoundError struct {
	Name string
}

func (e *FileNotFoundError) Error() string {
	return "vol: file not found: " + e.Name
}
