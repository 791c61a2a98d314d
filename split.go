// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import (
	"fmt"
	"os"
	"sort"
)

// splitSpace resolves offsets in the logical data space (the concatenation
// of every sub-file) to physical sub-file reads. Reads may straddle any
// number of sub-file boundaries. All access goes through ReadAt, so a
// splitSpace is safe for concurrent use once built.
type splitSpace struct {
	table []subFileEntry
	files []*os.File
	paths []string
}

// size returns the total length of the logical data space.
func (s *splitSpace) size() int64 {
	if len(s.table) == 0 {
		return 0
	}
	return int64(s.table[len(s.table)-1].EndOffset)
}

// readAt fills p with logical bytes starting at off, splitting the read
// across consecutive sub-files as needed.
func (s *splitSpace) readAt(p []byte, off int64) error {
	if off < 0 || off+int64(len(p)) > s.size() {
		return &FormatError{Reason: "data range outside logical address space"}
	}
	for len(p) > 0 {
		i := sort.Search(len(s.table), func(i int) bool {
			return int64(s.table[i].EndOffset) > off
		})
		var start int64
		if i > 0 {
			start = int64(s.table[i-1].EndOffset)
		}
		if s.files[i] == nil {
			return &MissingSubFileError{Path: s.paths[i], Index: i}
		}
		n := int64(s.table[i].EndOffset) - off
		if n > int64(len(p)) {
			n = int64(len(p))
		}
		if _, err := s.files[i].ReadAt(p[:n], off-start); err != nil {
			return fmt.Errorf("read sub-file %03d: %w", i, err)
		}
		p = p[n:]
		off += n
	}
	return nil
}

// close releases every sub-file handle.
func (s *splitSpace) close() error {
	var first error
	for _, f := range s.files {
		if f == nil {
			continue
		}
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// splitWriter appends the data stream across numbered sub-files during a
// build pass. Sub-files are written as temp files in the destination
// directory and renamed into place once the whole archive is serialized.
// Each written byte, padding included, feeds the chunk summer so the
// checksum table matches the physical stream exactly.
type splitWriter struct {
	dir       string
	maxSplit  uint32
	checksums bool

	cur        *os.File
	summer     *chunkSummer
	localOff   uint32
	cumulative uint64
	chunkStart uint32

	table     []subFileEntry
	chunks    []uint16
	tempPaths []string
}

func newSplitWriter(dir string, maxSplit uint32, checksums bool) *splitWriter {
	return &splitWriter{dir: dir, maxSplit: maxSplit, checksums: checksums}
}

// tell returns the current logical offset, i.e. the data offset the next
// written byte will receive.
func (w *splitWriter) tell() uint64 {
	return w.cumulative
}

// localOffset returns the write cursor within the open sub-file.
func (w *splitWriter) localOffset() uint32 {
	return w.localOff
}

// opened reports whether a sub-file is currently open.
func (w *splitWriter) opened() bool {
	return w.cur != nil
}

// fits reports whether n more bytes fit into the open sub-file.
func (w *splitWriter) fits(n uint64) bool {
	return uint64(w.localOff)+n <= uint64(w.maxSplit)
}

func (w *splitWriter) open() error {
	f, err := os.CreateTemp(w.dir, "vol_*.tmp")
	if err != nil {
		return fmt.Errorf("create sub-file temp: %w", err)
	}
	w.cur = f
	w.tempPaths = append(w.tempPaths, f.Name())
	w.localOff = 0
	w.chunkStart = uint32(len(w.chunks))
	if w.checksums {
		w.summer = newChunkSummer(ChunkSize)
	}
	return nil
}

// closeSub records the sub-file table entry for the open sub-file and
// flushes its completed checksum chunks. The partial trailing window is
// dropped by the summer.
func (w *splitWriter) closeSub() error {
	if w.cur == nil {
		return nil
	}
	if w.summer != nil {
		w.chunks = append(w.chunks, w.summer.finish()...)
		w.summer = nil
	}
	w.table = append(w.table, subFileEntry{
		EndOffset:  uint32(w.cumulative),
		ChunkIndex: w.chunkStart,
	})
	err := w.cur.Close()
	w.cur = nil
	if err != nil {
		return fmt.Errorf("close sub-file temp: %w", err)
	}
	return nil
}

// rollover closes the open sub-file, if any, and opens the next one.
func (w *splitWriter) rollover() error {
	if err := w.closeSub(); err != nil {
		return err
	}
	return w.open()
}

// write appends p to the data stream. If p overruns the open sub-file it
// continues into fresh sub-files, so a single entry larger than the split
// ceiling still never produces an oversized sub-file.
func (w *splitWriter) write(p []byte) error {
	if w.cur == nil {
		if err := w.open(); err != nil {
			return err
		}
	}
	for len(p) > 0 {
		space := w.maxSplit - w.localOff
		if space == 0 {
			if err := w.rollover(); err != nil {
				return err
			}
			continue
		}
		n := uint32(len(p))
		if n > space {
			n = space
		}
		if _, err := w.cur.Write(p[:n]); err != nil {
			return fmt.Errorf("write sub-file data: %w", err)
		}
		if w.summer != nil {
			w.summer.apply(p[:n])
		}
		w.localOff += n
		w.cumulative += uint64(n)
		p = p[n:]
	}
	return nil
}

// pad writes count zero bytes. Padding counts toward split accounting and
// checksum windows like any other data.
func (w *splitWriter) pad(count uint32) error {
	return w.write(make([]byte, count))
}

// finish closes the final sub-file and returns the completed sub-file and
// checksum tables.
func (w *splitWriter) finish() ([]subFileEntry, []uint16, error) {
	if err := w.closeSub(); err != nil {
		return nil, nil, err
	}
	return w.table, w.chunks, nil
}

// abort removes every temp file, after a failed build.
func (w *splitWriter) abort() {
	if w.cur != nil {
		w.cur.Close()
		w.cur = nil
	}
	for _, p := range w.tempPaths {
		os.Remove(p)
	}
}

// install renames the temp sub-files to their conventional names next to
// the index file.
func (w *splitWriter) install(indexPath string) error {
	for i, tmp := range w.tempPaths {
		dst := subFileName(indexPath, i)
		os.Remove(dst)
		if err := os.Rename(tmp, dst); err != nil {
			return fmt.Errorf("install sub-file %03d: %w", i, err)
		}
	}
	return nil
}
