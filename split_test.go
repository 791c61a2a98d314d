// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// buildSplitSpace lays out data across physical files of the given sizes
// and returns a splitSpace over them.
func buildSplitSpace(t *testing.T, data []byte, sizes []int) *splitSpace {
	t.Helper()
	dir := t.TempDir()

	s := &splitSpace{}
	off := 0
	for i, size := range sizes {
		path := filepath.Join(dir, subFileName("test.vol", i))
		if err := os.WriteFile(path, data[off:off+size], 0644); err != nil {
			t.Fatalf("write sub-file %d: %v", i, err)
		}
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("open sub-file %d: %v", i, err)
		}
		t.Cleanup(func() { f.Close() })
		off += size
		s.table = append(s.table, subFileEntry{EndOffset: uint32(off)})
		s.files = append(s.files, f)
		s.paths = append(s.paths, path)
	}
	return s
}

func TestSplitSpaceReadAt(t *testing.T) {
	data := make([]byte, 100)
	for i := range data {
		data[i] = byte(i)
	}
	s := buildSplitSpace(t, data, []int{40, 40, 20})

	tests := []struct {
		name   string
		off    int64
		length int
	}{
		{"inside first", 0, 10},
		{"inside middle", 45, 10},
		{"exactly one sub-file", 40, 40},
		{"straddles one boundary", 35, 10},
		{"straddles two boundaries", 30, 60},
		{"whole space", 0, 100},
		{"empty read at end", 100, 0},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := make([]byte, test.length)
			if err := s.readAt(got, test.off); err != nil {
				t.Fatalf("readAt(%d, %d): %v", test.off, test.length, err)
			}
			if want := data[test.off : test.off+int64(test.length)]; !bytes.Equal(got, want) {
				t.Errorf("readAt(%d, %d) = % X, want % X", test.off, test.length, got, want)
			}
		})
	}
}

func TestSplitSpaceReadAtOutOfRange(t *testing.T) {
	s := buildSplitSpace(t, make([]byte, 20), []int{10, 10})

	var formatErr *FormatError
	if err := s.readAt(make([]byte, 5), 18); !errors.As(err, &formatErr) {
		t.Errorf("read past end returned %v, want FormatError", err)
	}
	if err := s.readAt(make([]byte, 1), -1); !errors.As(err, &formatErr) {
		t.Errorf("negative offset returned %v, want FormatError", err)
	}
}

func TestSplitSpaceMissingSubFile(t *testing.T) {
	s := buildSplitSpace(t, make([]byte, 30), []int{10, 10, 10})
	s.files[1].Close()
	s.files[1] = nil

	var missing *MissingSubFileError
	err := s.readAt(make([]byte, 20), 5)
	if !errors.As(err, &missing) {
		t.Fatalf("readAt over missing sub-file returned %v, want MissingSubFileError", err)
	}
	if missing.Index != 1 {
		t.Errorf("missing sub-file index = %d, want 1", missing.Index)
	}
}

func TestSubFileName(t *testing.T) {
	tests := []struct {
		path string
		n    int
		want string
	}{
		{"game.vol", 0, "game.000"},
		{"game.vol", 12, "game.012"},
		{"dir/assets.vol", 1, "dir/assets.001"},
		{"dir.v2/assets.vol", 2, "dir.v2/assets.002"},
		{"noext", 0, "noext.000"},
	}
	for _, test := range tests {
		if got := subFileName(test.path, test.n); got != test.want {
			t.Errorf("subFileName(%q, %d) = %q, want %q", test.path, test.n, got, test.want)
		}
	}
}
