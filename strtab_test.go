// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import (
	"bytes"
	"fmt"
	"testing"
)

func TestStringTableDedup(t *testing.T) {
	tab := newStringTable()

	first := tab.intern("Track1")
	tests := []struct {
		input string
		want  uint32
	}{
		{"Track1", first},
		{"TRACK1", first},
		{"track1", first},
		{"tRaCk1", first},
	}
	for _, test := range tests {
		if got := tab.intern(test.input); got != test.want {
			t.Errorf("intern(%q) = %d, want %d", test.input, got, test.want)
		}
	}

	other := tab.intern("Track2")
	if other == first {
		t.Errorf("distinct strings interned at the same offset %d", first)
	}
}

func TestStringTableLayout(t *testing.T) {
	tab := newStringTable()

	empty := tab.intern("")
	a := tab.intern("a")
	ext := tab.intern(".txt")

	if empty != 0 || a != 1 || ext != 3 {
		t.Errorf("offsets = %d, %d, %d, want 0, 1, 3", empty, a, ext)
	}
	if got, want := tab.bytes(), []byte("\x00A\x00.TXT\x00"); !bytes.Equal(got, want) {
		t.Errorf("bytes() = %q, want %q", got, want)
	}

	// The empty string dedups like any other.
	if again := tab.intern(""); again != empty {
		t.Errorf("re-intern of empty string = %d, want %d", again, empty)
	}
}

func TestStringTableOffsetsStableAcrossRehash(t *testing.T) {
	tab := newStringTable()

	offsets := make(map[string]uint32)
	for i := 0; i < 200; i++ {
		s := fmt.Sprintf("ENTRY%03d", i)
		offsets[s] = tab.intern(s)
	}

	// Growth must not move or re-map anything.
	for s, off := range offsets {
		if got := tab.intern(s); got != off {
			t.Errorf("intern(%q) after rehash = %d, want %d", s, got, off)
		}
		if got := tab.at(off); got != s {
			t.Errorf("at(%d) = %q, want %q", off, got, s)
		}
	}
}

func TestLookupString(t *testing.T) {
	table := []byte("\x00HELLO\x00.PAK\x00")

	tests := []struct {
		offset uint32
		want   string
	}{
		{0, ""},
		{1, "HELLO"},
		{7, ".PAK"},
		{3, "LLO"}, // mid-string offsets still terminate correctly
	}
	for _, test := range tests {
		got, err := lookupString(table, test.offset)
		if err != nil {
			t.Fatalf("lookupString(%d): %v", test.offset, err)
		}
		if got != test.want {
			t.Errorf("lookupString(%d) = %q, want %q", test.offset, got, test.want)
		}
	}

	if _, err := lookupString(table, uint32(len(table))); err == nil {
		t.Errorf("out-of-range offset did not fail")
	}
	if _, err := lookupString([]byte("ABC"), 0); err == nil {
		t.Errorf("unterminated string did not fail")
	}
}
