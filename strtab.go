// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import (
	"strings"

	"github.com/cespare/xxhash/v2"
)

// stringTable is the append-only interning store for name components. Every
// string is case-folded to uppercase before hashing and comparison; the
// original casing is discarded, matching the case-insensitive name lookup of
// the on-disk format. Interning an equal string twice returns the offset of
// the first insertion, and every offset handed out stays valid for the
// table's lifetime.
//
// Lookup uses open addressing with linear probing over a power-of-two slot
// array. The table rebuilds itself once more than half the slots are live,
// which keeps probe chains short and insertion amortized O(1). The probe
// scheme is purely an in-memory structure; only the byte buffer is
// serialized.
type stringTable struct {
	slots []strSlot
	live  int
	buf   []byte
}

type strSlot struct {
	hash   uint64
	offset uint32
	used   bool
}

const strTableMinSlots = 16

func newStringTable() *stringTable {
	return &stringTable{slots: make([]strSlot, strTableMinSlots)}
}

// intern stores s (folded to uppercase) and returns its byte offset within
// the table. Duplicate strings, compared case-insensitively, return the
// offset of the original.
func (t *stringTable) intern(s string) uint32 {
	s = strings.ToUpper(s)
	if t.live*2 >= len(t.slots) {
		t.rehash()
	}

	h := xxhash.Sum64String(s)
	mask := uint64(len(t.slots) - 1)
	i := h & mask
	for t.slots[i].used {
		if t.slots[i].hash == h && t.at(t.slots[i].offset) == s {
			return t.slots[i].offset
		}
		i = (i + 1) & mask
	}

	offset := uint32(len(t.buf))
	t.buf = append(t.buf, s...)
	t.buf = append(t.buf, 0)
	t.slots[i] = strSlot{hash: h, offset: offset, used: true}
	t.live++
	return offset
}

// at returns the string stored at a previously returned offset.
func (t *stringTable) at(offset uint32) string {
	end := offset
	for end < uint32(len(t.buf)) && t.buf[end] != 0 {
		end++
	}
	return string(t.buf[offset:end])
}

// rehash rebuilds the slot array at double capacity. Offsets do not move;
// only the probe structure is rebuilt.
func (t *stringTable) rehash() {
	next := make([]strSlot, len(t.slots)*2)
	mask := uint64(len(next) - 1)
	for _, s := range t.slots {
		if !s.used {
			continue
		}
		i := s.hash & mask
		for next[i].used {
			i = (i + 1) & mask
		}
		next[i] = s
	}
	t.slots = next
}

// bytes returns the serialized table: every interned string in first
// insertion order, each followed by a single zero terminator.
func (t *stringTable) bytes() []byte {
	return t.buf
}

// lookupString reads a NUL-terminated string out of a parsed string-table
// blob. Used on the read side, where offsets come from the entry table.
func lookupString(table []byte, offset uint32) (string, error) {
	if offset >= uint32(len(table)) {
		return "", &FormatError{Reason: "string offset out of range"}
	}
	end := offset
	for table[end] != 0 {
		end++
		if end == uint32(len(table)) {
			return "", &FormatError{Reason: "unterminated string in string table"}
		}
	}
	return string(table[offset:end]), nil
}
