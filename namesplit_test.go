// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import "testing"

func TestSplitEntryPath(t *testing.T) {
	tests := []struct {
		input string
		dir   string
		base  string
		ext   string
	}{
		{"track1.vag", "", "TRACK1", ".VAG"},
		{"sound/track1.vag", "SOUND", "TRACK1", ".VAG"},
		{"Sound\\Music\\Track1.vag", "SOUND/MUSIC", "TRACK1", ".VAG"},
		{"/readme.txt", "", "README", ".TXT"},
		{"noext", "", "NOEXT", ""},
		{"dir/archive.tar.gz", "DIR", "ARCHIVE.TAR", ".GZ"},
	}

	for _, test := range tests {
		dir, base, ext := splitEntryPath(test.input)
		if dir != test.dir || base != test.base || ext != test.ext {
			t.Errorf("splitEntryPath(%q) = (%q, %q, %q), want (%q, %q, %q)",
				test.input, dir, base, ext, test.dir, test.base, test.ext)
		}
	}
}

func TestSplitBaseName(t *testing.T) {
	tests := []struct {
		name  string
		prev  string
		cur   string
		next  string
		part1 string
		part2 string
	}{
		{"no neighbours", "", "README", "", "", "README"},
		{"numbered run", "TRACK1", "TRACK2", "TRACK3", "TRACK", "2"},
		{"digit trim", "TRACK9", "TRACK10", "", "TRACK", "10"},
		{"digit trim both ways", "TRACK1", "TRACK10", "TRACK11", "TRACK", "10"},
		{"longer next wins", "A", "INTRO_B", "INTRO_C", "INTRO_", "B"},
		{"unrelated neighbours", "LOGO", "README", "TITLE", "", "README"},
		{"identical neighbour", "MENU", "MENU", "", "MENU", ""},
		{"all digits", "10", "11", "", "", "11"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			part1, part2 := splitBaseName(test.prev, test.cur, test.next)
			if part1 != test.part1 || part2 != test.part2 {
				t.Errorf("splitBaseName(%q, %q, %q) = (%q, %q), want (%q, %q)",
					test.prev, test.cur, test.next, part1, part2, test.part1, test.part2)
			}
			if part1+part2 != test.cur {
				t.Errorf("split does not round-trip: %q + %q != %q", part1, part2, test.cur)
			}
		})
	}
}

func TestSplitBaseNameRoundTripsAnyOrdering(t *testing.T) {
	names := []string{
		"TRACK1", "TRACK2", "TRACK10", "TRACK11", "MENU", "MENU",
		"INTRO_A", "INTRO_B", "X", "", "99BOTTLES", "99CRATES",
	}

	for shift := 0; shift < len(names); shift++ {
		for i, cur := range names {
			var prev, next string
			if i > 0 {
				prev = names[i-1]
			}
			if i+1 < len(names) {
				next = names[i+1]
			}
			part1, part2 := splitBaseName(prev, cur, next)
			if part1+part2 != cur {
				t.Fatalf("ordering %d entry %d: %q + %q != %q", shift, i, part1, part2, cur)
			}
		}
		names = append(names[1:], names[0])
	}
}
