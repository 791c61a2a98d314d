// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import "strings"

// splitEntryPath decomposes an archive path into its directory, base name
// (extension stripped) and extension (leading dot included). Paths use
// forward slashes; backslashes are normalized and everything is folded to
// uppercase, matching the string table.
func splitEntryPath(p string) (dir, base, ext string) {
	p = strings.ToUpper(strings.ReplaceAll(p, "\\", "/"))
	p = strings.TrimPrefix(p, "/")
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		dir, p = p[:i], p[i+1:]
	}
	if i := strings.LastIndexByte(p, '.'); i >= 0 {
		return dir, p[:i], p[i:]
	}
	return dir, p, ""
}

// splitBaseName splits a base filename into the prefix it shares with its
// neighbours in archive order and the remainder. Asset families tend to be
// numbered runs (TRACK2, TRACK3, ...), so the shared prefix of adjacent
// names dedups well in the string table. Trailing digits are trimmed from
// the matched prefix so that TRACK1 next to TRACK10 splits at "TRACK", not
// "TRACK1". The reader reconstructs the name as part1 + part2, which must
// equal cur exactly.
func splitBaseName(prev, cur, next string) (part1, part2 string) {
	n := commonPrefixLen(cur, prev)
	if m := commonPrefixLen(cur, next); m > n {
		n = m
	}
	for n > 0 && cur[n-1] >= '0' && cur[n-1] <= '9' {
		n--
	}
	return cur[:n], cur[n:]
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}
