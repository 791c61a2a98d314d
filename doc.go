// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

/*
Package vol provides pure Go support for reading and writing VOL archives.

VOL is a legacy game-asset container used by several disc-era titles: one
compact index file describes the catalog, and the raw file data lives in
numbered sub-files (GAME.000, GAME.001, ...) that together form a single
logical address space. The format stores no compression; its job is packing
thousands of small assets into a few large, sequentially-read volumes.
This package reproduces the on-disk layout byte for byte, including its
quirks (shared-prefix filename splitting, the unchecksummed trailing chunk
window).

# Basic Usage

Creating an archive:

	archive, err := vol.Create("assets.vol", vol.Options{Checksums: true})
	if err != nil {
		log.Fatal(err)
	}

	err = archive.AddFile("local/track1.vag", "SOUND/TRACK1.VAG")
	if err != nil {
		log.Fatal(err)
	}

	if err := archive.Close(); err != nil {
		log.Fatal(err)
	}

Reading an archive:

	archive, err := vol.Open("assets.vol")
	if err != nil {
		log.Fatal(err)
	}
	defer archive.Close()

	data, err := archive.ReadFile("SOUND/TRACK1.VAG")
	if err != nil {
		log.Fatal(err)
	}

# Name Conventions

Archive names are case-insensitive and stored uppercase; forward and
backward slashes both work. Paths are flat strings, so "SOUND/TRACK1.VAG"
and "sound\track1.vag" name the same entry.

# Integrity

Every archive carries a CRC16 over its index. With Options.Checksums set,
a checksum table additionally covers the data volumes in fixed 32 KiB
windows. [Archive.Verify] checks both. Bytes past the last full window of
each sub-file are not covered; that gap is part of the format.

# Concurrency

Archives are write-once: the build pass runs single-threaded because
string-table offsets and checksum chunk indices are assigned in ingestion
order. An opened archive is immutable and all reads go through ReadAt, so
ReadFile, Extract and Verify may be called from multiple goroutines.

# Limitations

  - Archives cannot be modified after creation (no insert or delete).
  - No compression or encryption; data is stored raw.
  - The logical data space is limited to 4 GiB (32-bit offsets).
*/
package vol
