// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

package vol

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// writeArchive runs the single-threaded build pass: it streams every
// pending file into the split data space, populating the string table,
// entry catalog and checksum table in lockstep, then serializes the index
// and renames everything into place.
func (a *Archive) writeArchive() error {
	dir := filepath.Dir(a.path)
	strtab := newStringTable()
	sw := newSplitWriter(dir, a.opts.MaxSplitSize, a.opts.Checksums)

	align := make(map[string]bool, len(a.opts.AlignExtensions))
	for _, ext := range a.opts.AlignExtensions {
		ext = strings.ToUpper(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		align[ext] = true
	}

	type entryPath struct {
		dir, base, ext string
	}
	parts := make([]entryPath, len(a.pending))
	for i, pf := range a.pending {
		d, b, e := splitEntryPath(pf.name)
		parts[i] = entryPath{d, b, e}
	}

	entries := make([]fileEntry, len(a.pending))
	for i, pf := range a.pending {
		if uint64(len(pf.data)) > 0xFFFFFFFF {
			sw.abort()
			return fmt.Errorf("file %s exceeds the 32-bit length field", pf.name)
		}

		// Base names are split against both neighbours; the longer
		// shared prefix wins.
		var prev, next string
		if i > 0 {
			prev = parts[i-1].base
		}
		if i+1 < len(parts) {
			next = parts[i+1].base
		}
		part1, part2 := splitBaseName(prev, parts[i].base, next)

		// Pad to the next sector boundary only when the cursor is
		// actually misaligned.
		var padN uint32
		if align[parts[i].ext] && sw.opened() {
			if rem := sw.localOffset() % a.opts.SectorSize; rem != 0 {
				padN = a.opts.SectorSize - rem
			}
		}

		needed := uint64(padN) + uint64(len(pf.data))
		if sw.opened() && sw.localOffset() > 0 && !sw.fits(needed) {
			if err := sw.rollover(); err != nil {
				sw.abort()
				return err
			}
			padN = 0
		}
		if sw.tell()+needed > 0xFFFFFFFF {
			sw.abort()
			return fmt.Errorf("archive data exceeds the 32-bit address space")
		}
		if padN > 0 {
			if err := sw.pad(padN); err != nil {
				sw.abort()
				return err
			}
		}

		entries[i] = fileEntry{
			NamePart1:  strtab.intern(part1),
			NamePart2:  strtab.intern(part2),
			Path:       strtab.intern(parts[i].dir),
			Extension:  strtab.intern(parts[i].ext),
			DataOffset: uint32(sw.tell()),
			Length:     uint32(len(pf.data)),
		}
		if err := sw.write(pf.data); err != nil {
			sw.abort()
			return err
		}
	}

	subFiles, chunks, err := sw.finish()
	if err != nil {
		sw.abort()
		return err
	}

	index, err := buildIndex(a.opts, entries, subFiles, chunks, strtab.bytes())
	if err != nil {
		sw.abort()
		return err
	}

	tmp, err := os.CreateTemp(dir, "vol_*.tmp")
	if err != nil {
		sw.abort()
		return fmt.Errorf("create index temp: %w", err)
	}
	if _, err := tmp.Write(index); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		sw.abort()
		return fmt.Errorf("write index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		sw.abort()
		return fmt.Errorf("close index temp: %w", err)
	}

	if err := sw.install(a.path); err != nil {
		os.Remove(tmp.Name())
		sw.abort()
		return err
	}

	// Drop stale sub-files left over from a previous, larger archive.
	for i := len(subFiles); ; i++ {
		if os.Remove(subFileName(a.path, i)) != nil {
			break
		}
	}

	os.Remove(a.path)
	if err := os.Rename(tmp.Name(), a.path); err != nil {
		if err := copyFile(tmp.Name(), a.path); err != nil {
			os.Remove(tmp.Name())
			return fmt.Errorf("save archive: %w", err)
		}
		os.Remove(tmp.Name())
	}

	return nil
}

// buildIndex serializes the header and tables into one metadata stream,
// zero-padded to the 2048-byte boundary, with the whole-archive checksum
// backpatched last. The checksum covers the entire stream with its own
// field held at zero.
func buildIndex(opts Options, entries []fileEntry, subFiles []subFileEntry, chunks []uint16, strBytes []byte) ([]byte, error) {
	subOff := uint32(headerSize)
	entOff := subOff + uint32(len(subFiles))*8
	chkOff := entOff + uint32(len(entries))*24
	strOff := chkOff + uint32(len(chunks))*2
	end := strOff + uint32(len(strBytes))
	padded := (end + metaAlign - 1) / metaAlign * metaAlign

	h := volHeader{
		Magic:               volMagic,
		Version:             volVersion,
		SectorSize:          opts.SectorSize,
		MaxSplitSize:        opts.MaxSplitSize,
		FileCount:           uint32(len(entries)),
		SubFileCount:        uint32(len(subFiles)),
		StringTableLength:   uint32(len(strBytes)),
		SubFileTableOffset:  subOff,
		EntryTableOffset:    entOff,
		ChecksumTableOffset: chkOff,
		StringTableOffset:   strOff,
	}

	buf := bytes.NewBuffer(make([]byte, 0, padded))
	if err := binary.Write(buf, binary.LittleEndian, &h); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, subFiles); err != nil {
		return nil, fmt.Errorf("write sub-file table: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, entries); err != nil {
		return nil, fmt.Errorf("write entry table: %w", err)
	}
	if err := binary.Write(buf, binary.LittleEndian, chunks); err != nil {
		return nil, fmt.Errorf("write checksum table: %w", err)
	}
	buf.Write(strBytes)
	buf.Write(make([]byte, padded-end))

	index := buf.Bytes()
	sum := newChunkSummer(0)
	sum.apply(index)
	binary.LittleEndian.PutUint32(index[8:12], uint32(sum.sum()))
	return index, nil
}

// copyFile copies a file from src to dst, as a fallback when rename fails.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
