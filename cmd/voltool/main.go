// Copyright (c) 2025 suprsokr
// SPDX-License-Identifier: MIT

// Command voltool creates, lists, verifies and extracts VOL archives.
package main

import (
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/suprsokr/go-vol"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch cmd := os.Args[1]; cmd {
	case "create":
		cc := flag.NewFlagSet("create", flag.ContinueOnError)
		cc.SetOutput(io.Discard)
		crc := cc.Bool("crc", false, "write the per-chunk checksum table")
		sector := cc.Uint("sector", vol.DefaultSectorSize, "sector size (power of two)")
		split := cc.Uint("split", vol.DefaultMaxSplitSize, "maximum sub-file size")
		alignExt := cc.String("align-ext", "", "comma-separated extensions padded to sector boundaries")
		exclude := cc.String("exclude", "", "comma-separated glob patterns of files to skip")
		if err := cc.Parse(os.Args[2:]); err != nil {
			fatal(err)
		}
		args := cc.Args()
		if len(args) != 2 {
			usage()
			os.Exit(2)
		}
		if err := runCreate(args[0], args[1], vol.Options{
			SectorSize:      uint32(*sector),
			MaxSplitSize:    uint32(*split),
			Checksums:       *crc,
			AlignExtensions: splitList(*alignExt),
		}, splitList(*exclude)); err != nil {
			fatal(err)
		}
	case "extract":
		if len(os.Args) != 4 {
			usage()
			os.Exit(2)
		}
		if err := runExtract(os.Args[2], os.Args[3]); err != nil {
			fatal(err)
		}
	case "verify":
		if len(os.Args) != 3 {
			usage()
			os.Exit(2)
		}
		if err := runVerify(os.Args[2]); err != nil {
			fatal(err)
		}
	case "list":
		if len(os.Args) != 3 {
			usage()
			os.Exit(2)
		}
		if err := runList(os.Args[2]); err != nil {
			fatal(err)
		}
	case "help":
		usage()
	default:
		usage()
		os.Exit(2)
	}
}

func runCreate(inputDir, outputFile string, opts vol.Options, exclude []string) error {
	archive, err := vol.Create(outputFile, opts)
	if err != nil {
		return err
	}

	err = filepath.WalkDir(inputDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(inputDir, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		for _, pattern := range exclude {
			ok, err := doublestar.Match(pattern, rel)
			if err != nil {
				return fmt.Errorf("bad exclude pattern %q: %w", pattern, err)
			}
			if ok {
				return nil
			}
		}
		return archive.AddFile(path, rel)
	})
	if err != nil {
		return err
	}

	return archive.Close()
}

func runExtract(inputFile, outputDir string) error {
	archive, err := vol.Open(inputFile)
	if err != nil {
		return err
	}
	defer archive.Close()

	return archive.Extract(outputDir)
}

func runVerify(inputFile string) error {
	archive, err := vol.Open(inputFile)
	if err != nil {
		return err
	}
	defer archive.Close()

	if err := archive.Verify(); err != nil {
		return err
	}
	fmt.Printf("%s: ok\n", inputFile)
	return nil
}

func runList(inputFile string) error {
	archive, err := vol.Open(inputFile)
	if err != nil {
		return err
	}
	defer archive.Close()

	files, err := archive.Files()
	if err != nil {
		return err
	}
	for _, f := range files {
		name := f.Name
		if f.Path != "" {
			name = f.Path + "/" + f.Name
		}
		fmt.Printf("%10d  %s\n", f.Size, name)
	}
	return nil
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func usage() {
	fmt.Fprintf(os.Stderr, "usage:\n")
	fmt.Fprintf(os.Stderr, "  voltool create [-crc] [-sector N] [-split N] [-align-ext EXT,...] [-exclude GLOB,...] <inputDir> <out.vol>\n")
	fmt.Fprintf(os.Stderr, "  voltool extract <in.vol> <outputDir>\n")
	fmt.Fprintf(os.Stderr, "  voltool verify <in.vol>\n")
	fmt.Fprintf(os.Stderr, "  voltool list <in.vol>\n")
	fmt.Fprintf(os.Stderr, "  voltool help\n")
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "error: %v\n", err)
	os.Exit(1)
}
