package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/DrToblo/swtiles/internal/swgrid"
	"github.com/DrToblo/swtiles/internal/swreader"
	"github.com/DrToblo/swtiles/internal/swtiles"
)

func main() {
	var (
		verify      bool
		showVersion bool
		cacheSize   int
	)
	flag.BoolVar(&verify, "verify", false, "Recompute tile_count and bounds containment for every level")
	flag.BoolVar(&showVersion, "version", false, "Print version and exit")
	flag.IntVar(&cacheSize, "cache-size", 0, "Fetched tile cache size (0 disables caching)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: swtiles-inspect [flags] <archive.swtiles>\n\n")
		fmt.Fprintf(os.Stderr, "Print an archive's header and level table, and optionally verify its index.\n\n")
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if showVersion {
		fmt.Println("swtiles-inspect dev")
		os.Exit(0)
	}
	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Arg(0), verify, cacheSize); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(path string, verify bool, cacheSize int) error {
	src, err := swreader.OpenFileSource(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer src.Close()

	ctx := context.Background()
	r, err := swreader.Open(ctx, src, swreader.WithCache(cacheSize))
	if err != nil {
		return fmt.Errorf("reading archive: %w", err)
	}
	defer r.Close()

	h := r.Header()

	if verify {
		var fileSize int64 = -1
		if info, err := os.Stat(path); err == nil {
			fileSize = info.Size()
		}
		if err := swtiles.ValidateArchive(h, r.Levels(), fileSize); err != nil {
			fmt.Printf("ARCHIVE VERIFY FAILED: %v\n", err)
		} else {
			fmt.Printf("archive structure: OK\n")
		}
	}

	fmt.Printf("File: %s\n", path)
	fmt.Printf("data_type=%d image_format=%s crs_epsg=%d", h.DataType, swtiles.MediaType(h.ImageFormat), h.CRSEPSG)
	if name := swgrid.CRSName(h.CRSEPSG); name != "" {
		fmt.Printf(" (%s)", name)
	}
	fmt.Println()
	fmt.Printf("tile_size_px=%d num_levels=%d\n", h.TileSizePx, h.NumLevels)
	fmt.Printf("bounds: E=[%g, %g] N=[%g, %g]\n", h.BoundsMinE, h.BoundsMaxE, h.BoundsMinN, h.BoundsMaxN)

	for _, lvl := range r.Levels() {
		fmt.Printf("\nlevel %d: resolution_m=%g tile_extent_m=%g grid=%dx%d tile_count=%d\n",
			lvl.LevelID, lvl.ResolutionM, lvl.TileExtentM, lvl.GridCols, lvl.GridRows, lvl.TileCount)
		fmt.Printf("  origin=(%g, %g) index_offset=%d data_offset=%d\n", lvl.OriginE, lvl.OriginN, lvl.IndexOffset, lvl.DataOffset)

		if verify {
			idxBuf, err := src.Fetch(ctx, int64(lvl.IndexOffset), int64(lvl.IndexLength))
			if err != nil {
				return fmt.Errorf("level %d: fetching index: %w", lvl.LevelID, err)
			}
			if err := swtiles.ValidateLevel(h, lvl, idxBuf); err != nil {
				fmt.Printf("  VERIFY FAILED: %v\n", err)
			} else {
				fmt.Printf("  verify: OK\n")
			}
		}
	}

	return nil
}
