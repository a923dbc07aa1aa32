package swtiles

import (
	"fmt"
	"sort"

	"github.com/DrToblo/swtiles/internal/swgrid"
)

// ValidateArchive checks the structural invariants of spec.md §3 that can
// be verified from the header and level table alone, without fetching any
// level's index contents: the table lies within the file, each level's
// index_offset/index_length/data_offset agree with its declared grid size,
// and no two levels' (index, data) regions overlap. Pass fileSize < 0 to
// skip the "lies within the file" checks (e.g. when the size of a remote
// archive isn't cheaply known).
//
// This does not check tile_count or bounds containment; ValidateLevel does
// that once a level's index has been fetched. Neither function checks that
// the payloads within a level are disjoint.
func ValidateArchive(h Header, levels []Level, fileSize int64) error {
	if h.LevelTableOffset < HeaderSize {
		return fmt.Errorf("level_table_offset=%d is before the end of the header", h.LevelTableOffset)
	}
	tableEnd := h.LevelTableOffset + uint64(len(levels))*LevelEntrySize
	if fileSize >= 0 && tableEnd > uint64(fileSize) {
		return fmt.Errorf("level table [%d,%d) extends past file size %d", h.LevelTableOffset, tableEnd, fileSize)
	}

	for _, l := range levels {
		wantIndexLen := uint64(l.GridCols) * uint64(l.GridRows) * IndexCellSize
		if l.IndexLength != wantIndexLen {
			return fmt.Errorf("level %d: index_length=%d, want %d (grid %dx%d)", l.LevelID, l.IndexLength, wantIndexLen, l.GridRows, l.GridCols)
		}
		if l.IndexOffset+l.IndexLength != l.DataOffset {
			return fmt.Errorf("level %d: index_offset+index_length=%d != data_offset=%d", l.LevelID, l.IndexOffset+l.IndexLength, l.DataOffset)
		}
		if l.IndexOffset < tableEnd {
			return fmt.Errorf("level %d: index_offset=%d overlaps the header/level table (ends at %d)", l.LevelID, l.IndexOffset, tableEnd)
		}
	}

	ordered := make([]Level, len(levels))
	copy(ordered, levels)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].IndexOffset < ordered[j].IndexOffset })

	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if cur.IndexOffset < prev.DataOffset {
			return fmt.Errorf("level %d's region overlaps level %d's (index_offset=%d < preceding data_offset=%d)",
				cur.LevelID, prev.LevelID, cur.IndexOffset, prev.DataOffset)
		}
	}
	if fileSize >= 0 && len(ordered) > 0 {
		last := ordered[len(ordered)-1]
		if last.DataOffset > uint64(fileSize) {
			return fmt.Errorf("level %d's data_offset=%d exceeds file size %d", last.LevelID, last.DataOffset, fileSize)
		}
	}

	return nil
}

// ValidateLevel recomputes tile_count from an already-fetched index and
// checks it against the level table entry, then checks that the ground-space
// bounding box of the level's actual non-empty cells falls within the
// header's declared bounds envelope. idxBuf must be exactly
// GridCols*GridRows*IndexCellSize bytes.
//
// Containment is checked against the footprint of non-empty cells rather
// than the level's nominal grid rectangle, since a sparse level's full grid
// may extend past where any tile was actually written — the header bounds
// are a union over written tiles only (spec.md §4.2).
func ValidateLevel(h Header, l Level, idxBuf []byte) error {
	wantLen := uint64(l.GridCols) * uint64(l.GridRows) * IndexCellSize
	if uint64(len(idxBuf)) != wantLen {
		return fmt.Errorf("%w: index buffer is %d bytes, want %d", ErrTruncated, len(idxBuf), wantLen)
	}

	grid := swgrid.Grid{
		OriginE:     l.OriginE,
		OriginN:     l.OriginN,
		TileExtentM: float64(l.TileExtentM),
		GridCols:    l.GridCols,
		GridRows:    l.GridRows,
	}

	var counted uint32
	var haveBounds bool
	var minE, minN, maxE, maxN float64

	for row := uint64(0); row < uint64(l.GridRows); row++ {
		for col := uint64(0); col < uint64(l.GridCols); col++ {
			i := row*uint64(l.GridCols) + col
			var cell [8]byte
			copy(cell[:], idxBuf[i*IndexCellSize:(i+1)*IndexCellSize])
			offset, length := DecodeIndexCell(cell)
			if length == 0 {
				continue
			}
			if offset >= MaxOffset {
				return fmt.Errorf("%w: cell (%d,%d) offset=%d", ErrOffsetOverflow, row, col, offset)
			}
			counted++

			cellMinE, cellMinN, cellMaxE, cellMaxN := swgrid.CellToBounds(grid, int64(row), int64(col))
			if !haveBounds {
				minE, minN, maxE, maxN = cellMinE, cellMinN, cellMaxE, cellMaxN
				haveBounds = true
				continue
			}
			minE = minFloat(minE, cellMinE)
			minN = minFloat(minN, cellMinN)
			maxE = maxFloat(maxE, cellMaxE)
			maxN = maxFloat(maxN, cellMaxN)
		}
	}

	if counted != l.TileCount {
		return fmt.Errorf("level %d: tile_count=%d but index has %d non-empty cells", l.LevelID, l.TileCount, counted)
	}
	if !haveBounds {
		return nil
	}
	if minE < h.BoundsMinE || maxE > h.BoundsMaxE || minN < h.BoundsMinN || maxN > h.BoundsMaxN {
		return fmt.Errorf("level %d tile footprint [%g,%g]x[%g,%g] exceeds header bounds [%g,%g]x[%g,%g]",
			l.LevelID, minE, maxE, minN, maxN, h.BoundsMinE, h.BoundsMaxE, h.BoundsMinN, h.BoundsMaxN)
	}
	return nil
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxFloat(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
