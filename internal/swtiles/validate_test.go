package swtiles

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func buildIndex(t *testing.T, gridCols, gridRows uint32, cells map[[2]uint32][2]uint64) []byte {
	t.Helper()
	buf := make([]byte, uint64(gridCols)*uint64(gridRows)*IndexCellSize)
	for pos, ol := range cells {
		idx := uint64(pos[0])*uint64(gridCols) + uint64(pos[1])
		cell, err := EncodeIndexCell(ol[0], ol[1])
		require.NoError(t, err)
		copy(buf[idx*IndexCellSize:], cell[:])
	}
	return buf
}

func TestValidateLevel_OK(t *testing.T) {
	l := Level{LevelID: 0, TileExtentM: 100, OriginE: 0, OriginN: 0, GridCols: 2, GridRows: 2, TileCount: 1}
	idx := buildIndex(t, 2, 2, map[[2]uint32][2]uint64{{0, 0}: {0, 5}})
	h := Header{BoundsMinE: 0, BoundsMinN: -100, BoundsMaxE: 100, BoundsMaxN: 0}

	require.NoError(t, ValidateLevel(h, l, idx))
}

func TestValidateLevel_TileCountMismatch(t *testing.T) {
	l := Level{LevelID: 0, TileExtentM: 100, OriginE: 0, OriginN: 0, GridCols: 2, GridRows: 2, TileCount: 2}
	idx := buildIndex(t, 2, 2, map[[2]uint32][2]uint64{{0, 0}: {0, 5}})
	h := Header{BoundsMinE: 0, BoundsMinN: -100, BoundsMaxE: 100, BoundsMaxN: 0}

	err := ValidateLevel(h, l, idx)
	require.Error(t, err)
}

func TestValidateLevel_BoundsExceeded(t *testing.T) {
	l := Level{LevelID: 0, TileExtentM: 100, OriginE: 0, OriginN: 0, GridCols: 2, GridRows: 2, TileCount: 1}
	idx := buildIndex(t, 2, 2, map[[2]uint32][2]uint64{{0, 0}: {0, 5}})
	// Header bounds too small to contain the (0,0) cell's footprint.
	h := Header{BoundsMinE: 0, BoundsMinN: -50, BoundsMaxE: 50, BoundsMaxN: 0}

	err := ValidateLevel(h, l, idx)
	require.Error(t, err)
}

func TestValidateLevel_EmptyLevelAlwaysPasses(t *testing.T) {
	l := Level{LevelID: 0, TileExtentM: 100, OriginE: 0, OriginN: 0, GridCols: 2, GridRows: 2, TileCount: 0}
	idx := buildIndex(t, 2, 2, nil)
	h := Header{}

	require.NoError(t, ValidateLevel(h, l, idx))
}

func TestValidateLevel_TruncatedIndex(t *testing.T) {
	l := Level{GridCols: 2, GridRows: 2}
	err := ValidateLevel(Header{}, l, make([]byte, 4))
	require.Error(t, err)
}

func twoLevelTable() (Header, []Level) {
	h := Header{NumLevels: 2, LevelTableOffset: 256}
	tableEnd := uint64(256) + 2*LevelEntrySize
	// level 0: 2x2 grid -> index 32 bytes
	l0 := Level{LevelID: 0, GridCols: 2, GridRows: 2, IndexOffset: tableEnd, IndexLength: 32, DataOffset: tableEnd + 32}
	// level 1 follows directly after level 0's data region
	l1DataStart := l0.DataOffset + 100
	l1 := Level{LevelID: 1, GridCols: 2, GridRows: 2, IndexOffset: l1DataStart, IndexLength: 32, DataOffset: l1DataStart + 32}
	return h, []Level{l0, l1}
}

func TestValidateArchive_OK(t *testing.T) {
	h, levels := twoLevelTable()
	require.NoError(t, ValidateArchive(h, levels, int64(levels[1].DataOffset+50)))
}

func TestValidateArchive_SkipsFileSizeCheckWhenNegative(t *testing.T) {
	h, levels := twoLevelTable()
	require.NoError(t, ValidateArchive(h, levels, -1))
}

func TestValidateArchive_TableOffsetBeforeHeader(t *testing.T) {
	h, levels := twoLevelTable()
	h.LevelTableOffset = 100
	require.Error(t, ValidateArchive(h, levels, -1))
}

func TestValidateArchive_IndexLengthMismatch(t *testing.T) {
	h, levels := twoLevelTable()
	levels[0].IndexLength = 16
	require.Error(t, ValidateArchive(h, levels, -1))
}

func TestValidateArchive_DataOffsetMismatch(t *testing.T) {
	h, levels := twoLevelTable()
	levels[0].DataOffset = levels[0].IndexOffset + 31
	require.Error(t, ValidateArchive(h, levels, -1))
}

func TestValidateArchive_OverlappingLevels(t *testing.T) {
	h, levels := twoLevelTable()
	// level 1's index starts one byte before level 0's data region begins.
	levels[1].IndexOffset = levels[0].DataOffset - 1
	levels[1].DataOffset = levels[1].IndexOffset + 32
	require.Error(t, ValidateArchive(h, levels, -1))
}

func TestValidateArchive_ExceedsFileSize(t *testing.T) {
	h, levels := twoLevelTable()
	require.Error(t, ValidateArchive(h, levels, int64(levels[1].DataOffset)-1))
}
