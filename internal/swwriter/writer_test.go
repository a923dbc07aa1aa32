package swwriter

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/DrToblo/swtiles/internal/swtiles"
)

// sliceTileIterator replays a fixed slice of TileRecord, for tests that
// don't need DirTileSource's filesystem layer.
type sliceTileIterator struct {
	records []TileRecord
	idx     int
}

func (it *sliceTileIterator) Next() (TileRecord, bool, error) {
	if it.idx >= len(it.records) {
		return TileRecord{}, false, nil
	}
	rec := it.records[it.idx]
	it.idx++
	return rec, true, nil
}

type sliceTileSource struct {
	levels []LevelPlan
}

func (s *sliceTileSource) Levels() []LevelPlan { return s.levels }

func openOutput(t *testing.T) (*FileSink, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "archive.swtiles")
	sink, err := NewFileSink(path)
	require.NoError(t, err)
	return sink, path
}

func TestWriter_SingleLevelRoundTrip(t *testing.T) {
	// spec.md §8 scenario S1: a 2x2 grid with one non-empty tile.
	sink, path := openOutput(t)

	plan := LevelPlan{
		LevelID:     0,
		ResolutionM: 10,
		TileExtentM: 500000,
		OriginE:     265000,
		OriginN:     7675000,
		GridCols:    2,
		GridRows:    2,
		Tiles: &sliceTileIterator{records: []TileRecord{
			{Row: 0, Col: 0, Payload: []byte("tile-0-0")},
		}},
	}
	src := &sliceTileSource{levels: []LevelPlan{plan}}

	w := NewWriter(sink, HeaderProto{DataType: swtiles.DataTypeRaster, ImageFormat: swtiles.ImageFormatPNG, CRSEPSG: 2056, TileSizePx: 256})
	require.NoError(t, w.WriteArchive(src))
	require.NoError(t, sink.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	header, err := swtiles.DecodeHeader(data[:swtiles.HeaderSize])
	require.NoError(t, err)
	require.Equal(t, uint8(1), header.NumLevels)
	require.Equal(t, uint32(2056), header.CRSEPSG)
	require.Equal(t, 265000.0, header.BoundsMinE)
	require.Equal(t, 7175000.0, header.BoundsMinN)
	require.Equal(t, 765000.0, header.BoundsMaxE)
	require.Equal(t, 7675000.0, header.BoundsMaxN)

	levelBuf := data[header.LevelTableOffset : header.LevelTableOffset+swtiles.LevelEntrySize]
	entry := swtiles.DecodeLevelEntry(levelBuf)
	require.Equal(t, uint32(1), entry.TileCount)
	require.Equal(t, uint64(2*2*swtiles.IndexCellSize), entry.IndexLength)

	idxBuf := data[entry.IndexOffset : entry.IndexOffset+swtiles.IndexCellSize]
	var cell [8]byte
	copy(cell[:], idxBuf)
	offset, length := swtiles.DecodeIndexCell(cell)
	require.Equal(t, uint64(0), offset)
	require.Equal(t, uint32(len("tile-0-0")), length)

	payload := data[entry.DataOffset+offset : entry.DataOffset+offset+uint64(length)]
	require.Equal(t, "tile-0-0", string(payload))

	// cell (0,1) was never written: its index entry must stay all-zero.
	emptyBuf := data[entry.IndexOffset+swtiles.IndexCellSize : entry.IndexOffset+2*swtiles.IndexCellSize]
	require.Equal(t, make([]byte, swtiles.IndexCellSize), emptyBuf)
}

func TestWriter_MultiLevelBoundsUnion(t *testing.T) {
	sink, _ := openOutput(t)

	levelA := LevelPlan{
		LevelID: 0, ResolutionM: 10, TileExtentM: 100,
		OriginE: 0, OriginN: 0, GridCols: 2, GridRows: 2,
		Tiles: &sliceTileIterator{records: []TileRecord{{Row: 0, Col: 0, Payload: []byte("a")}}},
	}
	levelB := LevelPlan{
		LevelID: 1, ResolutionM: 5, TileExtentM: 100,
		OriginE: 1000, OriginN: 1000, GridCols: 2, GridRows: 2,
		Tiles: &sliceTileIterator{records: []TileRecord{{Row: 1, Col: 1, Payload: []byte("b")}}},
	}
	src := &sliceTileSource{levels: []LevelPlan{levelA, levelB}}

	w := NewWriter(sink, HeaderProto{DataType: swtiles.DataTypeRaster, ImageFormat: swtiles.ImageFormatPNG})
	require.NoError(t, w.WriteArchive(src))

	path := sink.f.Name()
	require.NoError(t, sink.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	header, err := swtiles.DecodeHeader(data[:swtiles.HeaderSize])
	require.NoError(t, err)
	// levelA's (0,0) cell spans [0,100]x[-100,0]; levelB's (1,1) cell
	// spans [1100,1200]x[800,900]. The union should cover both extremes.
	require.Equal(t, 0.0, header.BoundsMinE)
	require.Equal(t, -100.0, header.BoundsMinN)
	require.Equal(t, 1200.0, header.BoundsMaxE)
	require.Equal(t, 900.0, header.BoundsMaxN)
	require.Equal(t, uint8(2), header.NumLevels)
}

func TestWriter_EmptyLevelIsValid(t *testing.T) {
	// A level with zero non-empty tiles is legal: the index is all-zero,
	// tile_count is 0, and it contributes nothing to the bounds union.
	sink, _ := openOutput(t)

	plan := LevelPlan{
		LevelID: 0, ResolutionM: 10, TileExtentM: 100,
		OriginE: 0, OriginN: 0, GridCols: 2, GridRows: 2,
		Tiles: &sliceTileIterator{},
	}
	src := &sliceTileSource{levels: []LevelPlan{plan}}

	w := NewWriter(sink, HeaderProto{DataType: swtiles.DataTypeRaster, ImageFormat: swtiles.ImageFormatPNG})
	require.NoError(t, w.WriteArchive(src))

	path := sink.f.Name()
	require.NoError(t, sink.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	header, err := swtiles.DecodeHeader(data[:swtiles.HeaderSize])
	require.NoError(t, err)
	require.Equal(t, 0.0, header.BoundsMinE)
	require.Equal(t, 0.0, header.BoundsMaxN)

	levelBuf := data[header.LevelTableOffset : header.LevelTableOffset+swtiles.LevelEntrySize]
	entry := swtiles.DecodeLevelEntry(levelBuf)
	require.Equal(t, uint32(0), entry.TileCount)
}

func TestWriter_DuplicateCellFails(t *testing.T) {
	sink, _ := openOutput(t)
	plan := LevelPlan{
		LevelID: 0, ResolutionM: 10, TileExtentM: 100,
		OriginE: 0, OriginN: 0, GridCols: 2, GridRows: 2,
		Tiles: &sliceTileIterator{records: []TileRecord{
			{Row: 0, Col: 0, Payload: []byte("a")},
			{Row: 0, Col: 0, Payload: []byte("b")},
		}},
	}
	src := &sliceTileSource{levels: []LevelPlan{plan}}

	w := NewWriter(sink, HeaderProto{})
	err := w.WriteArchive(src)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrDuplicateCell))
}

func TestWriter_CellOutOfGridFails(t *testing.T) {
	sink, _ := openOutput(t)
	plan := LevelPlan{
		LevelID: 0, ResolutionM: 10, TileExtentM: 100,
		OriginE: 0, OriginN: 0, GridCols: 2, GridRows: 2,
		Tiles: &sliceTileIterator{records: []TileRecord{
			{Row: 5, Col: 0, Payload: []byte("a")},
		}},
	}
	src := &sliceTileSource{levels: []LevelPlan{plan}}

	w := NewWriter(sink, HeaderProto{})
	err := w.WriteArchive(src)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrCellOutOfGrid))
}

func TestWriter_PayloadTooLargeFails(t *testing.T) {
	sink, _ := openOutput(t)
	plan := LevelPlan{
		LevelID: 0, ResolutionM: 10, TileExtentM: 100,
		OriginE: 0, OriginN: 0, GridCols: 1, GridRows: 1,
		Tiles: &sliceTileIterator{records: []TileRecord{
			{Row: 0, Col: 0, Payload: make([]byte, swtiles.MaxLength)},
		}},
	}
	src := &sliceTileSource{levels: []LevelPlan{plan}}

	w := NewWriter(sink, HeaderProto{})
	err := w.WriteArchive(src)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrPayloadTooLarge))
}

func TestWriter_EmptyPayloadFails(t *testing.T) {
	sink, _ := openOutput(t)
	plan := LevelPlan{
		LevelID: 0, ResolutionM: 10, TileExtentM: 100,
		OriginE: 0, OriginN: 0, GridCols: 1, GridRows: 1,
		Tiles: &sliceTileIterator{records: []TileRecord{
			{Row: 0, Col: 0, Payload: []byte{}},
		}},
	}
	src := &sliceTileSource{levels: []LevelPlan{plan}}

	w := NewWriter(sink, HeaderProto{})
	err := w.WriteArchive(src)
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrEmptyPayload))
	require.False(t, errors.Is(err, ErrPayloadTooLarge))
}

func TestWriter_NoLevelsFails(t *testing.T) {
	sink, _ := openOutput(t)
	w := NewWriter(sink, HeaderProto{})
	err := w.WriteArchive(&sliceTileSource{})
	require.Error(t, err)
}

func TestWriter_ReservedBytesStayZero(t *testing.T) {
	// Every byte the codec documents as reserved must read back as zero,
	// independent of whatever HeaderProto/LevelPlan values the writer was
	// given (spec.md §9).
	sink, _ := openOutput(t)
	plan := LevelPlan{
		LevelID: 7, ResolutionM: 1, TileExtentM: 1,
		OriginE: 0, OriginN: 0, GridCols: 1, GridRows: 1,
		Tiles: &sliceTileIterator{records: []TileRecord{{Row: 0, Col: 0, Payload: []byte("x")}}},
	}
	src := &sliceTileSource{levels: []LevelPlan{plan}}

	w := NewWriter(sink, HeaderProto{DataType: swtiles.DataTypeTerrain, ImageFormat: swtiles.ImageFormatWebP})
	require.NoError(t, w.WriteArchive(src))

	path := sink.f.Name()
	require.NoError(t, sink.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	require.Equal(t, byte(0), data[51])
	for i := 60; i < swtiles.HeaderSize; i++ {
		require.Equal(t, byte(0), data[i], "header byte %d", i)
	}

	levelStart := int(swtiles.HeaderSize)
	require.Equal(t, byte(0), data[levelStart+1])
	require.Equal(t, byte(0), data[levelStart+10])
	require.Equal(t, byte(0), data[levelStart+11])
}
