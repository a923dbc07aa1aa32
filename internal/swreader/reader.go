package swreader

import (
	"context"
	"fmt"

	"github.com/DrToblo/swtiles/internal/swgrid"
	"github.com/DrToblo/swtiles/internal/swtiles"
)

// Reader provides read access to an archive over a ByteSource, following
// the two-range-request contract of spec.md §5. Grounded on the teacher's
// pmtiles.Reader (internal/pmtiles/reader.go), but where that reader
// eagerly loads the entire directory into memory on open, Reader here
// fetches each level's dense index lazily, one 8-byte cell at a time,
// since the format has no compressed directory to amortize the cost of.
type Reader struct {
	src       ByteSource
	header    swtiles.Header
	levels    []swtiles.Level
	levelByID map[uint8]int
	cache     *tileCache
	metrics   *Metrics
}

// ReaderOption configures Open.
type ReaderOption func(*Reader)

// WithCache enables an in-memory LRU of fetched tile payloads holding at
// most maxEntries tiles.
func WithCache(maxEntries int) ReaderOption {
	return func(r *Reader) { r.cache = newTileCache(maxEntries) }
}

// WithReaderMetrics registers Prometheus counters on the reader.
func WithReaderMetrics(m *Metrics) ReaderOption {
	return func(r *Reader) { r.metrics = m }
}

// Open fetches the header and level table from src and returns a ready
// Reader. This is the "one fetch for header, one for the level table"
// half of the two-range-request contract; per-tile reads add the second.
func Open(ctx context.Context, src ByteSource, opts ...ReaderOption) (*Reader, error) {
	r := &Reader{src: src, cache: newTileCache(0), metrics: noopMetrics()}
	for _, opt := range opts {
		opt(r)
	}

	headerBuf, err := src.Fetch(ctx, 0, swtiles.HeaderSize)
	if err != nil {
		return nil, fmt.Errorf("fetching header: %w", err)
	}
	r.metrics.fetchesTotal.Inc()
	r.metrics.fetchBytes.Add(float64(len(headerBuf)))

	header, err := swtiles.DecodeHeader(headerBuf)
	if err != nil {
		return nil, err
	}
	r.header = header

	tableLen := int64(header.NumLevels) * swtiles.LevelEntrySize
	tableBuf, err := src.Fetch(ctx, int64(header.LevelTableOffset), tableLen)
	if err != nil {
		return nil, fmt.Errorf("fetching level table: %w", err)
	}
	r.metrics.fetchesTotal.Inc()
	r.metrics.fetchBytes.Add(float64(len(tableBuf)))

	r.levels = make([]swtiles.Level, header.NumLevels)
	r.levelByID = make(map[uint8]int, header.NumLevels)
	for i := 0; i < int(header.NumLevels); i++ {
		entry := swtiles.DecodeLevelEntry(tableBuf[i*swtiles.LevelEntrySize:])
		r.levels[i] = entry
		r.levelByID[entry.LevelID] = i
	}

	return r, nil
}

// Header returns the archive's global header.
func (r *Reader) Header() swtiles.Header {
	return r.header
}

// Levels returns every level in the archive, in file order.
func (r *Reader) Levels() []swtiles.Level {
	return r.levels
}

// Level returns the level entry with the given level_id.
func (r *Reader) Level(levelID uint8) (swtiles.Level, bool) {
	i, ok := r.levelByID[levelID]
	if !ok {
		return swtiles.Level{}, false
	}
	return r.levels[i], true
}

func (r *Reader) grid(level swtiles.Level) swgrid.Grid {
	return swgrid.Grid{
		OriginE:     level.OriginE,
		OriginN:     level.OriginN,
		TileExtentM: float64(level.TileExtentM),
		GridCols:    level.GridCols,
		GridRows:    level.GridRows,
	}
}

// GetTile fetches the tile at (row, col) in the given level. ok is false
// and err is nil both when the cell is within the grid but empty and when
// (row, col) lies outside the grid entirely (spec.md §4.3: get_tile
// "Returns None when length == 0 or when (row, col) is outside the grid");
// err is non-nil only for an unknown level or a fetch failure.
func (r *Reader) GetTile(ctx context.Context, levelID uint8, row, col uint32) (payload []byte, ok bool, err error) {
	li, found := r.levelByID[levelID]
	if !found {
		return nil, false, ErrUnknownLevel
	}
	level := r.levels[li]

	if row >= level.GridRows || col >= level.GridCols {
		return nil, false, nil
	}

	if cached, hit := r.cache.get(levelID, row, col); hit {
		r.metrics.cacheHits.Inc()
		return cached, true, nil
	}
	r.metrics.cacheMisses.Inc()

	cellIdx := uint64(row)*uint64(level.GridCols) + uint64(col)
	cellOffset := int64(level.IndexOffset) + int64(cellIdx)*swtiles.IndexCellSize

	idxBuf, err := r.src.Fetch(ctx, cellOffset, swtiles.IndexCellSize)
	if err != nil {
		return nil, false, fmt.Errorf("fetching index cell (row=%d,col=%d): %w", row, col, err)
	}
	r.metrics.fetchesTotal.Inc()
	r.metrics.fetchBytes.Add(float64(len(idxBuf)))

	var cell [8]byte
	copy(cell[:], idxBuf)
	relOffset, length := swtiles.DecodeIndexCell(cell)
	if length == 0 {
		return nil, false, nil
	}

	payloadOffset := int64(level.DataOffset) + int64(relOffset)
	payload, err = r.src.Fetch(ctx, payloadOffset, int64(length))
	if err != nil {
		return nil, false, fmt.Errorf("fetching tile payload (row=%d,col=%d): %w", row, col, err)
	}
	r.metrics.fetchesTotal.Inc()
	r.metrics.fetchBytes.Add(float64(len(payload)))

	r.cache.put(levelID, row, col, payload)
	return payload, true, nil
}

// GetTileByCoord resolves an easting/northing position to a cell in the
// given level and fetches it. Per spec.md §7, an out-of-grid coordinate is
// not an error here either: ok is false and err is nil, the same absent
// result returned for an in-grid but empty cell.
func (r *Reader) GetTileByCoord(ctx context.Context, levelID uint8, easting, northing float64) ([]byte, bool, error) {
	level, found := r.Level(levelID)
	if !found {
		return nil, false, ErrUnknownLevel
	}
	grid := r.grid(level)
	row, col := swgrid.CoordToCell(grid, easting, northing)
	if !swgrid.InGrid(grid, row, col) {
		return nil, false, nil
	}
	return r.GetTile(ctx, levelID, uint32(row), uint32(col))
}

// TilesInView returns the grid cells of the given level overlapping the
// ground-space rectangle [minE,maxE] x [minN,maxN], clamped to the grid as
// swgrid.TilesInView describes, without fetching any
// tile data — callers iterate the result and call GetTile for the ones
// they actually need.
func (r *Reader) TilesInView(levelID uint8, minE, minN, maxE, maxN float64) ([]swgrid.CellRect, error) {
	level, found := r.Level(levelID)
	if !found {
		return nil, ErrUnknownLevel
	}
	return swgrid.TilesInView(r.grid(level), minE, minN, maxE, maxN), nil
}

// Close releases the underlying ByteSource.
func (r *Reader) Close() error {
	return r.src.Close()
}
