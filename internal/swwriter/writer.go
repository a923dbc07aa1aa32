package swwriter

import (
	"fmt"
	"math"

	"github.com/DrToblo/swtiles/internal/swgrid"
	"github.com/DrToblo/swtiles/internal/swtiles"
)

// TileRecord is one non-empty cell's position and opaque payload, as
// produced by a TileIterator (spec.md §6 tile-source interface).
type TileRecord struct {
	Row, Col uint32
	Payload  []byte
}

// TileIterator yields the non-empty tiles of a single level in the order
// they should be laid out on disk. Next returns ok == false once exhausted.
// Implementations are never asked for empty cells; the writer never emits
// an explicit record for them.
type TileIterator interface {
	Next() (rec TileRecord, ok bool, err error)
}

// LevelPlan carries one level's grid geometry plus its tile iterator
// (spec.md §4.2 "Inputs").
type LevelPlan struct {
	LevelID     uint8
	ResolutionM float32
	TileExtentM float32
	OriginE     float64
	OriginN     float64
	GridCols    uint32
	GridRows    uint32
	Tiles       TileIterator
}

// TileSource is the writer's input: an ordered list of level plans,
// processed strictly sequentially in file order.
type TileSource interface {
	Levels() []LevelPlan
}

// HeaderProto is the subset of the header the caller declares up front;
// bounds and num_levels are computed by the writer itself.
type HeaderProto struct {
	DataType    uint8
	ImageFormat uint8
	CRSEPSG     uint32
	TileSizePx  uint16
}

// Writer assembles a valid archive from a TileSource in a single
// streaming pass (spec.md §4.2). Levels are processed strictly
// sequentially; per level the state machine is
// Reserving index -> Appending payloads -> Patching index -> Recording level entry.
type Writer struct {
	sink     Sink
	proto    HeaderProto
	metrics  *Metrics
	progress bool
}

// NewWriter returns a Writer that assembles an archive into sink.
func NewWriter(sink Sink, proto HeaderProto, opts ...Option) *Writer {
	w := &Writer{sink: sink, proto: proto, metrics: noopMetrics()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Option configures a Writer.
type Option func(*Writer)

// WithMetrics registers Prometheus counters on the writer (see metrics.go).
func WithMetrics(m *Metrics) Option {
	return func(w *Writer) { w.metrics = m }
}

// WithProgress enables a per-level terminal progress bar (see progress.go),
// meant for the swtiles-pack CLI; library callers typically leave it off.
func WithProgress() Option {
	return func(w *Writer) { w.progress = true }
}

type cellLoc struct {
	offset uint64
	length uint32
}

// WriteArchive lays out header -> level table -> (index, data) x len(levels)
// in file order and patches the header and level table once every level
// has been fully written. It returns the first fatal error encountered;
// per spec.md §7, the sink is left in an undefined but bounded state and
// the partially written file should be discarded by the caller.
func (w *Writer) WriteArchive(src TileSource) error {
	levels := src.Levels()
	if len(levels) == 0 {
		return fmt.Errorf("swwriter: archive needs at least one level")
	}
	if len(levels) > 255 {
		return fmt.Errorf("swwriter: num_levels=%d exceeds 255", len(levels))
	}

	if _, err := w.sink.Write(make([]byte, swtiles.HeaderSize)); err != nil {
		return err
	}
	levelTableOffset, err := w.sink.Tell()
	if err != nil {
		return err
	}
	if _, err := w.sink.Write(make([]byte, len(levels)*swtiles.LevelEntrySize)); err != nil {
		return err
	}

	entries := make([]swtiles.Level, len(levels))
	var boundsSet bool
	var minE, minN, maxE, maxN float64

	for i, plan := range levels {
		entry, bounds, hasTiles, err := w.writeLevel(plan)
		if err != nil {
			return fmt.Errorf("level %d (id=%d): %w", i, plan.LevelID, err)
		}
		entries[i] = entry
		if hasTiles {
			if !boundsSet {
				minE, minN, maxE, maxN = bounds.minE, bounds.minN, bounds.maxE, bounds.maxN
				boundsSet = true
			} else {
				minE = math.Min(minE, bounds.minE)
				minN = math.Min(minN, bounds.minN)
				maxE = math.Max(maxE, bounds.maxE)
				maxN = math.Max(maxN, bounds.maxN)
			}
		}
		w.metrics.levelsWritten.Inc()
	}

	tableBuf := make([]byte, 0, len(entries)*swtiles.LevelEntrySize)
	for _, e := range entries {
		tableBuf = append(tableBuf, swtiles.EncodeLevelEntry(e)...)
	}
	if _, err := w.sink.WriteAt(tableBuf, levelTableOffset); err != nil {
		return err
	}

	header := swtiles.Header{
		DataType:         w.proto.DataType,
		ImageFormat:      w.proto.ImageFormat,
		CRSEPSG:          w.proto.CRSEPSG,
		BoundsMinE:       minE,
		BoundsMinN:       minN,
		BoundsMaxE:       maxE,
		BoundsMaxN:       maxN,
		TileSizePx:       w.proto.TileSizePx,
		NumLevels:        uint8(len(levels)),
		LevelTableOffset: uint64(levelTableOffset),
	}
	if _, err := w.sink.WriteAt(swtiles.EncodeHeader(header), 0); err != nil {
		return err
	}

	return nil
}

type levelBounds struct {
	minE, minN, maxE, maxN float64
}

// writeLevel runs one level through Reserving index -> Appending payloads ->
// Patching index -> Recording level entry.
func (w *Writer) writeLevel(plan LevelPlan) (swtiles.Level, levelBounds, bool, error) {
	grid := swgrid.Grid{
		OriginE:     plan.OriginE,
		OriginN:     plan.OriginN,
		TileExtentM: float64(plan.TileExtentM),
		GridCols:    plan.GridCols,
		GridRows:    plan.GridRows,
	}

	indexOffset, err := w.sink.Tell()
	if err != nil {
		return swtiles.Level{}, levelBounds{}, false, err
	}
	numCells := uint64(plan.GridCols) * uint64(plan.GridRows)
	indexLength := numCells * swtiles.IndexCellSize

	// Reserving index: the region is written as zeros up front and patched
	// once every tile has landed; cells that never receive a tile keep the
	// all-zero encoding of an empty cell.
	if err := writeZeros(w.sink, indexLength); err != nil {
		return swtiles.Level{}, levelBounds{}, false, err
	}

	dataOffset, err := w.sink.Tell()
	if err != nil {
		return swtiles.Level{}, levelBounds{}, false, err
	}

	cells := make([]cellLoc, numCells)
	var cursor uint64 // relative to dataOffset
	var tileCount uint32
	var bounds levelBounds
	hasTiles := false

	var bar *progressBar
	if w.progress {
		bar = newProgressBar(fmt.Sprintf("level %d", plan.LevelID), int64(numCells))
	}

	// Appending payloads.
	for {
		rec, ok, err := plan.Tiles.Next()
		if err != nil {
			return swtiles.Level{}, levelBounds{}, false, fmt.Errorf("reading tile source: %w", err)
		}
		if !ok {
			break
		}

		if rec.Row >= plan.GridRows || rec.Col >= plan.GridCols {
			return swtiles.Level{}, levelBounds{}, false,
				fmt.Errorf("%w: row=%d col=%d grid=%dx%d", ErrCellOutOfGrid, rec.Row, rec.Col, plan.GridRows, plan.GridCols)
		}
		idx := uint64(rec.Row)*uint64(plan.GridCols) + uint64(rec.Col)
		if cells[idx].length != 0 {
			return swtiles.Level{}, levelBounds{}, false,
				fmt.Errorf("%w: row=%d col=%d", ErrDuplicateCell, rec.Row, rec.Col)
		}
		if len(rec.Payload) == 0 {
			// Non-empty tiles carry at least one byte by contract; a
			// zero-length record would be indistinguishable on disk from
			// an unwritten cell, so it is rejected rather than silently
			// treated as empty.
			return swtiles.Level{}, levelBounds{}, false,
				fmt.Errorf("%w: row=%d col=%d", ErrEmptyPayload, rec.Row, rec.Col)
		}
		if uint64(len(rec.Payload)) >= swtiles.MaxLength {
			return swtiles.Level{}, levelBounds{}, false,
				fmt.Errorf("%w: row=%d col=%d length=%d", ErrPayloadTooLarge, rec.Row, rec.Col, len(rec.Payload))
		}
		if cursor >= swtiles.MaxOffset {
			return swtiles.Level{}, levelBounds{}, false,
				fmt.Errorf("%w: level id=%d cursor=%d", ErrLevelPayloadTooLarge, plan.LevelID, cursor)
		}

		if _, err := w.sink.Write(rec.Payload); err != nil {
			return swtiles.Level{}, levelBounds{}, false, err
		}
		cells[idx] = cellLoc{offset: cursor, length: uint32(len(rec.Payload))}
		cursor += uint64(len(rec.Payload))
		tileCount++
		w.metrics.tilesWritten.Inc()
		w.metrics.bytesWritten.Add(float64(len(rec.Payload)))
		if bar != nil {
			bar.Increment(1)
		}

		cellMinE, cellMinN, cellMaxE, cellMaxN := swgrid.CellToBounds(grid, int64(rec.Row), int64(rec.Col))
		if !hasTiles {
			bounds = levelBounds{cellMinE, cellMinN, cellMaxE, cellMaxN}
			hasTiles = true
		} else {
			bounds.minE = math.Min(bounds.minE, cellMinE)
			bounds.minN = math.Min(bounds.minN, cellMinN)
			bounds.maxE = math.Max(bounds.maxE, cellMaxE)
			bounds.maxN = math.Max(bounds.maxN, cellMaxN)
		}
	}

	if bar != nil {
		bar.Finish()
	}

	// Patching index.
	idxBuf := make([]byte, indexLength)
	for i, c := range cells {
		if c.length == 0 {
			continue // stays all-zero: empty cell
		}
		cellBuf, err := swtiles.EncodeIndexCell(c.offset, c.length)
		if err != nil {
			return swtiles.Level{}, levelBounds{}, false, err
		}
		copy(idxBuf[i*swtiles.IndexCellSize:], cellBuf[:])
	}
	if len(idxBuf) > 0 {
		if _, err := w.sink.WriteAt(idxBuf, indexOffset); err != nil {
			return swtiles.Level{}, levelBounds{}, false, err
		}
	}

	// Recording level entry.
	entry := swtiles.Level{
		LevelID:     plan.LevelID,
		ResolutionM: plan.ResolutionM,
		TileExtentM: plan.TileExtentM,
		OriginE:     plan.OriginE,
		OriginN:     plan.OriginN,
		GridCols:    plan.GridCols,
		GridRows:    plan.GridRows,
		TileCount:   tileCount,
		IndexOffset: uint64(indexOffset),
		IndexLength: indexLength,
		DataOffset:  uint64(dataOffset),
	}
	return entry, bounds, hasTiles, nil
}

func writeZeros(sink Sink, n uint64) error {
	const chunkSize = 1 << 20
	chunk := make([]byte, minUint64(n, chunkSize))
	var written uint64
	for written < n {
		want := minUint64(n-written, uint64(len(chunk)))
		if _, err := sink.Write(chunk[:want]); err != nil {
			return err
		}
		written += want
	}
	return nil
}

func minUint64(a, b uint64) uint64 {
	if a < b {
		return a
	}
	return b
}
