package swtiles

import (
	"encoding/binary"
	"math"
)

// LevelEntrySize is the fixed on-disk size of one level table entry.
const LevelEntrySize = 64

// Level describes one georeferenced grid within an archive, plus the
// location of its index and payload regions.
type Level struct {
	LevelID     uint8
	ResolutionM float32
	TileExtentM float32
	OriginE     float64
	OriginN     float64
	GridCols    uint32
	GridRows    uint32
	TileCount   uint32
	IndexOffset uint64
	IndexLength uint64
	DataOffset  uint64
}

// EncodeLevelEntry writes a Level at the exact offsets in spec.md §6,
// zeroing the two reserved spans (byte 1, bytes 10-11).
func EncodeLevelEntry(l Level) []byte {
	buf := make([]byte, LevelEntrySize)

	buf[0] = l.LevelID
	// buf[1] reserved = 0
	binary.LittleEndian.PutUint32(buf[2:6], math.Float32bits(l.ResolutionM))
	binary.LittleEndian.PutUint32(buf[6:10], math.Float32bits(l.TileExtentM))
	// buf[10:12] reserved = 0
	binary.LittleEndian.PutUint64(buf[12:20], math.Float64bits(l.OriginE))
	binary.LittleEndian.PutUint64(buf[20:28], math.Float64bits(l.OriginN))
	binary.LittleEndian.PutUint32(buf[28:32], l.GridCols)
	binary.LittleEndian.PutUint32(buf[32:36], l.GridRows)
	binary.LittleEndian.PutUint32(buf[36:40], l.TileCount)
	binary.LittleEndian.PutUint64(buf[40:48], l.IndexOffset)
	binary.LittleEndian.PutUint64(buf[48:56], l.IndexLength)
	binary.LittleEndian.PutUint64(buf[56:64], l.DataOffset)

	return buf
}

// DecodeLevelEntry reads a 64-byte level table entry. Bytes 10-11 (the gap
// between tile_extent_m and origin_e left by the source format's
// reserved_2 field) are accepted with any value on read, per spec.md §9.
func DecodeLevelEntry(buf []byte) Level {
	return Level{
		LevelID:     buf[0],
		ResolutionM: math.Float32frombits(binary.LittleEndian.Uint32(buf[2:6])),
		TileExtentM: math.Float32frombits(binary.LittleEndian.Uint32(buf[6:10])),
		OriginE:     math.Float64frombits(binary.LittleEndian.Uint64(buf[12:20])),
		OriginN:     math.Float64frombits(binary.LittleEndian.Uint64(buf[20:28])),
		GridCols:    binary.LittleEndian.Uint32(buf[28:32]),
		GridRows:    binary.LittleEndian.Uint32(buf[32:36]),
		TileCount:   binary.LittleEndian.Uint32(buf[36:40]),
		IndexOffset: binary.LittleEndian.Uint64(buf[40:48]),
		IndexLength: binary.LittleEndian.Uint64(buf[48:56]),
		DataOffset:  binary.LittleEndian.Uint64(buf[56:64]),
	}
}
