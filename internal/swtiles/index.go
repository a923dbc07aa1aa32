package swtiles

import "fmt"

// IndexCellSize is the fixed on-disk size of one index cell.
const IndexCellSize = 8

// MaxOffset is the largest representable 40-bit offset (exclusive upper bound).
const MaxOffset = 1 << 40

// MaxLength is the largest representable 24-bit length (exclusive upper bound).
const MaxLength = 1 << 24

// EncodeIndexCell packs offset and length into the 8-byte cell layout:
// bytes 0..5 are the little-endian 40-bit offset, bytes 5..8 are the
// little-endian 24-bit length. Per spec.md §9 this is done byte-by-byte
// rather than via a native-width integer store, to sidestep any alignment
// assumption about the surrounding buffer.
func EncodeIndexCell(offset uint64, length uint32) ([8]byte, error) {
	var buf [8]byte

	if offset >= MaxOffset {
		return buf, fmt.Errorf("%w: offset=%d", ErrOffsetOverflow, offset)
	}
	if length >= MaxLength {
		return buf, fmt.Errorf("%w: length=%d", ErrLengthOverflow, length)
	}

	buf[0] = byte(offset)
	buf[1] = byte(offset >> 8)
	buf[2] = byte(offset >> 16)
	buf[3] = byte(offset >> 24)
	buf[4] = byte(offset >> 32)

	buf[5] = byte(length)
	buf[6] = byte(length >> 8)
	buf[7] = byte(length >> 16)

	return buf, nil
}

// DecodeIndexCell unpacks an 8-byte cell into its offset (40-bit, high 3
// bytes of the returned uint64 are zero) and length (24-bit, high byte of
// the returned uint32 is zero). A cell with length == 0 denotes an empty
// tile; callers must rely on length alone, never on offset.
func DecodeIndexCell(buf [8]byte) (offset uint64, length uint32) {
	offset = uint64(buf[0]) |
		uint64(buf[1])<<8 |
		uint64(buf[2])<<16 |
		uint64(buf[3])<<24 |
		uint64(buf[4])<<32

	length = uint32(buf[5]) |
		uint32(buf[6])<<8 |
		uint32(buf[7])<<16

	return offset, length
}
