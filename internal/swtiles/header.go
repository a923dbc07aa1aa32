package swtiles

import (
	"encoding/binary"
	"fmt"
	"math"
)

// HeaderSize is the fixed on-disk size of the archive header in bytes.
const HeaderSize = 256

// Magic is the 8-byte literal every archive must begin with.
var Magic = [8]byte{'S', 'W', 'T', 'I', 'L', 'E', 'S', 0}

// Version is the only version this codec accepts.
const Version = 2

// Data type enum (header byte 10). Purely descriptive; does not alter decoding.
const (
	DataTypeRaster  uint8 = 1
	DataTypeTerrain uint8 = 2
	DataTypeOther   uint8 = 3
)

// Image format enum (header byte 11). Determines the advertised media type
// of payloads; payloads themselves remain opaque bytes.
const (
	ImageFormatWebP uint8 = 1
	ImageFormatPNG  uint8 = 2
	ImageFormatJPEG uint8 = 3
	ImageFormatAVIF uint8 = 4
)

// MediaType returns the advertised media type for an image format, or ""
// if the format is not one of the defined enum values.
func MediaType(imageFormat uint8) string {
	switch imageFormat {
	case ImageFormatWebP:
		return "image/webp"
	case ImageFormatPNG:
		return "image/png"
	case ImageFormatJPEG:
		return "image/jpeg"
	case ImageFormatAVIF:
		return "image/avif"
	default:
		return ""
	}
}

// Header is the archive's 256-byte global header, immutable after write.
type Header struct {
	DataType         uint8
	ImageFormat      uint8
	CRSEPSG          uint32
	BoundsMinE       float64
	BoundsMinN       float64
	BoundsMaxE       float64
	BoundsMaxN       float64
	TileSizePx       uint16
	NumLevels        uint8
	LevelTableOffset uint64
}

func validEnum(v uint8, valid ...uint8) bool {
	for _, x := range valid {
		if v == x {
			return true
		}
	}
	return false
}

// EncodeHeader writes all fixed fields little-endian and zeroes all
// reserved bytes, returning a 256-byte buffer.
func EncodeHeader(h Header) []byte {
	buf := make([]byte, HeaderSize)

	copy(buf[0:8], Magic[:])
	binary.LittleEndian.PutUint16(buf[8:10], Version)
	buf[10] = h.DataType
	buf[11] = h.ImageFormat
	binary.LittleEndian.PutUint32(buf[12:16], h.CRSEPSG)
	binary.LittleEndian.PutUint64(buf[16:24], math.Float64bits(h.BoundsMinE))
	binary.LittleEndian.PutUint64(buf[24:32], math.Float64bits(h.BoundsMinN))
	binary.LittleEndian.PutUint64(buf[32:40], math.Float64bits(h.BoundsMaxE))
	binary.LittleEndian.PutUint64(buf[40:48], math.Float64bits(h.BoundsMaxN))
	binary.LittleEndian.PutUint16(buf[48:50], h.TileSizePx)
	buf[50] = h.NumLevels
	// buf[51] reserved = 0
	binary.LittleEndian.PutUint64(buf[52:60], h.LevelTableOffset)
	// buf[60:256] reserved = 0

	return buf
}

// DecodeHeader parses a 256-byte buffer into a Header.
//
// Errors: ErrTruncated if buf is shorter than HeaderSize; ErrBadMagic if
// the first 8 bytes differ from Magic; ErrUnsupportedVersion if the version
// is not Version; ErrReservedNotZero if any reserved byte is non-zero;
// ErrBadEnum if DataType or ImageFormat falls outside the defined set.
// No other validation is performed here.
func DecodeHeader(buf []byte) (Header, error) {
	if len(buf) < HeaderSize {
		return Header{}, fmt.Errorf("%w: header needs %d bytes, got %d", ErrTruncated, HeaderSize, len(buf))
	}
	if string(buf[0:8]) != string(Magic[:]) {
		return Header{}, fmt.Errorf("%w: got %q", ErrBadMagic, buf[0:8])
	}
	version := binary.LittleEndian.Uint16(buf[8:10])
	if version != Version {
		return Header{}, fmt.Errorf("%w: got %d, want %d", ErrUnsupportedVersion, version, Version)
	}
	if buf[51] != 0 {
		return Header{}, fmt.Errorf("%w: byte 51", ErrReservedNotZero)
	}
	for i := 60; i < HeaderSize; i++ {
		if buf[i] != 0 {
			return Header{}, fmt.Errorf("%w: byte %d", ErrReservedNotZero, i)
		}
	}

	h := Header{
		DataType:         buf[10],
		ImageFormat:      buf[11],
		CRSEPSG:          binary.LittleEndian.Uint32(buf[12:16]),
		BoundsMinE:       math.Float64frombits(binary.LittleEndian.Uint64(buf[16:24])),
		BoundsMinN:       math.Float64frombits(binary.LittleEndian.Uint64(buf[24:32])),
		BoundsMaxE:       math.Float64frombits(binary.LittleEndian.Uint64(buf[32:40])),
		BoundsMaxN:       math.Float64frombits(binary.LittleEndian.Uint64(buf[40:48])),
		TileSizePx:       binary.LittleEndian.Uint16(buf[48:50]),
		NumLevels:        buf[50],
		LevelTableOffset: binary.LittleEndian.Uint64(buf[52:60]),
	}

	if !validEnum(h.DataType, DataTypeRaster, DataTypeTerrain, DataTypeOther) {
		return Header{}, fmt.Errorf("%w: data_type=%d", ErrBadEnum, h.DataType)
	}
	if !validEnum(h.ImageFormat, ImageFormatWebP, ImageFormatPNG, ImageFormatJPEG, ImageFormatAVIF) {
		return Header{}, fmt.Errorf("%w: image_format=%d", ErrBadEnum, h.ImageFormat)
	}

	return h, nil
}
