// Package swtiles implements the byte-exact codec for the SWTILES archive
// format: the fixed 256-byte header, the 64-byte level table entry, and the
// packed 40/24-bit index cell. Every function here is pure — no I/O, no
// allocation beyond the returned buffer.
package swtiles

import "errors"

// Error kinds surfaced by DecodeHeader, EncodeIndexCell and ValidateLevel,
// per the format's error-kind list. DecodeLevelEntry returns no error.
var (
	ErrBadMagic           = errors.New("swtiles: bad magic")
	ErrUnsupportedVersion = errors.New("swtiles: unsupported version")
	ErrReservedNotZero    = errors.New("swtiles: reserved bytes not zero")
	ErrBadEnum            = errors.New("swtiles: enum value out of range")
	ErrOffsetOverflow     = errors.New("swtiles: index offset exceeds 40 bits")
	ErrLengthOverflow     = errors.New("swtiles: index length exceeds 24 bits")
	ErrTruncated          = errors.New("swtiles: truncated buffer")
)
