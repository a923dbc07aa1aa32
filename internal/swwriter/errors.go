package swwriter

import "errors"

// Per-tile and sink error kinds from spec.md §7, plus ErrEmptyPayload
// (not a spec.md error kind: a zero-length tile record is rejected
// outright rather than treated as PayloadTooLarge, whose spec meaning is
// specifically len(bytes) >= 2^24, see DESIGN.md).
var (
	ErrDuplicateCell        = errors.New("swwriter: duplicate cell")
	ErrCellOutOfGrid        = errors.New("swwriter: cell out of grid")
	ErrPayloadTooLarge      = errors.New("swwriter: payload too large")
	ErrEmptyPayload         = errors.New("swwriter: empty payload for non-empty cell")
	ErrLevelPayloadTooLarge = errors.New("swwriter: level payload too large")
	ErrSinkFailed           = errors.New("swwriter: sink failed")
)
