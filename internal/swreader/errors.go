package swreader

import "errors"

// Reader-level error kinds from spec.md §7. Out-of-grid cells and
// coordinates are not an error kind here: per spec.md §7 they are surfaced
// as an absent (nil, false, nil) result from GetTile/GetTileByCoord, the
// same as an in-grid but empty cell.
var (
	ErrFetchFailed  = errors.New("swreader: fetch failed")
	ErrUnknownLevel = errors.New("swreader: unknown level id")
)
