// Package swreader implements read access to an existing archive over the
// two-range-request contract of spec.md §5: one small fetch for an 8-byte
// index cell, then (for non-empty cells) one fetch for the tile payload.
// The package never assumes the whole archive is local; ByteSource is the
// seam that lets the same Reader run against a local file, an HTTP range
// server, or an S3-compatible bucket.
package swreader

import "context"

// ByteSource is a random-access source of archive bytes. Implementations
// must tolerate being asked for the same range repeatedly and from
// multiple goroutines concurrently.
type ByteSource interface {
	// Fetch returns exactly length bytes starting at offset, or an error
	// wrapping ErrFetchFailed.
	Fetch(ctx context.Context, offset, length int64) ([]byte, error)
	// Close releases any resources (file descriptors, connections) held
	// by the source.
	Close() error
}
