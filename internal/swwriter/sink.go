package swwriter

import (
	"fmt"
	"os"
)

// Sink is the writable byte sink the writer assembles an archive into:
// sequential append plus a final seek-and-patch of already-written
// regions (spec.md §4.2). FileSink implements it over an *os.File, the
// way the teacher's pmtiles.Writer wrote directly to an *os.File; this
// interface exists so tests can substitute an in-memory sink and so a
// future streaming-to-object-storage sink can be dropped in without
// touching Writer.
type Sink interface {
	// Write appends p sequentially, advancing the write cursor.
	Write(p []byte) (int, error)
	// Tell returns the current write cursor position.
	Tell() (int64, error)
	// WriteAt patches an already-written region; it does not move the
	// sequential write cursor.
	WriteAt(p []byte, offset int64) (int, error)
}

// FileSink is a Sink backed by a local file, opened for sequential
// writing with random-access patching via WriteAt.
type FileSink struct {
	f      *os.File
	cursor int64
}

// NewFileSink creates (truncating) the file at path and wraps it as a Sink.
func NewFileSink(path string) (*FileSink, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", path, err)
	}
	return &FileSink{f: f}, nil
}

func (s *FileSink) Write(p []byte) (int, error) {
	n, err := s.f.Write(p)
	s.cursor += int64(n)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrSinkFailed, err)
	}
	return n, nil
}

func (s *FileSink) Tell() (int64, error) {
	return s.cursor, nil
}

func (s *FileSink) WriteAt(p []byte, offset int64) (int, error) {
	n, err := s.f.WriteAt(p, offset)
	if err != nil {
		return n, fmt.Errorf("%w: %v", ErrSinkFailed, err)
	}
	return n, nil
}

// Close closes the underlying file.
func (s *FileSink) Close() error {
	return s.f.Close()
}
