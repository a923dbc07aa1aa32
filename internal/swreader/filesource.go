package swreader

import (
	"context"
	"fmt"
	"os"
)

// FileSource is a ByteSource backed by a local file. It mmaps the file
// read-only when the platform supports it (internal/swreader/mmap_unix.go,
// adapted from the teacher's internal/cog mmap helpers) and falls back to
// ReadAt otherwise.
type FileSource struct {
	f    *os.File
	data []byte // non-nil when mmap succeeded
	size int64
}

// OpenFileSource opens path as a ByteSource.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrFetchFailed, path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: stat %s: %v", ErrFetchFailed, path, err)
	}

	fs := &FileSource{f: f, size: info.Size()}
	if info.Size() > 0 {
		if data, err := mmapFile(f.Fd(), int(info.Size())); err == nil {
			fs.data = data
		}
	}
	return fs, nil
}

// Fetch implements ByteSource.
func (fs *FileSource) Fetch(ctx context.Context, offset, length int64) ([]byte, error) {
	if offset < 0 || length < 0 || offset+length > fs.size {
		return nil, fmt.Errorf("%w: range [%d,%d) exceeds file size %d", ErrFetchFailed, offset, offset+length, fs.size)
	}
	if fs.data != nil {
		out := make([]byte, length)
		copy(out, fs.data[offset:offset+length])
		return out, nil
	}

	buf := make([]byte, length)
	if _, err := fs.f.ReadAt(buf, offset); err != nil {
		return nil, fmt.Errorf("%w: reading [%d,%d): %v", ErrFetchFailed, offset, offset+length, err)
	}
	return buf, nil
}

// Close implements ByteSource.
func (fs *FileSource) Close() error {
	if fs.data != nil {
		munmapFile(fs.data)
		fs.data = nil
	}
	return fs.f.Close()
}
