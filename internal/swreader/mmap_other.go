//go:build !unix

package swreader

import "fmt"

// mmapFile is not supported on non-Unix platforms; FileSource falls back
// to ReadAt.
func mmapFile(fd uintptr, size int) ([]byte, error) {
	return nil, fmt.Errorf("memory mapping is not supported on this platform")
}

// munmapFile is a no-op on non-Unix platforms.
func munmapFile(data []byte) error {
	return nil
}
