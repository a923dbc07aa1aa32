package swreader

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
)

// S3API is the subset of minio.Client used by S3Source. Defining a narrow
// interface (rather than depending on *minio.Client directly) keeps this
// file unit-testable with a fake; adapted from the teacher pack's
// brawer-wikidata-qrank cmd/qrank-builder/s3.go S3 interface.
type S3API interface {
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (*minio.Object, error)
}

// S3Source is a ByteSource backed by an S3-compatible object store,
// fetching each range with a GetObject Range request rather than
// downloading the whole object (spec.md §5, "S3... via range GETs").
type S3Source struct {
	client S3API
	bucket string
	object string
}

// NewS3Source returns a ByteSource reading bucket/object through client.
func NewS3Source(client S3API, bucket, object string) *S3Source {
	return &S3Source{client: client, bucket: bucket, object: object}
}

// Fetch implements ByteSource.
func (s *S3Source) Fetch(ctx context.Context, offset, length int64) ([]byte, error) {
	opts := minio.GetObjectOptions{}
	if err := opts.SetRange(offset, offset+length-1); err != nil {
		return nil, fmt.Errorf("%w: setting range: %v", ErrFetchFailed, err)
	}

	obj, err := s.client.GetObject(ctx, s.bucket, s.object, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer obj.Close()

	buf := make([]byte, length)
	if _, err := io.ReadFull(obj, buf); err != nil {
		return nil, fmt.Errorf("%w: reading %s/%s [%d,%d): %v", ErrFetchFailed, s.bucket, s.object, offset, offset+length, err)
	}
	return buf, nil
}

// Close implements ByteSource; the shared minio client outlives S3Source.
func (s *S3Source) Close() error {
	return nil
}
