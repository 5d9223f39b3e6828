package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"
)

const (
	// DefaultChunkSize is the size of one ranged read in ReadAll.
	DefaultChunkSize = 8 << 20
	// DefaultConcurrency is the number of ranged reads in flight.
	DefaultConcurrency = 4
)

// ReadOption configures ReadAll and Load.
type ReadOption func(*readOptions)

type readOptions struct {
	chunkSize   int64
	concurrency int
}

// WithChunkSize sets the size of each ranged read.
func WithChunkSize(n int64) ReadOption {
	return func(o *readOptions) {
		if n > 0 {
			o.chunkSize = n
		}
	}
}

// WithConcurrency sets how many ranged reads run in parallel.
func WithConcurrency(n int) ReadOption {
	return func(o *readOptions) {
		if n > 0 {
			o.concurrency = n
		}
	}
}

// ReadAll reads the whole blob. Blobs implementing Downloader fetch
// themselves; otherwise the blob is split into chunks that are read in
// parallel.
func ReadAll(ctx context.Context, b Blob, opts ...ReadOption) ([]byte, error) {
	o := readOptions{chunkSize: DefaultChunkSize, concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&o)
	}

	if d, ok := b.(Downloader); ok {
		return d.Download(ctx)
	}

	size := b.Size()
	if size < 0 {
		return nil, fmt.Errorf("blobstore: invalid size %d", size)
	}
	buf := make([]byte, size)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.concurrency)
	for off := int64(0); off < size; off += o.chunkSize {
		end := min(off+o.chunkSize, size)
		g.Go(func() error {
			n, err := b.ReadAt(gctx, buf[off:end], off)
			if errors.Is(err, io.EOF) && int64(n) == end-off {
				err = nil
			}
			if err != nil {
				return fmt.Errorf("blobstore: read at %d: %w", off, err)
			}
			if int64(n) != end-off {
				return fmt.Errorf("blobstore: short read at %d: %w", off, io.ErrUnexpectedEOF)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return buf, nil
}

// Load opens the named blob and returns its content.
//
// For Mappable blobs the content is not copied and stays valid until the
// returned closer is closed. For all other blobs the data is read with
// ReadAll and the closer is a no-op.
func Load(ctx context.Context, store BlobStore, name string, opts ...ReadOption) ([]byte, io.Closer, error) {
	b, err := store.Open(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	if m, ok := b.(Mappable); ok {
		data, err := m.Bytes()
		if err != nil {
			_ = b.Close()
			return nil, nil, err
		}
		return data, b, nil
	}
	defer func() { _ = b.Close() }()

	data, err := ReadAll(ctx, b, opts...)
	if err != nil {
		return nil, nil, err
	}
	return data, nopCloser{}, nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
