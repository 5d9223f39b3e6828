package blobstore

import (
	"context"
	"errors"
	"os"
	"sync"

	"golang.org/x/sync/singleflight"
)

// CachingStore wraps a remote BlobStore and keeps a copy of every blob it
// opens in a local directory. Later opens are served from the local copy,
// which is memory mapped where supported.
type CachingStore struct {
	inner BlobStore
	local *LocalStore
	opts  []ReadOption

	group singleflight.Group
	mu    sync.Mutex
	hits  int64
	miss  int64
}

// NewCachingStore creates a new CachingStore that caches blobs of inner
// below dir.
func NewCachingStore(inner BlobStore, dir string, opts ...ReadOption) *CachingStore {
	return &CachingStore{
		inner: inner,
		local: NewLocalStore(dir),
		opts:  opts,
	}
}

// Open returns the cached copy of the blob, fetching it first if needed.
func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.local.Open(ctx, name)
	if err == nil {
		s.count(true)
		return b, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	s.count(false)

	_, err, _ = s.group.Do(name, func() (any, error) {
		return nil, s.fetch(ctx, name)
	})
	if err != nil {
		return nil, err
	}
	return s.local.Open(ctx, name)
}

func (s *CachingStore) fetch(ctx context.Context, name string) error {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return err
	}
	defer func() { _ = b.Close() }()

	data, err := ReadAll(ctx, b, s.opts...)
	if err != nil {
		return err
	}
	return s.local.Put(ctx, name, data)
}

// Put writes the blob to the remote store and drops the cached copy.
func (s *CachingStore) Put(ctx context.Context, name string, data []byte) error {
	if err := s.local.Delete(ctx, name); err != nil {
		return err
	}
	return s.inner.Put(ctx, name, data)
}

// Delete removes the blob from the remote store and the cache.
func (s *CachingStore) Delete(ctx context.Context, name string) error {
	if err := s.local.Delete(ctx, name); err != nil {
		return err
	}
	return s.inner.Delete(ctx, name)
}

// List lists the remote store.
func (s *CachingStore) List(ctx context.Context, prefix string) ([]string, error) {
	return s.inner.List(ctx, prefix)
}

// Stats returns the number of opens served from the cache and the number
// that had to fetch the blob.
func (s *CachingStore) Stats() (hits, misses int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits, s.miss
}

func (s *CachingStore) count(hit bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if hit {
		s.hits++
	} else {
		s.miss++
	}
}
