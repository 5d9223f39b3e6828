package azure

import (
	"context"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/hupe1980/langid/blobstore"
)

// Store implements blobstore.BlobStore on an Azure Blob Storage container.
type Store struct {
	client    Client
	container string
	prefix    string
}

var _ blobstore.BlobStore = (*Store)(nil)

// NewStore returns a store for container. rootPrefix is prepended to all
// names (e.g. "langid/").
func NewStore(client Client, container, rootPrefix string) *Store {
	return &Store{client: client, container: container, prefix: rootPrefix}
}

func (s *Store) key(name string) string {
	if s.prefix == "" {
		return name
	}
	return path.Join(s.prefix, name)
}

// Open opens an existing blob for reading.
func (s *Store) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	key := s.key(name)
	size, err := s.client.Size(ctx, s.container, key)
	if err != nil {
		if isNotFound(err) {
			return nil, blobstore.ErrNotFound
		}
		return nil, err
	}
	return &azureBlob{client: s.client, container: s.container, key: key, size: size}, nil
}

// Put uploads data, replacing any existing blob.
func (s *Store) Put(ctx context.Context, name string, data []byte) error {
	return s.client.Upload(ctx, s.container, s.key(name), data)
}

// Delete removes a blob. Missing blobs are not an error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if err := s.client.Delete(ctx, s.container, s.key(name)); err != nil && !isNotFound(err) {
		return err
	}
	return nil
}

// List returns the sorted names of all blobs with the given prefix.
func (s *Store) List(ctx context.Context, prefix string) ([]string, error) {
	fullPrefix := s.key(prefix)
	if strings.HasSuffix(prefix, "/") && !strings.HasSuffix(fullPrefix, "/") {
		fullPrefix += "/"
	}
	keys, err := s.client.List(ctx, s.container, fullPrefix)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(keys))
	for _, k := range keys {
		name := strings.TrimPrefix(strings.TrimPrefix(k, s.prefix), "/")
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// azureBlob implements blobstore.Blob and blobstore.Downloader.
type azureBlob struct {
	client    Client
	container string
	key       string
	size      int64
}

func (b *azureBlob) Size() int64 { return b.size }

func (b *azureBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if off < 0 || off >= b.size {
		return 0, io.EOF
	}

	want := int(min(int64(len(p)), b.size-off))
	body, err := b.client.ReadRange(ctx, b.container, b.key, off, int64(want))
	if err != nil {
		return 0, err
	}
	defer func() { _ = body.Close() }()

	n, err := io.ReadFull(body, p[:want])
	if err != nil {
		return n, err
	}
	if want < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Download fetches the whole blob with parallel block reads.
func (b *azureBlob) Download(ctx context.Context) ([]byte, error) {
	buf := make([]byte, b.size)
	n, err := b.client.Download(ctx, b.container, b.key, buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (b *azureBlob) Close() error { return nil }
