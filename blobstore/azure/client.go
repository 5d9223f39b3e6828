package azure

import (
	"context"
	"errors"
	"io"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob/bloberror"

	"github.com/hupe1980/langid/blobstore"
)

// Client is the subset of Azure Blob Storage operations used by Store.
// NewClient adapts an *azblob.Client. Other implementations report missing
// blobs with blobstore.ErrNotFound.
type Client interface {
	// Size returns the content length of a blob.
	Size(ctx context.Context, container, name string) (int64, error)
	// ReadRange returns count bytes of a blob starting at offset.
	ReadRange(ctx context.Context, container, name string, offset, count int64) (io.ReadCloser, error)
	// Download reads the whole blob into buf, which must hold it.
	Download(ctx context.Context, container, name string, buf []byte) (int64, error)
	// Upload replaces a blob with data.
	Upload(ctx context.Context, container, name string, data []byte) error
	// Delete removes a blob.
	Delete(ctx context.Context, container, name string) error
	// List returns the names of all blobs starting with prefix.
	List(ctx context.Context, container, prefix string) ([]string, error)
}

// TransferConfig controls parallel block transfers.
type TransferConfig struct {
	// BlockSize is the size of each block in bytes.
	BlockSize int64
	// Concurrency is the number of blocks transferred at once.
	Concurrency uint16
}

// DefaultTransferConfig returns 4MB blocks, four at a time.
func DefaultTransferConfig() TransferConfig {
	return TransferConfig{BlockSize: 4 << 20, Concurrency: 4}
}

type sdkClient struct {
	c   *azblob.Client
	cfg TransferConfig
}

// NewClient adapts an SDK client.
func NewClient(c *azblob.Client, cfg TransferConfig) Client {
	return &sdkClient{c: c, cfg: cfg}
}

// NewClientFromConnectionString creates a client for a storage account
// connection string.
func NewClientFromConnectionString(conn string, cfg TransferConfig) (Client, error) {
	c, err := azblob.NewClientFromConnectionString(conn, nil)
	if err != nil {
		return nil, err
	}
	return NewClient(c, cfg), nil
}

// NewClientWithSharedKey creates a client for serviceURL, for example
// "https://account.blob.core.windows.net/", authenticated with an account
// key.
func NewClientWithSharedKey(serviceURL, account, key string, cfg TransferConfig) (Client, error) {
	cred, err := azblob.NewSharedKeyCredential(account, key)
	if err != nil {
		return nil, err
	}
	c, err := azblob.NewClientWithSharedKeyCredential(serviceURL, cred, nil)
	if err != nil {
		return nil, err
	}
	return NewClient(c, cfg), nil
}

func (s *sdkClient) Size(ctx context.Context, container, name string) (int64, error) {
	props, err := s.c.ServiceClient().NewContainerClient(container).NewBlobClient(name).GetProperties(ctx, nil)
	if err != nil {
		return 0, err
	}
	if props.ContentLength == nil {
		return 0, nil
	}
	return *props.ContentLength, nil
}

func (s *sdkClient) ReadRange(ctx context.Context, container, name string, offset, count int64) (io.ReadCloser, error) {
	resp, err := s.c.DownloadStream(ctx, container, name, &azblob.DownloadStreamOptions{
		Range: azblob.HTTPRange{Offset: offset, Count: count},
	})
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (s *sdkClient) Download(ctx context.Context, container, name string, buf []byte) (int64, error) {
	return s.c.DownloadBuffer(ctx, container, name, buf, &azblob.DownloadBufferOptions{
		BlockSize:   s.cfg.BlockSize,
		Concurrency: s.cfg.Concurrency,
	})
}

func (s *sdkClient) Upload(ctx context.Context, container, name string, data []byte) error {
	_, err := s.c.UploadBuffer(ctx, container, name, data, &azblob.UploadBufferOptions{
		BlockSize:   s.cfg.BlockSize,
		Concurrency: s.cfg.Concurrency,
	})
	return err
}

func (s *sdkClient) Delete(ctx context.Context, container, name string) error {
	_, err := s.c.DeleteBlob(ctx, container, name, nil)
	return err
}

func (s *sdkClient) List(ctx context.Context, container, prefix string) ([]string, error) {
	var names []string
	pager := s.c.NewListBlobsFlatPager(container, &azblob.ListBlobsFlatOptions{Prefix: &prefix})
	for pager.More() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return nil, err
		}
		if page.Segment == nil {
			continue
		}
		for _, item := range page.Segment.BlobItems {
			if item.Name != nil {
				names = append(names, *item.Name)
			}
		}
	}
	return names, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, blobstore.ErrNotFound) || bloberror.HasCode(err, bloberror.BlobNotFound, bloberror.ContainerNotFound)
}
