// Package blobstore provides storage abstraction for language databases.
//
// BlobStore is the interface for reading and writing database blobs.
// Implementations must be safe for concurrent use.
//
// # Built-in Implementations
//
//   - LocalStore: Local filesystem with mmap support
//   - MemoryStore: In-memory store for tests
//   - CachingStore: Local directory cache in front of a remote store
//   - s3.Store: Amazon S3 with range reads and parallel uploads
//   - minio.Store: MinIO and other S3 compatible servers
//   - azure.Store: Azure Blob Storage containers
//
// # Loading
//
// Load reads a whole blob. Memory mapped blobs are returned without a copy;
// remote blobs are fetched with parallel ranged reads unless they implement
// Downloader.
//
//	data, closer, err := blobstore.Load(ctx, store, "languages.db")
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//
// # Custom Implementations
//
//	type BlobStore interface {
//	    Open(ctx, name) (Blob, error)
//	    Put(ctx, name, data) error
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
