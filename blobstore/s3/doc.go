// Package s3 provides an S3 implementation of the blobstore.BlobStore interface.
//
// # Usage
//
//	store, err := s3.New(ctx, "my-bucket",
//	    s3.WithPrefix("langid/"),
//	    s3.WithRegion("us-east-1"),
//	)
//
//	id, err := langid.OpenBlob(ctx, store, "languages.db")
//
// # Features
//
//   - Range reads for partial fetches
//   - Concurrent whole-object downloads through the transfer manager
//   - Multipart uploads for large databases
//   - CRC32C checksums on upload
//   - Automatic pagination for listing
package s3
