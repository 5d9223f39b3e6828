// Package minio provides a BlobStore implementation using the MinIO client.
//
// It works with MinIO and other S3-compatible storage systems like Ceph,
// SeaweedFS, and Garage, without the AWS SDK.
//
// # Basic Usage
//
//	store, err := minioblob.Dial("localhost:9000", "minioadmin", "minioadmin", false,
//	    "my-bucket", "langid/")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	id, err := langid.OpenBlob(ctx, store, "languages.db")
//
// An existing client can be wrapped with NewStore:
//
//	client, _ := minio.New("s3.example.com:9000", &minio.Options{
//	    Creds:  credentials.NewStaticV4(accessKey, secretKey, ""),
//	    Secure: true,
//	})
//	store := minioblob.NewStore(client, "my-bucket", "langid/")
package minio
