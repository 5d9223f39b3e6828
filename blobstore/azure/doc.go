// Package azure provides a BlobStore on Azure Blob Storage.
//
// # Basic Usage
//
//	client, err := azure.NewClientWithSharedKey(
//	    "https://account.blob.core.windows.net/", "account", key,
//	    azure.DefaultTransferConfig())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := azure.NewStore(client, "models", "langid/")
//
//	id, err := langid.OpenBlob(ctx, store, "languages.db")
//
// Blobs implement blobstore.Downloader, so large databases are fetched with
// parallel block reads sized by TransferConfig.
package azure
