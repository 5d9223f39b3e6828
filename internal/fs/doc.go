// Package fs abstracts the file system operations used for database files.
//
//   - [LocalFS] is the production implementation backed by package os.
//   - [FaultyFS] injects failures in tests (short writes, failing sync,
//     failing rename).
//
// [WriteFileAtomic] writes through a temporary file and a rename so that a
// crashed model build never leaves a truncated database behind.
//
// Calls take no context.Context: local file operations are not cancellable
// at the syscall level. Remote databases go through package blobstore.
package fs
