// Package blobstore provides the storage abstraction that dataset files are
// read from and written to.
//
// A Store hands out sequential streams: record and query files are always
// consumed front to back, so no random access is offered.
//
// # Built-in Implementations
//
//   - LocalStore: local filesystem; writes become visible atomically on Close
//   - MemoryStore: in-memory, for tests
//   - s3.Store: Amazon S3 with streaming multipart uploads
//   - minio.Store: MinIO and other S3-compatible services
//
// # Custom Implementations
//
//	type Store interface {
//	    Open(ctx, name) (io.ReadCloser, error)    // Read a blob
//	    Create(ctx, name) (io.WriteCloser, error) // Write a blob; visible after Close
//	    Delete(ctx, name) error
//	    List(ctx, prefix) ([]string, error)
//	}
package blobstore
