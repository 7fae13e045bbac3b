// Package minio provides a blobstore.Store backed by MinIO or any other
// S3-compatible object storage reachable through minio-go.
//
// # Usage
//
//	store, err := minio.New("localhost:9000", "datasets", minio.Credentials{
//	    AccessKey: "minioadmin",
//	    SecretKey: "minioadmin",
//	})
package minio
