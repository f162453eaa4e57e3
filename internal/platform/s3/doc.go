// Package s3 archives run reports in an S3-compatible bucket.
//
// The client works against AWS S3 and any compatible object store reachable
// through a custom endpoint. Buckets are created on first upload.
package s3
