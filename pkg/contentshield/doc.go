// Package contentshield provides the core of the Content Shield platform:
// content-addressed registration with platform-wide deduplication, and an
// access-control resolver deciding per (user, content) pair whether viewing
// and downloading are permitted.
//
// The library is storage-agnostic: persistence goes through the Repository
// interface (in-memory and PostgreSQL implementations under repo/), raw bytes
// go through the BlobStore interface (memory, filesystem and S3 backends
// under storage/). Construct a Service with functional options:
//
//	svc, err := contentshield.New(
//	    contentshield.WithRepository(memory.New()),
//	    contentshield.WithBlobStore(memorystorage.New()),
//	)
package contentshield
