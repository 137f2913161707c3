package contentshield

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
)

// BlobStore defines the interface for content-addressed blob storage backends.
// Keys are derived from the content fingerprint plus the original file extension.
type BlobStore interface {
	// Upload stores the bytes readable from reader under objectKey.
	Upload(ctx context.Context, objectKey string, reader io.Reader) error

	// Download returns a reader over the bytes stored under objectKey.
	Download(ctx context.Context, objectKey string) (io.ReadCloser, error)

	// Delete removes the blob stored under objectKey.
	Delete(ctx context.Context, objectKey string) error

	// GetDownloadURL returns a URL a client can use to fetch the blob directly.
	// downloadFilename, when non-empty, is the suggested attachment filename.
	GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error)

	// GetObjectMeta retrieves storage-level metadata for a blob.
	GetObjectMeta(ctx context.Context, objectKey string) (*ObjectMeta, error)
}

// ObjectMeta contains storage-level metadata about a blob.
type ObjectMeta struct {
	Key         string
	Size        int64
	ContentType string
	UpdatedAt   time.Time
	ETag        string
}

// Repository defines the interface for persistence of users, content items,
// grant records and social counters. Implementations must enforce fingerprint
// uniqueness at insert time: a losing concurrent CreateContent call observes
// ErrDuplicateContent rather than double-registering.
type Repository interface {
	// User operations
	CreateUser(ctx context.Context, user *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	DeleteUser(ctx context.Context, id uuid.UUID) error

	// Content operations
	CreateContent(ctx context.Context, content *Content) error
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	GetContentByFingerprint(ctx context.Context, fingerprint string) (*Content, error)
	UpdateContent(ctx context.Context, content *Content) error
	DeleteContent(ctx context.Context, id uuid.UUID) error
	ListContent(ctx context.Context) ([]*Content, error)
	ListContentByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Content, error)
	ListTrendingContent(ctx context.Context, limit int) ([]*Content, error)

	// License request operations
	CreateLicenseRequest(ctx context.Context, req *LicenseRequest) error
	GetLicenseRequest(ctx context.Context, id uuid.UUID) (*LicenseRequest, error)
	GetPendingLicenseRequest(ctx context.Context, contentID, requesterID uuid.UUID) (*LicenseRequest, error)
	GetApprovedLicenseRequest(ctx context.Context, contentID, requesterID uuid.UUID) (*LicenseRequest, error)
	UpdateLicenseRequest(ctx context.Context, req *LicenseRequest) error
	ListLicenseRequestsByRequester(ctx context.Context, requesterID uuid.UUID) ([]*LicenseRequest, error)
	ListLicenseRequestsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*LicenseRequest, error)
	DeleteLicenseRequestsByContent(ctx context.Context, contentID uuid.UUID) error
	DeleteLicenseRequestsByRequester(ctx context.Context, requesterID uuid.UUID) error

	// Delete request operations
	CreateDeleteRequest(ctx context.Context, req *DeleteRequest) error
	GetDeleteRequest(ctx context.Context, id uuid.UUID) (*DeleteRequest, error)
	UpdateDeleteRequest(ctx context.Context, req *DeleteRequest) error
	ListDeleteRequests(ctx context.Context) ([]*DeleteRequest, error)
	DeleteDeleteRequestsByContent(ctx context.Context, contentID uuid.UUID) error
	DeleteDeleteRequestsByUser(ctx context.Context, userID uuid.UUID) error

	// Like operations
	CreateLike(ctx context.Context, like *Like) error
	DeleteLike(ctx context.Context, contentID, userID uuid.UUID) error
	ListLikesByUser(ctx context.Context, userID uuid.UUID) ([]*Like, error)
	DeleteLikesByContent(ctx context.Context, contentID uuid.UUID) error
	DeleteLikesByUser(ctx context.Context, userID uuid.UUID) error

	// Comment operations
	CreateComment(ctx context.Context, comment *Comment) error
	ListCommentsByContent(ctx context.Context, contentID uuid.UUID) ([]*Comment, error)
	ListCommentsByUser(ctx context.Context, userID uuid.UUID) ([]*Comment, error)
	DeleteCommentsByContent(ctx context.Context, contentID uuid.UUID) error
	DeleteCommentsByUser(ctx context.Context, userID uuid.UUID) error
}
