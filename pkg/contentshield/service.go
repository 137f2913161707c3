package contentshield

import (
	"context"
	"io"

	"github.com/google/uuid"
)

// Service defines the main interface for the contentshield library
type Service interface {
	// User operations
	RegisterUser(ctx context.Context, req RegisterUserRequest) (*User, error)
	AuthenticateUser(ctx context.Context, email, password string) (*User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	DeleteUser(ctx context.Context, actor *User, id uuid.UUID) error

	// Content identity operations
	RegisterContent(ctx context.Context, req RegisterContentRequest) (*Content, error)
	GetContent(ctx context.Context, id uuid.UUID) (*Content, error)
	ListContent(ctx context.Context) ([]*Content, error)
	ListContentByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Content, error)
	ListTrendingContent(ctx context.Context, limit int) ([]*Content, error)
	DeleteContent(ctx context.Context, actor *User, id uuid.UUID) error

	// Access resolution
	CanAccess(ctx context.Context, user *User, content *Content) (bool, error)
	CanDownload(ctx context.Context, user *User, content *Content) (bool, error)
	AnnotateAccess(ctx context.Context, user *User, contents []*Content) ([]AnnotatedContent, error)

	// Content consumption (gated by the access resolver)
	OpenContent(ctx context.Context, user *User, contentID uuid.UUID) (io.ReadCloser, *Content, error)
	DownloadContent(ctx context.Context, user *User, contentID uuid.UUID) (io.ReadCloser, *Content, error)
	GetDownloadURL(ctx context.Context, user *User, contentID uuid.UUID) (string, error)

	// License request lifecycle
	RequestLicense(ctx context.Context, req RequestLicenseRequest) (*LicenseRequest, error)
	ResolveLicenseRequest(ctx context.Context, req ResolveLicenseRequestRequest) (*LicenseRequest, error)
	ListLicenseRequestsSent(ctx context.Context, requesterID uuid.UUID) ([]*LicenseRequest, error)
	ListLicenseRequestsReceived(ctx context.Context, ownerID uuid.UUID) ([]*LicenseRequest, error)

	// Delete request lifecycle
	RequestDeletion(ctx context.Context, req RequestDeletionRequest) (*DeleteRequest, error)
	ResolveDeleteRequest(ctx context.Context, req ResolveDeleteRequestRequest) (*DeleteRequest, error)
	ListDeleteRequests(ctx context.Context, actor *User) ([]*DeleteRequest, error)

	// Social operations
	LikeContent(ctx context.Context, contentID, userID uuid.UUID) error
	UnlikeContent(ctx context.Context, contentID, userID uuid.UUID) error
	AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error)
	ListComments(ctx context.Context, contentID uuid.UUID) ([]*Comment, error)
}
