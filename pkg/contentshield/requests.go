package contentshield

import (
	"io"

	"github.com/google/uuid"
)

// RegisterUserRequest contains parameters for registering a user
type RegisterUserRequest struct {
	Email    string
	Password string
	Role     Role // defaults to RoleUser when empty
}

// RegisterContentRequest contains parameters for registering new content.
// Reader supplies the raw upload bytes; the service fingerprints them as-is.
type RegisterContentRequest struct {
	OwnerID       uuid.UUID
	Title         string
	Description   string
	LicenseType   LicenseType
	AllowDownload bool
	FileName      string
	MimeType      string
	Price         *int64 // required semantics only for paid content
	Reader        io.Reader
}

// RequestLicenseRequest contains parameters for filing a license request
type RequestLicenseRequest struct {
	ContentID   uuid.UUID
	RequesterID uuid.UUID
}

// ResolveLicenseRequestRequest contains parameters for approving or rejecting
// a pending license request. Actor must be the content owner.
type ResolveLicenseRequestRequest struct {
	RequestID uuid.UUID
	Actor     *User
	Approve   bool
}

// RequestDeletionRequest contains parameters for filing a content delete request
type RequestDeletionRequest struct {
	ContentID uuid.UUID
	UserID    uuid.UUID
	Reason    string
}

// ResolveDeleteRequestRequest contains parameters for resolving a delete request.
// Actor must be an admin; approval cascades into content deletion.
type ResolveDeleteRequestRequest struct {
	RequestID uuid.UUID
	Actor     *User
	Approve   bool
}

// AddCommentRequest contains parameters for commenting on a content item
type AddCommentRequest struct {
	ContentID uuid.UUID
	UserID    uuid.UUID
	Body      string
}
