package contentshield

import (
	"time"

	"github.com/google/uuid"
)

// Role is the domain type for user roles.
type Role string

// Role constants (typed).
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// LicenseType is the policy tag controlling default visibility of a content item.
type LicenseType string

// License type constants (typed).
const (
	LicenseFree       LicenseType = "free"
	LicensePaid       LicenseType = "paid"
	LicensePermission LicenseType = "permission"
	LicenseNone       LicenseType = "none"
)

// KnownLicenseType reports whether t is one of the recognized license types.
// The access resolver fails closed for anything else.
func KnownLicenseType(t LicenseType) bool {
	switch t {
	case LicenseFree, LicensePaid, LicensePermission, LicenseNone:
		return true
	}
	return false
}

// RequestStatus is the domain type for license and delete request lifecycle states.
type RequestStatus string

// Request status constants (typed). Approved and rejected are terminal.
const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Terminal reports whether s is a terminal request status.
func (s RequestStatus) Terminal() bool {
	return s == RequestStatusApproved || s == RequestStatusRejected
}

// User represents a platform account. Passwords are stored as bcrypt hashes and
// never leave the repository layer in responses.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	AvatarURL    string    `json:"avatar_url,omitempty"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Content represents a shared content item. Fingerprint is the SHA-256 hex digest
// of the uploaded bytes and is unique across all content items; it doubles as the
// storage key prefix. License fields are immutable after creation.
type Content struct {
	ID            uuid.UUID   `json:"id"`
	OwnerID       uuid.UUID   `json:"owner_id"`
	Title         string      `json:"title"`
	Description   string      `json:"description,omitempty"`
	LicenseType   LicenseType `json:"license_type"`
	AllowDownload bool        `json:"allow_download"`
	Fingerprint   string      `json:"fingerprint"`
	ObjectKey     string      `json:"object_key"`
	FileName      string      `json:"file_name,omitempty"`
	MimeType      string      `json:"mime_type,omitempty"`
	SizeBytes     int64       `json:"size_bytes,omitempty"`
	Price         *int64      `json:"price,omitempty"` // minor currency units, paid content only
	LikeCount     int         `json:"like_count"`
	CommentCount  int         `json:"comment_count"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// AnnotatedContent is a content item together with the caller's resolved access.
// Plain data; produced by Service.AnnotateAccess for feed rendering.
type AnnotatedContent struct {
	Content
	HasAccess bool `json:"user_has_access"`
}

// LicenseRequest is a grant record mediating non-owner access to permission- or
// paid-licensed content. At most one pending request exists per
// (content, requester) pair; approved and rejected requests are immutable.
type LicenseRequest struct {
	ID          uuid.UUID     `json:"id"`
	ContentID   uuid.UUID     `json:"content_id"`
	RequesterID uuid.UUID     `json:"requester_id"`
	OwnerID     uuid.UUID     `json:"owner_id"`
	Status      RequestStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// DeleteRequest asks an admin to remove a content item.
type DeleteRequest struct {
	ID        uuid.UUID     `json:"id"`
	ContentID uuid.UUID     `json:"content_id"`
	UserID    uuid.UUID     `json:"user_id"`
	Reason    string        `json:"reason,omitempty"`
	Status    RequestStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Comment is a user comment on a content item.
type Comment struct {
	ID        uuid.UUID `json:"id"`
	ContentID uuid.UUID `json:"content_id"`
	UserID    uuid.UUID `json:"user_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

// Like records a user liking a content item. One per (content, user) pair.
type Like struct {
	ID        uuid.UUID `json:"id"`
	ContentID uuid.UUID `json:"content_id"`
	UserID    uuid.UUID `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
