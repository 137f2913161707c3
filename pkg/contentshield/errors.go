package contentshield

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Error types
var (
	// ErrDuplicateContent indicates an attempted re-registration of byte-identical content
	ErrDuplicateContent = errors.New("duplicate content")

	// ErrContentNotFound indicates a content item was not found
	ErrContentNotFound = errors.New("content not found")

	// ErrUserNotFound indicates a user was not found
	ErrUserNotFound = errors.New("user not found")

	// ErrGrantNotFound indicates a license or delete request was not found
	ErrGrantNotFound = errors.New("request not found")

	// ErrInvalidStateTransition indicates an attempt to resolve an already-terminal request
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrPermissionDenied indicates the actor lacks rights for the requested mutation
	ErrPermissionDenied = errors.New("permission denied")

	// ErrPendingRequestExists indicates a pending request already exists for the pair
	ErrPendingRequestExists = errors.New("pending request already exists")

	// ErrEmailTaken indicates the email is already registered
	ErrEmailTaken = errors.New("email already registered")

	// ErrAlreadyLiked indicates the user already liked the content
	ErrAlreadyLiked = errors.New("content already liked")

	// ErrInvalidLicenseType indicates an unrecognized license type on registration
	ErrInvalidLicenseType = errors.New("invalid license type")

	// ErrInvalidCredentials indicates an authentication failure
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ContentError represents an error related to content operations
type ContentError struct {
	ContentID uuid.UUID
	Op        string
	Err       error
}

func (e *ContentError) Error() string {
	return fmt.Sprintf("content operation %s failed for content %s: %v", e.Op, e.ContentID, e.Err)
}

func (e *ContentError) Unwrap() error {
	return e.Err
}

// GrantError represents an error related to license or delete request operations
type GrantError struct {
	RequestID uuid.UUID
	Op        string
	Err       error
}

func (e *GrantError) Error() string {
	return fmt.Sprintf("grant operation %s failed for request %s: %v", e.Op, e.RequestID, e.Err)
}

func (e *GrantError) Unwrap() error {
	return e.Err
}

// StorageError represents an error related to blob storage operations
type StorageError struct {
	Key string
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage operation %s failed for key %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
