package contentshield

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// service implements the Service interface
type service struct {
	repository Repository
	blobStore  BlobStore
	logger     *slog.Logger
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithBlobStore sets the blob storage backend for the service
func WithBlobStore(store BlobStore) Option {
	return func(s *service) {
		s.blobStore = store
	}
}

// WithLogger sets the logger for the service
func WithLogger(logger *slog.Logger) Option {
	return func(s *service) {
		s.logger = logger
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}
	if s.blobStore == nil {
		return nil, fmt.Errorf("blob store is required")
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	return s, nil
}

// User operations

func (s *service) RegisterUser(ctx context.Context, req RegisterUserRequest) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" {
		return nil, fmt.Errorf("email is required")
	}
	if len(req.Password) < 6 {
		return nil, fmt.Errorf("password must be at least 6 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}

	user := &User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.repository.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *service) AuthenticateUser(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repository.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repository.GetUser(ctx, id)
}

func (s *service) ListUsers(ctx context.Context) ([]*User, error) {
	return s.repository.ListUsers(ctx)
}

// DeleteUser removes a user and everything they own. Admin only; admin
// accounts themselves are not deletable. Dependents are removed in dependency
// order: each owned content via the full content cascade, then the user's own
// requests, comments and likes, then the user row.
func (s *service) DeleteUser(ctx context.Context, actor *User, id uuid.UUID) error {
	if actor == nil || !actor.IsAdmin() {
		return ErrPermissionDenied
	}

	user, err := s.repository.GetUser(ctx, id)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return fmt.Errorf("delete user %s: %w", id, ErrPermissionDenied)
	}

	owned, err := s.repository.ListContentByOwner(ctx, id)
	if err != nil {
		return err
	}
	for _, c := range owned {
		if err := s.DeleteContent(ctx, actor, c.ID); err != nil {
			return fmt.Errorf("cascade delete content %s: %w", c.ID, err)
		}
	}

	// The user's likes and comments on other people's content back the
	// denormalized counters there; tally them before removing the rows so the
	// surviving items can be decremented.
	likeCounts, commentCounts, err := s.countSocialByUser(ctx, id)
	if err != nil {
		return err
	}

	if err := s.repository.DeleteLicenseRequestsByRequester(ctx, id); err != nil {
		return err
	}
	if err := s.repository.DeleteDeleteRequestsByUser(ctx, id); err != nil {
		return err
	}
	if err := s.repository.DeleteCommentsByUser(ctx, id); err != nil {
		return err
	}
	if err := s.repository.DeleteLikesByUser(ctx, id); err != nil {
		return err
	}

	if err := s.decrementSocialCounters(ctx, likeCounts, commentCounts); err != nil {
		return err
	}

	return s.repository.DeleteUser(ctx, id)
}

// countSocialByUser tallies the user's likes and comments per content item.
func (s *service) countSocialByUser(ctx context.Context, userID uuid.UUID) (map[uuid.UUID]int, map[uuid.UUID]int, error) {
	likes, err := s.repository.ListLikesByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	comments, err := s.repository.ListCommentsByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	likeCounts := make(map[uuid.UUID]int, len(likes))
	for _, like := range likes {
		likeCounts[like.ContentID]++
	}
	commentCounts := make(map[uuid.UUID]int, len(comments))
	for _, comment := range comments {
		commentCounts[comment.ContentID]++
	}
	return likeCounts, commentCounts, nil
}

// decrementSocialCounters applies counter deltas to the contents that still
// exist. Contents removed by an earlier cascade step are skipped.
func (s *service) decrementSocialCounters(ctx context.Context, likeCounts, commentCounts map[uuid.UUID]int) error {
	contentIDs := make(map[uuid.UUID]struct{}, len(likeCounts)+len(commentCounts))
	for id := range likeCounts {
		contentIDs[id] = struct{}{}
	}
	for id := range commentCounts {
		contentIDs[id] = struct{}{}
	}

	for contentID := range contentIDs {
		content, err := s.repository.GetContent(ctx, contentID)
		if errors.Is(err, ErrContentNotFound) {
			continue
		}
		if err != nil {
			return err
		}

		content.LikeCount -= likeCounts[contentID]
		if content.LikeCount < 0 {
			content.LikeCount = 0
		}
		content.CommentCount -= commentCounts[contentID]
		if content.CommentCount < 0 {
			content.CommentCount = 0
		}
		content.UpdatedAt = time.Now().UTC()

		if err := s.repository.UpdateContent(ctx, content); err != nil {
			return err
		}
	}
	return nil
}

// Content identity operations

// RegisterContent fingerprints the upload, rejects byte-identical duplicates,
// stores the blob under the content-addressed key and creates the content row.
// When a concurrent registration of identical bytes wins the insert race, the
// just-written blob is removed so no orphan is left behind.
func (s *service) RegisterContent(ctx context.Context, req RegisterContentRequest) (*Content, error) {
	if req.Reader == nil {
		return nil, fmt.Errorf("content payload is required")
	}
	if req.Title == "" {
		return nil, fmt.Errorf("title is required")
	}
	if !KnownLicenseType(req.LicenseType) {
		return nil, fmt.Errorf("license type %q: %w", req.LicenseType, ErrInvalidLicenseType)
	}

	// Fingerprinting consumes the reader; buffer so the same bytes can be
	// uploaded afterwards.
	data, err := io.ReadAll(req.Reader)
	if err != nil {
		return nil, fmt.Errorf("read content payload: %w", err)
	}
	fingerprint := FingerprintBytes(data)

	if _, err := s.repository.GetContentByFingerprint(ctx, fingerprint); err == nil {
		return nil, fmt.Errorf("fingerprint %s: %w", fingerprint, ErrDuplicateContent)
	} else if !errors.Is(err, ErrContentNotFound) {
		return nil, err
	}

	objectKey := ObjectKeyFor(fingerprint, req.FileName)
	if err := s.blobStore.Upload(ctx, objectKey, bytes.NewReader(data)); err != nil {
		return nil, &StorageError{Key: objectKey, Op: "upload", Err: err}
	}

	var price *int64
	if req.LicenseType == LicensePaid {
		price = req.Price
		if price == nil {
			p := defaultPriceMinorUnits
			price = &p
		}
	}

	now := time.Now().UTC()
	content := &Content{
		ID:            uuid.New(),
		OwnerID:       req.OwnerID,
		Title:         req.Title,
		Description:   req.Description,
		LicenseType:   req.LicenseType,
		AllowDownload: req.AllowDownload,
		Fingerprint:   fingerprint,
		ObjectKey:     objectKey,
		FileName:      req.FileName,
		MimeType:      req.MimeType,
		SizeBytes:     int64(len(data)),
		Price:         price,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := s.repository.CreateContent(ctx, content); err != nil {
		if errors.Is(err, ErrDuplicateContent) {
			// Lost the race against an identical upload. The winner's row
			// references the same key only if the extensions match, so only
			// drop the blob when no surviving row claims it.
			if winner, werr := s.repository.GetContentByFingerprint(ctx, fingerprint); werr != nil || winner.ObjectKey != objectKey {
				if derr := s.blobStore.Delete(ctx, objectKey); derr != nil {
					s.logger.Warn("failed to clean up duplicate blob", "object_key", objectKey, "err", derr)
				}
			}
			return nil, fmt.Errorf("fingerprint %s: %w", fingerprint, ErrDuplicateContent)
		}
		if derr := s.blobStore.Delete(ctx, objectKey); derr != nil {
			s.logger.Warn("failed to clean up blob after insert failure", "object_key", objectKey, "err", derr)
		}
		return nil, &ContentError{ContentID: content.ID, Op: "register", Err: err}
	}

	s.logger.Info("content registered", "content_id", content.ID, "fingerprint", fingerprint, "size_bytes", content.SizeBytes)
	return content, nil
}

// defaultPriceMinorUnits applies when paid content is registered without an
// explicit price ($5.99, matching the platform default).
const defaultPriceMinorUnits int64 = 599

func (s *service) GetContent(ctx context.Context, id uuid.UUID) (*Content, error) {
	return s.repository.GetContent(ctx, id)
}

func (s *service) ListContent(ctx context.Context) ([]*Content, error) {
	return s.repository.ListContent(ctx)
}

func (s *service) ListContentByOwner(ctx context.Context, ownerID uuid.UUID) ([]*Content, error) {
	return s.repository.ListContentByOwner(ctx, ownerID)
}

func (s *service) ListTrendingContent(ctx context.Context, limit int) ([]*Content, error) {
	if limit <= 0 {
		limit = 3
	}
	return s.repository.ListTrendingContent(ctx, limit)
}

// DeleteContent removes a content item and its dependents. Actor must be the
// owner or an admin. Dependents go first (license requests, delete requests,
// comments, likes), then the blob, then the content row.
func (s *service) DeleteContent(ctx context.Context, actor *User, id uuid.UUID) error {
	if actor == nil {
		return ErrPermissionDenied
	}

	content, err := s.repository.GetContent(ctx, id)
	if err != nil {
		return err
	}
	if content.OwnerID != actor.ID && !actor.IsAdmin() {
		return fmt.Errorf("delete content %s: %w", id, ErrPermissionDenied)
	}

	if err := s.repository.DeleteLicenseRequestsByContent(ctx, id); err != nil {
		return &ContentError{ContentID: id, Op: "delete_license_requests", Err: err}
	}
	if err := s.repository.DeleteDeleteRequestsByContent(ctx, id); err != nil {
		return &ContentError{ContentID: id, Op: "delete_delete_requests", Err: err}
	}
	if err := s.repository.DeleteCommentsByContent(ctx, id); err != nil {
		return &ContentError{ContentID: id, Op: "delete_comments", Err: err}
	}
	if err := s.repository.DeleteLikesByContent(ctx, id); err != nil {
		return &ContentError{ContentID: id, Op: "delete_likes", Err: err}
	}

	if err := s.blobStore.Delete(ctx, content.ObjectKey); err != nil {
		// The row must not outlive a failed blob delete silently; log and
		// continue so repeated deletes converge.
		s.logger.Warn("failed to delete blob", "object_key", content.ObjectKey, "err", err)
	}

	if err := s.repository.DeleteContent(ctx, id); err != nil {
		return &ContentError{ContentID: id, Op: "delete", Err: err}
	}

	s.logger.Info("content deleted", "content_id", id, "actor_id", actor.ID)
	return nil
}

// Content consumption

// OpenContent streams the content bytes for viewing, gated by CanAccess.
func (s *service) OpenContent(ctx context.Context, user *User, contentID uuid.UUID) (io.ReadCloser, *Content, error) {
	content, err := s.repository.GetContent(ctx, contentID)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.CanAccess(ctx, user, content)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("open content %s: %w", contentID, ErrPermissionDenied)
	}

	rc, err := s.blobStore.Download(ctx, content.ObjectKey)
	if err != nil {
		return nil, nil, &StorageError{Key: content.ObjectKey, Op: "download", Err: err}
	}
	return rc, content, nil
}

// DownloadContent streams the content bytes for download, gated by CanDownload.
func (s *service) DownloadContent(ctx context.Context, user *User, contentID uuid.UUID) (io.ReadCloser, *Content, error) {
	content, err := s.repository.GetContent(ctx, contentID)
	if err != nil {
		return nil, nil, err
	}

	ok, err := s.CanDownload(ctx, user, content)
	if err != nil {
		return nil, nil, err
	}
	if !ok {
		return nil, nil, fmt.Errorf("download content %s: %w", contentID, ErrPermissionDenied)
	}

	rc, err := s.blobStore.Download(ctx, content.ObjectKey)
	if err != nil {
		return nil, nil, &StorageError{Key: content.ObjectKey, Op: "download", Err: err}
	}
	return rc, content, nil
}

func (s *service) GetDownloadURL(ctx context.Context, user *User, contentID uuid.UUID) (string, error) {
	content, err := s.repository.GetContent(ctx, contentID)
	if err != nil {
		return "", err
	}

	ok, err := s.CanDownload(ctx, user, content)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("download url for content %s: %w", contentID, ErrPermissionDenied)
	}

	return s.blobStore.GetDownloadURL(ctx, content.ObjectKey, content.FileName)
}

// License request lifecycle

func (s *service) RequestLicense(ctx context.Context, req RequestLicenseRequest) (*LicenseRequest, error) {
	content, err := s.repository.GetContent(ctx, req.ContentID)
	if err != nil {
		return nil, err
	}
	if content.OwnerID == req.RequesterID {
		return nil, fmt.Errorf("request license for own content: %w", ErrPermissionDenied)
	}

	if _, err := s.repository.GetPendingLicenseRequest(ctx, req.ContentID, req.RequesterID); err == nil {
		return nil, ErrPendingRequestExists
	} else if !errors.Is(err, ErrGrantNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	lr := &LicenseRequest{
		ID:          uuid.New(),
		ContentID:   req.ContentID,
		RequesterID: req.RequesterID,
		OwnerID:     content.OwnerID,
		Status:      RequestStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repository.CreateLicenseRequest(ctx, lr); err != nil {
		return nil, &GrantError{RequestID: lr.ID, Op: "create", Err: err}
	}

	return lr, nil
}

// ResolveLicenseRequest transitions a pending request to approved or rejected.
// Only the content owner may transition; terminal requests are immutable.
func (s *service) ResolveLicenseRequest(ctx context.Context, req ResolveLicenseRequestRequest) (*LicenseRequest, error) {
	if req.Actor == nil {
		return nil, ErrPermissionDenied
	}

	lr, err := s.repository.GetLicenseRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if lr.OwnerID != req.Actor.ID {
		return nil, fmt.Errorf("resolve request %s: %w", req.RequestID, ErrPermissionDenied)
	}
	if lr.Status.Terminal() {
		return nil, fmt.Errorf("request %s already %s: %w", req.RequestID, lr.Status, ErrInvalidStateTransition)
	}

	if req.Approve {
		lr.Status = RequestStatusApproved
	} else {
		lr.Status = RequestStatusRejected
	}
	lr.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateLicenseRequest(ctx, lr); err != nil {
		return nil, &GrantError{RequestID: lr.ID, Op: "resolve", Err: err}
	}

	s.logger.Info("license request resolved", "request_id", lr.ID, "status", lr.Status)
	return lr, nil
}

func (s *service) ListLicenseRequestsSent(ctx context.Context, requesterID uuid.UUID) ([]*LicenseRequest, error) {
	return s.repository.ListLicenseRequestsByRequester(ctx, requesterID)
}

func (s *service) ListLicenseRequestsReceived(ctx context.Context, ownerID uuid.UUID) ([]*LicenseRequest, error) {
	return s.repository.ListLicenseRequestsByOwner(ctx, ownerID)
}

// Delete request lifecycle

func (s *service) RequestDeletion(ctx context.Context, req RequestDeletionRequest) (*DeleteRequest, error) {
	if _, err := s.repository.GetContent(ctx, req.ContentID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	dr := &DeleteRequest{
		ID:        uuid.New(),
		ContentID: req.ContentID,
		UserID:    req.UserID,
		Reason:    req.Reason,
		Status:    RequestStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repository.CreateDeleteRequest(ctx, dr); err != nil {
		return nil, &GrantError{RequestID: dr.ID, Op: "create", Err: err}
	}

	return dr, nil
}

// ResolveDeleteRequest is admin only; approving deletes the content with the
// full cascade.
func (s *service) ResolveDeleteRequest(ctx context.Context, req ResolveDeleteRequestRequest) (*DeleteRequest, error) {
	if req.Actor == nil || !req.Actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}

	dr, err := s.repository.GetDeleteRequest(ctx, req.RequestID)
	if err != nil {
		return nil, err
	}
	if dr.Status.Terminal() {
		return nil, fmt.Errorf("request %s already %s: %w", req.RequestID, dr.Status, ErrInvalidStateTransition)
	}

	if req.Approve {
		dr.Status = RequestStatusApproved
	} else {
		dr.Status = RequestStatusRejected
	}
	dr.UpdatedAt = time.Now().UTC()

	if err := s.repository.UpdateDeleteRequest(ctx, dr); err != nil {
		return nil, &GrantError{RequestID: dr.ID, Op: "resolve", Err: err}
	}

	if req.Approve {
		// The cascade removes the delete request rows for this content too.
		if err := s.DeleteContent(ctx, req.Actor, dr.ContentID); err != nil && !errors.Is(err, ErrContentNotFound) {
			return nil, err
		}
	}

	return dr, nil
}

func (s *service) ListDeleteRequests(ctx context.Context, actor *User) ([]*DeleteRequest, error) {
	if actor == nil || !actor.IsAdmin() {
		return nil, ErrPermissionDenied
	}
	return s.repository.ListDeleteRequests(ctx)
}

// Social operations

func (s *service) LikeContent(ctx context.Context, contentID, userID uuid.UUID) error {
	content, err := s.repository.GetContent(ctx, contentID)
	if err != nil {
		return err
	}

	like := &Like{
		ID:        uuid.New(),
		ContentID: contentID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repository.CreateLike(ctx, like); err != nil {
		return err
	}

	content.LikeCount++
	content.UpdatedAt = time.Now().UTC()
	return s.repository.UpdateContent(ctx, content)
}

func (s *service) UnlikeContent(ctx context.Context, contentID, userID uuid.UUID) error {
	content, err := s.repository.GetContent(ctx, contentID)
	if err != nil {
		return err
	}

	if err := s.repository.DeleteLike(ctx, contentID, userID); err != nil {
		return err
	}

	if content.LikeCount > 0 {
		content.LikeCount--
	}
	content.UpdatedAt = time.Now().UTC()
	return s.repository.UpdateContent(ctx, content)
}

func (s *service) AddComment(ctx context.Context, req AddCommentRequest) (*Comment, error) {
	if strings.TrimSpace(req.Body) == "" {
		return nil, fmt.Errorf("comment body is required")
	}

	content, err := s.repository.GetContent(ctx, req.ContentID)
	if err != nil {
		return nil, err
	}

	comment := &Comment{
		ID:        uuid.New(),
		ContentID: req.ContentID,
		UserID:    req.UserID,
		Body:      req.Body,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repository.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	content.CommentCount++
	content.UpdatedAt = time.Now().UTC()
	if err := s.repository.UpdateContent(ctx, content); err != nil {
		return nil, err
	}

	return comment, nil
}

func (s *service) ListComments(ctx context.Context, contentID uuid.UUID) ([]*Comment, error) {
	return s.repository.ListCommentsByContent(ctx, contentID)
}
