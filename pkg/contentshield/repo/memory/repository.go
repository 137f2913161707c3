package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/contentshield/contentshield/pkg/contentshield"
)

// Repository implements contentshield.Repository using in-memory storage.
// Fingerprint and email uniqueness are enforced under the write lock, so a
// losing concurrent CreateContent observes ErrDuplicateContent exactly like
// it would against the postgres unique constraint.
type Repository struct {
	mu                 sync.RWMutex
	users              map[uuid.UUID]*contentshield.User
	usersByEmail       map[string]uuid.UUID
	contents           map[uuid.UUID]*contentshield.Content
	contentsByPrint    map[string]uuid.UUID // fingerprint -> content_id
	licenseRequests    map[uuid.UUID]*contentshield.LicenseRequest
	deleteRequests     map[uuid.UUID]*contentshield.DeleteRequest
	comments           map[uuid.UUID]*contentshield.Comment
	likes              map[uuid.UUID]*contentshield.Like
	likesByContentUser map[likeKey]uuid.UUID
}

type likeKey struct {
	contentID uuid.UUID
	userID    uuid.UUID
}

// New creates a new in-memory repository
func New() contentshield.Repository {
	return &Repository{
		users:              make(map[uuid.UUID]*contentshield.User),
		usersByEmail:       make(map[string]uuid.UUID),
		contents:           make(map[uuid.UUID]*contentshield.Content),
		contentsByPrint:    make(map[string]uuid.UUID),
		licenseRequests:    make(map[uuid.UUID]*contentshield.LicenseRequest),
		deleteRequests:     make(map[uuid.UUID]*contentshield.DeleteRequest),
		comments:           make(map[uuid.UUID]*contentshield.Comment),
		likes:              make(map[uuid.UUID]*contentshield.Like),
		likesByContentUser: make(map[likeKey]uuid.UUID),
	}
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *contentshield.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.usersByEmail[user.Email]; exists {
		return contentshield.ErrEmailTaken
	}

	userCopy := *user
	r.users[user.ID] = &userCopy
	r.usersByEmail[user.Email] = user.ID

	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*contentshield.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, exists := r.users[id]
	if !exists {
		return nil, contentshield.ErrUserNotFound
	}
	userCopy := *user
	return &userCopy, nil
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*contentshield.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.usersByEmail[email]
	if !exists {
		return nil, contentshield.ErrUserNotFound
	}
	userCopy := *r.users[id]
	return &userCopy, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]*contentshield.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*contentshield.User, 0, len(r.users))
	for _, user := range r.users {
		userCopy := *user
		result = append(result, &userCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, exists := r.users[id]
	if !exists {
		return contentshield.ErrUserNotFound
	}
	delete(r.usersByEmail, user.Email)
	delete(r.users, id)
	return nil
}

// Content operations

func (r *Repository) CreateContent(ctx context.Context, content *contentshield.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contentsByPrint[content.Fingerprint]; exists {
		return contentshield.ErrDuplicateContent
	}

	contentCopy := *content
	r.contents[content.ID] = &contentCopy
	r.contentsByPrint[content.Fingerprint] = content.ID

	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*contentshield.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	content, exists := r.contents[id]
	if !exists {
		return nil, contentshield.ErrContentNotFound
	}
	contentCopy := *content
	return &contentCopy, nil
}

func (r *Repository) GetContentByFingerprint(ctx context.Context, fingerprint string) (*contentshield.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, exists := r.contentsByPrint[fingerprint]
	if !exists {
		return nil, contentshield.ErrContentNotFound
	}
	contentCopy := *r.contents[id]
	return &contentCopy, nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *contentshield.Content) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.contents[content.ID]; !exists {
		return contentshield.ErrContentNotFound
	}

	contentCopy := *content
	r.contents[content.ID] = &contentCopy

	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	content, exists := r.contents[id]
	if !exists {
		return contentshield.ErrContentNotFound
	}
	delete(r.contentsByPrint, content.Fingerprint)
	delete(r.contents, id)
	return nil
}

func (r *Repository) ListContent(ctx context.Context) ([]*contentshield.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*contentshield.Content, 0, len(r.contents))
	for _, content := range r.contents {
		contentCopy := *content
		result = append(result, &contentCopy)
	}

	// Sort by created_at descending
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) ListContentByOwner(ctx context.Context, ownerID uuid.UUID) ([]*contentshield.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*contentshield.Content
	for _, content := range r.contents {
		if content.OwnerID == ownerID {
			contentCopy := *content
			result = append(result, &contentCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

func (r *Repository) ListTrendingContent(ctx context.Context, limit int) ([]*contentshield.Content, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*contentshield.Content, 0, len(r.contents))
	for _, content := range r.contents {
		contentCopy := *content
		result = append(result, &contentCopy)
	}

	// Sort by like count descending, newest first as tiebreaker
	sort.Slice(result, func(i, j int) bool {
		if result[i].LikeCount != result[j].LikeCount {
			return result[i].LikeCount > result[j].LikeCount
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	if limit > 0 && limit < len(result) {
		result = result[:limit]
	}
	return result, nil
}

// License request operations

func (r *Repository) CreateLicenseRequest(ctx context.Context, req *contentshield.LicenseRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.licenseRequests {
		if existing.ContentID == req.ContentID &&
			existing.RequesterID == req.RequesterID &&
			existing.Status == contentshield.RequestStatusPending {
			return contentshield.ErrPendingRequestExists
		}
	}

	reqCopy := *req
	r.licenseRequests[req.ID] = &reqCopy
	return nil
}

func (r *Repository) GetLicenseRequest(ctx context.Context, id uuid.UUID) (*contentshield.LicenseRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, exists := r.licenseRequests[id]
	if !exists {
		return nil, contentshield.ErrGrantNotFound
	}
	reqCopy := *req
	return &reqCopy, nil
}

func (r *Repository) GetPendingLicenseRequest(ctx context.Context, contentID, requesterID uuid.UUID) (*contentshield.LicenseRequest, error) {
	return r.findLicenseRequest(contentID, requesterID, contentshield.RequestStatusPending)
}

func (r *Repository) GetApprovedLicenseRequest(ctx context.Context, contentID, requesterID uuid.UUID) (*contentshield.LicenseRequest, error) {
	return r.findLicenseRequest(contentID, requesterID, contentshield.RequestStatusApproved)
}

func (r *Repository) findLicenseRequest(contentID, requesterID uuid.UUID, status contentshield.RequestStatus) (*contentshield.LicenseRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, req := range r.licenseRequests {
		if req.ContentID == contentID && req.RequesterID == requesterID && req.Status == status {
			reqCopy := *req
			return &reqCopy, nil
		}
	}
	return nil, contentshield.ErrGrantNotFound
}

func (r *Repository) UpdateLicenseRequest(ctx context.Context, req *contentshield.LicenseRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.licenseRequests[req.ID]; !exists {
		return contentshield.ErrGrantNotFound
	}
	reqCopy := *req
	r.licenseRequests[req.ID] = &reqCopy
	return nil
}

func (r *Repository) ListLicenseRequestsByRequester(ctx context.Context, requesterID uuid.UUID) ([]*contentshield.LicenseRequest, error) {
	return r.listLicenseRequests(func(req *contentshield.LicenseRequest) bool {
		return req.RequesterID == requesterID
	})
}

func (r *Repository) ListLicenseRequestsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*contentshield.LicenseRequest, error) {
	return r.listLicenseRequests(func(req *contentshield.LicenseRequest) bool {
		return req.OwnerID == ownerID
	})
}

func (r *Repository) listLicenseRequests(match func(*contentshield.LicenseRequest) bool) ([]*contentshield.LicenseRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*contentshield.LicenseRequest
	for _, req := range r.licenseRequests {
		if match(req) {
			reqCopy := *req
			result = append(result, &reqCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) DeleteLicenseRequestsByContent(ctx context.Context, contentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, req := range r.licenseRequests {
		if req.ContentID == contentID {
			delete(r.licenseRequests, id)
		}
	}
	return nil
}

func (r *Repository) DeleteLicenseRequestsByRequester(ctx context.Context, requesterID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, req := range r.licenseRequests {
		if req.RequesterID == requesterID {
			delete(r.licenseRequests, id)
		}
	}
	return nil
}

// Delete request operations

func (r *Repository) CreateDeleteRequest(ctx context.Context, req *contentshield.DeleteRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reqCopy := *req
	r.deleteRequests[req.ID] = &reqCopy
	return nil
}

func (r *Repository) GetDeleteRequest(ctx context.Context, id uuid.UUID) (*contentshield.DeleteRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	req, exists := r.deleteRequests[id]
	if !exists {
		return nil, contentshield.ErrGrantNotFound
	}
	reqCopy := *req
	return &reqCopy, nil
}

func (r *Repository) UpdateDeleteRequest(ctx context.Context, req *contentshield.DeleteRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.deleteRequests[req.ID]; !exists {
		return contentshield.ErrGrantNotFound
	}
	reqCopy := *req
	r.deleteRequests[req.ID] = &reqCopy
	return nil
}

func (r *Repository) ListDeleteRequests(ctx context.Context) ([]*contentshield.DeleteRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*contentshield.DeleteRequest, 0, len(r.deleteRequests))
	for _, req := range r.deleteRequests {
		reqCopy := *req
		result = append(result, &reqCopy)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) DeleteDeleteRequestsByContent(ctx context.Context, contentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, req := range r.deleteRequests {
		if req.ContentID == contentID {
			delete(r.deleteRequests, id)
		}
	}
	return nil
}

func (r *Repository) DeleteDeleteRequestsByUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, req := range r.deleteRequests {
		if req.UserID == userID {
			delete(r.deleteRequests, id)
		}
	}
	return nil
}

// Like operations

func (r *Repository) CreateLike(ctx context.Context, like *contentshield.Like) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := likeKey{contentID: like.ContentID, userID: like.UserID}
	if _, exists := r.likesByContentUser[key]; exists {
		return contentshield.ErrAlreadyLiked
	}

	likeCopy := *like
	r.likes[like.ID] = &likeCopy
	r.likesByContentUser[key] = like.ID
	return nil
}

func (r *Repository) DeleteLike(ctx context.Context, contentID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := likeKey{contentID: contentID, userID: userID}
	id, exists := r.likesByContentUser[key]
	if !exists {
		return contentshield.ErrGrantNotFound
	}
	delete(r.likes, id)
	delete(r.likesByContentUser, key)
	return nil
}

func (r *Repository) ListLikesByUser(ctx context.Context, userID uuid.UUID) ([]*contentshield.Like, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*contentshield.Like
	for _, like := range r.likes {
		if like.UserID == userID {
			likeCopy := *like
			result = append(result, &likeCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) DeleteLikesByContent(ctx context.Context, contentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, like := range r.likes {
		if like.ContentID == contentID {
			delete(r.likesByContentUser, likeKey{contentID: like.ContentID, userID: like.UserID})
			delete(r.likes, id)
		}
	}
	return nil
}

func (r *Repository) DeleteLikesByUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, like := range r.likes {
		if like.UserID == userID {
			delete(r.likesByContentUser, likeKey{contentID: like.ContentID, userID: like.UserID})
			delete(r.likes, id)
		}
	}
	return nil
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *contentshield.Comment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	commentCopy := *comment
	r.comments[comment.ID] = &commentCopy
	return nil
}

func (r *Repository) ListCommentsByContent(ctx context.Context, contentID uuid.UUID) ([]*contentshield.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*contentshield.Comment
	for _, comment := range r.comments {
		if comment.ContentID == contentID {
			commentCopy := *comment
			result = append(result, &commentCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) ListCommentsByUser(ctx context.Context, userID uuid.UUID) ([]*contentshield.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*contentshield.Comment
	for _, comment := range r.comments {
		if comment.UserID == userID {
			commentCopy := *comment
			result = append(result, &commentCopy)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}

func (r *Repository) DeleteCommentsByContent(ctx context.Context, contentID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, comment := range r.comments {
		if comment.ContentID == contentID {
			delete(r.comments, id)
		}
	}
	return nil
}

func (r *Repository) DeleteCommentsByUser(ctx context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, comment := range r.comments {
		if comment.UserID == userID {
			delete(r.comments, id)
		}
	}
	return nil
}
