package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/contentshield/contentshield/pkg/contentshield"
)

// DBTX is an interface that allows us to use either a database connection or a transaction
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// Repository implements contentshield.Repository using PostgreSQL. Fingerprint
// uniqueness is enforced by the content.fingerprint unique constraint: the
// loser of a concurrent registration race gets ErrDuplicateContent from the
// 23505 mapping below.
type Repository struct {
	db DBTX
}

// New creates a new PostgreSQL repository
func New(db DBTX) contentshield.Repository {
	return &Repository{db: db}
}

// NewWithPool creates a new PostgreSQL repository with connection pool
func NewWithPool(pool *pgxpool.Pool) contentshield.Repository {
	return &Repository{db: pool}
}

// handlePostgresError maps constraint violations onto domain errors.
func (r *Repository) handlePostgresError(operation string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			if strings.Contains(pgErr.ConstraintName, "fingerprint") {
				return contentshield.ErrDuplicateContent
			}
			if strings.Contains(pgErr.ConstraintName, "email") {
				return contentshield.ErrEmailTaken
			}
			if strings.Contains(pgErr.ConstraintName, "like") {
				return contentshield.ErrAlreadyLiked
			}
			return fmt.Errorf("duplicate entry in %s: %s", operation, pgErr.ConstraintName)
		case "23503": // foreign_key_violation
			return fmt.Errorf("referenced record not found in %s", operation)
		case "23502": // not_null_violation
			return fmt.Errorf("required field %s is missing", pgErr.ColumnName)
		case "42P01": // undefined_table
			return fmt.Errorf("table does not exist - database migration required")
		default:
			return fmt.Errorf("database error in %s: %s (code: %s)", operation, pgErr.Message, pgErr.Code)
		}
	}

	return fmt.Errorf("database error in %s: %w", operation, err)
}

// User operations

func (r *Repository) CreateUser(ctx context.Context, user *contentshield.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, avatar_url, role, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.AvatarURL, user.Role, user.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create user", err)
	}
	return nil
}

func (r *Repository) GetUser(ctx context.Context, id uuid.UUID) (*contentshield.User, error) {
	query := `
		SELECT id, email, password_hash, avatar_url, role, created_at
		FROM users WHERE id = $1`

	return r.scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*contentshield.User, error) {
	query := `
		SELECT id, email, password_hash, avatar_url, role, created_at
		FROM users WHERE email = $1`

	return r.scanUser(r.db.QueryRow(ctx, query, email))
}

func (r *Repository) scanUser(row pgx.Row) (*contentshield.User, error) {
	var user contentshield.User
	err := row.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.AvatarURL, &user.Role, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contentshield.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *Repository) ListUsers(ctx context.Context) ([]*contentshield.User, error) {
	query := `
		SELECT id, email, password_hash, avatar_url, role, created_at
		FROM users ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*contentshield.User
	for rows.Next() {
		var user contentshield.User
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &user.AvatarURL, &user.Role, &user.CreatedAt); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

func (r *Repository) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete user", err)
	}
	if tag.RowsAffected() == 0 {
		return contentshield.ErrUserNotFound
	}
	return nil
}

// Content operations

const contentColumns = `
	id, owner_id, title, description, license_type, allow_download,
	fingerprint, object_key, file_name, mime_type, size_bytes, price,
	like_count, comment_count, created_at, updated_at`

func (r *Repository) CreateContent(ctx context.Context, content *contentshield.Content) error {
	query := `
		INSERT INTO content (
			id, owner_id, title, description, license_type, allow_download,
			fingerprint, object_key, file_name, mime_type, size_bytes, price,
			like_count, comment_count, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err := r.db.Exec(ctx, query,
		content.ID, content.OwnerID, content.Title, content.Description,
		content.LicenseType, content.AllowDownload, content.Fingerprint,
		content.ObjectKey, content.FileName, content.MimeType, content.SizeBytes,
		content.Price, content.LikeCount, content.CommentCount,
		content.CreatedAt, content.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create content", err)
	}
	return nil
}

func (r *Repository) GetContent(ctx context.Context, id uuid.UUID) (*contentshield.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE id = $1`
	return r.scanContent(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetContentByFingerprint(ctx context.Context, fingerprint string) (*contentshield.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE fingerprint = $1`
	return r.scanContent(r.db.QueryRow(ctx, query, fingerprint))
}

func (r *Repository) scanContent(row pgx.Row) (*contentshield.Content, error) {
	var content contentshield.Content
	err := row.Scan(
		&content.ID, &content.OwnerID, &content.Title, &content.Description,
		&content.LicenseType, &content.AllowDownload, &content.Fingerprint,
		&content.ObjectKey, &content.FileName, &content.MimeType, &content.SizeBytes,
		&content.Price, &content.LikeCount, &content.CommentCount,
		&content.CreatedAt, &content.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contentshield.ErrContentNotFound
		}
		return nil, err
	}
	return &content, nil
}

func (r *Repository) UpdateContent(ctx context.Context, content *contentshield.Content) error {
	query := `
		UPDATE content SET
			title = $2, description = $3, allow_download = $4,
			like_count = $5, comment_count = $6, updated_at = $7
		WHERE id = $1`

	tag, err := r.db.Exec(ctx, query,
		content.ID, content.Title, content.Description, content.AllowDownload,
		content.LikeCount, content.CommentCount, content.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update content", err)
	}
	if tag.RowsAffected() == 0 {
		return contentshield.ErrContentNotFound
	}
	return nil
}

func (r *Repository) DeleteContent(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM content WHERE id = $1`, id)
	if err != nil {
		return r.handlePostgresError("delete content", err)
	}
	if tag.RowsAffected() == 0 {
		return contentshield.ErrContentNotFound
	}
	return nil
}

func (r *Repository) ListContent(ctx context.Context) ([]*contentshield.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content ORDER BY created_at DESC`
	return r.queryContents(ctx, query)
}

func (r *Repository) ListContentByOwner(ctx context.Context, ownerID uuid.UUID) ([]*contentshield.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content WHERE owner_id = $1 ORDER BY created_at DESC`
	return r.queryContents(ctx, query, ownerID)
}

func (r *Repository) ListTrendingContent(ctx context.Context, limit int) ([]*contentshield.Content, error) {
	query := `SELECT ` + contentColumns + ` FROM content ORDER BY like_count DESC, created_at DESC LIMIT $1`
	return r.queryContents(ctx, query, limit)
}

func (r *Repository) queryContents(ctx context.Context, query string, args ...interface{}) ([]*contentshield.Content, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contents []*contentshield.Content
	for rows.Next() {
		var content contentshield.Content
		if err := rows.Scan(
			&content.ID, &content.OwnerID, &content.Title, &content.Description,
			&content.LicenseType, &content.AllowDownload, &content.Fingerprint,
			&content.ObjectKey, &content.FileName, &content.MimeType, &content.SizeBytes,
			&content.Price, &content.LikeCount, &content.CommentCount,
			&content.CreatedAt, &content.UpdatedAt); err != nil {
			return nil, err
		}
		contents = append(contents, &content)
	}
	return contents, rows.Err()
}

// License request operations

const licenseRequestColumns = `
	id, content_id, requester_id, owner_id, status, created_at, updated_at`

func (r *Repository) CreateLicenseRequest(ctx context.Context, req *contentshield.LicenseRequest) error {
	query := `
		INSERT INTO license_requests (id, content_id, requester_id, owner_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		req.ID, req.ContentID, req.RequesterID, req.OwnerID, req.Status, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		// Partial unique index on pending (content_id, requester_id) pairs.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, "pending") {
			return contentshield.ErrPendingRequestExists
		}
		return r.handlePostgresError("create license request", err)
	}
	return nil
}

func (r *Repository) GetLicenseRequest(ctx context.Context, id uuid.UUID) (*contentshield.LicenseRequest, error) {
	query := `SELECT ` + licenseRequestColumns + ` FROM license_requests WHERE id = $1`
	return r.scanLicenseRequest(r.db.QueryRow(ctx, query, id))
}

func (r *Repository) GetPendingLicenseRequest(ctx context.Context, contentID, requesterID uuid.UUID) (*contentshield.LicenseRequest, error) {
	query := `SELECT ` + licenseRequestColumns + `
		FROM license_requests
		WHERE content_id = $1 AND requester_id = $2 AND status = 'pending'`
	return r.scanLicenseRequest(r.db.QueryRow(ctx, query, contentID, requesterID))
}

func (r *Repository) GetApprovedLicenseRequest(ctx context.Context, contentID, requesterID uuid.UUID) (*contentshield.LicenseRequest, error) {
	query := `SELECT ` + licenseRequestColumns + `
		FROM license_requests
		WHERE content_id = $1 AND requester_id = $2 AND status = 'approved'`
	return r.scanLicenseRequest(r.db.QueryRow(ctx, query, contentID, requesterID))
}

func (r *Repository) scanLicenseRequest(row pgx.Row) (*contentshield.LicenseRequest, error) {
	var req contentshield.LicenseRequest
	err := row.Scan(&req.ID, &req.ContentID, &req.RequesterID, &req.OwnerID, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contentshield.ErrGrantNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *Repository) UpdateLicenseRequest(ctx context.Context, req *contentshield.LicenseRequest) error {
	query := `UPDATE license_requests SET status = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, req.ID, req.Status, req.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update license request", err)
	}
	if tag.RowsAffected() == 0 {
		return contentshield.ErrGrantNotFound
	}
	return nil
}

func (r *Repository) ListLicenseRequestsByRequester(ctx context.Context, requesterID uuid.UUID) ([]*contentshield.LicenseRequest, error) {
	query := `SELECT ` + licenseRequestColumns + `
		FROM license_requests WHERE requester_id = $1 ORDER BY created_at DESC`
	return r.queryLicenseRequests(ctx, query, requesterID)
}

func (r *Repository) ListLicenseRequestsByOwner(ctx context.Context, ownerID uuid.UUID) ([]*contentshield.LicenseRequest, error) {
	query := `SELECT ` + licenseRequestColumns + `
		FROM license_requests WHERE owner_id = $1 ORDER BY created_at DESC`
	return r.queryLicenseRequests(ctx, query, ownerID)
}

func (r *Repository) queryLicenseRequests(ctx context.Context, query string, args ...interface{}) ([]*contentshield.LicenseRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*contentshield.LicenseRequest
	for rows.Next() {
		var req contentshield.LicenseRequest
		if err := rows.Scan(&req.ID, &req.ContentID, &req.RequesterID, &req.OwnerID, &req.Status, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, &req)
	}
	return reqs, rows.Err()
}

func (r *Repository) DeleteLicenseRequestsByContent(ctx context.Context, contentID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM license_requests WHERE content_id = $1`, contentID)
	return err
}

func (r *Repository) DeleteLicenseRequestsByRequester(ctx context.Context, requesterID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM license_requests WHERE requester_id = $1`, requesterID)
	return err
}

// Delete request operations

func (r *Repository) CreateDeleteRequest(ctx context.Context, req *contentshield.DeleteRequest) error {
	query := `
		INSERT INTO delete_requests (id, content_id, user_id, reason, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.db.Exec(ctx, query,
		req.ID, req.ContentID, req.UserID, req.Reason, req.Status, req.CreatedAt, req.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("create delete request", err)
	}
	return nil
}

func (r *Repository) GetDeleteRequest(ctx context.Context, id uuid.UUID) (*contentshield.DeleteRequest, error) {
	query := `
		SELECT id, content_id, user_id, reason, status, created_at, updated_at
		FROM delete_requests WHERE id = $1`

	var req contentshield.DeleteRequest
	err := r.db.QueryRow(ctx, query, id).Scan(
		&req.ID, &req.ContentID, &req.UserID, &req.Reason, &req.Status, &req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, contentshield.ErrGrantNotFound
		}
		return nil, err
	}
	return &req, nil
}

func (r *Repository) UpdateDeleteRequest(ctx context.Context, req *contentshield.DeleteRequest) error {
	query := `UPDATE delete_requests SET status = $2, updated_at = $3 WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, req.ID, req.Status, req.UpdatedAt)
	if err != nil {
		return r.handlePostgresError("update delete request", err)
	}
	if tag.RowsAffected() == 0 {
		return contentshield.ErrGrantNotFound
	}
	return nil
}

func (r *Repository) ListDeleteRequests(ctx context.Context) ([]*contentshield.DeleteRequest, error) {
	query := `
		SELECT id, content_id, user_id, reason, status, created_at, updated_at
		FROM delete_requests ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reqs []*contentshield.DeleteRequest
	for rows.Next() {
		var req contentshield.DeleteRequest
		if err := rows.Scan(&req.ID, &req.ContentID, &req.UserID, &req.Reason, &req.Status, &req.CreatedAt, &req.UpdatedAt); err != nil {
			return nil, err
		}
		reqs = append(reqs, &req)
	}
	return reqs, rows.Err()
}

func (r *Repository) DeleteDeleteRequestsByContent(ctx context.Context, contentID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM delete_requests WHERE content_id = $1`, contentID)
	return err
}

func (r *Repository) DeleteDeleteRequestsByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM delete_requests WHERE user_id = $1`, userID)
	return err
}

// Like operations

func (r *Repository) CreateLike(ctx context.Context, like *contentshield.Like) error {
	query := `
		INSERT INTO likes (id, content_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)`

	_, err := r.db.Exec(ctx, query, like.ID, like.ContentID, like.UserID, like.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create like", err)
	}
	return nil
}

func (r *Repository) DeleteLike(ctx context.Context, contentID, userID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM likes WHERE content_id = $1 AND user_id = $2`, contentID, userID)
	if err != nil {
		return r.handlePostgresError("delete like", err)
	}
	if tag.RowsAffected() == 0 {
		return contentshield.ErrGrantNotFound
	}
	return nil
}

func (r *Repository) ListLikesByUser(ctx context.Context, userID uuid.UUID) ([]*contentshield.Like, error) {
	query := `
		SELECT id, content_id, user_id, created_at
		FROM likes WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var likes []*contentshield.Like
	for rows.Next() {
		var like contentshield.Like
		if err := rows.Scan(&like.ID, &like.ContentID, &like.UserID, &like.CreatedAt); err != nil {
			return nil, err
		}
		likes = append(likes, &like)
	}
	return likes, rows.Err()
}

func (r *Repository) DeleteLikesByContent(ctx context.Context, contentID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM likes WHERE content_id = $1`, contentID)
	return err
}

func (r *Repository) DeleteLikesByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM likes WHERE user_id = $1`, userID)
	return err
}

// Comment operations

func (r *Repository) CreateComment(ctx context.Context, comment *contentshield.Comment) error {
	query := `
		INSERT INTO comments (id, content_id, user_id, body, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(ctx, query,
		comment.ID, comment.ContentID, comment.UserID, comment.Body, comment.CreatedAt)
	if err != nil {
		return r.handlePostgresError("create comment", err)
	}
	return nil
}

func (r *Repository) ListCommentsByContent(ctx context.Context, contentID uuid.UUID) ([]*contentshield.Comment, error) {
	query := `
		SELECT id, content_id, user_id, body, created_at
		FROM comments WHERE content_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, contentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*contentshield.Comment
	for rows.Next() {
		var comment contentshield.Comment
		if err := rows.Scan(&comment.ID, &comment.ContentID, &comment.UserID, &comment.Body, &comment.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

func (r *Repository) ListCommentsByUser(ctx context.Context, userID uuid.UUID) ([]*contentshield.Comment, error) {
	query := `
		SELECT id, content_id, user_id, body, created_at
		FROM comments WHERE user_id = $1 ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []*contentshield.Comment
	for rows.Next() {
		var comment contentshield.Comment
		if err := rows.Scan(&comment.ID, &comment.ContentID, &comment.UserID, &comment.Body, &comment.CreatedAt); err != nil {
			return nil, err
		}
		comments = append(comments, &comment)
	}
	return comments, rows.Err()
}

func (r *Repository) DeleteCommentsByContent(ctx context.Context, contentID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM comments WHERE content_id = $1`, contentID)
	return err
}

func (r *Repository) DeleteCommentsByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.Exec(ctx, `DELETE FROM comments WHERE user_id = $1`, userID)
	return err
}
