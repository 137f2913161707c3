package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/contentshield/contentshield/pkg/contentshield"
)

const maxUploadBytes = 512 << 20 // 512 MB

// ContentHandler handles content-related HTTP requests
type ContentHandler struct {
	service contentshield.Service
}

// NewContentHandler creates a new content handler
func NewContentHandler(service contentshield.Service) *ContentHandler {
	return &ContentHandler{service: service}
}

// Routes returns the routes for content operations. All routes assume
// IdentityMiddleware has run.
func (h *ContentHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.RegisterContent)
	r.Get("/", h.ListContent)
	r.Get("/trending", h.ListTrending)
	r.Get("/mine", h.ListOwnContent)

	r.Route("/{contentID}", func(r chi.Router) {
		r.Get("/", h.GetContent)
		r.Delete("/", h.DeleteContent)
		r.Get("/open", h.OpenContent)
		r.Get("/download", h.DownloadContent)
		r.Get("/download-url", h.GetDownloadURL)
		r.Post("/like", h.LikeContent)
		r.Delete("/like", h.UnlikeContent)
		r.Get("/comments", h.ListComments)
		r.Post("/comments", h.AddComment)
	})

	return r
}

// RegisterContent accepts a multipart upload and registers it. The file part
// must be named "file"; the remaining fields travel as form values.
func (h *ContentHandler) RegisterContent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		renderBadRequest(w, r, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		renderBadRequest(w, r, "file part is required")
		return
	}
	defer file.Close()

	req := contentshield.RegisterContentRequest{
		OwnerID:       user.ID,
		Title:         r.FormValue("title"),
		Description:   r.FormValue("description"),
		LicenseType:   contentshield.LicenseType(r.FormValue("license_type")),
		AllowDownload: r.FormValue("allow_download") == "true",
		FileName:      header.Filename,
		MimeType:      header.Header.Get("Content-Type"),
		Reader:        file,
	}

	if v := r.FormValue("price"); v != "" {
		price, err := strconv.ParseInt(v, 10, 64)
		if err != nil || price < 0 {
			renderBadRequest(w, r, "invalid price")
			return
		}
		req.Price = &price
	}

	content, err := h.service.RegisterContent(r.Context(), req)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, content)
}

// ListContent lists all content annotated with the caller's access.
func (h *ContentHandler) ListContent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contents, err := h.service.ListContent(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	annotated, err := h.service.AnnotateAccess(r.Context(), user, contents)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, annotated)
}

// ListTrending lists the most-liked content, annotated with the caller's access.
func (h *ContentHandler) ListTrending(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	limit := 10
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			renderBadRequest(w, r, "invalid limit")
			return
		}
		limit = n
	}

	contents, err := h.service.ListTrendingContent(r.Context(), limit)
	if err != nil {
		renderError(w, r, err)
		return
	}

	annotated, err := h.service.AnnotateAccess(r.Context(), user, contents)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, annotated)
}

// ListOwnContent lists content owned by the caller.
func (h *ContentHandler) ListOwnContent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contents, err := h.service.ListContentByOwner(r.Context(), user.ID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, contents)
}

// GetContent returns a single content item annotated with the caller's access.
func (h *ContentHandler) GetContent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		renderBadRequest(w, r, "invalid content ID")
		return
	}

	content, err := h.service.GetContent(r.Context(), contentID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	annotated, err := h.service.AnnotateAccess(r.Context(), user, []*contentshield.Content{content})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, annotated[0])
}

// DeleteContent deletes a content item. Owner or admin only.
func (h *ContentHandler) DeleteContent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		renderBadRequest(w, r, "invalid content ID")
		return
	}

	if err := h.service.DeleteContent(r.Context(), user, contentID); err != nil {
		renderError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

// OpenContent streams the content bytes inline for viewing.
func (h *ContentHandler) OpenContent(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, false)
}

// DownloadContent streams the content bytes as an attachment.
func (h *ContentHandler) DownloadContent(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, true)
}

func (h *ContentHandler) stream(w http.ResponseWriter, r *http.Request, attachment bool) {
	user := UserFromContext(r.Context())

	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		renderBadRequest(w, r, "invalid content ID")
		return
	}

	var (
		rc      io.ReadCloser
		content *contentshield.Content
	)
	if attachment {
		rc, content, err = h.service.DownloadContent(r.Context(), user, contentID)
	} else {
		rc, content, err = h.service.OpenContent(r.Context(), user, contentID)
	}
	if err != nil {
		renderError(w, r, err)
		return
	}
	defer rc.Close()

	if content.MimeType != "" {
		w.Header().Set("Content-Type", content.MimeType)
	}
	if content.SizeBytes > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(content.SizeBytes, 10))
	}
	disposition := "inline"
	if attachment {
		disposition = "attachment"
	}
	w.Header().Set("Content-Disposition", fmt.Sprintf("%s; filename=%q", disposition, content.FileName))

	if _, err := io.Copy(w, rc); err != nil {
		// Headers are gone at this point; nothing useful to send back.
		return
	}
}

// GetDownloadURL returns a URL the client can fetch the content from directly.
func (h *ContentHandler) GetDownloadURL(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		renderBadRequest(w, r, "invalid content ID")
		return
	}

	url, err := h.service.GetDownloadURL(r.Context(), user, contentID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, map[string]string{"download_url": url})
}

// LikeContent records a like from the caller.
func (h *ContentHandler) LikeContent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		renderBadRequest(w, r, "invalid content ID")
		return
	}

	if err := h.service.LikeContent(r.Context(), contentID, user.ID); err != nil {
		renderError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

// UnlikeContent removes the caller's like.
func (h *ContentHandler) UnlikeContent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		renderBadRequest(w, r, "invalid content ID")
		return
	}

	if err := h.service.UnlikeContent(r.Context(), contentID, user.ID); err != nil {
		renderError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

// CommentRequest is the request body for adding a comment
type CommentRequest struct {
	Body string `json:"body"`
}

// AddComment adds a comment from the caller.
func (h *ContentHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		renderBadRequest(w, r, "invalid content ID")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, r, "invalid request body")
		return
	}

	comment, err := h.service.AddComment(r.Context(), contentshield.AddCommentRequest{
		ContentID: contentID,
		UserID:    user.ID,
		Body:      req.Body,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, comment)
}

// ListComments lists comments for a content item.
func (h *ContentHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		renderBadRequest(w, r, "invalid content ID")
		return
	}

	comments, err := h.service.ListComments(r.Context(), contentID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, comments)
}
