package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/contentshield/contentshield/pkg/contentshield"
)

// AdminHandler handles administrative HTTP requests: user management and
// delete request moderation. Delete request filing is open to any
// authenticated user; the rest is wrapped in AdminOnly.
type AdminHandler struct {
	service contentshield.Service
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(service contentshield.Service) *AdminHandler {
	return &AdminHandler{service: service}
}

// Routes returns the routes for administrative operations. All routes assume
// IdentityMiddleware has run.
func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	// Any authenticated user can flag content for deletion.
	r.Post("/delete-requests/content/{contentID}", h.RequestDeletion)

	r.Group(func(r chi.Router) {
		r.Use(AdminOnly)
		r.Get("/users", h.ListUsers)
		r.Delete("/users/{userID}", h.DeleteUser)
		r.Get("/delete-requests", h.ListDeleteRequests)
		r.Post("/delete-requests/{requestID}/approve", h.ApproveDeleteRequest)
		r.Post("/delete-requests/{requestID}/reject", h.RejectDeleteRequest)
	})

	return r
}

// DeleteRequestBody is the request body for filing a delete request
type DeleteRequestBody struct {
	Reason string `json:"reason"`
}

// RequestDeletion flags a content item for deletion by an admin.
func (h *AdminHandler) RequestDeletion(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		renderBadRequest(w, r, "invalid content ID")
		return
	}

	var body DeleteRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		renderBadRequest(w, r, "invalid request body")
		return
	}

	dr, err := h.service.RequestDeletion(r.Context(), contentshield.RequestDeletionRequest{
		ContentID: contentID,
		UserID:    user.ID,
		Reason:    body.Reason,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, dr)
}

// ListUsers lists all registered users.
func (h *AdminHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.ListUsers(r.Context())
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, users)
}

// DeleteUser removes a user and everything they own.
func (h *AdminHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	actor := UserFromContext(r.Context())

	userID, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		renderBadRequest(w, r, "invalid user ID")
		return
	}

	if err := h.service.DeleteUser(r.Context(), actor, userID); err != nil {
		renderError(w, r, err)
		return
	}

	render.NoContent(w, r)
}

// ListDeleteRequests lists pending and resolved delete requests.
func (h *AdminHandler) ListDeleteRequests(w http.ResponseWriter, r *http.Request) {
	actor := UserFromContext(r.Context())

	requests, err := h.service.ListDeleteRequests(r.Context(), actor)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, requests)
}

// ApproveDeleteRequest approves a delete request, cascading into content
// deletion.
func (h *AdminHandler) ApproveDeleteRequest(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, true)
}

// RejectDeleteRequest rejects a delete request, leaving the content in place.
func (h *AdminHandler) RejectDeleteRequest(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, false)
}

func (h *AdminHandler) resolve(w http.ResponseWriter, r *http.Request, approve bool) {
	actor := UserFromContext(r.Context())

	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		renderBadRequest(w, r, "invalid request ID")
		return
	}

	dr, err := h.service.ResolveDeleteRequest(r.Context(), contentshield.ResolveDeleteRequestRequest{
		RequestID: requestID,
		Actor:     actor,
		Approve:   approve,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, dr)
}
