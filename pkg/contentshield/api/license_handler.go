package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"

	"github.com/contentshield/contentshield/pkg/contentshield"
)

// LicenseHandler handles license request lifecycle HTTP requests
type LicenseHandler struct {
	service contentshield.Service
}

// NewLicenseHandler creates a new license handler
func NewLicenseHandler(service contentshield.Service) *LicenseHandler {
	return &LicenseHandler{service: service}
}

// Routes returns the routes for license request operations. All routes assume
// IdentityMiddleware has run.
func (h *LicenseHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/content/{contentID}", h.RequestLicense)
	r.Get("/sent", h.ListSent)
	r.Get("/received", h.ListReceived)
	r.Post("/{requestID}/approve", h.Approve)
	r.Post("/{requestID}/reject", h.Reject)

	return r
}

// RequestLicense files a license request for a content item on behalf of the
// caller.
func (h *LicenseHandler) RequestLicense(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	contentID, err := uuid.Parse(chi.URLParam(r, "contentID"))
	if err != nil {
		renderBadRequest(w, r, "invalid content ID")
		return
	}

	lr, err := h.service.RequestLicense(r.Context(), contentshield.RequestLicenseRequest{
		ContentID:   contentID,
		RequesterID: user.ID,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, lr)
}

// ListSent lists license requests filed by the caller.
func (h *LicenseHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	requests, err := h.service.ListLicenseRequestsSent(r.Context(), user.ID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, requests)
}

// ListReceived lists license requests against content owned by the caller.
func (h *LicenseHandler) ListReceived(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	requests, err := h.service.ListLicenseRequestsReceived(r.Context(), user.ID)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, requests)
}

// Approve approves a pending license request. Content owner only.
func (h *LicenseHandler) Approve(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, true)
}

// Reject rejects a pending license request. Content owner only.
func (h *LicenseHandler) Reject(w http.ResponseWriter, r *http.Request) {
	h.resolve(w, r, false)
}

func (h *LicenseHandler) resolve(w http.ResponseWriter, r *http.Request, approve bool) {
	user := UserFromContext(r.Context())

	requestID, err := uuid.Parse(chi.URLParam(r, "requestID"))
	if err != nil {
		renderBadRequest(w, r, "invalid request ID")
		return
	}

	lr, err := h.service.ResolveLicenseRequest(r.Context(), contentshield.ResolveLicenseRequestRequest{
		RequestID: requestID,
		Actor:     user,
		Approve:   approve,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, lr)
}
