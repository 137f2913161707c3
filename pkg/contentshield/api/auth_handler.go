package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/go-chi/render"

	"github.com/contentshield/contentshield/pkg/contentshield"
)

// AuthHandler handles registration and login, issuing JWTs consumed by the
// identity middleware.
type AuthHandler struct {
	service   contentshield.Service
	tokenAuth *jwtauth.JWTAuth
	tokenTTL  time.Duration
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(service contentshield.Service, tokenAuth *jwtauth.JWTAuth) *AuthHandler {
	return &AuthHandler{
		service:   service,
		tokenAuth: tokenAuth,
		tokenTTL:  24 * time.Hour,
	}
}

// Routes returns the routes for authentication
func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/register", h.Register)
	r.Post("/login", h.Login)
	return r
}

// CredentialsRequest is the request body for register and login
type CredentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the response body carrying a token and the user
type AuthResponse struct {
	Token string              `json:"token"`
	User  *contentshield.User `json:"user"`
}

// Register creates a new user account
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, r, "invalid request body")
		return
	}

	user, err := h.service.RegisterUser(r.Context(), contentshield.RegisterUserRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		renderError(w, r, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, AuthResponse{Token: token, User: user})
}

// Login authenticates a user and issues a token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req CredentialsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, r, "invalid request body")
		return
	}

	user, err := h.service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		renderError(w, r, err)
		return
	}

	token, err := h.issueToken(user)
	if err != nil {
		renderError(w, r, err)
		return
	}

	render.JSON(w, r, AuthResponse{Token: token, User: user})
}

func (h *AuthHandler) issueToken(user *contentshield.User) (string, error) {
	now := time.Now().UTC()
	_, token, err := h.tokenAuth.Encode(map[string]interface{}{
		"sub":   user.ID.String(),
		"email": user.Email,
		"role":  string(user.Role),
		"iat":   now.Unix(),
		"exp":   now.Add(h.tokenTTL).Unix(),
	})
	return token, err
}
