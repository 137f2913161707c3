package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentshield/contentshield/pkg/contentshield"
	"github.com/contentshield/contentshield/pkg/contentshield/api"
	"github.com/contentshield/contentshield/pkg/contentshield/repo/memory"
	memorystorage "github.com/contentshield/contentshield/pkg/contentshield/storage/memory"
)

func newTestService(t *testing.T) contentshield.Service {
	t.Helper()

	svc, err := contentshield.New(
		contentshield.WithRepository(memory.New()),
		contentshield.WithBlobStore(memorystorage.New(memorystorage.WithURLPrefix("http://localhost:8080"))),
	)
	require.NoError(t, err)
	return svc
}

func registerUser(t *testing.T, svc contentshield.Service, email string, role contentshield.Role) *contentshield.User {
	t.Helper()

	user, err := svc.RegisterUser(context.Background(), contentshield.RegisterUserRequest{
		Email:    email,
		Password: "secret123",
		Role:     role,
	})
	require.NoError(t, err)
	return user
}

// routerAs mounts the authenticated routes with a fixed identity, standing in
// for the JWT verifier chain.
func routerAs(svc contentshield.Service, user *contentshield.User) http.Handler {
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(api.WithUser(req.Context(), user)))
		})
	})
	r.Mount("/contents", api.NewContentHandler(svc).Routes())
	r.Mount("/license-requests", api.NewLicenseHandler(svc).Routes())
	r.Mount("/admin", api.NewAdminHandler(svc).Routes())
	return r
}

func uploadContent(t *testing.T, router http.Handler, title, fileName, payload string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", title))
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = io.WriteString(part, payload)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/contents/", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthEndpoints(t *testing.T) {
	svc := newTestService(t)
	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)

	r := chi.NewRouter()
	r.Mount("/auth", api.NewAuthHandler(svc, tokenAuth).Routes())

	t.Run("register issues a token", func(t *testing.T) {
		body := `{"email":"new@example.com","password":"secret123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)

		var resp struct {
			Token string             `json:"token"`
			User  contentshield.User `json:"user"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.NotEmpty(t, resp.Token)
		assert.Equal(t, "new@example.com", resp.User.Email)
		assert.NotContains(t, rec.Body.String(), "password_hash")
	})

	t.Run("duplicate email conflicts", func(t *testing.T) {
		body := `{"email":"new@example.com","password":"secret123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("login with wrong password is unauthorized", func(t *testing.T) {
		body := `{"email":"new@example.com","password":"wrong-password"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("login succeeds with valid credentials", func(t *testing.T) {
		body := `{"email":"new@example.com","password":"secret123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestContentEndpoints(t *testing.T) {
	svc := newTestService(t)

	owner := registerUser(t, svc, "owner@example.com", contentshield.RoleUser)
	viewer := registerUser(t, svc, "viewer@example.com", contentshield.RoleUser)

	asOwner := routerAs(svc, owner)
	asViewer := routerAs(svc, viewer)

	var created contentshield.Content

	t.Run("upload registers content", func(t *testing.T) {
		rec := uploadContent(t, asOwner, "gated item", "item.pdf", "pdf bytes", map[string]string{
			"license_type": "permission",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
		assert.Equal(t, owner.ID, created.OwnerID)
		assert.Equal(t, created.Fingerprint+".pdf", created.ObjectKey)
	})

	t.Run("duplicate upload conflicts", func(t *testing.T) {
		rec := uploadContent(t, asViewer, "copycat", "copy.pdf", "pdf bytes", map[string]string{
			"license_type": "free",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("feed is annotated per caller", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contents/", nil)
		rec := httptest.NewRecorder()
		asViewer.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var feed []struct {
			contentshield.Content
			HasAccess bool `json:"user_has_access"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
		require.Len(t, feed, 1)
		assert.False(t, feed[0].HasAccess)

		rec = httptest.NewRecorder()
		asOwner.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contents/", nil))
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &feed))
		require.Len(t, feed, 1)
		assert.True(t, feed[0].HasAccess)
	})

	t.Run("unknown content is 404", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contents/00000000-0000-0000-0000-000000000001", nil)
		rec := httptest.NewRecorder()
		asViewer.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed id is 400", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contents/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		asViewer.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("open denied without access", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contents/"+created.ID.String()+"/open", nil)
		rec := httptest.NewRecorder()
		asViewer.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner streams with content disposition", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contents/"+created.ID.String()+"/download", nil)
		rec := httptest.NewRecorder()
		asOwner.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "pdf bytes", rec.Body.String())
		assert.Contains(t, rec.Header().Get("Content-Disposition"), `attachment; filename="item.pdf"`)
	})

	t.Run("double like conflicts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/contents/"+created.ID.String()+"/like", nil)
		rec := httptest.NewRecorder()
		asViewer.ServeHTTP(rec, req)
		require.Equal(t, http.StatusNoContent, rec.Code)

		rec = httptest.NewRecorder()
		asViewer.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/contents/"+created.ID.String()+"/like", nil))
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("non-owner delete is forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/contents/"+created.ID.String(), nil)
		rec := httptest.NewRecorder()
		asViewer.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner delete succeeds", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/contents/"+created.ID.String(), nil)
		rec := httptest.NewRecorder()
		asOwner.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}

func TestLicenseEndpoints(t *testing.T) {
	svc := newTestService(t)

	owner := registerUser(t, svc, "lic-owner@example.com", contentshield.RoleUser)
	requester := registerUser(t, svc, "lic-requester@example.com", contentshield.RoleUser)

	asOwner := routerAs(svc, owner)
	asRequester := routerAs(svc, requester)

	rec := uploadContent(t, asOwner, "licensed", "work.png", "png bytes", map[string]string{
		"license_type": "permission",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var content contentshield.Content
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &content))

	var request contentshield.LicenseRequest

	t.Run("request license", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/license-requests/content/"+content.ID.String(), nil)
		rec := httptest.NewRecorder()
		asRequester.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &request))
		assert.Equal(t, contentshield.RequestStatusPending, request.Status)
	})

	t.Run("second pending request conflicts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/license-requests/content/"+content.ID.String(), nil)
		rec := httptest.NewRecorder()
		asRequester.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("owner self-request forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/license-requests/content/"+content.ID.String(), nil)
		rec := httptest.NewRecorder()
		asOwner.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("non-owner cannot approve", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/license-requests/"+request.ID.String()+"/approve", nil)
		rec := httptest.NewRecorder()
		asRequester.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner approves", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/license-requests/"+request.ID.String()+"/approve", nil)
		rec := httptest.NewRecorder()
		asOwner.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var resolved contentshield.LicenseRequest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resolved))
		assert.Equal(t, contentshield.RequestStatusApproved, resolved.Status)
	})

	t.Run("resolving again conflicts", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/license-requests/"+request.ID.String()+"/reject", nil)
		rec := httptest.NewRecorder()
		asOwner.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("approved requester can open the content", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/contents/"+content.ID.String()+"/open", nil)
		rec := httptest.NewRecorder()
		asRequester.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "png bytes", rec.Body.String())
	})
}

func TestAdminEndpoints(t *testing.T) {
	svc := newTestService(t)

	admin := registerUser(t, svc, "admin@example.com", contentshield.RoleAdmin)
	member := registerUser(t, svc, "member@example.com", contentshield.RoleUser)

	asAdmin := routerAs(svc, admin)
	asMember := routerAs(svc, member)

	rec := uploadContent(t, asMember, "flagged", "flagged.txt", "flagged bytes", map[string]string{
		"license_type": "free",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	var content contentshield.Content
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &content))

	t.Run("user listing is admin only", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		rec := httptest.NewRecorder()
		asMember.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = httptest.NewRecorder()
		asAdmin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/admin/users", nil))
		require.Equal(t, http.StatusOK, rec.Code)

		var users []contentshield.User
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &users))
		assert.Len(t, users, 2)
	})

	t.Run("any user may flag content", func(t *testing.T) {
		body := `{"reason":"copyright claim"}`
		req := httptest.NewRequest(http.MethodPost,
			fmt.Sprintf("/admin/delete-requests/content/%s", content.ID), strings.NewReader(body))
		rec := httptest.NewRecorder()
		asMember.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("approving the flag deletes the content", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/delete-requests", nil)
		rec := httptest.NewRecorder()
		asAdmin.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)

		var requests []contentshield.DeleteRequest
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &requests))
		require.Len(t, requests, 1)

		rec = httptest.NewRecorder()
		asAdmin.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
			fmt.Sprintf("/admin/delete-requests/%s/approve", requests[0].ID), nil))
		require.Equal(t, http.StatusOK, rec.Code)

		rec = httptest.NewRecorder()
		asAdmin.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/contents/"+content.ID.String(), nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("admin account is not deletable", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/admin/users/"+admin.ID.String(), nil)
		rec := httptest.NewRecorder()
		asAdmin.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("member deletion cascades", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/admin/users/"+member.ID.String(), nil)
		rec := httptest.NewRecorder()
		asAdmin.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})
}
