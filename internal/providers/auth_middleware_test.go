package providers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func authHandler(password string) http.Handler {
	return AdminAuthMiddleware(password, 1<<20, &cacheTestLogger{}, dummyHandler())
}

func TestAdminAuth_HeaderAccepted(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/groups", nil)
	req.Header.Set(AdminPasswordHeader, "s3cret")
	rr := httptest.NewRecorder()
	authHandler("s3cret").ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestAdminAuth_WrongHeaderRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/groups", nil)
	req.Header.Set(AdminPasswordHeader, "guess")
	rr := httptest.NewRecorder()
	authHandler("s3cret").ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminAuth_MissingRejected(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/groups", nil)
	rr := httptest.NewRecorder()
	authHandler("s3cret").ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminAuth_EmptyConfiguredPasswordRejectsAll(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/admin/groups", nil)
	req.Header.Set(AdminPasswordHeader, "")
	rr := httptest.NewRecorder()
	authHandler("").ServeHTTP(rr, req)

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAdminAuth_FormField(t *testing.T) {
	form := url.Values{"password": {"s3cret"}, "old_name": {"a"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/groups/rename", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()

	var seen string
	h := AdminAuthMiddleware("s3cret", 1<<20, &cacheTestLogger{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = r.FormValue("old_name")
	}))
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "a", seen)
}

func TestAdminAuth_MultipartField(t *testing.T) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("password", "s3cret"))
	fw, err := mw.CreateFormFile("file", "qr.png")
	require.NoError(t, err)
	_, _ = fw.Write([]byte("img"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/admin/groups", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rr := httptest.NewRecorder()

	var gotFile bool
	h := AdminAuthMiddleware("s3cret", 1<<20, &cacheTestLogger{}, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _, err := r.FormFile("file")
		gotFile = err == nil
	}))
	h.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, gotFile)
}
