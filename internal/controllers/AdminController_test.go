package controllers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"wxhm/internal/models"
	"wxhm/internal/structures"
	"wxhm/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAdmin(svc *mockGroupService, maxMB int) *AdminController {
	conf := &structures.Config{Storage: structures.StorageConfig{MaxUploadMB: maxMB}}
	return NewAdminController(conf, &testutil.MockLogger{}, svc)
}

func formRequest(target string, values url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestAdmin_ListGroups(t *testing.T) {
	svc := newMockGroupService()
	svc.groups = []string{"a", "b"}
	ac := newTestAdmin(svc, 1)

	rr := httptest.NewRecorder()
	ac.ListGroups(rr, httptest.NewRequest(http.MethodGet, "/admin/groups", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"groups":["a","b"]}`, rr.Body.String())
}

func TestAdmin_Upload(t *testing.T) {
	svc := newMockGroupService()
	ac := newTestAdmin(svc, 1)

	req := multipartRequest(t, "/admin/groups", map[string]string{"group_name": " g "}, "file", "qr.png", []byte("image"))
	req.RemoteAddr = "198.51.100.4:1234"
	rr := httptest.NewRecorder()
	ac.Upload(rr, req)

	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, []byte("image"), svc.stored["g"])
	assert.Equal(t, []string{"198.51.100.4"}, svc.origins)
	assert.Contains(t, rr.Body.String(), `"filename":"qr_1.webp"`)
}

func TestAdmin_UploadMissingFile(t *testing.T) {
	svc := newMockGroupService()
	ac := newTestAdmin(svc, 1)

	req := multipartRequest(t, "/admin/groups", map[string]string{"group_name": "g"}, "", "", nil)
	rr := httptest.NewRecorder()
	ac.Upload(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.stored)
}

func TestAdmin_UploadTooLarge(t *testing.T) {
	svc := newMockGroupService()
	ac := newTestAdmin(svc, 1)

	big := bytes.Repeat([]byte{0xff}, 1<<20+1)
	req := multipartRequest(t, "/admin/groups", map[string]string{"group_name": "g"}, "file", "qr.png", big)
	rr := httptest.NewRecorder()
	ac.Upload(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.stored)
}

func TestAdmin_UploadRejectedImage(t *testing.T) {
	svc := newMockGroupService()
	svc.err = models.ErrValidation
	ac := newTestAdmin(svc, 1)

	req := multipartRequest(t, "/admin/groups", map[string]string{"group_name": "g"}, "file", "qr.png", []byte("x"))
	rr := httptest.NewRecorder()
	ac.Upload(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAdmin_Rename(t *testing.T) {
	svc := newMockGroupService()
	ac := newTestAdmin(svc, 1)

	rr := httptest.NewRecorder()
	ac.Rename(rr, formRequest("/admin/groups/rename", url.Values{"old_name": {"a"}, "new_name": {"b"}}))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, [][2]string{{"a", "b"}}, svc.renamed)
}

func TestAdmin_RenameErrors(t *testing.T) {
	svc := newMockGroupService()
	ac := newTestAdmin(svc, 1)

	rr := httptest.NewRecorder()
	ac.Rename(rr, formRequest("/admin/groups/rename", url.Values{"old_name": {"a"}}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	svc.err = models.ErrConflict
	rr = httptest.NewRecorder()
	ac.Rename(rr, formRequest("/admin/groups/rename", url.Values{"old_name": {"a"}, "new_name": {"b"}}))
	assert.Equal(t, http.StatusConflict, rr.Code)

	svc.err = models.ErrNotFound
	rr = httptest.NewRecorder()
	ac.Rename(rr, formRequest("/admin/groups/rename", url.Values{"old_name": {"a"}, "new_name": {"b"}}))
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestAdmin_Delete(t *testing.T) {
	svc := newMockGroupService()
	ac := newTestAdmin(svc, 1)

	req := httptest.NewRequest(http.MethodPost, "/admin/groups/delete/g", nil)
	req.SetPathValue("name", "g")
	rr := httptest.NewRecorder()
	ac.Delete(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"g"}, svc.deleted)
}

func TestAdmin_ShareCode(t *testing.T) {
	svc := newMockGroupService()
	ac := newTestAdmin(svc, 1)

	req := httptest.NewRequest(http.MethodGet, "http://qr.example.com/admin/groups/a%20b/sharecode?size=300", nil)
	req.SetPathValue("name", "a b")
	rr := httptest.NewRecorder()
	ac.ShareCode(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
	assert.Equal(t, []string{"http://qr.example.com/group/a%20b"}, svc.shareURLs)
	assert.Equal(t, 300, svc.shareSize)
}

func TestAdmin_ShareCodeBadSize(t *testing.T) {
	svc := newMockGroupService()
	ac := newTestAdmin(svc, 1)

	req := httptest.NewRequest(http.MethodGet, "/admin/groups/g/sharecode?size=huge", nil)
	req.SetPathValue("name", "g")
	rr := httptest.NewRecorder()
	ac.ShareCode(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Empty(t, svc.shareURLs)
}
