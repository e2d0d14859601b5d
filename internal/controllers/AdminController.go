package controllers

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"wxhm/internal/models"
	"wxhm/internal/providers"
	"wxhm/internal/services"
	"wxhm/internal/structures"

	"github.com/spf13/cast"
)

type AdminController struct {
	logger  providers.Logger
	service services.GroupServiceInterface
	maxBody int64
}

type groupsResponse struct {
	Groups []string `json:"groups"`
}

type groupActionResponse struct {
	Group string             `json:"group"`
	Asset *models.GroupAsset `json:"asset,omitempty"`
}

func NewAdminController(conf *structures.Config, logger providers.Logger, service services.GroupServiceInterface) *AdminController {
	return &AdminController{
		logger:  logger,
		service: service,
		maxBody: conf.MaxUploadBytes(),
	}
}

// readUpload returns the bytes of the named multipart file field.
func readUpload(r *http.Request, field string, maxBody int64) ([]byte, string, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(maxBody); err != nil {
			return nil, "", fmt.Errorf("%w: multipart form: %v", models.ErrValidation, err)
		}
	}
	f, hdr, err := r.FormFile(field)
	if err != nil {
		return nil, "", fmt.Errorf("%w: missing file field %q", models.ErrValidation, field)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxBody+1))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read upload: %v", models.ErrValidation, err)
	}
	if int64(len(data)) > maxBody {
		return nil, "", fmt.Errorf("%w: upload exceeds %d bytes", models.ErrValidation, maxBody)
	}
	return data, hdr.Filename, nil
}

func (ac *AdminController) ListGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := ac.service.ListGroups()
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, groupsResponse{Groups: groups})
}

func (ac *AdminController) Upload(w http.ResponseWriter, r *http.Request) {
	data, _, err := readUpload(r, "file", ac.maxBody)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	group := strings.TrimSpace(r.FormValue("group_name"))

	asset, err := ac.service.StoreAsset(r.Context(), group, data, clientOrigin(r))
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	ac.logger.Infof(providers.TypePost, "Group %s updated with %s", group, asset.Filename)
	writeJSON(w, http.StatusCreated, groupActionResponse{Group: group, Asset: asset})
}

func (ac *AdminController) Rename(w http.ResponseWriter, r *http.Request) {
	oldName := strings.TrimSpace(r.FormValue("old_name"))
	newName := strings.TrimSpace(r.FormValue("new_name"))
	if oldName == "" || newName == "" {
		writeError(w, r, ac.logger, fmt.Errorf("%w: old_name and new_name are required", models.ErrValidation))
		return
	}

	if err := ac.service.RenameGroup(r.Context(), oldName, newName, clientOrigin(r)); err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	ac.logger.Infof(providers.TypePost, "Group %s renamed to %s", oldName, newName)
	writeJSON(w, http.StatusOK, groupActionResponse{Group: newName})
}

func (ac *AdminController) Delete(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("name")
	if err := ac.service.DeleteGroup(r.Context(), group, clientOrigin(r)); err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	ac.logger.Infof(providers.TypePost, "Group %s deleted", group)
	writeJSON(w, http.StatusOK, groupActionResponse{Group: group})
}

// ShareCode answers a PNG QR code of the group's public page. The optional
// size query parameter sets the edge in pixels.
func (ac *AdminController) ShareCode(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("name")
	size, err := cast.ToIntE(r.URL.Query().Get("size"))
	if err != nil && r.URL.Query().Has("size") {
		writeError(w, r, ac.logger, fmt.Errorf("%w: size must be a number", models.ErrValidation))
		return
	}

	png, err := ac.service.ShareCode(group, requestBaseURL(r)+"/group/"+url.PathEscape(group), size)
	if err != nil {
		writeError(w, r, ac.logger, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}
