package controllers

import (
	"net/http"
	"net/url"
	"strconv"
	"time"
	"wxhm/internal/assets"
	"wxhm/internal/providers"
	"wxhm/internal/services"
)

// wsrv.nl re-encodes the image for clients that cannot show WebP.
const imageProxyURL = "https://wsrv.nl/"

type GroupController struct {
	logger  providers.Logger
	service services.GroupServiceInterface
	store   assets.StoreInterface
}

type visitResponse struct {
	Group     string     `json:"group"`
	Active    bool       `json:"active"`
	File      string     `json:"file,omitempty"`
	StoredAt  *time.Time `json:"stored_at,omitempty"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
	ImageURL  string     `json:"image_url,omitempty"`
	ProxyURL  string     `json:"proxy_url,omitempty"`
}

func NewGroupController(logger providers.Logger, service services.GroupServiceInterface, store assets.StoreInterface) *GroupController {
	return &GroupController{
		logger:  logger,
		service: service,
		store:   store,
	}
}

// Visit is the public group page. Every call counts as a visit, whether or
// not the group has an active code.
func (gc *GroupController) Visit(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("name")
	asset, err := gc.service.Visit(r.Context(), group, clientOrigin(r), r.UserAgent())
	if err != nil {
		writeError(w, r, gc.logger, err)
		return
	}

	resp := visitResponse{Group: group}
	if asset != nil {
		storedAt := asset.StoredAt
		raw := requestBaseURL(r) + "/uploads/" + url.PathEscape(group) + "/" + url.PathEscape(asset.Filename)
		resp.Active = true
		resp.File = asset.Filename
		resp.StoredAt = &storedAt
		expiresAt := asset.ExpiresAt(gc.store.Retention())
		resp.ExpiresAt = &expiresAt
		resp.ImageURL = raw
		resp.ProxyURL = imageProxyURL + "?url=" + url.QueryEscape(raw) + "&we=1&v=" + strconv.FormatInt(time.Now().Unix(), 10)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (gc *GroupController) ServeAsset(w http.ResponseWriter, r *http.Request) {
	f, err := gc.store.Open(r.PathValue("name"), r.PathValue("file"))
	if err != nil {
		writeError(w, r, gc.logger, err)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", contentTypeFor(info.Name()))
	http.ServeContent(w, r, info.Name(), info.ModTime(), f)
}
