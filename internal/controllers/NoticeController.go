package controllers

import (
	"fmt"
	"net/http"
	"strings"
	"wxhm/internal/models"
	"wxhm/internal/notify"
	"wxhm/internal/providers"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"
)

type NoticeController struct {
	logger     providers.Logger
	configs    notify.ConfigRepositoryInterface
	dispatcher notify.DispatcherInterface
}

type channelConfigView struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	AppID          string   `json:"appid"`
	Secret         string   `json:"secret"`
	Recipient      string   `json:"touser"`
	TemplateID     string   `json:"template_id"`
	TemplateFields []string `json:"template_fields"`
	RedirectURL    string   `json:"url"`
	UpdatedAt      string   `json:"updated_at"`
	Current        bool     `json:"current"`
}

// channelConfigInput is what Save accepts as JSON. It mirrors the view so an
// edited view can be posted back; updated_at and current are ignored.
type channelConfigInput struct {
	ID             int64    `json:"id"`
	Name           string   `json:"name"`
	AppID          string   `json:"appid"`
	Secret         string   `json:"secret"`
	Recipient      string   `json:"touser"`
	TemplateID     string   `json:"template_id"`
	TemplateFields []string `json:"template_fields"`
	RedirectURL    string   `json:"url"`
}

type noticeListResponse struct {
	Configs []channelConfigView `json:"configs"`
	Edit    *channelConfigView  `json:"edit,omitempty"`
}

type sendTestResponse struct {
	ConfigID int64 `json:"config_id"`
	MsgID    int64 `json:"msgid"`
}

func NewNoticeController(logger providers.Logger, configs notify.ConfigRepositoryInterface, dispatcher notify.DispatcherInterface) *NoticeController {
	return &NoticeController{
		logger:     logger,
		configs:    configs,
		dispatcher: dispatcher,
	}
}

// maskSecret keeps the last four characters of a secret.
func maskSecret(s string) string {
	if len(s) <= 4 {
		return strings.Repeat("*", len(s))
	}
	return strings.Repeat("*", len(s)-4) + s[len(s)-4:]
}

func newChannelConfigView(cfg models.ChannelConfig, current bool) channelConfigView {
	return channelConfigView{
		ID:             cfg.ID,
		Name:           cfg.Name,
		AppID:          cfg.AppID,
		Secret:         maskSecret(cfg.Secret),
		Recipient:      cfg.Recipient,
		TemplateID:     cfg.TemplateID,
		TemplateFields: cfg.TemplateFields,
		RedirectURL:    cfg.RedirectURL,
		UpdatedAt:      cfg.UpdatedAt.Local().Format(notify.TimeLayout),
		Current:        current,
	}
}

func pathID(r *http.Request) (int64, error) {
	id, err := cast.ToInt64E(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid config id %q", models.ErrValidation, r.PathValue("id"))
	}
	return id, nil
}

// List answers every stored config, most recently updated first. The first
// entry is the one the dispatcher uses. With ?edit=<id> the named config is
// returned as well.
func (nc *NoticeController) List(w http.ResponseWriter, r *http.Request) {
	configs, err := nc.configs.List(r.Context())
	if err != nil {
		writeError(w, r, nc.logger, err)
		return
	}

	resp := noticeListResponse{Configs: make([]channelConfigView, 0, len(configs))}
	for i, cfg := range configs {
		resp.Configs = append(resp.Configs, newChannelConfigView(cfg, i == 0))
	}

	if raw := r.URL.Query().Get("edit"); raw != "" {
		id, err := cast.ToInt64E(raw)
		if err != nil {
			writeError(w, r, nc.logger, fmt.Errorf("%w: invalid edit id %q", models.ErrValidation, raw))
			return
		}
		cfg, err := nc.configs.Get(r.Context(), id)
		if err != nil {
			writeError(w, r, nc.logger, err)
			return
		}
		view := newChannelConfigView(*cfg, len(configs) > 0 && configs[0].ID == cfg.ID)
		resp.Edit = &view
	}
	writeJSON(w, http.StatusOK, resp)
}

func decodeChannelConfig(r *http.Request) (*models.ChannelConfig, error) {
	var cfg models.ChannelConfig
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var in channelConfigInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			return nil, fmt.Errorf("%w: %v", models.ErrValidation, err)
		}
		return &models.ChannelConfig{
			ID:             in.ID,
			Name:           strings.TrimSpace(in.Name),
			AppID:          in.AppID,
			Secret:         in.Secret,
			Recipient:      in.Recipient,
			TemplateID:     in.TemplateID,
			TemplateFields: in.TemplateFields,
			RedirectURL:    in.RedirectURL,
		}, nil
	}

	fields, err := notify.ParseTemplateFields(r.FormValue("template_fields"))
	if err != nil {
		return nil, err
	}
	cfg.TemplateFields = fields
	if raw := r.FormValue("id"); raw != "" {
		if cfg.ID, err = cast.ToInt64E(raw); err != nil {
			return nil, fmt.Errorf("%w: invalid id %q", models.ErrValidation, raw)
		}
	}
	cfg.Name = strings.TrimSpace(r.FormValue("name"))
	cfg.AppID = r.FormValue("appid")
	cfg.Secret = r.FormValue("secret")
	cfg.Recipient = r.FormValue("touser")
	cfg.TemplateID = r.FormValue("template_id")
	cfg.RedirectURL = r.FormValue("url")
	return &cfg, nil
}

// Save creates a config, or updates it when an id is given. An update whose
// secret is empty or still the masked value keeps the stored one.
func (nc *NoticeController) Save(w http.ResponseWriter, r *http.Request) {
	cfg, err := decodeChannelConfig(r)
	if err != nil {
		writeError(w, r, nc.logger, err)
		return
	}

	if cfg.ID != 0 {
		existing, err := nc.configs.Get(r.Context(), cfg.ID)
		if err != nil {
			writeError(w, r, nc.logger, err)
			return
		}
		if secret := strings.TrimSpace(cfg.Secret); secret == "" || secret == maskSecret(existing.Secret) {
			cfg.Secret = existing.Secret
		}
	}

	saved, err := nc.configs.Save(r.Context(), cfg)
	if err != nil {
		writeError(w, r, nc.logger, err)
		return
	}
	status := http.StatusOK
	if cfg.ID == 0 {
		status = http.StatusCreated
	}
	writeJSON(w, status, newChannelConfigView(*saved, true))
}

func (nc *NoticeController) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, nc.logger, err)
		return
	}
	if err := nc.configs.Delete(r.Context(), id); err != nil {
		writeError(w, r, nc.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Send delivers a sample message through the config and reports the outcome.
func (nc *NoticeController) Send(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, nc.logger, err)
		return
	}
	res, err := nc.dispatcher.SendTest(r.Context(), id)
	if err != nil {
		writeError(w, r, nc.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, sendTestResponse{ConfigID: id, MsgID: res.MsgID})
}
