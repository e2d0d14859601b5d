package notify

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"wxhm/internal/models"
	"wxhm/internal/providers"
	"wxhm/internal/structures"

	json "github.com/goccy/go-json"
)

const (
	tokenPath        = "/cgi-bin/token"
	templateSendPath = "/cgi-bin/message/template/send"

	// tokens are refreshed this long before WeChat expires them
	tokenEarlyRefresh = 300 * time.Second
	maxResponseBody   = 1 << 20
)

type ChannelInterface interface {
	Send(ctx context.Context, cfg *models.ChannelConfig, msg *TemplateMessage) (*SendResult, error)
}

type SendResult struct {
	MsgID int64 `json:"msgid"`
}

// APIError is a non-zero errcode answered by the WeChat API.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wechat api error %d: %s", e.Code, e.Message)
}

func (e *APIError) tokenRejected() bool {
	return e.Code == 40001 || e.Code == 40014 || e.Code == 42001
}

type apiResponse struct {
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	MsgID       int64  `json:"msgid"`
}

type WeChatChannel struct {
	baseURL string
	client  *http.Client
	cache   providers.CacheProviderInterface
	logger  providers.Logger
}

func NewWeChatChannel(conf *structures.Config, cache providers.CacheProviderInterface, logger providers.Logger) ChannelInterface {
	return &WeChatChannel{
		baseURL: strings.TrimRight(conf.Notify.BaseURL, "/"),
		client:  &http.Client{Timeout: conf.Notify.Timeout},
		cache:   cache,
		logger:  logger,
	}
}

func tokenCacheKey(appID, secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return "wechat:token:" + appID + ":" + hex.EncodeToString(sum[:8])
}

func (c *WeChatChannel) call(ctx context.Context, method, path string, query url.Values, body any) (*apiResponse, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%w: encode request: %v", models.ErrValidation, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+query.Encode(), reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %w", models.ErrTransientIO, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s %s: http status %d", models.ErrTransientIO, method, path, resp.StatusCode)
	}

	var out apiResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decode %s response: %w", models.ErrTransientIO, path, err)
	}
	if out.ErrCode != 0 {
		return &out, &APIError{Code: out.ErrCode, Message: out.ErrMsg}
	}
	return &out, nil
}

// AccessToken returns a cached token for the app, fetching a new one when
// the cache has none or force is set.
func (c *WeChatChannel) AccessToken(ctx context.Context, appID, secret string, force bool) (string, error) {
	key := tokenCacheKey(appID, secret)
	if !force {
		if tok, ok := c.cache.Get(key); ok {
			return string(tok), nil
		}
	}

	q := url.Values{}
	q.Set("grant_type", "client_credential")
	q.Set("appid", appID)
	q.Set("secret", secret)

	resp, err := c.call(ctx, http.MethodGet, tokenPath, q, nil)
	if err != nil {
		return "", fmt.Errorf("fetch access token: %w", err)
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: token response without access_token", models.ErrTransientIO)
	}

	expiresIn := resp.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 7200
	}
	ttl := time.Duration(expiresIn)*time.Second - tokenEarlyRefresh
	if ttl > 0 {
		c.cache.SetTTL(key, []byte(resp.AccessToken), ttl)
	}
	c.logger.Debugf(providers.TypeNotify, "Fetched access token for %s, valid %ds", appID, expiresIn)
	return resp.AccessToken, nil
}

// Send posts one template message. A rejected token is dropped from the
// cache but the message is not retried.
func (c *WeChatChannel) Send(ctx context.Context, cfg *models.ChannelConfig, msg *TemplateMessage) (*SendResult, error) {
	token, err := c.AccessToken(ctx, cfg.AppID, cfg.Secret, false)
	if err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("access_token", token)
	resp, err := c.call(ctx, http.MethodPost, templateSendPath, q, msg)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.tokenRejected() {
			c.cache.Del(tokenCacheKey(cfg.AppID, cfg.Secret))
		}
		return nil, fmt.Errorf("send template message: %w", err)
	}
	return &SendResult{MsgID: resp.MsgID}, nil
}
