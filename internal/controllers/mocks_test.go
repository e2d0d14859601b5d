package controllers

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"
	"wxhm/internal/models"
	"wxhm/internal/services"

	"github.com/stretchr/testify/require"
)

// --- local mocks (scoped to controller tests) ---

type visitCall struct {
	group, origin, userAgent string
}

type mockGroupService struct {
	active    map[string]*models.GroupAsset
	groups    []string
	err       error
	visits    []visitCall
	stored    map[string][]byte
	origins   []string
	renamed   [][2]string
	deleted   []string
	shareURLs []string
	shareSize int
}

func newMockGroupService() *mockGroupService {
	return &mockGroupService{active: make(map[string]*models.GroupAsset), stored: make(map[string][]byte)}
}

func (m *mockGroupService) GetActiveAsset(_ context.Context, group string) (*models.GroupAsset, error) {
	return m.active[group], m.err
}
func (m *mockGroupService) RecordVisit(_ context.Context, _, _ string, _ models.ClientClass) {}
func (m *mockGroupService) Visit(_ context.Context, group, origin, userAgent string) (*models.GroupAsset, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.visits = append(m.visits, visitCall{group, origin, userAgent})
	return m.active[group], nil
}
func (m *mockGroupService) StoreAsset(_ context.Context, group string, raw []byte, origin string) (*models.GroupAsset, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.stored[group] = raw
	m.origins = append(m.origins, origin)
	return &models.GroupAsset{Group: group, Filename: "qr_1.webp", StoredAt: time.Now()}, nil
}
func (m *mockGroupService) RenameGroup(_ context.Context, group, newName, origin string) error {
	if m.err != nil {
		return m.err
	}
	m.renamed = append(m.renamed, [2]string{group, newName})
	m.origins = append(m.origins, origin)
	return nil
}
func (m *mockGroupService) DeleteGroup(_ context.Context, group, origin string) error {
	if m.err != nil {
		return m.err
	}
	m.deleted = append(m.deleted, group)
	m.origins = append(m.origins, origin)
	return nil
}
func (m *mockGroupService) NotifyEvent(_ models.NotificationEvent) {}
func (m *mockGroupService) ListGroups() ([]string, error) {
	return m.groups, m.err
}
func (m *mockGroupService) ShareCode(_, pageURL string, size int) ([]byte, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.shareURLs = append(m.shareURLs, pageURL)
	m.shareSize = size
	return []byte("\x89PNG"), nil
}

type mockStatsService struct {
	trend     []models.DailyCount
	breakdown map[models.ClientClass]int
	overview  []services.GroupStats
	err       error
	calls     int
}

func (m *mockStatsService) GetTrend(_ context.Context, _ string) ([]models.DailyCount, error) {
	m.calls++
	return m.trend, m.err
}
func (m *mockStatsService) GetBreakdown(_ context.Context, _ string) (map[models.ClientClass]int, error) {
	return m.breakdown, m.err
}
func (m *mockStatsService) GetOverview(_ context.Context) ([]services.GroupStats, error) {
	m.calls++
	return m.overview, m.err
}

// mockConfigs keeps configs in memory; the highest UpdatedAt is current.
type mockConfigs struct {
	items  map[int64]models.ChannelConfig
	nextID int64
	saved  []models.ChannelConfig
	err    error
}

func newMockConfigs(cfgs ...models.ChannelConfig) *mockConfigs {
	m := &mockConfigs{items: make(map[int64]models.ChannelConfig)}
	for _, c := range cfgs {
		m.items[c.ID] = c
		m.nextID = max(m.nextID, c.ID)
	}
	return m
}

func (m *mockConfigs) Save(_ context.Context, cfg *models.ChannelConfig) (*models.ChannelConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	saved := *cfg
	if saved.ID == 0 {
		m.nextID++
		saved.ID = m.nextID
	} else if _, ok := m.items[saved.ID]; !ok {
		return nil, models.ErrNotFound
	}
	saved.UpdatedAt = time.Now()
	m.items[saved.ID] = saved
	m.saved = append(m.saved, saved)
	return &saved, nil
}
func (m *mockConfigs) Get(_ context.Context, id int64) (*models.ChannelConfig, error) {
	cfg, ok := m.items[id]
	if !ok {
		return nil, models.ErrNotFound
	}
	return &cfg, nil
}
func (m *mockConfigs) List(_ context.Context) ([]models.ChannelConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	out := make([]models.ChannelConfig, 0, len(m.items))
	for _, c := range m.items {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}
func (m *mockConfigs) Delete(_ context.Context, id int64) error {
	if _, ok := m.items[id]; !ok {
		return models.ErrNotFound
	}
	delete(m.items, id)
	return nil
}
func (m *mockConfigs) Current(ctx context.Context) (*models.ChannelConfig, error) {
	list, err := m.List(ctx)
	if err != nil || len(list) == 0 {
		return nil, err
	}
	return &list[0], nil
}

var errBoom = errors.New("boom")

// --- helpers ---

func multipartRequest(t *testing.T, target string, fields map[string]string, fileField, filename string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	if fileField != "" {
		fw, err := mw.CreateFormFile(fileField, filename)
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}
