package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"wxhm/internal/models"
	"wxhm/internal/services"
	"wxhm/internal/structures"
	"wxhm/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStats(svc *mockStatsService, cache *testutil.MockCache, enabled bool) *StatsController {
	conf := &structures.Config{Cache: structures.CacheConfig{Enabled: enabled}}
	return NewStatsController(conf, &testutil.MockLogger{}, svc, cache)
}

func groupStatsRequest(name string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/admin/stats/"+name, nil)
	req.SetPathValue("name", name)
	return req
}

func TestStats_Group(t *testing.T) {
	svc := &mockStatsService{
		trend: []models.DailyCount{
			{Day: "2024-03-09", Visits: 1, UniqueOrigins: 1},
			{Day: "2024-03-10", Visits: 4, UniqueOrigins: 2},
		},
		breakdown: map[models.ClientClass]int{models.ClassIOS: 3, models.ClassOther: 1},
	}
	sc := newTestStats(svc, testutil.NewMockCache(), false)

	rr := httptest.NewRecorder()
	sc.Group(rr, groupStatsRequest("g"))

	require.Equal(t, http.StatusOK, rr.Code)
	var got services.GroupStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "g", got.Group)
	assert.Equal(t, svc.trend[1], got.Today)
	assert.Len(t, got.Trend, 2)
	assert.Equal(t, 3, got.Breakdown[models.ClassIOS])
	assert.Contains(t, rr.Body.String(), `"pv":4`)
	assert.Contains(t, rr.Body.String(), `"uv":2`)
}

func TestStats_Overview(t *testing.T) {
	svc := &mockStatsService{overview: []services.GroupStats{{Group: "a"}, {Group: "b"}}}
	sc := newTestStats(svc, testutil.NewMockCache(), false)

	rr := httptest.NewRecorder()
	sc.Overview(rr, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var got []services.GroupStats
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[1].Group)
}

func TestStats_CachesWhenEnabled(t *testing.T) {
	svc := &mockStatsService{overview: []services.GroupStats{{Group: "a"}}}
	cache := testutil.NewMockCache()
	sc := newTestStats(svc, cache, true)

	for i := 0; i < 3; i++ {
		rr := httptest.NewRecorder()
		sc.Overview(rr, httptest.NewRequest(http.MethodGet, "/admin/stats", nil))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"group":"a"`)
	}
	assert.Equal(t, 1, svc.calls)
	_, ok := cache.Get("stats:overview")
	assert.True(t, ok)
}

func TestStats_NoCacheWhenDisabled(t *testing.T) {
	svc := &mockStatsService{}
	cache := testutil.NewMockCache()
	sc := newTestStats(svc, cache, false)

	for i := 0; i < 2; i++ {
		sc.Group(httptest.NewRecorder(), groupStatsRequest("g"))
	}
	assert.Equal(t, 2, svc.calls)
	assert.Empty(t, cache.Data)
}

func TestStats_ErrorsAreNotCached(t *testing.T) {
	svc := &mockStatsService{err: models.ErrTransientIO}
	cache := testutil.NewMockCache()
	sc := newTestStats(svc, cache, true)

	rr := httptest.NewRecorder()
	sc.Group(rr, groupStatsRequest("g"))

	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Empty(t, cache.Data)
}
