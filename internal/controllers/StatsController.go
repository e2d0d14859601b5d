package controllers

import (
	"net/http"
	"wxhm/internal/providers"
	"wxhm/internal/services"
	"wxhm/internal/structures"

	json "github.com/goccy/go-json"
)

type StatsController struct {
	logger  providers.Logger
	service services.StatsServiceInterface
	cache   providers.CacheProviderInterface
	cached  bool
}

func NewStatsController(conf *structures.Config, logger providers.Logger, service services.StatsServiceInterface, cache providers.CacheProviderInterface) *StatsController {
	return &StatsController{
		logger:  logger,
		service: service,
		cache:   cache,
		cached:  conf.Cache.Enabled,
	}
}

func (sc *StatsController) serveFromCacheOrCompute(w http.ResponseWriter, r *http.Request, cacheKey string, compute func() (any, error)) {
	if sc.cached {
		if data, ok := sc.cache.Get(cacheKey); ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write(data)
			return
		}
	}

	result, err := compute()
	if err != nil {
		writeError(w, r, sc.logger, err)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	if sc.cached {
		sc.cache.Set(cacheKey, gson)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (sc *StatsController) Overview(w http.ResponseWriter, r *http.Request) {
	sc.serveFromCacheOrCompute(w, r, "stats:overview", func() (any, error) {
		return sc.service.GetOverview(r.Context())
	})
}

func (sc *StatsController) Group(w http.ResponseWriter, r *http.Request) {
	group := r.PathValue("name")
	sc.serveFromCacheOrCompute(w, r, "stats:group:"+group, func() (any, error) {
		trend, err := sc.service.GetTrend(r.Context(), group)
		if err != nil {
			return nil, err
		}
		breakdown, err := sc.service.GetBreakdown(r.Context(), group)
		if err != nil {
			return nil, err
		}
		gs := services.GroupStats{Group: group, Trend: trend, Breakdown: breakdown}
		if len(trend) > 0 {
			gs.Today = trend[len(trend)-1]
		}
		return gs, nil
	})
}
