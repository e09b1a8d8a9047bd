package api

import (
	"encoding/json"
	"time"

	models "GlucoPulse/internal/domain/models"
	domrepo "GlucoPulse/internal/domain/repository"
	icache "GlucoPulse/internal/service/cache"
	"GlucoPulse/internal/service/metrics"
	"GlucoPulse/internal/service/ratelimit"
	"GlucoPulse/internal/usecase"
	pkgcache "GlucoPulse/pkg/cache"
	xhttp "GlucoPulse/pkg/http"
	xlogger "GlucoPulse/pkg/logger"

	"github.com/labstack/echo/v4"
)

// DashboardEchoHandler serves the dashboard analytics endpoints. Responses
// are cached briefly per user; requests are rate limited per remote address.
type DashboardEchoHandler struct {
	logger   *xlogger.Logger
	overview *usecase.DashboardOverviewUseCase
	agg      *usecase.DashboardAggregator
	cache    icache.BytesCache
	rl       *ratelimit.Limiter
}

func NewDashboardEchoHandler(logger *xlogger.Logger, overview *usecase.DashboardOverviewUseCase, agg *usecase.DashboardAggregator) *DashboardEchoHandler {
	metrics.Register()
	return &DashboardEchoHandler{logger: logger, overview: overview, agg: agg, rl: ratelimit.New()}
}

func (h *DashboardEchoHandler) SetCache(c icache.BytesCache) { h.cache = c }

func (h *DashboardEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api/dashboard")
	g.GET("", h.Overview)
	g.GET("/summary", h.Summary)
	g.GET("/timeofday", h.TimeOfDay)
	g.GET("/forecast", h.Forecast)
	g.GET("/alert", h.Alert)
}

func (h *DashboardEchoHandler) Overview(c echo.Context) error {
	start := time.Now()
	endpoint := "overview"
	defer func() { metrics.DashboardLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.DashboardRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if !h.rl.Allow(c.RealIP()+":overview", 5, 2) {
		return xhttp.AppErrorResponse(c, xhttp.NewAppError("rate_limited", "", "too many requests", 429))
	}

	cacheKey := pkgcache.GenerateKeyWithParams("dash", req.UserID, req.Granularity)
	if b, ok := h.cached(cacheKey, endpoint); ok {
		return c.JSONBlob(200, b)
	}

	res, err := h.overview.GetOverview(c.Request().Context(), usecase.GetOverviewParams{
		UserID:      req.UserID,
		Days:        req.Days,
		Granularity: domrepo.NormalizeGranularity(req.Granularity),
		Now:         time.Now().UTC(),
	})
	if err != nil {
		metrics.DashboardErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("dashboard overview error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if res.Alert != nil {
		metrics.AlertsFired.WithLabelValues(string(res.Alert.Trigger)).Inc()
	}
	h.stash(cacheKey, endpoint, res, 30*time.Second)
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Summary(c echo.Context) error {
	start := time.Now()
	endpoint := "summary"
	defer func() { metrics.DashboardLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.SummaryRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.agg.WeeklySummary(c.Request().Context(), req.UserID, req.Days, time.Now().UTC())
	if err != nil {
		metrics.DashboardErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("weekly summary error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) TimeOfDay(c echo.Context) error {
	start := time.Now()
	endpoint := "timeofday"
	defer func() { metrics.DashboardLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.TimeOfDayRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	g := domrepo.NormalizeGranularity(req.Granularity)

	res, err := h.agg.TimeOfDay(c.Request().Context(), req.UserID, req.Days, g, time.Now().UTC())
	if err != nil {
		metrics.DashboardErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("time of day error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Forecast(c echo.Context) error {
	start := time.Now()
	endpoint := "forecast"
	defer func() { metrics.DashboardLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.agg.ForecastView(c.Request().Context(), req.UserID, req.N, time.Now().UTC())
	if err != nil {
		metrics.DashboardErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("forecast error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) Alert(c echo.Context) error {
	start := time.Now()
	endpoint := "alert"
	defer func() { metrics.DashboardLatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds()) }()

	req := &models.AlertRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.agg.Alert(c.Request().Context(), req.UserID, req.N)
	if err != nil {
		metrics.DashboardErrors.WithLabelValues(endpoint).Inc()
		h.logger.Error("alert error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	if res != nil {
		metrics.AlertsFired.WithLabelValues(string(res.Trigger)).Inc()
	}
	// a nil alert is the normal no-breach state
	return xhttp.SuccessResponse(c, res)
}

func (h *DashboardEchoHandler) cached(key, endpoint string) ([]byte, bool) {
	if h.cache == nil {
		return nil, false
	}
	b, ok, err := h.cache.GetBytes(key)
	if err != nil {
		h.logger.Warn("dashboard cache_get_error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
		return nil, false
	}
	if ok {
		h.logger.Debug("dashboard cache_hit", xlogger.String("key", key))
	}
	return b, ok
}

func (h *DashboardEchoHandler) stash(key, endpoint string, v interface{}, ttl time.Duration) {
	if h.cache == nil {
		return
	}
	b, err := json.Marshal(xhttp.APIResponse{Status: 200, Message: "OK", Data: v})
	if err != nil {
		return
	}
	if err := h.cache.SetBytes(key, b, ttl); err != nil {
		h.logger.Warn("dashboard cache_set_error", xlogger.String("endpoint", endpoint), xlogger.Error(err))
	}
}
