package api

import (
	"net/http"

	models "GlucoPulse/internal/domain/models"
	icache "GlucoPulse/internal/service/cache"
	"GlucoPulse/internal/service/metrics"
	"GlucoPulse/internal/usecase"
	xhttp "GlucoPulse/pkg/http"
	xlogger "GlucoPulse/pkg/logger"
	"GlucoPulse/pkg/queue"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// ReadingsEchoHandler serves the readings CRUD surface and the CSV export
// flow. Exports run off the request path through the queue; finished files
// are staged in the cache for download.
type ReadingsEchoHandler struct {
	logger   *xlogger.Logger
	readings *usecase.ReadingsUseCase
	queue    queue.QueueService
	cache    icache.BytesCache
}

func NewReadingsEchoHandler(logger *xlogger.Logger, readings *usecase.ReadingsUseCase, q queue.QueueService, cache icache.BytesCache) *ReadingsEchoHandler {
	metrics.Register()
	return &ReadingsEchoHandler{logger: logger, readings: readings, queue: q, cache: cache}
}

func (h *ReadingsEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/readings", h.List)
	g.POST("/readings", h.Create)
	g.PUT("/readings/:id", h.Update)
	g.DELETE("/readings/:id", h.Delete)
	g.POST("/export", h.Export)
	g.GET("/export/:id", h.Download)
}

func (h *ReadingsEchoHandler) List(c echo.Context) error {
	req := &models.ListReadingsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.readings.List(c.Request().Context(), usecase.ListReadingsParams{
		UserID: req.UserID,
		Page:   req.Page,
		Limit:  req.Limit,
	})
	if err != nil {
		metrics.DashboardErrors.WithLabelValues("readings_list").Inc()
		h.logger.Error("list readings error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.ListResponse(c, res.Readings, int64(res.Count))
}

func (h *ReadingsEchoHandler) Create(c echo.Context) error {
	req := &models.CreateReadingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	r, err := h.readings.Create(c.Request().Context(), req)
	if err != nil {
		metrics.DashboardErrors.WithLabelValues("readings_create").Inc()
		h.logger.Error("create reading error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.CreatedResponse(c, r)
}

func (h *ReadingsEchoHandler) Update(c echo.Context) error {
	id := c.Param("id")
	req := &models.UpdateReadingRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	r, err := h.readings.Update(c.Request().Context(), id, req)
	if err != nil {
		metrics.DashboardErrors.WithLabelValues("readings_update").Inc()
		h.logger.Error("update reading error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.SuccessResponse(c, r)
}

func (h *ReadingsEchoHandler) Delete(c echo.Context) error {
	id := c.Param("id")
	userID := c.QueryParam("user_id")
	if err := h.readings.Delete(c.Request().Context(), userID, id); err != nil {
		metrics.DashboardErrors.WithLabelValues("readings_delete").Inc()
		h.logger.Error("delete reading error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, err)
	}
	return xhttp.NoContentResponse(c)
}

func (h *ReadingsEchoHandler) Export(c echo.Context) error {
	req := &models.ExportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	if h.queue == nil {
		return xhttp.AppErrorResponse(c, xhttp.InternalError("export queue unavailable"))
	}

	exportID := uuid.NewString()
	payload := usecase.ExportPayload{ExportID: exportID, UserID: req.UserID, Days: req.Days}
	if err := h.queue.PublishMessage(c.Request().Context(), usecase.ExportJobType, payload); err != nil {
		metrics.DashboardErrors.WithLabelValues("export").Inc()
		h.logger.Error("enqueue export error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("enqueue export"))
	}
	h.logger.Info("export enqueued",
		xlogger.String("export_id", exportID),
		xlogger.String("user_id", req.UserID),
		xlogger.Int("days", req.Days))

	return xhttp.DataResponse(c, http.StatusAccepted, map[string]string{
		"export_id": exportID,
		"status":    "pending",
	})
}

func (h *ReadingsEchoHandler) Download(c echo.Context) error {
	id := c.Param("id")
	if id == "" || h.cache == nil {
		return xhttp.NotFoundResponse(c, "export not found")
	}
	b, ok, err := h.cache.GetBytes(usecase.ExportKey(id))
	if err != nil {
		h.logger.Warn("export cache_get_error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("export fetch"))
	}
	if !ok {
		// still running, expired, or never existed
		return xhttp.DataResponse(c, http.StatusNotFound, map[string]string{
			"export_id": id,
			"status":    "not_ready",
		})
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="readings-`+id+`.csv"`)
	return c.Blob(http.StatusOK, "text/csv", b)
}
