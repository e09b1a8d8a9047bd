package server

import (
	"context"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	domrepo "GlucoPulse/internal/domain/repository"
	"GlucoPulse/internal/handler/api"
	internalrepo "GlucoPulse/internal/repository"
	icache "GlucoPulse/internal/service/cache"
	analytics "GlucoPulse/internal/services/analytics"
	"GlucoPulse/internal/usecase"
	pkgcache "GlucoPulse/pkg/cache"
	pkgch "GlucoPulse/pkg/clickhouse"
	"GlucoPulse/pkg/config"
	xhttp "GlucoPulse/pkg/http"
	pkgkafka "GlucoPulse/pkg/kafka"
	applogger "GlucoPulse/pkg/logger"
	"GlucoPulse/pkg/queue"

	"github.com/labstack/echo/v4"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg         *config.Config
	collector   *usecase.CGMCollector
	consumer    *pkgkafka.Consumer
	kh          pkgkafka.MessageHandler
	chClient    *pkgch.Client
	storage     domrepo.Storage
	httpServer  *xhttp.Server
	httpHandler xhttp.Handler
	jobQueue    *queue.RedisQueue
	ReadingProc *usecase.ReadingProcessor
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	collector *usecase.CGMCollector,
	consumer *pkgkafka.Consumer,
	kh pkgkafka.MessageHandler,
	chClient *pkgch.Client,
	storage domrepo.Storage,
) *App {
	return &App{
		cfg:       cfg,
		collector: collector,
		consumer:  consumer,
		kh:        kh,
		chClient:  chClient,
		storage:   storage,
	}
}

// SetHTTPHandler allows DI to inject an HTTP handler.
func (a *App) SetHTTPHandler(h xhttp.Handler) { a.httpHandler = h }

// handlerGroup registers multiple route handlers plus health checks.
type handlerGroup struct {
	handlers []xhttp.Handler
	health   func(ctx context.Context) error
}

func (g *handlerGroup) RegisterRoutes(e *echo.Echo) {
	for _, h := range g.handlers {
		h.RegisterRoutes(e)
	}
	e.GET("/healthz", func(c echo.Context) error {
		if g.health != nil {
			if err := g.health(c.Request().Context()); err != nil {
				return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unhealthy", "error": err.Error()})
			}
		}
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// init app logger (console info by default)
	l, _ := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})

	// Setup Echo HTTP server using pkg/http and register routes via handler
	httpHandler := a.httpHandler
	if httpHandler == nil && a.chClient != nil {
		httpHandler = a.buildHandlers(l)
	}

	a.httpServer = xhttp.NewServer(httpHandler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
	)

	// Start collector if the CGM bridge is configured
	if a.cfg.CGM.WebSocketURL != "" {
		go func() {
			if err := a.collector.Start(ctx); err != nil {
				l.Error("collector error", applogger.Error(err))
			}
		}()
		l.Info("collector started", applogger.Strings("user_ids", a.cfg.CGM.UserIDs))
	}

	// Start consumer if configured
	if a.consumer != nil && a.kh != nil {
		a.consumer.RegisterHandler(a.kh)
		go func() {
			if err := a.consumer.Start(); err != nil {
				l.Error("kafka consumer error", applogger.Error(err))
			}
		}()
		l.Info("kafka consumer started", applogger.String("topic", a.kh.Topic()))
	}

	// Start HTTP server
	if err := a.httpServer.Start(); err != nil {
		l.Error("http server start error", applogger.Error(err))
		return err
	}

	// Wait for interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// buildHandlers assembles the analytics pipeline and the HTTP surface.
func (a *App) buildHandlers(l *applogger.Logger) xhttp.Handler {
	table := readingsTable(a.cfg)

	store := internalrepo.NewCHReadingStore(a.chClient, table)
	store.SetLogger(l)

	analyzer := analytics.New(analytics.Config{
		HighAlert:     a.cfg.Analytics.HighAlert,
		LowAlert:      a.cfg.Analytics.LowAlert,
		HighBand:      a.cfg.Analytics.HighBand,
		LowBand:       a.cfg.Analytics.LowBand,
		Horizon:       a.cfg.Analytics.Horizon,
		MinDataPoints: a.cfg.Analytics.MinDataPoints,
		Degree:        a.cfg.Analytics.Degree,
	})

	agg := usecase.NewDashboardAggregator(store, analyzer, analyzer, analyzer, analyzer)
	overview := usecase.NewDashboardOverviewUseCase(agg)
	readings := usecase.NewReadingsUseCase(a.storage)

	var cache icache.BytesCache = icache.NewTTLCache()
	var q queue.QueueService
	if a.cfg.Analytics.Redis.Enabled {
		host, port := splitAddr(a.cfg.Analytics.Redis.Addr)
		rc, err := pkgcache.NewRedisCache(
			pkgcache.WithRedisHost(host),
			pkgcache.WithRedisPort(port),
			pkgcache.WithRedisPassword(a.cfg.Analytics.Redis.Password),
			pkgcache.WithRedisDB(a.cfg.Analytics.Redis.DB),
		)
		if err != nil {
			l.Error("redis cache error, falling back to memory", applogger.Error(err))
		} else {
			cache = icache.NewServiceCache(pkgcache.NewLayeredCache(rc))

			rq := queue.NewRedisQueue(l, &queue.QueueConfig{Workers: 2, RetryLimit: 3}, rc.Client(),
				queue.ModeProducerConsumer, queue.WithKeyPrefix("glucopulse:queue"))
			rq.RegisterJob(usecase.NewExportReportJob(a.storage, cache))
			if err := rq.Start(); err != nil {
				l.Error("export queue start error", applogger.Error(err))
			} else {
				a.jobQueue = rq
				q = rq
			}
		}
	}

	dh := api.NewDashboardEchoHandler(l, overview, agg)
	dh.SetCache(cache)
	rh := api.NewReadingsEchoHandler(l, readings, q, cache)

	return &handlerGroup{
		handlers: []xhttp.Handler{dh, rh},
		health:   a.storage.Health,
	}
}

func splitAddr(addr string) (string, int) {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return addr, 6379
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return host, 6379
	}
	return host, port
}

func readingsTable(cfg *config.Config) string {
	db := cfg.ClickHouse.Database
	if db == "" {
		db = "glucopulse"
	}
	table := cfg.ClickHouse.Table
	if table == "" {
		table = "readings"
	}
	return db + "." + table
}

// shutdown gracefully stops all services.
func (a *App) shutdown(ctx context.Context) error {
	// best-effort logging via stdout
	l, err := applogger.New(&applogger.Config{Level: "info", Format: "console", Output: "stdout"})
	if err != nil {
		log.Printf("failed to create logger: %v", err)
		return err
	}
	l.Info("shutting down...")

	// Stop collector (pipeline + stream)
	if a.cfg.CGM.WebSocketURL != "" {
		if err := a.collector.Shutdown(ctx); err != nil {
			l.Warn("collector stop error", applogger.Error(err))
		}
	}

	// Shutdown HTTP server
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		l.Error("http shutdown error", applogger.Error(err))
	}

	// Stop export queue workers
	if a.jobQueue != nil {
		if err := a.jobQueue.Stop(shutdownCtx); err != nil {
			l.Warn("export queue stop error", applogger.Error(err))
		}
	}

	// Stop consumer
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			l.Warn("kafka consumer stop error", applogger.Error(err))
		}
	}

	// Close reading processor resources (publisher/storage)
	if a.ReadingProc != nil {
		a.ReadingProc.Close()
	}

	// Close infrastructure clients
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	l.Info("shutdown complete")
	return nil
}
