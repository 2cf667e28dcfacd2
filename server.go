package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/ucond/ucond_backend/config"
	"github.com/ucond/ucond_backend/middlewares"
	"github.com/ucond/ucond_backend/models"
	"github.com/ucond/ucond_backend/notifications"
	"github.com/ucond/ucond_backend/utils"
)

const defaultPort = "8080"

type RateLimiter struct {
	client func() *redis.Client
	limit  int64
	window time.Duration
}

func customNotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"error": "Ruta no encontrada"})
}

func main() {
	decimal.MarshalJSONWithoutQuotes = true

	port := os.Getenv("API_PORT")
	if port == "" {
		// Cloud Run standard env var.
		port = os.Getenv("PORT")
	}
	if port == "" {
		port = defaultPort
	}

	logger := config.GetLogger()

	// Cloud Run sends SIGTERM on revision shutdown; handle it for graceful drain.
	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	store, err := utils.NewContentStore(sigCtx)
	if err != nil {
		logger.WithFields(logrus.Fields{"field": "storage"}).Fatal(err.Error())
	}

	// Start the HTTP server ASAP; until the DB is ready app endpoints answer 503.
	r := newRouter(store, notifications.NewDefaultSweeper)
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- srv.ListenAndServe()
	}()

	config.ConnectDatabaseWithRetry()
	config.ConnectRedisWithRetry(sigCtx, 5)

	// AutoMigrate can block tables; allow running it as a separate job instead.
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("SKIP_MIGRATIONS")), "true") {
		models.MigrateTable()
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	schedulerCtx, cancelScheduler := context.WithCancel(sigCtx)
	defer cancelScheduler()
	if hour, ok := notificationHour(); ok {
		go notifications.Schedule(schedulerCtx, hour, notifications.LocationFromEnv(), runScheduledSweep)
		logger.WithFields(logrus.Fields{"hour": hour}).Info("notification sweep scheduled")
	}

	logger.WithFields(logrus.Fields{
		"info": "Connection Established",
	}).Info("listening on http://localhost:", port, "/api")
	log.Println("Server started successfully")

	select {
	case <-sigCtx.Done():
	case err := <-serverErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithFields(logrus.Fields{"field": "http"}).Error("server stopped unexpectedly: " + err.Error())
		}
	}

	// Stop background work first so nothing new starts while draining.
	cancelScheduler()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithFields(logrus.Fields{"field": "http"}).Error("graceful shutdown failed: " + err.Error())
	}

	config.ClosePubSub()
	config.CloseRedis()
	if err := config.CloseDB(); err != nil {
		logger.WithFields(logrus.Fields{"field": "database"}).Error("closing database: " + err.Error())
	}
}

// newRouter mounts every route under /api with the shared middleware chain.
func newRouter(store utils.ContentStore, newSweeper sweeperFactory) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.CorrelationMiddleware())
	r.Use(func(c *gin.Context) {
		if c.Request.URL.Path == "/healthz" {
			c.Status(http.StatusNoContent)
			c.Abort()
			return
		}
		if config.GetDB() == nil {
			c.AbortWithStatus(http.StatusServiceUnavailable)
			return
		}
		c.Next()
	})
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.Use(cors.New(corsConfig()))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.AuthMiddleware())
	r.Use(middlewares.LoaderMiddleware())

	if local, ok := store.(*utils.LocalStore); ok && strings.HasPrefix(local.BaseURL, "/") {
		r.Static(local.BaseURL, local.Dir)
	}

	api := r.Group("/api")

	auth := api.Group("/auth")
	if limiter := rateLimiterFromEnv(); limiter != nil {
		auth.Use(limiter.RateLimitMiddleware)
	}
	auth.POST("/register", registerHandler())
	auth.POST("/login", loginHandler())

	condominios := api.Group("/condominios")
	condominios.POST("", createCondominioHandler(store))
	condominios.GET("/:id", getCondominioHandler())
	condominios.DELETE("/:id", deleteCondominioHandler())
	condominios.POST("/:id/viviendas", registerViviendasHandler())
	condominios.GET("/:id/metodos_pago", getMetodosPagoHandler())
	condominios.POST("/:id/metodos_pago", replaceMetodosPagoHandler())
	condominios.POST("/:id/comprobante", comprobantePlanHandler(store))
	condominios.GET("/:id/inquilinos", inquilinosHandler())
	condominios.GET("/:id/usuarios/:userId/alicuotas", alicuotasUsuarioHandler())
	condominios.GET("/:id/gastos", getGastosHandler())
	condominios.POST("/:id/gastos", createGastoHandler())
	condominios.GET("/:id/gastos/export", exportGastosHandler())
	condominios.GET("/:id/pagos", getPagosCondominioHandler())
	condominios.GET("/:id/resumen-financiero", resumenFinancieroHandler())
	condominios.GET("/:id/reportes", getReportesHandler())
	condominios.POST("/:id/reportes", createReporteHandler())
	condominios.GET("/:id/anuncios", getAnunciosHandler())
	condominios.POST("/:id/anuncios", createAnuncioHandler())

	usuarios := api.Group("/usuarios")
	usuarios.GET("/:id", getUsuarioHandler())
	usuarios.PUT("/:id", updateUsuarioHandler())
	usuarios.DELETE("/:id", deleteUsuarioHandler())
	usuarios.GET("/:id/condominios", condominiosUsuarioHandler())
	usuarios.GET("/:id/deudas", deudasUsuarioHandler())
	usuarios.GET("/:id/pagos", pagosUsuarioHandler())
	usuarios.GET("/:id/viviendas", viviendasUsuarioHandler())
	usuarios.POST("/:id/pagos", createPagoHandler(store, pagoForUsuario))

	api.PUT("/pagos/:id", confirmPagoHandler())

	viviendas := api.Group("/viviendas")
	viviendas.GET("/:id", getViviendaHandler())
	viviendas.PUT("/:id", updateViviendaHandler())
	viviendas.GET("/:id/deudas", deudasViviendaHandler())
	viviendas.GET("/:id/pagos", pagosViviendaHandler())
	viviendas.POST("/:id/pagos", createPagoHandler(store, pagoForVivienda))

	api.PUT("/reportes/:id/cerrar", cerrarReporteHandler())

	api.GET("/notificaciones", notificacionesHandler(newSweeper))
	r.POST("/pubsub/notificaciones", notificacionesPubSubHandler(newSweeper))

	r.NoRoute(customNotFoundHandler)
	return r
}

// corsConfig requires an explicit allowlist (CORS_ALLOWED_ORIGINS) in production and
// allows every origin elsewhere.
func corsConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	allowedOrigins := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if strings.EqualFold(strings.TrimSpace(os.Getenv("GO_ENV")), "production") {
		if allowedOrigins == "" {
			// Deny all when no allowlist is configured.
			corsConfig.AllowOriginFunc = func(string) bool { return false }
		} else {
			corsConfig.AllowOrigins = splitAndTrim(allowedOrigins)
		}
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AddAllowMethods("GET", "POST", "PUT", "DELETE", "OPTIONS")
	corsConfig.AddAllowHeaders("Origin", "Content-Type", "Authorization", middlewares.CorrelationHeader)
	corsConfig.AddExposeHeaders("Content-Length", "Content-Disposition", middlewares.CorrelationHeader)
	corsConfig.AllowCredentials = true
	return corsConfig
}

func notificationHour() (int, bool) {
	raw := strings.TrimSpace(os.Getenv("NOTIFICATION_HOUR"))
	if raw == "" {
		return 0, false
	}
	hour, err := strconv.Atoi(raw)
	if err != nil || hour < 0 || hour > 23 {
		config.LogError(config.GetLogger(), "server.go", "notificationHour", "invalid NOTIFICATION_HOUR", raw, fmt.Errorf("hour must be 0-23"))
		return 0, false
	}
	return hour, true
}

func runScheduledSweep(ctx context.Context) {
	logger := config.GetLogger()
	sweeper, err := notifications.NewDefaultSweeper()
	if err != nil {
		config.LogError(logger, "server.go", "runScheduledSweep", "NewDefaultSweeper", nil, err)
		return
	}
	report, err := notifications.RunExclusive(ctx, sweeper)
	if err != nil {
		config.LogError(logger, "server.go", "runScheduledSweep", "Run", nil, err)
		return
	}
	logger.WithFields(logrus.Fields{
		"found":   report.Found,
		"sent":    report.Sent,
		"skipped": report.Skipped,
	}).Info("[notificaciones.done]")
}

// rateLimiterFromEnv returns nil unless RATE_LIMIT_ENABLED=true. Limits are read from
// RATE_LIMIT_MAX_REQUESTS (default 600) and RATE_LIMIT_WINDOW_SECONDS (default 60).
func rateLimiterFromEnv() *RateLimiter {
	if !strings.EqualFold(strings.TrimSpace(os.Getenv("RATE_LIMIT_ENABLED")), "true") {
		return nil
	}
	limit := config.IntFromEnv("RATE_LIMIT_MAX_REQUESTS", 600)
	windowSec := config.IntFromEnv("RATE_LIMIT_WINDOW_SECONDS", 60)
	if limit <= 0 {
		limit = 600
	}
	if windowSec <= 0 {
		windowSec = 60
	}
	return NewRateLimiter(config.GetRedisDB, int64(limit), time.Duration(windowSec)*time.Second)
}

// Initialize a new RateLimiter instance.
func NewRateLimiter(client func() *redis.Client, limit int64, window time.Duration) *RateLimiter {
	return &RateLimiter{
		client: client,
		limit:  limit,
		window: window,
	}
}

// RateLimitMiddleware counts requests per client IP in redis. Without a redis connection
// requests pass through.
func (rl *RateLimiter) RateLimitMiddleware(c *gin.Context) {
	client := rl.client()
	if client == nil {
		c.Next()
		return
	}
	key := "ratelimit:" + c.ClientIP()

	count, err := client.Incr(c.Request.Context(), key).Result()
	if err != nil {
		c.AbortWithError(http.StatusInternalServerError, err)
		return
	}
	if count == 1 {
		if err := client.Expire(c.Request.Context(), key, rl.window).Err(); err != nil {
			c.AbortWithError(http.StatusInternalServerError, err)
			return
		}
	}

	if count > rl.limit {
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": fmt.Sprintf("Demasiadas solicitudes. Intente de nuevo en %d segundos", int(rl.window.Seconds())),
		})
		return
	}

	c.Next()
}

func splitAndTrim(csv string) []string {
	if strings.TrimSpace(csv) == "" {
		return nil
	}
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
