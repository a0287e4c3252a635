package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Lalithx4/agroai/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		errorHandlingMiddleware(handler.logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
	)

	api := router.Group("/api/v1")
	{
		api.POST("/analyze", handler.Analyze)

		api.GET("/scans", handler.ScanHistory)
		api.GET("/scans/stats", handler.ScanStats)
		api.GET("/scans/:id", handler.ScanByID)
		api.DELETE("/scans/:id", handler.DeleteScan)
		api.GET("/images/:ref", handler.ScanImage)

		api.POST("/chat", handler.Chat)
		api.GET("/chat/history", handler.ChatHistory)
		api.DELETE("/chat/history", handler.ClearChat)

		api.POST("/weather", handler.Weather)

		api.GET("/settings", handler.Settings)
		api.PUT("/settings", handler.UpdateSetting)

		api.GET("/sync/status", handler.SyncStatus)
		api.POST("/sync/drain", handler.TriggerSync)

		api.POST("/pests/sightings", handler.ReportSighting)
		api.GET("/pests/sightings", handler.RecentSightings)
		api.POST("/pests/risks", handler.PestRisks)

		api.POST("/calendar/crops", handler.AddCrop)
		api.GET("/calendar/crops", handler.Crops)
		api.DELETE("/calendar/crops/:id", handler.RemoveCrop)
		api.GET("/calendar/reminders", handler.UpcomingReminders)
		api.GET("/calendar/reminders/due", handler.DueReminders)
		api.POST("/calendar/reminders/:id/complete", handler.CompleteReminder)

		api.POST("/reset", handler.Reset)
	}
	router.GET("/healthz", handler.Health)

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		if httpErr.Status >= http.StatusInternalServerError {
			logger.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		} else {
			logger.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		}

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}
