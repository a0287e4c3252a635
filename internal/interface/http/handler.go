package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Lalithx4/agroai/internal/domain/cache"
	"github.com/Lalithx4/agroai/internal/domain/calendar"
	"github.com/Lalithx4/agroai/internal/domain/chat"
	"github.com/Lalithx4/agroai/internal/domain/connectivity"
	"github.com/Lalithx4/agroai/internal/domain/pest"
	"github.com/Lalithx4/agroai/internal/domain/scan"
	"github.com/Lalithx4/agroai/internal/domain/syncqueue"
	"github.com/Lalithx4/agroai/internal/domain/weather"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	scanSvc     scan.Service
	chatSvc     *chat.Service
	weatherSvc  *weather.Service
	pestSvc     *pest.Service
	calendarSvc *calendar.Service
	cacheSvc    *cache.Service
	queue       *syncqueue.Queue
	monitor     *connectivity.Monitor
	logger      *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(scanSvc scan.Service, chatSvc *chat.Service, weatherSvc *weather.Service, pestSvc *pest.Service, calendarSvc *calendar.Service, cacheSvc *cache.Service, queue *syncqueue.Queue, monitor *connectivity.Monitor, logger *slog.Logger) *Handler {
	return &Handler{
		scanSvc:     scanSvc,
		chatSvc:     chatSvc,
		weatherSvc:  weatherSvc,
		pestSvc:     pestSvc,
		calendarSvc: calendarSvc,
		cacheSvc:    cacheSvc,
		queue:       queue,
		monitor:     monitor,
		logger:      logger.With("component", "http.handler"),
	}
}

type analyzeRequest struct {
	ImageBase64 string `json:"imageBase64" binding:"required"`
	PlantType   string `json:"plantType"`
	Language    string `json:"language"`
}

// Analyze runs a plant health analysis, online or offline.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	result, err := h.scanSvc.Analyze(c.Request.Context(), scan.Request{
		ImageBase64: req.ImageBase64,
		PlantType:   req.PlantType,
		Language:    req.Language,
	})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scan":    result.Scan,
		"summary": result.Summary,
		"offline": result.Offline,
		"queued":  result.Queued,
	})
}

// ScanHistory lists past scans, newest first.
func (h *Handler) ScanHistory(c *gin.Context) {
	scans := h.cacheSvc.ScanHistory(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"scans": scans, "count": len(scans)})
}

// ScanByID returns one scan.
func (h *Handler) ScanByID(c *gin.Context) {
	rec, ok := h.cacheSvc.ScanByID(c.Request.Context(), c.Param("id"))
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "scan not found", nil))
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DeleteScan removes one scan from history, including its stored image.
func (h *Handler) DeleteScan(c *gin.Context) {
	h.scanSvc.Delete(c.Request.Context(), c.Param("id"))
	c.Status(http.StatusNoContent)
}

// ScanImage serves the stored image for a scan.
func (h *Handler) ScanImage(c *gin.Context) {
	data, mimeType, err := h.scanSvc.Image(c.Request.Context(), c.Param("ref"))
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "not_found", "image not found", err))
		return
	}
	c.Data(http.StatusOK, mimeType, data)
}

// ScanStats summarizes the scan history.
func (h *Handler) ScanStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.cacheSvc.Stats(c.Request.Context()))
}

type chatRequest struct {
	Message   string `json:"message" binding:"required"`
	PlantType string `json:"plantType"`
	Language  string `json:"language"`
}

// Chat sends one user message to the plant persona.
func (h *Handler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	reply, err := h.chatSvc.Send(c.Request.Context(), chat.Request{
		Message:   req.Message,
		PlantType: req.PlantType,
		Language:  req.Language,
	})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": reply.Message,
		"emotion": reply.Emotion,
		"tip":     reply.Tip,
	})
}

// ChatHistory returns the stored transcript.
func (h *Handler) ChatHistory(c *gin.Context) {
	messages := h.chatSvc.History(c.Request.Context(), 0)
	c.JSON(http.StatusOK, gin.H{"messages": messages, "count": len(messages)})
}

// ClearChat empties the transcript.
func (h *Handler) ClearChat(c *gin.Context) {
	h.chatSvc.Clear(c.Request.Context())
	c.Status(http.StatusNoContent)
}

type weatherRequest struct {
	Latitude    float64 `json:"latitude"`
	Longitude   float64 `json:"longitude"`
	ImageBase64 string  `json:"imageBase64"`
	Language    string  `json:"language"`
}

// Weather returns the advisory for the given (or stored) coordinates.
func (h *Handler) Weather(c *gin.Context) {
	var req weatherRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	report, err := h.weatherSvc.Advise(c.Request.Context(), weather.Request{
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ImageBase64: req.ImageBase64,
		Language:    req.Language,
	})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":    report.Payload,
		"fromCache": report.FromCache,
		"latitude":  report.Latitude,
		"longitude": report.Longitude,
	})
}

// Settings returns the stored preferences.
func (h *Handler) Settings(c *gin.Context) {
	c.JSON(http.StatusOK, h.cacheSvc.Settings(c.Request.Context()))
}

type settingUpdateRequest struct {
	Name  string `json:"name" binding:"required"`
	Value any    `json:"value"`
}

// UpdateSetting changes one preference, leaving the rest intact.
func (h *Handler) UpdateSetting(c *gin.Context) {
	var req settingUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	if err := h.cacheSvc.UpdateSetting(c.Request.Context(), req.Name, req.Value); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusOK, h.cacheSvc.Settings(c.Request.Context()))
}

// SyncStatus reports connectivity and queue state.
func (h *Handler) SyncStatus(c *gin.Context) {
	ctx := c.Request.Context()
	c.JSON(http.StatusOK, gin.H{
		"online":  h.monitor.IsOnline(),
		"pending": h.queue.PendingCount(ctx),
		"items":   h.queue.Items(ctx),
	})
}

// TriggerSync runs a drain pass immediately.
func (h *Handler) TriggerSync(c *gin.Context) {
	h.queue.Drain(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"pending": h.queue.PendingCount(c.Request.Context())})
}

type sightingRequest struct {
	Pest      string  `json:"pest" binding:"required"`
	Severity  string  `json:"severity"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Notes     string  `json:"notes"`
}

// ReportSighting records a community pest sighting.
func (h *Handler) ReportSighting(c *gin.Context) {
	var req sightingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	sighting, err := h.pestSvc.ReportSighting(c.Request.Context(), pest.Report{
		Pest:      req.Pest,
		Severity:  req.Severity,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
		Notes:     req.Notes,
	})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, sighting)
}

// RecentSightings lists sightings from the last days window.
func (h *Handler) RecentSightings(c *gin.Context) {
	days := intQuery(c, "days", 7)
	sightings := h.pestSvc.RecentSightings(c.Request.Context(), days)
	c.JSON(http.StatusOK, gin.H{"sightings": sightings, "count": len(sightings)})
}

type pestRiskRequest struct {
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
}

// PestRisks scores the known pests against given weather conditions.
func (h *Handler) PestRisks(c *gin.Context) {
	var req pestRiskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	risks := h.pestSvc.Risks(pest.Weather{Temperature: req.Temperature, Humidity: req.Humidity})
	c.JSON(http.StatusOK, gin.H{"risks": risks})
}

type addCropRequest struct {
	Name      string     `json:"name" binding:"required"`
	Type      string     `json:"type"`
	PlantedAt *time.Time `json:"plantedAt"`
	FieldName string     `json:"fieldName"`
	Area      string     `json:"area"`
	Notes     string     `json:"notes"`
}

// AddCrop registers a planting and schedules its reminders.
func (h *Handler) AddCrop(c *gin.Context) {
	var req addCropRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	planted := time.Time{}
	if req.PlantedAt != nil {
		planted = *req.PlantedAt
	}
	crop, err := h.calendarSvc.AddCrop(c.Request.Context(), calendar.AddCropRequest{
		Name:      req.Name,
		Type:      req.Type,
		PlantedAt: planted,
		FieldName: req.FieldName,
		Area:      req.Area,
		Notes:     req.Notes,
	})
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.JSON(http.StatusCreated, crop)
}

// Crops lists tracked plantings.
func (h *Handler) Crops(c *gin.Context) {
	crops := h.calendarSvc.Crops(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"crops": crops, "count": len(crops)})
}

// RemoveCrop deletes a planting and its reminders.
func (h *Handler) RemoveCrop(c *gin.Context) {
	if err := h.calendarSvc.RemoveCrop(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// UpcomingReminders lists open reminders within the window.
func (h *Handler) UpcomingReminders(c *gin.Context) {
	days := intQuery(c, "days", 7)
	reminders := h.calendarSvc.UpcomingReminders(c.Request.Context(), days)
	c.JSON(http.StatusOK, gin.H{"reminders": reminders, "count": len(reminders)})
}

// DueReminders lists open reminders due today.
func (h *Handler) DueReminders(c *gin.Context) {
	reminders := h.calendarSvc.DueReminders(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"reminders": reminders, "count": len(reminders)})
}

// CompleteReminder marks one reminder done.
func (h *Handler) CompleteReminder(c *gin.Context) {
	if err := h.calendarSvc.CompleteReminder(c.Request.Context(), c.Param("id")); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Reset clears every namespaced key and every stored image, restoring
// factory state.
func (h *Handler) Reset(c *gin.Context) {
	ctx := c.Request.Context()
	if err := h.cacheSvc.ClearAll(ctx); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	if err := h.scanSvc.ClearImages(ctx); err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}
	c.Status(http.StatusNoContent)
}

// Health is the liveness endpoint.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "online": h.monitor.IsOnline()})
}

func intQuery(c *gin.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return fallback
	}
	return v
}
