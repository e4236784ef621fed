package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"thermohub/internal/service"
)

const (
	statusOK       = "ok"
	statusAccepted = "accepted"

	errGetHistory = "failed to load history"
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// Request DTO for the location command.
type locationRequest struct {
	Location string `json:"location" binding:"required"`
}

// UpdateLocationRequest is an exported model for Swagger docs of the
// location command payload.
type UpdateLocationRequest struct {
	// Weather location the controller should track
	Location string `json:"location" example:"London"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Current thermostat state
// @Description  Latest sensor reading, latest controller status, and the heating action they imply. Null fields mean that source has not reported yet.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  service.Snapshot
// @Router       /api/v1/state [get]
func (h *Handler) getState(c *gin.Context) {
	c.JSON(http.StatusOK, h.services.Monitoring.Snapshot())
}

// @Summary      Today's log
// @Description  Every record persisted today, ordered by timestamp ascending, for charting.
// @Tags         dashboard
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, records"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/history [get]
func (h *Handler) getHistory(c *gin.Context) {
	records, err := h.services.History.Today(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetHistory, "history_load_failed", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"count":   len(records),
		"records": records,
	})
}

// @Summary      Update weather location
// @Description  Forwards an UPDATE_LOCATION command to the controller. The effect arrives later as a controller_status event on the live feed.
// @Tags         dashboard
// @Accept       json
// @Produce      json
// @Param        body  body   UpdateLocationRequest  true  "Location payload"
// @Success      202   {object}  map[string]string
// @Failure      400   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /api/v1/location [post]
func (h *Handler) updateLocation(c *gin.Context) {
	var req locationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body: " + err.Error()})
		return
	}

	if err := h.services.Commands.RequestLocationUpdate(req.Location); err != nil {
		var vErr *service.ValidationError
		if errors.As(err, &vErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Error()})
			return
		}
		h.logAndJSONError(c, http.StatusBadGateway, "failed to send command", "location_command_failed", err, "location", req.Location)
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"status": statusAccepted})
}
