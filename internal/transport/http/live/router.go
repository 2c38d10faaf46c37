package livehttp

import (
	"context"
	"net/http"
	"strconv"

	"hypermon/internal/monitor"
	"hypermon/internal/store/alertlog"

	"github.com/gin-gonic/gin"
)

// StatusFunc yields the poller's current status snapshot.
type StatusFunc func() monitor.Status

// JournalReader is the slice of the alert journal the API needs.
type JournalReader interface {
	Recent(ctx context.Context, limit int) ([]alertlog.Record, error)
}

// Router exposes the monitor query endpoints.
type Router struct {
	status  StatusFunc
	journal JournalReader
}

func NewRouter(status StatusFunc, journal JournalReader) *Router {
	return &Router{status: status, journal: journal}
}

// Register mounts the routes under the given group.
func (r *Router) Register(group *gin.RouterGroup) {
	if group == nil {
		return
	}
	group.GET("/status", r.handleStatus)
	if r.journal != nil {
		group.GET("/alerts", r.handleAlerts)
	}
}

func (r *Router) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, r.status())
}

func (r *Router) handleAlerts(c *gin.Context) {
	limit := 50
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	records, err := r.journal.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": records, "count": len(records)})
}
