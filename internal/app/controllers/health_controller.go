package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yigit/applicant-wizard/internal/app/models/dto"
)

// Pinger is satisfied by *pgxpool.Pool
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthController reports liveness and dependency status
type HealthController struct {
	db        Pinger
	store     string
	demoMode  bool
	startedAt time.Time
}

// NewHealthController creates a new HealthController. db may be nil when
// sessions are kept in memory.
func NewHealthController(db Pinger, store string, demoMode bool) *HealthController {
	return &HealthController{
		db:        db,
		store:     store,
		demoMode:  demoMode,
		startedAt: time.Now(),
	}
}

// Ping is a liveness probe
func (h *HealthController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"message": "pong", "status": "success"})
}

// Health reports dependency status
// @Summary Service health
// @Tags health
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.HealthResponse} "Service healthy"
// @Failure 503 {object} dto.APIResponse{data=dto.HealthResponse} "A dependency is down"
// @Router /health [get]
func (h *HealthController) Health(ctx *gin.Context) {
	resp := dto.HealthResponse{
		Status:       "ok",
		SessionStore: h.store,
		Database:     "not used",
		DemoMode:     h.demoMode,
		Uptime:       time.Since(h.startedAt).Round(time.Second).String(),
	}

	if h.db != nil {
		pingCtx, cancel := context.WithTimeout(ctx.Request.Context(), 2*time.Second)
		defer cancel()
		if err := h.db.Ping(pingCtx); err != nil {
			resp.Status = "degraded"
			resp.Database = "unreachable"
			ctx.JSON(http.StatusServiceUnavailable, dto.APIResponse{
				Success:   false,
				Message:   "Database unreachable",
				Data:      resp,
				Timestamp: time.Now(),
			})
			return
		}
		resp.Database = "ok"
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(resp, ""))
}
