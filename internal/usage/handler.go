package usage

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"greencode-backend/internal/shared/server/middleware"
	"greencode-backend/internal/shared/server/respond"
)

// Handler exposes usage endpoints.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches usage routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/usage", h.getUsage)
}

// RegisterDevRoutes attaches dev-only usage routes.
func (h *Handler) RegisterDevRoutes(rg *gin.RouterGroup) {
	rg.POST("/usage/reset", h.resetUsage)
	rg.POST("/usage/plan", h.setPlan)
}

type setPlanRequest struct {
	Plan string `json:"plan"`
}

func (h *Handler) getUsage(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	u, err := h.Svc.EnsurePeriod(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "failed to fetch usage")
		return
	}
	respond.JSON(c, http.StatusOK, usageResponse(u))
}

func (h *Handler) resetUsage(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	u, err := h.Svc.Reset(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "failed to reset usage")
		return
	}
	respond.JSON(c, http.StatusOK, usageResponse(u))
}

func (h *Handler) setPlan(c *gin.Context) {
	var req setPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Plan == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "plan is required", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	u, err := h.Svc.SetPlan(c.Request.Context(), userID, req.Plan)
	if err != nil {
		if errors.Is(err, ErrUnknownPlan) {
			respond.Error(c, http.StatusBadRequest, "validation_error", "unknown plan", []map[string]string{
				{"field": "plan", "issue": "must be one of free, pro, enterprise"},
			})
			return
		}
		h.fail(c, err, "failed to update plan")
		return
	}
	respond.JSON(c, http.StatusOK, usageResponse(u))
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}

func usageResponse(u Usage) gin.H {
	return gin.H{
		"plan":         u.Plan,
		"limit":        u.Limit,
		"used":         u.Used,
		"remaining":    u.Remaining(),
		"historyLimit": PlanFor(u.Plan).HistoryLimit,
		"resetsAt":     u.ResetsAt,
	}
}
