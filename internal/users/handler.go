package users

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"greencode-backend/internal/shared/server/middleware"
	"greencode-backend/internal/shared/server/respond"
)

type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me/stats", h.stats)
}

func (h *Handler) stats(c *gin.Context) {
	if h.Svc == nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "service unavailable", nil)
		return
	}
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view stats", nil)
		return
	}
	userID := middleware.UserIDFromContext(c)
	st, err := h.Svc.Stats(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load stats", nil)
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"userId":            st.UserID,
		"totalAnalyses":     st.TotalAnalyses,
		"avgSustainability": st.AvgSustainability(),
		"totalEnergySaved":  st.TotalEnergySaved,
		"totalCO2Offset":    round3(st.TotalCO2Offset),
		"totalCO2Emitted":   round3(st.TotalCO2Emitted),
	})
}

func round3(v float64) float64 {
	return math.Round(v*1e3) / 1e3
}
