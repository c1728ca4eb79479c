package analyses

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"greencode-backend/internal/analyses/engine"
	"greencode-backend/internal/analyses/report"
	"greencode-backend/internal/shared/server/middleware"
	"greencode-backend/internal/shared/server/respond"
	"greencode-backend/internal/usage"
)

const (
	maxCodeBytes     = 256 << 10
	defaultListLimit = 20
)

// Handler wires HTTP handlers to the analyses service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/analyze", h.analyze)
	rg.GET("/analyses", h.listAnalyses)
	rg.GET("/analyses/:id", h.getAnalysis)
	rg.GET("/analyses/:id/report", h.downloadReport)
	rg.GET("/analyses/:id/fixes", h.getFixes)
	rg.GET("/languages", h.listLanguages)
}

type analyzeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

type analysisResponse struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	engine.Result
}

type analysisSummary struct {
	ID                  string                 `json:"id"`
	Language            string                 `json:"language"`
	Complexity          engine.ComplexityClass `json:"complexity"`
	EnergyScore         int                    `json:"energyScore"`
	SustainabilityScore int                    `json:"sustainabilityScore"`
	Rating              engine.Rating          `json:"rating"`
	Detections          []engine.Kind          `json:"detections"`
	CreatedAt           time.Time              `json:"createdAt"`
}

func (h *Handler) analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "request body must be JSON with a code field", nil)
		return
	}
	if len(req.Code) > maxCodeBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "code is too large", []map[string]string{
			{"field": "code", "issue": "must be at most 256 KiB"},
		})
		return
	}

	userID := middleware.UserIDFromContext(c)
	ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
	ctx = WithGuest(ctx, middleware.IsGuest(c))

	analysis, err := h.Svc.Analyze(ctx, userID, req.Code, req.Language)
	if err != nil {
		var limitErr *LimitError
		switch {
		case errors.Is(err, engine.ErrEmptyCode):
			respond.Error(c, http.StatusBadRequest, "validation_error", "code is required", []map[string]string{
				{"field": "code", "issue": "must not be blank"},
			})
		case errors.As(err, &limitErr):
			respond.Error(c, http.StatusForbidden, "analysis_limit_reached", "You've reached your monthly analysis limit. Upgrade your plan to continue.", gin.H{
				"used":         limitErr.Usage.Used,
				"limit":        limitErr.Usage.Limit,
				"requiredPlan": usage.UpgradeFor(limitErr.Usage.Plan),
			})
		default:
			h.fail(c, err, "failed to analyze code")
		}
		return
	}

	c.Set(middleware.AnalysisIDKey, analysis.ID)
	c.Set(middleware.LanguageKey, analysis.Result.Language)
	respond.JSON(c, http.StatusOK, toResponse(analysis))
}

func (h *Handler) getAnalysis(c *gin.Context) {
	analysis, ok := h.lookup(c)
	if !ok {
		return
	}
	respond.JSON(c, http.StatusOK, toResponse(analysis))
}

func (h *Handler) downloadReport(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set(middleware.AnalysisIDKey, analysisID)

	text, err := h.Svc.Report(c.Request.Context(), middleware.UserIDFromContext(c), analysisID)
	if err != nil {
		h.notFoundOr(c, err, "failed to render report")
		return
	}
	respond.Attachment(c, http.StatusOK, report.FileName, report.ContentType, text)
}

func (h *Handler) getFixes(c *gin.Context) {
	analysisID := c.Param("id")
	c.Set(middleware.AnalysisIDKey, analysisID)

	code, err := h.Svc.Fixes(c.Request.Context(), middleware.UserIDFromContext(c), analysisID)
	if err != nil {
		h.notFoundOr(c, err, "failed to build fixes")
		return
	}
	respond.JSON(c, http.StatusOK, gin.H{
		"analysisId": analysisID,
		"code":       code,
	})
}

func (h *Handler) listLanguages(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{
		"languages": h.Svc.Languages(),
		"default":   "javascript",
	})
}

func (h *Handler) listAnalyses(c *gin.Context) {
	if middleware.IsGuest(c) {
		respond.Error(c, http.StatusUnauthorized, "login_required", "Login required to view history", nil)
		return
	}

	userID := middleware.UserIDFromContext(c)

	limit := defaultListLimit
	offset := 0

	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit < 0 {
		limit = 0
	}

	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			offset = parsed
		}
	}
	if offset < 0 {
		offset = 0
	}

	analyses, err := h.Svc.List(c.Request.Context(), userID, limit, offset)
	if err != nil {
		h.fail(c, err, "failed to list analyses")
		return
	}

	resp := make([]analysisSummary, 0, len(analyses))
	for _, a := range analyses {
		detections := a.Result.Detections
		if detections == nil {
			detections = []engine.Kind{}
		}
		resp = append(resp, analysisSummary{
			ID:                  a.ID,
			Language:            a.Result.Language,
			Complexity:          a.Result.Complexity,
			EnergyScore:         a.Result.EnergyScore,
			SustainabilityScore: a.Result.SustainabilityScore,
			Rating:              a.Result.Rating,
			Detections:          detections,
			CreatedAt:           a.CreatedAt,
		})
	}

	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) lookup(c *gin.Context) (Analysis, bool) {
	analysisID := c.Param("id")
	c.Set(middleware.AnalysisIDKey, analysisID)

	analysis, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), analysisID)
	if err != nil {
		h.notFoundOr(c, err, "failed to fetch analysis")
		return Analysis{}, false
	}
	c.Set(middleware.LanguageKey, analysis.Result.Language)
	return analysis, true
}

func (h *Handler) notFoundOr(c *gin.Context, err error, message string) {
	if errors.Is(err, ErrNotFound) {
		respond.Error(c, http.StatusNotFound, "not_found", "analysis not found", nil)
		return
	}
	h.fail(c, err, message)
}

func (h *Handler) fail(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusRequestTimeout, "timeout", "request canceled", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}

func toResponse(a Analysis) analysisResponse {
	return analysisResponse{ID: a.ID, CreatedAt: a.CreatedAt, Result: a.Result}
}
