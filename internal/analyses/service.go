package analyses

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"greencode-backend/internal/analyses/engine"
	"greencode-backend/internal/analyses/report"
	"greencode-backend/internal/shared/cache"
	"greencode-backend/internal/shared/events"
	"greencode-backend/internal/shared/metrics"
	"greencode-backend/internal/shared/storage/object"
	"greencode-backend/internal/shared/telemetry"
	"greencode-backend/internal/usage"
	"greencode-backend/internal/users"
)

const sideEffectTimeout = 5 * time.Second

// Service runs analyses and owns their history. Usage, Users, Store, Cache,
// Events and Metrics are optional.
type Service struct {
	Analyzer *engine.Analyzer
	Repo     Repo
	Usage    *usage.Service
	Users    *users.Service
	Store    object.ObjectStore
	Cache    cache.Cache
	Events   events.Publisher
	Subject  string
	Metrics  *metrics.Metrics
	Now      func() time.Time
}

// Analyze scores code for the user, stores the result and counts it against
// the user's monthly allowance.
func (s *Service) Analyze(ctx context.Context, userID, code, language string) (Analysis, error) {
	if strings.TrimSpace(code) == "" {
		return Analysis{}, engine.ErrEmptyCode
	}
	if userID == "" {
		return Analysis{}, errors.New("userID is required")
	}
	startedAt := time.Now()

	if s.Usage != nil {
		ok, u, err := s.Usage.CanConsume(ctx, userID, 1)
		if err != nil {
			return Analysis{}, fmt.Errorf("check usage: %w", err)
		}
		if !ok {
			s.Metrics.QuotaRejected()
			return Analysis{}, &LimitError{Usage: u}
		}
	}

	res, err := s.evaluate(ctx, code, language)
	if err != nil {
		return Analysis{}, err
	}

	if s.Usage != nil {
		if _, err := s.Usage.Consume(ctx, userID, 1); err != nil {
			if errors.Is(err, usage.ErrLimitReached) {
				s.Metrics.QuotaRejected()
				u, _ := s.Usage.Get(ctx, userID)
				return Analysis{}, &LimitError{Usage: u}
			}
			return Analysis{}, fmt.Errorf("consume usage: %w", err)
		}
	}

	analysis := Analysis{
		ID:        uuid.NewString(),
		UserID:    userID,
		Result:    res,
		CreatedAt: s.now(),
	}
	if err := s.Repo.Create(ctx, analysis); err != nil {
		return Analysis{}, fmt.Errorf("store analysis: %w", err)
	}

	sideCtx, cancel := context.WithTimeout(backgroundWithRequestID(ctx), sideEffectTimeout)
	defer cancel()

	if !isGuest(ctx) && s.Users != nil {
		if _, err := s.Users.RecordAnalysis(sideCtx, userID, res.CO2Grams, res.PotentialSaving, res.SustainabilityScore); err != nil {
			s.sideEffectFailed(sideCtx, "user_stats", analysis, err)
		}
	}

	if key, ok := s.archiveReport(sideCtx, analysis); ok {
		analysis.ReportKey = key
	}
	s.publishCompleted(sideCtx, analysis)

	s.Metrics.ObserveAnalysis(s.metricLanguage(res.Language), string(res.Rating), res.EnergyScore, kindNames(res.Detections), time.Since(startedAt))
	telemetry.Info("analysis.completed", map[string]any{
		"request_id":   requestIDFromContext(ctx),
		"user_id":      userID,
		"analysis_id":  analysis.ID,
		"language":     res.Language,
		"energy_score": res.EnergyScore,
		"rating":       res.Rating,
		"detections":   len(res.Detections),
		"duration_ms":  time.Since(startedAt).Milliseconds(),
	})
	return analysis, nil
}

// Get returns one of the user's analyses. Analyses owned by someone else are
// reported as ErrNotFound.
func (s *Service) Get(ctx context.Context, userID, analysisID string) (Analysis, error) {
	if analysisID == "" {
		return Analysis{}, ErrNotFound
	}
	a, err := s.Repo.GetByID(ctx, analysisID)
	if err != nil {
		return Analysis{}, err
	}
	if a.UserID != userID {
		return Analysis{}, ErrNotFound
	}
	return a, nil
}

// List returns the user's analyses newest-first. The window never reaches
// past the history allowance of the user's plan.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if userID == "" {
		return nil, errors.New("userID is required")
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if s.Usage != nil {
		plan, err := s.Usage.Plan(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("load plan: %w", err)
		}
		var ok bool
		limit, ok = capWindow(limit, offset, plan.HistoryLimit)
		if !ok {
			return []Analysis{}, nil
		}
	}
	return s.Repo.ListByUser(ctx, userID, limit, offset)
}

// Report returns the plain-text report of an analysis, preferring the
// archived copy and rendering it afresh when none is available.
func (s *Service) Report(ctx context.Context, userID, analysisID string) (string, error) {
	a, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return "", err
	}
	if s.Store != nil && a.ReportKey != "" {
		text, err := s.readArchived(ctx, a.ReportKey)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, object.ErrNotFound) {
			telemetry.Warn("analysis.report_read_failed", map[string]any{
				"request_id":  requestIDFromContext(ctx),
				"analysis_id": a.ID,
				"error":       err,
			})
		}
	}
	return report.RenderText(a.Result, a.CreatedAt), nil
}

// Fixes returns every optimized snippet of an analysis joined into one listing.
func (s *Service) Fixes(ctx context.Context, userID, analysisID string) (string, error) {
	a, err := s.Get(ctx, userID, analysisID)
	if err != nil {
		return "", err
	}
	return report.ApplyAllFixes(a.Result.Suggestions), nil
}

// Languages lists the languages with dedicated snippets or tips.
func (s *Service) Languages() []string {
	return s.Analyzer.Library().Languages()
}

func (s *Service) evaluate(ctx context.Context, code, language string) (engine.Result, error) {
	var key string
	if s.Cache != nil {
		key = cache.ResultKey(language, code)
		var cached engine.Result
		err := s.Cache.Get(ctx, key, &cached)
		switch {
		case err == nil:
			s.Metrics.CacheLookup("hit")
			cached.Language = engine.RequestLanguage(language)
			return cached, nil
		case errors.Is(err, cache.ErrMiss):
			s.Metrics.CacheLookup("miss")
		default:
			s.Metrics.CacheLookup("error")
			telemetry.Warn("analysis.cache_get_failed", map[string]any{
				"request_id": requestIDFromContext(ctx),
				"error":      err,
			})
		}
	}

	res, err := s.Analyzer.Analyze(code, language)
	if err != nil {
		return engine.Result{}, err
	}

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, key, res); err != nil {
			s.Metrics.SideEffectFailed("cache_set")
			telemetry.Warn("analysis.cache_set_failed", map[string]any{
				"request_id": requestIDFromContext(ctx),
				"error":      err,
			})
		}
	}
	return res, nil
}

// metricLanguage keeps the language label within the library's languages.
func (s *Service) metricLanguage(language string) string {
	if lang, ok := s.Analyzer.Library().KnownLanguage(language); ok {
		return lang
	}
	return "other"
}

func (s *Service) archiveReport(ctx context.Context, a Analysis) (string, bool) {
	if s.Store == nil {
		return "", false
	}
	key, err := object.ReportKey(a.UserID, a.ID)
	if err != nil {
		s.sideEffectFailed(ctx, "report_archive", a, err)
		return "", false
	}
	text := report.RenderText(a.Result, a.CreatedAt)
	if _, err := s.Store.Put(ctx, key, report.ContentType, strings.NewReader(text)); err != nil {
		s.sideEffectFailed(ctx, "report_archive", a, err)
		return "", false
	}
	if err := s.Repo.SetReportKey(ctx, a.ID, key); err != nil {
		s.sideEffectFailed(ctx, "report_archive", a, err)
		return "", false
	}
	return key, true
}

func (s *Service) publishCompleted(ctx context.Context, a Analysis) {
	if s.Events == nil {
		return
	}
	subject := s.Subject
	if subject == "" {
		subject = events.SubjectAnalysisCompleted
	}
	evt := events.AnalysisCompleted{
		AnalysisID:          a.ID,
		UserID:              a.UserID,
		IsGuest:             isGuest(ctx),
		Language:            a.Result.Language,
		EnergyScore:         a.Result.EnergyScore,
		SustainabilityScore: a.Result.SustainabilityScore,
		Rating:              string(a.Result.Rating),
		CO2Grams:            a.Result.CO2Grams,
		PotentialSaving:     a.Result.PotentialSaving,
		Detections:          kindNames(a.Result.Detections),
		CompletedAt:         a.CreatedAt,
	}
	if err := s.Events.PublishEvent(ctx, subject, evt); err != nil {
		s.sideEffectFailed(ctx, "event_publish", a, err)
	}
}

func (s *Service) readArchived(ctx context.Context, key string) (string, error) {
	rc, err := s.Store.Open(ctx, key)
	if err != nil {
		return "", err
	}
	defer rc.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, rc); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (s *Service) sideEffectFailed(ctx context.Context, effect string, a Analysis, err error) {
	s.Metrics.SideEffectFailed(effect)
	telemetry.Error("analysis.side_effect_failed", map[string]any{
		"request_id":  requestIDFromContext(ctx),
		"effect":      effect,
		"user_id":     a.UserID,
		"analysis_id": a.ID,
		"error":       err,
	})
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// capWindow clamps a limit/offset page to the first historyLimit entries.
// It reports false when the page starts beyond the allowance.
func capWindow(limit, offset, historyLimit int) (int, bool) {
	if historyLimit == usage.Unlimited {
		return limit, true
	}
	if offset >= historyLimit {
		return 0, false
	}
	remaining := historyLimit - offset
	if limit == 0 || limit > remaining {
		limit = remaining
	}
	return limit, true
}

func kindNames(kinds []engine.Kind) []string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return names
}
