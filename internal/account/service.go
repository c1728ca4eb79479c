package account

import (
	"context"
	"errors"
	"strings"

	"greencode-backend/internal/analyses"
	"greencode-backend/internal/shared/telemetry"
	"greencode-backend/internal/users"
)

// ErrClaimUnsupported is returned when the analyses repo cannot move rows
// between owners.
var ErrClaimUnsupported = errors.New("analyses repo does not support claim")

type Service struct {
	AnalysisRepo analyses.Repo
	Users        *users.Service
}

type ClaimResult struct {
	MigratedAnalyses int `json:"migratedAnalyses"`
}

type guestAnalysisClaimer interface {
	ClaimGuest(ctx context.Context, guestUserID, authedUserID string) ([]analyses.Analysis, error)
}

func NewService(analysisRepo analyses.Repo, usersSvc *users.Service) *Service {
	return &Service{AnalysisRepo: analysisRepo, Users: usersSvc}
}

// ClaimGuest moves a guest's analysis history to a signed-in user and folds
// the claimed results into the user's counters. Calling it again for the same
// guest is a no-op.
func (s *Service) ClaimGuest(ctx context.Context, guestUserID, authedUserID string) (ClaimResult, error) {
	if strings.TrimSpace(guestUserID) == "" || strings.TrimSpace(authedUserID) == "" {
		return ClaimResult{}, errors.New("guestUserID and authedUserID are required")
	}
	claimer, ok := s.AnalysisRepo.(guestAnalysisClaimer)
	if !ok {
		return ClaimResult{}, ErrClaimUnsupported
	}

	claimed, err := claimer.ClaimGuest(ctx, guestUserID, authedUserID)
	if err != nil {
		return ClaimResult{}, err
	}

	if s.Users != nil {
		for _, a := range claimed {
			if _, err := s.Users.RecordAnalysis(ctx, authedUserID, a.Result.CO2Grams, a.Result.PotentialSaving, a.Result.SustainabilityScore); err != nil {
				telemetry.Warn("account.claim.stats_failed", map[string]any{
					"user_id":     authedUserID,
					"analysis_id": a.ID,
					"error":       err.Error(),
				})
			}
		}
	}

	telemetry.Info("account.claim.completed", map[string]any{
		"user_id":  authedUserID,
		"migrated": len(claimed),
	})
	return ClaimResult{MigratedAnalyses: len(claimed)}, nil
}
