package users

import (
	"context"
	"errors"
	"strings"
)

type Service struct {
	Repo Repo
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// RecordAnalysis folds one completed analysis into the user's counters. Energy
// saved and CO2 offset only accrue when the analysis scored at least 60.
func (s *Service) RecordAnalysis(ctx context.Context, userID string, co2Grams float64, potentialSaving, sustainabilityScore int) (Stats, error) {
	if s == nil || s.Repo == nil {
		return Stats{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return Stats{}, errors.New("user id is required")
	}
	delta := Delta{
		Analyses:       1,
		CO2Emitted:     round4(co2Grams),
		Sustainability: sustainabilityScore,
	}
	if sustainabilityScore >= offsetThreshold {
		delta.EnergySaved = potentialSaving
		delta.CO2Offset = round4(co2Grams * offsetFactor)
	}
	return s.Repo.Increment(ctx, userID, delta)
}

// Stats returns the user's counters, or zeroed counters when nothing was recorded yet.
func (s *Service) Stats(ctx context.Context, userID string) (Stats, error) {
	if s == nil || s.Repo == nil {
		return Stats{}, errors.New("users service not configured")
	}
	if strings.TrimSpace(userID) == "" {
		return Stats{}, errors.New("user id is required")
	}
	st, err := s.Repo.GetStats(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		return Stats{UserID: userID}, nil
	}
	return st, err
}
