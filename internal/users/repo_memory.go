package users

import (
	"context"
	"math"
	"sync"
	"time"
)

type MemoryRepo struct {
	mu    sync.RWMutex
	stats map[string]Stats
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{stats: make(map[string]Stats)}
}

func (r *MemoryRepo) Increment(ctx context.Context, userID string, delta Delta) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.stats[userID]
	if !ok {
		s = Stats{UserID: userID}
	}
	s.TotalAnalyses += delta.Analyses
	s.TotalEnergySaved += delta.EnergySaved
	s.TotalCO2Offset = round4(s.TotalCO2Offset + delta.CO2Offset)
	s.TotalCO2Emitted = round4(s.TotalCO2Emitted + delta.CO2Emitted)
	s.SustainabilitySum += delta.Sustainability
	s.UpdatedAt = time.Now().UTC()
	r.stats[userID] = s
	return s, nil
}

func (r *MemoryRepo) GetStats(ctx context.Context, userID string) (Stats, error) {
	if err := ctx.Err(); err != nil {
		return Stats{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.stats[userID]
	if !ok {
		return Stats{}, ErrNotFound
	}
	return s, nil
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
