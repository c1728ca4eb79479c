package users

import (
	"context"
	"database/sql"
	"errors"
)

type PGRepo struct {
	DB *sql.DB
}

// Increment relies on NUMERIC(14,4) columns for 4 dp rounding.
func (r *PGRepo) Increment(ctx context.Context, userID string, delta Delta) (Stats, error) {
	const query = `
INSERT INTO user_stats (
	user_id, total_analyses, total_energy_saved, total_co2_offset, total_co2_emitted, sustainability_sum, updated_at
)
VALUES ($1, $2, $3, $4, $5, $6, now())
ON CONFLICT (user_id) DO UPDATE SET
  total_analyses = user_stats.total_analyses + EXCLUDED.total_analyses,
  total_energy_saved = user_stats.total_energy_saved + EXCLUDED.total_energy_saved,
  total_co2_offset = user_stats.total_co2_offset + EXCLUDED.total_co2_offset,
  total_co2_emitted = user_stats.total_co2_emitted + EXCLUDED.total_co2_emitted,
  sustainability_sum = user_stats.sustainability_sum + EXCLUDED.sustainability_sum,
  updated_at = now()
RETURNING user_id, total_analyses, total_energy_saved, total_co2_offset, total_co2_emitted, sustainability_sum, updated_at`
	row := r.DB.QueryRowContext(ctx, query,
		userID,
		delta.Analyses,
		delta.EnergySaved,
		delta.CO2Offset,
		delta.CO2Emitted,
		delta.Sustainability,
	)
	return scanStats(row)
}

func (r *PGRepo) GetStats(ctx context.Context, userID string) (Stats, error) {
	const query = `
SELECT user_id, total_analyses, total_energy_saved, total_co2_offset, total_co2_emitted, sustainability_sum, updated_at
FROM user_stats
WHERE user_id = $1
LIMIT 1`
	s, err := scanStats(r.DB.QueryRowContext(ctx, query, userID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Stats{}, ErrNotFound
		}
		return Stats{}, err
	}
	return s, nil
}

func scanStats(row *sql.Row) (Stats, error) {
	var s Stats
	err := row.Scan(
		&s.UserID,
		&s.TotalAnalyses,
		&s.TotalEnergySaved,
		&s.TotalCO2Offset,
		&s.TotalCO2Emitted,
		&s.SustainabilitySum,
		&s.UpdatedAt,
	)
	return s, err
}
