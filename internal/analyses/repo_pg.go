package analyses

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"greencode-backend/internal/analyses/engine"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectAnalysisColumns = `SELECT id, user_id, result, report_key, created_at FROM analyses`

// Create inserts a new analysis. The full result is stored as JSONB; language,
// energy score and rating are denormalised for listing.
func (r *PGRepo) Create(ctx context.Context, analysis Analysis) error {
	const query = `
INSERT INTO analyses (id, user_id, language, energy_score, rating, result, report_key, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	resultPayload, err := marshalJSONB(analysis.Result)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, query,
		analysis.ID,
		analysis.UserID,
		analysis.Result.Language,
		analysis.Result.EnergyScore,
		string(analysis.Result.Rating),
		resultPayload,
		nullableString(analysis.ReportKey),
		analysis.CreatedAt,
	)
	return err
}

// GetByID returns an analysis by ID.
func (r *PGRepo) GetByID(ctx context.Context, analysisID string) (Analysis, error) {
	row := r.DB.QueryRowContext(ctx, selectAnalysisColumns+`
WHERE id = $1
LIMIT 1`, analysisID)
	a, err := scanAnalysis(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Analysis{}, ErrNotFound
		}
		return Analysis{}, err
	}
	return a, nil
}

// SetReportKey records where the archived report of an analysis lives.
func (r *PGRepo) SetReportKey(ctx context.Context, analysisID, reportKey string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE analyses SET report_key = $1 WHERE id = $2`, reportKey, analysisID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListByUser returns analyses for a user ordered newest-first. A zero limit
// returns everything after offset.
func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Analysis, error) {
	if offset < 0 {
		offset = 0
	}
	var (
		rows *sql.Rows
		err  error
	)
	if limit > 0 {
		rows, err = r.DB.QueryContext(ctx, selectAnalysisColumns+`
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`, userID, limit, offset)
	} else {
		rows, err = r.DB.QueryContext(ctx, selectAnalysisColumns+`
WHERE user_id = $1
ORDER BY created_at DESC
OFFSET $2`, userID, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	analyses := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return analyses, nil
}

// ClaimGuest moves every analysis owned by guestUserID to userID and returns
// the moved rows.
func (r *PGRepo) ClaimGuest(ctx context.Context, guestUserID, userID string) ([]Analysis, error) {
	rows, err := r.DB.QueryContext(ctx, `UPDATE analyses SET user_id = $1
WHERE user_id = $2
RETURNING id, user_id, result, report_key, created_at`, userID, guestUserID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	claimed := []Analysis{}
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return nil, err
		}
		claimed = append(claimed, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return claimed, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (Analysis, error) {
	var (
		a         Analysis
		result    []byte
		reportKey sql.NullString
	)
	if err := row.Scan(&a.ID, &a.UserID, &result, &reportKey, &a.CreatedAt); err != nil {
		return Analysis{}, err
	}
	if len(result) > 0 {
		var res engine.Result
		if err := json.Unmarshal(result, &res); err != nil {
			return Analysis{}, fmt.Errorf("decode analysis result %s: %w", a.ID, err)
		}
		a.Result = res
	}
	if reportKey.Valid {
		a.ReportKey = reportKey.String
	}
	a.CreatedAt = a.CreatedAt.UTC()
	return a, nil
}

func marshalJSONB(v any) ([]byte, error) {
	if v == nil {
		return nil, nil
	}
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	return payload, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var _ Repo = (*PGRepo)(nil)
