package repository

import (
	"context"
	"fmt"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// BaselineRepository handles season feature baseline operations
type BaselineRepository struct {
	db *Database
}

// Replace deletes any existing baselines for the (season, window) and inserts
// the new set inside one transaction. Baselines are always fully replaced,
// never merged.
func (r *BaselineRepository) Replace(ctx context.Context, season string, window int, rows []*models.SeasonFeatureBaseline) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `
		DELETE FROM season_feature_baselines
		WHERE season = $1 AND window = $2
	`, season, window); err != nil {
		return fmt.Errorf("failed to delete existing baselines: %w", err)
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO season_feature_baselines (
			season, window, feature_name, mean, std, p10, p25, p50, p75, p90
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	for _, b := range rows {
		batch.Queue(query,
			b.Season, b.Window, b.FeatureName,
			b.Mean, b.Std, b.P10, b.P25, b.P50, b.P75, b.P90,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range rows {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert baseline batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close baseline batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit baseline replace: %w", err)
	}

	log.Debug().
		Str("season", season).
		Int("window", window).
		Int("count", len(rows)).
		Msg("Season baselines replaced")

	return nil
}

// GetSet returns the baselines for a (season, window) indexed by feature name.
// The set is empty when no baselines have been computed.
func (r *BaselineRepository) GetSet(ctx context.Context, season string, window int) (models.BaselineSet, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT season, window, feature_name, mean, std, p10, p25, p50, p75, p90
		FROM season_feature_baselines
		WHERE season = $1 AND window = $2
	`, season, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query baselines: %w", err)
	}
	defer rows.Close()

	set := make(models.BaselineSet)
	for rows.Next() {
		var b models.SeasonFeatureBaseline
		err := rows.Scan(
			&b.Season, &b.Window, &b.FeatureName,
			&b.Mean, &b.Std, &b.P10, &b.P25, &b.P50, &b.P75, &b.P90,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan baseline: %w", err)
		}
		set[b.FeatureName] = &b
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating baselines: %w", err)
	}

	return set, nil
}
