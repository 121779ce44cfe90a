package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// FeatureRepository handles rolling offensive feature snapshot operations
type FeatureRepository struct {
	db *Database
}

// ExistingKeys returns the snapshot signatures already stored for a window,
// keyed by models.SnapshotKey. Projection of key columns only, so season
// builds can pre-filter without per-row existence checks.
func (r *FeatureRepository) ExistingKeys(ctx context.Context, season string, window int) (map[string]struct{}, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT team_id, as_of_date
		FROM team_features
		WHERE season = $1 AND window = $2
	`, season, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing feature keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var teamID int
		var asOf time.Time
		if err := rows.Scan(&teamID, &asOf); err != nil {
			return nil, fmt.Errorf("failed to scan feature key: %w", err)
		}
		keys[models.SnapshotKey(teamID, asOf)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feature keys: %w", err)
	}

	return keys, nil
}

// InsertBatch inserts feature snapshots inside a single transaction.
// A failure rolls the whole batch back.
func (r *FeatureRepository) InsertBatch(ctx context.Context, feats []*models.TeamFeature) error {
	if len(feats) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	query := `
		INSERT INTO team_features (
			team_id, as_of_date, season, window, games_used,
			avg_pts, avg_fga, avg_fg3a, avg_fta, avg_oreb, avg_tov,
			avg_poss, rate_3pa, rate_fta, rate_tov
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	for _, f := range feats {
		batch.Queue(query,
			f.TeamID, f.AsOfDate, f.Season, f.Window, f.GamesUsed,
			f.AvgPts, f.AvgFGA, f.AvgFG3A, f.AvgFTA, f.AvgOReb, f.AvgTov,
			f.AvgPoss, f.Rate3PA, f.RateFTA, f.RateTov,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range feats {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert feature batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close feature batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit feature batch: %w", err)
	}

	log.Debug().Int("count", len(feats)).Msg("Feature snapshots inserted")
	return nil
}

// Get retrieves one snapshot, or nil when absent.
func (r *FeatureRepository) Get(ctx context.Context, teamID int, asOf time.Time, window int) (*models.TeamFeature, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT team_id, as_of_date, season, window, games_used,
		       avg_pts, avg_fga, avg_fg3a, avg_fta, avg_oreb, avg_tov,
		       avg_poss, rate_3pa, rate_fta, rate_tov
		FROM team_features
		WHERE team_id = $1 AND as_of_date = $2 AND window = $3
	`, teamID, asOf, window)

	var f models.TeamFeature
	err := row.Scan(
		&f.TeamID, &f.AsOfDate, &f.Season, &f.Window, &f.GamesUsed,
		&f.AvgPts, &f.AvgFGA, &f.AvgFG3A, &f.AvgFTA, &f.AvgOReb, &f.AvgTov,
		&f.AvgPoss, &f.Rate3PA, &f.RateFTA, &f.RateTov,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get feature snapshot: %w", err)
	}

	return &f, nil
}

// ListSeason returns all offensive snapshots for a (season, window).
func (r *FeatureRepository) ListSeason(ctx context.Context, season string, window int) ([]*models.TeamFeature, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT team_id, as_of_date, season, window, games_used,
		       avg_pts, avg_fga, avg_fg3a, avg_fta, avg_oreb, avg_tov,
		       avg_poss, rate_3pa, rate_fta, rate_tov
		FROM team_features
		WHERE season = $1 AND window = $2
		ORDER BY as_of_date, team_id
	`, season, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query season features: %w", err)
	}
	defer rows.Close()

	var feats []*models.TeamFeature
	for rows.Next() {
		var f models.TeamFeature
		err := rows.Scan(
			&f.TeamID, &f.AsOfDate, &f.Season, &f.Window, &f.GamesUsed,
			&f.AvgPts, &f.AvgFGA, &f.AvgFG3A, &f.AvgFTA, &f.AvgOReb, &f.AvgTov,
			&f.AvgPoss, &f.Rate3PA, &f.RateFTA, &f.RateTov,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan feature snapshot: %w", err)
		}
		feats = append(feats, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating season features: %w", err)
	}

	return feats, nil
}

// DefFeatureRepository handles rolling defensive feature snapshot operations
type DefFeatureRepository struct {
	db *Database
}

// ExistingKeys returns defensive snapshot signatures for a (season, window),
// keyed by models.SnapshotKey.
func (r *DefFeatureRepository) ExistingKeys(ctx context.Context, season string, window int) (map[string]struct{}, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT team_id, as_of_date
		FROM team_def_features
		WHERE season = $1 AND window = $2
	`, season, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing def feature keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var teamID int
		var asOf time.Time
		if err := rows.Scan(&teamID, &asOf); err != nil {
			return nil, fmt.Errorf("failed to scan def feature key: %w", err)
		}
		keys[models.SnapshotKey(teamID, asOf)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating def feature keys: %w", err)
	}

	return keys, nil
}

// InsertBatch inserts defensive snapshots inside a single transaction.
func (r *DefFeatureRepository) InsertBatch(ctx context.Context, feats []*models.TeamDefFeature) error {
	if len(feats) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	query := `
		INSERT INTO team_def_features (
			team_id, as_of_date, season, window, games_used,
			def_avg_pts_allowed, def_avg_fga_allowed, def_avg_fg3a_allowed,
			def_avg_fta_allowed, def_avg_oreb_allowed, def_avg_tov_forced,
			def_avg_poss_allowed, def_rate_3pa_allowed, def_rate_fta_allowed,
			def_rate_tov_forced
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	for _, f := range feats {
		batch.Queue(query,
			f.TeamID, f.AsOfDate, f.Season, f.Window, f.GamesUsed,
			f.AvgPtsAllowed, f.AvgFGAAllowed, f.AvgFG3AAllowed,
			f.AvgFTAAllowed, f.AvgORebAllowed, f.AvgTovForced,
			f.AvgPossAllowed, f.Rate3PAAllowed, f.RateFTAAllowed,
			f.RateTovForced,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range feats {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert def feature batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close def feature batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit def feature batch: %w", err)
	}

	log.Debug().Int("count", len(feats)).Msg("Defensive feature snapshots inserted")
	return nil
}

// Get retrieves one defensive snapshot, or nil when absent.
func (r *DefFeatureRepository) Get(ctx context.Context, teamID int, asOf time.Time, window int) (*models.TeamDefFeature, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT team_id, as_of_date, season, window, games_used,
		       def_avg_pts_allowed, def_avg_fga_allowed, def_avg_fg3a_allowed,
		       def_avg_fta_allowed, def_avg_oreb_allowed, def_avg_tov_forced,
		       def_avg_poss_allowed, def_rate_3pa_allowed, def_rate_fta_allowed,
		       def_rate_tov_forced
		FROM team_def_features
		WHERE team_id = $1 AND as_of_date = $2 AND window = $3
	`, teamID, asOf, window)

	var f models.TeamDefFeature
	err := row.Scan(
		&f.TeamID, &f.AsOfDate, &f.Season, &f.Window, &f.GamesUsed,
		&f.AvgPtsAllowed, &f.AvgFGAAllowed, &f.AvgFG3AAllowed,
		&f.AvgFTAAllowed, &f.AvgORebAllowed, &f.AvgTovForced,
		&f.AvgPossAllowed, &f.Rate3PAAllowed, &f.RateFTAAllowed,
		&f.RateTovForced,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get def feature snapshot: %w", err)
	}

	return &f, nil
}

// ListSeason returns all defensive snapshots for a (season, window).
func (r *DefFeatureRepository) ListSeason(ctx context.Context, season string, window int) ([]*models.TeamDefFeature, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT team_id, as_of_date, season, window, games_used,
		       def_avg_pts_allowed, def_avg_fga_allowed, def_avg_fg3a_allowed,
		       def_avg_fta_allowed, def_avg_oreb_allowed, def_avg_tov_forced,
		       def_avg_poss_allowed, def_rate_3pa_allowed, def_rate_fta_allowed,
		       def_rate_tov_forced
		FROM team_def_features
		WHERE season = $1 AND window = $2
		ORDER BY as_of_date, team_id
	`, season, window)
	if err != nil {
		return nil, fmt.Errorf("failed to query season def features: %w", err)
	}
	defer rows.Close()

	var feats []*models.TeamDefFeature
	for rows.Next() {
		var f models.TeamDefFeature
		err := rows.Scan(
			&f.TeamID, &f.AsOfDate, &f.Season, &f.Window, &f.GamesUsed,
			&f.AvgPtsAllowed, &f.AvgFGAAllowed, &f.AvgFG3AAllowed,
			&f.AvgFTAAllowed, &f.AvgORebAllowed, &f.AvgTovForced,
			&f.AvgPossAllowed, &f.Rate3PAAllowed, &f.RateFTAAllowed,
			&f.RateTovForced,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan def feature snapshot: %w", err)
		}
		feats = append(feats, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating season def features: %w", err)
	}

	return feats, nil
}
