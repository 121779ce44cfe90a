package repository

import (
	"context"
	"fmt"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// MatchupRepository handles labeled matchup dataset operations
type MatchupRepository struct {
	db *Database
}

const matchupColumns = `
	game_id, game_date, season, home_team_id, away_team_id, home_win,
	home_avg_pts, home_avg_fga, home_avg_fg3a, home_avg_fta, home_avg_oreb,
	home_avg_tov, home_avg_poss, home_rate_3pa, home_rate_fta, home_rate_tov,
	away_avg_pts, away_avg_fga, away_avg_fg3a, away_avg_fta, away_avg_oreb,
	away_avg_tov, away_avg_poss, away_rate_3pa, away_rate_fta, away_rate_tov
`

// ExistingGameIDs returns the game ids already present in the matchup set.
func (r *MatchupRepository) ExistingGameIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := r.db.Pool.Query(ctx, `SELECT game_id FROM matchups`)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing matchup ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan matchup id: %w", err)
		}
		ids[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matchup ids: %w", err)
	}

	return ids, nil
}

// InsertBatch inserts matchups inside a single transaction.
func (r *MatchupRepository) InsertBatch(ctx context.Context, matchups []*models.Matchup) error {
	if len(matchups) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	query := `
		INSERT INTO matchups (` + matchupColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
		        $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26)
	`
	for _, m := range matchups {
		batch.Queue(query,
			m.GameID, m.GameDate, m.Season, m.HomeTeamID, m.AwayTeamID, m.HomeWin,
			m.HomeAvgPts, m.HomeAvgFGA, m.HomeAvgFG3A, m.HomeAvgFTA, m.HomeAvgOReb,
			m.HomeAvgTov, m.HomeAvgPoss, m.HomeRate3PA, m.HomeRateFTA, m.HomeRateTov,
			m.AwayAvgPts, m.AwayAvgFGA, m.AwayAvgFG3A, m.AwayAvgFTA, m.AwayAvgOReb,
			m.AwayAvgTov, m.AwayAvgPoss, m.AwayRate3PA, m.AwayRateFTA, m.AwayRateTov,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range matchups {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert matchup batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close matchup batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit matchup batch: %w", err)
	}

	log.Debug().Int("count", len(matchups)).Msg("Matchups inserted")
	return nil
}

func (r *MatchupRepository) list(ctx context.Context, query string, args ...any) ([]*models.Matchup, error) {
	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matchups: %w", err)
	}
	defer rows.Close()

	var matchups []*models.Matchup
	for rows.Next() {
		var m models.Matchup
		err := rows.Scan(
			&m.GameID, &m.GameDate, &m.Season, &m.HomeTeamID, &m.AwayTeamID, &m.HomeWin,
			&m.HomeAvgPts, &m.HomeAvgFGA, &m.HomeAvgFG3A, &m.HomeAvgFTA, &m.HomeAvgOReb,
			&m.HomeAvgTov, &m.HomeAvgPoss, &m.HomeRate3PA, &m.HomeRateFTA, &m.HomeRateTov,
			&m.AwayAvgPts, &m.AwayAvgFGA, &m.AwayAvgFG3A, &m.AwayAvgFTA, &m.AwayAvgOReb,
			&m.AwayAvgTov, &m.AwayAvgPoss, &m.AwayRate3PA, &m.AwayRateFTA, &m.AwayRateTov,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan matchup: %w", err)
		}
		matchups = append(matchups, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating matchups: %w", err)
	}

	return matchups, nil
}

// ListByDate returns every matchup ordered chronologically. Order is what
// makes the time-based train/test split valid.
func (r *MatchupRepository) ListByDate(ctx context.Context) ([]*models.Matchup, error) {
	return r.list(ctx, `
		SELECT `+matchupColumns+`
		FROM matchups
		ORDER BY game_date, game_id
	`)
}

// ListSeasonByDate returns a season's matchups ordered chronologically.
func (r *MatchupRepository) ListSeasonByDate(ctx context.Context, season string) ([]*models.Matchup, error) {
	return r.list(ctx, `
		SELECT `+matchupColumns+`
		FROM matchups
		WHERE season = $1
		ORDER BY game_date, game_id
	`, season)
}
