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

// GameLogRepository handles team game log database operations
type GameLogRepository struct {
	db *Database
}

const gameLogColumns = `
	game_id, team_id, season, game_date, matchup, wl,
	pts, fgm, fga, fg_pct, fg3m, fg3a, fg3_pct, ftm, fta, ft_pct,
	oreb, dreb, reb, ast, stl, blk, tov, pf, plus_minus
`

func scanGameLog(row pgx.Row) (*models.TeamGameLog, error) {
	var g models.TeamGameLog
	err := row.Scan(
		&g.GameID, &g.TeamID, &g.Season, &g.GameDate, &g.Matchup, &g.WL,
		&g.Pts, &g.FGM, &g.FGA, &g.FGPct, &g.FG3M, &g.FG3A, &g.FG3Pct,
		&g.FTM, &g.FTA, &g.FTPct,
		&g.OReb, &g.DReb, &g.Reb, &g.Ast, &g.Stl, &g.Blk, &g.Tov, &g.PF, &g.PlusMinus,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// InsertBatch inserts game logs inside a single transaction. The whole batch
// commits or none of it does.
func (r *GameLogRepository) InsertBatch(ctx context.Context, logs []*models.TeamGameLog) error {
	if len(logs) == 0 {
		return nil
	}

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	query := `
		INSERT INTO team_game_logs (` + gameLogColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		        $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
	`
	for _, g := range logs {
		batch.Queue(query,
			g.GameID, g.TeamID, g.Season, g.GameDate, g.Matchup, g.WL,
			g.Pts, g.FGM, g.FGA, g.FGPct, g.FG3M, g.FG3A, g.FG3Pct,
			g.FTM, g.FTA, g.FTPct,
			g.OReb, g.DReb, g.Reb, g.Ast, g.Stl, g.Blk, g.Tov, g.PF, g.PlusMinus,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range logs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return fmt.Errorf("failed to insert game log batch: %w", err)
		}
	}
	if err := br.Close(); err != nil {
		return fmt.Errorf("failed to close game log batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit game log batch: %w", err)
	}

	log.Debug().Int("count", len(logs)).Msg("Game logs inserted")
	return nil
}

// ExistingKeys returns the (game_id, team_id) pairs already stored for a
// season, keyed "game_id|team_id". Projection of key columns only.
func (r *GameLogRepository) ExistingKeys(ctx context.Context, season string) (map[string]struct{}, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT game_id, team_id FROM team_game_logs WHERE season = $1`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query existing game log keys: %w", err)
	}
	defer rows.Close()

	keys := make(map[string]struct{})
	for rows.Next() {
		var gameID string
		var teamID int
		if err := rows.Scan(&gameID, &teamID); err != nil {
			return nil, fmt.Errorf("failed to scan game log key: %w", err)
		}
		keys[fmt.Sprintf("%s|%d", gameID, teamID)] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game log keys: %w", err)
	}

	return keys, nil
}

// ListTargets returns every (team_id, game_date) pair for a season in
// chronological order. Each pair is a candidate feature snapshot.
func (r *GameLogRepository) ListTargets(ctx context.Context, season string) ([]models.GameRef, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT team_id, game_date
		FROM team_game_logs
		WHERE season = $1
		ORDER BY game_date, team_id
	`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query feature targets: %w", err)
	}
	defer rows.Close()

	var targets []models.GameRef
	for rows.Next() {
		var t models.GameRef
		if err := rows.Scan(&t.TeamID, &t.GameDate); err != nil {
			return nil, fmt.Errorf("failed to scan feature target: %w", err)
		}
		targets = append(targets, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating feature targets: %w", err)
	}

	return targets, nil
}

// GamesBefore returns a team's games for a season with game_date strictly
// before the given date, newest first, capped at limit. Scoping by season
// keeps early-season snapshots from folding in the prior season's games.
func (r *GameLogRepository) GamesBefore(ctx context.Context, teamID int, season string, before time.Time, limit int) ([]*models.TeamGameLog, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+gameLogColumns+`
		FROM team_game_logs
		WHERE team_id = $1 AND season = $2 AND game_date < $3
		ORDER BY game_date DESC
		LIMIT $4
	`, teamID, season, before, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query games before %s: %w", before.Format("2006-01-02"), err)
	}
	defer rows.Close()

	var logs []*models.TeamGameLog
	for rows.Next() {
		g, err := scanGameLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game log: %w", err)
		}
		logs = append(logs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating game logs: %w", err)
	}

	return logs, nil
}

// OpponentLog returns the other team's record for the same game_id, or nil
// when the opposing row is missing.
func (r *GameLogRepository) OpponentLog(ctx context.Context, gameID string, teamID int) (*models.TeamGameLog, error) {
	row := r.db.Pool.QueryRow(ctx, `
		SELECT `+gameLogColumns+`
		FROM team_game_logs
		WHERE game_id = $1 AND team_id <> $2
	`, gameID, teamID)

	g, err := scanGameLog(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get opponent log for game %s: %w", gameID, err)
	}

	return g, nil
}

// ListSeason returns all game logs for a season ordered by date.
func (r *GameLogRepository) ListSeason(ctx context.Context, season string) ([]*models.TeamGameLog, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT `+gameLogColumns+`
		FROM team_game_logs
		WHERE season = $1
		ORDER BY game_date, game_id, team_id
	`, season)
	if err != nil {
		return nil, fmt.Errorf("failed to query season game logs: %w", err)
	}
	defer rows.Close()

	var logs []*models.TeamGameLog
	for rows.Next() {
		g, err := scanGameLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game log: %w", err)
		}
		logs = append(logs, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating season game logs: %w", err)
	}

	return logs, nil
}
