package features

import (
	"context"
	"fmt"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is the flush size for buffered snapshot writes.
const DefaultBatchSize = 200

// GameLogStore is the slice of game log storage the builders need.
type GameLogStore interface {
	// ListTargets returns every (team_id, game_date) pair for a season in
	// chronological order.
	ListTargets(ctx context.Context, season string) ([]models.GameRef, error)
	// GamesBefore returns a team's games for a season strictly before a
	// date, newest first, capped at limit.
	GamesBefore(ctx context.Context, teamID int, season string, before time.Time, limit int) ([]*models.TeamGameLog, error)
	// OpponentLog returns the opposing team's record for a game_id, or nil.
	OpponentLog(ctx context.Context, gameID string, teamID int) (*models.TeamGameLog, error)
}

// FeatureStore persists offensive snapshots.
type FeatureStore interface {
	ExistingKeys(ctx context.Context, season string, window int) (map[string]struct{}, error)
	InsertBatch(ctx context.Context, feats []*models.TeamFeature) error
	Get(ctx context.Context, teamID int, asOf time.Time, window int) (*models.TeamFeature, error)
}

// BuildResult reports what a season build did. A run with Inserted == 0 and
// Skipped == TotalCandidates means the build was already complete.
type BuildResult struct {
	Season          string `json:"season"`
	Window          int    `json:"window"`
	Inserted        int    `json:"inserted"`
	Skipped         int    `json:"skipped"`
	TotalCandidates int    `json:"total_candidates"`
}

// Builder computes and stores rolling offensive snapshots for a season.
type Builder struct {
	logs      GameLogStore
	feats     FeatureStore
	batchSize int
}

// NewBuilder creates a Builder. batchSize <= 0 selects DefaultBatchSize.
func NewBuilder(logs GameLogStore, feats FeatureStore, batchSize int) *Builder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Builder{logs: logs, feats: feats, batchSize: batchSize}
}

// BuildSeason computes a snapshot for every (team, game date) pair of the
// season, skipping pairs that already have one and pairs with fewer than
// minGames of prior history. Snapshots are buffered and flushed in fixed-size
// batches; a flush failure aborts the whole build.
func (b *Builder) BuildSeason(ctx context.Context, season string, window, minGames int) (*BuildResult, error) {
	log.Info().
		Str("season", season).
		Int("window", window).
		Int("min_games", minGames).
		Msg("Building offensive features")

	targets, err := b.logs.ListTargets(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature targets: %w", err)
	}

	existing, err := b.feats.ExistingKeys(ctx, season, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing snapshot keys: %w", err)
	}

	res := &BuildResult{Season: season, Window: window, TotalCandidates: len(targets)}
	var buffer []*models.TeamFeature

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := b.feats.InsertBatch(ctx, buffer); err != nil {
			return fmt.Errorf("feature batch flush failed: %w", err)
		}
		res.Inserted += len(buffer)
		buffer = buffer[:0]
		return nil
	}

	for _, t := range targets {
		if _, ok := existing[models.SnapshotKey(t.TeamID, t.GameDate)]; ok {
			res.Skipped++
			continue
		}

		past, err := b.logs.GamesBefore(ctx, t.TeamID, season, t.GameDate, window)
		if err != nil {
			return nil, fmt.Errorf("failed to load history for team %d: %w", t.TeamID, err)
		}
		if len(past) < minGames {
			res.Skipped++ // not enough history yet, a normal skip
			continue
		}

		if f := ComputeOffense(past, t.TeamID, t.GameDate, season, window); f != nil {
			buffer = append(buffer, f)
		}

		if len(buffer) >= b.batchSize {
			if err := flush(); err != nil {
				return nil, err
			}
		}
	}

	if err := flush(); err != nil {
		return nil, err
	}

	log.Info().
		Str("season", season).
		Int("inserted", res.Inserted).
		Int("skipped", res.Skipped).
		Int("total_candidates", res.TotalCandidates).
		Msg("Offensive feature build complete")

	return res, nil
}

// GetOrCompute returns the stored snapshot for (team, as_of_date, window) or
// computes one on the fly from the game log history. Returns nil when the
// team has no games before the date.
func (b *Builder) GetOrCompute(ctx context.Context, teamID int, asOf time.Time, season string, window int) (*models.TeamFeature, error) {
	f, err := b.feats.Get(ctx, teamID, asOf, window)
	if err != nil {
		return nil, err
	}
	if f != nil {
		return f, nil
	}

	past, err := b.logs.GamesBefore(ctx, teamID, season, asOf, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for team %d: %w", teamID, err)
	}

	return ComputeOffense(past, teamID, asOf, season, window), nil
}
