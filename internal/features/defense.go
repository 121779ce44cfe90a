package features

import (
	"context"
	"fmt"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/rs/zerolog/log"
)

// defenseBatchSize is smaller than the offensive batch because every game
// costs an extra opponent lookup.
const defenseBatchSize = 100

// DefFeatureStore persists defensive snapshots.
type DefFeatureStore interface {
	ExistingKeys(ctx context.Context, season string, window int) (map[string]struct{}, error)
	InsertBatch(ctx context.Context, feats []*models.TeamDefFeature) error
	Get(ctx context.Context, teamID int, asOf time.Time, window int) (*models.TeamDefFeature, error)
}

// DefenseBuilder computes and stores rolling defensive snapshots. Opponent
// stats are resolved per game through the "opponent in the same game_id"
// relation rather than a join.
type DefenseBuilder struct {
	logs      GameLogStore
	feats     DefFeatureStore
	batchSize int
}

// NewDefenseBuilder creates a DefenseBuilder. batchSize <= 0 selects the
// defense default.
func NewDefenseBuilder(logs GameLogStore, feats DefFeatureStore, batchSize int) *DefenseBuilder {
	if batchSize <= 0 {
		batchSize = defenseBatchSize
	}
	return &DefenseBuilder{logs: logs, feats: feats, batchSize: batchSize}
}

// opponentLogs resolves the opponent's record for each of the team's games.
// Games whose opposing row is missing are dropped.
func (b *DefenseBuilder) opponentLogs(ctx context.Context, games []*models.TeamGameLog, teamID int) ([]*models.TeamGameLog, error) {
	opponents := make([]*models.TeamGameLog, 0, len(games))
	for _, g := range games {
		opp, err := b.logs.OpponentLog(ctx, g.GameID, teamID)
		if err != nil {
			return nil, fmt.Errorf("failed to load opponent log for game %s: %w", g.GameID, err)
		}
		if opp != nil {
			opponents = append(opponents, opp)
		}
	}
	return opponents, nil
}

// BuildSeason computes a defensive snapshot for every (team, game date) pair
// of the season, with the same skip and flush-or-abort discipline as the
// offensive build.
func (b *DefenseBuilder) BuildSeason(ctx context.Context, season string, window, minGames int) (*BuildResult, error) {
	log.Info().
		Str("season", season).
		Int("window", window).
		Int("min_games", minGames).
		Msg("Building defensive features")

	targets, err := b.logs.ListTargets(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list feature targets: %w", err)
	}

	existing, err := b.feats.ExistingKeys(ctx, season, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing snapshot keys: %w", err)
	}

	res := &BuildResult{Season: season, Window: window, TotalCandidates: len(targets)}
	var buffer []*models.TeamDefFeature

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := b.feats.InsertBatch(ctx, buffer); err != nil {
			return fmt.Errorf("def feature batch flush failed: %w", err)
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
			res.Skipped++
			continue
		}

		opponents, err := b.opponentLogs(ctx, past, t.TeamID)
		if err != nil {
			return nil, err
		}

		if f := ComputeDefense(opponents, t.TeamID, t.GameDate, season, window); f != nil {
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
		Msg("Defensive feature build complete")

	return res, nil
}

// GetOrCompute returns the stored defensive snapshot or computes one on the
// fly. Returns nil when the team has no usable history before the date.
func (b *DefenseBuilder) GetOrCompute(ctx context.Context, teamID int, asOf time.Time, season string, window int) (*models.TeamDefFeature, error) {
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

	opponents, err := b.opponentLogs(ctx, past, teamID)
	if err != nil {
		return nil, err
	}

	return ComputeDefense(opponents, teamID, asOf, season, window), nil
}
