// Package matchups pairs both teams' offensive snapshots at a game's date
// with the home-win outcome, producing the labeled dataset the
// win-probability model trains on.
package matchups

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/rs/zerolog/log"
)

// DefaultBatchSize is the flush size for buffered matchup writes.
const DefaultBatchSize = 100

// LogSource lists a season's game logs.
type LogSource interface {
	ListSeason(ctx context.Context, season string) ([]*models.TeamGameLog, error)
}

// FeatureGetter fetches one offensive snapshot.
type FeatureGetter interface {
	Get(ctx context.Context, teamID int, asOf time.Time, window int) (*models.TeamFeature, error)
}

// MatchupStore persists the matchup dataset.
type MatchupStore interface {
	ExistingGameIDs(ctx context.Context) (map[string]struct{}, error)
	InsertBatch(ctx context.Context, matchups []*models.Matchup) error
}

// Result reports a matchup build.
type Result struct {
	Season   string `json:"season"`
	Window   int    `json:"window"`
	Inserted int    `json:"inserted"`
	Skipped  int    `json:"skipped"`
}

// Builder assembles the labeled matchup dataset for a season.
type Builder struct {
	logs      LogSource
	feats     FeatureGetter
	store     MatchupStore
	batchSize int
}

// NewBuilder creates a Builder. batchSize <= 0 selects DefaultBatchSize.
func NewBuilder(logs LogSource, feats FeatureGetter, store MatchupStore, batchSize int) *Builder {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Builder{logs: logs, feats: feats, store: store, batchSize: batchSize}
}

// resolveSides determines the home and away log from the matchup descriptor
// convention ("vs." marks home, "@" marks away). Returns nils when neither
// descriptor is resolvable.
func resolveSides(a, b *models.TeamGameLog) (home, away *models.TeamGameLog) {
	switch {
	case a.IsHome():
		return a, b
	case a.IsAway():
		return b, a
	case b.IsHome():
		return b, a
	case b.IsAway():
		return a, b
	}
	return nil, nil
}

// BuildSeason groups the season's logs by game, resolves home/away, joins
// both teams' snapshots at the game date and inserts one labeled row per
// game. Malformed games are logged and skipped; already-built game ids are
// skipped before any computation. Buffered writes flush in fixed-size
// batches and a flush failure aborts the build.
func (b *Builder) BuildSeason(ctx context.Context, season string, window int) (*Result, error) {
	log.Info().Str("season", season).Int("window", window).Msg("Building matchups")

	logs, err := b.logs.ListSeason(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to list season game logs: %w", err)
	}

	existing, err := b.store.ExistingGameIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing matchup ids: %w", err)
	}

	byGame := make(map[string][]*models.TeamGameLog)
	for _, g := range logs {
		byGame[g.GameID] = append(byGame[g.GameID], g)
	}

	// Map iteration order is random; keep the build deterministic.
	gameIDs := make([]string, 0, len(byGame))
	for id := range byGame {
		gameIDs = append(gameIDs, id)
	}
	sort.Strings(gameIDs)

	res := &Result{Season: season, Window: window}
	var buffer []*models.Matchup

	flush := func() error {
		if len(buffer) == 0 {
			return nil
		}
		if err := b.store.InsertBatch(ctx, buffer); err != nil {
			return fmt.Errorf("matchup batch flush failed: %w", err)
		}
		res.Inserted += len(buffer)
		buffer = buffer[:0]
		return nil
	}

	for _, gameID := range gameIDs {
		if _, ok := existing[gameID]; ok {
			res.Skipped++
			continue
		}

		teamLogs := byGame[gameID]
		if len(teamLogs) != 2 {
			log.Warn().
				Str("game_id", gameID).
				Int("logs", len(teamLogs)).
				Msg("Game does not have exactly 2 team logs, skipping")
			continue
		}

		homeLog, awayLog := resolveSides(teamLogs[0], teamLogs[1])
		if homeLog == nil {
			log.Warn().
				Str("game_id", gameID).
				Str("matchup_a", teamLogs[0].Matchup).
				Str("matchup_b", teamLogs[1].Matchup).
				Msg("Could not resolve home/away, skipping")
			continue
		}

		homeFeat, err := b.feats.Get(ctx, homeLog.TeamID, homeLog.GameDate, window)
		if err != nil {
			return nil, fmt.Errorf("failed to get home snapshot for game %s: %w", gameID, err)
		}
		awayFeat, err := b.feats.Get(ctx, awayLog.TeamID, awayLog.GameDate, window)
		if err != nil {
			return nil, fmt.Errorf("failed to get away snapshot for game %s: %w", gameID, err)
		}

		// A supervised example needs complete features on both sides; no
		// imputation for early-season games.
		if homeFeat == nil || awayFeat == nil {
			res.Skipped++
			continue
		}

		buffer = append(buffer, models.NewMatchup(homeLog, awayLog, homeFeat, awayFeat, season))

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
		Msg("Matchup build complete")

	return res, nil
}
