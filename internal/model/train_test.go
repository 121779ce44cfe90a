package model

import (
	"context"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMatchupSource struct {
	matchups []*models.Matchup
}

func (s *fakeMatchupSource) ListByDate(_ context.Context) ([]*models.Matchup, error) {
	return s.matchups, nil
}

func (s *fakeMatchupSource) ListSeasonByDate(_ context.Context, _ string) ([]*models.Matchup, error) {
	return s.matchups, nil
}

// syntheticMatchups builds n chronological matchups where the home team wins
// exactly when its scoring average beats the away team's, with a margin so a
// linear model can learn the rule.
func syntheticMatchups(n int) []*models.Matchup {
	rng := rand.New(rand.NewSource(42))
	start := time.Date(2023, 10, 24, 0, 0, 0, 0, time.UTC)

	out := make([]*models.Matchup, 0, n)
	for i := 0; i < n; i++ {
		var homePts, awayPts float64
		for {
			homePts = 100 + rng.Float64()*20
			awayPts = 100 + rng.Float64()*20
			if homePts-awayPts > 2 || awayPts-homePts > 2 {
				break
			}
		}
		homeWin := 0
		if homePts > awayPts {
			homeWin = 1
		}
		out = append(out, &models.Matchup{
			GameID:      fmt.Sprintf("00223%05d", i),
			GameDate:    start.AddDate(0, 0, i/8),
			Season:      "2023-24",
			HomeTeamID:  1 + i%30,
			AwayTeamID:  31 + i%30,
			HomeWin:     homeWin,
			HomeAvgPts:  homePts,
			AwayAvgPts:  awayPts,
			HomeAvgFGA:  88,
			AwayAvgFGA:  88,
			HomeAvgPoss: 100,
			AwayAvgPoss: 100,
			HomeRate3PA: 0.4,
			AwayRate3PA: 0.4,
		})
	}
	return out
}

func TestTrainer_Train(t *testing.T) {
	source := &fakeMatchupSource{matchups: syntheticMatchups(200)}
	store := NewStore(filepath.Join(t.TempDir(), "model.json"))
	trainer := NewTrainer(source, store)

	metrics, err := trainer.Train(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 160, metrics.TrainSize, "80/20 chronological split")
	assert.Equal(t, 40, metrics.TestSize)
	assert.Greater(t, metrics.Accuracy, 0.7, "Learnable rule should beat coin flips")
	assert.Greater(t, metrics.AUC, 0.7)
	assert.InDelta(t, 0.5, metrics.BaselineWinRate, 0.15)

	artifact, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, models.MatchupFeatureNames, artifact.FeatureNames)
	assert.False(t, artifact.TrainedAt.IsZero())
}

func TestTrainer_TrainNoMatchups(t *testing.T) {
	trainer := NewTrainer(&fakeMatchupSource{}, NewStore(filepath.Join(t.TempDir(), "model.json")))

	_, err := trainer.Train(context.Background())
	assert.ErrorIs(t, err, ErrNoMatchups)
}

func TestTrainer_TrainSingleMatchup(t *testing.T) {
	// One row leaves the 80% training slice empty; that must surface as a
	// no-data error, not a fault inside the scaler.
	store := NewStore(filepath.Join(t.TempDir(), "model.json"))
	trainer := NewTrainer(&fakeMatchupSource{matchups: syntheticMatchups(1)}, store)

	metrics, err := trainer.Train(context.Background())
	assert.ErrorIs(t, err, ErrNoMatchups)
	assert.Nil(t, metrics)

	_, err = store.Load()
	assert.ErrorIs(t, err, ErrModelNotTrained, "No artifact should be written")
}

func TestPredictor_WinProbability(t *testing.T) {
	source := &fakeMatchupSource{matchups: syntheticMatchups(200)}
	store := NewStore(filepath.Join(t.TempDir(), "model.json"))
	_, err := NewTrainer(source, store).Train(context.Background())
	require.NoError(t, err)

	predictor := NewPredictor(store)

	strong := &models.TeamFeature{AvgPts: 118, AvgFGA: 88, AvgPoss: 100, Rate3PA: 0.4}
	weak := &models.TeamFeature{AvgPts: 102, AvgFGA: 88, AvgPoss: 100, Rate3PA: 0.4}

	pHigh, err := predictor.WinProbability(strong, weak)
	require.NoError(t, err)
	pLow, err := predictor.WinProbability(weak, strong)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, pHigh, 0.0)
	assert.LessOrEqual(t, pHigh, 1.0)
	assert.Greater(t, pHigh, pLow, "Higher-scoring home side should be favored")
	assert.Greater(t, pHigh, 0.5)
	assert.Less(t, pLow, 0.5)
}

func TestPredictor_NotTrained(t *testing.T) {
	predictor := NewPredictor(NewStore(filepath.Join(t.TempDir(), "model.json")))

	_, err := predictor.WinProbability(&models.TeamFeature{}, &models.TeamFeature{})
	assert.ErrorIs(t, err, ErrModelNotTrained)

	assert.Nil(t, predictor.Contributions(&models.TeamFeature{}, &models.TeamFeature{}))
}

func TestPredictor_Contributions(t *testing.T) {
	source := &fakeMatchupSource{matchups: syntheticMatchups(200)}
	store := NewStore(filepath.Join(t.TempDir(), "model.json"))
	_, err := NewTrainer(source, store).Train(context.Background())
	require.NoError(t, err)

	predictor := NewPredictor(store)
	home := &models.TeamFeature{AvgPts: 115, AvgFGA: 88, AvgPoss: 100, Rate3PA: 0.4}
	away := &models.TeamFeature{AvgPts: 105, AvgFGA: 88, AvgPoss: 100, Rate3PA: 0.4}

	factors := predictor.Contributions(home, away)
	require.Len(t, factors, len(models.MatchupFeatureNames))
	for i, f := range factors {
		assert.Equal(t, models.MatchupFeatureNames[i], f.Feature)
	}
}
