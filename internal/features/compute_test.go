package features

import (
	"testing"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeOffense_Averages(t *testing.T) {
	asOf := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	games := []*models.TeamGameLog{
		{Pts: 110, FGA: 90, FG3A: 30, FTA: 20, OReb: 10, Tov: 12},
		{Pts: 100, FGA: 80, FG3A: 40, FTA: 30, OReb: 14, Tov: 16},
	}

	f := ComputeOffense(games, 1610612738, asOf, "2023-24", 10)
	require.NotNil(t, f, "Should compute a snapshot from non-empty games")

	assert.Equal(t, 1610612738, f.TeamID)
	assert.Equal(t, 2, f.GamesUsed)
	assert.InDelta(t, 105.0, f.AvgPts, 1e-9)
	assert.InDelta(t, 85.0, f.AvgFGA, 1e-9)
	assert.InDelta(t, 35.0, f.AvgFG3A, 1e-9)
	assert.InDelta(t, 25.0, f.AvgFTA, 1e-9)
	assert.InDelta(t, 12.0, f.AvgOReb, 1e-9)
	assert.InDelta(t, 14.0, f.AvgTov, 1e-9)

	// poss = fga - oreb + tov + 0.44*fta on the averaged components
	wantPoss := 85.0 - 12.0 + 14.0 + 0.44*25.0
	assert.InDelta(t, wantPoss, f.AvgPoss, 1e-9)
	assert.InDelta(t, 35.0/85.0, f.Rate3PA, 1e-9)
	assert.InDelta(t, 25.0/85.0, f.RateFTA, 1e-9)
	assert.InDelta(t, 14.0/wantPoss, f.RateTov, 1e-9)
}

func TestComputeOffense_EmptyGames(t *testing.T) {
	f := ComputeOffense(nil, 1, time.Now(), "2023-24", 10)
	assert.Nil(t, f, "No games should yield no snapshot")
}

func TestComputeOffense_ZeroDenominators(t *testing.T) {
	// All-zero box scores leave every rate denominator at 0; the rates must
	// come back as 0, not NaN or Inf.
	games := []*models.TeamGameLog{{}, {}}

	f := ComputeOffense(games, 1, time.Now(), "2023-24", 10)
	require.NotNil(t, f)

	assert.Zero(t, f.Rate3PA)
	assert.Zero(t, f.RateFTA)
	assert.Zero(t, f.RateTov)
	assert.Zero(t, f.AvgPoss)
}

func TestComputeDefense_Averages(t *testing.T) {
	asOf := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	opponents := []*models.TeamGameLog{
		{Pts: 120, FGA: 100, FG3A: 50, FTA: 25, OReb: 15, Tov: 10},
		{Pts: 80, FGA: 80, FG3A: 30, FTA: 15, OReb: 5, Tov: 20},
	}

	f := ComputeDefense(opponents, 42, asOf, "2023-24", 10)
	require.NotNil(t, f)

	assert.Equal(t, 42, f.TeamID)
	assert.Equal(t, 2, f.GamesUsed)
	assert.InDelta(t, 100.0, f.AvgPtsAllowed, 1e-9)
	assert.InDelta(t, 90.0, f.AvgFGAAllowed, 1e-9)
	assert.InDelta(t, 40.0, f.AvgFG3AAllowed, 1e-9)
	assert.InDelta(t, 20.0, f.AvgFTAAllowed, 1e-9)
	assert.InDelta(t, 10.0, f.AvgORebAllowed, 1e-9)
	assert.InDelta(t, 15.0, f.AvgTovForced, 1e-9)

	wantPoss := 90.0 - 10.0 + 15.0 + 0.44*20.0
	assert.InDelta(t, wantPoss, f.AvgPossAllowed, 1e-9)
	assert.InDelta(t, 40.0/90.0, f.Rate3PAAllowed, 1e-9)
	assert.InDelta(t, 15.0/wantPoss, f.RateTovForced, 1e-9)
}

func TestComputeDefense_EmptyOpponents(t *testing.T) {
	f := ComputeDefense(nil, 1, time.Now(), "2023-24", 10)
	assert.Nil(t, f)
}
