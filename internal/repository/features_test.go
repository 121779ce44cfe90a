package repository

import (
	"testing"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFeatureRepository_InsertAndGet(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	asOf := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	feat := &models.TeamFeature{
		TeamID: 1, AsOfDate: asOf, Season: "2023-24", Window: 10, GamesUsed: 10,
		AvgPts: 112.4, AvgFGA: 88.1, AvgFG3A: 36.2, AvgFTA: 21.5,
		AvgOReb: 10.3, AvgTov: 13.1, AvgPoss: 100.36, Rate3PA: 0.411,
		RateFTA: 0.244, RateTov: 0.131,
	}

	require.NoError(t, db.Features.InsertBatch(ctx, []*models.TeamFeature{feat}))

	got, err := db.Features.Get(ctx, 1, asOf, 10)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "2023-24", got.Season)
	assert.InDelta(t, 112.4, got.AvgPts, 1e-9)
	assert.InDelta(t, 0.411, got.Rate3PA, 1e-9)

	// Different window: no hit.
	miss, err := db.Features.Get(ctx, 1, asOf, 5)
	require.NoError(t, err)
	assert.Nil(t, miss)

	keys, err := db.Features.ExistingKeys(ctx, "2023-24", 10)
	require.NoError(t, err)
	assert.Contains(t, keys, models.SnapshotKey(1, asOf))
}

func TestBaselineRepository_ReplaceAndGetSet(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	rows := []*models.SeasonFeatureBaseline{
		{Season: "2023-24", Window: 10, FeatureName: "avg_pts", Mean: 113.2, Std: 5.1,
			P10: 106.0, P25: 109.5, P50: 113.0, P75: 116.8, P90: 120.1},
	}
	require.NoError(t, db.Baselines.Replace(ctx, "2023-24", 10, rows))

	set, err := db.Baselines.GetSet(ctx, "2023-24", 10)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.InDelta(t, 113.2, set["avg_pts"].Mean, 1e-9)

	// Replace swaps the whole set; the old row must not survive.
	rows = []*models.SeasonFeatureBaseline{
		{Season: "2023-24", Window: 10, FeatureName: "avg_poss", Mean: 100.0, Std: 2.5},
	}
	require.NoError(t, db.Baselines.Replace(ctx, "2023-24", 10, rows))

	set, err = db.Baselines.GetSet(ctx, "2023-24", 10)
	require.NoError(t, err)
	require.Len(t, set, 1)
	assert.Nil(t, set["avg_pts"])
	assert.NotNil(t, set["avg_poss"])
}

func TestMatchupRepository_InsertAndListByDate(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	later := &models.Matchup{GameID: "B", GameDate: time.Date(2024, 1, 12, 0, 0, 0, 0, time.UTC),
		Season: "2023-24", HomeTeamID: 3, AwayTeamID: 4, HomeWin: 0}
	earlier := &models.Matchup{GameID: "A", GameDate: time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
		Season: "2023-24", HomeTeamID: 1, AwayTeamID: 2, HomeWin: 1}

	require.NoError(t, db.Matchups.InsertBatch(ctx, []*models.Matchup{later, earlier}))

	got, err := db.Matchups.ListByDate(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].GameID, "Chronological order regardless of insert order")
	assert.Equal(t, "B", got[1].GameID)

	ids, err := db.Matchups.ExistingGameIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	bySeason, err := db.Matchups.ListSeasonByDate(ctx, "2023-24")
	require.NoError(t, err)
	assert.Len(t, bySeason, 2)

	other, err := db.Matchups.ListSeasonByDate(ctx, "2022-23")
	require.NoError(t, err)
	assert.Empty(t, other)
}
