package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchupFeatureVector_Order(t *testing.T) {
	m := &Matchup{
		HomeAvgPts: 1, HomeAvgFGA: 2, HomeAvgFG3A: 3, HomeAvgFTA: 4, HomeAvgOReb: 5,
		HomeAvgTov: 6, HomeAvgPoss: 7, HomeRate3PA: 8, HomeRateFTA: 9, HomeRateTov: 10,
		AwayAvgPts: 11, AwayAvgFGA: 12, AwayAvgFG3A: 13, AwayAvgFTA: 14, AwayAvgOReb: 15,
		AwayAvgTov: 16, AwayAvgPoss: 17, AwayRate3PA: 18, AwayRateFTA: 19, AwayRateTov: 20,
	}

	vec := m.FeatureVector()
	require.Len(t, vec, len(MatchupFeatureNames))
	for i, v := range vec {
		assert.Equal(t, float64(i+1), v, "Vector position %d (%s)", i, MatchupFeatureNames[i])
	}
}

func TestMatchupFeatureVector_FromSnapshots(t *testing.T) {
	home := &TeamFeature{AvgPts: 1, AvgFGA: 2, AvgFG3A: 3, AvgFTA: 4, AvgOReb: 5,
		AvgTov: 6, AvgPoss: 7, Rate3PA: 8, RateFTA: 9, RateTov: 10}
	away := &TeamFeature{AvgPts: 11, AvgFGA: 12, AvgFG3A: 13, AvgFTA: 14, AvgOReb: 15,
		AvgTov: 16, AvgPoss: 17, Rate3PA: 18, RateFTA: 19, RateTov: 20}

	vec := MatchupFeatureVector(home, away)
	require.Len(t, vec, 20)
	for i, v := range vec {
		assert.Equal(t, float64(i+1), v)
	}
}

func TestNewMatchup(t *testing.T) {
	date := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	homeLog := &TeamGameLog{GameID: "0022300500", TeamID: 1, GameDate: date, Matchup: "BOS vs. NYK", WL: "W"}
	awayLog := &TeamGameLog{GameID: "0022300500", TeamID: 2, GameDate: date, Matchup: "NYK @ BOS", WL: "L"}
	homeFeat := &TeamFeature{AvgPts: 118.5}
	awayFeat := &TeamFeature{AvgPts: 110.25}

	m := NewMatchup(homeLog, awayLog, homeFeat, awayFeat, "2023-24")

	assert.Equal(t, "0022300500", m.GameID)
	assert.Equal(t, 1, m.HomeTeamID)
	assert.Equal(t, 2, m.AwayTeamID)
	assert.Equal(t, 1, m.HomeWin)
	assert.Equal(t, "2023-24", m.Season)
	assert.Equal(t, 118.5, m.HomeAvgPts)
	assert.Equal(t, 110.25, m.AwayAvgPts)

	lost := NewMatchup(&TeamGameLog{WL: "L"}, awayLog, homeFeat, awayFeat, "2023-24")
	assert.Equal(t, 0, lost.HomeWin)
}
