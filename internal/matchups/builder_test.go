package matchups

import (
	"context"
	"testing"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeLogSource struct {
	logs []*models.TeamGameLog
}

func (s *fakeLogSource) ListSeason(_ context.Context, season string) ([]*models.TeamGameLog, error) {
	var out []*models.TeamGameLog
	for _, g := range s.logs {
		if g.Season == season {
			out = append(out, g)
		}
	}
	return out, nil
}

type fakeFeatureGetter struct {
	feats map[string]*models.TeamFeature
}

func (s *fakeFeatureGetter) Get(_ context.Context, teamID int, asOf time.Time, _ int) (*models.TeamFeature, error) {
	return s.feats[models.SnapshotKey(teamID, asOf)], nil
}

type fakeMatchupStore struct {
	existing map[string]struct{}
	inserted []*models.Matchup
}

func newFakeMatchupStore() *fakeMatchupStore {
	return &fakeMatchupStore{existing: make(map[string]struct{})}
}

func (s *fakeMatchupStore) ExistingGameIDs(_ context.Context) (map[string]struct{}, error) {
	ids := make(map[string]struct{}, len(s.existing))
	for id := range s.existing {
		ids[id] = struct{}{}
	}
	return ids, nil
}

func (s *fakeMatchupStore) InsertBatch(_ context.Context, matchups []*models.Matchup) error {
	for _, m := range matchups {
		s.existing[m.GameID] = struct{}{}
		s.inserted = append(s.inserted, m)
	}
	return nil
}

func gameDate(day int) time.Time {
	return time.Date(2024, 1, day, 0, 0, 0, 0, time.UTC)
}

func pairedGame(gameID string, day, homeID, awayID int, homeWon bool) []*models.TeamGameLog {
	homeWL, awayWL := "L", "W"
	if homeWon {
		homeWL, awayWL = "W", "L"
	}
	return []*models.TeamGameLog{
		{
			GameID: gameID, TeamID: homeID, Season: "2023-24", GameDate: gameDate(day),
			Matchup: "BOS vs. LAL", WL: homeWL,
		},
		{
			GameID: gameID, TeamID: awayID, Season: "2023-24", GameDate: gameDate(day),
			Matchup: "LAL @ BOS", WL: awayWL,
		},
	}
}

func snapshotFor(teamID, day int, avgPts float64) (string, *models.TeamFeature) {
	asOf := gameDate(day)
	return models.SnapshotKey(teamID, asOf), &models.TeamFeature{
		TeamID: teamID, AsOfDate: asOf, AvgPts: avgPts,
	}
}

func TestBuilder_BuildSeason(t *testing.T) {
	logs := &fakeLogSource{logs: pairedGame("0022300001", 10, 1, 2, true)}

	feats := &fakeFeatureGetter{feats: map[string]*models.TeamFeature{}}
	k1, f1 := snapshotFor(1, 10, 112.5)
	k2, f2 := snapshotFor(2, 10, 108.0)
	feats.feats[k1] = f1
	feats.feats[k2] = f2

	store := newFakeMatchupStore()
	b := NewBuilder(logs, feats, store, 0)

	res, err := b.BuildSeason(context.Background(), "2023-24", 10)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Inserted)
	assert.Equal(t, 0, res.Skipped)

	require.Len(t, store.inserted, 1)
	m := store.inserted[0]
	assert.Equal(t, 1, m.HomeTeamID, "Team with vs. descriptor is home")
	assert.Equal(t, 2, m.AwayTeamID)
	assert.Equal(t, 1, m.HomeWin)
	assert.Equal(t, 112.5, m.HomeAvgPts)
	assert.Equal(t, 108.0, m.AwayAvgPts)
}

func TestBuilder_ResolvesHomeFromAwayDescriptor(t *testing.T) {
	// Home descriptor unparseable; the away side's "@" still resolves sides.
	game := pairedGame("0022300002", 11, 3, 4, false)
	game[0].Matchup = "???"

	logs := &fakeLogSource{logs: game}
	feats := &fakeFeatureGetter{feats: map[string]*models.TeamFeature{}}
	k3, f3 := snapshotFor(3, 11, 100)
	k4, f4 := snapshotFor(4, 11, 105)
	feats.feats[k3] = f3
	feats.feats[k4] = f4

	store := newFakeMatchupStore()
	b := NewBuilder(logs, feats, store, 0)

	res, err := b.BuildSeason(context.Background(), "2023-24", 10)
	require.NoError(t, err)
	require.Equal(t, 1, res.Inserted)
	assert.Equal(t, 3, store.inserted[0].HomeTeamID)
	assert.Equal(t, 0, store.inserted[0].HomeWin)
}

func TestBuilder_SkipsMalformedGames(t *testing.T) {
	// One game with 3 rows, one with unresolvable descriptors on both sides.
	three := pairedGame("0022300003", 12, 5, 6, true)
	three = append(three, &models.TeamGameLog{
		GameID: "0022300003", TeamID: 7, Season: "2023-24", GameDate: gameDate(12), Matchup: "X vs. Y",
	})
	unresolvable := pairedGame("0022300004", 12, 8, 9, true)
	unresolvable[0].Matchup = "???"
	unresolvable[1].Matchup = "???"

	logs := &fakeLogSource{logs: append(three, unresolvable...)}
	store := newFakeMatchupStore()
	b := NewBuilder(logs, &fakeFeatureGetter{feats: map[string]*models.TeamFeature{}}, store, 0)

	res, err := b.BuildSeason(context.Background(), "2023-24", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Empty(t, store.inserted)
}

func TestBuilder_SkipsGamesMissingSnapshots(t *testing.T) {
	logs := &fakeLogSource{logs: pairedGame("0022300005", 13, 1, 2, true)}

	// Only the home snapshot exists.
	feats := &fakeFeatureGetter{feats: map[string]*models.TeamFeature{}}
	k1, f1 := snapshotFor(1, 13, 110)
	feats.feats[k1] = f1

	store := newFakeMatchupStore()
	b := NewBuilder(logs, feats, store, 0)

	res, err := b.BuildSeason(context.Background(), "2023-24", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Inserted)
	assert.Equal(t, 1, res.Skipped, "Game without both snapshots is skipped")
}

func TestBuilder_Idempotent(t *testing.T) {
	logs := &fakeLogSource{logs: pairedGame("0022300006", 14, 1, 2, true)}

	feats := &fakeFeatureGetter{feats: map[string]*models.TeamFeature{}}
	k1, f1 := snapshotFor(1, 14, 110)
	k2, f2 := snapshotFor(2, 14, 100)
	feats.feats[k1] = f1
	feats.feats[k2] = f2

	store := newFakeMatchupStore()
	b := NewBuilder(logs, feats, store, 0)

	first, err := b.BuildSeason(context.Background(), "2023-24", 10)
	require.NoError(t, err)
	require.Equal(t, 1, first.Inserted)

	second, err := b.BuildSeason(context.Background(), "2023-24", 10)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Inserted)
	assert.Equal(t, 1, second.Skipped)
	assert.Len(t, store.inserted, 1, "Rerun must not duplicate rows")
}
