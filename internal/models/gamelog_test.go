package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTeamGameLog_HomeAwayResolution(t *testing.T) {
	home := &TeamGameLog{Matchup: "BOS vs. NYK"}
	assert.True(t, home.IsHome())
	assert.False(t, home.IsAway())

	away := &TeamGameLog{Matchup: "NYK @ BOS"}
	assert.False(t, away.IsHome())
	assert.True(t, away.IsAway())

	unknown := &TeamGameLog{Matchup: "???"}
	assert.False(t, unknown.IsHome())
	assert.False(t, unknown.IsAway())
}

func TestTeamGameLog_IsWin(t *testing.T) {
	assert.True(t, (&TeamGameLog{WL: "W"}).IsWin())
	assert.False(t, (&TeamGameLog{WL: "L"}).IsWin())
	assert.False(t, (&TeamGameLog{}).IsWin())
}

func TestSnapshotKey(t *testing.T) {
	date := time.Date(2024, 1, 5, 19, 30, 0, 0, time.UTC)
	assert.Equal(t, "1610612738|2024-01-05", SnapshotKey(1610612738, date))

	// Same calendar day, different clock times: one key.
	later := time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, SnapshotKey(1, date), SnapshotKey(1, later))
}
