package models

import (
	"fmt"
	"strings"
	"time"
)

// GameRef identifies one (team, game date) pair, the unit the season feature
// builders enumerate.
type GameRef struct {
	TeamID   int
	GameDate time.Time
}

// SnapshotKey builds the signature used for idempotent skip checks on
// feature snapshots. Dates are keyed by calendar day.
func SnapshotKey(teamID int, asOf time.Time) string {
	return fmt.Sprintf("%d|%s", teamID, asOf.Format("2006-01-02"))
}

// TeamGameLog is one team's box score for one game. Each game produces two
// rows, keyed (game_id, team_id). Rows are immutable once ingested and carry
// the season they were ingested for, so every downstream computation can be
// scoped explicitly instead of assuming the table holds a single season.
type TeamGameLog struct {
	GameID   string    `db:"game_id"`
	TeamID   int       `db:"team_id"`
	Season   string    `db:"season"`
	GameDate time.Time `db:"game_date"`
	Matchup  string    `db:"matchup"` // "BOS vs. NYK" for home, "BOS @ NYK" for away
	WL       string    `db:"wl"`      // "W" or "L"

	Pts       int     `db:"pts"`
	FGM       int     `db:"fgm"`
	FGA       int     `db:"fga"`
	FGPct     float64 `db:"fg_pct"`
	FG3M      int     `db:"fg3m"`
	FG3A      int     `db:"fg3a"`
	FG3Pct    float64 `db:"fg3_pct"`
	FTM       int     `db:"ftm"`
	FTA       int     `db:"fta"`
	FTPct     float64 `db:"ft_pct"`
	OReb      int     `db:"oreb"`
	DReb      int     `db:"dreb"`
	Reb       int     `db:"reb"`
	Ast       int     `db:"ast"`
	Stl       int     `db:"stl"`
	Blk       int     `db:"blk"`
	Tov       int     `db:"tov"`
	PF        int     `db:"pf"`
	PlusMinus float64 `db:"plus_minus"`
}

// IsWin reports whether this team won the game.
func (g *TeamGameLog) IsWin() bool {
	return g.WL == "W"
}

// IsHome resolves the home side from the matchup descriptor convention:
// "vs." marks the home team, "@" marks the away team.
func (g *TeamGameLog) IsHome() bool {
	return strings.Contains(g.Matchup, "vs.")
}

// IsAway reports whether the descriptor carries the away marker.
func (g *TeamGameLog) IsAway() bool {
	return strings.Contains(g.Matchup, "@")
}
