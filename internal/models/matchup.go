package models

import "time"

// Matchup is one labeled training example: both teams' offensive snapshots
// at the game date plus the home-win outcome. Unique per game_id.
type Matchup struct {
	GameID     string    `db:"game_id"`
	GameDate   time.Time `db:"game_date"`
	Season     string    `db:"season"`
	HomeTeamID int       `db:"home_team_id"`
	AwayTeamID int       `db:"away_team_id"`
	HomeWin    int       `db:"home_win"` // 1 if the home team won

	HomeAvgPts  float64 `db:"home_avg_pts"`
	HomeAvgFGA  float64 `db:"home_avg_fga"`
	HomeAvgFG3A float64 `db:"home_avg_fg3a"`
	HomeAvgFTA  float64 `db:"home_avg_fta"`
	HomeAvgOReb float64 `db:"home_avg_oreb"`
	HomeAvgTov  float64 `db:"home_avg_tov"`
	HomeAvgPoss float64 `db:"home_avg_poss"`
	HomeRate3PA float64 `db:"home_rate_3pa"`
	HomeRateFTA float64 `db:"home_rate_fta"`
	HomeRateTov float64 `db:"home_rate_tov"`

	AwayAvgPts  float64 `db:"away_avg_pts"`
	AwayAvgFGA  float64 `db:"away_avg_fga"`
	AwayAvgFG3A float64 `db:"away_avg_fg3a"`
	AwayAvgFTA  float64 `db:"away_avg_fta"`
	AwayAvgOReb float64 `db:"away_avg_oreb"`
	AwayAvgTov  float64 `db:"away_avg_tov"`
	AwayAvgPoss float64 `db:"away_avg_poss"`
	AwayRate3PA float64 `db:"away_rate_3pa"`
	AwayRateFTA float64 `db:"away_rate_fta"`
	AwayRateTov float64 `db:"away_rate_tov"`
}

// MatchupFeatureNames is the ordered feature list shared by the training and
// inference paths. It is declared statically so the served model can never
// drift from what it was trained on; the persisted artifact records the list
// it was fitted with and loading fails on any mismatch.
var MatchupFeatureNames = []string{
	"home_avg_pts",
	"home_avg_fga",
	"home_avg_fg3a",
	"home_avg_fta",
	"home_avg_oreb",
	"home_avg_tov",
	"home_avg_poss",
	"home_rate_3pa",
	"home_rate_fta",
	"home_rate_tov",
	"away_avg_pts",
	"away_avg_fga",
	"away_avg_fg3a",
	"away_avg_fta",
	"away_avg_oreb",
	"away_avg_tov",
	"away_avg_poss",
	"away_rate_3pa",
	"away_rate_fta",
	"away_rate_tov",
}

// FeatureVector returns the matchup's features in MatchupFeatureNames order.
func (m *Matchup) FeatureVector() []float64 {
	return []float64{
		m.HomeAvgPts, m.HomeAvgFGA, m.HomeAvgFG3A, m.HomeAvgFTA, m.HomeAvgOReb,
		m.HomeAvgTov, m.HomeAvgPoss, m.HomeRate3PA, m.HomeRateFTA, m.HomeRateTov,
		m.AwayAvgPts, m.AwayAvgFGA, m.AwayAvgFG3A, m.AwayAvgFTA, m.AwayAvgOReb,
		m.AwayAvgTov, m.AwayAvgPoss, m.AwayRate3PA, m.AwayRateFTA, m.AwayRateTov,
	}
}

// MatchupFeatureVector builds an inference row from a home and an away
// offensive snapshot, in MatchupFeatureNames order.
func MatchupFeatureVector(home, away *TeamFeature) []float64 {
	return []float64{
		home.AvgPts, home.AvgFGA, home.AvgFG3A, home.AvgFTA, home.AvgOReb,
		home.AvgTov, home.AvgPoss, home.Rate3PA, home.RateFTA, home.RateTov,
		away.AvgPts, away.AvgFGA, away.AvgFG3A, away.AvgFTA, away.AvgOReb,
		away.AvgTov, away.AvgPoss, away.Rate3PA, away.RateFTA, away.RateTov,
	}
}

// NewMatchup assembles a labeled matchup row from the resolved home and away
// game logs and their offensive snapshots at the game date.
func NewMatchup(homeLog, awayLog *TeamGameLog, homeFeat, awayFeat *TeamFeature, season string) *Matchup {
	homeWin := 0
	if homeLog.IsWin() {
		homeWin = 1
	}
	return &Matchup{
		GameID:     homeLog.GameID,
		GameDate:   homeLog.GameDate,
		Season:     season,
		HomeTeamID: homeLog.TeamID,
		AwayTeamID: awayLog.TeamID,
		HomeWin:    homeWin,

		HomeAvgPts:  homeFeat.AvgPts,
		HomeAvgFGA:  homeFeat.AvgFGA,
		HomeAvgFG3A: homeFeat.AvgFG3A,
		HomeAvgFTA:  homeFeat.AvgFTA,
		HomeAvgOReb: homeFeat.AvgOReb,
		HomeAvgTov:  homeFeat.AvgTov,
		HomeAvgPoss: homeFeat.AvgPoss,
		HomeRate3PA: homeFeat.Rate3PA,
		HomeRateFTA: homeFeat.RateFTA,
		HomeRateTov: homeFeat.RateTov,

		AwayAvgPts:  awayFeat.AvgPts,
		AwayAvgFGA:  awayFeat.AvgFGA,
		AwayAvgFG3A: awayFeat.AvgFG3A,
		AwayAvgFTA:  awayFeat.AvgFTA,
		AwayAvgOReb: awayFeat.AvgOReb,
		AwayAvgTov:  awayFeat.AvgTov,
		AwayAvgPoss: awayFeat.AvgPoss,
		AwayRate3PA: awayFeat.Rate3PA,
		AwayRateFTA: awayFeat.RateFTA,
		AwayRateTov: awayFeat.RateTov,
	}
}
