package models

import "time"

// TeamFeature is a rolling offensive snapshot for a team as of a date.
// It folds in at most Window games played strictly before AsOfDate.
// Unique per (team_id, as_of_date, window).
type TeamFeature struct {
	TeamID    int       `db:"team_id"`
	AsOfDate  time.Time `db:"as_of_date"`
	Season    string    `db:"season"`
	Window    int       `db:"window"`
	GamesUsed int       `db:"games_used"`

	AvgPts  float64 `db:"avg_pts"`
	AvgFGA  float64 `db:"avg_fga"`
	AvgFG3A float64 `db:"avg_fg3a"`
	AvgFTA  float64 `db:"avg_fta"`
	AvgOReb float64 `db:"avg_oreb"`
	AvgTov  float64 `db:"avg_tov"`

	// Derived from the averaged components, not averaged per game.
	AvgPoss float64 `db:"avg_poss"`
	Rate3PA float64 `db:"rate_3pa"`
	RateFTA float64 `db:"rate_fta"`
	RateTov float64 `db:"rate_tov"`
}

// BaselineValues maps feature names to values for baseline aggregation.
// Identifier and bookkeeping fields are deliberately absent.
func (f *TeamFeature) BaselineValues() map[string]float64 {
	return map[string]float64{
		"avg_pts":  f.AvgPts,
		"avg_fga":  f.AvgFGA,
		"avg_fg3a": f.AvgFG3A,
		"avg_fta":  f.AvgFTA,
		"avg_oreb": f.AvgOReb,
		"avg_tov":  f.AvgTov,
		"avg_poss": f.AvgPoss,
		"rate_3pa": f.Rate3PA,
		"rate_fta": f.RateFTA,
		"rate_tov": f.RateTov,
	}
}

// TeamDefFeature is the defensive mirror of TeamFeature: the same rolling
// quantities computed over what the team's opponents did in the same games,
// i.e. what this team allowed (or forced, for turnovers).
type TeamDefFeature struct {
	TeamID    int       `db:"team_id"`
	AsOfDate  time.Time `db:"as_of_date"`
	Season    string    `db:"season"`
	Window    int       `db:"window"`
	GamesUsed int       `db:"games_used"`

	AvgPtsAllowed  float64 `db:"def_avg_pts_allowed"`
	AvgFGAAllowed  float64 `db:"def_avg_fga_allowed"`
	AvgFG3AAllowed float64 `db:"def_avg_fg3a_allowed"`
	AvgFTAAllowed  float64 `db:"def_avg_fta_allowed"`
	AvgORebAllowed float64 `db:"def_avg_oreb_allowed"`
	AvgTovForced   float64 `db:"def_avg_tov_forced"`

	AvgPossAllowed float64 `db:"def_avg_poss_allowed"`
	Rate3PAAllowed float64 `db:"def_rate_3pa_allowed"`
	RateFTAAllowed float64 `db:"def_rate_fta_allowed"`
	RateTovForced  float64 `db:"def_rate_tov_forced"`
}

// BaselineValues maps defensive feature names to values for baseline
// aggregation.
func (f *TeamDefFeature) BaselineValues() map[string]float64 {
	return map[string]float64{
		"def_avg_pts_allowed":  f.AvgPtsAllowed,
		"def_avg_fga_allowed":  f.AvgFGAAllowed,
		"def_avg_fg3a_allowed": f.AvgFG3AAllowed,
		"def_avg_fta_allowed":  f.AvgFTAAllowed,
		"def_avg_oreb_allowed": f.AvgORebAllowed,
		"def_avg_tov_forced":   f.AvgTovForced,
		"def_avg_poss_allowed": f.AvgPossAllowed,
		"def_rate_3pa_allowed": f.Rate3PAAllowed,
		"def_rate_fta_allowed": f.RateFTAAllowed,
		"def_rate_tov_forced":  f.RateTovForced,
	}
}
