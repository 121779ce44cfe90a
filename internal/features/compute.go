// Package features computes rolling per-team statistical snapshots from game
// logs. A snapshot for (team, as_of_date, window) folds in the team's most
// recent games played strictly before as_of_date, so a snapshot can always be
// used to predict the game on as_of_date without leaking its outcome.
package features

import (
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"
)

// possFTAWeight is the free-throw coefficient of the standard possession
// estimate: poss = fga - oreb + tov + 0.44*fta.
const possFTAWeight = 0.44

// ComputeOffense builds an offensive snapshot from a team's recent games.
// Returns nil when games is empty. Derived rates are computed from the
// averaged components, not averaged per game, and default to 0 when their
// denominator is 0.
func ComputeOffense(games []*models.TeamGameLog, teamID int, asOf time.Time, season string, window int) *models.TeamFeature {
	if len(games) == 0 {
		return nil
	}

	n := float64(len(games))
	var pts, fga, fg3a, fta, oreb, tov float64
	for _, g := range games {
		pts += float64(g.Pts)
		fga += float64(g.FGA)
		fg3a += float64(g.FG3A)
		fta += float64(g.FTA)
		oreb += float64(g.OReb)
		tov += float64(g.Tov)
	}
	avgPts := pts / n
	avgFGA := fga / n
	avgFG3A := fg3a / n
	avgFTA := fta / n
	avgOReb := oreb / n
	avgTov := tov / n

	avgPoss := avgFGA - avgOReb + avgTov + possFTAWeight*avgFTA

	return &models.TeamFeature{
		TeamID:    teamID,
		AsOfDate:  asOf,
		Season:    season,
		Window:    window,
		GamesUsed: len(games),

		AvgPts:  avgPts,
		AvgFGA:  avgFGA,
		AvgFG3A: avgFG3A,
		AvgFTA:  avgFTA,
		AvgOReb: avgOReb,
		AvgTov:  avgTov,

		AvgPoss: avgPoss,
		Rate3PA: safeRate(avgFG3A, avgFGA),
		RateFTA: safeRate(avgFTA, avgFGA),
		RateTov: safeRate(avgTov, avgPoss),
	}
}

// ComputeDefense builds a defensive snapshot from the opponents' logs of a
// team's recent games: what the team allowed, averaged the same way the
// offensive snapshot is. Returns nil when opponents is empty.
func ComputeDefense(opponents []*models.TeamGameLog, teamID int, asOf time.Time, season string, window int) *models.TeamDefFeature {
	if len(opponents) == 0 {
		return nil
	}

	n := float64(len(opponents))
	var pts, fga, fg3a, fta, oreb, tov float64
	for _, g := range opponents {
		pts += float64(g.Pts)
		fga += float64(g.FGA)
		fg3a += float64(g.FG3A)
		fta += float64(g.FTA)
		oreb += float64(g.OReb)
		tov += float64(g.Tov)
	}
	avgPts := pts / n
	avgFGA := fga / n
	avgFG3A := fg3a / n
	avgFTA := fta / n
	avgOReb := oreb / n
	avgTov := tov / n

	avgPoss := avgFGA - avgOReb + avgTov + possFTAWeight*avgFTA

	return &models.TeamDefFeature{
		TeamID:    teamID,
		AsOfDate:  asOf,
		Season:    season,
		Window:    window,
		GamesUsed: len(opponents),

		AvgPtsAllowed:  avgPts,
		AvgFGAAllowed:  avgFGA,
		AvgFG3AAllowed: avgFG3A,
		AvgFTAAllowed:  avgFTA,
		AvgORebAllowed: avgOReb,
		AvgTovForced:   avgTov,

		AvgPossAllowed: avgPoss,
		Rate3PAAllowed: safeRate(avgFG3A, avgFGA),
		RateFTAAllowed: safeRate(avgFTA, avgFGA),
		RateTovForced:  safeRate(avgTov, avgPoss),
	}
}

func safeRate(num, den float64) float64 {
	if den <= 0 {
		return 0.0
	}
	return num / den
}
