// Package gameplan turns two teams' rolling snapshots and the season's
// league baselines into ranked tactical tips, plus model-coefficient
// explanations when a trained artifact is available.
package gameplan

import (
	"fmt"
	"math"
	"sort"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"
)

const (
	// pairedGate gates tips that combine an opponent weakness with the
	// team's own tendency; singleGate gates single-factor tips.
	pairedGate = 0.5
	singleGate = 1.0
	// minScore is the floor a combined score must clear to be emitted.
	minScore = 0.6
	// maxTips caps the ranked output.
	maxTips = 5
)

// ZScore standardizes a value against a league baseline. A zero std yields 0
// rather than a division fault.
func ZScore(value float64, b *models.SeasonFeatureBaseline) float64 {
	if b == nil || b.Std == 0 {
		return 0.0
	}
	return (value - b.Mean) / b.Std
}

// Engine generates gameplan tips.
type Engine struct{}

// NewEngine creates an Engine.
func NewEngine() *Engine {
	return &Engine{}
}

// TeamTips scores the seven candidate tips for one team against its opponent
// and returns at most five, sorted by descending score. Every emitted tip
// clears its gating z-score and the combined-score floor.
func (e *Engine) TeamTips(
	teamOff *models.TeamFeature,
	teamDef *models.TeamDefFeature,
	oppOff *models.TeamFeature,
	oppDef *models.TeamDefFeature,
	baselines models.BaselineSet,
) []models.Tip {
	var tips []models.Tip

	add := func(theme, text string, score float64, evidence string) {
		if score > minScore {
			tips = append(tips, models.Tip{
				Theme:    theme,
				Text:     text,
				Score:    round2(score),
				Evidence: evidence,
			})
		}
	}

	// Opponent allows a high volume of threes; pair with our own tendency.
	oppAllows3 := ZScore(oppDef.Rate3PAAllowed, baselines["def_rate_3pa_allowed"])
	if oppAllows3 > pairedGate {
		own3 := ZScore(teamOff.Rate3PA, baselines["rate_3pa"])
		add("three_point",
			"Emphasize three-point volume and drive-and-kick actions.",
			(oppAllows3+own3)/2,
			fmt.Sprintf("Opponent allows a 3PA rate %.1f std above league average.", oppAllows3))
	}

	// Opponent sends teams to the line; attack the rim.
	oppAllowsFT := ZScore(oppDef.RateFTAAllowed, baselines["def_rate_fta_allowed"])
	if oppAllowsFT > pairedGate {
		ownFT := ZScore(teamOff.RateFTA, baselines["rate_fta"])
		add("rim_attack",
			"Attack the paint and put pressure on the rim.",
			(oppAllowsFT+ownFT)/2,
			fmt.Sprintf("Opponent's free-throw rate allowed is %.1f std above league average.", oppAllowsFT))
	}

	// Opponent gives up points overall; push tempo.
	oppAllowsPts := ZScore(oppDef.AvgPtsAllowed, baselines["def_avg_pts_allowed"])
	if oppAllowsPts > singleGate {
		add("tempo",
			"Push tempo and look for early offense.",
			oppAllowsPts,
			fmt.Sprintf("Opponent allows %.1f points per game, %.1f std above league average.",
				oppDef.AvgPtsAllowed, oppAllowsPts))
	}

	// We cough the ball up and they feast on turnovers.
	ownTov := ZScore(teamOff.RateTov, baselines["rate_tov"])
	oppForcesTov := ZScore(oppDef.RateTovForced, baselines["def_rate_tov_forced"])
	if ownTov > pairedGate && oppForcesTov > pairedGate {
		add("ball_security",
			"Protect the ball and avoid risky passes.",
			(ownTov+oppForcesTov)/2,
			fmt.Sprintf("Team turnover rate is %.1f std high while opponent forces turnovers %.1f std above average.",
				ownTov, oppForcesTov))
	}

	// Pace mismatch: push when clearly faster, grind when clearly slower.
	paceDiff := ZScore(teamOff.AvgPoss, baselines["avg_poss"]) - ZScore(oppOff.AvgPoss, baselines["avg_poss"])
	if paceDiff > singleGate {
		add("pace",
			"Push pace and play faster than the opponent prefers.",
			paceDiff,
			fmt.Sprintf("Team plays %.1f std faster than the opponent.", paceDiff))
	} else if paceDiff < -singleGate {
		add("pace",
			"Control tempo and limit transition opportunities.",
			-paceDiff,
			fmt.Sprintf("Team plays %.1f std slower than the opponent.", -paceDiff))
	}

	// Opponent's offense leans on the three ball.
	opp3 := ZScore(oppOff.Rate3PA, baselines["rate_3pa"])
	if opp3 > singleGate {
		add("perimeter_defense",
			"Run shooters off the line and prioritize closeouts.",
			opp3,
			fmt.Sprintf("Opponent's 3PA rate is %.1f std above league average.", opp3))
	}

	// Opponent lives at the free-throw line.
	oppFT := ZScore(oppOff.RateFTA, baselines["rate_fta"])
	if oppFT > singleGate {
		add("foul_discipline",
			"Defend without fouling and stay vertical.",
			oppFT,
			fmt.Sprintf("Opponent's free-throw rate is %.1f std above league average.", oppFT))
	}

	sort.Slice(tips, func(i, j int) bool { return tips[i].Score > tips[j].Score })
	if len(tips) > maxTips {
		tips = tips[:maxTips]
	}
	return tips
}

// TopFactors ranks model contributions by absolute magnitude and returns the
// strongest few.
func TopFactors(factors []models.Factor, limit int) []models.Factor {
	ranked := append([]models.Factor(nil), factors...)
	sort.Slice(ranked, func(i, j int) bool {
		return math.Abs(ranked[i].Contribution) > math.Abs(ranked[j].Contribution)
	})
	if len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
