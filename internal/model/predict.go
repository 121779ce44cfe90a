package model

import (
	"github.com/ksarika79522/nbagameplan-sim/internal/models"
)

// Predictor scores single home/away pairs with the stored artifact.
type Predictor struct {
	store *Store
}

// NewPredictor creates a Predictor.
func NewPredictor(store *Store) *Predictor {
	return &Predictor{store: store}
}

// WinProbability returns the probability that the home team wins, given both
// teams' offensive snapshots. Returns ErrModelNotTrained when no artifact
// exists; it never fabricates a probability.
func (p *Predictor) WinProbability(home, away *models.TeamFeature) (float64, error) {
	artifact, err := p.store.Load()
	if err != nil {
		return 0, err
	}

	row := models.MatchupFeatureVector(home, away)
	return artifact.Classifier.PredictProba(artifact.Scaler.Transform(row)), nil
}

// Contributions explains a home/away pair: each standardized feature value
// times its learned weight is that feature's signed contribution to the
// home-win logit. Returns nil (not an error) when no artifact exists.
func (p *Predictor) Contributions(home, away *models.TeamFeature) []models.Factor {
	artifact, err := p.store.Load()
	if err != nil {
		return nil
	}

	scaled := artifact.Scaler.Transform(models.MatchupFeatureVector(home, away))
	factors := make([]models.Factor, len(scaled))
	for i, v := range scaled {
		factors[i] = models.Factor{
			Feature:      artifact.FeatureNames[i],
			Contribution: v * artifact.Classifier.Weights[i],
		}
	}
	return factors
}
