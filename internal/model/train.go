package model

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrNoMatchups is returned when training or evaluation finds no usable
// matchup data.
var ErrNoMatchups = errors.New("no matchups available")

// trainSplit is the chronological share of rows used for fitting; the rest
// is the held-out test slice.
const trainSplit = 0.8

// MatchupSource loads the labeled dataset in chronological order.
type MatchupSource interface {
	ListByDate(ctx context.Context) ([]*models.Matchup, error)
}

// Trainer fits the win-probability model and persists the artifact.
type Trainer struct {
	source MatchupSource
	store  *Store
}

// NewTrainer creates a Trainer.
func NewTrainer(source MatchupSource, store *Store) *Trainer {
	return &Trainer{source: source, store: store}
}

// Train loads all matchups ordered by date, splits chronologically (never
// randomly - the test slice must postdate the training slice), fits the
// scaler on the training slice only, then the classifier on standardized
// training rows, and evaluates on the held-out slice. The artifact replaces
// any prior one.
func (t *Trainer) Train(ctx context.Context) (*TrainMetrics, error) {
	matchups, err := t.source.ListByDate(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load matchups: %w", err)
	}
	if len(matchups) == 0 {
		return nil, ErrNoMatchups
	}

	X, y := datasetFrom(matchups)

	splitIdx := int(float64(len(X)) * trainSplit)
	if splitIdx == 0 || splitIdx == len(X) {
		return nil, fmt.Errorf("%w: %d matchups cannot form a train/test split", ErrNoMatchups, len(X))
	}
	XTrain, XTest := X[:splitIdx], X[splitIdx:]
	yTrain, yTest := y[:splitIdx], y[splitIdx:]

	log.Info().
		Int("train_size", len(XTrain)).
		Int("test_size", len(XTest)).
		Msg("Training win-probability model")

	scaler := FitScaler(XTrain)
	clf := &LogisticRegression{}
	clf.Fit(scaler.TransformAll(XTrain), yTrain)

	probs := make([]float64, len(XTest))
	for i, row := range XTest {
		probs[i] = clf.PredictProba(scaler.Transform(row))
	}

	metrics := TrainMetrics{
		Accuracy:        accuracy(probs, yTest),
		AUC:             rocAUC(probs, yTest),
		BaselineWinRate: labelMean(y),
		TrainSize:       len(XTrain),
		TestSize:        len(XTest),
	}

	log.Info().
		Float64("accuracy", metrics.Accuracy).
		Float64("auc", metrics.AUC).
		Float64("baseline_win_rate", metrics.BaselineWinRate).
		Msg("Model trained")

	artifact := &Artifact{
		FeatureNames: models.MatchupFeatureNames,
		Scaler:       scaler,
		Classifier:   clf,
		TrainedAt:    time.Now().UTC(),
		Metrics:      metrics,
	}
	if err := t.store.Save(artifact); err != nil {
		return nil, err
	}

	return &metrics, nil
}

func datasetFrom(matchups []*models.Matchup) ([][]float64, []float64) {
	X := make([][]float64, len(matchups))
	y := make([]float64, len(matchups))
	for i, m := range matchups {
		X[i] = m.FeatureVector()
		y[i] = float64(m.HomeWin)
	}
	return X, y
}
