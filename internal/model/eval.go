package model

import (
	"context"
	"errors"
	"fmt"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrNotEnoughMatchups is returned when a walk-forward evaluation has too few
// rows to produce statistically meaningful folds.
var ErrNotEnoughMatchups = errors.New("not enough matchups for robust evaluation")

const (
	evalFolds       = 4
	evalMinMatchups = 100
	// Fold i trains on the first 40+15i percent of rows and tests on the
	// next 15 percent slice.
	evalBaseTrain = 0.40
	evalStep      = 0.15
	// Within a fold's training slice the last 20 percent is held back for
	// probability calibration.
	calibrationHoldout = 0.2
)

// SeasonMatchupSource loads one season's labeled dataset in chronological
// order.
type SeasonMatchupSource interface {
	ListSeasonByDate(ctx context.Context, season string) ([]*models.Matchup, error)
}

// FoldMetrics scores one walk-forward fold's test slice.
type FoldMetrics struct {
	Fold       int     `json:"fold"`
	TrainSize  int     `json:"train_size"`
	TestSize   int     `json:"test_size"`
	Accuracy   float64 `json:"accuracy"`
	AUC        float64 `json:"roc_auc"`
	BrierScore float64 `json:"brier_score"`
}

// EvalResult aggregates walk-forward metrics across folds.
type EvalResult struct {
	Season      string        `json:"season"`
	Window      int           `json:"window"`
	AvgAccuracy float64       `json:"avg_accuracy"`
	AvgAUC      float64       `json:"avg_auc"`
	AvgBrier    float64       `json:"avg_brier"`
	Folds       []FoldMetrics `json:"folds"`
}

// Evaluator runs walk-forward backtests. The backtest never touches the live
// artifact; it exists to estimate how the modeling protocol generalizes.
type Evaluator struct {
	source SeasonMatchupSource
}

// NewEvaluator creates an Evaluator.
func NewEvaluator(source SeasonMatchupSource) *Evaluator {
	return &Evaluator{source: source}
}

// WalkForward partitions the season's chronologically ordered matchups into
// 4 expanding-window folds. Each fold fits scaler+classifier on the first
// 80% of its training slice, Platt-calibrates on the remaining 20%, and
// scores the untouched test slice. Requires at least 100 matchups.
func (e *Evaluator) WalkForward(ctx context.Context, season string, window int) (*EvalResult, error) {
	matchups, err := e.source.ListSeasonByDate(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("failed to load season matchups: %w", err)
	}
	if len(matchups) < evalMinMatchups {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughMatchups, len(matchups), evalMinMatchups)
	}

	X, y := datasetFrom(matchups)
	n := float64(len(X))

	result := &EvalResult{Season: season, Window: window}

	for i := 0; i < evalFolds; i++ {
		trainEnd := int(n * (evalBaseTrain + float64(i)*evalStep))
		testEnd := int(n * (evalBaseTrain + evalStep + float64(i)*evalStep))

		XTrain, XTest := X[:trainEnd], X[trainEnd:testEnd]
		yTrain, yTest := y[:trainEnd], y[trainEnd:testEnd]

		// Time-safe calibration split inside the training slice: the
		// calibration rows postdate the fit rows and predate the test
		// slice.
		calSplit := int(float64(len(XTrain)) * (1 - calibrationHoldout))
		XFit, XCal := XTrain[:calSplit], XTrain[calSplit:]
		yFit, yCal := yTrain[:calSplit], yTrain[calSplit:]

		scaler := FitScaler(XFit)
		clf := &LogisticRegression{}
		clf.Fit(scaler.TransformAll(XFit), yFit)

		calLogits := make([]float64, len(XCal))
		for j, row := range XCal {
			calLogits[j] = clf.Decision(scaler.Transform(row))
		}
		calibrator := FitPlatt(calLogits, yCal)

		probs := make([]float64, len(XTest))
		for j, row := range XTest {
			probs[j] = calibrator.Calibrate(clf.Decision(scaler.Transform(row)))
		}

		fold := FoldMetrics{
			Fold:       i + 1,
			TrainSize:  len(XTrain),
			TestSize:   len(XTest),
			Accuracy:   accuracy(probs, yTest),
			AUC:        rocAUC(probs, yTest),
			BrierScore: brierScore(probs, yTest),
		}
		result.Folds = append(result.Folds, fold)

		log.Debug().
			Int("fold", fold.Fold).
			Int("train_size", fold.TrainSize).
			Int("test_size", fold.TestSize).
			Float64("accuracy", fold.Accuracy).
			Float64("auc", fold.AUC).
			Float64("brier", fold.BrierScore).
			Msg("Walk-forward fold scored")
	}

	for _, f := range result.Folds {
		result.AvgAccuracy += f.Accuracy
		result.AvgAUC += f.AUC
		result.AvgBrier += f.BrierScore
	}
	result.AvgAccuracy /= float64(len(result.Folds))
	result.AvgAUC /= float64(len(result.Folds))
	result.AvgBrier /= float64(len(result.Folds))

	log.Info().
		Str("season", season).
		Float64("avg_accuracy", result.AvgAccuracy).
		Float64("avg_auc", result.AvgAUC).
		Float64("avg_brier", result.AvgBrier).
		Msg("Walk-forward evaluation complete")

	return result, nil
}
