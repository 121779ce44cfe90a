package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFitScaler(t *testing.T) {
	rows := [][]float64{
		{1.0, 10.0},
		{3.0, 10.0},
	}

	s := FitScaler(rows)
	require.Len(t, s.Mean, 2)

	assert.InDelta(t, 2.0, s.Mean[0], 1e-9)
	assert.InDelta(t, 1.0, s.Std[0], 1e-9)
	assert.InDelta(t, 1.0, s.Std[1], 1e-9, "Zero-variance column gets std 1")

	out := s.Transform([]float64{3.0, 10.0})
	assert.InDelta(t, 1.0, out[0], 1e-9)
	assert.InDelta(t, 0.0, out[1], 1e-9)
}

func TestFitScaler_Empty(t *testing.T) {
	s := FitScaler(nil)
	assert.Empty(t, s.Mean)
	assert.Empty(t, s.Std)
}

func TestLogisticRegression_SeparableData(t *testing.T) {
	var rows [][]float64
	var labels []float64
	for i := 0; i < 10; i++ {
		rows = append(rows, []float64{-1.0}, []float64{1.0})
		labels = append(labels, 0.0, 1.0)
	}

	clf := &LogisticRegression{}
	clf.Fit(rows, labels)

	assert.Greater(t, clf.PredictProba([]float64{1.0}), 0.8)
	assert.Less(t, clf.PredictProba([]float64{-1.0}), 0.2)

	probs := make([]float64, len(rows))
	for i, row := range rows {
		probs[i] = clf.PredictProba(row)
	}
	assert.Equal(t, 1.0, accuracy(probs, labels), "Separable data should classify perfectly")
}

func TestSigmoid_Clamped(t *testing.T) {
	assert.Equal(t, 1.0, sigmoid(25))
	assert.Equal(t, 0.0, sigmoid(-25))
	assert.InDelta(t, 0.5, sigmoid(0), 1e-9)
}

func TestROCAUC(t *testing.T) {
	probs := []float64{0.1, 0.4, 0.35, 0.8}
	labels := []float64{0, 0, 1, 1}
	assert.InDelta(t, 0.75, rocAUC(probs, labels), 1e-9)

	// Perfect separation.
	assert.InDelta(t, 1.0, rocAUC([]float64{0.1, 0.2, 0.8, 0.9}, []float64{0, 0, 1, 1}), 1e-9)

	// Tied scores get average ranks.
	assert.InDelta(t, 0.5, rocAUC([]float64{0.5, 0.5}, []float64{0, 1}), 1e-9)
}

func TestROCAUC_SingleClass(t *testing.T) {
	assert.Zero(t, rocAUC([]float64{0.2, 0.8}, []float64{1, 1}))
	assert.Zero(t, rocAUC([]float64{0.2, 0.8}, []float64{0, 0}))
}

func TestBrierScore(t *testing.T) {
	assert.Zero(t, brierScore([]float64{1, 0}, []float64{1, 0}))
	assert.InDelta(t, 0.25, brierScore([]float64{0.5, 0.5}, []float64{1, 0}), 1e-9)
	assert.Zero(t, brierScore(nil, nil))
}

func TestAccuracy(t *testing.T) {
	probs := []float64{0.9, 0.1, 0.6, 0.4}
	labels := []float64{1, 0, 0, 1}
	assert.InDelta(t, 0.5, accuracy(probs, labels), 1e-9)
	assert.Zero(t, accuracy(nil, nil))
}

func TestFitPlatt(t *testing.T) {
	// Well-ordered logits; calibration keeps the ordering and stays in (0,1).
	logits := []float64{-3, -2, -1, 1, 2, 3}
	labels := []float64{0, 0, 0, 1, 1, 1}

	cal := FitPlatt(logits, labels)

	lo := cal.Calibrate(-2)
	hi := cal.Calibrate(2)
	assert.Less(t, lo, 0.5)
	assert.Greater(t, hi, 0.5)
	assert.Greater(t, hi, lo)
}

func TestFitPlatt_Empty(t *testing.T) {
	cal := FitPlatt(nil, nil)
	assert.Equal(t, 1.0, cal.A, "Empty calibration data leaves the identity sigmoid")
	assert.Zero(t, cal.B)
}
