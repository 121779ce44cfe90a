// Package model implements the win-probability model: feature
// standardization plus a logistic classifier trained by gradient descent on
// log-loss, with a chronological train/test protocol and walk-forward
// backtesting.
package model

import (
	"math"
	"sort"
)

const (
	logisticIters = 500
	logisticLR    = 0.1
)

// Scaler standardizes features to zero mean and unit variance, fitted on the
// training split only.
type Scaler struct {
	Mean []float64 `json:"mean"`
	Std  []float64 `json:"std"`
}

// FitScaler computes per-column mean and std over the rows. Zero-variance
// columns get std 1 so transforming them is a no-op instead of a blow-up.
func FitScaler(rows [][]float64) *Scaler {
	if len(rows) == 0 {
		return &Scaler{}
	}
	cols := len(rows[0])
	mean := make([]float64, cols)
	std := make([]float64, cols)

	for _, row := range rows {
		for j, v := range row {
			mean[j] += v
		}
	}
	for j := range mean {
		mean[j] /= float64(len(rows))
	}

	for _, row := range rows {
		for j, v := range row {
			d := v - mean[j]
			std[j] += d * d
		}
	}
	for j := range std {
		std[j] = math.Sqrt(std[j] / float64(len(rows)))
		if std[j] == 0 {
			std[j] = 1.0
		}
	}

	return &Scaler{Mean: mean, Std: std}
}

// Transform standardizes one row.
func (s *Scaler) Transform(row []float64) []float64 {
	out := make([]float64, len(row))
	for j, v := range row {
		out[j] = (v - s.Mean[j]) / s.Std[j]
	}
	return out
}

// TransformAll standardizes a matrix.
func (s *Scaler) TransformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, row := range rows {
		out[i] = s.Transform(row)
	}
	return out
}

// LogisticRegression is a binary linear classifier over standardized
// features.
type LogisticRegression struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
}

// Fit trains by full-batch gradient descent on log-loss. Inputs are expected
// to be standardized already.
func (m *LogisticRegression) Fit(rows [][]float64, labels []float64) {
	if len(rows) == 0 {
		return
	}
	cols := len(rows[0])
	m.Weights = make([]float64, cols)
	m.Bias = 0.0

	n := float64(len(rows))
	for iter := 0; iter < logisticIters; iter++ {
		gradW := make([]float64, cols)
		gradB := 0.0
		for i, row := range rows {
			p := sigmoid(m.Decision(row))
			// gradient of -[y*log(p)+(1-y)*log(1-p)] is (p-y)*x
			err := p - labels[i]
			for j, v := range row {
				gradW[j] += err * v
			}
			gradB += err
		}
		for j := range m.Weights {
			m.Weights[j] -= logisticLR * gradW[j] / n
		}
		m.Bias -= logisticLR * gradB / n
	}
}

// Decision returns the raw logit w·x + b.
func (m *LogisticRegression) Decision(row []float64) float64 {
	return dot(m.Weights, row) + m.Bias
}

// PredictProba returns the probability of the positive (home-win) class.
func (m *LogisticRegression) PredictProba(row []float64) float64 {
	return sigmoid(m.Decision(row))
}

// PlattCalibrator rescales raw logits with a fitted sigmoid so predicted
// probabilities match observed frequencies: p = sigmoid(a*z + b).
type PlattCalibrator struct {
	A float64 `json:"a"`
	B float64 `json:"b"`
}

// FitPlatt fits the calibrator on held-out logits and labels by gradient
// descent on log-loss.
func FitPlatt(logits, labels []float64) *PlattCalibrator {
	cal := &PlattCalibrator{A: 1.0, B: 0.0}
	if len(logits) == 0 {
		return cal
	}
	n := float64(len(logits))
	for iter := 0; iter < logisticIters; iter++ {
		var gradA, gradB float64
		for i, z := range logits {
			p := sigmoid(cal.A*z + cal.B)
			err := p - labels[i]
			gradA += err * z
			gradB += err
		}
		cal.A -= logisticLR * gradA / n
		cal.B -= logisticLR * gradB / n
	}
	return cal
}

// Calibrate maps a raw logit to a calibrated probability.
func (c *PlattCalibrator) Calibrate(logit float64) float64 {
	return sigmoid(c.A*logit + c.B)
}

func sigmoid(z float64) float64 {
	if z > 20 {
		return 1.0
	}
	if z < -20 {
		return 0.0
	}
	return 1.0 / (1.0 + math.Exp(-z))
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

// accuracy scores predictions at the 0.5 decision threshold.
func accuracy(probs, labels []float64) float64 {
	if len(probs) == 0 {
		return 0.0
	}
	correct := 0
	for i, p := range probs {
		pred := 0.0
		if p > 0.5 {
			pred = 1.0
		}
		if pred == labels[i] {
			correct++
		}
	}
	return float64(correct) / float64(len(probs))
}

// rocAUC computes the area under the ROC curve via average ranks
// (Mann-Whitney U), handling tied scores. Returns 0 when only one class is
// present, mirroring the degenerate-test-set convention upstream.
func rocAUC(probs, labels []float64) float64 {
	n := len(probs)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return probs[idx[a]] < probs[idx[b]] })

	ranks := make([]float64, n)
	for i := 0; i < n; {
		j := i
		for j < n && probs[idx[j]] == probs[idx[i]] {
			j++
		}
		// average rank for the tie group, 1-based
		avg := float64(i+j+1) / 2.0
		for k := i; k < j; k++ {
			ranks[idx[k]] = avg
		}
		i = j
	}

	var pos, rankSum float64
	for i, y := range labels {
		if y == 1.0 {
			pos++
			rankSum += ranks[i]
		}
	}
	neg := float64(n) - pos
	if pos == 0 || neg == 0 {
		return 0.0
	}
	return (rankSum - pos*(pos+1)/2) / (pos * neg)
}

// brierScore is the mean squared error of predicted probabilities.
func brierScore(probs, labels []float64) float64 {
	if len(probs) == 0 {
		return 0.0
	}
	var sum float64
	for i, p := range probs {
		d := p - labels[i]
		sum += d * d
	}
	return sum / float64(len(probs))
}

func labelMean(labels []float64) float64 {
	if len(labels) == 0 {
		return 0.0
	}
	var sum float64
	for _, y := range labels {
		sum += y
	}
	return sum / float64(len(labels))
}
