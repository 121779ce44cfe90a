package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testArtifact() *Artifact {
	cols := len(models.MatchupFeatureNames)
	scaler := &Scaler{Mean: make([]float64, cols), Std: make([]float64, cols)}
	for i := range scaler.Std {
		scaler.Std[i] = 1.0
	}
	weights := make([]float64, cols)
	weights[0] = 0.5
	return &Artifact{
		FeatureNames: models.MatchupFeatureNames,
		Scaler:       scaler,
		Classifier:   &LogisticRegression{Weights: weights, Bias: 0.1},
		TrainedAt:    time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		Metrics:      TrainMetrics{Accuracy: 0.65, AUC: 0.7, TrainSize: 800, TestSize: 200},
	}
}

func TestStore_SaveLoadRoundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	require.NoError(t, NewStore(path).Save(testArtifact()))

	// A fresh store reading the same file sees the identical model.
	loaded, err := NewStore(path).Load()
	require.NoError(t, err)

	assert.Equal(t, models.MatchupFeatureNames, loaded.FeatureNames)
	assert.Equal(t, 0.5, loaded.Classifier.Weights[0])
	assert.Equal(t, 0.1, loaded.Classifier.Bias)
	assert.Equal(t, 0.65, loaded.Metrics.Accuracy)
	assert.True(t, loaded.TrainedAt.Equal(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)))
}

func TestStore_LoadMissing(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"))

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrModelNotTrained)
}

func TestStore_LoadFeatureMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")

	// Simulate an artifact written by a build with a different feature list.
	stale := testArtifact()
	stale.FeatureNames = append([]string{"home_avg_pts_v2"}, models.MatchupFeatureNames[1:]...)
	data, err := json.Marshal(stale)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	_, err = NewStore(path).Load()
	assert.ErrorIs(t, err, ErrFeatureMismatch, "Schema drift must fail loudly, never zero-fill")
}

func TestStore_SaveRejectsInvalid(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "model.json"))

	bad := testArtifact()
	bad.FeatureNames = bad.FeatureNames[:5]
	assert.ErrorIs(t, store.Save(bad), ErrFeatureMismatch)

	noScaler := testArtifact()
	noScaler.Scaler = nil
	assert.ErrorIs(t, store.Save(noScaler), ErrFeatureMismatch)
}

func TestStore_SaveSwapsSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	store := NewStore(path)

	first := testArtifact()
	require.NoError(t, store.Save(first))

	second := testArtifact()
	second.Classifier.Weights[0] = 2.0
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, 2.0, loaded.Classifier.Weights[0], "Retraining replaces the served model")
}
