package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/rs/zerolog/log"
)

var (
	// ErrModelNotTrained is returned when inference runs before any
	// training has produced an artifact.
	ErrModelNotTrained = errors.New("model not trained, run training first")

	// ErrFeatureMismatch is returned when a stored artifact's feature list
	// does not match the compiled-in one. The artifact is from an
	// incompatible build and must be retrained, not silently zero-filled.
	ErrFeatureMismatch = errors.New("artifact feature list does not match current schema")
)

// Artifact is a fully trained model: the scaler and classifier plus the
// ordered feature list they were fitted on. Immutable after load; retraining
// writes a new artifact and swaps it wholesale.
type Artifact struct {
	FeatureNames []string            `json:"feature_names"`
	Scaler       *Scaler             `json:"scaler"`
	Classifier   *LogisticRegression `json:"classifier"`
	TrainedAt    time.Time           `json:"trained_at"`
	Metrics      TrainMetrics        `json:"metrics"`
}

// TrainMetrics holds the held-out evaluation of a training run.
type TrainMetrics struct {
	Accuracy        float64 `json:"accuracy"`
	AUC             float64 `json:"auc"`
	BaselineWinRate float64 `json:"baseline_win_rate"`
	TrainSize       int     `json:"train_size"`
	TestSize        int     `json:"test_size"`
}

// validate checks the artifact against the compiled-in feature schema.
func (a *Artifact) validate() error {
	if len(a.FeatureNames) != len(models.MatchupFeatureNames) {
		return ErrFeatureMismatch
	}
	for i, name := range a.FeatureNames {
		if name != models.MatchupFeatureNames[i] {
			return ErrFeatureMismatch
		}
	}
	if a.Scaler == nil || a.Classifier == nil {
		return fmt.Errorf("artifact missing scaler or classifier: %w", ErrFeatureMismatch)
	}
	return nil
}

// Store persists the model artifact as a single file and serves an
// immutable in-memory snapshot of it. Reads never lock; training replaces
// the snapshot atomically under a single-writer discipline.
type Store struct {
	path    string
	current atomic.Pointer[Artifact]
}

// NewStore creates a Store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Save writes the artifact to disk (write-then-rename so a crash never
// leaves a torn file) and swaps the in-memory snapshot.
func (s *Store) Save(a *Artifact) error {
	if err := a.validate(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal model artifact: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write model artifact: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace model artifact: %w", err)
	}

	s.current.Store(a)

	log.Info().
		Str("path", filepath.Clean(s.path)).
		Time("trained_at", a.TrainedAt).
		Msg("Model artifact saved")

	return nil
}

// Load returns the current artifact, reading it from disk on first use.
// Returns ErrModelNotTrained when no artifact exists.
func (s *Store) Load() (*Artifact, error) {
	if a := s.current.Load(); a != nil {
		return a, nil
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrModelNotTrained
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}

	var a Artifact
	if err := json.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("failed to unmarshal model artifact: %w", err)
	}
	if err := a.validate(); err != nil {
		return nil, err
	}

	s.current.Store(&a)
	return &a, nil
}
