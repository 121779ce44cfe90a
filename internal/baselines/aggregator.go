// Package baselines aggregates all of a season's feature snapshots into
// per-feature league distributions (mean, std, percentiles). The gameplan
// engine uses them to turn raw team values into z-scores.
package baselines

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/ksarika79522/nbagameplan-sim/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrInsufficientData is returned when a (season, window) has no offensive or
// no defensive snapshots to aggregate.
var ErrInsufficientData = errors.New("insufficient data to compute baselines")

// FeatureSource lists a season's snapshots.
type FeatureSource interface {
	ListSeason(ctx context.Context, season string, window int) ([]*models.TeamFeature, error)
}

// DefFeatureSource lists a season's defensive snapshots.
type DefFeatureSource interface {
	ListSeason(ctx context.Context, season string, window int) ([]*models.TeamDefFeature, error)
}

// BaselineStore persists baseline sets.
type BaselineStore interface {
	Replace(ctx context.Context, season string, window int, rows []*models.SeasonFeatureBaseline) error
}

// Result reports a baseline build.
type Result struct {
	Season           string `json:"season"`
	Window           int    `json:"window"`
	FeaturesComputed int    `json:"features_computed"`
}

// Aggregator computes and stores season feature baselines.
type Aggregator struct {
	offense FeatureSource
	defense DefFeatureSource
	store   BaselineStore
}

// NewAggregator creates an Aggregator.
func NewAggregator(offense FeatureSource, defense DefFeatureSource, store BaselineStore) *Aggregator {
	return &Aggregator{offense: offense, defense: defense, store: store}
}

// ComputeAndStore aggregates every feature of every snapshot in the
// (season, window) and replaces the stored baseline set in one transaction.
func (a *Aggregator) ComputeAndStore(ctx context.Context, season string, window int) (*Result, error) {
	log.Info().Str("season", season).Int("window", window).Msg("Computing baselines")

	offFeats, err := a.offense.ListSeason(ctx, season, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list offensive snapshots: %w", err)
	}
	defFeats, err := a.defense.ListSeason(ctx, season, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list defensive snapshots: %w", err)
	}

	if len(offFeats) == 0 || len(defFeats) == 0 {
		return nil, ErrInsufficientData
	}

	columns := make(map[string][]float64)
	for _, f := range offFeats {
		for name, v := range f.BaselineValues() {
			columns[name] = append(columns[name], v)
		}
	}
	for _, f := range defFeats {
		for name, v := range f.BaselineValues() {
			columns[name] = append(columns[name], v)
		}
	}

	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([]*models.SeasonFeatureBaseline, 0, len(names))
	for _, name := range names {
		values := dropNonFinite(columns[name])
		if len(values) == 0 {
			continue
		}
		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)

		rows = append(rows, &models.SeasonFeatureBaseline{
			Season:      season,
			Window:      window,
			FeatureName: name,
			Mean:        mean(values),
			Std:         sampleStd(values),
			P10:         percentile(sorted, 10),
			P25:         percentile(sorted, 25),
			P50:         percentile(sorted, 50),
			P75:         percentile(sorted, 75),
			P90:         percentile(sorted, 90),
		})
	}

	if err := a.store.Replace(ctx, season, window, rows); err != nil {
		return nil, fmt.Errorf("failed to replace baselines: %w", err)
	}

	log.Info().
		Str("season", season).
		Int("window", window).
		Int("features_computed", len(rows)).
		Msg("Baselines stored")

	return &Result{Season: season, Window: window, FeaturesComputed: len(rows)}, nil
}

func dropNonFinite(values []float64) []float64 {
	out := values[:0]
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

func mean(values []float64) float64 {
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStd is the sample standard deviation (n-1 denominator). The same
// flavor backs every stored std, which keeps downstream z-scores consistent.
func sampleStd(values []float64) float64 {
	if len(values) < 2 {
		return 0.0
	}
	m := mean(values)
	var ss float64
	for _, v := range values {
		d := v - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)-1))
}

// percentile computes the p-th percentile of a sorted slice with linear
// interpolation between the two nearest ranks.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}
