package models

// SeasonFeatureBaseline holds league-wide distribution statistics for one
// feature over all team snapshots in a (season, window). A rebuild replaces
// the full set for that (season, window) atomically.
type SeasonFeatureBaseline struct {
	Season      string  `db:"season"`
	Window      int     `db:"window"`
	FeatureName string  `db:"feature_name"`
	Mean        float64 `db:"mean"`
	Std         float64 `db:"std"` // sample standard deviation
	P10         float64 `db:"p10"`
	P25         float64 `db:"p25"`
	P50         float64 `db:"p50"`
	P75         float64 `db:"p75"`
	P90         float64 `db:"p90"`
}

// BaselineSet indexes baselines by feature name for z-score lookups.
type BaselineSet map[string]*SeasonFeatureBaseline
