// Package service wires the pipeline stages into the in-process operation
// surface the surrounding transport adapts: season builds, training,
// evaluation, prediction and gameplan generation.
package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/baselines"
	"github.com/ksarika79522/nbagameplan-sim/internal/cache"
	"github.com/ksarika79522/nbagameplan-sim/internal/features"
	"github.com/ksarika79522/nbagameplan-sim/internal/gameplan"
	"github.com/ksarika79522/nbagameplan-sim/internal/matchups"
	"github.com/ksarika79522/nbagameplan-sim/internal/metrics"
	"github.com/ksarika79522/nbagameplan-sim/internal/model"
	"github.com/ksarika79522/nbagameplan-sim/internal/models"
	"github.com/ksarika79522/nbagameplan-sim/internal/repository"

	"github.com/rs/zerolog/log"
)

var (
	// ErrNotFound is returned when a requested snapshot cannot be
	// retrieved or computed (insufficient history).
	ErrNotFound = errors.New("features not found or insufficient history")

	// ErrBaselinesMissing is returned when gameplan generation runs
	// before baselines were computed. The request fails explicitly
	// instead of degrading to meaningless z-scores.
	ErrBaselinesMissing = errors.New("season baselines not computed")
)

// Options tunes the service.
type Options struct {
	BatchSize     int
	PredictionTTL time.Duration
	GameplanTTL   time.Duration
}

// Service is the pipeline's operation surface.
type Service struct {
	db        *repository.Database
	offense   *features.Builder
	defense   *features.DefenseBuilder
	baselines *baselines.Aggregator
	matchups  *matchups.Builder
	trainer   *model.Trainer
	evaluator *model.Evaluator
	predictor *model.Predictor
	engine    *gameplan.Engine
	cache     *cache.RedisCache // nil disables caching
	opts      Options
}

// New wires a Service from storage, the model store and an optional cache.
func New(db *repository.Database, store *model.Store, redisCache *cache.RedisCache, opts Options) *Service {
	return &Service{
		db:        db,
		offense:   features.NewBuilder(db.GameLogs, db.Features, opts.BatchSize),
		defense:   features.NewDefenseBuilder(db.GameLogs, db.DefFeatures, 0),
		baselines: baselines.NewAggregator(db.Features, db.DefFeatures, db.Baselines),
		matchups:  matchups.NewBuilder(db.GameLogs, db.Features, db.Matchups, 0),
		trainer:   model.NewTrainer(db.Matchups, store),
		evaluator: model.NewEvaluator(db.Matchups),
		predictor: model.NewPredictor(store),
		engine:    gameplan.NewEngine(),
		cache:     redisCache,
		opts:      opts,
	}
}

// BuildOffensiveFeatures builds the season's offensive snapshots.
func (s *Service) BuildOffensiveFeatures(ctx context.Context, season string, window, minGames int) (*features.BuildResult, error) {
	start := time.Now()
	res, err := s.offense.BuildSeason(ctx, season, window, minGames)
	if err != nil {
		metrics.RecordBuild("offense", "error", time.Since(start).Seconds(), 0, 0)
		return nil, err
	}
	metrics.RecordBuild("offense", "success", time.Since(start).Seconds(), res.Inserted, res.Skipped)
	return res, nil
}

// BuildDefensiveFeatures builds the season's defensive snapshots.
func (s *Service) BuildDefensiveFeatures(ctx context.Context, season string, window, minGames int) (*features.BuildResult, error) {
	start := time.Now()
	res, err := s.defense.BuildSeason(ctx, season, window, minGames)
	if err != nil {
		metrics.RecordBuild("defense", "error", time.Since(start).Seconds(), 0, 0)
		return nil, err
	}
	metrics.RecordBuild("defense", "success", time.Since(start).Seconds(), res.Inserted, res.Skipped)
	return res, nil
}

// ComputeBaselines aggregates the season's baselines, replacing the stored
// set.
func (s *Service) ComputeBaselines(ctx context.Context, season string, window int) (*baselines.Result, error) {
	start := time.Now()
	res, err := s.baselines.ComputeAndStore(ctx, season, window)
	if err != nil {
		metrics.RecordBuild("baselines", "error", time.Since(start).Seconds(), 0, 0)
		return nil, err
	}
	metrics.RecordBuild("baselines", "success", time.Since(start).Seconds(), res.FeaturesComputed, 0)
	return res, nil
}

// BuildMatchups builds the season's labeled matchup dataset.
func (s *Service) BuildMatchups(ctx context.Context, season string, window int) (*matchups.Result, error) {
	start := time.Now()
	res, err := s.matchups.BuildSeason(ctx, season, window)
	if err != nil {
		metrics.RecordBuild("matchups", "error", time.Since(start).Seconds(), 0, 0)
		return nil, err
	}
	metrics.RecordBuild("matchups", "success", time.Since(start).Seconds(), res.Inserted, res.Skipped)
	return res, nil
}

// TrainModel trains and persists the win-probability model.
func (s *Service) TrainModel(ctx context.Context) (*model.TrainMetrics, error) {
	m, err := s.trainer.Train(ctx)
	if err != nil {
		return nil, err
	}
	metrics.RecordTraining(m.Accuracy, m.AUC)
	return m, nil
}

// EvaluateModel runs the walk-forward backtest for a season.
func (s *Service) EvaluateModel(ctx context.Context, season string, window int) (*model.EvalResult, error) {
	return s.evaluator.WalkForward(ctx, season, window)
}

// GetOrComputeFeature returns a team's offensive snapshot, computing it on
// the fly when not stored. Returns ErrNotFound when the team has no history
// before the date.
func (s *Service) GetOrComputeFeature(ctx context.Context, teamID int, asOf time.Time, season string, window int) (*models.TeamFeature, error) {
	f, err := s.offense.GetOrCompute(ctx, teamID, asOf, season, window)
	if err != nil {
		return nil, err
	}
	if f == nil {
		return nil, ErrNotFound
	}
	return f, nil
}

// Prediction is a served win-probability result.
type Prediction struct {
	HomeTeamID      int       `json:"home_team_id"`
	AwayTeamID      int       `json:"away_team_id"`
	GameDate        time.Time `json:"game_date"`
	HomeWinProb     float64   `json:"home_win_prob"`
	ImpliedOddsHome float64   `json:"implied_odds_home"`
}

// Predict returns the home team's win probability for a prospective game.
// Responses are cached per (home, away, date, window).
func (s *Service) Predict(ctx context.Context, homeTeamID, awayTeamID int, date time.Time, season string, window int) (*Prediction, error) {
	key := cache.PredictionKey(homeTeamID, awayTeamID, season, date, window)
	if s.cache != nil {
		var cached Prediction
		if s.cache.GetJSON(ctx, key, &cached) {
			metrics.RecordCacheHit()
			return &cached, nil
		}
		metrics.RecordCacheMiss()
	}

	homeFeat, err := s.GetOrComputeFeature(ctx, homeTeamID, date, season, window)
	if err != nil {
		metrics.RecordPrediction("not_found")
		return nil, err
	}
	awayFeat, err := s.GetOrComputeFeature(ctx, awayTeamID, date, season, window)
	if err != nil {
		metrics.RecordPrediction("not_found")
		return nil, err
	}

	prob, err := s.predictor.WinProbability(homeFeat, awayFeat)
	if err != nil {
		metrics.RecordPrediction("error")
		return nil, err
	}

	impliedOdds := 999.0
	if prob > 0 {
		impliedOdds = 1 / prob
	}

	pred := &Prediction{
		HomeTeamID:      homeTeamID,
		AwayTeamID:      awayTeamID,
		GameDate:        date,
		HomeWinProb:     prob,
		ImpliedOddsHome: impliedOdds,
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, key, pred, s.opts.PredictionTTL)
	}

	metrics.RecordPrediction("success")
	return pred, nil
}

// TeamPlan is one side of a generated gameplan.
type TeamPlan struct {
	TeamID         int          `json:"team_id"`
	WinProbability float64      `json:"win_prob"`
	Tips           []models.Tip `json:"tips"`
}

// Gameplan is the full two-sided recommendation output.
type Gameplan struct {
	TeamA      TeamPlan        `json:"team_a"`
	TeamB      TeamPlan        `json:"team_b"`
	TopFactors []models.Factor `json:"top_factors"`
}

// GenerateGameplan produces both teams' win probabilities, ranked tips and
// the shared top model factors. Team A is treated as home for the
// probability computation. Fails explicitly when any snapshot or the season
// baselines are missing.
func (s *Service) GenerateGameplan(ctx context.Context, teamAID, teamBID int, season string, asOf time.Time, window int) (*Gameplan, error) {
	key := cache.GameplanKey(teamAID, teamBID, season, asOf, window)
	if s.cache != nil {
		var cached Gameplan
		if s.cache.GetJSON(ctx, key, &cached) {
			metrics.RecordCacheHit()
			return &cached, nil
		}
		metrics.RecordCacheMiss()
	}

	aOff, err := s.offense.GetOrCompute(ctx, teamAID, asOf, season, window)
	if err != nil {
		return nil, err
	}
	aDef, err := s.defense.GetOrCompute(ctx, teamAID, asOf, season, window)
	if err != nil {
		return nil, err
	}
	bOff, err := s.offense.GetOrCompute(ctx, teamBID, asOf, season, window)
	if err != nil {
		return nil, err
	}
	bDef, err := s.defense.GetOrCompute(ctx, teamBID, asOf, season, window)
	if err != nil {
		return nil, err
	}
	if aOff == nil || aDef == nil || bOff == nil || bDef == nil {
		metrics.RecordGameplan("not_found")
		return nil, ErrNotFound
	}

	baselineSet, err := s.db.Baselines.GetSet(ctx, season, window)
	if err != nil {
		return nil, err
	}
	if len(baselineSet) == 0 {
		metrics.RecordGameplan("no_baselines")
		return nil, fmt.Errorf("%w: season %s window %d", ErrBaselinesMissing, season, window)
	}

	winProbA, err := s.predictor.WinProbability(aOff, bOff)
	if err != nil {
		metrics.RecordGameplan("error")
		return nil, err
	}
	winProbA = round3(winProbA)
	winProbB := round3(1.0 - winProbA)

	plan := &Gameplan{
		TeamA: TeamPlan{
			TeamID:         teamAID,
			WinProbability: winProbA,
			Tips:           s.engine.TeamTips(aOff, aDef, bOff, bDef, baselineSet),
		},
		TeamB: TeamPlan{
			TeamID:         teamBID,
			WinProbability: winProbB,
			Tips:           s.engine.TeamTips(bOff, bDef, aOff, aDef, baselineSet),
		},
		TopFactors: gameplan.TopFactors(s.predictor.Contributions(aOff, bOff), 3),
	}

	if s.cache != nil {
		s.cache.SetJSON(ctx, key, plan, s.opts.GameplanTTL)
	}

	metrics.RecordGameplan("success")
	return plan, nil
}

// RebuildPipeline runs the full nightly sequence for a season: offensive and
// defensive features, baselines, matchups, then training. Insufficient data
// during baseline or training stages is logged and tolerated so a young
// season does not fail the whole job.
func (s *Service) RebuildPipeline(ctx context.Context, season string, window, minGames int) error {
	if _, err := s.BuildOffensiveFeatures(ctx, season, window, minGames); err != nil {
		return fmt.Errorf("offensive feature build failed: %w", err)
	}
	if _, err := s.BuildDefensiveFeatures(ctx, season, window, minGames); err != nil {
		return fmt.Errorf("defensive feature build failed: %w", err)
	}
	if _, err := s.ComputeBaselines(ctx, season, window); err != nil {
		if errors.Is(err, baselines.ErrInsufficientData) {
			log.Warn().Str("season", season).Msg("Not enough snapshots for baselines yet")
		} else {
			return fmt.Errorf("baseline build failed: %w", err)
		}
	}
	if _, err := s.BuildMatchups(ctx, season, window); err != nil {
		return fmt.Errorf("matchup build failed: %w", err)
	}
	if _, err := s.TrainModel(ctx); err != nil {
		if errors.Is(err, model.ErrNoMatchups) {
			log.Warn().Str("season", season).Msg("No matchups to train on yet")
		} else {
			return fmt.Errorf("training failed: %w", err)
		}
	}
	return nil
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
