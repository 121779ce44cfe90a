// Command gameplanctl runs individual pipeline stages and queries from the
// command line: ingestion, feature builds, baselines, matchups, training,
// evaluation, predictions and gameplans.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/ksarika79522/nbagameplan-sim/internal/cache"
	"github.com/ksarika79522/nbagameplan-sim/internal/config"
	"github.com/ksarika79522/nbagameplan-sim/internal/ingest"
	"github.com/ksarika79522/nbagameplan-sim/internal/model"
	"github.com/ksarika79522/nbagameplan-sim/internal/repository"
	"github.com/ksarika79522/nbagameplan-sim/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const usage = `Usage: gameplanctl <command> [flags]

Commands:
  ingest           Fetch and store a season's game logs
  build-features   Build rolling offensive feature snapshots
  build-defense    Build rolling defensive feature snapshots
  build-baselines  Compute season feature baselines
  build-matchups   Assemble the labeled matchup dataset
  train            Train and persist the win-probability model
  evaluate         Run the walk-forward backtest
  predict          Predict home win probability for a matchup
  gameplan         Generate a two-sided gameplan
  pipeline         Run every build stage in order

Common flags:
  -season   Season to operate on (default from SEASON env)
  -window   Rolling window size (default from FEATURE_WINDOW env)

predict/gameplan flags:
  -home / -away    Team IDs (predict)
  -team-a / -team-b  Team IDs (gameplan)
  -date            As-of date, YYYY-MM-DD (default today)
`

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command := os.Args[1]

	fs := flag.NewFlagSet(command, flag.ExitOnError)
	seasonFlag := fs.String("season", "", "season to operate on")
	windowFlag := fs.Int("window", 0, "rolling window size")
	homeFlag := fs.Int("home", 0, "home team ID")
	awayFlag := fs.Int("away", 0, "away team ID")
	teamAFlag := fs.Int("team-a", 0, "first team ID")
	teamBFlag := fs.Int("team-b", 0, "second team ID")
	dateFlag := fs.String("date", "", "as-of date (YYYY-MM-DD)")
	if err := fs.Parse(os.Args[2:]); err != nil {
		os.Exit(2)
	}

	cfg := config.MustLoad()

	season := cfg.Season
	if *seasonFlag != "" {
		season = *seasonFlag
	}
	window := cfg.FeatureWindow
	if *windowFlag > 0 {
		window = *windowFlag
	}

	asOf := time.Now()
	if *dateFlag != "" {
		parsed, err := time.Parse("2006-01-02", *dateFlag)
		if err != nil {
			log.Fatal().Err(err).Str("date", *dateFlag).Msg("Invalid -date")
		}
		asOf = parsed
	}

	ctx := context.Background()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     strconv.Itoa(cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	// Cache is optional for one-shot runs.
	var redisCache *cache.RedisCache
	if rc, err := cache.NewRedisCache(cache.Config{
		Host:     cfg.RedisHost,
		Port:     strconv.Itoa(cfg.RedisPort),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}); err == nil {
		redisCache = rc
		defer redisCache.Close()
	}

	svc := service.New(db, model.NewStore(cfg.ModelPath), redisCache, service.Options{
		BatchSize:     cfg.BatchSize,
		PredictionTTL: time.Duration(cfg.CacheTTLPredictions) * time.Second,
		GameplanTTL:   time.Duration(cfg.CacheTTLGameplans) * time.Second,
	})

	var out any

	switch command {
	case "ingest":
		client := ingest.NewClient(cfg.StatsAPIBaseURL, cfg.StatsAPIKey, cfg.StatsAPITimeout)
		out, err = ingest.NewIngestor(client, db.GameLogs).Run(ctx, season)

	case "build-features":
		out, err = svc.BuildOffensiveFeatures(ctx, season, window, cfg.MinGames)

	case "build-defense":
		out, err = svc.BuildDefensiveFeatures(ctx, season, window, cfg.MinGames)

	case "build-baselines":
		out, err = svc.ComputeBaselines(ctx, season, window)

	case "build-matchups":
		out, err = svc.BuildMatchups(ctx, season, window)

	case "train":
		out, err = svc.TrainModel(ctx)

	case "evaluate":
		out, err = svc.EvaluateModel(ctx, season, window)

	case "predict":
		if *homeFlag == 0 || *awayFlag == 0 {
			log.Fatal().Msg("predict requires -home and -away team IDs")
		}
		out, err = svc.Predict(ctx, *homeFlag, *awayFlag, asOf, season, window)

	case "gameplan":
		if *teamAFlag == 0 || *teamBFlag == 0 {
			log.Fatal().Msg("gameplan requires -team-a and -team-b team IDs")
		}
		out, err = svc.GenerateGameplan(ctx, *teamAFlag, *teamBFlag, season, asOf, window)

	case "pipeline":
		err = svc.RebuildPipeline(ctx, season, window, cfg.MinGames)
		out = map[string]string{"status": "ok", "season": season}

	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatal().Err(err).Str("command", command).Msg("Command failed")
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatal().Err(err).Msg("Failed to encode output")
	}
}
