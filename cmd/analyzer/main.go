package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"places-insight/internal/cache"
	"places-insight/internal/config"
	"places-insight/internal/ingest"
	"places-insight/internal/places"
	"places-insight/internal/repo"
	"places-insight/internal/report"
	"places-insight/internal/services/analysis"
	"places-insight/internal/services/llm"
	"places-insight/internal/services/sentiment"

	"github.com/go-redis/redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	var (
		dataPath = flag.String("data", "", "Path to a JSON file or directory of exported place records")
		search   = flag.Bool("search", false, "Search for places interactively via the Places API")
		sample   = flag.Bool("sample", false, "Run against the built-in sample businesses")
		outDir   = flag.String("out", "", "Report output directory (overrides REPORT_DIR)")
		query    = flag.String("query", "", "Optional question to ask about the analyzed businesses")
		label    = flag.String("label", "", "Run label for database persistence")
	)
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	businesses, err := loadBusinesses(ctx, cfg, *dataPath, *search, *sample)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load businesses")
	}
	if len(businesses) == 0 {
		log.Fatal().Msg("No businesses to analyze")
	}

	client, err := llm.NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create LLM client")
	}

	completions, err := buildCache(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create completion cache")
	}
	defer completions.Close()

	analyzer := analysis.NewAnalyzer(
		llm.NewCachingClient(client, completions),
		analysis.WithThrottle(cfg.Pipeline.ThrottleDelay),
	)

	analyses := analyzer.AnalyzeBusinesses(ctx, businesses)

	dir := cfg.Report.Dir
	if *outDir != "" {
		dir = *outDir
	}
	out, err := report.NewWriter(dir).WriteAll(analyses)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to write reports")
	}
	fmt.Printf("Reports written:\n  %s\n  %s\n  %s\n  %s\n",
		out.SummaryPath, out.DetailedPath, out.CSVPath, out.TextPath)

	if cfg.Database.URL != "" {
		if err := persistRun(ctx, cfg.Database.URL, *label, analyses); err != nil {
			log.Error().Err(err).Msg("Failed to persist run")
		}
	}

	if *query != "" {
		result := analyzer.QueryBusinesses(ctx, *query, businesses)
		fmt.Printf("\nQ: %s\nA: %s\n", result.Question, result.Answer)
		if len(result.SupportingBusinesses) > 0 {
			fmt.Printf("Supporting businesses: %s\n", strings.Join(result.SupportingBusinesses, ", "))
		}
	}
}

func loadBusinesses(ctx context.Context, cfg *config.Config, dataPath string, search, sample bool) ([]analysis.Business, error) {
	switch {
	case dataPath != "":
		loader := ingest.NewLoader()
		info, err := os.Stat(dataPath)
		if err != nil {
			return nil, fmt.Errorf("failed to stat %s: %w", dataPath, err)
		}
		if info.IsDir() {
			return loader.LoadFromDirectory(dataPath)
		}
		return loader.LoadFromFile(dataPath)

	case search:
		if cfg.Places.APIKey == "" {
			return nil, fmt.Errorf("GOOGLE_MAPS_API_KEY is required for search")
		}
		lat, lng, keyword, radius := promptSearchParams()
		client := places.NewClient(cfg.Places.APIKey)
		return client.SearchNearby(ctx, lat, lng, keyword, radius)

	case sample:
		return ingest.SampleBusinesses(), nil

	default:
		return nil, fmt.Errorf("one of -data, -search or -sample is required")
	}
}

// promptSearchParams collects search parameters from stdin, with
// defaults on empty input.
func promptSearchParams() (lat, lng float64, keyword string, radius int) {
	scanner := bufio.NewScanner(os.Stdin)

	lat = promptFloat(scanner, "Latitude", 40.7128)
	lng = promptFloat(scanner, "Longitude", -74.0060)
	keyword = promptString(scanner, "Keyword", "restaurant")
	radius = promptInt(scanner, "Radius (meters)", 1500)
	return lat, lng, keyword, radius
}

func promptString(scanner *bufio.Scanner, label, fallback string) string {
	fmt.Printf("%s [%s]: ", label, fallback)
	if scanner.Scan() {
		if value := strings.TrimSpace(scanner.Text()); value != "" {
			return value
		}
	}
	return fallback
}

func promptFloat(scanner *bufio.Scanner, label string, fallback float64) float64 {
	raw := promptString(scanner, label, strconv.FormatFloat(fallback, 'f', -1, 64))
	if value, err := strconv.ParseFloat(raw, 64); err == nil {
		return value
	}
	return fallback
}

func promptInt(scanner *bufio.Scanner, label string, fallback int) int {
	raw := promptString(scanner, label, strconv.Itoa(fallback))
	if value, err := strconv.Atoi(raw); err == nil {
		return value
	}
	return fallback
}

func buildCache(cfg *config.Config) (*cache.CompletionCache, error) {
	var redisClient *redis.Client
	if cfg.Redis.Addr != "" {
		client, err := cache.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			// Cache is an optimization; run without Redis rather than abort.
			log.Warn().Err(err).Msg("Redis unavailable, continuing with local cache only")
		} else {
			redisClient = client
		}
	}
	return cache.NewCompletionCache(cfg.Pipeline.LocalCacheSize, redisClient, cfg.Pipeline.CacheTTL)
}

func persistRun(ctx context.Context, databaseURL, label string, analyses []analysis.Analysis) error {
	db, err := repo.NewDB(ctx, databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		return err
	}

	if label == "" {
		label = time.Now().UTC().Format("2006-01-02 15:04:05")
	}
	runID, err := db.CreateRun(ctx, label, len(analyses))
	if err != nil {
		return err
	}

	for i := range analyses {
		if err := db.SaveAnalysis(ctx, runID, analyses[i]); err != nil {
			return err
		}
	}

	views := analysis.FleetView(analyses)
	if err := db.SaveFleetReport(ctx, runID,
		sentiment.AggregateFleet(views), sentiment.CalculateTrends(views)); err != nil {
		return err
	}

	log.Info().Int64("run_id", runID).Msg("Run persisted")
	return nil
}
