package main

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/de-tools/deal-radar/pkg/server"
	"github.com/de-tools/deal-radar/pkg/services/aggregate"
	"github.com/de-tools/deal-radar/pkg/services/analysis"
	"github.com/de-tools/deal-radar/pkg/services/config"
	"github.com/de-tools/deal-radar/pkg/services/rules"
	"github.com/de-tools/deal-radar/pkg/services/semantic"
	"github.com/de-tools/deal-radar/pkg/store/duckdb"
	duckdbreport "github.com/de-tools/deal-radar/pkg/store/duckdb/report"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var cfgPath string

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Deal Radar",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the config file (optional; env vars with DEALRADAR_ prefix also apply)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("No .env file loaded: %v\n", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	db, err := duckdb.NewDB(duckdb.Settings{
		DbPath: cfg.Storage.DbPath,
	})
	if err != nil {
		return fmt.Errorf("failed to create DuckDB instance: %w", err)
	}

	reportStore, err := duckdbreport.NewStore(db)
	if err != nil {
		return fmt.Errorf("failed to create report store: %w", err)
	}

	ruleEngine := rules.NewEngine(ruleSettingsFromConfig(cfg))

	aggSettings := aggregate.DefaultSettings()
	aggSettings.SimilarityThreshold = cfg.Analysis.SimilarityThreshold
	aggregator := aggregate.NewAggregator(aggSettings)

	var semanticDetector analysis.SemanticDetector
	semanticReady := cfg.OpenAI.Endpoint != "" && cfg.OpenAI.APIKey != "" && cfg.OpenAI.Deployment != ""
	if semanticReady {
		client, err := semantic.NewAzureOpenAIClient(cfg.OpenAI.Endpoint, cfg.OpenAI.APIKey, cfg.OpenAI.Deployment)
		if err != nil {
			return fmt.Errorf("failed to create semantic client: %w", err)
		}

		semSettings := semantic.DefaultSettings()
		semSettings.MaxChunkChars = cfg.Analysis.MaxChunkChars
		semSettings.ChunkDelay = time.Duration(cfg.Analysis.ChunkDelayMs) * time.Millisecond
		semSettings.ChunkTimeout = time.Duration(cfg.Analysis.ChunkTimeoutSec) * time.Second
		semanticDetector = semantic.NewAnalyzer(client, semSettings)
	} else {
		logger.Warn().Msg("semantic detector not configured; analyses will run rule-only")
	}

	controller := analysis.NewController(ruleEngine, semanticDetector, aggregator, reportStore)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	api := server.NewWebAPI(logger, server.Config{
		Addr: addr,
		Dependencies: server.Dependencies{
			Controller:     controller,
			MaxUploadBytes: int64(cfg.Analysis.MaxUploadMb) << 20,
			SemanticReady:  semanticReady,
			Logger:         logger,
		},
	})

	return api.Start()
}

func ruleSettingsFromConfig(cfg *config.Config) rules.Settings {
	settings := rules.DefaultSettings()
	settings.ContextChars = cfg.Analysis.ContextChars
	settings.ScheduleContextChars = cfg.Analysis.ScheduleContextChars
	settings.WeaselThreshold = cfg.Analysis.WeaselThreshold
	settings.MinSurvivalMonths = cfg.Analysis.MinSurvivalMonths
	settings.ConcentrationFlagPct = cfg.Analysis.ConcentrationFlagPct
	settings.ConcentrationCriticalPct = cfg.Analysis.ConcentrationCriticalPct
	settings.MaxAuditAgeYears = cfg.Analysis.MaxAuditAgeYears
	return settings
}
