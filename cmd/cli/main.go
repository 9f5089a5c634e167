package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/de-tools/deal-radar/pkg/adapters"
	"github.com/de-tools/deal-radar/pkg/services/aggregate"
	"github.com/de-tools/deal-radar/pkg/services/analysis"
	"github.com/de-tools/deal-radar/pkg/services/config"
	"github.com/de-tools/deal-radar/pkg/services/extract"
	"github.com/de-tools/deal-radar/pkg/services/rules"
	"github.com/de-tools/deal-radar/pkg/services/semantic"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	useRules    bool
	useSemantic bool
	asJSON      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "deal-radar",
		Short: "Contract red flag analysis tool",
	}
	rootCmd.AddCommand(newAnalyzeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file>",
		Short: "Analyze a contract document for red flags",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to the config file")
	cmd.Flags().BoolVar(&useRules, "rules", true, "Enable the rule detector")
	cmd.Flags().BoolVar(&useSemantic, "semantic", true, "Enable the semantic detector")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the full report as JSON instead of a summary")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	path := args[0]
	text, err := extract.Text(path, path)
	if err != nil {
		return err
	}

	ruleSettings := rules.DefaultSettings()
	ruleSettings.ContextChars = cfg.Analysis.ContextChars
	ruleSettings.ScheduleContextChars = cfg.Analysis.ScheduleContextChars
	ruleSettings.WeaselThreshold = cfg.Analysis.WeaselThreshold
	ruleSettings.MinSurvivalMonths = cfg.Analysis.MinSurvivalMonths
	ruleSettings.ConcentrationFlagPct = cfg.Analysis.ConcentrationFlagPct
	ruleSettings.ConcentrationCriticalPct = cfg.Analysis.ConcentrationCriticalPct
	ruleSettings.MaxAuditAgeYears = cfg.Analysis.MaxAuditAgeYears

	aggSettings := aggregate.DefaultSettings()
	aggSettings.SimilarityThreshold = cfg.Analysis.SimilarityThreshold

	var semanticDetector analysis.SemanticDetector
	if useSemantic && cfg.OpenAI.Endpoint != "" && cfg.OpenAI.APIKey != "" && cfg.OpenAI.Deployment != "" {
		client, err := semantic.NewAzureOpenAIClient(cfg.OpenAI.Endpoint, cfg.OpenAI.APIKey, cfg.OpenAI.Deployment)
		if err != nil {
			return fmt.Errorf("failed to create semantic client: %w", err)
		}

		semSettings := semantic.DefaultSettings()
		semSettings.MaxChunkChars = cfg.Analysis.MaxChunkChars
		semSettings.ChunkDelay = time.Duration(cfg.Analysis.ChunkDelayMs) * time.Millisecond
		semSettings.ChunkTimeout = time.Duration(cfg.Analysis.ChunkTimeoutSec) * time.Second
		semanticDetector = semantic.NewAnalyzer(client, semSettings)
	} else if useSemantic {
		logger.Warn().Msg("semantic detector not configured; running rule-only")
	}

	controller := analysis.NewController(
		rules.NewEngine(ruleSettings),
		semanticDetector,
		aggregate.NewAggregator(aggSettings),
		nil, // one-shot runs are not persisted
	)

	report, err := controller.AnalyzeDocument(ctx, filepath.Base(path), text, analysis.Options{
		UseRules:    useRules,
		UseSemantic: useSemantic,
	})
	if err != nil {
		return err
	}

	if asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(adapters.MapReportDomainToApi(report))
	}

	fmt.Print(aggregate.Summary(report))
	return nil
}
