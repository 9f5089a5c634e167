package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port string `mapstructure:"port"`
}

type OpenAIConfig struct {
	Endpoint   string `mapstructure:"endpoint"`
	APIKey     string `mapstructure:"api_key"`
	Deployment string `mapstructure:"deployment"`
}

// AnalysisConfig exposes the tuning constants of the pipeline. The defaults
// are the catalog values; none of them carries a stated rationale, so they
// stay configurable.
type AnalysisConfig struct {
	SimilarityThreshold      float64 `mapstructure:"similarity_threshold"`
	ContextChars             int     `mapstructure:"context_chars"`
	ScheduleContextChars     int     `mapstructure:"schedule_context_chars"`
	WeaselThreshold          int     `mapstructure:"weasel_threshold"`
	MinSurvivalMonths        int     `mapstructure:"min_survival_months"`
	ConcentrationFlagPct     int     `mapstructure:"concentration_flag_pct"`
	ConcentrationCriticalPct int     `mapstructure:"concentration_critical_pct"`
	MaxAuditAgeYears         int     `mapstructure:"max_audit_age_years"`
	MaxChunkChars            int     `mapstructure:"max_chunk_chars"`
	ChunkDelayMs             int     `mapstructure:"chunk_delay_ms"`
	ChunkTimeoutSec          int     `mapstructure:"chunk_timeout_sec"`
	MaxUploadMb              int     `mapstructure:"max_upload_mb"`
}

type StorageConfig struct {
	DbPath string `mapstructure:"db_path"`
}

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// Load reads the config file (optional) with environment overrides under the
// DEALRADAR prefix, e.g. DEALRADAR_OPENAI_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", "8080")
	// Empty defaults keep the keys visible to AutomaticEnv; viper only
	// unmarshals env overrides for keys it already knows about.
	v.SetDefault("openai.endpoint", "")
	v.SetDefault("openai.api_key", "")
	v.SetDefault("openai.deployment", "")
	v.SetDefault("analysis.similarity_threshold", 0.7)
	v.SetDefault("analysis.context_chars", 150)
	v.SetDefault("analysis.schedule_context_chars", 100)
	v.SetDefault("analysis.weasel_threshold", 3)
	v.SetDefault("analysis.min_survival_months", 12)
	v.SetDefault("analysis.concentration_flag_pct", 50)
	v.SetDefault("analysis.concentration_critical_pct", 70)
	v.SetDefault("analysis.max_audit_age_years", 2)
	v.SetDefault("analysis.max_chunk_chars", 15000)
	v.SetDefault("analysis.chunk_delay_ms", 500)
	v.SetDefault("analysis.chunk_timeout_sec", 60)
	v.SetDefault("analysis.max_upload_mb", 20)
	v.SetDefault("storage.db_path", "deal-radar.db")

	v.SetEnvPrefix("DEALRADAR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
