package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Data     DataConfig     `yaml:"data" mapstructure:"data"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// DataConfig locates the input datasets. Locations may be paths or
// http(s):// / ftp:// URLs.
type DataConfig struct {
	Attributes string `yaml:"attributes" mapstructure:"attributes"`
	Geometry   string `yaml:"geometry" mapstructure:"geometry"`
	TempDir    string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// FetchConfig configures remote dataset downloads.
type FetchConfig struct {
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries  int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	UserAgent   string  `yaml:"user_agent" mapstructure:"user_agent"`
}

// Timeout returns TimeoutSecs as a duration.
func (f FetchConfig) Timeout() time.Duration {
	return time.Duration(f.TimeoutSecs) * time.Second
}

// AnalysisConfig holds default engine parameters.
type AnalysisConfig struct {
	BaselineYear    int     `yaml:"baseline_year" mapstructure:"baseline_year"`
	CohortYear      int     `yaml:"cohort_year" mapstructure:"cohort_year"`
	NearThresholdKM float64 `yaml:"near_threshold_km" mapstructure:"near_threshold_km"`
	// Controls overrides the default control neighbourhoods. Empty keeps the
	// defaults.
	Controls []string `yaml:"controls" mapstructure:"controls"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Validate checks the settings a run mode needs: "analyze" for the
// one-shot commands, "serve" for the HTTP API. All problems are reported
// together.
func (c *Config) Validate(mode string) error {
	var problems []string
	switch mode {
	case "analyze":
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, fmt.Sprintf("server.port must be > 0 and <= 65535, got %d", c.Server.Port))
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if c.Data.Attributes == "" {
		problems = append(problems, "data.attributes is required")
	}
	if c.Analysis.NearThresholdKM <= 0 {
		problems = append(problems, fmt.Sprintf("analysis.near_threshold_km must be > 0, got %g", c.Analysis.NearThresholdKM))
	}
	if c.Fetch.MaxRetries < 1 {
		problems = append(problems, "fetch.max_retries must be >= 1")
	}
	if c.Fetch.RatePerSec <= 0 {
		problems = append(problems, "fetch.rate_per_sec must be > 0")
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("CTS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("data.attributes", "neighbourhood_crime_rates.json")
	v.SetDefault("data.geometry", "neighbourhood-crime-rates.geojson")
	v.SetDefault("data.temp_dir", filepath.Join(os.TempDir(), "cts-trends"))
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_retries", 3)
	v.SetDefault("fetch.rate_per_sec", 5.0)
	v.SetDefault("fetch.user_agent", "cts-trends/1.0")
	v.SetDefault("analysis.baseline_year", 2016)
	v.SetDefault("analysis.cohort_year", 2017)
	v.SetDefault("analysis.near_threshold_km", 2.0)
	v.SetDefault("analysis.controls", []string{})
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
