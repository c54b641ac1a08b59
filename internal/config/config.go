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
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Sheets    SheetsConfig    `yaml:"sheets" mapstructure:"sheets"`
	Fetch     FetchConfig     `yaml:"fetch" mapstructure:"fetch"`
	Search    SearchConfig    `yaml:"search" mapstructure:"search"`
	Discovery DiscoveryConfig `yaml:"discovery" mapstructure:"discovery"`
	News      NewsConfig      `yaml:"news" mapstructure:"news"`
	Pipeline  PipelineConfig  `yaml:"pipeline" mapstructure:"pipeline"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig selects and configures the table backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	// Path is the SQLite database or XLSX workbook file.
	Path     string `yaml:"path" mapstructure:"path"`
	MaxConns int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// SheetsConfig holds Google Sheets settings.
type SheetsConfig struct {
	SpreadsheetID   string `yaml:"spreadsheet_id" mapstructure:"spreadsheet_id"`
	CredentialsFile string `yaml:"credentials_file" mapstructure:"credentials_file"`
	// CredentialsEnv names the environment variable holding the service
	// account JSON.
	CredentialsEnv      string `yaml:"credentials_env" mapstructure:"credentials_env"`
	BaseURL             string `yaml:"base_url" mapstructure:"base_url"`
	JobsSheet           string `yaml:"jobs_sheet" mapstructure:"jobs_sheet"`
	DecisionMakersSheet string `yaml:"decision_makers_sheet" mapstructure:"decision_makers_sheet"`
}

// FetchConfig configures the page fetcher.
type FetchConfig struct {
	UserAgent           string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs         int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxAttempts         int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	BackoffUnitMs       int    `yaml:"backoff_unit_ms" mapstructure:"backoff_unit_ms"`
	HostIntervalMs      int    `yaml:"host_interval_ms" mapstructure:"host_interval_ms"`
	MaxBodyBytes        int64  `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	BreakerThreshold    int    `yaml:"breaker_threshold" mapstructure:"breaker_threshold"`
	BreakerResetSeconds int    `yaml:"breaker_reset_secs" mapstructure:"breaker_reset_secs"`
}

// SearchConfig configures the job search stage.
type SearchConfig struct {
	BaseURL     string   `yaml:"base_url" mapstructure:"base_url"`
	Location    string   `yaml:"location" mapstructure:"location"`
	Source      string   `yaml:"source" mapstructure:"source"`
	Phrases     []string `yaml:"phrases" mapstructure:"phrases"`
	MaxAttempts int      `yaml:"max_attempts" mapstructure:"max_attempts"`
	DelayMs     int      `yaml:"delay_ms" mapstructure:"delay_ms"`
}

// DiscoveryConfig configures decision-maker discovery.
type DiscoveryConfig struct {
	SearchURL      string   `yaml:"search_url" mapstructure:"search_url"`
	Titles         []string `yaml:"titles" mapstructure:"titles"`
	MaxProfiles    int      `yaml:"max_profiles" mapstructure:"max_profiles"`
	MaxAttempts    int      `yaml:"max_attempts" mapstructure:"max_attempts"`
	SearchDelayMs  int      `yaml:"search_delay_ms" mapstructure:"search_delay_ms"`
	ProfileDelayMs int      `yaml:"profile_delay_ms" mapstructure:"profile_delay_ms"`
}

// NewsConfig configures news enrichment.
type NewsConfig struct {
	SearchURL   string `yaml:"search_url" mapstructure:"search_url"`
	MaxAttempts int    `yaml:"max_attempts" mapstructure:"max_attempts"`
	MaxArticles int    `yaml:"max_articles" mapstructure:"max_articles"`
}

// PipelineConfig configures the run as a whole.
type PipelineConfig struct {
	TopCompanies int `yaml:"top_companies" mapstructure:"top_companies"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
	// File receives a copy of every log entry. Empty disables file output.
	File string `yaml:"file" mapstructure:"file"`
}

// Millis converts a millisecond setting to a duration.
func Millis(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// Load reads configuration from file and environment. An empty configFile
// looks for config.yaml in the working directory.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	// Environment
	v.SetEnvPrefix("JOBSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("sheets.spreadsheet_id", "JOBSCOUT_SHEETS_SPREADSHEET_ID", "SPREADSHEET_ID"); err != nil {
		return nil, eris.Wrap(err, "config: bind env")
	}

	// Defaults
	v.SetDefault("store.driver", "sheets")
	v.SetDefault("store.path", "jobscout.db")
	v.SetDefault("sheets.credentials_file", "credentials.json")
	v.SetDefault("sheets.credentials_env", "CREDENTIALS")
	v.SetDefault("sheets.jobs_sheet", "Jobs")
	v.SetDefault("sheets.decision_makers_sheet", "Decision Makers")
	v.SetDefault("fetch.timeout_secs", 30)
	v.SetDefault("fetch.max_attempts", 3)
	v.SetDefault("fetch.backoff_unit_ms", 1000)
	v.SetDefault("fetch.host_interval_ms", 0)
	v.SetDefault("fetch.max_body_bytes", 2<<20)
	v.SetDefault("fetch.breaker_threshold", 5)
	v.SetDefault("fetch.breaker_reset_secs", 60)
	v.SetDefault("search.base_url", "https://www.linkedin.com/jobs/search")
	v.SetDefault("search.location", "United States")
	v.SetDefault("search.source", "LinkedIn")
	v.SetDefault("search.max_attempts", 1)
	v.SetDefault("search.delay_ms", 1000)
	v.SetDefault("discovery.search_url", "https://www.google.com/search")
	v.SetDefault("discovery.titles", []string{"CTO", "VP Engineering", "Head of R&D"})
	v.SetDefault("discovery.max_profiles", 2)
	v.SetDefault("discovery.max_attempts", 3)
	v.SetDefault("discovery.search_delay_ms", 300)
	v.SetDefault("discovery.profile_delay_ms", 200)
	v.SetDefault("news.search_url", "https://news.google.com/search")
	v.SetDefault("news.max_attempts", 1)
	v.SetDefault("news.max_articles", 2)
	v.SetDefault("pipeline.top_companies", 5)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.file", "scraper.log")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !notFound || configFile != "" {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command needs before it starts work.
// persist is true for commands that read or write the store.
func (c *Config) Validate(persist bool) error {
	var errs []string

	if persist {
		switch c.Store.Driver {
		case "sheets":
			if c.Sheets.SpreadsheetID == "" {
				errs = append(errs, "sheets.spreadsheet_id is required (set SPREADSHEET_ID)")
			}
		case "postgres":
			if c.Store.DatabaseURL == "" {
				errs = append(errs, "store.database_url is required for the postgres driver")
			}
		case "sqlite", "xlsx":
			if c.Store.Path == "" {
				errs = append(errs, fmt.Sprintf("store.path is required for the %s driver", c.Store.Driver))
			}
		case "memory":
		default:
			errs = append(errs, fmt.Sprintf("store.driver %q is not one of sheets, sqlite, postgres, xlsx, memory", c.Store.Driver))
		}
	}

	if c.Fetch.MaxAttempts < 1 || c.Fetch.MaxAttempts > 10 {
		errs = append(errs, "fetch.max_attempts must be between 1 and 10")
	}
	if c.Search.BaseURL == "" {
		errs = append(errs, "search.base_url is required")
	}
	if len(c.Search.Phrases) > 10 {
		errs = append(errs, "search.phrases allows at most 10 phrases")
	}
	if c.Discovery.MaxProfiles < 1 {
		errs = append(errs, "discovery.max_profiles must be >= 1")
	}
	if c.News.MaxArticles < 1 {
		errs = append(errs, "news.max_articles must be >= 1")
	}
	if c.Pipeline.TopCompanies < 1 {
		errs = append(errs, "pipeline.top_companies must be >= 1")
	}
	for _, d := range []struct {
		name string
		ms   int
	}{
		{"search.delay_ms", c.Search.DelayMs},
		{"discovery.search_delay_ms", c.Discovery.SearchDelayMs},
		{"discovery.profile_delay_ms", c.Discovery.ProfileDelayMs},
		{"fetch.backoff_unit_ms", c.Fetch.BackoffUnitMs},
	} {
		if d.ms < 0 {
			errs = append(errs, d.name+" must be >= 0")
		}
	}

	if len(errs) > 0 {
		return eris.New("config: " + strings.Join(errs, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger. When cfg.File is set,
// entries go to both stderr and the file.
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

	if cfg.File != "" {
		if dir := filepath.Dir(cfg.File); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return eris.Wrap(err, "config: create log directory")
			}
		}
		zapCfg.OutputPaths = append(zapCfg.OutputPaths, cfg.File)
		zapCfg.ErrorOutputPaths = append(zapCfg.ErrorOutputPaths, cfg.File)
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
