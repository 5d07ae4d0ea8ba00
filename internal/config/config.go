package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	LeadSource LeadSourceConfig `yaml:"lead_source" mapstructure:"lead_source"`
	Sheets     SheetsConfig     `yaml:"sheets" mapstructure:"sheets"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Capture    CaptureConfig    `yaml:"capture" mapstructure:"capture"`
	Qualify    QualifyConfig    `yaml:"qualify" mapstructure:"qualify"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int32  `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns    int32  `yaml:"min_conns" mapstructure:"min_conns"`
}

// ServerConfig configures the REST API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LeadSourceConfig holds the analytical lead-source query service settings.
type LeadSourceConfig struct {
	BaseURL           string  `yaml:"base_url" mapstructure:"base_url"`
	APIKey            string  `yaml:"api_key" mapstructure:"api_key"`
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	TimeoutSecs       int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// SheetsConfig holds the spreadsheet export settings.
type SheetsConfig struct {
	OutputPath string `yaml:"output_path" mapstructure:"output_path"`
	WebhookURL string `yaml:"webhook_url" mapstructure:"webhook_url"`
}

// SalesforceConfig holds Salesforce JWT auth settings for the CRM sink.
type SalesforceConfig struct {
	ClientID string `yaml:"client_id" mapstructure:"client_id"`
	Username string `yaml:"username" mapstructure:"username"`
	KeyPath  string `yaml:"key_path" mapstructure:"key_path"`
	LoginURL string `yaml:"login_url" mapstructure:"login_url"`
}

// CaptureConfig configures the lead-capture job.
type CaptureConfig struct {
	CNAE           string `yaml:"cnae" mapstructure:"cnae"`
	WindowDays     int    `yaml:"window_days" mapstructure:"window_days"`
	UF             string `yaml:"uf" mapstructure:"uf"`
	Limit          int    `yaml:"limit" mapstructure:"limit"`
	BatchSize      int    `yaml:"batch_size" mapstructure:"batch_size"`
	BatchDelaySecs int    `yaml:"batch_delay_secs" mapstructure:"batch_delay_secs"`
}

// QualifyConfig configures the lead qualification gate.
type QualifyConfig struct {
	Preset       string `yaml:"preset" mapstructure:"preset"`
	CriteriaFile string `yaml:"criteria_file" mapstructure:"criteria_file"`
}

// Validate checks that the fields required for the given run mode are
// set. Modes: "serve", "capture", "migrate".
func (c *Config) Validate(mode string) error {
	var missing []string

	needDB := func() {
		if c.Store.Driver == "postgres" && c.Store.DatabaseURL == "" {
			missing = append(missing, "store.database_url is required for the postgres driver")
		}
		if c.Store.Driver != "postgres" && c.Store.Driver != "sqlite" {
			missing = append(missing, "store.driver must be postgres or sqlite")
		}
	}

	switch mode {
	case "serve":
		needDB()
		if c.Server.Port <= 0 {
			missing = append(missing, "server.port must be > 0")
		}
	case "capture":
		needDB()
		if c.LeadSource.BaseURL == "" {
			missing = append(missing, "lead_source.base_url is required")
		}
		if c.LeadSource.APIKey == "" {
			missing = append(missing, "lead_source.api_key is required")
		}
		if c.Capture.CNAE == "" {
			missing = append(missing, "capture.cnae is required")
		}
		if c.Capture.BatchSize < 1 || c.Capture.BatchSize > 1000 {
			missing = append(missing, "capture.batch_size must be between 1 and 1000")
		}
		if c.Capture.WindowDays < 1 {
			missing = append(missing, "capture.window_days must be >= 1")
		}
	case "migrate":
		needDB()
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(missing) > 0 {
		return eris.New("config: " + strings.Join(missing, "; "))
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
	v.SetEnvPrefix("ASSISTPRO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "postgres")
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("store.min_conns", 2)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173", "http://localhost:3000"})
	v.SetDefault("lead_source.requests_per_second", 2)
	v.SetDefault("lead_source.timeout_secs", 30)
	v.SetDefault("sheets.output_path", "leads.xlsx")
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("capture.cnae", "5611201")
	v.SetDefault("capture.window_days", 30)
	v.SetDefault("capture.limit", 1000)
	v.SetDefault("capture.batch_size", 300)
	v.SetDefault("capture.batch_delay_secs", 3)
	v.SetDefault("qualify.preset", "standard")

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
