// Package config loads application configuration from file and environment
// and initializes the global logger.
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
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	RentCast    RentCastConfig    `yaml:"rentcast" mapstructure:"rentcast"`
	HomeHarvest HomeHarvestConfig `yaml:"homeharvest" mapstructure:"homeharvest"`
	ParcelRec   ParcelRecConfig   `yaml:"parcelrec" mapstructure:"parcelrec"`
	Assumptions AssumptionsConfig `yaml:"assumptions" mapstructure:"assumptions"`
	Lookup      LookupConfig      `yaml:"lookup" mapstructure:"lookup"`
	Batch       BatchConfig       `yaml:"batch" mapstructure:"batch"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Log         LogConfig         `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the persistence backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"` // "sqlite" or "postgres"
	Path        string `yaml:"path" mapstructure:"path"`     // sqlite file
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// RentCastConfig holds RentCast AVM settings.
type RentCastConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// HomeHarvestConfig holds the listing scrape service settings.
type HomeHarvestConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ParcelRecConfig holds the parcel feature-record provider settings.
type ParcelRecConfig struct {
	Key     string `yaml:"key" mapstructure:"key"`
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// AssumptionsConfig overrides the default underwriting assumptions. Zero
// values keep the defaults.
type AssumptionsConfig struct {
	DownPaymentFraction float64 `yaml:"down_payment_fraction" mapstructure:"down_payment_fraction"`
	AnnualInterestRate  float64 `yaml:"annual_interest_rate" mapstructure:"annual_interest_rate"`
	TermYears           int     `yaml:"term_years" mapstructure:"term_years"`
	ClosingCostFraction float64 `yaml:"closing_cost_fraction" mapstructure:"closing_cost_fraction"`
	PropertyTaxRate     float64 `yaml:"property_tax_rate" mapstructure:"property_tax_rate"`
	InsuranceRate       float64 `yaml:"insurance_rate" mapstructure:"insurance_rate"`
	MaintenanceRate     float64 `yaml:"maintenance_rate" mapstructure:"maintenance_rate"`
	VacancyRate         float64 `yaml:"vacancy_rate" mapstructure:"vacancy_rate"`
	ManagementRate      float64 `yaml:"management_rate" mapstructure:"management_rate"`
	MonthlyHOA          float64 `yaml:"monthly_hoa" mapstructure:"monthly_hoa"`
}

// LookupConfig configures external data-source calls.
type LookupConfig struct {
	TimeoutSecs     int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MinIntervalSecs int `yaml:"min_interval_secs" mapstructure:"min_interval_secs"`
	CacheTTLHours   int `yaml:"cache_ttl_hours" mapstructure:"cache_ttl_hours"`
}

// BatchConfig configures batch analysis.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RENTFOLIO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "analyzer.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.concurrency", 4)
	v.SetDefault("lookup.timeout_secs", 15)
	v.SetDefault("lookup.min_interval_secs", 1)
	v.SetDefault("lookup.cache_ttl_hours", 24)
	v.SetDefault("store.database_url", "")
	v.SetDefault("rentcast.key", "")
	v.SetDefault("parcelrec.key", "")
	v.SetDefault("rentcast.base_url", "https://api.rentcast.io/v1")
	v.SetDefault("homeharvest.base_url", "http://localhost:8700")
	v.SetDefault("parcelrec.base_url", "https://api.parcelrecords.io/v2")
	v.SetDefault("assumptions.down_payment_fraction", 0.20)
	v.SetDefault("assumptions.annual_interest_rate", 0.07)
	v.SetDefault("assumptions.term_years", 30)
	v.SetDefault("assumptions.closing_cost_fraction", 0.03)
	v.SetDefault("assumptions.property_tax_rate", 0.012)
	v.SetDefault("assumptions.insurance_rate", 0.005)
	v.SetDefault("assumptions.maintenance_rate", 0.010)
	v.SetDefault("assumptions.vacancy_rate", 0.05)
	v.SetDefault("assumptions.management_rate", 0.10)
	v.SetDefault("assumptions.monthly_hoa", 0.0)

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
