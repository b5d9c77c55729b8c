package config

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "DEVICE_LINEAGE_CONFIG"
	addrEnv          = "DEVICE_LINEAGE_ADDR"
	logLevelEnv      = "DEVICE_LINEAGE_LOG_LEVEL"
	workersEnv       = "DEVICE_LINEAGE_WORKERS"
	listingSourceEnv = "DEVICE_LINEAGE_LISTING_SOURCE"
	openFDAAPIKeyEnv = "OPENFDA_API_KEY"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging   LoggingConfig  `yaml:"logging"`
	Server    ServerConfig   `yaml:"server"`
	OpenFDA   OpenFDAConfig  `yaml:"openfda"`
	Documents DocumentConfig `yaml:"documents"`
	Listing   ListingConfig  `yaml:"listing"`
	Crawl     CrawlConfig    `yaml:"crawl"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"omitempty,oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"omitempty,oneof=text json"`
}

// ServerConfig describes the HTTP surface.
type ServerConfig struct {
	Addr           string        `yaml:"addr" validate:"required"`
	RequestTimeout time.Duration `yaml:"requestTimeout" validate:"gt=0"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
}

// OpenFDAConfig points at the openFDA device API.
type OpenFDAConfig struct {
	BaseURL       string        `yaml:"baseUrl" validate:"required,url"`
	APIKey        string        `yaml:"apiKey"`
	ListLimit     int           `yaml:"listLimit" validate:"gte=1,lte=1000"`
	MetadataLimit int           `yaml:"metadataLimit" validate:"gte=1,lte=1000"`
	Timeout       time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxRetries    *int          `yaml:"maxRetries" validate:"omitempty,gte=0,lte=10"`
}

// DocumentConfig locates the 510(k) summary PDFs.
type DocumentConfig struct {
	BaseURL    string        `yaml:"baseUrl" validate:"required,url"`
	Timeout    time.Duration `yaml:"timeout" validate:"gt=0"`
	MaxRetries *int          `yaml:"maxRetries" validate:"omitempty,gte=0,lte=10"`
}

// ListingConfig picks the scanner strategy that enumerates submissions.
type ListingConfig struct {
	Source string `yaml:"source" validate:"required,oneof=openfda accessdata"`
	PMNURL string `yaml:"pmnUrl" validate:"omitempty,url"`
}

// CrawlConfig bounds the predicate crawl.
type CrawlConfig struct {
	Workers     int           `yaml:"workers" validate:"gte=1,lte=64"`
	CallTimeout time.Duration `yaml:"callTimeout" validate:"gt=0"`
}

// Retries returns the configured retry count; an unset value means none.
func Retries(n *int) int {
	if n == nil {
		return 0
	}
	return *n
}

func intPtr(v int) *int {
	return &v
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	return LoadFrom(os.Getenv(configPathEnv))
}

// LoadFrom reads configuration from a local path or URL; an empty location keeps defaults.
func LoadFrom(location string) Config {
	cfg := defaultConfig()

	if location != "" {
		if raw, err := afs.New().DownloadWithURL(context.Background(), location); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", location, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", location, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate checks field constraints.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(addrEnv); v != "" {
		c.Server.Addr = v
	}

	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}

	if v := os.Getenv(openFDAAPIKeyEnv); v != "" {
		c.OpenFDA.APIKey = v
	}

	if v := os.Getenv(listingSourceEnv); v != "" {
		c.Listing.Source = strings.ToLower(v)
	}

	if v := os.Getenv(workersEnv); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Crawl.Workers = n
		} else {
			log.Printf("config: ignoring %s=%q: %v", workersEnv, v, err)
		}
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	if override.Server.Addr != "" {
		base.Server.Addr = override.Server.Addr
	}
	if override.Server.RequestTimeout > 0 {
		base.Server.RequestTimeout = override.Server.RequestTimeout
	}
	if len(override.Server.AllowedOrigins) > 0 {
		base.Server.AllowedOrigins = override.Server.AllowedOrigins
	}

	if override.OpenFDA.BaseURL != "" {
		base.OpenFDA.BaseURL = override.OpenFDA.BaseURL
	}
	if override.OpenFDA.APIKey != "" {
		base.OpenFDA.APIKey = override.OpenFDA.APIKey
	}
	if override.OpenFDA.ListLimit > 0 {
		base.OpenFDA.ListLimit = override.OpenFDA.ListLimit
	}
	if override.OpenFDA.MetadataLimit > 0 {
		base.OpenFDA.MetadataLimit = override.OpenFDA.MetadataLimit
	}
	if override.OpenFDA.Timeout > 0 {
		base.OpenFDA.Timeout = override.OpenFDA.Timeout
	}
	if override.OpenFDA.MaxRetries != nil {
		base.OpenFDA.MaxRetries = override.OpenFDA.MaxRetries
	}

	if override.Documents.BaseURL != "" {
		base.Documents.BaseURL = override.Documents.BaseURL
	}
	if override.Documents.Timeout > 0 {
		base.Documents.Timeout = override.Documents.Timeout
	}
	if override.Documents.MaxRetries != nil {
		base.Documents.MaxRetries = override.Documents.MaxRetries
	}

	if override.Listing.Source != "" {
		base.Listing.Source = override.Listing.Source
	}
	if override.Listing.PMNURL != "" {
		base.Listing.PMNURL = override.Listing.PMNURL
	}

	if override.Crawl.Workers > 0 {
		base.Crawl.Workers = override.Crawl.Workers
	}
	if override.Crawl.CallTimeout > 0 {
		base.Crawl.CallTimeout = override.Crawl.CallTimeout
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Server: ServerConfig{
			Addr:           ":8080",
			RequestTimeout: 10 * time.Minute,
			AllowedOrigins: []string{"*"},
		},
		OpenFDA: OpenFDAConfig{
			BaseURL:       "https://api.fda.gov",
			ListLimit:     500,
			MetadataLimit: 500,
			Timeout:       30 * time.Second,
			MaxRetries:    intPtr(3),
		},
		Documents: DocumentConfig{
			BaseURL:    "https://www.accessdata.fda.gov/cdrh_docs",
			Timeout:    30 * time.Second,
			MaxRetries: intPtr(2),
		},
		Listing: ListingConfig{
			Source: "openfda",
			PMNURL: "https://www.accessdata.fda.gov/scripts/cdrh/cfdocs/cfpmn/pmn.cfm",
		},
		Crawl: CrawlConfig{
			Workers:     8,
			CallTimeout: 45 * time.Second,
		},
	}
}
