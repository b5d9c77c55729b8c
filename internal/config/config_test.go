package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const sampleYAML = `
logging:
  level: debug
  format: json
server:
  addr: ":9090"
  requestTimeout: 2m
openfda:
  apiKey: from-file
  listLimit: 100
listing:
  source: accessdata
crawl:
  workers: 3
  callTimeout: 5s
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultsAreValid(t *testing.T) {
	cfg := LoadFrom("")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if cfg.Listing.Source != "openfda" {
		t.Fatalf("unexpected default source: %s", cfg.Listing.Source)
	}
	if cfg.Crawl.Workers != 8 {
		t.Fatalf("unexpected default workers: %d", cfg.Crawl.Workers)
	}
}

func TestLoadFromFileMergesOverDefaults(t *testing.T) {
	cfg := LoadFrom(writeConfig(t, sampleYAML))

	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" {
		t.Fatalf("unexpected logging: %+v", cfg.Logging)
	}
	if cfg.Server.Addr != ":9090" || cfg.Server.RequestTimeout != 2*time.Minute {
		t.Fatalf("unexpected server: %+v", cfg.Server)
	}
	if cfg.OpenFDA.APIKey != "from-file" || cfg.OpenFDA.ListLimit != 100 {
		t.Fatalf("unexpected openfda: %+v", cfg.OpenFDA)
	}
	if cfg.OpenFDA.MetadataLimit != 500 || cfg.OpenFDA.BaseURL != "https://api.fda.gov" {
		t.Fatalf("defaults lost during merge: %+v", cfg.OpenFDA)
	}
	if cfg.Listing.Source != "accessdata" {
		t.Fatalf("unexpected listing source: %s", cfg.Listing.Source)
	}
	if cfg.Crawl.Workers != 3 || cfg.Crawl.CallTimeout != 5*time.Second {
		t.Fatalf("unexpected crawl: %+v", cfg.Crawl)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("merged config should validate: %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	t.Setenv(addrEnv, ":7070")
	t.Setenv(openFDAAPIKeyEnv, "from-env")
	t.Setenv(workersEnv, "12")
	t.Setenv(listingSourceEnv, "OPENFDA")
	t.Setenv(logLevelEnv, "warn")

	cfg := LoadFrom(writeConfig(t, sampleYAML))

	if cfg.Server.Addr != ":7070" {
		t.Fatalf("unexpected addr: %s", cfg.Server.Addr)
	}
	if cfg.OpenFDA.APIKey != "from-env" {
		t.Fatalf("unexpected api key: %s", cfg.OpenFDA.APIKey)
	}
	if cfg.Crawl.Workers != 12 {
		t.Fatalf("unexpected workers: %d", cfg.Crawl.Workers)
	}
	if cfg.Listing.Source != "openfda" {
		t.Fatalf("unexpected source: %s", cfg.Listing.Source)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("unexpected level: %s", cfg.Logging.Level)
	}
}

func TestLoadUsesConfigEnv(t *testing.T) {
	t.Setenv(configPathEnv, writeConfig(t, sampleYAML))

	if cfg := Load(); cfg.Server.Addr != ":9090" {
		t.Fatalf("config env not honoured: %s", cfg.Server.Addr)
	}
}

func TestBrokenFileFallsBackToDefaults(t *testing.T) {
	cfg := LoadFrom(writeConfig(t, "server: [not, a, map"))
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr, got %s", cfg.Server.Addr)
	}

	cfg = LoadFrom(filepath.Join(t.TempDir(), "missing.yaml"))
	if cfg.Server.Addr != ":8080" {
		t.Fatalf("expected default addr, got %s", cfg.Server.Addr)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cfg := LoadFrom("")
	cfg.Listing.Source = "ftp"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected unknown listing source to fail")
	}

	cfg = LoadFrom("")
	cfg.Crawl.Workers = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected zero workers to fail")
	}

	cfg = LoadFrom("")
	cfg.OpenFDA.BaseURL = "not a url"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected invalid base url to fail")
	}
}

func TestZeroRetriesIsHonoured(t *testing.T) {
	cfg := LoadFrom(writeConfig(t, `
openfda:
  maxRetries: 0
documents:
  maxRetries: 5
`))

	if got := Retries(cfg.OpenFDA.MaxRetries); got != 0 {
		t.Fatalf("expected openfda retries disabled, got %d", got)
	}
	if got := Retries(cfg.Documents.MaxRetries); got != 5 {
		t.Fatalf("expected document retries 5, got %d", got)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("zero retries should validate: %v", err)
	}

	defaults := LoadFrom("")
	if got := Retries(defaults.OpenFDA.MaxRetries); got != 3 {
		t.Fatalf("unexpected default openfda retries: %d", got)
	}
	if got := Retries(defaults.Documents.MaxRetries); got != 2 {
		t.Fatalf("unexpected default document retries: %d", got)
	}
}

func TestValidateRejectsNegativeRetries(t *testing.T) {
	cfg := LoadFrom("")
	cfg.Documents.MaxRetries = intPtr(-1)
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected negative retries to fail")
	}
}
