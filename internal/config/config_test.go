package config

import (
	"os"
	"testing"
)

func TestLoadFull(t *testing.T) {
	yamlContent := []byte(`
storage:
  data_dir: "/tmp/backlab/data"
  sqlite_path: "/tmp/backlab/backlab.db"
server:
  host: "0.0.0.0"
  port: 8080
alpaca:
  api_key: "test-key"
  api_secret: "test-secret"
  data_url: "https://data.alpaca.markets"
logging:
  level: "debug"
  format: "text"
fetch:
  source: "alpaca"
  rate_limit_per_min: 100
  max_attempts: 5
backtest:
  train_split: 0.9
  initial_capital: 25000
  short_periods: [3, 7]
  long_periods: [14, 28]
`)

	tmpFile, err := os.CreateTemp("", "backlab-config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	if err := tmpFile.Close(); err != nil {
		t.Fatalf("failed to close temp file: %v", err)
	}

	// Clear any environment overrides that might interfere.
	os.Unsetenv("ALPACA_API_KEY")
	os.Unsetenv("ALPACA_API_SECRET")
	os.Unsetenv("APCA_API_KEY_ID")
	os.Unsetenv("APCA_API_SECRET_KEY")
	os.Unsetenv("DATA_DIR")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("FETCH_SOURCE")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	// -- Storage --
	if cfg.Storage.DataDir != "/tmp/backlab/data" {
		t.Errorf("Storage.DataDir = %q, want %q", cfg.Storage.DataDir, "/tmp/backlab/data")
	}
	if cfg.Storage.SQLitePath != "/tmp/backlab/backlab.db" {
		t.Errorf("Storage.SQLitePath = %q, want %q", cfg.Storage.SQLitePath, "/tmp/backlab/backlab.db")
	}

	// -- Server --
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want %q", cfg.Server.Host, "0.0.0.0")
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want %d", cfg.Server.Port, 8080)
	}

	// -- Alpaca --
	if cfg.Alpaca.APIKey != "test-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q", cfg.Alpaca.APIKey, "test-key")
	}
	if cfg.Alpaca.APISecret != "test-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q", cfg.Alpaca.APISecret, "test-secret")
	}

	// -- Logging --
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "debug")
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "text")
	}

	// -- Fetch --
	if cfg.Fetch.Source != "alpaca" {
		t.Errorf("Fetch.Source = %q, want %q", cfg.Fetch.Source, "alpaca")
	}
	if cfg.Fetch.RateLimitPerMin != 100 {
		t.Errorf("Fetch.RateLimitPerMin = %d, want %d", cfg.Fetch.RateLimitPerMin, 100)
	}
	if cfg.Fetch.MaxAttempts != 5 {
		t.Errorf("Fetch.MaxAttempts = %d, want %d", cfg.Fetch.MaxAttempts, 5)
	}

	// -- Backtest --
	if cfg.Backtest.TrainSplit != 0.9 {
		t.Errorf("Backtest.TrainSplit = %v, want %v", cfg.Backtest.TrainSplit, 0.9)
	}
	if cfg.Backtest.InitialCapital != 25000 {
		t.Errorf("Backtest.InitialCapital = %v, want %v", cfg.Backtest.InitialCapital, 25000.0)
	}
	if len(cfg.Backtest.ShortPeriods) != 2 || cfg.Backtest.ShortPeriods[0] != 3 {
		t.Errorf("Backtest.ShortPeriods = %v, want [3 7]", cfg.Backtest.ShortPeriods)
	}
	if len(cfg.Backtest.LongPeriods) != 2 || cfg.Backtest.LongPeriods[1] != 28 {
		t.Errorf("Backtest.LongPeriods = %v, want [14 28]", cfg.Backtest.LongPeriods)
	}
}

func TestLoadDefaults(t *testing.T) {
	tmpFile, err := os.CreateTemp("", "backlab-config-empty-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())
	tmpFile.Close()

	os.Unsetenv("DATA_DIR")
	os.Unsetenv("SQLITE_PATH")
	os.Unsetenv("FETCH_SOURCE")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Backtest.TrainSplit != 0.8 {
		t.Errorf("default TrainSplit = %v, want 0.8", cfg.Backtest.TrainSplit)
	}
	if cfg.Backtest.InitialCapital != 10000 {
		t.Errorf("default InitialCapital = %v, want 10000", cfg.Backtest.InitialCapital)
	}
	wantShort := []int{5, 10, 15, 20}
	for i, v := range cfg.Backtest.ShortPeriods {
		if v != wantShort[i] {
			t.Errorf("default ShortPeriods = %v, want %v", cfg.Backtest.ShortPeriods, wantShort)
			break
		}
	}
	wantLong := []int{20, 30, 50, 100}
	for i, v := range cfg.Backtest.LongPeriods {
		if v != wantLong[i] {
			t.Errorf("default LongPeriods = %v, want %v", cfg.Backtest.LongPeriods, wantLong)
			break
		}
	}
	if cfg.Fetch.Source != "mock" {
		t.Errorf("default Fetch.Source = %q, want %q", cfg.Fetch.Source, "mock")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default Logging = %+v, want info/json", cfg.Logging)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	yamlContent := []byte(`
alpaca:
  api_key: "yaml-key"
  api_secret: "yaml-secret"
storage:
  data_dir: "/original/data"
`)

	tmpFile, err := os.CreateTemp("", "backlab-config-env-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	if _, err := tmpFile.Write(yamlContent); err != nil {
		t.Fatalf("failed to write temp file: %v", err)
	}
	tmpFile.Close()

	// Set environment overrides.
	os.Setenv("ALPACA_API_KEY", "env-key")
	os.Setenv("DATA_DIR", "/env/data")
	os.Setenv("FETCH_SOURCE", "alpaca")
	os.Unsetenv("APCA_API_KEY_ID")
	os.Unsetenv("APCA_API_SECRET_KEY")
	defer os.Unsetenv("ALPACA_API_KEY")
	defer os.Unsetenv("DATA_DIR")
	defer os.Unsetenv("FETCH_SOURCE")

	cfg, err := Load(tmpFile.Name())
	if err != nil {
		t.Fatalf("Load() returned error: %v", err)
	}

	if cfg.Alpaca.APIKey != "env-key" {
		t.Errorf("Alpaca.APIKey = %q, want %q (env override)", cfg.Alpaca.APIKey, "env-key")
	}
	// api_secret should remain from YAML since no env override was set.
	if cfg.Alpaca.APISecret != "yaml-secret" {
		t.Errorf("Alpaca.APISecret = %q, want %q (from YAML)", cfg.Alpaca.APISecret, "yaml-secret")
	}
	if cfg.Storage.DataDir != "/env/data" {
		t.Errorf("Storage.DataDir = %q, want %q (env override)", cfg.Storage.DataDir, "/env/data")
	}
	if cfg.Fetch.Source != "alpaca" {
		t.Errorf("Fetch.Source = %q, want %q (env override)", cfg.Fetch.Source, "alpaca")
	}
}
