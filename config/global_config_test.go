package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.DuckDBConfig.DBPath = filepath.Join(t.TempDir(), "chyrons.duckdb")
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Fatalf("default config invalid: %v", errs)
	}
}

func TestTryLoadFromDisk(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
duckdb:
  dbPath: ` + filepath.Join(dir, "db", "chyrons.duckdb") + `
  table: captions
ingest:
  strict: true
  location: America/New_York
analysis:
  stations: [CNNW, FOXNEWSW]
  minSupport: 5
  interval: 30m
server:
  addr: ":9090"
  readTimeout: 5s
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := TryLoadFromDisk(path)
	if err != nil {
		t.Fatalf("TryLoadFromDisk() error = %v", err)
	}
	if cfg.DuckDBConfig.Table != "captions" || cfg.DuckDBConfig.BatchSize != 1000 {
		t.Errorf("duckdb = %+v", cfg.DuckDBConfig)
	}
	if !cfg.IngestConfig.Strict || cfg.IngestConfig.TimeLocation().String() != "America/New_York" {
		t.Errorf("ingest = %+v", cfg.IngestConfig)
	}
	a := cfg.AnalysisConfig
	if len(a.Stations) != 2 || a.Stations[1] != "FOXNEWSW" || a.MinSupport != 5 || a.Interval != 30*time.Minute {
		t.Errorf("analysis = %+v", a)
	}
	if a.MinFrequency != 0.0001 {
		t.Errorf("MinFrequency default lost: %v", a.MinFrequency)
	}
	if cfg.ServerConfig.Addr != ":9090" || cfg.ServerConfig.ReadTimeout != 5*time.Second {
		t.Errorf("server = %+v", cfg.ServerConfig)
	}
	if errs := cfg.Validate(); len(errs) != 0 {
		t.Errorf("Validate() = %v", errs)
	}
}

func TestLoadOrDefaultMissingFile(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.AnalysisConfig.Interval != time.Hour {
		t.Errorf("Interval = %v", cfg.AnalysisConfig.Interval)
	}
}

func TestValidateErrors(t *testing.T) {
	cfg := NewDefaultGlobalConfig()
	cfg.DuckDBConfig.DBPath = ""
	cfg.DuckDBConfig.Table = ""
	cfg.IngestConfig.Location = "Mars/Olympus"
	cfg.AnalysisConfig.MinFrequency = 2
	cfg.AnalysisConfig.Interval = 0
	cfg.ServerConfig = nil
	if errs := cfg.Validate(); len(errs) != 4 {
		t.Errorf("len(errs) = %d: %v", len(errs), errs)
	}
}
