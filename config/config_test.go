package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Recommend.TopK != 3 || cfg.Recommend.Neighbors != 3 {
		t.Errorf("defaults = %+v", cfg.Recommend)
	}
	if cfg.Recommend.RatingMin != 1 || cfg.Recommend.RatingMax != 5 {
		t.Errorf("rating range = [%v, %v]", cfg.Recommend.RatingMin, cfg.Recommend.RatingMax)
	}
	if cfg.Storage.Backend != BackendFile || cfg.Storage.RetryBackoff != 100*time.Millisecond {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Storage.BreakerFailures != 5 || cfg.Storage.BreakerTimeout != 30*time.Second {
		t.Errorf("breaker = %d / %v", cfg.Storage.BreakerFailures, cfg.Storage.BreakerTimeout)
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "shoprec.yaml")
	yaml := `
data:
  catalog: /data/products.csv
recommend:
  neighbors: 5
  rating_max: 10
storage:
  backend: redis
  redis:
    addr: redis:6379
  retry_backoff: 250ms
log:
  level: debug
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("SHOPREC_RECOMMEND__TOP_K", "7")
	t.Setenv("SHOPREC_STORAGE__REDIS__DB", "2")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Data.Catalog != "/data/products.csv" || cfg.Data.Ratings != "ratings.csv" {
		t.Errorf("data = %+v", cfg.Data)
	}
	if cfg.Recommend.Neighbors != 5 || cfg.Recommend.TopK != 7 || cfg.Recommend.RatingMax != 10 {
		t.Errorf("recommend = %+v", cfg.Recommend)
	}
	if cfg.Storage.Redis.Addr != "redis:6379" || cfg.Storage.Redis.DB != 2 {
		t.Errorf("redis = %+v", cfg.Storage.Redis)
	}
	if cfg.Storage.RetryBackoff != 250*time.Millisecond {
		t.Errorf("retry_backoff = %v", cfg.Storage.RetryBackoff)
	}
	if cfg.Log.Level != "debug" {
		t.Errorf("log level = %q", cfg.Log.Level)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"zero top_k", func(c *Config) { c.Recommend.TopK = 0 }, "TopK"},
		{"inverted range", func(c *Config) { c.Recommend.RatingMax = 0 }, "RatingMax"},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "s3" }, "Backend"},
		{"missing catalog", func(c *Config) { c.Data.Catalog = "" }, "Catalog"},
		{"redis without addr", func(c *Config) {
			c.Storage.Backend = BackendRedis
			c.Storage.Redis.Addr = ""
		}, "redis"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() error = %v, want mention of %s", err, tt.field)
			}
		})
	}
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}
