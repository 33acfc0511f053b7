package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/t0bias84/hagelskott/cache"
)

func mapLookup(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	if cfg.APIURL != "http://localhost:8001" || cfg.Language != "sv" || cfg.Cache.Backend != BackendMemory {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestLoad_File(t *testing.T) {
	path := writeFile(t, "config.toml", `
api_url = "https://forum.example.se"
language = "en"
timeout = "5s"
hot_limit = 25

[cache]
backend = "redis"
redis_url = "${TEST_REDIS}"
categories_ttl = "10m"

[telemetry]
tracing = "stdout"
sample_pct = 0.5
`)
	cfg, err := Load(Options{Path: path, Lookup: mapLookup(map[string]string{"TEST_REDIS": "redis://cache:6379/0"})})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIURL != "https://forum.example.se" || cfg.Language != "en" || cfg.HotLimit != 25 {
		t.Errorf("top-level = %+v", cfg)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v", cfg.Timeout)
	}
	if cfg.Cache.RedisURL != "redis://cache:6379/0" {
		t.Errorf("RedisURL = %q", cfg.Cache.RedisURL)
	}
	// Unset keys keep their defaults.
	if cfg.Cache.HotThreadsTTL != cache.DefaultHotThreadsTTL || cfg.Mode != "production" {
		t.Errorf("defaults lost: %+v", cfg)
	}

	policy := cfg.CachePolicy()
	if policy.TTL(cache.KeyCategories) != 10*time.Minute || policy.TTL(cache.KeyHotThreads) != cache.DefaultHotThreadsTTL {
		t.Errorf("policy = %+v", policy)
	}

	obs := cfg.ObserveConfig("v1")
	if !obs.Tracing.Enabled || obs.Metrics.Enabled || obs.Tracing.SamplePct != 0.5 {
		t.Errorf("ObserveConfig = %+v", obs)
	}
	if err := obs.Validate(); err != nil {
		t.Errorf("observe config invalid: %v", err)
	}
}

func TestLoad_MissingEnvVar(t *testing.T) {
	path := writeFile(t, "config.toml", `api_url = "${NOPE_URL}"`)
	_, err := Load(Options{Path: path, Lookup: mapLookup(nil)})
	if err == nil || !strings.Contains(err.Error(), "NOPE_URL") {
		t.Fatalf("err = %v, want missing NOPE_URL", err)
	}
}

func TestLoad_UnknownKey(t *testing.T) {
	path := writeFile(t, "config.toml", "api_url = \"http://x\"\nbase = \"oops\"\n")
	_, err := Load(Options{Path: path, Lookup: mapLookup(nil)})
	if !errors.Is(err, ErrUnknownKeys) {
		t.Fatalf("err = %v, want ErrUnknownKeys", err)
	}
}

func TestLoad_ExplicitPathMustExist(t *testing.T) {
	_, err := Load(Options{Path: filepath.Join(t.TempDir(), "missing.toml"), Lookup: mapLookup(nil)})
	if err == nil {
		t.Fatal("expected error for missing explicit file")
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "config.toml", `api_url = "http://from-file"`)
	cfg, err := Load(Options{Path: path, Lookup: mapLookup(map[string]string{
		EnvAPIURL:       "https://from-env",
		EnvToken:        "tok",
		EnvLanguage:     "en",
		EnvTimeout:      "12",
		EnvCacheBackend: "REDIS",
		EnvRedisURL:     "redis://localhost:6379",
		EnvLogLevel:     "debug",
		EnvMode:         "development",
	})})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := Config{
		APIURL: "https://from-env", Token: "tok", Language: "en",
		Timeout: 12 * time.Second, Mode: "development",
	}
	if cfg.APIURL != want.APIURL || cfg.Token != want.Token || cfg.Language != want.Language ||
		cfg.Timeout != want.Timeout || cfg.Mode != want.Mode {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Cache.Backend != BackendRedis || cfg.Cache.RedisURL != "redis://localhost:6379" || cfg.Log.Level != "debug" {
		t.Errorf("cache/log = %+v %+v", cfg.Cache, cfg.Log)
	}
}

func TestLoad_EmptyEnvIgnored(t *testing.T) {
	cfg, err := Load(Options{Path: writeFile(t, "c.toml", ""), Lookup: mapLookup(map[string]string{EnvAPIURL: "  "})})
	if err != nil {
		t.Fatal(err)
	}
	if cfg.APIURL != Default().APIURL {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestLoadDotEnv(t *testing.T) {
	const key = "HAGEL_CONFIG_TEST_DOTENV"
	t.Setenv(key, "")
	os.Unsetenv(key)

	path := writeFile(t, ".env", key+"=from-dotenv\n")
	if err := LoadDotEnv(path, filepath.Join(t.TempDir(), "absent.env")); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if got := os.Getenv(key); got != "from-dotenv" {
		t.Errorf("%s = %q", key, got)
	}

	// Existing variables win.
	t.Setenv(key, "from-process")
	_ = LoadDotEnv(path)
	if got := os.Getenv(key); got != "from-process" {
		t.Errorf("%s = %q, want process value", key, got)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty url", func(c *Config) { c.APIURL = "" }},
		{"bad scheme", func(c *Config) { c.APIURL = "ftp://x" }},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }},
		{"bad mode", func(c *Config) { c.Mode = "staging" }},
		{"bad level", func(c *Config) { c.Log.Level = "loud" }},
		{"bad backend", func(c *Config) { c.Cache.Backend = "memcached" }},
		{"redis without url", func(c *Config) { c.Cache.Backend = BackendRedis }},
		{"negative ttl", func(c *Config) { c.Cache.HotThreadsTTL = -time.Second }},
		{"bad exporter", func(c *Config) { c.Telemetry.Tracing = "jaeger" }},
		{"bad sample", func(c *Config) { c.Telemetry.SamplePct = 2 }},
		{"negative attempts", func(c *Config) { c.Retry.MaxAttempts = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalid) {
				t.Errorf("Validate() = %v, want ErrInvalid", err)
			}
		})
	}
}
