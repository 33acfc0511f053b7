package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/t0bias84/hagelskott/apiclient"
	"github.com/t0bias84/hagelskott/cache"
	"github.com/t0bias84/hagelskott/forum"
	"github.com/t0bias84/hagelskott/httperr"
	"github.com/t0bias84/hagelskott/observe"
)

// Environment variables that override file settings.
const (
	EnvAPIURL       = "HAGEL_API_URL"
	EnvToken        = "HAGEL_TOKEN"
	EnvLanguage     = "HAGEL_LANGUAGE"
	EnvTimeout      = "HAGEL_TIMEOUT"
	EnvCacheBackend = "HAGEL_CACHE_BACKEND"
	EnvRedisURL     = "REDIS_URL"
	EnvLogLevel     = "HAGEL_LOG_LEVEL"
	EnvMode         = "HAGEL_MODE"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Valid enum values.
var (
	ValidBackends = []string{BackendMemory, BackendRedis}
	ValidModes    = []string{httperr.ModeProduction, httperr.ModeDevelopment}
)

// Config holds every client setting.
type Config struct {
	APIURL   string        `toml:"api_url"`
	Token    string        `toml:"token"`
	Language string        `toml:"language"`
	Timeout  time.Duration `toml:"timeout"`
	HotLimit int           `toml:"hot_limit"`
	Mode     string        `toml:"mode"`

	Log       LogConfig       `toml:"log"`
	Cache     CacheConfig     `toml:"cache"`
	Retry     RetryConfig     `toml:"retry"`
	Breaker   BreakerConfig   `toml:"breaker"`
	Telemetry TelemetryConfig `toml:"telemetry"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"` // debug|info|warn|error
}

// CacheConfig selects the cache backend and TTLs.
type CacheConfig struct {
	Backend       string        `toml:"backend"` // memory|redis
	RedisURL      string        `toml:"redis_url"`
	RedisPrefix   string        `toml:"redis_prefix"`
	CategoriesTTL time.Duration `toml:"categories_ttl"`
	HotThreadsTTL time.Duration `toml:"hot_threads_ttl"`
}

// RetryConfig configures retries of network failures.
type RetryConfig struct {
	MaxAttempts  int           `toml:"max_attempts"`
	InitialDelay time.Duration `toml:"initial_delay"`
}

// BreakerConfig configures the circuit breaker. MaxFailures 0 disables it.
type BreakerConfig struct {
	MaxFailures  int           `toml:"max_failures"`
	ResetTimeout time.Duration `toml:"reset_timeout"`
}

// TelemetryConfig selects OpenTelemetry exporters. Empty or "none" disables
// the signal.
type TelemetryConfig struct {
	ServiceName string  `toml:"service_name"`
	Tracing     string  `toml:"tracing"`
	Metrics     string  `toml:"metrics"`
	SamplePct   float64 `toml:"sample_pct"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		APIURL:   apiclient.DefaultBaseURL,
		Language: forum.DefaultLanguage,
		Timeout:  apiclient.DefaultTimeout,
		HotLimit: forum.DefaultHotLimit,
		Mode:     httperr.ModeProduction,
		Log:      LogConfig{Level: "warn"},
		Cache: CacheConfig{
			Backend:       BackendMemory,
			RedisPrefix:   cache.DefaultRedisPrefix,
			CategoriesTTL: cache.DefaultCategoriesTTL,
			HotThreadsTTL: cache.DefaultHotThreadsTTL,
		},
		Retry:   RetryConfig{MaxAttempts: 1, InitialDelay: 200 * time.Millisecond},
		Breaker: BreakerConfig{MaxFailures: 5, ResetTimeout: 30 * time.Second},
		Telemetry: TelemetryConfig{
			ServiceName: "hagel",
			Tracing:     "none",
			Metrics:     "none",
			SamplePct:   1.0,
		},
	}
}

// DefaultPath returns <user config dir>/hagel/config.toml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: locate config dir: %w", err)
	}
	return filepath.Join(dir, "hagel", "config.toml"), nil
}

// Options controls Load.
type Options struct {
	// Path is the TOML file. Empty uses DefaultPath, where a missing file
	// is not an error. An explicit path must exist.
	Path string

	// DotEnv lists .env files loaded into the process environment before
	// overrides are applied. Missing files are skipped. Variables already
	// set in the environment win.
	DotEnv []string

	// Lookup reads environment variables for ${VAR} expansion and
	// overrides. Default: os.LookupEnv.
	Lookup func(string) (string, bool)
}

// Load builds the configuration: defaults, then the file, then .env files
// and the environment. The result is validated.
func Load(opts Options) (Config, error) {
	if err := LoadDotEnv(opts.DotEnv...); err != nil {
		return Default(), err
	}
	lookup := opts.Lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}

	cfg := Default()
	path, explicit := opts.Path, opts.Path != ""
	if !explicit {
		var err error
		if path, err = DefaultPath(); err != nil {
			path = ""
		}
	}
	if path != "" {
		if err := cfg.decodeFile(path, explicit, lookup); err != nil {
			return Default(), err
		}
	}

	if err := cfg.ApplyEnv(lookup); err != nil {
		return Default(), err
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// LoadDotEnv loads the given .env files into the process environment
// without overriding variables that are already set.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if _, err := os.Stat(p); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("config: load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) decodeFile(path string, mustExist bool, lookup func(string) (string, bool)) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !mustExist {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	expanded, err := ExpandEnvStrict(string(data), lookup)
	if err != nil {
		return fmt.Errorf("%w (in %s)", err, path)
	}

	md, err := toml.Decode(expanded, c)
	if err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w in %s: %s", ErrUnknownKeys, path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides settings from environment variables that are set
// and non-empty.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvAPIURL); ok {
		c.APIURL = v
	}
	if v, ok := get(EnvToken); ok {
		c.Token = v
	}
	if v, ok := get(EnvLanguage); ok {
		c.Language = v
	}
	if v, ok := get(EnvTimeout); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalid, EnvTimeout, err)
		}
		c.Timeout = d
	}
	if v, ok := get(EnvCacheBackend); ok {
		c.Cache.Backend = strings.ToLower(v)
	}
	if v, ok := get(EnvRedisURL); ok {
		c.Cache.RedisURL = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.Log.Level = strings.ToLower(v)
	}
	if v, ok := get(EnvMode); ok {
		c.Mode = strings.ToLower(v)
	}
	return nil
}

// parseDuration accepts Go durations and bare seconds.
func parseDuration(s string) (time.Duration, error) {
	if n, err := strconv.Atoi(s); err == nil {
		return time.Duration(n) * time.Second, nil
	}
	return time.ParseDuration(s)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.APIURL == "" {
		return fmt.Errorf("%w: api_url is empty", ErrInvalid)
	}
	if !strings.HasPrefix(c.APIURL, "http://") && !strings.HasPrefix(c.APIURL, "https://") {
		return fmt.Errorf("%w: api_url %q must start with http:// or https://", ErrInvalid, c.APIURL)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("%w: timeout must be positive", ErrInvalid)
	}
	if c.HotLimit < 0 {
		return fmt.Errorf("%w: hot_limit must not be negative", ErrInvalid)
	}
	if err := validateEnum(c.Mode, "mode", ValidModes); err != nil {
		return err
	}
	if err := validateEnum(c.Log.Level, "log.level", observe.ValidLogLevels); err != nil {
		return err
	}
	if err := validateEnum(c.Cache.Backend, "cache.backend", ValidBackends); err != nil {
		return err
	}
	if c.Cache.Backend == BackendRedis && c.Cache.RedisURL == "" {
		return fmt.Errorf("%w: cache.redis_url is required for the redis backend", ErrInvalid)
	}
	if c.Cache.CategoriesTTL < 0 || c.Cache.HotThreadsTTL < 0 {
		return fmt.Errorf("%w: cache TTLs must not be negative", ErrInvalid)
	}
	if c.Retry.MaxAttempts < 0 || c.Breaker.MaxFailures < 0 {
		return fmt.Errorf("%w: retry.max_attempts and breaker.max_failures must not be negative", ErrInvalid)
	}
	if err := validateEnum(c.Telemetry.Tracing, "telemetry.tracing", observe.ValidTracingExporters); err != nil {
		return err
	}
	if err := validateEnum(c.Telemetry.Metrics, "telemetry.metrics", observe.ValidMetricsExporters); err != nil {
		return err
	}
	if c.Telemetry.SamplePct < 0 || c.Telemetry.SamplePct > 1 {
		return fmt.Errorf("%w: telemetry.sample_pct must be within [0, 1]", ErrInvalid)
	}
	return nil
}

// CachePolicy returns the TTL policy for the configured durations.
func (c *Config) CachePolicy() cache.Policy {
	return cache.DefaultPolicy().
		WithTTL(cache.KeyCategories, c.Cache.CategoriesTTL).
		WithTTL(cache.KeyHotThreads, c.Cache.HotThreadsTTL)
}

// ObserveConfig maps the telemetry settings onto observe.Config.
func (c *Config) ObserveConfig(version string) observe.Config {
	enabled := func(exporter string) bool { return exporter != "" && exporter != "none" }
	return observe.Config{
		ServiceName: c.Telemetry.ServiceName,
		Version:     version,
		Tracing: observe.TracingConfig{
			Enabled:   enabled(c.Telemetry.Tracing),
			Exporter:  c.Telemetry.Tracing,
			SamplePct: c.Telemetry.SamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  enabled(c.Telemetry.Metrics),
			Exporter: c.Telemetry.Metrics,
		},
		Logging: observe.LoggingConfig{Enabled: true, Level: c.Log.Level},
	}
}

func validateEnum(value, field string, allowed []string) error {
	if value == "" || slices.Contains(allowed, value) {
		return nil
	}
	quoted := make([]string, 0, len(allowed))
	for _, a := range allowed {
		if a != "" {
			quoted = append(quoted, strconv.Quote(a))
		}
	}
	return fmt.Errorf("%w: %s %q must be one of %s", ErrInvalid, field, value, strings.Join(quoted, ", "))
}
