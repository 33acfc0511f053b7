package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"

	"github.com/t0bias84/hagelskott/apiclient"
	"github.com/t0bias84/hagelskott/auth"
	"github.com/t0bias84/hagelskott/cache"
	"github.com/t0bias84/hagelskott/config"
	"github.com/t0bias84/hagelskott/forum"
	"github.com/t0bias84/hagelskott/observe"
)

// app holds the state shared by all commands. Network-facing parts are
// created on first use so that login and logout work offline.
type app struct {
	opts   globalOptions
	stdout io.Writer
	stderr io.Writer

	cfg       config.Config
	logger    observe.Logger
	out       *printer
	tokens    *auth.FileStore
	telemetry *observe.Telemetry
	metrics   *observe.Instruments

	client  *apiclient.Client
	loader  *cache.Loader
	service *forum.Service
	redis   *redis.Client
}

func (a *app) init(ctx context.Context) error {
	cfg, err := config.Load(config.Options{Path: a.opts.configPath, DotEnv: []string{".env"}})
	if err != nil {
		return err
	}
	a.cfg = cfg

	level := cfg.Log.Level
	if a.opts.verbose {
		level = "debug"
	}
	a.logger = observe.NewLoggerWithWriter(level, a.stderr)

	out, err := newPrinter(a.stdout, a.opts.output)
	if err != nil {
		return err
	}
	a.out = out

	path := a.opts.tokenFile
	if path == "" {
		if path, err = auth.DefaultFilePath(); err != nil {
			return err
		}
	}
	a.tokens, err = auth.NewFileStore(path)
	return err
}

// Client returns the API client, creating it on first use.
func (a *app) Client(ctx context.Context) (*apiclient.Client, error) {
	if a.client != nil {
		return a.client, nil
	}

	mw, err := a.middleware(ctx)
	if err != nil {
		return nil, err
	}

	var breaker *apiclient.Breaker
	if a.cfg.Breaker.MaxFailures > 0 {
		breaker = apiclient.NewBreaker(apiclient.BreakerConfig{
			MaxFailures:  a.cfg.Breaker.MaxFailures,
			ResetTimeout: a.cfg.Breaker.ResetTimeout,
			OnStateChange: func(from, to apiclient.BreakerState) {
				a.logger.Debug(context.Background(), "circuit state changed",
					observe.F("from", from.String()), observe.F("to", to.String()))
			},
		})
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL: a.cfg.APIURL,
		Tokens:  auth.Chain{auth.StaticToken(a.cfg.Token), a.tokens},
		Timeout: a.cfg.Timeout,
		Retry: apiclient.RetryConfig{
			MaxAttempts:  a.cfg.Retry.MaxAttempts,
			InitialDelay: a.cfg.Retry.InitialDelay,
			Jitter:       true,
		},
		Breaker:    breaker,
		Middleware: mw,
		UserAgent:  "hagel/" + version,
		Logger:     a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.client = client
	return client, nil
}

// Service returns the cache-aware forum service, creating it on first use.
func (a *app) Service(ctx context.Context) (*forum.Service, error) {
	if a.service != nil {
		return a.service, nil
	}
	client, err := a.Client(ctx)
	if err != nil {
		return nil, err
	}
	loader, err := a.Loader(ctx)
	if err != nil {
		return nil, err
	}

	svc, err := forum.NewService(forum.Config{
		Client:   client,
		Loader:   loader,
		Language: a.cfg.Language,
		HotLimit: a.cfg.HotLimit,
		Logger:   a.logger,
		Metrics:  a.cacheMetrics(),
	})
	if err != nil {
		return nil, err
	}
	a.service = svc
	return svc, nil
}

// Loader returns the cache loader over the configured backend.
func (a *app) Loader(ctx context.Context) (*cache.Loader, error) {
	if a.loader != nil {
		return a.loader, nil
	}

	var store cache.Store = cache.NewMemoryStore()
	if a.cfg.Cache.Backend == config.BackendRedis {
		rs, client, err := cache.NewRedisStoreFromURL(ctx, a.cfg.Cache.RedisURL, cache.RedisOptions{Prefix: a.cfg.Cache.RedisPrefix})
		if err != nil {
			return nil, err
		}
		a.redis = client
		store = rs
	}

	loader, err := cache.NewLoader(cache.LoaderConfig{
		Store:   store,
		Policy:  a.cfg.CachePolicy(),
		Logger:  a.logger,
		Metrics: a.cacheMetrics(),
	})
	if err != nil {
		return nil, err
	}
	a.loader = loader
	return loader, nil
}

// middleware instruments the transport. Without telemetry it still logs
// every round trip at debug level.
func (a *app) middleware(ctx context.Context) (*observe.Middleware, error) {
	obsCfg := a.cfg.ObserveConfig(version)
	if !obsCfg.Enabled() {
		return observe.NewMiddleware(nil, nil, a.logger), nil
	}

	obsCfg.Logging.Enabled = false
	tel, err := observe.NewTelemetry(ctx, obsCfg)
	if err != nil {
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	mw, inst, err := tel.Middleware(a.logger)
	if err != nil {
		_ = tel.Shutdown(ctx)
		return nil, fmt.Errorf("telemetry: %w", err)
	}
	a.telemetry = tel
	a.metrics = inst
	return mw, nil
}

func (a *app) cacheMetrics() observe.CacheMetrics {
	if a.metrics == nil {
		return nil
	}
	return a.metrics
}

// close flushes telemetry and releases the Redis connection.
func (a *app) close(ctx context.Context) error {
	var errs []error
	if a.telemetry != nil {
		errs = append(errs, a.telemetry.Shutdown(ctx))
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}
