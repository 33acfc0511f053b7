// Package health reports whether the forum client can do its job.
//
// UpstreamChecker probes the API through the same client the forum service
// uses; CacheChecker inspects the age of every cache entry. An Aggregator
// runs checkers concurrently and folds their results into a Report whose
// status is the worst of its checks.
//
//	agg := health.NewAggregator(health.AggregatorConfig{Timeout: 5 * time.Second})
//	agg.Register(health.NewUpstreamChecker(client, health.UpstreamConfig{}))
//	agg.Register(health.NewCacheChecker(svc.Loader(), health.CacheConfig{}))
//	report := agg.Run(ctx)
package health
