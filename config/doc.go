// Package config loads client settings for the hagel CLI.
//
// Settings come from, in increasing priority: built-in defaults, a TOML
// file, a .env file, and the process environment. Values in the TOML file
// may reference environment variables as ${VAR}; a reference to an unset
// variable is an error, and $$ produces a literal dollar sign.
//
// Example file:
//
//	api_url = "https://forum.example.se"
//	language = "sv"
//	timeout = "30s"
//
//	[cache]
//	backend = "redis"
//	redis_url = "${REDIS_URL}"
//	categories_ttl = "5m"
//
//	[telemetry]
//	tracing = "otlp"
//	sample_pct = 0.1
package config
