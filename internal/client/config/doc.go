// Package config loads runtime configuration for the pdflearn CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional YAML or JSON file selected with --config / -c.
//  3. Environment variables prefixed with PDFLEARN_. When PDFLEARN_ENV=dev a
//     .env file in the working directory is loaded first.
//  4. Command-line flags that were set explicitly.
//
// # File schema
//
//	api_url: http://localhost:8000/api
//	data_dir: ~/.pdflearn
//	request_timeout: 30s
//	online_check_interval: 3s
//	log_level: info
//	environment: prod
//	sentry_dsn: ""          # errors are reported to Sentry when set in prod
//	trace_endpoint: ""      # OTLP/HTTP collector, e.g. http://localhost:4318
package config
