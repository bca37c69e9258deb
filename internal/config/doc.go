// Package config loads runtime configuration for the exporter.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional YAML file (see parseYaml) selected via flags: -c or -config.
//  3. Command-line flags (see parseFlags), which override earlier values.
//
// Supported flags
//
//	-s string        start date (YYYY-MM-DD)
//	-e string        end date (YYYY-MM-DD)
//	-f string        output format, csv or json
//	-add-account     prompt for a new account and append it to the store
//	-history int     print the most recent N export runs and exit
//
// # YAML schema
//
// Durations are given in seconds; keys absent from the file keep their
// defaults:
//
//	base_url: https://app.mybasis.com
//	timezone: America/New_York
//	accounts_file: users.csv
//	study_ids_file: user_ids.csv
//	export_dir: ./exports
//	default_format: csv
//	request_timeout_seconds: 30
//	catalog_path: basis-export.db
//	s3_bucket: basis-archive
//	sentry_dsn: ""
//
// When none of the run flags is given, Interactive is set and the exporter
// prompts for the dates and format instead.
//
// Note: This package does not read environment variables; use the YAML file
// or flags to configure values.
package config
