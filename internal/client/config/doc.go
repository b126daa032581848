// Package config loads runtime configuration for the agenda terminal client.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults and DefaultAPIBaseURL).
//  2. Optional JSON file selected via -c or -config.
//  3. Environment variables prefixed with AGENDA_.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
// request_timeout accepts a duration string like "5s" or integer
// nanoseconds:
//
//	{
//	  "api_base_url": "https://studio.example.com/api",
//	  "request_timeout": "5s",
//	  "db_path": "/home/ana/.config/agenda/agenda.db",
//	  "session_backend": "sqlite",
//	  "log_level": "debug",
//	  "log_format": "json"
//	}
package config
