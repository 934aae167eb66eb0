// Package config loads runtime configuration for the authflow CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file selected with -c or -config.
//  3. Optional dotenv file (.env, or the file named by -e / -env-file) and
//     AUTHFLOW_* environment variables.
//  4. Command-line flags, which override everything else.
//
// Supported flags
//
//	-a string   base URL of the auth API
//	-d string   path of the local credential database
//	-r int      maximum retries of a failed connection
//
// # JSON schema
//
// Durations are strings like "500ms" or integer nanoseconds:
//
//	{
//	  "server_base_url": "http://localhost:8080/api",
//	  "request_timeout": "30s",
//	  "max_retries": 3,
//	  "initial_backoff": "500ms",
//	  "jitter": "250ms",
//	  "requests_per_second": 0,
//	  "store_path": "authflow.db",
//	  "store_key_file": "authflow.key",
//	  "log_format": "text",
//	  "log_level": "info"
//	}
//
// The store passphrase is read from AUTHFLOW_STORE_PASSPHRASE only.
package config
