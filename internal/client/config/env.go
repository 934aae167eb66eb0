package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/dmitrijs2005/authflow/internal/flagx"
)

// EnvPrefix namespaces every environment variable read by the client.
const EnvPrefix = "AUTHFLOW_"

// defaultEnvFile is loaded when present; -e/-env-file names a file that
// must exist.
const defaultEnvFile = ".env"

// parseEnv loads the dotenv file into the process environment, without
// overriding variables that are already set, and then overlays cfg with
// the AUTHFLOW_* variables. Unset variables leave fields untouched.
func parseEnv(cfg *Config, args []string) error {
	if path := flagx.EnvFile(args); path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load env file: %w", err)
		}
	} else if err := godotenv.Load(defaultEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", defaultEnvFile, err)
	}

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
