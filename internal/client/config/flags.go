package config

import (
	"flag"
	"fmt"
	"io"

	"github.com/dmitrijs2005/authflow/internal/flagx"
)

// parseFlags overlays cfg with command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the auth API
//	-d string   path of the local credential database
//	-r int      maximum retries of a failed connection
//
// args are filtered with flagx.FilterArgs so flags owned by other loaders
// (-c, -e) do not cause parse errors.
func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-a", "-d", "-r", "--a", "--d", "--r"})

	fs := flag.NewFlagSet("authflow", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.ServerBaseURL, "a", cfg.ServerBaseURL, "base URL of the auth API")
	fs.StringVar(&cfg.StorePath, "d", cfg.StorePath, "path of the local credential database")
	fs.IntVar(&cfg.MaxRetries, "r", cfg.MaxRetries, "maximum retries of a failed connection")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
