package config

import (
	"flag"
	"io"

	"github.com/nailstudio/agenda/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string     API base URL
//	-t duration   per-request timeout, e.g. 5s
//	-d string     SQLite database path
//	-b string     session backend: sqlite or redis
//	-l string     log level
//	-log-file     log file path ("-" for stderr)
//
// The args are filtered with flagx.FilterArgs first, so flags owned by other
// loaders (-c, -config) do not break parsing.
func parseFlags(cfg *Config, args []string) {
	args = flagx.FilterArgs(args, []string{"-a", "-t", "-d", "-b", "-l", "-log-file"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&cfg.APIBaseURL, "a", cfg.APIBaseURL, "API base URL")
	fs.DurationVar(&cfg.RequestTimeout, "t", cfg.RequestTimeout, "request timeout")
	fs.StringVar(&cfg.DBPath, "d", cfg.DBPath, "SQLite database path")
	fs.StringVar(&cfg.SessionBackend, "b", cfg.SessionBackend, "session backend (sqlite|redis)")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug|info|warn|error)")
	fs.StringVar(&cfg.LogFile, "log-file", cfg.LogFile, "log file path, - for stderr")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
