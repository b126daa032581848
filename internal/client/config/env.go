package config

import (
	"context"

	"github.com/sethvargo/go-envconfig"
)

const EnvPrefix = "AGENDA_"

// parseEnv overlays cfg with AGENDA_* variables (AGENDA_API_BASE_URL,
// AGENDA_REQUEST_TIMEOUT, ...). Unset variables leave fields untouched;
// malformed values panic.
func parseEnv(cfg *Config, lookup func(string) (string, bool)) {
	l := envconfig.PrefixLookuper(EnvPrefix, envconfig.LookuperFunc(lookup))
	if err := envconfig.ProcessWith(context.Background(), &envconfig.Config{
		Target:   cfg,
		Lookuper: l,
	}); err != nil {
		panic(err)
	}
}
