package config

import (
	"encoding/json"
	"os"

	"github.com/nailstudio/agenda/internal/flagx"
	"github.com/nailstudio/agenda/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Pointer
// fields tell "absent" apart from a zero value, so a file only overrides
// what it mentions.
type JsonConfig struct {
	APIBaseURL     *string         `json:"api_base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	DBPath         *string         `json:"db_path"`
	SessionBackend *string         `json:"session_backend"`
	RedisAddr      *string         `json:"redis_addr"`
	RedisDB        *int            `json:"redis_db"`
	RedisPrefix    *string         `json:"redis_prefix"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
	LogFile        *string         `json:"log_file"`
}

// parseJson overlays cfg with the file named by -c or -config. Without the
// flag nothing happens. Read or decode errors panic.
func parseJson(cfg *Config, args []string) {
	path := flagx.ConfigPath(args)
	if path == "" {
		return
	}

	data, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}
	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	set(&cfg.APIBaseURL, jc.APIBaseURL)
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	set(&cfg.DBPath, jc.DBPath)
	set(&cfg.SessionBackend, jc.SessionBackend)
	set(&cfg.RedisAddr, jc.RedisAddr)
	set(&cfg.RedisDB, jc.RedisDB)
	set(&cfg.RedisPrefix, jc.RedisPrefix)
	set(&cfg.LogLevel, jc.LogLevel)
	set(&cfg.LogFormat, jc.LogFormat)
	set(&cfg.LogFile, jc.LogFile)
}

func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
