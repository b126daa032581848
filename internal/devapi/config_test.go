package devapi

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(nil))
	require.NoError(t, err)

	assert.Equal(t, ":5000", cfg.Addr)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.True(t, cfg.LogPretty)
	assert.Equal(t, "devapi.db", cfg.DBPath)
}

func TestLoadFrom_Env(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"DEVAPI_ADDR":           "127.0.0.1:6000",
		"DEVAPI_TOKEN_TTL":      "15m",
		"DEVAPI_ADMIN_USERNAME": "boss",
		"DEVAPI_LOG_PRETTY":     "false",
		"DEVAPI_DB_PATH":        "/tmp/agenda.db",
	}))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:6000", cfg.Addr)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, "boss", cfg.Admin.Username)
	assert.False(t, cfg.LogPretty)
	assert.Equal(t, "/tmp/agenda.db", cfg.DBPath)
}

func TestLoadFrom_Invalid(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"DEVAPI_BCRYPT_COST": "99"}))
	assert.Error(t, err)

	_, err = LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"DEVAPI_TOKEN_TTL": "soon"}))
	assert.Error(t, err)
}
