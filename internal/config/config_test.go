package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseMap(vars map[string]string) (*Config, error) {
	return parse(env.Options{Environment: vars})
}

func base() map[string]string {
	return map[string]string{
		"JWT_SECRET":      "secret",
		"RECOMMENDER_URL": "http://ai.local/rank",
		"DATABASE_URL":    "postgres://localhost/matchmaker",
		"REDIS_URL":       "redis://localhost:6379/0",
	}
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := parseMap(base())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorePostgres, cfg.StoreDriver)
	assert.Equal(t, BusRedis, cfg.BusDriver)
	assert.Equal(t, 5*time.Second, cfg.RecommenderTimeout)
	assert.Equal(t, 2*time.Second, cfg.PublishTimeout)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.False(t, cfg.MatchTerminalGuard)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.AllowsAnyOrigin())
	assert.Equal(t, slog.LevelInfo, cfg.SlogLevel())
}

func TestParse_Overrides(t *testing.T) {
	vars := base()
	vars["STORE_DRIVER"] = "mongodb"
	vars["MONGO_URI"] = "mongodb://localhost:27017"
	vars["BUS_DRIVER"] = "memory"
	vars["MATCH_TERMINAL_GUARD"] = "true"
	vars["CORS_ALLOWED_ORIGINS"] = "https://a.example,https://b.example"
	vars["RECOMMENDER_TIMEOUT"] = "750ms"
	vars["LOG_LEVEL"] = "DEBUG"

	cfg, err := parseMap(vars)
	require.NoError(t, err)
	assert.Equal(t, StoreMongoDB, cfg.StoreDriver)
	assert.True(t, cfg.MatchTerminalGuard)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.AllowsAnyOrigin())
	assert.Equal(t, 750*time.Millisecond, cfg.RecommenderTimeout)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
}

func TestParse_RequiredKeys(t *testing.T) {
	for _, key := range []string{"JWT_SECRET", "RECOMMENDER_URL"} {
		vars := base()
		delete(vars, key)
		_, err := parseMap(vars)
		assert.ErrorContains(t, err, key)
	}
}

func TestValidate(t *testing.T) {
	cases := map[string]struct {
		vars    map[string]string
		wantErr string
	}{
		"postgres without url": {map[string]string{"DATABASE_URL": ""}, "DATABASE_URL"},
		"mongo without uri":    {map[string]string{"STORE_DRIVER": "mongodb"}, "MONGO_URI"},
		"unknown store":        {map[string]string{"STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		"redis without url":    {map[string]string{"REDIS_URL": ""}, "REDIS_URL"},
		"unknown bus":          {map[string]string{"BUS_DRIVER": "kafka"}, "BUS_DRIVER"},
		"zero timeout":         {map[string]string{"RECOMMENDER_TIMEOUT": "0s"}, "RECOMMENDER_TIMEOUT"},
		"memory ok":            {map[string]string{"STORE_DRIVER": "memory", "BUS_DRIVER": "memory", "DATABASE_URL": "", "REDIS_URL": ""}, ""},
		"dynamodb ok":          {map[string]string{"STORE_DRIVER": "dynamodb"}, ""},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			vars := base()
			for k, v := range tc.vars {
				vars[k] = v
			}
			_, err := parseMap(vars)
			if tc.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tc.wantErr)
		})
	}
}
