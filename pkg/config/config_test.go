package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViper_Defaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 20*time.Second, cfg.Backend.Timeout)
	assert.Equal(t, 7, cfg.Alerts.LookAheadDays)
	assert.Equal(t, 5*time.Minute, cfg.Alerts.WatchInterval)
	assert.Equal(t, "local", cfg.Storage.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, 180*24*time.Hour, cfg.Activity.Retention)
}

func TestFromViper_EnvOverrides(t *testing.T) {
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("ALERT_LOOKAHEAD_DAYS", "14")
	t.Setenv("STORAGE_DRIVER", "S3")

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, 14, cfg.Alerts.LookAheadDays)
	assert.Equal(t, "s3", cfg.Storage.Driver)
}
