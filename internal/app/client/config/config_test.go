package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	dir := t.TempDir()
	t.Setenv("CONFIG_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "localhost:8080", cfg.ServerAddress)
	assert.Equal(t, filepath.Join(dir, "token"), cfg.TokenPath)
	assert.Equal(t, filepath.Join(dir, "timeline.db"), cfg.DataPath)
	assert.Equal(t, filepath.Join(dir, "client.log"), cfg.LogFile)
	assert.Equal(t, 5*time.Minute, cfg.SyncInterval)
	assert.Equal(t, 200, cfg.BatchSize)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestLoad_Env(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("BATCH_SIZE", "10")
	t.Setenv("SYNC_INTERVAL", "1m")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 10, cfg.BatchSize)
	assert.Equal(t, time.Minute, cfg.SyncInterval)
}

func TestLoad_InvalidBatch(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	t.Setenv("CONFIG_DIR", t.TempDir())
	t.Setenv("BATCH_SIZE", "0")

	_, err := Load()
	assert.Error(t, err)
}

func TestBaseURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "plain", cfg: Config{ServerAddress: "localhost:8080"}, want: "http://localhost:8080"},
		{name: "tls", cfg: Config{ServerAddress: "example.org", EnableTLS: true}, want: "https://example.org"},
		{name: "with scheme", cfg: Config{ServerAddress: "https://example.org/"}, want: "https://example.org"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.BaseURL())
		})
	}
}
