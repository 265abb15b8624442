package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.LoadDefaults()

	assert.NotEmpty(t, cfg.DatabaseDSN)
	assert.Equal(t, 20, cfg.MaxObjectsPerAccessPointGroup)
	assert.Equal(t, 30, cfg.MaxGroupsPerStack)
	assert.Equal(t, 7*24*time.Hour, cfg.PresignExpiry)
}

func TestParseJson_OverridesOnlyProvidedKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "conf.json")
	body := `{
		"database_dsn": "postgres://test/db",
		"presign_expiry": "30m",
		"max_objects_per_access_point_group": 10
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"prog", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)

	assert.Equal(t, "postgres://test/db", cfg.DatabaseDSN)
	assert.Equal(t, 30*time.Minute, cfg.PresignExpiry)
	assert.Equal(t, 10, cfg.MaxObjectsPerAccessPointGroup)
	// untouched keys keep their defaults
	assert.Equal(t, 30, cfg.MaxGroupsPerStack)
	assert.Equal(t, "seqshare-templates", cfg.TemplateBucket)
}

func TestParseFlags_Overrides(t *testing.T) {
	oldArgs := os.Args
	defer func() { os.Args = oldArgs }()
	os.Args = []string{"prog", "-d", "postgres://flag/db", "-b", "flag-bucket", "-x", "90"}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFlags(cfg)

	assert.Equal(t, "postgres://flag/db", cfg.DatabaseDSN)
	assert.Equal(t, "flag-bucket", cfg.TemplateBucket)
	assert.Equal(t, 90*time.Minute, cfg.PresignExpiry)
}
