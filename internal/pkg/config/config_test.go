package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLayersFileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := `
telegram:
  token: from-file
  staff_ids: [1, 2]
db:
  driver: postgres
  dsn: postgres://bot@localhost/workshop
anti_spam:
  threshold: 3
  blacklist: [спам]
catalog:
  categories:
    - key: jacket
      title: Пиджак
      prices: ["Укоротить рукава — от 1500 ₽"]
`
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o600))
	t.Setenv("TELEGRAM_TOKEN", "from-env")
	t.Setenv("TELEGRAM_STAFF_IDS", "10,20,30")
	t.Setenv("FEEDBACK_INTERVAL", "30m")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, []int64{10, 20, 30}, cfg.Telegram.StaffIDs)
	assert.Equal(t, "postgres", cfg.DB.Driver)
	assert.Equal(t, 3, cfg.AntiSpam.Threshold)
	assert.Equal(t, time.Minute, cfg.AntiSpam.Window, "default kept")
	assert.Equal(t, []string{"спам"}, cfg.AntiSpam.Blacklist)
	assert.Equal(t, 30*time.Minute, cfg.Feedback.Interval)
	assert.Equal(t, 72*time.Hour, cfg.Feedback.CompletedAfter)
	require.Len(t, cfg.Catalog.Categories, 1)
	assert.Equal(t, "Пиджак", cfg.Catalog.Categories[0].Title)
}

func TestLoadWithoutFile(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "token")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DB.Driver)
	assert.Len(t, cfg.Catalog.Categories, 8)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.DB.Driver = "mysql"
	cfg.AntiSpam.Threshold = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram token is required")
	assert.Contains(t, err.Error(), `unknown db driver "mysql"`)
	assert.Contains(t, err.Error(), "threshold must be positive")

	cfg = Default()
	cfg.Telegram.Token = "token"
	assert.NoError(t, cfg.Validate())
}

func TestWorkshopLocation(t *testing.T) {
	cfg := Default()
	loc := cfg.Workshop.Location()
	_, offset := time.Date(2025, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, 3*60*60, offset)
}
