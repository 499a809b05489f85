package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "stocklog", cfg.MongoDB.DBName)
	assert.Equal(t, "Africa/Nairobi", cfg.Reporting.Timezone)
	assert.Equal(t, "0 8 * * 1", cfg.Reporting.CronSchedule)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Africa/Nairobi", loc.String())
}

func TestLoadRejectsInvalidTimezone(t *testing.T) {
	t.Setenv("REPORT_TIMEZONE", "Not/AZone")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "REPORT_TIMEZONE")
}

func TestLoadRequiresCredentialsWithArchive(t *testing.T) {
	t.Setenv("GOOGLE_SHEET_ARCHIVE_ID", "sheet-123")
	t.Setenv("GOOGLE_SHEETS_CREDENTIALS_PATH", "")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GOOGLE_SHEETS_CREDENTIALS_PATH")
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("APP_PORT", "9090")
	t.Setenv("MONGODB_DB_NAME", "stocklog_test")
	t.Setenv("REPORT_TIMEZONE", "UTC")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "stocklog_test", cfg.MongoDB.DBName)
	assert.Equal(t, "UTC", cfg.Reporting.Timezone)
}
