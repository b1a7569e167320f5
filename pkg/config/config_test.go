package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, "/api/v1", cfg.APIPrefix)
	assert.Equal(t, 30, cfg.Attendance.LookbackDays)
	assert.Equal(t, "web", cfg.Attendance.MarkedBy)
	assert.Equal(t, time.UTC, cfg.Attendance.Location())
	assert.Equal(t, 1, cfg.Jobs.InvalidationWorkers)
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ATTENDANCE_LOOKBACK_DAYS", "900")
	t.Setenv("TIMEZONE", "America/Argentina/Buenos_Aires")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	t.Setenv("JWT_EXPIRATION", "not-a-duration")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 365, cfg.Attendance.LookbackDays)
	assert.Equal(t, "America/Argentina/Buenos_Aires", cfg.Attendance.Location().String())
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
	assert.Equal(t, 24*time.Hour, cfg.JWT.Expiration)
}

func TestLoadRejectsDefaultSecretInProduction(t *testing.T) {
	chdirTemp(t)
	t.Setenv("ENV", EnvProduction)

	_, err := Load()
	require.Error(t, err)
}

func TestAttendanceLocationFallsBackToUTC(t *testing.T) {
	cfg := AttendanceConfig{Timezone: "Mars/Olympus"}
	assert.Equal(t, time.UTC, cfg.Location())
}
