package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coderva/tutoring-reports/internal/domain/shared"
)

var envKeys = []string{
	"APP_ENV", "APP_TIMEZONE",
	"DATABASE_URL", "DB_URL", "DB_USER", "DB_PASSWORD", "DB_DRIVER", "DB_SSLMODE",
	"REDIS_URL", "REDIS_DISABLED",
	"REPORT_OUTPUT", "REPORT_FORMAT", "REPORT_SCHOOL_YEAR", "REPORT_EXTENDED",
	"LOG_LEVEL", "LOG_FORMAT",
}

// isolate runs the test from an empty directory with a clean environment.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}
	dir := t.TempDir()
	t.Setenv("HOME", dir)

	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgres://db.example.org/tutoring")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://db.example.org/tutoring", cfg.Database.URL)
	assert.Equal(t, "require", cfg.Database.SSLMode)
	assert.Equal(t, 30*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 1, cfg.Database.ConnectAttempts)
	assert.Equal(t, 500*time.Millisecond, cfg.Database.ConnectBackoff)
	assert.Equal(t, "tutoring_report.xlsx", cfg.Report.Output)
	assert.Equal(t, "xlsx", cfg.Report.Format)
	assert.Equal(t, 25, cfg.Report.SchoolYear)
	assert.False(t, cfg.Report.Extended)
	assert.Equal(t, 10, cfg.Report.TopStudents)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, 720*time.Hour, cfg.Redis.TTL)
	assert.Equal(t, "console", cfg.Observability.LogFormat)
	assert.True(t, cfg.IsDevelopment())
	assert.NotNil(t, cfg.App.Location)
	assert.Empty(t, cfg.File)
}

func TestLoad_AlternateEnvName(t *testing.T) {
	isolate(t)
	t.Setenv("DB_URL", "sqlite:./tutoring.db")
	t.Setenv("DB_USER", "reporter")
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("REDIS_DISABLED", "false")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "sqlite:./tutoring.db", cfg.Database.URL)
	assert.Equal(t, "reporter", cfg.Database.User)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.Observability.LogFormat)
	assert.True(t, cfg.Redis.Enabled())
}

func TestLoad_MissingURL(t *testing.T) {
	isolate(t)

	_, err := Load(nil)
	require.Error(t, err)
	assert.True(t, shared.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "db.url is required")
}

func TestLoad_PropertiesFile(t *testing.T) {
	dir := isolate(t)
	props := "db.url=jdbc:postgresql://db.example.org:5432/tutoring\n" +
		"db.user=reader\n" +
		"db.password=secret\n" +
		"report.school_year=26\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.properties"), []byte(props), 0o600))

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "jdbc:postgresql://db.example.org:5432/tutoring", cfg.Database.URL)
	assert.Equal(t, "reader", cfg.Database.User)
	assert.Equal(t, "secret", cfg.Database.Password)
	assert.Equal(t, 26, cfg.Report.SchoolYear)
	assert.Equal(t, filepath.Join(dir, "config.properties"), cfg.File)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	yml := "db:\n  url: postgres://file/tutoring\nreport:\n  output: from-file.csv\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yml), 0o600))
	t.Setenv("DATABASE_URL", "postgres://env/tutoring")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, "postgres://env/tutoring", cfg.Database.URL)
	assert.Equal(t, "from-file.csv", cfg.Report.Output)
	assert.Equal(t, "csv", cfg.Report.Format)
}

func TestLoad_DotEnv(t *testing.T) {
	dir := isolate(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_URL=sqlite:dotenv.db\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("DATABASE_URL") })

	cfg, err := Load(nil)
	require.NoError(t, err)
	assert.Equal(t, "sqlite:dotenv.db", cfg.Database.URL)
}

func TestLoad_Flags(t *testing.T) {
	dir := isolate(t)
	t.Setenv("DATABASE_URL", "postgres://env/tutoring")
	explicit := filepath.Join(dir, "report-settings")
	require.NoError(t, os.WriteFile(explicit, []byte("report.top_students=3\n"), 0o600))

	fs := NewFlagSet("tutoring-report")
	require.NoError(t, fs.Parse([]string{
		"--config", explicit,
		"-o", "out/report.yaml",
		"--school-year", "24",
		"--extended",
		"--db-url", "sqlite:flag.db",
	}))

	cfg, err := Load(fs)
	require.NoError(t, err)

	assert.Equal(t, "sqlite:flag.db", cfg.Database.URL)
	assert.Equal(t, "out/report.yaml", cfg.Report.Output)
	assert.Equal(t, "yaml", cfg.Report.Format)
	assert.Equal(t, 24, cfg.Report.SchoolYear)
	assert.True(t, cfg.Report.Extended)
	assert.Equal(t, 3, cfg.Report.TopStudents)
}

func TestLoad_UnsetFlagsKeepEnv(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgres://env/tutoring")
	t.Setenv("REPORT_OUTPUT", "env.csv")

	fs := NewFlagSet("tutoring-report")
	require.NoError(t, fs.Parse(nil))

	cfg, err := Load(fs)
	require.NoError(t, err)
	assert.Equal(t, "postgres://env/tutoring", cfg.Database.URL)
	assert.Equal(t, "env.csv", cfg.Report.Output)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("DATABASE_URL", "postgres://env/tutoring")

	fs := NewFlagSet("tutoring-report")
	require.NoError(t, fs.Parse([]string{"--config", filepath.Join(dir, "nope.yaml")}))

	_, err := Load(fs)
	assert.Error(t, err)
}

func TestValidate_CollectsAllProblems(t *testing.T) {
	cfg := &Config{
		App:      AppConfig{Environment: "qa", Timezone: "Mars/Olympus_Mons"},
		Database: DatabaseConfig{Driver: "mysql"},
		Report: ReportConfig{
			Output:      "r.pdf",
			Format:      "pdf",
			SchoolYear:  120,
			TopStudents: 0,
			TopSubjects: -1,
		},
		Observability: ObservabilityConfig{LogFormat: "xml"},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, shared.IsInvalidInput(err))

	msg := err.Error()
	for _, want := range []string{
		"app.env must be development, staging or production, got \"qa\"",
		"app.timezone \"Mars/Olympus_Mons\" is not a known location",
		"db.url is required",
		"db.driver must be",
		"report.format \"pdf\"",
		"report.school_year must be 0-99",
		"report.top_students must be positive",
		"report.top_subjects must be positive",
		"log.format must be json or console",
	} {
		assert.Contains(t, msg, want)
	}
}

func TestLoad_Staging(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgres://env/tutoring")
	t.Setenv("APP_ENV", "Staging")
	t.Setenv("APP_TIMEZONE", "UTC")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, EnvStaging, cfg.App.Environment)
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())
	assert.Equal(t, "console", cfg.Observability.LogFormat)
	assert.Equal(t, time.UTC, cfg.App.Location)
}

func TestLoad_UnknownTimezone(t *testing.T) {
	isolate(t)
	t.Setenv("DATABASE_URL", "postgres://env/tutoring")
	t.Setenv("APP_TIMEZONE", "Nowhere/Special")

	_, err := Load(nil)
	require.Error(t, err)
	assert.True(t, shared.IsInvalidInput(err))
	assert.Contains(t, err.Error(), "app.timezone")
}
