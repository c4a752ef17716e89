package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "both", cfg.Logging.Output)
	assert.Equal(t, time.April, cfg.SPC.Month())
	assert.Nil(t, cfg.SPC.CurrentFYOverride())
	assert.False(t, cfg.SPC.FillFullFiscalYear)
	assert.Equal(t, SourceAuto, cfg.Source.Kind)
	assert.True(t, cfg.Source.Fallback)
	assert.Equal(t, DefaultEventsQuery, cfg.Source.SQL.Query)
	assert.Equal(t, 30*time.Second, cfg.Source.API.Timeout)
	assert.Equal(t, "data/raw", cfg.Paths.RawDir)
	assert.Equal(t, "outputs/reports", cfg.Paths.ReportsDir)
	assert.False(t, cfg.Alerts.Kafka.Enabled())
	assert.False(t, cfg.Alerts.Webhook.Enabled())
}

func TestLoadPrecedence(t *testing.T) {
	file := writeFile(t, "config.yaml", `
logging:
  level: debug
spc:
  fy_start_month: 7
  current_fy: 2024
source:
  kind: sql
  sql:
    server: file-server
    database: surveillance
alerts:
  kafka:
    brokers: ["localhost:9092"]
    topic: spc.breaches
`)

	t.Setenv("SPC_ANALYSIS_FY_START_MONTH", "10")
	t.Setenv("SPC_SOURCE_SQL_SERVER", "env-server")
	t.Setenv("SPC_SOURCE_SQL_USER", "reporter")

	cfg, err := Load(file)
	require.NoError(t, err)

	// file over defaults
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "surveillance", cfg.Source.SQL.Database)
	assert.Equal(t, SourceSQL, cfg.Source.Kind)
	require.NotNil(t, cfg.SPC.CurrentFYOverride())
	assert.Equal(t, 2024, *cfg.SPC.CurrentFYOverride())
	assert.True(t, cfg.Alerts.Kafka.Enabled())

	// env over file
	assert.Equal(t, time.October, cfg.SPC.Month())
	assert.Equal(t, "env-server", cfg.Source.SQL.Server)
	assert.Equal(t, "reporter", cfg.Source.SQL.User)

	// untouched defaults survive the file
	assert.Equal(t, "outputs/reports", cfg.Paths.ReportsDir)
	assert.Equal(t, DefaultEventsQuery, cfg.Source.SQL.Query)
}

func TestLoadIgnoresUnprefixedVariables(t *testing.T) {
	t.Setenv("USER", "someone")
	t.Setenv("PATH", os.Getenv("PATH"))

	cfg, err := Load(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Empty(t, cfg.Source.SQL.User)
	assert.Empty(t, cfg.Source.File.Path)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		env  map[string]string
	}{
		{"start month too large", "spc:\n  fy_start_month: 13\n", nil},
		{"unknown source", "source:\n  kind: ftp\n", nil},
		{"unknown log format", "logging:\n  format: xml\n", nil},
		{"file source without path", "source:\n  kind: file\n", nil},
		{"api source without url", "source:\n  kind: api\n", nil},
		{"bad synthetic date", "source:\n  synthetic:\n    from: 2024/01/01\n", nil},
		{"invalid env value", "", map[string]string{"SPC_ANALYSIS_FY_START_MONTH": "april"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeFile(t, "config.yaml", tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestSQLConfigConfigured(t *testing.T) {
	cfg := SQLConfig{Server: "s", Database: "d", User: "u"}
	assert.False(t, cfg.Configured())
	cfg.Password = "p"
	assert.True(t, cfg.Configured())
}
