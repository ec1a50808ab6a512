package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
camunda:
  broker_address: zeebe:26500
database:
  postgres:
    host: ${TEST_FORMATION_DB_HOST}
    database: formation
    user: formation
  redis:
    address: redis:6379
pricing:
  timezone: Asia/Dubai
workers:
  compute-formation-quote:
    enabled: true
    timeout: 20000
  validate-formation-payload:
    enabled: false
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaultsAndExpandsEnv(t *testing.T) {
	t.Setenv("TEST_FORMATION_DB_HOST", "pg.internal")

	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.Equal(t, "pg.internal", cfg.Database.Postgres.Host)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
	assert.Equal(t, "formation-engine", cfg.App.Name)

	assert.Equal(t, int64(48000), cfg.Pricing.PartnerVisaCapital)
	assert.Equal(t, 300000, cfg.Pricing.CatalogCacheTTL)
	assert.Equal(t, "Asia/Dubai", cfg.Pricing.Timezone)
	assert.Equal(t, int64(10*1024*1024), cfg.Validation.MaxUploadBytes)
	assert.Contains(t, cfg.Validation.AllowedContentTypes, "application/pdf")
	assert.Equal(t, ":8080", cfg.Server.Address)

	quote := cfg.Workers["compute-formation-quote"]
	assert.True(t, quote.Enabled)
	assert.Equal(t, 20000, quote.Timeout)
	assert.Equal(t, 5, quote.MaxJobsActive)
	assert.Equal(t, 3, quote.MaxRetries)
}

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{
			name: "missing broker address",
			body: `
database:
  postgres: {host: pg, database: formation, user: formation}
  redis: {address: "redis:6379"}
`,
		},
		{
			name: "missing redis",
			body: `
camunda: {broker_address: "zeebe:26500"}
database:
  postgres: {host: pg, database: formation, user: formation}
`,
		},
		{
			name: "unknown timezone",
			body: `
camunda: {broker_address: "zeebe:26500"}
database:
  postgres: {host: pg, database: formation, user: formation}
  redis: {address: "redis:6379"}
pricing: {timezone: Mars/Olympus}
`,
		},
		{
			name: "negative partner visa capital",
			body: `
camunda: {broker_address: "zeebe:26500"}
database:
  postgres: {host: pg, database: formation, user: formation}
  redis: {address: "redis:6379"}
pricing: {partner_visa_capital: -1}
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}

func TestWorkerLookups(t *testing.T) {
	t.Setenv("TEST_FORMATION_DB_HOST", "pg.internal")
	cfg, err := LoadFromFile(writeConfig(t, baseYAML))
	require.NoError(t, err)

	assert.False(t, IsWorkerEnabled(cfg, "validate-formation-payload"))
	assert.True(t, IsWorkerEnabled(cfg, "advance-formation-step"))

	fallback := GetWorkerConfig(cfg, "advance-formation-step")
	assert.True(t, fallback.Enabled)
	assert.Equal(t, 30000, fallback.Timeout)
}
