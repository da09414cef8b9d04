package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"faculty-bills/domain/bills"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"BILLS_SOURCE_URLS", "BILLS_TIMEZONE", "BILLS_RATE_PER_HOUR"} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	c, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
	assert.Equal(t, 6*time.Second, c.Timeout())
	assert.Equal(t, 5*time.Minute, c.CacheTTL())
}

func TestLoad_YAML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.yml", `
sources:
  urls:
    - https://script.example.com/exec?sheet=bills
  timeout_seconds: 10
report:
  timezone: UTC
  columns:
    date: ["Session Date"]
export:
  rate_per_hour: 1200
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://script.example.com/exec?sheet=bills"}, c.Sources.URLs)
	assert.Equal(t, 10*time.Second, c.Timeout())
	assert.Equal(t, 300, c.Sources.CacheTTLSeconds)
	assert.Equal(t, 1200.0, c.Export.RatePerHour)
	assert.Equal(t, "BCA", c.Export.Department)

	agg, err := c.Aggregator()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, agg.Location)
	assert.Contains(t, agg.Variants[bills.RoleDate], "Session Date")
}

func TestLoad_TOML(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, "config.toml", `
[sources]
urls = ["https://script.example.com/exec"]
cache_ttl_seconds = 60

[export]
department = "BBA"
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://script.example.com/exec"}, c.Sources.URLs)
	assert.Equal(t, time.Minute, c.CacheTTL())
	assert.Equal(t, "BBA", c.Export.Department)
	assert.Equal(t, bills.DefaultZone, c.Report.Timezone)
}

func TestLoad_EnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("BILLS_SOURCE_URLS", "https://a.example.com/x, https://b.example.com/y,")
	t.Setenv("BILLS_RATE_PER_HOUR", "850")

	c, err := Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example.com/x", "https://b.example.com/y"}, c.Sources.URLs)
	assert.Equal(t, 850.0, c.Export.RatePerHour)

	t.Setenv("BILLS_RATE_PER_HOUR", "lots")
	_, err = Load(filepath.Join(t.TempDir(), "missing.yml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"bad url":      "sources:\n  urls: [\"not a url\"]\n",
		"negative ttl": "sources:\n  cache_ttl_seconds: -1\n",
		"bad zone":     "report:\n  timezone: Mars/Olympus\n",
		"unknown role": "report:\n  columns:\n    salary: [Pay]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeFile(t, "config.yml", body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

func TestLoad_Malformed(t *testing.T) {
	clearEnv(t)
	_, err := Load(writeFile(t, "config.yml", "sources: [unclosed"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrInvalid)
}

func TestToken(t *testing.T) {
	c := Default()
	t.Setenv("BILLS_SOURCE_TOKEN", "secret")
	assert.Equal(t, "secret", c.Token())

	c.Sources.TokenEnv = ""
	assert.Empty(t, c.Token())
}
