package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"faculty-bills/domain/bills"
)

// ErrInvalid is returned when a loaded configuration fails validation.
var ErrInvalid = errors.New("invalid configuration")

// Config represents the structure of config.yml (or config.toml) used by the tool.
type Config struct {
	Sources Sources `yaml:"sources" toml:"sources"`
	Report  Report  `yaml:"report" toml:"report"`
	Export  Export  `yaml:"export" toml:"export"`
}

// Sources describes where the teaching log rows are fetched from.
type Sources struct {
	URLs            []string `yaml:"urls" toml:"urls" validate:"dive,url"`
	TokenEnv        string   `yaml:"token_env" toml:"token_env"`
	TimeoutSeconds  int      `yaml:"timeout_seconds" toml:"timeout_seconds" validate:"gte=0"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds" toml:"cache_ttl_seconds" validate:"gte=0"`
}

// Report controls how rows are read.
type Report struct {
	Timezone string `yaml:"timezone" toml:"timezone" validate:"required,timezone"`
	// Columns adds header variants per role, e.g. {"date": ["Session Date"]}.
	Columns map[string][]string `yaml:"columns" toml:"columns"`
}

// Export holds the fixed text and the rate printed on the claim document.
type Export struct {
	Institution   string  `yaml:"institution" toml:"institution"`
	Department    string  `yaml:"department" toml:"department"`
	WorkloadHours int     `yaml:"workload_hours" toml:"workload_hours" validate:"gte=0"`
	RatePerHour   float64 `yaml:"rate_per_hour" toml:"rate_per_hour" validate:"gte=0"`
	Certification string  `yaml:"certification" toml:"certification"`
	Signatory     string  `yaml:"signatory" toml:"signatory"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Sources: Sources{
			TokenEnv:        "BILLS_SOURCE_TOKEN",
			TimeoutSeconds:  6,
			CacheTTLSeconds: 300,
		},
		Report: Report{Timezone: bills.DefaultZone},
		Export: Export{
			Institution:   "BANGALORE UNIVERSITY",
			Department:    "BCA",
			WorkloadHours: 16,
			RatePerHour:   1000,
			Certification: "Certified that, the above Guest Faculty has been handled the Classes allotted to him/her as per the Time " +
				"Table and as per the Attendance Record maintained in the department. The said dates and hours are in order.",
			Signatory: "Chairman / Chairperson",
		},
	}
}

// Path returns the config path from CONFIG_PATH, defaulting to ./config.yml.
func Path() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return "./config.yml"
}

// LoadEnv loads a .env file from the working directory when one exists.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		slog.Debug("config.env.skip", "reason", err)
		return
	}
	slog.Debug("config.env.loaded")
}

// Load parses the configuration file at path on top of Default, applies
// environment overrides and validates the result. A missing file is not an
// error.
func Load(path string) (*Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		slog.Info("config.default", "path", path)
	case err != nil:
		return nil, err
	default:
		if err := decode(path, b, c); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		slog.Info(fmt.Sprintf("Loaded config: %s", path))
	}

	if err := c.applyEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func decode(path string, b []byte, c *Config) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return toml.Unmarshal(b, c)
	default:
		return yaml.Unmarshal(b, c)
	}
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BILLS_SOURCE_URLS"); v != "" {
		c.Sources.URLs = nil
		for _, u := range strings.Split(v, ",") {
			if u = strings.TrimSpace(u); u != "" {
				c.Sources.URLs = append(c.Sources.URLs, u)
			}
		}
	}
	if v := os.Getenv("BILLS_TIMEZONE"); v != "" {
		c.Report.Timezone = v
	}
	if v := os.Getenv("BILLS_RATE_PER_HOUR"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("BILLS_RATE_PER_HOUR: %w", err)
		}
		c.Export.RatePerHour = rate
	}
	return nil
}

// Validate checks field constraints and that every column key names a role.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	for key := range c.Report.Columns {
		if _, ok := bills.ParseRole(key); !ok {
			return fmt.Errorf("%w: unknown column role %q", ErrInvalid, key)
		}
	}
	return nil
}

// Token returns the bearer token for the sources, read from TokenEnv.
func (c *Config) Token() string {
	if c.Sources.TokenEnv == "" {
		return ""
	}
	return os.Getenv(c.Sources.TokenEnv)
}

// Timeout returns the per-request fetch timeout.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Sources.TimeoutSeconds) * time.Second
}

// CacheTTL returns how long fetched rows stay fresh.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Sources.CacheTTLSeconds) * time.Second
}

// Aggregator builds the bills aggregator for the configured zone and columns.
func (c *Config) Aggregator() (*bills.Aggregator, error) {
	loc, err := time.LoadLocation(c.Report.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", c.Report.Timezone, err)
	}
	extra := map[bills.Role][]string{}
	for key, vs := range c.Report.Columns {
		if role, ok := bills.ParseRole(key); ok {
			extra[role] = append(extra[role], vs...)
		}
	}
	return &bills.Aggregator{Location: loc, Variants: bills.MergeVariants(extra)}, nil
}
