package config

import "time"

// Config holds runtime settings for the exporter.
//
// Date fields hold YYYY-MM-DD values; empty means "use the default range"
// (yesterday through today, resolved in Timezone).
type Config struct {
	// BaseURL is the root of the Basis web API.
	BaseURL string

	// Timezone is the IANA zone all dates and row timestamps resolve in.
	Timezone string

	// AccountsFile and StudyIDsFile are the CSV stores of credentials and
	// username-to-study-id assignments.
	AccountsFile string
	StudyIDsFile string

	// ExportDir is where output files are written.
	ExportDir string

	// DefaultFormat is the output format used when no -f flag is given.
	DefaultFormat string

	// RequestTimeout bounds every API call.
	RequestTimeout time.Duration

	// CatalogPath is the SQLite file recording run history. CatalogKeep is
	// how many runs Prune retains.
	CatalogPath string
	CatalogKeep int

	// S3 archive settings. An empty bucket disables archiving.
	S3Bucket       string
	S3Region       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	// Sentry settings. An empty DSN disables error reporting.
	SentryDSN   string
	Environment string

	// Per-invocation values from the command line.
	StartDate  string
	EndDate    string
	Format     string
	AddAccount bool
	History    int

	// Interactive is set when no run flags were given, in which case the
	// dates and format are prompted for instead.
	Interactive bool
}

// LoadDefaults populates c with the stock settings.
func (c *Config) LoadDefaults() {
	c.BaseURL = "https://app.mybasis.com"
	c.Timezone = "America/New_York"
	c.AccountsFile = "users.csv"
	c.StudyIDsFile = "user_ids.csv"
	c.ExportDir = "."
	c.DefaultFormat = "csv"
	c.RequestTimeout = 30 * time.Second
	c.CatalogPath = "basis-export.db"
	c.CatalogKeep = 500
	c.S3Region = "us-east-1"
	c.Environment = "production"
}

// LoadConfig constructs a Config, applies defaults, then overlays values
// from the YAML file (if present) and command-line flags. Later sources take
// precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseYaml(cfg); err != nil {
		return nil, err
	}
	parseFlags(cfg)
	return cfg, nil
}
