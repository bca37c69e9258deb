package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/DukeMobileTech/basis-data-export/internal/flagx"
)

// yamlConfig is a DTO used exclusively for YAML unmarshalling. Durations are
// given in seconds. Only keys present in the file override the defaults.
type yamlConfig struct {
	BaseURL        string `yaml:"base_url"`
	Timezone       string `yaml:"timezone"`
	AccountsFile   string `yaml:"accounts_file"`
	StudyIDsFile   string `yaml:"study_ids_file"`
	ExportDir      string `yaml:"export_dir"`
	DefaultFormat  string `yaml:"default_format"`
	RequestTimeout int    `yaml:"request_timeout_seconds"`
	CatalogPath    string `yaml:"catalog_path"`
	CatalogKeep    int    `yaml:"catalog_keep"`

	S3Bucket       string `yaml:"s3_bucket"`
	S3Region       string `yaml:"s3_region"`
	S3BaseEndpoint string `yaml:"s3_base_endpoint"`
	S3AccessKey    string `yaml:"s3_access_key"`
	S3SecretKey    string `yaml:"s3_secret_key"`

	SentryDSN   string `yaml:"sentry_dsn"`
	Environment string `yaml:"environment"`
}

// parseYaml overlays cfg with values from the YAML file named by -c/-config.
// No flag means no file is loaded. Empty values in the file leave the
// corresponding defaults untouched.
func parseYaml(cfg *Config) error {
	path := flagx.ConfigFileFlags()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.BaseURL, yc.BaseURL)
	setString(&cfg.Timezone, yc.Timezone)
	setString(&cfg.AccountsFile, yc.AccountsFile)
	setString(&cfg.StudyIDsFile, yc.StudyIDsFile)
	setString(&cfg.ExportDir, yc.ExportDir)
	setString(&cfg.DefaultFormat, yc.DefaultFormat)
	setString(&cfg.CatalogPath, yc.CatalogPath)
	setString(&cfg.S3Bucket, yc.S3Bucket)
	setString(&cfg.S3Region, yc.S3Region)
	setString(&cfg.S3BaseEndpoint, yc.S3BaseEndpoint)
	setString(&cfg.S3AccessKey, yc.S3AccessKey)
	setString(&cfg.S3SecretKey, yc.S3SecretKey)
	setString(&cfg.SentryDSN, yc.SentryDSN)
	setString(&cfg.Environment, yc.Environment)

	if yc.RequestTimeout > 0 {
		cfg.RequestTimeout = time.Duration(yc.RequestTimeout) * time.Second
	}
	if yc.CatalogKeep > 0 {
		cfg.CatalogKeep = yc.CatalogKeep
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
