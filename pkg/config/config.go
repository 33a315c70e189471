package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/travigo/positionstats/pkg/objectstore"
	"github.com/travigo/positionstats/pkg/util"
	"gopkg.in/yaml.v3"
)

const (
	DefaultOutputRoot    = "./output"
	DefaultArchivePrefix = "archive"
)

type Config struct {
	OutputRoot string              `yaml:"output_root" validate:"required"`
	Storage    objectstore.Options `yaml:"storage"`

	Archive ArchiveConfig `yaml:"archive"`
	Metrics MetricsConfig `yaml:"metrics"`
}

type ArchiveConfig struct {
	Enabled bool   `yaml:"enabled"`
	Prefix  string `yaml:"prefix" validate:"required_if=Enabled true"`
}

type MetricsConfig struct {
	Textfile string `yaml:"textfile"`
}

func Default() Config {
	return Config{
		OutputRoot: DefaultOutputRoot,
		Storage: objectstore.Options{
			S3: objectstore.S3Options{UseSSL: true},
		},
		Archive: ArchiveConfig{
			Prefix: DefaultArchivePrefix,
		},
	}
}

// Load builds the configuration from the defaults, the optional YAML file at path, then the
// STATS_* environment variables, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config %s: %w", path, err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnvironment(util.GetEnvironmentVariables()); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	return nil
}

func (c *Config) applyEnvironment(env map[string]string) error {
	if value := env["STATS_OUTPUT_ROOT"]; value != "" {
		c.OutputRoot = value
	}

	if value := env["STATS_S3_ENDPOINT"]; value != "" {
		c.Storage.S3.Endpoint = value
	}
	if value := env["STATS_S3_ACCESS_KEY"]; value != "" {
		c.Storage.S3.AccessKey = value
	}
	if value := env["STATS_S3_SECRET_KEY"]; value != "" {
		c.Storage.S3.SecretKey = value
	}
	if value := env["STATS_S3_REGION"]; value != "" {
		c.Storage.S3.Region = value
	}

	var err error
	if c.Storage.S3.UseSSL, err = util.EnvironmentBool(env, "STATS_S3_SSL", c.Storage.S3.UseSSL); err != nil {
		return err
	}
	if c.Archive.Enabled, err = util.EnvironmentBool(env, "STATS_ARCHIVE_ENABLED", c.Archive.Enabled); err != nil {
		return err
	}

	if value := env["STATS_METRICS_TEXTFILE"]; value != "" {
		c.Metrics.Textfile = value
	}

	return nil
}
