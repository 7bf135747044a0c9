// Package config holds the engine configuration. Invalid configuration is a
// fatal error raised before any collection starts.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/infrascope/infrascope/internal/drift"
	"github.com/infrascope/infrascope/internal/model"
	"github.com/infrascope/infrascope/internal/pkg/errors"
	"github.com/infrascope/infrascope/internal/pkg/retry"
	"github.com/infrascope/infrascope/internal/pkg/validator"
)

// Config holds all engine configuration
type Config struct {
	Logging    LoggingConfig    `yaml:"logging"`
	Collection CollectionConfig `yaml:"collection"`
	Terraform  TerraformConfig  `yaml:"terraform"`
	Azure      AzureConfig      `yaml:"azure"`
	Platform   PlatformConfig   `yaml:"platform"`
	Matching   MatchingConfig   `yaml:"matching"`
	Drift      DriftConfig      `yaml:"drift"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" validate:"oneof=json console"`
}

// CollectionConfig controls the concurrent collection phase
type CollectionConfig struct {
	// Timeout bounds each collector call.
	Timeout time.Duration `yaml:"timeout"`
	Retry   retry.Config  `yaml:"retry"`
}

// TerraformConfig configures the declarative-state source
type TerraformConfig struct {
	Enabled   bool   `yaml:"enabled"`
	StatePath string `yaml:"state_path"`
	ConfigDir string `yaml:"config_dir"`
}

// AzureConfig configures the cloud-inventory source
type AzureConfig struct {
	Enabled        bool     `yaml:"enabled"`
	SubscriptionID string   `yaml:"subscription_id"`
	TenantID       string   `yaml:"tenant_id"`
	ClientID       string   `yaml:"client_id"`
	ClientSecret   string   `yaml:"client_secret"`
	ResourceGroups []string `yaml:"resource_groups"`
	Types          []string `yaml:"types"`
	TagName        string   `yaml:"tag_name"`
	TagValue       string   `yaml:"tag_value"`
}

// PlatformConfig configures the platform-API source
type PlatformConfig struct {
	Enabled           bool    `yaml:"enabled"`
	Tenant            string  `yaml:"tenant"`
	BaseURL           string  `yaml:"base_url"`
	APIToken          string  `yaml:"api_token"`
	Namespace         string  `yaml:"namespace"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// MatchingConfig configures the matching engine
type MatchingConfig struct {
	// TagKeys are the tag keys the tag matcher considers.
	TagKeys []string `yaml:"tag_keys"`
	// MinConfidence filters low-confidence edges out of the report.
	MinConfidence float64 `yaml:"min_confidence" validate:"gte=0,lte=1"`
}

// DriftConfig configures drift detection
type DriftConfig struct {
	Enabled     bool               `yaml:"enabled"`
	Fields      []string           `yaml:"fields"`
	Tolerance   map[string]float64 `yaml:"tolerance"`
	SourcePairs []drift.SourcePair `yaml:"source_pairs"`
}

// Default returns the configuration defaults
func Default() *Config {
	driftDefaults := drift.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Collection: CollectionConfig{
			Timeout: 60 * time.Second,
			Retry:   retry.DefaultConfig(),
		},
		Matching: MatchingConfig{
			TagKeys:       []string{"owner", "environment"},
			MinConfidence: 0,
		},
		Drift: DriftConfig{
			Enabled:     true,
			Fields:      driftDefaults.Fields,
			Tolerance:   map[string]float64{},
			SourcePairs: driftDefaults.SourcePairs,
		},
	}
}

// Load builds configuration from defaults, an optional YAML file, and
// environment variables, in that order of precedence.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	if path != "" {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Configurationf("failed to read config file: %v", err)
		}
		if err := yaml.Unmarshal(content, cfg); err != nil {
			return nil, errors.Configurationf("failed to parse config file: %v", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Logging.Level = getEnv("INFRASCOPE_LOG_LEVEL", c.Logging.Level)
	c.Logging.Format = getEnv("INFRASCOPE_LOG_FORMAT", c.Logging.Format)
	c.Collection.Timeout = getEnvAsDuration("INFRASCOPE_COLLECT_TIMEOUT", c.Collection.Timeout)

	c.Terraform.StatePath = getEnv("INFRASCOPE_TF_STATE", c.Terraform.StatePath)
	c.Terraform.ConfigDir = getEnv("INFRASCOPE_TF_CONFIG_DIR", c.Terraform.ConfigDir)
	if c.Terraform.StatePath != "" {
		c.Terraform.Enabled = true
	}

	c.Azure.SubscriptionID = getEnv("AZURE_SUBSCRIPTION_ID", c.Azure.SubscriptionID)
	c.Azure.TenantID = getEnv("AZURE_TENANT_ID", c.Azure.TenantID)
	c.Azure.ClientID = getEnv("AZURE_CLIENT_ID", c.Azure.ClientID)
	c.Azure.ClientSecret = getEnv("AZURE_CLIENT_SECRET", c.Azure.ClientSecret)
	if c.Azure.SubscriptionID != "" {
		c.Azure.Enabled = true
	}

	c.Platform.Tenant = getEnv("INFRASCOPE_PLATFORM_TENANT", c.Platform.Tenant)
	c.Platform.APIToken = getEnv("INFRASCOPE_PLATFORM_TOKEN", c.Platform.APIToken)
	c.Platform.Namespace = getEnv("INFRASCOPE_PLATFORM_NAMESPACE", c.Platform.Namespace)
	if c.Platform.Tenant != "" && c.Platform.APIToken != "" {
		c.Platform.Enabled = true
	}
}

// Validate checks the configuration and returns a fatal configuration error
// describing every problem found.
func (c *Config) Validate() error {
	var problems []string

	for _, ve := range validator.New().Validate(c) {
		problems = append(problems, ve.Message)
	}

	if c.Collection.Timeout <= 0 {
		problems = append(problems, "collection timeout must be positive")
	}
	if !c.Terraform.Enabled && !c.Azure.Enabled && !c.Platform.Enabled {
		problems = append(problems, "at least one source must be enabled")
	}
	if c.Terraform.Enabled && c.Terraform.StatePath == "" {
		problems = append(problems, "terraform source requires state_path")
	}
	if c.Azure.Enabled && c.Azure.SubscriptionID == "" {
		problems = append(problems, "azure source requires subscription_id")
	}
	if c.Platform.Enabled && c.Platform.Tenant == "" && c.Platform.BaseURL == "" {
		problems = append(problems, "platform source requires tenant or base_url")
	}
	if c.Platform.Enabled && c.Platform.APIToken == "" {
		problems = append(problems, "platform source requires api_token")
	}

	if c.Drift.Enabled {
		if len(c.Drift.Fields) == 0 {
			problems = append(problems, "drift detection requires a non-empty field set")
		}
		if len(c.Drift.SourcePairs) == 0 {
			problems = append(problems, "drift detection requires at least one eligible source pair")
		}
		for _, pair := range c.Drift.SourcePairs {
			if !knownSource(pair.Declared) || !knownSource(pair.Observed) {
				problems = append(problems, fmt.Sprintf("unknown source in drift pair %s/%s", pair.Declared, pair.Observed))
			}
		}
		for field := range c.Drift.Tolerance {
			if !contains(c.Drift.Fields, field) {
				problems = append(problems, fmt.Sprintf("tolerance configured for uncompared field %q", field))
			}
		}
	}

	if len(problems) > 0 {
		return errors.Configuration(strings.Join(problems, "; "))
	}
	return nil
}

// DriftDetectorConfig returns the detector configuration derived from this config
func (c *Config) DriftDetectorConfig() drift.Config {
	return drift.Config{
		Fields:      c.Drift.Fields,
		Tolerance:   c.Drift.Tolerance,
		SourcePairs: c.Drift.SourcePairs,
	}
}

func knownSource(s model.Source) bool {
	switch s {
	case model.SourceTerraform, model.SourceAzure, model.SourceF5XC:
		return true
	}
	return false
}

func contains(list []string, item string) bool {
	for _, v := range list {
		if v == item {
			return true
		}
	}
	return false
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return fallback
}
