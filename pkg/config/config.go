// Package config handles configuration for checkout-runner.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/storelab-dev/checkout-runner/pkg/core"
)

// Driver names accepted by the runner.
const (
	DriverPlaywright = "playwright"
	DriverSelenium   = "selenium"
	DriverMock       = "mock"
)

// Artifact capture modes.
const (
	ArtifactsOnFailure = "on-failure"
	ArtifactsAlways    = "always"
	ArtifactsNever     = "never"
)

// Credentials is the storefront account a flow signs in with.
type Credentials struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// Customer is the checkout information entered at checkout step one.
type Customer struct {
	FirstName  string `yaml:"firstName"`
	LastName   string `yaml:"lastName"`
	PostalCode string `yaml:"postalCode"`
}

// Config represents the workspace configuration (config.yaml).
type Config struct {
	// Target site
	BaseURL string `yaml:"baseUrl"`

	// Timing
	TimeoutMs      int `yaml:"timeoutMs"`      // Budget for each condition wait
	PollIntervalMs int `yaml:"pollIntervalMs"` // Cadence between condition probes

	// Account and checkout data
	Credentials Credentials `yaml:"credentials"`
	Customer    Customer    `yaml:"customer"`

	// Browser session settings
	Driver      string `yaml:"driver"`      // playwright, selenium, mock
	Browser     string `yaml:"browser"`     // chromium, chrome, firefox
	Headless    *bool  `yaml:"headless"`    // Default: true
	SeleniumURL string `yaml:"seleniumUrl"` // Remote WebDriver endpoint

	// Flow selection (empty means the whole catalog)
	Flows []string `yaml:"flows"`

	// Output
	OutputDir string `yaml:"outputDir"` // Default: <home>/reports
	Artifacts string `yaml:"artifacts"` // on-failure, always, never
}

// Load loads configuration from a file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory.
func LoadFromDir(dir string) (*Config, error) {
	// Try config.yaml first
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// Try config.yml
	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	// No config file found, return empty config
	return &Config{}, nil
}

// ApplyEnv overrides file values with CHECKOUT_* environment variables.
// Environment wins over file so CI can steer a checked-in config.
func (c *Config) ApplyEnv() {
	setString(&c.BaseURL, "CHECKOUT_BASE_URL")
	setInt(&c.TimeoutMs, "CHECKOUT_TIMEOUT_MS")
	setInt(&c.PollIntervalMs, "CHECKOUT_POLL_INTERVAL_MS")
	setString(&c.Credentials.Username, "CHECKOUT_USERNAME")
	setString(&c.Credentials.Password, "CHECKOUT_PASSWORD")
	setString(&c.Customer.FirstName, "CHECKOUT_FIRST_NAME")
	setString(&c.Customer.LastName, "CHECKOUT_LAST_NAME")
	setString(&c.Customer.PostalCode, "CHECKOUT_POSTAL_CODE")
	setString(&c.Driver, "CHECKOUT_DRIVER")
	setString(&c.Browser, "CHECKOUT_BROWSER")
	setString(&c.SeleniumURL, "CHECKOUT_SELENIUM_URL")
	setString(&c.OutputDir, "CHECKOUT_OUTPUT_DIR")
	setString(&c.Artifacts, "CHECKOUT_ARTIFACTS")

	if v, ok := os.LookupEnv("CHECKOUT_HEADLESS"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Headless = &b
		}
	}
}

// ApplyDefaults fills unset fields with working defaults.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = "https://www.saucedemo.com"
	}
	if c.TimeoutMs == 0 {
		c.TimeoutMs = 10000
	}
	if c.PollIntervalMs == 0 {
		c.PollIntervalMs = 100
	}
	if c.Driver == "" {
		c.Driver = DriverPlaywright
	}
	if c.Browser == "" {
		c.Browser = "chromium"
	}
	if c.SeleniumURL == "" {
		c.SeleniumURL = "http://localhost:4444/wd/hub"
	}
	if c.OutputDir == "" {
		c.OutputDir = GetReportsDir()
	}
	if c.Artifacts == "" {
		c.Artifacts = ArtifactsOnFailure
	}
}

// Validate checks structural correctness. Flow-specific completeness
// (credentials for login flows, customer data for checkout) is the
// validator package's job.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return core.ErrMissingRequired.WithMessage("baseUrl is required")
	}
	if u, err := url.Parse(c.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return core.ErrInvalidConfig.
			WithMessage(fmt.Sprintf("baseUrl %q is not an absolute URL", c.BaseURL))
	}
	if c.TimeoutMs <= 0 {
		return core.ErrInvalidConfig.
			WithMessage(fmt.Sprintf("timeoutMs must be positive, got %d", c.TimeoutMs))
	}
	if c.PollIntervalMs <= 0 {
		return core.ErrInvalidConfig.
			WithMessage(fmt.Sprintf("pollIntervalMs must be positive, got %d", c.PollIntervalMs))
	}
	switch c.Driver {
	case DriverPlaywright, DriverSelenium, DriverMock:
	default:
		return core.ErrInvalidConfig.
			WithMessage(fmt.Sprintf("driver %q is not one of playwright, selenium, mock", c.Driver))
	}
	switch c.Artifacts {
	case ArtifactsOnFailure, ArtifactsAlways, ArtifactsNever:
	default:
		return core.ErrInvalidConfig.
			WithMessage(fmt.Sprintf("artifacts %q is not one of on-failure, always, never", c.Artifacts))
	}
	return nil
}

// Timeout returns the per-wait budget as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.TimeoutMs) * time.Millisecond
}

// PollInterval returns the probe cadence as a duration.
func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalMs) * time.Millisecond
}

// IsHeadless reports whether the browser runs without a window.
func (c *Config) IsHeadless() bool {
	if c.Headless == nil {
		return true
	}
	return *c.Headless
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
