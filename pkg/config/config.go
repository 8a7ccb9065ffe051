package config

import (
	"fmt"
	"os"
	"time"

	"github.com/jihwankim/litmus-runner/pkg/monitoring/probe"
	"gopkg.in/yaml.v3"
)

// PrometheusURLEnv overrides prometheus.url when set
const PrometheusURLEnv = "LITMUS_RUNNER_PROMETHEUS_URL"

// DefaultCatalogURL is the Litmus hub manifest containing the generic experiments
const DefaultCatalogURL = "https://hub.litmuschaos.io/api/chaos/master?file=charts/generic/experiments.yaml"

// Config represents the runner configuration
type Config struct {
	Framework   FrameworkConfig   `yaml:"framework"`
	Kubectl     KubectlConfig     `yaml:"kubectl"`
	Paths       PathsConfig       `yaml:"paths"`
	Application ApplicationConfig `yaml:"application"`
	Experiment  ExperimentConfig  `yaml:"experiment"`
	Polling     PollingConfig     `yaml:"polling"`
	Reporting   ReportingConfig   `yaml:"reporting"`
	Prometheus  PrometheusConfig  `yaml:"prometheus"`
	Emergency   EmergencyConfig   `yaml:"emergency"`
	Probes      []ProbeConfig     `yaml:"probes,omitempty"`
}

// FrameworkConfig contains general settings
type FrameworkConfig struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

// KubectlConfig contains kubectl invocation settings
type KubectlConfig struct {
	Binary  string `yaml:"binary"`
	Context string `yaml:"context,omitempty"`
}

// PathsConfig locates the manifest directories
type PathsConfig struct {
	ApplicationDir string `yaml:"application_dir"`
	ChaosDir       string `yaml:"chaos_dir"`
}

// ApplicationConfig describes the application under test
type ApplicationConfig struct {
	// Manifests are applied in order by start and deleted in order by stop
	Manifests  []string `yaml:"manifests"`
	CatalogURL string   `yaml:"catalog_url"`
}

// ExperimentConfig contains experiment run settings
type ExperimentConfig struct {
	NamespaceEnv    string `yaml:"namespace_env"`
	HealthMessage   string `yaml:"health_message"`
	CleanupOnCancel bool   `yaml:"cleanup_on_cancel"`
}

// PollingConfig controls the status polling loop
type PollingConfig struct {
	Interval    time.Duration `yaml:"interval"`
	LogsSince   time.Duration `yaml:"logs_since"`
	MaxAttempts int           `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
}

// ReportingConfig contains reporting and output settings
type ReportingConfig struct {
	OutputDir string   `yaml:"output_dir"`
	KeepLastN int      `yaml:"keep_last_n"`
	Formats   []string `yaml:"formats"`
}

// PrometheusConfig contains Prometheus connection settings.
// An empty URL disables probes.
type PrometheusConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// EmergencyConfig contains emergency stop settings
type EmergencyConfig struct {
	StopFile     string        `yaml:"stop_file"`
	PollInterval time.Duration `yaml:"poll_interval"`
}

// ProbeConfig is a steady-state check evaluated after each experiment
type ProbeConfig struct {
	Name      string `yaml:"name"`
	Query     string `yaml:"query"`
	Threshold string `yaml:"threshold"`
	Critical  bool   `yaml:"critical,omitempty"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Framework: FrameworkConfig{
			LogLevel:  "info",
			LogFormat: "text",
		},
		Kubectl: KubectlConfig{
			Binary: "kubectl",
		},
		Paths: PathsConfig{
			ApplicationDir: "./application",
			ChaosDir:       "./chaos",
		},
		Application: ApplicationConfig{
			Manifests:  []string{"deployment.yaml", "service.yaml", "ingress.yaml"},
			CatalogURL: DefaultCatalogURL,
		},
		Experiment: ExperimentConfig{
			NamespaceEnv:    "OKTETO_NAMESPACE",
			HealthMessage:   "'carts-db' Service is up and Running after chaos",
			CleanupOnCancel: true,
		},
		Polling: PollingConfig{
			Interval:  10 * time.Second,
			LogsSince: 10 * time.Second,
		},
		Reporting: ReportingConfig{
			OutputDir: "./reports",
			KeepLastN: 50,
			Formats:   []string{"text", "html"},
		},
		Prometheus: PrometheusConfig{
			Timeout: 30 * time.Second,
		},
		Emergency: EmergencyConfig{
			StopFile:     "/tmp/litmus-runner-stop",
			PollInterval: 1 * time.Second,
		},
	}
}

// Load loads configuration from a YAML file.
// A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = "config.yaml"
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		cfg.applyEnv()
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Expand environment variables in the YAML content
	expanded := []byte(os.ExpandEnv(string(data)))

	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if url := os.Getenv(PrometheusURLEnv); url != "" {
		c.Prometheus.URL = url
	}
}

// Save writes configuration to a YAML file
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Kubectl.Binary == "" {
		return fmt.Errorf("kubectl.binary is required")
	}

	if c.Paths.ApplicationDir == "" {
		return fmt.Errorf("paths.application_dir is required")
	}

	if c.Paths.ChaosDir == "" {
		return fmt.Errorf("paths.chaos_dir is required")
	}

	switch c.Framework.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("framework.log_format must be 'text' or 'json', got %q", c.Framework.LogFormat)
	}

	if c.Polling.Interval <= 0 {
		return fmt.Errorf("polling.interval must be positive")
	}

	if c.Polling.MaxAttempts < 0 {
		return fmt.Errorf("polling.max_attempts cannot be negative")
	}

	if c.Polling.Timeout < 0 {
		return fmt.Errorf("polling.timeout cannot be negative")
	}

	if c.Reporting.OutputDir == "" {
		return fmt.Errorf("reporting.output_dir is required")
	}

	for _, format := range c.Reporting.Formats {
		switch format {
		case "json", "text", "html":
		default:
			return fmt.Errorf("reporting.formats contains unsupported format %q", format)
		}
	}

	for i, p := range c.Probes {
		if p.Name == "" {
			return fmt.Errorf("probes[%d].name is required", i)
		}
		if p.Query == "" {
			return fmt.Errorf("probes[%d].query is required", i)
		}
		if _, err := probe.ParseThreshold(p.Threshold); err != nil {
			return fmt.Errorf("probes[%d]: %w", i, err)
		}
	}

	return nil
}
