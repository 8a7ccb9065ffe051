package experiment

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the subset of a ChaosEngine manifest the runner reads
type Manifest struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Metadata   Metadata `yaml:"metadata"`
	Spec       Spec     `yaml:"spec"`
}

// Metadata identifies the chaos engine
type Metadata struct {
	Name      string `yaml:"name"`
	Namespace string `yaml:"namespace,omitempty"`
}

// Spec holds the engine fields used for validation
type Spec struct {
	AppInfo     AppInfo          `yaml:"appinfo,omitempty"`
	Experiments []ExperimentSpec `yaml:"experiments,omitempty"`
}

// AppInfo names the application under chaos
type AppInfo struct {
	AppNS    string `yaml:"appns,omitempty"`
	AppLabel string `yaml:"applabel,omitempty"`
	AppKind  string `yaml:"appkind,omitempty"`
}

// ExperimentSpec is one experiment entry of the engine
type ExperimentSpec struct {
	Name string `yaml:"name"`
}

// ParseFile reads and decodes a manifest. metadata.name is required.
func ParseFile(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read manifest: %v", ErrInvalidManifest, err)
	}

	return Parse(data)
}

// Parse decodes a manifest from YAML bytes
func Parse(data []byte) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %v", ErrInvalidManifest, err)
	}

	if m.Metadata.Name == "" {
		return nil, fmt.Errorf("%w: metadata.name is required", ErrInvalidManifest)
	}

	return &m, nil
}

// EngineName returns the chaos engine name
func (m *Manifest) EngineName() string {
	return m.Metadata.Name
}

// ResultName returns the name of the chaos result the operator creates
// for this engine and experiment
func (m *Manifest) ResultName(experiment string) string {
	return m.Metadata.Name + "-" + experiment
}

// ResolveNamespace returns metadata.namespace, falling back to the value of
// the environment variable envName. The result may be empty.
func (m *Manifest) ResolveNamespace(envName string) string {
	if m.Metadata.Namespace != "" {
		return m.Metadata.Namespace
	}
	if envName == "" {
		return ""
	}
	return os.Getenv(envName)
}
