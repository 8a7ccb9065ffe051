package experiment

import (
	"fmt"
	"regexp"
	"strings"
)

var nameRegex = regexp.MustCompile(`^[a-z0-9]([-a-z0-9]*[a-z0-9])?$`)

// Validator checks a manifest before it is submitted
type Validator struct {
	// Warnings are non-fatal issues
	Warnings []string

	// Errors are fatal issues
	Errors []string
}

// NewValidator creates a new validator
func NewValidator() *Validator {
	return &Validator{
		Warnings: make([]string, 0),
		Errors:   make([]string, 0),
	}
}

// Validate validates a manifest against the experiment it was loaded for
func (v *Validator) Validate(m *Manifest, experiment string) error {
	v.Warnings = make([]string, 0)
	v.Errors = make([]string, 0)

	v.validateKind(m)
	v.validateMetadata(m)
	v.validateExperiments(m, experiment)

	if len(v.Errors) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidManifest, strings.Join(v.Errors, "; "))
	}

	return nil
}

// HasWarnings returns true if there are warnings
func (v *Validator) HasWarnings() bool {
	return len(v.Warnings) > 0
}

func (v *Validator) validateKind(m *Manifest) {
	if m.Kind != "" && m.Kind != "ChaosEngine" {
		v.Warnings = append(v.Warnings, fmt.Sprintf("kind '%s' may not be supported (expected: ChaosEngine)", m.Kind))
	}

	if m.APIVersion != "" && !strings.HasPrefix(m.APIVersion, "litmuschaos.io/") {
		v.Warnings = append(v.Warnings, fmt.Sprintf("apiVersion '%s' may not be supported (expected: litmuschaos.io/v1alpha1)", m.APIVersion))
	}
}

func (v *Validator) validateMetadata(m *Manifest) {
	if m.Metadata.Name == "" {
		v.Errors = append(v.Errors, "metadata.name is required")
		return
	}

	if !nameRegex.MatchString(m.Metadata.Name) {
		v.Errors = append(v.Errors, "metadata.name must be lowercase alphanumeric with hyphens")
	}

	if m.Spec.AppInfo.AppNS != "" && m.Metadata.Namespace != "" && m.Spec.AppInfo.AppNS != m.Metadata.Namespace {
		v.Warnings = append(v.Warnings, fmt.Sprintf("spec.appinfo.appns '%s' differs from metadata.namespace '%s'", m.Spec.AppInfo.AppNS, m.Metadata.Namespace))
	}
}

func (v *Validator) validateExperiments(m *Manifest, experiment string) {
	if len(m.Spec.Experiments) == 0 {
		v.Warnings = append(v.Warnings, "spec.experiments is empty")
		return
	}

	// logs are selected by name=<experiment>, so the engine should run it
	for _, e := range m.Spec.Experiments {
		if e.Name == experiment {
			return
		}
	}
	v.Warnings = append(v.Warnings, fmt.Sprintf("spec.experiments does not include '%s'", experiment))
}
