// Package deploy brings the application under test up and down.
//
// Steps run in a fixed order and a failing step never stops the sequence:
// kubectl failures are recorded in the audit log and logged, nothing more.
package deploy

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/jihwankim/litmus-runner/pkg/kubectl"
	"github.com/jihwankim/litmus-runner/pkg/reporting"
)

// Config locates the manifests to apply
type Config struct {
	ApplicationDir string
	Manifests      []string
	CatalogURL     string
}

// Deployer runs the start and stop sequences
type Deployer struct {
	client   *kubectl.Client
	console  *reporting.Console
	logger   *reporting.Logger
	config   Config
	auditLog []AuditEntry
}

// AuditEntry records one step
type AuditEntry struct {
	Timestamp time.Time
	Action    string
	Target    string
	Success   bool
	Error     error
}

type step struct {
	action string
	target string
	run    func(ctx context.Context) error
}

// New creates a new deployer
func New(client *kubectl.Client, console *reporting.Console, logger *reporting.Logger, config Config) *Deployer {
	return &Deployer{
		client:   client,
		console:  console,
		logger:   logger,
		config:   config,
		auditLog: make([]AuditEntry, 0),
	}
}

// Start applies the application manifests and the experiment catalog,
// then shows the ingress details
func (d *Deployer) Start(ctx context.Context) error {
	steps := make([]step, 0, len(d.config.Manifests)+1)
	for _, path := range d.manifestPaths() {
		steps = append(steps, d.applyStep(path))
	}
	if d.config.CatalogURL != "" {
		steps = append(steps, d.applyStep(d.config.CatalogURL))
	}

	if err := d.runSteps(ctx, steps); err != nil {
		return err
	}

	d.console.Heading("Ingress Details")
	err := d.runSteps(ctx, []step{{
		action: "get",
		target: "ingress",
		run:    func(ctx context.Context) error { return d.client.Get(ctx, "ingress") },
	}})

	d.logger.Info("Start sequence finished", "summary", d.Summary().String())
	return err
}

// Stop deletes the application manifests in the order they were applied
func (d *Deployer) Stop(ctx context.Context) error {
	steps := make([]step, 0, len(d.config.Manifests))
	for _, path := range d.manifestPaths() {
		steps = append(steps, step{
			action: "delete",
			target: path,
			run:    func(ctx context.Context) error { return d.client.Delete(ctx, path) },
		})
	}

	err := d.runSteps(ctx, steps)
	d.logger.Info("Stop sequence finished", "summary", d.Summary().String())
	return err
}

func (d *Deployer) applyStep(target string) step {
	return step{
		action: "apply",
		target: target,
		run:    func(ctx context.Context) error { return d.client.Apply(ctx, target) },
	}
}

func (d *Deployer) manifestPaths() []string {
	paths := make([]string, len(d.config.Manifests))
	for i, m := range d.config.Manifests {
		paths[i] = filepath.Join(d.config.ApplicationDir, m)
	}
	return paths
}

// runSteps runs every step in order. Only cancellation ends the sequence early.
func (d *Deployer) runSteps(ctx context.Context, steps []step) error {
	for i, s := range steps {
		if err := ctx.Err(); err != nil {
			d.logger.Warn("Sequence cancelled, skipping remaining steps", "remaining", len(steps)-i)
			return err
		}

		err := s.run(ctx)
		d.logAudit(s.action, s.target, err)
		if err != nil {
			d.logger.Warn("Step failed, continuing", "action", s.action, "target", s.target, "error", err)
		}
	}
	return nil
}

func (d *Deployer) logAudit(action, target string, err error) {
	d.auditLog = append(d.auditLog, AuditEntry{
		Timestamp: time.Now(),
		Action:    action,
		Target:    target,
		Success:   err == nil,
		Error:     err,
	})
}

// AuditLog returns the recorded steps
func (d *Deployer) AuditLog() []AuditEntry {
	return d.auditLog
}

// Summary counts the recorded steps
func (d *Deployer) Summary() Summary {
	summary := Summary{Total: len(d.auditLog)}
	for _, entry := range d.auditLog {
		if entry.Success {
			summary.Succeeded++
		} else {
			summary.Failed++
		}
	}
	return summary
}

// Summary contains step statistics
type Summary struct {
	Total     int
	Succeeded int
	Failed    int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d steps, %d succeeded, %d failed", s.Total, s.Succeeded, s.Failed)
}
