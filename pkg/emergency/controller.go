package emergency

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/jihwankim/litmus-runner/pkg/reporting"
)

// Controller turns an interrupt signal or the appearance of a stop file
// into the cancellation of a context
type Controller struct {
	stopFile       string
	stopped        bool
	reason         string
	mutex          sync.RWMutex
	callbacks      []func()
	pollInterval   time.Duration
	signalHandlers bool
	logger         *reporting.Logger
}

// Config contains emergency controller configuration
type Config struct {
	// StopFile is the path to watch for emergency stop
	StopFile string

	// PollInterval for checking stop file
	PollInterval time.Duration

	// EnableSignalHandlers enables SIGINT/SIGTERM handling
	EnableSignalHandlers bool
}

// New creates a new emergency controller
func New(config Config, logger *reporting.Logger) *Controller {
	if config.StopFile == "" {
		config.StopFile = "/tmp/litmus-runner-stop"
	}

	if config.PollInterval == 0 {
		config.PollInterval = 1 * time.Second
	}

	return &Controller{
		stopFile:       config.StopFile,
		callbacks:      make([]func(), 0),
		pollInterval:   config.PollInterval,
		signalHandlers: config.EnableSignalHandlers,
		logger:         logger,
	}
}

// Start begins monitoring for stop conditions. The returned context is
// cancelled when a stop is triggered or parent is done; the watchers exit
// with it. Signal handlers are installed before Start returns.
func (c *Controller) Start(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	c.OnStop(cancel)

	go c.watchStopFile(ctx)

	if c.signalHandlers {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		go c.watchSignals(ctx, sigCh)
	}

	return ctx
}

func (c *Controller) watchStopFile(ctx context.Context) {
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if c.checkStopFile() {
				c.triggerStop(fmt.Sprintf("stop file detected: %s", c.stopFile))
				return
			}
		}
	}
}

// watchSignals handles the first SIGINT/SIGTERM. Notification is reset
// afterwards so a second signal terminates the process.
func (c *Controller) watchSignals(ctx context.Context, sigCh chan os.Signal) {
	defer signal.Stop(sigCh)

	select {
	case <-ctx.Done():
	case sig := <-sigCh:
		c.triggerStop(fmt.Sprintf("signal: %v", sig))
	}
}

func (c *Controller) checkStopFile() bool {
	_, err := os.Stat(c.stopFile)
	return err == nil
}

func (c *Controller) triggerStop(reason string) {
	c.mutex.Lock()
	if c.stopped {
		c.mutex.Unlock()
		return
	}
	c.stopped = true
	c.reason = reason
	callbacks := append([]func(){}, c.callbacks...)
	c.mutex.Unlock()

	c.logger.Warn("Emergency stop triggered", "reason", reason)

	for i, callback := range callbacks {
		c.logger.Debug("Executing stop callback", "index", i+1, "total", len(callbacks))
		callback()
	}
}

// IsStopped returns true if emergency stop has been triggered
func (c *Controller) IsStopped() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.stopped
}

// Reason returns why the stop was triggered, or "" if it was not
func (c *Controller) Reason() string {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.reason
}

// OnStop registers a callback to execute when stop is triggered
func (c *Controller) OnStop(callback func()) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.callbacks = append(c.callbacks, callback)
}

// StopFileExists reports whether the stop file is present. A file left over
// from an earlier stop would cancel the next run within one poll interval.
func (c *Controller) StopFileExists() bool {
	return c.checkStopFile()
}

// CreateStopFile creates the emergency stop file
func (c *Controller) CreateStopFile() error {
	content := fmt.Sprintf("Emergency stop requested at %s\n", time.Now().Format(time.RFC3339))
	if err := os.WriteFile(c.stopFile, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to create stop file: %w", err)
	}
	return nil
}

// RemoveStopFile removes the emergency stop file
func (c *Controller) RemoveStopFile() error {
	err := os.Remove(c.stopFile)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stop file: %w", err)
	}
	return nil
}

// StopFilePath returns the path to the stop file
func (c *Controller) StopFilePath() string {
	return c.stopFile
}
