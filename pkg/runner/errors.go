package runner

import (
	"errors"

	"github.com/jihwankim/litmus-runner/pkg/experiment"
)

var (
	// ErrNotFound is returned when the experiment has no manifest
	ErrNotFound = experiment.ErrNotFound

	// ErrInvalidManifest is returned when the manifest cannot be used
	ErrInvalidManifest = experiment.ErrInvalidManifest

	// ErrPollFailed is returned when a status fetch fails or the poll ceiling is hit
	ErrPollFailed = errors.New("polling failed")

	// ErrPollTimeout is wrapped by ErrPollFailed when the poll ceiling is hit
	ErrPollTimeout = errors.New("poll ceiling reached before the experiment completed")

	// ErrCancelled is returned when the run is cancelled while polling or waiting
	ErrCancelled = errors.New("run cancelled")
)
