package experiment

// Phase is the status the chaos operator reports for an engine's experiment
type Phase int

const (
	PhaseUnknown Phase = iota
	PhaseWaiting
	PhaseRunning
	PhaseCompleted
	PhaseStopped
	PhaseAborted
	PhaseFailed
)

var phaseNames = map[Phase]string{
	PhaseUnknown:   "Unknown",
	PhaseWaiting:   "Waiting for Job Creation",
	PhaseRunning:   "Running",
	PhaseCompleted: "Completed",
	PhaseStopped:   "Stopped",
	PhaseAborted:   "Aborted",
	PhaseFailed:    "Failed",
}

// String returns the operator's spelling of the phase
func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return "Unknown"
}

// IsTerminal reports whether polling should stop. Only Completed ends a run;
// every other phase is polled until the policy ceiling.
func (p Phase) IsTerminal() bool {
	return p == PhaseCompleted
}

// ParsePhase maps a raw status to a phase. Matching is exact; anything
// unrecognised, including the empty string, is PhaseUnknown.
func ParsePhase(status string) Phase {
	for phase, name := range phaseNames {
		if phase != PhaseUnknown && name == status {
			return phase
		}
	}
	return PhaseUnknown
}
