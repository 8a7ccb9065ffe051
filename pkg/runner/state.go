package runner

// State represents the progress of one experiment run
type State int

const (
	StateNotStarted State = iota
	StateDeployed
	StatePolling
	StateCompleted
	StateVerdictFetched
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "NOT_STARTED"
	case StateDeployed:
		return "DEPLOYED"
	case StatePolling:
		return "POLLING"
	case StateCompleted:
		return "COMPLETED"
	case StateVerdictFetched:
		return "VERDICT_FETCHED"
	case StateAborted:
		return "ABORTED"
	default:
		return "UNKNOWN"
	}
}

// IsTerminal returns true for VerdictFetched and Aborted
func (s State) IsTerminal() bool {
	return s == StateVerdictFetched || s == StateAborted
}
