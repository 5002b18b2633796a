package report

import "fmt"

// State is the lifecycle of one computation.
type State string

const (
	StateIdle      State = "idle"
	StateLoading   State = "loading"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// IsTerminal reports whether no further transition is possible.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

func canTransition(from, to State) bool {
	switch from {
	case StateIdle:
		return to == StateLoading
	case StateLoading:
		return to == StateCompleted || to == StateFailed
	default:
		return false
	}
}

type TransitionError struct {
	From State
	To   State
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid state transition %s -> %s", e.From, e.To)
}
