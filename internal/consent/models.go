package consent

import (
	"time"

	"medivault/pkg/platform/sentinel"
)

// State is a session's consent position. Every protected operation checks it;
// only Accepted opens the gate.
type State string

const (
	StateNotDecided State = "not_decided"
	StateAccepted   State = "accepted"
	StateDeclined   State = "declined"
	StateRevoked    State = "revoked"
)

// allowedTransitions is the whole state machine. Declined has no outgoing
// edges: it is terminal for the session.
var allowedTransitions = map[State][]State{
	StateNotDecided: {StateAccepted, StateDeclined},
	StateAccepted:   {StateRevoked},
	StateRevoked:    {StateAccepted},
	StateDeclined:   {},
}

// CanTransition reports whether moving from s to target is a legal edge.
func (s State) CanTransition(target State) bool {
	for _, allowed := range allowedTransitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// Decision is a session's current consent state with the time of its last
// transition. A session that has never decided holds the zero Decision with
// StateNotDecided.
type Decision struct {
	State     State
	DecidedAt time.Time
}

// transitionTo validates and applies one edge of the machine.
func (d Decision) transitionTo(target State, now time.Time) (Decision, error) {
	if !d.State.CanTransition(target) {
		return Decision{}, sentinel.ErrInvalidState
	}
	return Decision{State: target, DecidedAt: now}, nil
}
