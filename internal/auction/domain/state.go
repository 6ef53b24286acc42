package domain

// State represents the lifecycle state of an auction
type State string

const (
	StateDraft     State = "draft"
	StateActive    State = "active"
	StateClosed    State = "closed"
	StateSettled   State = "settled"
	StateCancelled State = "cancelled"
)

// transitions is the closed set of legal state changes. Draft exists only for
// the instant between construction and activation, auctions are always
// activated at creation. Settled and Cancelled are terminal.
var transitions = map[State][]State{
	StateDraft:  {StateActive},
	StateActive: {StateClosed, StateCancelled},
	StateClosed: {StateSettled},
}

// CanTransition reports whether from -> to is in the transition table
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transitions are possible from s
func IsTerminal(s State) bool {
	return len(transitions[s]) == 0
}
