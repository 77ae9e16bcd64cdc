// Package conversation implements the per-user dialogue state machine:
// onboarding of new citizens, clarification round-trips, and profile
// updates. Resolution itself happens elsewhere; the machine only decides
// what each inbound message means in the current state.
package conversation

// State is the dialogue state of one user.
type State string

const (
	// StateNew is a user with no stored profile and no session.
	StateNew State = "NEW"
	// StateAwaitingName through StateAwaitingLanguage are the onboarding
	// steps, always traversed in this order.
	StateAwaitingName     State = "AWAITING_NAME"
	StateAwaitingAddress  State = "AWAITING_ADDRESS"
	StateAwaitingCity     State = "AWAITING_CITY"
	StateAwaitingState    State = "AWAITING_STATE"
	StateAwaitingLanguage State = "AWAITING_LANGUAGE"
	// StateActive is a fully onboarded user; messages are service queries.
	StateActive State = "ACTIVE"
	// StateAwaitingClarification holds a low-confidence query until the
	// user adds detail.
	StateAwaitingClarification State = "AWAITING_CLARIFICATION"
)

// transitions is the allowed state graph. Any transition not listed here
// is a bug, not user error.
var transitions = map[State][]State{
	StateNew:                   {StateAwaitingName},
	StateAwaitingName:          {StateAwaitingName, StateAwaitingAddress},
	StateAwaitingAddress:       {StateAwaitingAddress, StateAwaitingCity},
	StateAwaitingCity:          {StateAwaitingCity, StateAwaitingState},
	StateAwaitingState:         {StateAwaitingState, StateAwaitingLanguage},
	StateAwaitingLanguage:      {StateAwaitingLanguage, StateActive},
	StateActive:                {StateActive, StateAwaitingClarification},
	StateAwaitingClarification: {StateActive},
}

// CanTransition reports whether moving from one state to another is allowed.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
