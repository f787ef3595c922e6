package loader

import "fmt"

// ExecContext tells Prepare where a page is being activated.
type ExecContext int

const (
	// ServerContext is the initial activation of a URL.
	ServerContext ExecContext = iota
	// ClientContext is an activation caused by in-session navigation.
	ClientContext
)

func (c ExecContext) String() string {
	switch c {
	case ServerContext:
		return "server"
	case ClientContext:
		return "client"
	default:
		return fmt.Sprintf("ExecContext(%d)", int(c))
	}
}

// Strategy selects when a page fetches its data.
type Strategy int

const (
	// DualMode fetches during Prepare in server context, and after mount in
	// client context.
	DualMode Strategy = iota
	// Blocking always fetches during Prepare.
	Blocking
)

func (s Strategy) String() string {
	switch s {
	case DualMode:
		return "dual-mode"
	case Blocking:
		return "blocking"
	default:
		return fmt.Sprintf("Strategy(%d)", int(s))
	}
}

// State is the data state of a view.
type State int

const (
	// StateEmpty is the placeholder state awaiting a background fetch.
	StateEmpty State = iota
	// StateLoaded holds data fetched during Prepare.
	StateLoaded
	// StateHydrated holds data fetched after mount.
	StateHydrated
	// StateFailed holds the error of a failed fetch.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateLoaded:
		return "loaded"
	case StateHydrated:
		return "hydrated"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Settled reports whether s is terminal.
func (s State) Settled() bool {
	return s != StateEmpty
}

var transitions = map[State][]State{
	StateEmpty: {StateHydrated, StateFailed},
}

// Transition validates a state change.
func Transition(from, to State) error {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, from, to)
}
