package loader

// Observer receives loader lifecycle events.
type Observer interface {
	// OnPrepare is called when Prepare returns.
	OnPrepare(collection string, exec ExecContext, state State)

	// OnTransition is called after a view changes state.
	OnTransition(collection string, from, to State)

	// OnDiscard is called when a fetch completes after its view unmounted.
	OnDiscard(collection string)
}

// NoopObserver ignores every event.
type NoopObserver struct{}

func (NoopObserver) OnPrepare(string, ExecContext, State) {}
func (NoopObserver) OnTransition(string, State, State)    {}
func (NoopObserver) OnDiscard(string)                     {}
