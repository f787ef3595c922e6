package loader

import (
	"context"
	"sync"

	"github.com/getmockd/recordsd/pkg/records"
)

// Snapshot is a point-in-time copy of a view's state.
type Snapshot struct {
	ID         string
	Collection string
	State      State
	Records    []records.Record
	Err        error
}

// Record returns the first record, for detail pages.
func (s Snapshot) Record() (records.Record, bool) {
	if len(s.Records) == 0 {
		return records.Record{}, false
	}
	return s.Records[0], true
}

// View is the state of a single page activation.
type View struct {
	id     string
	query  Query
	loader *Loader

	mu        sync.Mutex
	state     State
	records   []records.Record
	err       error
	started   bool
	unmounted bool
	cancel    context.CancelFunc
	listeners []func(Snapshot)

	done     chan struct{}
	doneOnce sync.Once
}

// ID returns the activation id.
func (v *View) ID() string {
	return v.id
}

// Query returns the query the view was activated with.
func (v *View) Query() Query {
	return v.query
}

// Snapshot returns the current state.
func (v *View) Snapshot() Snapshot {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snapshotLocked()
}

func (v *View) snapshotLocked() Snapshot {
	return Snapshot{
		ID:         v.id,
		Collection: v.query.Collection,
		State:      v.state,
		Records:    v.records,
		Err:        v.err,
	}
}

// Done is closed once the view has settled or unmounted.
func (v *View) Done() <-chan struct{} {
	return v.done
}

// OnChange registers fn to be called after every state transition.
func (v *View) OnChange(fn func(Snapshot)) {
	if fn == nil {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listeners = append(v.listeners, fn)
}

// OnMount starts the background fetch of an empty view. It does nothing for
// any other state, after unmount, or when a fetch was already started.
func (v *View) OnMount(ctx context.Context) {
	v.mu.Lock()
	if v.unmounted || v.started || v.state != StateEmpty {
		v.mu.Unlock()
		return
	}
	v.started = true
	fetchCtx, cancel := context.WithCancel(ctx)
	v.cancel = cancel
	v.mu.Unlock()

	go func() {
		defer cancel()
		recs, err := v.loader.fetch(fetchCtx, v.query)
		v.complete(recs, err)
	}()
}

// Unmount cancels any pending fetch. A result arriving afterwards is
// discarded. Calling Unmount more than once is safe.
func (v *View) Unmount() {
	v.mu.Lock()
	if v.unmounted {
		v.mu.Unlock()
		return
	}
	v.unmounted = true
	cancel := v.cancel
	v.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	v.settle()
}

func (v *View) complete(recs []records.Record, err error) {
	to := StateHydrated
	if err != nil {
		to = StateFailed
	}

	v.mu.Lock()
	if v.unmounted {
		v.mu.Unlock()
		v.loader.observer.OnDiscard(v.query.Collection)
		v.loader.log.Debug("discarded late page data", "collection", v.query.Collection, "view", v.id)
		return
	}
	from := v.state
	if terr := Transition(from, to); terr != nil {
		v.mu.Unlock()
		v.loader.log.Error("view transition rejected", "view", v.id, "error", terr)
		return
	}
	v.state = to
	v.records = recs
	v.err = err
	snap := v.snapshotLocked()
	listeners := append([]func(Snapshot){}, v.listeners...)
	v.mu.Unlock()

	v.loader.observer.OnTransition(v.query.Collection, from, to)
	for _, fn := range listeners {
		fn(snap)
	}
	v.settle()
}

func (v *View) settle() {
	v.doneOnce.Do(func() { close(v.done) })
}
