package loader

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/recordsd/pkg/fetch"
	"github.com/getmockd/recordsd/pkg/logging"
	"github.com/getmockd/recordsd/pkg/records"
)

// Query describes the data a page needs.
type Query struct {
	Collection string
	Filter     records.Filter
	// Single marks detail pages that use the first matching record only.
	Single   bool
	Strategy Strategy
}

// InitialData is the result of Prepare.
type InitialData struct {
	State   State
	Records []records.Record
	Err     error
}

// Loader prepares page data and creates views.
type Loader struct {
	fetcher  fetch.Fetcher
	observer Observer
	log      *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(l *Loader) {
		if o != nil {
			l.observer = o
		}
	}
}

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(l *Loader) {
		if log != nil {
			l.log = log
		}
	}
}

// New creates a Loader that fetches through f.
func New(f fetch.Fetcher, opts ...Option) *Loader {
	l := &Loader{
		fetcher:  f,
		observer: NoopObserver{},
		log:      logging.Nop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Prepare produces the initial data of an activation. In server context, or
// for the Blocking strategy, it fetches synchronously and never returns the
// empty state. Otherwise it returns the empty placeholder without fetching.
func (l *Loader) Prepare(ctx context.Context, exec ExecContext, q Query) InitialData {
	var initial InitialData
	if exec == ClientContext && q.Strategy == DualMode {
		initial = InitialData{State: StateEmpty}
	} else {
		recs, err := l.fetch(ctx, q)
		if err != nil {
			initial = InitialData{State: StateFailed, Err: err}
		} else {
			initial = InitialData{State: StateLoaded, Records: recs}
		}
	}

	l.observer.OnPrepare(q.Collection, exec, initial.State)
	l.log.Debug("page data prepared",
		"collection", q.Collection,
		"context", exec.String(),
		"strategy", q.Strategy.String(),
		"state", initial.State.String(),
	)
	return initial
}

// Activate creates the view state of one page activation.
func (l *Loader) Activate(q Query, initial InitialData) *View {
	v := &View{
		id:      uuid.NewString(),
		query:   q,
		loader:  l,
		state:   initial.State,
		records: initial.Records,
		err:     initial.Err,
		done:    make(chan struct{}),
	}
	if initial.State.Settled() {
		v.settle()
	}
	return v
}

func (l *Loader) fetch(ctx context.Context, q Query) ([]records.Record, error) {
	start := time.Now()
	recs, err := l.fetcher.Fetch(ctx, q.Collection, q.Filter)
	if err != nil {
		l.log.Warn("page data fetch failed", "collection", q.Collection, "filter", q.Filter.String(), "error", err)
		return nil, &FetchFailedError{Collection: q.Collection, Err: err}
	}
	if recs == nil {
		recs = []records.Record{}
	}
	if q.Single && len(recs) > 1 {
		recs = recs[:1]
	}
	l.log.Debug("page data fetched", "collection", q.Collection, "count", len(recs), "duration", time.Since(start))
	return recs, nil
}
