package fetch

import "time"

// Observer receives fetch events.
type Observer interface {
	// OnFetch is called after every upstream request, err is nil on success.
	OnFetch(collection string, duration time.Duration, err error)

	// OnCacheLookup is called for every cache lookup.
	OnCacheLookup(collection string, hit bool)

	// OnBreakerStateChange is called when a collection's breaker changes state.
	OnBreakerStateChange(collection, from, to string)
}

// NoopObserver ignores every event.
type NoopObserver struct{}

func (NoopObserver) OnFetch(string, time.Duration, error)        {}
func (NoopObserver) OnCacheLookup(string, bool)                  {}
func (NoopObserver) OnBreakerStateChange(string, string, string) {}
