package query

import "time"

// Observer receives notifications about served queries.
type Observer interface {
	// OnList is called after a collection query was answered.
	OnList(collection string, count int, duration time.Duration)

	// OnRejected is called when a request used a method other than GET.
	OnRejected(collection string, method string)
}

// NoopObserver discards all notifications.
type NoopObserver struct{}

func (NoopObserver) OnList(string, int, time.Duration) {}
func (NoopObserver) OnRejected(string, string)         {}
