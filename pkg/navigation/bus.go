package navigation

import "sync"

// EventKind identifies a route event.
type EventKind int

const (
	RouteChangeStart EventKind = iota
	RouteChangeComplete
	RouteChangeError
)

func (k EventKind) String() string {
	switch k {
	case RouteChangeStart:
		return "routeChangeStart"
	case RouteChangeComplete:
		return "routeChangeComplete"
	case RouteChangeError:
		return "routeChangeError"
	default:
		return "unknown"
	}
}

// Event is a route change notification.
type Event struct {
	Kind EventKind
	URL  string
	// Location is set on RouteChangeComplete.
	Location Location
	// Err is set on RouteChangeError.
	Err error
}

// Handler receives route events.
type Handler func(Event)

// Token identifies a subscription.
type Token uint64

type subscription struct {
	token   Token
	kind    EventKind
	handler Handler
}

// Bus delivers route events to subscribers synchronously, in subscription
// order.
type Bus struct {
	mu   sync.Mutex
	next Token
	subs []subscription
}

// NewBus creates an empty Bus.
func NewBus() *Bus {
	return &Bus{}
}

// Subscribe registers h for events of kind.
func (b *Bus) Subscribe(kind EventKind, h Handler) Token {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.next++
	b.subs = append(b.subs, subscription{token: b.next, kind: kind, handler: h})
	return b.next
}

// Unsubscribe removes a subscription. Unknown tokens are ignored.
func (b *Bus) Unsubscribe(t Token) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i, s := range b.subs {
		if s.token == t {
			b.subs = append(b.subs[:i:i], b.subs[i+1:]...)
			return
		}
	}
}

// Subscribers returns the number of subscriptions for kind.
func (b *Bus) Subscribers(kind EventKind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, s := range b.subs {
		if s.kind == kind {
			n++
		}
	}
	return n
}

// Publish delivers e to every current subscriber of its kind. Handlers may
// subscribe or unsubscribe while being called.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	var handlers []Handler
	for _, s := range b.subs {
		if s.kind == e.Kind {
			handlers = append(handlers, s.handler)
		}
	}
	b.mu.Unlock()

	for _, h := range handlers {
		h(e)
	}
}
