package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus is the publish/subscribe contract used by the solver and the
// collectors.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the untyped bus carrying solver events of any kind.
type Bus = TypedBus[Event]

// New creates a new Bus.
func New() *Bus { return NewTyped[Event]() }

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(Event) {}

func (Nop) Subscribe() <-chan Event {
	ch := make(chan Event)
	close(ch)
	return ch
}

func (Nop) Unsubscribe(<-chan Event) {}
func (Nop) Close()                   {}
