package eventbus

// Event represents an arbitrary event passed on the bus.
type Event interface{}

// EventBus is the untyped publish/subscribe contract used by the fare
// pipeline. Consumers switch on the concrete event type.
type EventBus interface {
	Publish(Event)
	Subscribe() <-chan Event
	Unsubscribe(<-chan Event)
	Close()
}

// Bus is the default EventBus implementation.
type Bus = TypedBus[Event]

// New creates a new Bus with the default subscriber buffer.
func New() *Bus { return NewTyped[Event]() }

// NewWithBuffer creates a Bus whose subscriber channels hold size events.
func NewWithBuffer(size int) *Bus { return NewTypedWithBuffer[Event](size) }
