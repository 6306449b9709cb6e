package installation

type EventType int

const (
	EventShapeChanged EventType = iota
	EventMuteChanged
	EventOnset
	EventMicChanged
	EventTrackingChanged
	EventTrackerChanged
)

type Event struct {
	Type  EventType
	Shape Shape
	Muted bool
	Onset OnsetEvent
	Mic   MicState
	Hand  bool

	Tracker TrackerState
	Err     error
}

type EventHandler func(Event)

// EventBus is a synchronous fan-out used on the frame thread only.
type EventBus struct {
	handlers map[EventType][]EventHandler
}

func NewEventBus() *EventBus {
	return &EventBus{
		handlers: make(map[EventType][]EventHandler),
	}
}

func (eb *EventBus) Subscribe(t EventType, fn EventHandler) {
	eb.handlers[t] = append(eb.handlers[t], fn)
}

func (eb *EventBus) Emit(e Event) {
	if eb == nil {
		return
	}
	for _, fn := range eb.handlers[e.Type] {
		fn(e)
	}
}
