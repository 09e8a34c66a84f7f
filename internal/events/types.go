package events

import "time"

// EventType defines the type of event
type EventType string

const (
	// Component lifecycle events
	EventTypeComponentRendered  EventType = "component.rendered"
	EventTypeComponentDestroyed EventType = "component.destroyed"

	// Owner lifecycle events
	EventTypeOwnerBooted    EventType = "owner.booted"
	EventTypeOwnerDestroyed EventType = "owner.destroyed"

	// Application-level signals components commonly listen to
	EventTypeWindowResize EventType = "window.resize"
	EventTypeRouteChange  EventType = "route.change"
)

// Event is a single notification published on a Bus.
type Event struct {
	Type      EventType
	Source    string
	Timestamp time.Time
	Payload   map[string]interface{}
}

// NewEvent creates an event stamped with the current time.
func NewEvent(eventType EventType, source string) Event {
	return Event{
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now(),
	}
}

// WithPayload attaches a key/value pair to the event.
func (e Event) WithPayload(key string, value interface{}) Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value
	e.Payload = payload
	return e
}

// EventHandler is a function that processes events
type EventHandler func(Event)

// EventFilter is a function that determines if an event should be processed
type EventFilter func(Event) bool

// FilterByType creates a filter that matches events of specific types
func FilterByType(eventTypes ...EventType) EventFilter {
	typeMap := make(map[EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		typeMap[t] = true
	}
	return func(event Event) bool {
		return typeMap[event.Type]
	}
}

// FilterBySource creates a filter that matches events from specific sources
func FilterBySource(sources ...string) EventFilter {
	sourceMap := make(map[string]bool, len(sources))
	for _, s := range sources {
		sourceMap[s] = true
	}
	return func(event Event) bool {
		return sourceMap[event.Source]
	}
}

// CombineFilters combines multiple filters with AND logic
func CombineFilters(filters ...EventFilter) EventFilter {
	return func(event Event) bool {
		for _, filter := range filters {
			if !filter(event) {
				return false
			}
		}
		return true
	}
}
