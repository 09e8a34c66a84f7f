package components

import (
	"leakctl/internal/app"
	"leakctl/internal/events"
)

const (
	LeakingName = "leaking-component"
	CleanName   = "clean-component"
	StaticName  = "static-component"
)

// LeakingComponent listens for window resizes through a closure that captures
// its owner and forgets to unsubscribe on destroy.
type LeakingComponent struct {
	owner   *app.Instance
	bus     *events.Bus
	resizes int
}

func newLeaking(owner *app.Instance, bus *events.Bus) Component {
	c := &LeakingComponent{owner: owner, bus: bus}
	bus.Subscribe(events.FilterByType(events.EventTypeWindowResize), func(events.Event) {
		c.resizes++
		c.owner.Register("last-resize-seen-by", LeakingName)
	})
	return c
}

func (c *LeakingComponent) Name() string { return LeakingName }

// Resizes reports how many resize events the component handled.
func (c *LeakingComponent) Resizes() int { return c.resizes }

func (c *LeakingComponent) Destroy() {
	c.bus.Publish(events.NewEvent(events.EventTypeComponentDestroyed, LeakingName))
}

// CleanComponent subscribes the same listener and removes it on destroy.
type CleanComponent struct {
	owner   *app.Instance
	bus     *events.Bus
	sub     *events.Subscription
	resizes int
}

func newClean(owner *app.Instance, bus *events.Bus) Component {
	c := &CleanComponent{owner: owner, bus: bus}
	c.sub = bus.Subscribe(events.FilterByType(events.EventTypeWindowResize), func(events.Event) {
		c.resizes++
		c.owner.Register("last-resize-seen-by", CleanName)
	})
	return c
}

func (c *CleanComponent) Name() string { return CleanName }

// Resizes reports how many resize events the component handled.
func (c *CleanComponent) Resizes() int { return c.resizes }

func (c *CleanComponent) Destroy() {
	c.bus.Unsubscribe(c.sub)
	c.sub = nil
	c.owner = nil
	c.bus.Publish(events.NewEvent(events.EventTypeComponentDestroyed, CleanName))
}

// StaticComponent renders without listeners.
type StaticComponent struct{}

func newStatic(*app.Instance, *events.Bus) Component { return &StaticComponent{} }

func (c *StaticComponent) Name() string { return StaticName }
func (c *StaticComponent) Destroy()     {}
