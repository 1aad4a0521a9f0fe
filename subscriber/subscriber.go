// Package subscriber keeps the table of everything that can receive a change
// notification, keyed by a small integer identity.
package subscriber

// ID identifies a subscriber. IDs are handed out by a Registry and are never
// reused by that Registry.
type ID int

// Unassigned is the ID of a property that has no owning subscriber.
const Unassigned ID = -1

// Subscriber is anything that can be linked to an observed property.
type Subscriber interface {
	ID() ID
	// AboutToBeDeleted is called before the subscriber is dropped. It must
	// detach from every source it subscribed to.
	AboutToBeDeleted()
}

// PropertyChanged is a multi-property subscriber, typically a UI component.
// It learns which property changed by name but not the new value.
type PropertyChanged interface {
	Subscriber
	PropertyHasChanged(info string)
}

// ValueChanged is a single-property subscriber, typically another property
// forwarding changes downstream. It receives the new value.
type ValueChanged[T any] interface {
	Subscriber
	HasChanged(newValue T)
}
