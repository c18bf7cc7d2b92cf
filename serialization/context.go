package serialization

import (
	"fmt"
	"reflect"
)

// State is the lifecycle position of a ContextInfo.
type State int

const (
	StateConstructed State = iota
	StateAttached
	StateActive
	StateDiscarded
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateAttached:
		return "attached"
	case StateActive:
		return "active"
	case StateDiscarded:
		return "discarded"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Scope is the view of a context stack handed to a context when it is
// attached.
type Scope interface {
	// Context returns the context at this position of the stack.
	Context() *ContextInfo

	// Parent returns the enclosing position, if any.
	Parent() (Scope, bool)
}

// ContextInfo holds the state of one serialization boundary: the element
// being read or written, the model and the types known at this level.
//
// A ContextInfo belongs to a single serialization operation and is not safe
// for concurrent use.
type ContextInfo struct {
	element    *Element
	model      any
	knownTypes *KnownTypeSet
	state      State
}

func newContextInfo(element *Element, model any) *ContextInfo {
	return &ContextInfo{
		element:    element,
		model:      model,
		knownTypes: NewKnownTypeSet(),
	}
}

func (c *ContextInfo) Element() *Element {
	return c.element
}

// Model returns the model being serialized. It is nil only for value
// placeholders.
func (c *ContextInfo) Model() any {
	return c.model
}

func (c *ContextInfo) State() State {
	return c.state
}

// KnownTypes returns a copy of the types known at this level.
func (c *ContextInfo) KnownTypes() *KnownTypeSet {
	return c.knownTypes.Clone()
}

// AddKnownType records a type resolved at this level. Contexts attached
// below this one afterwards inherit it.
func (c *ContextInfo) AddKnownType(t reflect.Type) bool {
	return c.knownTypes.Add(t)
}

// LookupKnownType finds a known type by element name.
func (c *ContextInfo) LookupKnownType(name string) (reflect.Type, bool) {
	return c.knownTypes.ByName(name)
}

// OnContextUpdated is called once, when the context is attached to a stack.
// The parent's known types, as they are at this moment, are merged in;
// later additions to the parent are not seen.
//
// A context that is its own parent means the stack was built incorrectly;
// OnContextUpdated panics with an *InvariantViolation in that case.
func (c *ContextInfo) OnContextUpdated(scope Scope) error {
	if scope == nil {
		return &ArgumentError{Arg: "scope"}
	}

	parent, hasParent := scope.Parent()
	var parentContext *ContextInfo
	if hasParent {
		parentContext = parent.Context()
	}
	if parentContext == c {
		panic(&InvariantViolation{Msg: "context is its own parent"})
	}

	if c.state != StateConstructed {
		return &StateError{From: c.state, To: StateAttached}
	}

	if parentContext != nil {
		c.knownTypes.Union(parentContext.knownTypes)
	}
	c.state = StateAttached
	return nil
}

// Activate marks an attached context as in use. Calling it on an active
// context is a no-op.
func (c *ContextInfo) Activate() error {
	switch c.state {
	case StateActive:
		return nil
	case StateAttached:
		c.state = StateActive
		return nil
	}
	return &StateError{From: c.state, To: StateActive}
}

func (c *ContextInfo) discard() {
	c.state = StateDiscarded
}
