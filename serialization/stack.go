package serialization

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Handle identifies a context inside a ContextStack.
type Handle int

// NoHandle is the parent handle of a root context.
const NoHandle Handle = -1

type stackNode struct {
	ctx    *ContextInfo
	parent Handle
}

// ContextStack is the chain of contexts of one serialization operation.
//
// Contexts live in an arena owned by the stack and refer to their parent by
// handle. A handle is valid while its context is open; popping releases the
// slot and a later Push may reuse it.
// A ContextStack must not be shared between goroutines.
type ContextStack struct {
	id      uuid.UUID
	nodes   []stackNode
	open    []Handle
	log     logrus.FieldLogger
	metrics *Metrics
}

// NewContextStack creates an empty stack with a fresh operation ID.
func NewContextStack() *ContextStack {
	return newContextStack(logrus.StandardLogger(), nil)
}

func newContextStack(log logrus.FieldLogger, metrics *Metrics) *ContextStack {
	id := uuid.New()
	return &ContextStack{
		id:      id,
		log:     log.WithField("operation", id.String()),
		metrics: metrics,
	}
}

// ID returns the operation ID used in log entries.
func (s *ContextStack) ID() uuid.UUID {
	return s.id
}

// Depth returns the number of open contexts.
func (s *ContextStack) Depth() int {
	return len(s.open)
}

// Push attaches ctx below the current context and makes it current.
func (s *ContextStack) Push(ctx *ContextInfo) (Handle, error) {
	parent := NoHandle
	if n := len(s.open); n > 0 {
		parent = s.open[n-1]
	}
	return s.attachUnder(ctx, parent)
}

func (s *ContextStack) attachUnder(ctx *ContextInfo, parent Handle) (Handle, error) {
	if ctx == nil {
		return NoHandle, &ArgumentError{Arg: "ctx"}
	}
	if parent != NoHandle && (parent < 0 || int(parent) >= len(s.nodes)) {
		return NoHandle, &ArgumentError{Arg: "parent", Reason: "unknown handle"}
	}

	h := Handle(len(s.nodes))
	s.nodes = append(s.nodes, stackNode{ctx: ctx, parent: parent})

	// OnContextUpdated may panic; the slot is released either way.
	attached := false
	defer func() {
		if !attached {
			s.release(h)
		}
	}()

	before := ctx.knownTypes.Len()
	if err := ctx.OnContextUpdated(stackScope{stack: s, handle: h}); err != nil {
		return NoHandle, err
	}
	attached = true
	s.open = append(s.open, h)

	s.metrics.contextAttached(ctx.knownTypes.Len() - before)
	s.log.WithFields(logrus.Fields{
		"depth":       len(s.open),
		"element":     ctx.element.Name(),
		"known_types": ctx.knownTypes.Len(),
	}).Debug("context attached")

	return h, nil
}

// Pop discards the current context and returns it.
func (s *ContextStack) Pop() (*ContextInfo, error) {
	n := len(s.open)
	if n == 0 {
		return nil, ErrInvalidOperation
	}

	h := s.open[n-1]
	s.open = s.open[:n-1]
	ctx := s.nodes[h].ctx
	ctx.discard()
	s.release(h)

	s.log.WithFields(logrus.Fields{
		"depth":    n,
		"element":  ctx.element.Name(),
		"children": len(ctx.element.children),
	}).Debug("context discarded")
	return ctx, nil
}

// release drops the slot of h. Push and Pop are LIFO, so h is always the
// last slot of the arena.
func (s *ContextStack) release(h Handle) {
	s.nodes[h] = stackNode{}
	s.nodes = s.nodes[:h]
}

// Current returns the innermost open context.
func (s *ContextStack) Current() (*ContextInfo, bool) {
	n := len(s.open)
	if n == 0 {
		return nil, false
	}
	return s.nodes[s.open[n-1]].ctx, true
}

// Context returns the context stored under h.
func (s *ContextStack) Context(h Handle) (*ContextInfo, bool) {
	if h < 0 || int(h) >= len(s.nodes) {
		return nil, false
	}
	return s.nodes[h].ctx, true
}

// Parent returns the handle of the parent of h.
func (s *ContextStack) Parent(h Handle) (Handle, bool) {
	if h < 0 || int(h) >= len(s.nodes) {
		return NoHandle, false
	}
	p := s.nodes[h].parent
	return p, p != NoHandle
}

type stackScope struct {
	stack  *ContextStack
	handle Handle
}

func (s stackScope) Context() *ContextInfo {
	ctx, _ := s.stack.Context(s.handle)
	return ctx
}

func (s stackScope) Parent() (Scope, bool) {
	p, ok := s.stack.Parent(s.handle)
	if !ok {
		return nil, false
	}
	return stackScope{stack: s.stack, handle: p}, true
}
