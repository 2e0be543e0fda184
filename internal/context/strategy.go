package context

// Strategy decides how contexts evolve at call and allocation events.
// One strategy instance is shared by the whole analysis run; all
// implementations are stateless.
type Strategy interface {
	// AtCall derives the callee context from the caller context and
	// the call site being crossed.
	AtCall(caller *Context, site CallSite) *Context

	// AtAllocation derives the heap context of a new abstract object
	// from the allocating context, the object's path and its type.
	AtAllocation(alloc *Context, obj ObjectPath, typ TypeElem) *Context
}

// Insensitive analyzes every function and object in the single empty
// context.
type Insensitive struct{}

// AtCall implements Strategy.
func (Insensitive) AtCall(*Context, CallSite) *Context { return Empty() }

// AtAllocation implements Strategy.
func (Insensitive) AtAllocation(*Context, ObjectPath, TypeElem) *Context { return Empty() }

// CallString is k-CFA: the context is the window of the k most recent
// call sites. Heap contexts inherit the allocating call string,
// truncated to K.
type CallString struct{ K int }

// AtCall implements Strategy.
func (s CallString) AtCall(caller *Context, site CallSite) *Context {
	return NewKLimited(caller, site, s.K)
}

// AtAllocation implements Strategy.
func (s CallString) AtAllocation(alloc *Context, _ ObjectPath, _ TypeElem) *Context {
	return KLimited(alloc, s.K)
}

// ObjectSensitive contexts track the k most recent allocation-site
// paths; call sites only re-limit the inherited context.
type ObjectSensitive struct{ K int }

// AtCall implements Strategy.
func (s ObjectSensitive) AtCall(caller *Context, _ CallSite) *Context {
	return KLimited(caller, s.K)
}

// AtAllocation implements Strategy.
func (s ObjectSensitive) AtAllocation(alloc *Context, obj ObjectPath, _ TypeElem) *Context {
	return NewKLimited(alloc, obj, s.K)
}

// TypeSensitive is ObjectSensitive with type descriptors standing in
// for allocation sites.
type TypeSensitive struct{ K int }

// AtCall implements Strategy.
func (s TypeSensitive) AtCall(caller *Context, _ CallSite) *Context {
	return KLimited(caller, s.K)
}

// AtAllocation implements Strategy.
func (s TypeSensitive) AtAllocation(alloc *Context, _ ObjectPath, typ TypeElem) *Context {
	return NewKLimited(alloc, typ, s.K)
}

// HybridSensitive mixes call-site and object elements in one window:
// both events push, and the oldest element of either kind falls out.
type HybridSensitive struct{ K int }

// AtCall implements Strategy.
func (s HybridSensitive) AtCall(caller *Context, site CallSite) *Context {
	return NewKLimited(caller, HybridCall(site), s.K)
}

// AtAllocation implements Strategy.
func (s HybridSensitive) AtAllocation(alloc *Context, obj ObjectPath, _ TypeElem) *Context {
	return NewKLimited(alloc, HybridObject(obj), s.K)
}
