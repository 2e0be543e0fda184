package context

import "strings"

// Context is an immutable, ordered sequence of context elements,
// most-recent-first. Contexts are shared freely; no operation ever
// mutates an existing one. Two contexts are equal iff their element
// sequences are equal, regardless of identity.
type Context struct {
	elems []Elem
}

// emptyContext is the canonical shared zero-length context.
var emptyContext = &Context{}

// Empty returns the canonical empty context.
func Empty() *Context { return emptyContext }

// New builds a context from an explicit element sequence,
// most-recent-first. The caller guarantees any length bound.
func New(elems ...Elem) *Context {
	if len(elems) == 0 {
		return emptyContext
	}
	owned := make([]Elem, len(elems))
	copy(owned, elems)
	return &Context{elems: owned}
}

// NewKLimited prepends elem to old and truncates the result to its k
// most-recent elements. With k == 0 the result is always the empty
// context. Otherwise elem is always first and the oldest elements of
// old are dropped first when the window is full.
func NewKLimited(old *Context, elem Elem, k int) *Context {
	if k <= 0 {
		return emptyContext
	}
	keep := len(old.elems)
	if keep > k-1 {
		keep = k - 1
	}
	elems := make([]Elem, 0, keep+1)
	elems = append(elems, elem)
	elems = append(elems, old.elems[:keep]...)
	return &Context{elems: elems}
}

// KLimited truncates ctx to its first k elements without prepending.
// When ctx already fits, ctx itself is returned.
func KLimited(ctx *Context, k int) *Context {
	if k <= 0 {
		return emptyContext
	}
	if len(ctx.elems) <= k {
		return ctx
	}
	return New(ctx.elems[:k]...)
}

// Len returns the number of elements.
func (c *Context) Len() int { return len(c.elems) }

// First returns the most recent element, if any.
func (c *Context) First() (Elem, bool) {
	if len(c.elems) == 0 {
		return nil, false
	}
	return c.elems[0], true
}

// Last returns the oldest element, if any.
func (c *Context) Last() (Elem, bool) {
	if len(c.elems) == 0 {
		return nil, false
	}
	return c.elems[len(c.elems)-1], true
}

// At returns the i-th element, most-recent-first.
func (c *Context) At(i int) Elem { return c.elems[i] }

// Equal reports content equality.
func (c *Context) Equal(other *Context) bool {
	if c == other {
		return true
	}
	if len(c.elems) != len(other.elems) {
		return false
	}
	for i, e := range c.elems {
		if e.Key() != other.elems[i].Key() {
			return false
		}
	}
	return true
}

// key returns the interning key of the whole sequence. Element keys
// never contain U+0001, so the join is unambiguous.
func (c *Context) key() string {
	if len(c.elems) == 0 {
		return ""
	}
	var sb strings.Builder
	for i, e := range c.elems {
		if i > 0 {
			sb.WriteByte(1)
		}
		sb.WriteString(e.Key())
	}
	return sb.String()
}

func (c *Context) String() string {
	if len(c.elems) == 0 {
		return "[]"
	}
	var sb strings.Builder
	sb.WriteByte('[')
	for i, e := range c.elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(e.String())
	}
	sb.WriteByte(']')
	return sb.String()
}
