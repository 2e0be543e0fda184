// Package context implements bounded analysis contexts for
// context-sensitive pointer analysis: ordered sequences of sensitivity
// elements (call sites, allocation paths, types), k-limiting, and an
// interning cache that maps each distinct context to a dense id.
package context

import "fmt"

// FuncID identifies a function in the analyzed program. Ids are issued
// by the front-end and are only compared, never dereferenced here.
type FuncID uint32

// Elem is one entry of an analysis context. Implementations are small
// immutable values; Key returns a string that is equal exactly for
// content-equal elements and is used for hashing and interning.
type Elem interface {
	// Key returns a stable content key. Two elements are equal iff
	// their keys are equal.
	Key() string

	// String returns a human-readable form for diagnostics.
	String() string
}

// CallSite is a call-site context element: a specific call edge plus
// its source location. The location participates in identity so two
// syntactic calls between the same pair of functions stay distinct.
type CallSite struct {
	Caller FuncID
	Callee FuncID
	File   string
	Line   int
}

// Key implements Elem.
func (c CallSite) Key() string {
	return fmt.Sprintf("cs\x00%d\x00%d\x00%s\x00%d", c.Caller, c.Callee, c.File, c.Line)
}

func (c CallSite) String() string {
	return fmt.Sprintf("call(%d->%d@%s:%d)", c.Caller, c.Callee, c.File, c.Line)
}

// ObjectPath is an allocation-site context element: the interned path
// of an abstract heap object (e.g. "pkg.makeBuf/alloc#1").
type ObjectPath struct {
	Path string
}

// Key implements Elem.
func (o ObjectPath) Key() string { return "obj\x00" + o.Path }

func (o ObjectPath) String() string { return "obj(" + o.Path + ")" }

// TypeElem is a type-descriptor context element, used by type
// sensitivity as a coarser stand-in for allocation sites.
type TypeElem struct {
	Type string
}

// Key implements Elem.
func (t TypeElem) Key() string { return "ty\x00" + t.Type }

func (t TypeElem) String() string { return "type(" + t.Type + ")" }

// hybridKind discriminates the two arms of Hybrid.
type hybridKind uint8

const (
	hybridCall hybridKind = iota
	hybridObject
)

// Hybrid is a tagged union of a call-site and an object element, used
// by the hybrid call-site/object sensitivity policy where a single
// context mixes both element kinds.
type Hybrid struct {
	kind hybridKind
	call CallSite
	obj  ObjectPath
}

// HybridCall wraps a call site as a hybrid element.
func HybridCall(c CallSite) Hybrid { return Hybrid{kind: hybridCall, call: c} }

// HybridObject wraps an object path as a hybrid element.
func HybridObject(o ObjectPath) Hybrid { return Hybrid{kind: hybridObject, obj: o} }

// CallSite returns the call arm, if this element holds one.
func (h Hybrid) CallSite() (CallSite, bool) { return h.call, h.kind == hybridCall }

// Object returns the object arm, if this element holds one.
func (h Hybrid) Object() (ObjectPath, bool) { return h.obj, h.kind == hybridObject }

// Key implements Elem.
func (h Hybrid) Key() string {
	if h.kind == hybridCall {
		return "hy\x00" + h.call.Key()
	}
	return "hy\x00" + h.obj.Key()
}

func (h Hybrid) String() string {
	if h.kind == hybridCall {
		return "hybrid(" + h.call.String() + ")"
	}
	return "hybrid(" + h.obj.String() + ")"
}
