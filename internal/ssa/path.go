// Package ssa builds SSA form for a function body: a dominator-tree
// path (Lengauer-Tarjan dominance, dominance frontiers, phi placement)
// and a demand-driven value-numbering path with lazy phi creation,
// block sealing and trivial-phi elimination.
package ssa

import "fmt"

// Variable identifies an analyzed variable within one function.
type Variable uint32

// Value is an opaque concrete-value token issued by the driver. The
// engine only compares tokens, never interprets them.
type Value uint32

// PhiID indexes a phi node in its engine's arena. All phi-to-phi
// references, including the users back-references, are ids rather
// than pointers, so nothing outlives the arena.
type PhiID int32

// PathKind discriminates Path.
type PathKind uint8

const (
	// PathUndef marks a value that is undefined on every incoming path.
	PathUndef PathKind = iota
	// PathValue is a concrete value token.
	PathValue
	// PathPhi references a phi node by arena id.
	PathPhi
)

// Path is the SSA value produced for a (variable, block) query: a
// concrete value token, the undefined marker, or a phi reference.
// Paths are small comparable values.
type Path struct {
	kind PathKind
	val  Value
	phi  PhiID
}

// UndefPath returns the undefined marker.
func UndefPath() Path { return Path{kind: PathUndef} }

// ValuePath wraps a concrete value token.
func ValuePath(v Value) Path { return Path{kind: PathValue, val: v} }

// PhiPath references the phi with the given arena id.
func PhiPath(id PhiID) Path { return Path{kind: PathPhi, phi: id} }

// Kind returns the path kind.
func (p Path) Kind() PathKind { return p.kind }

// Value returns the concrete token, if the path holds one.
func (p Path) Value() (Value, bool) { return p.val, p.kind == PathValue }

// Phi returns the referenced phi id, if the path holds one.
func (p Path) Phi() (PhiID, bool) { return p.phi, p.kind == PathPhi }

func (p Path) String() string {
	switch p.kind {
	case PathValue:
		return fmt.Sprintf("v%d", p.val)
	case PathPhi:
		return fmt.Sprintf("phi%d", p.phi)
	default:
		return "undef"
	}
}
