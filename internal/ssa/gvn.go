package ssa

// Demand-driven minimal SSA after Braun et al. 2013, Simple and
// Efficient Construction of Static Single Assignment Form. Reads
// recurse through predecessors on demand; loops are broken by placing
// a provisional phi in any block whose predecessor set is not yet
// final (unsealed) and completing it when the block seals.

import (
	"sort"

	"github.com/rustanlys/goptr/internal/cfg"
)

// phiNode lives in the engine's arena. operands grow as predecessors
// are read; users lists the phis that hold this one as an operand, by
// arena id only, so the relation is observational and never extends a
// phi's lifetime. A replaced phi forwards to its replacement and is
// otherwise dead.
type phiNode struct {
	block       cfg.BlockID
	variable    Variable
	operands    []Path
	users       []PhiID
	replaced    bool
	replacement Path
}

// Engine builds SSA values for one body on demand. It is exclusive-
// owner, analysis-pass-scoped state: not safe for concurrent use.
type Engine struct {
	body           *cfg.Body
	currentDef     map[Variable]map[cfg.BlockID]Path
	incompletePhis map[cfg.BlockID]map[Variable]PhiID
	sealed         map[cfg.BlockID]bool
	phis           []*phiNode
}

// NewEngine returns an engine over body. No block starts sealed; the
// client seals each block once its predecessor set is final.
func NewEngine(body *cfg.Body) *Engine {
	return &Engine{
		body:           body,
		currentDef:     make(map[Variable]map[cfg.BlockID]Path),
		incompletePhis: make(map[cfg.BlockID]map[Variable]PhiID),
		sealed:         make(map[cfg.BlockID]bool),
	}
}

// WriteVariable records the latest definition of v at block. Last
// write wins within a block.
func (e *Engine) WriteVariable(v Variable, block cfg.BlockID, val Path) {
	defs := e.currentDef[v]
	if defs == nil {
		defs = make(map[cfg.BlockID]Path)
		e.currentDef[v] = defs
	}
	defs[block] = val
}

// ReadVariable returns the value of v at block: the local definition
// if one was written there, otherwise the value flowing in from
// predecessors.
func (e *Engine) ReadVariable(v Variable, block cfg.BlockID) Path {
	if p, ok := e.currentDef[v][block]; ok {
		return e.resolve(p)
	}
	return e.readVariableRecursive(v, block)
}

// readVariableRecursive handles the four global cases: an unsealed
// block gets an incomplete phi completed at seal time (this breaks
// recursion through loops); a sealed block forwards through a single
// predecessor without materializing a phi; a sealed block without
// predecessors has exhausted the chain and the value is undefined; a
// sealed join creates a phi and populates it.
func (e *Engine) readVariableRecursive(v Variable, block cfg.BlockID) Path {
	var val Path
	if !e.sealed[block] {
		id := e.newPhi(v, block)
		pending := e.incompletePhis[block]
		if pending == nil {
			pending = make(map[Variable]PhiID)
			e.incompletePhis[block] = pending
		}
		pending[v] = id
		val = PhiPath(id)
		e.WriteVariable(v, block, val)
		return val
	}

	preds := e.body.Predecessors(block)
	switch len(preds) {
	case 0:
		val = UndefPath()
	case 1:
		val = e.ReadVariable(v, preds[0])
	default:
		return e.createPhi(v, block)
	}
	e.WriteVariable(v, block, val)
	return val
}

// createPhi materializes a phi at a sealed join. The phi is written as
// a provisional definition first so that reads recursing back into
// this block terminate, then its operands are populated and the
// (possibly simplified) result overwrites the placeholder.
func (e *Engine) createPhi(v Variable, block cfg.BlockID) Path {
	id := e.newPhi(v, block)
	e.WriteVariable(v, block, PhiPath(id))
	val := e.addPhiOperands(v, id)
	e.WriteVariable(v, block, val)
	return val
}

// addPhiOperands reads v in every predecessor of the phi's block,
// appends the results as operands, and then offers the phi for
// trivial-phi removal. Always returns the value the phi ends up
// denoting.
func (e *Engine) addPhiOperands(v Variable, id PhiID) Path {
	ph := e.phis[id]
	for _, pred := range e.body.Predecessors(ph.block) {
		op := e.resolve(e.ReadVariable(v, pred))
		ph.operands = append(ph.operands, op)
		if opID, ok := op.Phi(); ok && opID != id {
			e.phis[opID].users = append(e.phis[opID].users, id)
		}
	}
	return e.tryRemoveTrivialPhi(id)
}

// tryRemoveTrivialPhi collapses a phi whose real operands all reduce
// to one value. Self-references and undefined operands do not count as
// real. A phi with two or more distinct real operands is a genuine
// merge and is kept. Removal rewrites every user to the replacement
// and re-offers each user, since removing one phi can make another
// trivial. The simplified value (the replacement, or the phi itself
// when genuine) is always returned.
func (e *Engine) tryRemoveTrivialPhi(id PhiID) Path {
	ph := e.phis[id]
	if ph.replaced {
		return e.resolve(ph.replacement)
	}

	same := UndefPath()
	found := false
	for _, op := range ph.operands {
		op = e.resolve(op)
		if opID, ok := op.Phi(); ok && opID == id {
			continue // self-reference
		}
		if op.Kind() == PathUndef {
			continue // undefined on that incoming path
		}
		if found && op != same {
			return PhiPath(id) // two distinct real operands
		}
		same, found = op, true
	}

	// Trivial: every real operand was the same value, or there was
	// none at all and the phi denotes Undef.
	users := make([]PhiID, len(ph.users))
	copy(users, ph.users)
	ph.replaced = true
	ph.replacement = same
	ph.operands = nil
	ph.users = nil

	for _, u := range users {
		if u == id {
			continue
		}
		uph := e.phis[u]
		if uph.replaced {
			continue
		}
		changed := false
		for i, op := range uph.operands {
			if opID, ok := op.Phi(); ok && opID == id {
				uph.operands[i] = same
				changed = true
				if sID, ok := same.Phi(); ok && sID != u {
					e.phis[sID].users = append(e.phis[sID].users, u)
				}
			}
		}
		if changed {
			e.tryRemoveTrivialPhi(u)
		}
	}
	return same
}

// Seal marks block's predecessor set as final and completes the phis
// that were created while it was unsealed. Sealing twice is a no-op.
func (e *Engine) Seal(block cfg.BlockID) {
	if e.sealed[block] {
		return
	}
	e.sealed[block] = true

	pending := e.incompletePhis[block]
	delete(e.incompletePhis, block)

	vars := make([]Variable, 0, len(pending))
	for v := range pending {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })

	for _, v := range vars {
		id := pending[v]
		val := e.addPhiOperands(v, id)
		// Patch the provisional definition unless a later write in
		// this block already replaced it.
		if cur, ok := e.currentDef[v][block]; ok {
			if curID, isPhi := cur.Phi(); isPhi && curID == id {
				e.WriteVariable(v, block, val)
			}
		}
	}
}

// SealAll seals every block of the body. Useful when the whole CFG is
// known up front.
func (e *Engine) SealAll() {
	for i := 0; i < e.body.Len(); i++ {
		e.Seal(cfg.BlockID(i))
	}
}

// Sealed reports whether block has been sealed.
func (e *Engine) Sealed(block cfg.BlockID) bool { return e.sealed[block] }

// resolve follows replacement forwarding until it reaches a live path.
func (e *Engine) resolve(p Path) Path {
	for {
		id, ok := p.Phi()
		if !ok {
			return p
		}
		ph := e.phis[id]
		if !ph.replaced {
			return p
		}
		p = ph.replacement
	}
}

func (e *Engine) newPhi(v Variable, block cfg.BlockID) PhiID {
	id := PhiID(len(e.phis))
	e.phis = append(e.phis, &phiNode{block: block, variable: v})
	return id
}

// PhiBlock returns the owning block of a phi.
func (e *Engine) PhiBlock(id PhiID) cfg.BlockID { return e.phis[id].block }

// PhiOperands returns the current operands of a live phi, resolved
// through any replaced operands. A replaced phi has none.
func (e *Engine) PhiOperands(id PhiID) []Path {
	ph := e.phis[id]
	if ph.replaced {
		return nil
	}
	ops := make([]Path, len(ph.operands))
	for i, op := range ph.operands {
		ops[i] = e.resolve(op)
	}
	return ops
}

// LivePhis returns the number of phis that survived simplification.
func (e *Engine) LivePhis() int {
	n := 0
	for _, ph := range e.phis {
		if !ph.replaced {
			n++
		}
	}
	return n
}
