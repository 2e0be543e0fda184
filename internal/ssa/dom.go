package ssa

// Dominator tree construction after Lengauer & Tarjan. 1979. A fast
// algorithm for finding dominators in a flowgraph, with the bucket
// handling of Georgiadis et al, Finding Dominators in Practice, to
// avoid buckets of size > 1. eval walks ancestor chains without path
// compression.

import (
	"sort"

	"github.com/rustanlys/goptr/internal/cfg"
)

// DomTree is the dominance relation of one body, computed from the
// entry block. Unreachable blocks carry no dominance facts: they never
// dominate and are never dominated.
type DomTree struct {
	body     *cfg.Body
	order    []cfg.BlockID   // reachable blocks in DFS preorder
	number   []int32         // block id -> preorder number, -1 if unreachable
	idom     []cfg.BlockID   // block id -> immediate dominator, -1 for entry/unreachable
	children [][]cfg.BlockID // block id -> blocks it immediately dominates
	pre      []int32         // dominator-tree pre/post numbering for O(1) queries
	post     []int32
}

// BuildDomTree computes the dominator tree of body. The body is
// already validated non-empty by cfg; an unreachable entry cannot
// happen since traversal starts there.
func BuildDomTree(body *cfg.Body) *DomTree {
	n := body.Len()
	t := &DomTree{
		body:     body,
		number:   make([]int32, n),
		idom:     make([]cfg.BlockID, n),
		children: make([][]cfg.BlockID, n),
		pre:      make([]int32, n),
		post:     make([]int32, n),
	}
	for i := range t.number {
		t.number[i] = -1
		t.idom[i] = -1
	}

	// Step 1: number reachable blocks by depth-first preorder and
	// record each block's DFS parent (as a preorder number).
	var parent []int32
	var dfs func(b cfg.BlockID, p int32)
	dfs = func(b cfg.BlockID, p int32) {
		t.number[b] = int32(len(t.order))
		t.order = append(t.order, b)
		parent = append(parent, p)
		me := t.number[b]
		for _, s := range body.Successors(b) {
			if t.number[s] < 0 {
				dfs(s, me)
			}
		}
	}
	dfs(cfg.Entry, -1)

	r := len(t.order)
	// semi, ancestor, idom and bucket are all in preorder numbers.
	semi := make([]int32, r)
	ancestor := make([]int32, r)
	idom := make([]int32, r)
	bucket := make([]int32, r)
	for i := range semi {
		semi[i] = int32(i)
		ancestor[i] = -1
		idom[i] = -1
		bucket[i] = int32(i)
	}

	// eval returns the vertex with minimal semidominator on the
	// ancestor chain above v, walking the chain each time.
	eval := func(v int32) int32 {
		u := v
		for ancestor[v] >= 0 {
			if semi[v] < semi[u] {
				u = v
			}
			v = ancestor[v]
		}
		return u
	}

	// In reverse preorder: steps 2 and 3 interleaved per Georgiadis.
	for i := int32(r) - 1; i > 0; i-- {
		w := i

		// Step 3: implicitly define idom for nodes whose semidominator
		// turned out to be w's bucket anchor.
		for v := bucket[i]; v != w; v = bucket[v] {
			u := eval(v)
			if semi[u] < i {
				idom[v] = u
			} else {
				idom[v] = w
			}
		}

		// Step 2: semidominator of w over all reachable predecessors.
		semi[w] = parent[w]
		for _, pb := range body.Predecessors(t.order[w]) {
			pv := t.number[pb]
			if pv < 0 {
				continue // unreachable predecessor
			}
			u := eval(pv)
			if semi[u] < semi[w] {
				semi[w] = semi[u]
			}
		}

		ancestor[w] = parent[w] // link

		if parent[w] == semi[w] {
			idom[w] = parent[w]
		} else {
			bucket[i] = bucket[semi[w]]
			bucket[semi[w]] = w
		}
	}
	for v := bucket[0]; v != 0; v = bucket[v] {
		idom[v] = 0
	}

	// Step 4: explicit idoms, in preorder.
	for w := int32(1); w < int32(r); w++ {
		if idom[w] != semi[w] {
			idom[w] = idom[idom[w]]
		}
	}

	// Translate back to block ids and derive children.
	for w := int32(1); w < int32(r); w++ {
		dom := t.order[idom[w]]
		b := t.order[w]
		t.idom[b] = dom
		t.children[dom] = append(t.children[dom], b)
	}

	// Pre/post numbering of the dominator tree answers Dominates in
	// constant time.
	var prev, postv int32
	var number func(b cfg.BlockID)
	number = func(b cfg.BlockID) {
		t.pre[b] = prev
		prev++
		for _, c := range t.children[b] {
			number(c)
		}
		t.post[b] = postv
		postv++
	}
	number(cfg.Entry)

	return t
}

// Reachable reports whether the entry block reaches b.
func (t *DomTree) Reachable(b cfg.BlockID) bool {
	return b >= 0 && int(b) < len(t.number) && t.number[b] >= 0
}

// Idom returns the immediate dominator of b. The entry block and
// unreachable blocks have none.
func (t *DomTree) Idom(b cfg.BlockID) (cfg.BlockID, bool) {
	if !t.Reachable(b) || t.idom[b] < 0 {
		return 0, false
	}
	return t.idom[b], true
}

// Children returns the blocks b immediately dominates.
func (t *DomTree) Children(b cfg.BlockID) []cfg.BlockID {
	if !t.Reachable(b) {
		return nil
	}
	return t.children[b]
}

// Dominates reports whether a dominates b (reflexively). Unreachable
// blocks dominate nothing and are dominated by nothing.
func (t *DomTree) Dominates(a, b cfg.BlockID) bool {
	if !t.Reachable(a) || !t.Reachable(b) {
		return false
	}
	return t.pre[a] <= t.pre[b] && t.post[b] <= t.post[a]
}

// Frontier computes the dominance frontier of every reachable block
// using the Cytron et al. algorithm over the dominator tree.
func (t *DomTree) Frontier() [][]cfg.BlockID {
	df := make([][]cfg.BlockID, t.body.Len())
	var build func(u cfg.BlockID)
	build = func(u cfg.BlockID) {
		for _, child := range t.children[u] {
			build(child)
		}
		for _, v := range t.body.Successors(u) {
			if !t.Reachable(v) {
				continue
			}
			if t.idom[v] != u {
				df[u] = append(df[u], v)
			}
		}
		for _, w := range t.children[u] {
			for _, v := range df[w] {
				if t.idom[v] != u {
					df[u] = append(df[u], v)
				}
			}
		}
	}
	build(cfg.Entry)
	return df
}

// Placement records which blocks need a phi for which variables, as
// computed by PlacePhis.
type Placement struct {
	byBlock map[cfg.BlockID][]Variable
}

// Has reports whether block b needs a phi for v.
func (p *Placement) Has(v Variable, b cfg.BlockID) bool {
	for _, pv := range p.byBlock[b] {
		if pv == v {
			return true
		}
	}
	return false
}

// Vars returns the variables needing a phi at b, in ascending order.
func (p *Placement) Vars(b cfg.BlockID) []Variable { return p.byBlock[b] }

// PlacePhis runs iterated dominance-frontier phi placement: given the
// blocks where each variable is defined, it returns the join points
// that need a phi for it. Definitions in unreachable blocks are
// ignored.
func (t *DomTree) PlacePhis(defsites map[Variable][]cfg.BlockID) *Placement {
	df := t.Frontier()
	placement := &Placement{byBlock: make(map[cfg.BlockID][]Variable)}

	vars := make([]Variable, 0, len(defsites))
	for v := range defsites {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })

	for _, v := range vars {
		hasPhi := make(map[cfg.BlockID]bool)
		defs := make(map[cfg.BlockID]bool)
		var work []cfg.BlockID
		for _, b := range defsites[v] {
			if !t.Reachable(b) || defs[b] {
				continue
			}
			defs[b] = true
			work = append(work, b)
		}
		for len(work) > 0 {
			b := work[len(work)-1]
			work = work[:len(work)-1]
			for _, d := range df[b] {
				if hasPhi[d] {
					continue
				}
				hasPhi[d] = true
				placement.byBlock[d] = append(placement.byBlock[d], v)
				if !defs[d] {
					defs[d] = true
					work = append(work, d)
				}
			}
		}
	}

	for _, vs := range placement.byBlock {
		sort.Slice(vs, func(i, j int) bool { return vs[i] < vs[j] })
	}
	return placement
}
