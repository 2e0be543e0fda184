// Package cfg defines the per-function control-flow graph the analysis
// core operates on: basic blocks identified by dense ids, terminators
// classified into goto/return/other, and derived successor and
// predecessor relations.
package cfg

import "fmt"

// BlockID identifies a basic block within one function body.
// The entry block is always id 0.
type BlockID int32

// Entry is the id of the entry block of every body.
const Entry BlockID = 0

// TermKind classifies a block terminator. Only unconditional jumps and
// returns contribute CFG edges; every other terminator kind is lumped
// into TermOther and contributes no recorded successor.
type TermKind uint8

const (
	// TermOther covers all terminator kinds the core does not model
	// (conditional branches, calls, unwinds). No successor is recorded.
	TermOther TermKind = iota
	// TermGoto is an unconditional jump to Terminator.Target.
	TermGoto
	// TermReturn leaves the function. No successor.
	TermReturn
)

func (k TermKind) String() string {
	switch k {
	case TermGoto:
		return "goto"
	case TermReturn:
		return "return"
	default:
		return "other"
	}
}

// Terminator is the final instruction of a block. Target is only
// meaningful when Kind is TermGoto.
type Terminator struct {
	Kind   TermKind
	Target BlockID
}

// Location is a source position used for diagnostics only. A zero
// Location (empty File) means the position could not be resolved.
type Location struct {
	File string
	Line int
}

// IsValid reports whether the location was resolved to a real file.
func (l Location) IsValid() bool { return l.File != "" }

func (l Location) String() string {
	if !l.IsValid() {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// Block is one basic block. Instructions other than the terminator are
// irrelevant to CFG shape and are not represented here.
type Block struct {
	ID   BlockID
	Term Terminator
	Loc  Location
}

// Body is an immutable function body: a non-empty block list whose
// first block is the entry. Edges come from the front-end supplied
// predecessor lists when present, otherwise they are derived from the
// goto/return terminator classification alone.
type Body struct {
	name   string
	blocks []*Block
	preds  [][]BlockID
	succs  [][]BlockID // inverse of preds; nil when preds were not supplied
}

// NewBody builds a Body from an ordered block list. Blocks must be
// listed in id order starting at 0, with the entry first. A nil or
// empty block list, a nil block, or a goto to a nonexistent block is a
// precondition violation and panics.
func NewBody(name string, blocks []*Block) *Body {
	validateBlocks(name, blocks)
	return &Body{name: name, blocks: blocks}
}

// NewBodyWithPreds builds a Body whose edges are the front-end
// supplied per-block predecessor lists. The goto/return terminator
// classification stays diagnostic; preds is authoritative and covers
// the terminator kinds the classification does not model. preds must
// have one entry per block, in block-id order.
func NewBodyWithPreds(name string, blocks []*Block, preds [][]BlockID) *Body {
	validateBlocks(name, blocks)
	if len(preds) != len(blocks) {
		panic(fmt.Sprintf("cfg: function %s: %d predecessor lists for %d blocks", name, len(preds), len(blocks)))
	}
	succs := make([][]BlockID, len(blocks))
	for id, ps := range preds {
		for _, p := range ps {
			if p < 0 || int(p) >= len(blocks) {
				panic(fmt.Sprintf("cfg: function %s: block %d has nonexistent predecessor %d", name, id, p))
			}
			succs[p] = append(succs[p], BlockID(id))
		}
	}
	return &Body{name: name, blocks: blocks, preds: preds, succs: succs}
}

func validateBlocks(name string, blocks []*Block) {
	if len(blocks) == 0 {
		panic(fmt.Sprintf("cfg: function %s has no blocks", name))
	}
	for i, b := range blocks {
		if b == nil {
			panic(fmt.Sprintf("cfg: function %s: block %d is nil", name, i))
		}
		if b.ID != BlockID(i) {
			panic(fmt.Sprintf("cfg: function %s: block %d listed at index %d", name, b.ID, i))
		}
		if b.Term.Kind == TermGoto && (b.Term.Target < 0 || int(b.Term.Target) >= len(blocks)) {
			panic(fmt.Sprintf("cfg: function %s: block %d jumps to nonexistent block %d", name, b.ID, b.Term.Target))
		}
	}
}

// Name returns the function name the body was built for.
func (b *Body) Name() string { return b.name }

// Len returns the number of blocks.
func (b *Body) Len() int { return len(b.blocks) }

// Block returns the block with the given id, or nil if out of range.
func (b *Body) Block(id BlockID) *Block {
	if id < 0 || int(id) >= len(b.blocks) {
		return nil
	}
	return b.blocks[id]
}

// Entry returns the entry block.
func (b *Body) Entry() *Block { return b.blocks[Entry] }

// Successors returns the successor ids of the given block. With
// front-end supplied edges they are the inverse of the predecessor
// lists; otherwise goto yields one successor and return and unmodeled
// terminators yield none.
func (b *Body) Successors(id BlockID) []BlockID {
	blk := b.Block(id)
	if blk == nil {
		return nil
	}
	if b.succs != nil {
		return b.succs[id]
	}
	if blk.Term.Kind == TermGoto {
		return []BlockID{blk.Term.Target}
	}
	return nil
}

// Predecessors returns the predecessor ids of the given block, in
// ascending predecessor-id order.
func (b *Body) Predecessors(id BlockID) []BlockID {
	if b.preds == nil {
		b.preds = make([][]BlockID, len(b.blocks))
		for _, blk := range b.blocks {
			for _, succ := range b.Successors(blk.ID) {
				b.preds[succ] = append(b.preds[succ], blk.ID)
			}
		}
	}
	if id < 0 || int(id) >= len(b.preds) {
		return nil
	}
	return b.preds[id]
}
