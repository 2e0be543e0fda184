package frontend

import (
	"fmt"
	"go/token"

	gossa "golang.org/x/tools/go/ssa"

	"github.com/rustanlys/goptr/internal/cfg"
)

// LowerFunction converts a go/ssa function body into the analysis
// CFG. Terminators are classified into goto, return and other; the
// complete edge set comes from go/ssa's predecessor lists, so blocks
// ending in terminators the classification does not model still keep
// their edges. Functions without bodies (external or intrinsic)
// cannot be lowered and return an error.
func LowerFunction(fset *token.FileSet, fn *gossa.Function) (*cfg.Body, error) {
	if len(fn.Blocks) == 0 {
		return nil, fmt.Errorf("function %s has no body", fn)
	}

	blocks := make([]*cfg.Block, len(fn.Blocks))
	preds := make([][]cfg.BlockID, len(fn.Blocks))
	for i, b := range fn.Blocks {
		if b.Index != i {
			return nil, fmt.Errorf("function %s: block %d listed at index %d", fn, b.Index, i)
		}
		blocks[i] = &cfg.Block{
			ID:   cfg.BlockID(i),
			Term: classifyTerminator(b),
			Loc:  blockLocation(fset, b),
		}
		for _, p := range b.Preds {
			preds[i] = append(preds[i], cfg.BlockID(p.Index))
		}
	}
	return cfg.NewBodyWithPreds(fn.String(), blocks, preds), nil
}

// classifyTerminator maps a go/ssa block terminator onto the kinds
// the core models. Conditional branches, panics and the like fall
// into TermOther.
func classifyTerminator(b *gossa.BasicBlock) cfg.Terminator {
	if len(b.Instrs) == 0 {
		return cfg.Terminator{Kind: cfg.TermOther}
	}
	switch b.Instrs[len(b.Instrs)-1].(type) {
	case *gossa.Jump:
		return cfg.Terminator{Kind: cfg.TermGoto, Target: cfg.BlockID(b.Succs[0].Index)}
	case *gossa.Return:
		return cfg.Terminator{Kind: cfg.TermReturn}
	default:
		return cfg.Terminator{Kind: cfg.TermOther}
	}
}

// blockLocation resolves the source position of a block's terminator,
// falling back through the block's instructions since synthetic jumps
// carry no position of their own.
func blockLocation(fset *token.FileSet, b *gossa.BasicBlock) cfg.Location {
	for i := len(b.Instrs) - 1; i >= 0; i-- {
		if pos := b.Instrs[i].Pos(); pos.IsValid() {
			p := fset.Position(pos)
			return cfg.Location{File: p.Filename, Line: p.Line}
		}
	}
	return cfg.Location{}
}
