// Package goptr is the core of a context-sensitive whole-program
// pointer analysis for Go. It loads packages, lowers go/ssa function
// bodies into a small CFG representation, builds SSA values over them
// (dominator-tree and demand-driven value-numbering paths), and
// materializes bounded analysis contexts for every reachable function
// instance under the configured sensitivity policy.
package goptr

import (
	"fmt"
	"sort"

	gossa "golang.org/x/tools/go/ssa"
	"k8s.io/klog/v2"

	"github.com/rustanlys/goptr/internal/cfg"
	"github.com/rustanlys/goptr/internal/config"
	analysisctx "github.com/rustanlys/goptr/internal/context"
	"github.com/rustanlys/goptr/internal/frontend"
	"github.com/rustanlys/goptr/internal/ssa"
	"github.com/rustanlys/goptr/internal/typeutil"
)

// FunctionSummary describes one lowered function.
type FunctionSummary struct {
	Record     frontend.FunctionRecord
	Blocks     int
	Reachable  int // blocks dominated by the entry
	PhiPoints  int // iterated-dominance-frontier phi placements for its locals
	JoinBlocks int // blocks with two or more predecessors
	LivePhis   int // phis the demand-driven builder kept after simplification
}

// Result aggregates one analysis run.
type Result struct {
	Functions []FunctionSummary
	Skipped   int // functions without bodies
	Contexts  int // distinct contexts interned
	Modules   []frontend.ModuleRecord
}

// Run executes the analysis described by cfg.
func Run(cfg config.Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	pkgs, err := frontend.Load(cfg.Dir, cfg.Packages)
	if err != nil {
		return nil, err
	}
	prog, spkgs := frontend.BuildProgram(pkgs)
	return analyzeProgram(prog, spkgs, cfg)
}

// analyzeProgram runs the core over an already-built go/ssa program.
func analyzeProgram(prog *gossa.Program, spkgs []*gossa.Package, conf config.Config) (*Result, error) {
	strat, err := conf.Strategy()
	if err != nil {
		return nil, err
	}

	fns := frontend.SourceFunctions(spkgs)
	resolver := frontend.NewResolver(prog.Fset)
	cache := analysisctx.NewCache()
	res := &Result{}

	lowered := make(map[*gossa.Function]*cfg.Body)
	for _, fn := range fns {
		body, err := frontend.LowerFunction(prog.Fset, fn)
		if err != nil {
			klog.V(1).Infof("skipping %s: %v", fn, err)
			res.Skipped++
			continue
		}
		lowered[fn] = body
		res.Functions = append(res.Functions, summarizeFunction(resolver, fn, body))
	}

	materializeContexts(resolver, cache, strat, lowered, entryFunctions(fns, lowered, conf.Entry))

	res.Contexts = cache.Len()
	res.Modules = resolver.Modules()
	klog.V(1).Infof("analyzed %d functions, %d contexts", len(res.Functions), res.Contexts)
	return res, nil
}

// summarizeFunction runs the dominator path over a lowered body: the
// dominance relation plus phi placement for the function's locals.
func summarizeFunction(resolver *frontend.Resolver, fn *gossa.Function, body *cfg.Body) FunctionSummary {
	sum := FunctionSummary{
		Record: resolver.FunctionRecord(fn),
		Blocks: body.Len(),
	}

	tree := ssa.BuildDomTree(body)
	for i := 0; i < body.Len(); i++ {
		b := cfg.BlockID(i)
		if tree.Reachable(b) {
			sum.Reachable++
		}
		if len(body.Predecessors(b)) >= 2 {
			sum.JoinBlocks++
		}
	}

	defsites := localDefsites(fn)
	placement := tree.PlacePhis(defsites)
	for i := 0; i < body.Len(); i++ {
		sum.PhiPoints += len(placement.Vars(cfg.BlockID(i)))
	}
	sum.LivePhis = countLivePhis(body, tree, defsites)
	return sum
}

// countLivePhis runs the demand-driven builder over the same
// definition sites: each store becomes a distinct value, every
// variable is read in every reachable block, and the phis surviving
// simplification are counted.
func countLivePhis(body *cfg.Body, tree *ssa.DomTree, defsites map[ssa.Variable][]cfg.BlockID) int {
	eng := ssa.NewEngine(body)
	eng.SealAll()

	vars := make([]ssa.Variable, 0, len(defsites))
	for v := range defsites {
		vars = append(vars, v)
	}
	sort.Slice(vars, func(i, j int) bool { return vars[i] < vars[j] })

	next := ssa.Value(1)
	for _, v := range vars {
		for _, b := range defsites[v] {
			eng.WriteVariable(v, b, ssa.ValuePath(next))
			next++
		}
	}
	for _, v := range vars {
		for i := 0; i < body.Len(); i++ {
			if b := cfg.BlockID(i); tree.Reachable(b) {
				eng.ReadVariable(v, b)
			}
		}
	}
	return eng.LivePhis()
}

// localDefsites maps each stack local of fn to the blocks that store
// to it, the definition sites phi placement starts from.
func localDefsites(fn *gossa.Function) map[ssa.Variable][]cfg.BlockID {
	vars := make(map[*gossa.Alloc]ssa.Variable, len(fn.Locals))
	for i, local := range fn.Locals {
		vars[local] = ssa.Variable(i + 1)
	}
	defsites := make(map[ssa.Variable][]cfg.BlockID)
	for _, b := range fn.Blocks {
		for _, instr := range b.Instrs {
			store, ok := instr.(*gossa.Store)
			if !ok {
				continue
			}
			alloc, ok := store.Addr.(*gossa.Alloc)
			if !ok {
				continue
			}
			if v, tracked := vars[alloc]; tracked {
				defsites[v] = append(defsites[v], cfg.BlockID(b.Index))
			}
		}
	}
	return defsites
}

// instance is one (function, context) pair of the materialization
// walk.
type instance struct {
	fn  *gossa.Function
	ctx *analysisctx.Context
}

type instanceKey struct {
	fn *gossa.Function
	id analysisctx.ID
}

// entryFunctions selects the roots of context materialization: the
// functions named in entry, or every lowered function when entry is
// empty.
func entryFunctions(fns []*gossa.Function, lowered map[*gossa.Function]*cfg.Body, entry []string) []*gossa.Function {
	if len(entry) == 0 {
		roots := make([]*gossa.Function, 0, len(lowered))
		for _, fn := range fns {
			if _, ok := lowered[fn]; ok {
				roots = append(roots, fn)
			}
		}
		return roots
	}
	names := make(map[string]bool, len(entry))
	for _, n := range entry {
		names[n] = true
	}
	var roots []*gossa.Function
	for _, fn := range fns {
		if _, ok := lowered[fn]; ok && (names[fn.Name()] || names[fn.String()]) {
			roots = append(roots, fn)
		}
	}
	return roots
}

// materializeContexts walks static call edges from the entry
// functions, deriving and interning a context per reachable function
// instance and per heap allocation under the strategy. Termination is
// guaranteed because k-limiting bounds the set of distinct contexts
// and each (function, context) pair is visited once.
func materializeContexts(resolver *frontend.Resolver, cache *analysisctx.Cache,
	strat analysisctx.Strategy, lowered map[*gossa.Function]*cfg.Body, roots []*gossa.Function) {

	visited := make(map[instanceKey]bool)
	var queue []instance
	push := func(fn *gossa.Function, ctx *analysisctx.Context) {
		key := instanceKey{fn: fn, id: cache.Intern(ctx)}
		if visited[key] {
			return
		}
		visited[key] = true
		queue = append(queue, instance{fn: fn, ctx: ctx})
	}

	for _, root := range roots {
		push(root, analysisctx.Empty())
	}

	for len(queue) > 0 {
		inst := queue[0]
		queue = queue[1:]

		allocs := 0
		for _, b := range inst.fn.Blocks {
			for _, instr := range b.Instrs {
				if alloc, ok := instr.(*gossa.Alloc); ok && alloc.Heap {
					obj := analysisctx.ObjectPath{
						Path: fmt.Sprintf("%s/alloc#%d", inst.fn, allocs),
					}
					allocs++
					typ := analysisctx.TypeElem{Type: typeutil.Name(alloc.Type())}
					cache.Intern(strat.AtAllocation(inst.ctx, obj, typ))
					continue
				}

				call, ok := instr.(gossa.CallInstruction)
				if !ok {
					continue
				}
				callee := call.Common().StaticCallee()
				if callee == nil {
					continue // dynamic dispatch is the solver's job
				}
				if _, ok := lowered[callee]; !ok {
					continue
				}
				elem := resolver.CallSiteElem(inst.fn, call, callee)
				push(callee, strat.AtCall(inst.ctx, elem))
			}
		}
	}
}
