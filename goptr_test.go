package goptr

import (
	"go/ast"
	"go/importer"
	"go/parser"
	"go/token"
	"go/types"
	"testing"

	gossa "golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"

	"github.com/rustanlys/goptr/internal/config"
)

const program = `package p

func entry() {
	x := helper(3)
	loopy(x)
}

func helper(n int) int {
	s := 0
	for i := 0; i < n; i++ {
		s += i
	}
	return s
}

func loopy(n int) {
	if n > 0 {
		loopy(n - 1)
	}
}

func leak() *int {
	v := new(int)
	return v
}
`

// buildProgram compiles the test source in memory. NaiveForm keeps
// stack locals and their stores around, which is what the phi
// placement summary consumes.
func buildProgram(t *testing.T) (*gossa.Program, []*gossa.Package) {
	t.Helper()
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "input.go", program, 0)
	if err != nil {
		t.Fatal(err)
	}
	pkg, _, err := ssautil.BuildPackage(
		&types.Config{Importer: importer.Default()}, fset,
		types.NewPackage("p", ""), []*ast.File{f},
		gossa.SanityCheckFunctions|gossa.NaiveForm)
	if err != nil {
		t.Fatal(err)
	}
	return pkg.Prog, []*gossa.Package{pkg}
}

func summaryByName(t *testing.T, res *Result, name string) FunctionSummary {
	t.Helper()
	for _, sum := range res.Functions {
		if sum.Record.Name == name {
			return sum
		}
	}
	t.Fatalf("no summary for %s", name)
	return FunctionSummary{}
}

func TestAnalyzeProgram(t *testing.T) {
	prog, spkgs := buildProgram(t)
	res, err := analyzeProgram(prog, spkgs, config.Config{Policy: config.PolicyCallSite, K: 2})
	if err != nil {
		t.Fatal(err)
	}

	if len(res.Functions) < 4 {
		t.Fatalf("analyzed %d functions, want at least the 4 declared", len(res.Functions))
	}
	if res.Skipped != 0 {
		t.Errorf("Skipped = %d, want 0", res.Skipped)
	}

	helper := summaryByName(t, res, "p.helper")
	if helper.Reachable != helper.Blocks {
		t.Errorf("helper: %d of %d blocks reachable", helper.Reachable, helper.Blocks)
	}
	if helper.JoinBlocks == 0 {
		t.Error("helper: loop produced no join block")
	}
	if helper.PhiPoints == 0 {
		t.Error("helper: loop-carried locals produced no phi placement")
	}
	if helper.LivePhis == 0 {
		t.Error("helper: loop-carried locals produced no live phis")
	}
	if helper.LivePhis > helper.PhiPoints {
		t.Errorf("helper: %d live phis exceed %d placement points", helper.LivePhis, helper.PhiPoints)
	}

	// Distinct contexts: at least the empty one, the callee contexts
	// of the two static calls in entry, and the recursive call string
	// of loopy, which k-limiting must keep finite.
	if res.Contexts < 4 {
		t.Errorf("Contexts = %d, want at least 4", res.Contexts)
	}
}

// TestAnalyzeProgramRecursionTerminates: an unbounded recursive call
// chain must saturate under k-limiting rather than diverge.
func TestAnalyzeProgramRecursionTerminates(t *testing.T) {
	prog, spkgs := buildProgram(t)
	res, err := analyzeProgram(prog, spkgs, config.Config{Policy: config.PolicyCallSite, K: 1})
	if err != nil {
		t.Fatal(err)
	}
	// With k=1 every callee context is exactly its last call site:
	// the context count is bounded by call sites + allocations + 1.
	if res.Contexts > 16 {
		t.Errorf("Contexts = %d, recursion did not saturate", res.Contexts)
	}
}

func TestAnalyzeProgramEntryRestriction(t *testing.T) {
	prog, spkgs := buildProgram(t)

	all, err := analyzeProgram(prog, spkgs, config.Config{Policy: config.PolicyCallSite, K: 2})
	if err != nil {
		t.Fatal(err)
	}
	restricted, err := analyzeProgram(prog, spkgs, config.Config{
		Policy: config.PolicyCallSite, K: 2, Entry: []string{"entry"},
	})
	if err != nil {
		t.Fatal(err)
	}

	// leak is not reachable from entry, so its heap allocation context
	// disappears from the restricted run.
	if restricted.Contexts >= all.Contexts {
		t.Errorf("restricted run interned %d contexts, full run %d; want fewer", restricted.Contexts, all.Contexts)
	}
	if restricted.Contexts == 0 {
		t.Error("restricted run interned no contexts at all")
	}
}

func TestAnalyzeProgramInsensitive(t *testing.T) {
	prog, spkgs := buildProgram(t)
	res, err := analyzeProgram(prog, spkgs, config.Config{Policy: config.PolicyInsensitive})
	if err != nil {
		t.Fatal(err)
	}
	// Everything collapses to the empty context.
	if res.Contexts != 1 {
		t.Errorf("Contexts = %d, want exactly 1 under insensitivity", res.Contexts)
	}
}

func TestAnalyzeProgramRejectsBadPolicy(t *testing.T) {
	prog, spkgs := buildProgram(t)
	if _, err := analyzeProgram(prog, spkgs, config.Config{}); err == nil {
		t.Error("zero policy did not fail")
	}
}
