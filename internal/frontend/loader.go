// Package frontend adapts golang.org/x/tools to the analysis core: it
// loads Go packages, builds their go/ssa form, lowers function bodies
// to the internal CFG representation, and resolves the diagnostic
// metadata (function, call-site and module records).
package frontend

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/tools/go/packages"
	gossa "golang.org/x/tools/go/ssa"
	"golang.org/x/tools/go/ssa/ssautil"
)

const loadMode = packages.NeedName |
	packages.NeedFiles |
	packages.NeedCompiledGoFiles |
	packages.NeedImports |
	packages.NeedDeps |
	packages.NeedTypes |
	packages.NeedTypesSizes |
	packages.NeedTypesInfo |
	packages.NeedSyntax |
	packages.NeedModule

// ErrPackageErrors is returned when any loaded package failed to
// parse or type-check.
var ErrPackageErrors = errors.New("packages contain errors")

// Load loads the packages matching the given patterns, rooted at dir
// (empty means the current directory).
func Load(dir string, patterns []string) ([]*packages.Package, error) {
	cfg := &packages.Config{Mode: loadMode, Dir: dir}
	pkgs, err := packages.Load(cfg, patterns...)
	if err != nil {
		return nil, fmt.Errorf("loading packages: %w", err)
	}
	if packages.PrintErrors(pkgs) > 0 {
		return nil, ErrPackageErrors
	}
	return pkgs, nil
}

// BuildProgram builds the go/ssa form of the loaded packages.
func BuildProgram(pkgs []*packages.Package) (*gossa.Program, []*gossa.Package) {
	prog, spkgs := ssautil.AllPackages(pkgs, gossa.SanityCheckFunctions)
	prog.Build()
	return prog, spkgs
}

// SourceFunctions returns the declared functions of the given
// packages, including anonymous functions nested in them, in a
// deterministic order.
func SourceFunctions(spkgs []*gossa.Package) []*gossa.Function {
	var fns []*gossa.Function
	for _, pkg := range spkgs {
		if pkg == nil {
			continue
		}
		names := make([]string, 0, len(pkg.Members))
		for name := range pkg.Members {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if fn, ok := pkg.Members[name].(*gossa.Function); ok {
				fns = appendWithAnons(fns, fn)
			}
		}
	}
	return fns
}

func appendWithAnons(fns []*gossa.Function, fn *gossa.Function) []*gossa.Function {
	fns = append(fns, fn)
	for _, anon := range fn.AnonFuncs {
		fns = appendWithAnons(fns, anon)
	}
	return fns
}
