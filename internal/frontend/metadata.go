package frontend

import (
	"go/token"
	"os"
	"path/filepath"

	"golang.org/x/mod/modfile"
	gossa "golang.org/x/tools/go/ssa"
	"k8s.io/klog/v2"

	"github.com/rustanlys/goptr/internal/cfg"
	analysisctx "github.com/rustanlys/goptr/internal/context"
)

// FunctionRecord is diagnostic metadata for one analyzed function. It
// never influences analysis results. Loc is left absent and Module is
// -1 when resolution fails.
type FunctionRecord struct {
	ID     analysisctx.FuncID
	Name   string
	Loc    cfg.Location
	Module int
}

// CallSiteRecord is diagnostic metadata for one call site.
type CallSiteRecord struct {
	Caller string
	Callee string
	Loc    cfg.Location
}

// ModuleRecord identifies a Go module an analyzed function belongs
// to: the go.mod manifest path and the module path it declares.
type ModuleRecord struct {
	Manifest string
	Path     string
}

// Resolver issues stable function ids and resolves diagnostic
// metadata. Resolution failures are recoverable: a warning is logged,
// the affected fields stay absent and processing continues.
type Resolver struct {
	fset    *token.FileSet
	ids     map[string]analysisctx.FuncID
	modules []ModuleRecord
	byDir   map[string]int // dir -> index into modules, -1 for known misses
}

// NewResolver returns a resolver over the program's file set.
func NewResolver(fset *token.FileSet) *Resolver {
	return &Resolver{
		fset:  fset,
		ids:   make(map[string]analysisctx.FuncID),
		byDir: make(map[string]int),
	}
}

// FuncID interns the function's full name to a dense id.
func (r *Resolver) FuncID(fn *gossa.Function) analysisctx.FuncID {
	name := fn.String()
	if id, ok := r.ids[name]; ok {
		return id
	}
	id := analysisctx.FuncID(len(r.ids) + 1)
	r.ids[name] = id
	return id
}

// Modules returns every module resolved so far.
func (r *Resolver) Modules() []ModuleRecord { return r.modules }

// FunctionRecord resolves the diagnostic record of fn.
func (r *Resolver) FunctionRecord(fn *gossa.Function) FunctionRecord {
	rec := FunctionRecord{ID: r.FuncID(fn), Name: fn.String(), Module: -1}
	rec.Loc = r.location(fn.Pos())
	if !rec.Loc.IsValid() {
		klog.Warningf("no source location for function %s", fn)
		return rec
	}
	rec.Module = r.moduleFor(filepath.Dir(rec.Loc.File))
	return rec
}

// CallSiteRecord resolves the diagnostic record of one call edge.
func (r *Resolver) CallSiteRecord(caller *gossa.Function, site gossa.CallInstruction, callee *gossa.Function) CallSiteRecord {
	return CallSiteRecord{
		Caller: caller.String(),
		Callee: callee.String(),
		Loc:    r.location(site.Pos()),
	}
}

// CallSiteElem builds the context element for one call edge.
func (r *Resolver) CallSiteElem(caller *gossa.Function, site gossa.CallInstruction, callee *gossa.Function) analysisctx.CallSite {
	loc := r.location(site.Pos())
	return analysisctx.CallSite{
		Caller: r.FuncID(caller),
		Callee: r.FuncID(callee),
		File:   loc.File,
		Line:   loc.Line,
	}
}

func (r *Resolver) location(pos token.Pos) cfg.Location {
	if !pos.IsValid() {
		return cfg.Location{}
	}
	p := r.fset.Position(pos)
	return cfg.Location{File: p.Filename, Line: p.Line}
}

// moduleFor finds the module owning dir by walking up to the nearest
// go.mod, interning a ModuleRecord for it. Returns -1 when no
// manifest encloses the directory.
func (r *Resolver) moduleFor(dir string) int {
	if idx, ok := r.byDir[dir]; ok {
		return idx
	}
	idx := -1
	if manifest, ok := findManifest(dir); ok {
		idx = r.internModule(manifest)
	} else {
		klog.Warningf("no enclosing go.mod for %s", dir)
	}
	r.byDir[dir] = idx
	return idx
}

func (r *Resolver) internModule(manifest string) int {
	for i, m := range r.modules {
		if m.Manifest == manifest {
			return i
		}
	}
	rec := ModuleRecord{Manifest: manifest}
	if data, err := os.ReadFile(manifest); err != nil {
		klog.Warningf("reading %s: %v", manifest, err)
	} else {
		rec.Path = modfile.ModulePath(data)
	}
	r.modules = append(r.modules, rec)
	return len(r.modules) - 1
}

// findManifest walks from dir toward the filesystem root looking for
// a go.mod.
func findManifest(dir string) (string, bool) {
	for {
		manifest := filepath.Join(dir, "go.mod")
		if info, err := os.Stat(manifest); err == nil && !info.IsDir() {
			return manifest, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
