package typeutil

import (
	"go/token"
	"go/types"
	"testing"
)

func namedType(pkgPath, name string) *types.Named {
	pkg := types.NewPackage(pkgPath, "p")
	obj := types.NewTypeName(token.NoPos, pkg, name, nil)
	return types.NewNamed(obj, types.Typ[types.Int], nil)
}

func TestDeref(t *testing.T) {
	named := namedType("example.com/mod", "Node")

	tests := []struct {
		name string
		in   types.Type
		want types.Type
	}{
		{name: "pointer", in: types.NewPointer(named), want: named},
		{name: "non-pointer", in: named, want: named},
		{name: "basic", in: types.Typ[types.Int], want: types.Typ[types.Int]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Deref(tt.in); got != tt.want {
				t.Errorf("Deref(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestName(t *testing.T) {
	named := namedType("example.com/mod", "Node")

	tests := []struct {
		name string
		in   types.Type
		want string
	}{
		{name: "named", in: named, want: "example.com/mod.Node"},
		{name: "pointer to named", in: types.NewPointer(named), want: "example.com/mod.Node"},
		{name: "basic", in: types.Typ[types.Int], want: "int"},
		{name: "slice", in: types.NewSlice(types.Typ[types.Int]), want: "[]int"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Name(tt.in); got != tt.want {
				t.Errorf("Name(%v) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestIsNamedType(t *testing.T) {
	named := namedType("example.com/mod", "Node")

	tests := []struct {
		name     string
		in       types.Type
		pkgPath  string
		typeName string
		want     bool
	}{
		{name: "match", in: named, pkgPath: "example.com/mod", typeName: "Node", want: true},
		{name: "match through pointer", in: types.NewPointer(named), pkgPath: "example.com/mod", typeName: "Node", want: true},
		{name: "wrong package", in: named, pkgPath: "example.com/other", typeName: "Node", want: false},
		{name: "wrong name", in: named, pkgPath: "example.com/mod", typeName: "Edge", want: false},
		{name: "unnamed", in: types.Typ[types.Int], pkgPath: "example.com/mod", typeName: "Node", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNamedType(tt.in, tt.pkgPath, tt.typeName); got != tt.want {
				t.Errorf("IsNamedType(%v, %q, %q) = %v, want %v", tt.in, tt.pkgPath, tt.typeName, got, tt.want)
			}
		})
	}
}
