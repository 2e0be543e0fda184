package typeutil

import "go/types"

// Deref returns the element type if t is a pointer, otherwise returns t.
func Deref(t types.Type) types.Type {
	if ptr, ok := t.(*types.Pointer); ok {
		return ptr.Elem()
	}

	return t
}

// Name returns a package-path qualified description of t after
// unwrapping a single pointer. Named types render as "path.Name";
// unnamed types fall back to their structural form.
func Name(t types.Type) string {
	t = Deref(t)

	if named, ok := t.(*types.Named); ok {
		obj := named.Obj()
		if obj != nil && obj.Pkg() != nil {
			return obj.Pkg().Path() + "." + obj.Name()
		}
	}

	return types.TypeString(t, nil)
}

// IsNamedType checks if the type matches the given package path and
// type name. It handles pointer types automatically.
func IsNamedType(t types.Type, pkgPath, typeName string) bool {
	named, ok := Deref(t).(*types.Named)
	if !ok {
		return false
	}

	obj := named.Obj()
	if obj == nil || obj.Pkg() == nil {
		return false
	}

	return obj.Pkg().Path() == pkgPath && obj.Name() == typeName
}
