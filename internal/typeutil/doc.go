// Package typeutil provides small go/types helpers used when building
// allocation-site type descriptors.
//
// Heap allocations surface as pointer-typed values, so [Deref] unwraps
// one level of pointer before the type is described:
//
//	Deref(*pkg.T)  // pkg.T
//	Deref(pkg.T)   // pkg.T
//
// [Name] renders a type as "path.Name" for named types and falls back
// to the structural form for everything else. [IsNamedType] compares a
// type against a package path and type name, unwrapping pointers the
// same way.
package typeutil
