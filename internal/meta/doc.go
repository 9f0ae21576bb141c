// Package meta holds the fixed classification lattice of metaobjects.
//
// A Concept is a capability bit set; a Kind is the concrete category a
// metaobject carries and maps to exactly one Concept set. The operation
// table (ops.go) is the single source for operation names, arity, result
// kinds and applicability; evaluators index it by Op.
package meta
