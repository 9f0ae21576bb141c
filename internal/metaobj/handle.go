// Package metaobj implements metaobject handles and the per-unit Context
// that allocates and interns them.
package metaobj

import (
	"fmt"

	"mirror/internal/decl"
	"mirror/internal/meta"
)

// ID is the opaque metaobject identifier handed to user code. NoID never
// names a metaobject.
type ID uint32

const NoID ID = 0

func (id ID) IsValid() bool { return id != NoID }

// ArgKind selects the payload variant of a Handle.
type ArgKind uint8

const (
	ArgNothing ArgKind = iota // global scope
	ArgSpecifier
	ArgDecl
	ArgType
	ArgBase
)

func (k ArgKind) String() string {
	switch k {
	case ArgSpecifier:
		return "specifier"
	case ArgDecl:
		return "declaration"
	case ArgType:
		return "type"
	case ArgBase:
		return "base-specifier"
	}
	return "nothing"
}

// Handle is an immutable reflected value. Exactly one of Spec, Decl, Type
// and Base is meaningful, as selected by Arg.
type Handle struct {
	ID      ID
	Kind    meta.Kind
	SeqKind meta.SequenceKind // only for KindObjectSequence
	Arg     ArgKind

	Spec        meta.SpecToken
	Decl        decl.DeclID
	Type        decl.TypeID
	RemoveSugar bool // alias-transparent type reflection
	Base        decl.BaseID

	ExposeProtected bool
	ExposePrivate   bool
}

// Concepts returns the concept set of the handle's kind.
func (h Handle) Concepts() meta.Concept { return h.Kind.Concepts() }

// IsGlobalScope reports whether h reflects the global scope.
func (h Handle) IsGlobalScope() bool { return h.Arg == ArgNothing }

// IsNoSpecifier reports whether h is the "no specifier" metaobject.
func (h Handle) IsNoSpecifier() bool { return h.Arg == ArgSpecifier && h.Spec == meta.SpecNone }

// IsSequence reports whether h is an ObjectSequence.
func (h Handle) IsSequence() bool { return h.Kind == meta.KindObjectSequence }

// Key identifies the payload independently of kind, sequence and flags.
type Key struct {
	Arg         ArgKind
	Spec        meta.SpecToken
	Decl        decl.DeclID
	Type        decl.TypeID
	RemoveSugar bool
	Base        decl.BaseID
}

// Key returns the payload of h.
func (h Handle) Key() Key {
	return Key{Arg: h.Arg, Spec: h.Spec, Decl: h.Decl, Type: h.Type, RemoveSugar: h.RemoveSugar, Base: h.Base}
}

func (h Handle) String() string {
	s := fmt.Sprintf("#%d %s", h.ID, h.Kind)
	switch h.Arg {
	case ArgSpecifier:
		s += fmt.Sprintf(" spec=%s", h.Spec)
	case ArgDecl:
		s += fmt.Sprintf(" decl=%d", h.Decl)
	case ArgType:
		s += fmt.Sprintf(" type=%d", h.Type)
		if h.RemoveSugar {
			s += " desugared"
		}
	case ArgBase:
		s += fmt.Sprintf(" base=%d", h.Base)
	}
	if h.IsSequence() {
		s += " seq=" + h.SeqKind.String()
	}
	if h.ExposePrivate {
		s += " +private"
	} else if h.ExposeProtected {
		s += " +protected"
	}
	return s
}
