package meta

import "strings"

// Concept is a set of capability bits. Composite concepts include every
// bit of the concepts they refine, so "is a" is a subset test.
type Concept uint32

// Base concepts own exactly one bit.
const (
	ObjectSequence Concept = 1 << iota
	Reversible
	Named
	Typed
	Scope
	ScopeMember
	Inheritance
	Template
	Parameter
	enumMemberBit
	recordMemberBit
	aliasBit
	constantBit
	variableBit
	namespaceBit
	globalScopeBit
	typeBit
	tagTypeBit
	enumBit
	recordBit
	classBit
	specifierBit
)

// Refined concepts.
const (
	EnumMember   = enumMemberBit | ScopeMember
	RecordMember = recordMemberBit | ScopeMember
	Alias        = aliasBit | Named
	Constant     = constantBit | Typed
	Variable     = variableBit | Named | Typed | ScopeMember
	Namespace    = namespaceBit | Named | Scope | ScopeMember
	GlobalScope  = globalScopeBit | Namespace
	Type         = typeBit | Named | Reversible
	TagType      = tagTypeBit | Type | Scope | ScopeMember
	Enum         = enumBit | TagType
	Record       = recordBit | TagType
	Class        = classBit | Record
	Specifier    = specifierBit | Named
)

// NoConcept is the empty set carried by Unknown metaobjects.
const NoConcept Concept = 0

type conceptEntry struct {
	c    Concept
	name string
}

// concepts lists every named concept in bit order. Trait operations are
// generated from this list.
var concepts = [...]conceptEntry{
	{ObjectSequence, "ObjectSequence"},
	{Reversible, "Reversible"},
	{Named, "Named"},
	{Typed, "Typed"},
	{Scope, "Scope"},
	{ScopeMember, "ScopeMember"},
	{Inheritance, "Inheritance"},
	{Template, "Template"},
	{Parameter, "Parameter"},
	{EnumMember, "EnumMember"},
	{RecordMember, "RecordMember"},
	{Alias, "Alias"},
	{Constant, "Constant"},
	{Variable, "Variable"},
	{Namespace, "Namespace"},
	{GlobalScope, "GlobalScope"},
	{Type, "Type"},
	{TagType, "TagType"},
	{Enum, "Enum"},
	{Record, "Record"},
	{Class, "Class"},
	{Specifier, "Specifier"},
}

// Concepts returns every named concept in bit order.
func Concepts() []Concept {
	out := make([]Concept, len(concepts))
	for i, e := range concepts {
		out[i] = e.c
	}
	return out
}

// Is reports whether s satisfies c. The empty concept is satisfied by
// everything.
func (s Concept) Is(c Concept) bool {
	return s&c == c
}

// Name returns the concept name for a named concept and "" otherwise.
func (c Concept) Name() string {
	for _, e := range concepts {
		if e.c == c {
			return e.name
		}
	}
	return ""
}

// Names lists the named concepts satisfied by s, in bit order.
func (s Concept) Names() []string {
	var out []string
	for _, e := range concepts {
		if s.Is(e.c) {
			out = append(out, e.name)
		}
	}
	return out
}

// Most returns the named concepts of s that no other concept of s refines.
func (s Concept) Most() []string {
	var out []string
	for _, e := range concepts {
		if !s.Is(e.c) {
			continue
		}
		refined := false
		for _, o := range concepts {
			if o.c != e.c && s.Is(o.c) && o.c.Is(e.c) {
				refined = true
				break
			}
		}
		if !refined {
			out = append(out, e.name)
		}
	}
	return out
}

func (s Concept) String() string {
	if s == NoConcept {
		return "none"
	}
	if n := s.Name(); n != "" {
		return n
	}
	return strings.Join(s.Most(), "|")
}
