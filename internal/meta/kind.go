package meta

// Kind is the concrete classification stored on a metaobject.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindSpecifier
	KindInheritance
	KindGlobalScope
	KindNamespace
	KindNamespaceAlias
	KindType
	KindEnum
	KindClass
	KindTypeAlias
	KindEnumAlias
	KindClassAlias
	KindTplTypeParam
	KindVariable
	KindDataMember
	KindMemberType
	KindMemberTypeAlias
	KindMemberClass
	KindMemberClassAlias
	KindMemberEnum
	KindMemberEnumAlias
	KindEnumerator
	KindObjectSequence

	kindCount
)

type kindEntry struct {
	name     string
	concepts Concept
}

var kinds = [kindCount]kindEntry{
	KindUnknown:          {"Unknown", NoConcept},
	KindSpecifier:        {"Specifier", Specifier},
	KindInheritance:      {"Inheritance", Inheritance},
	KindGlobalScope:      {"GlobalScope", GlobalScope},
	KindNamespace:        {"Namespace", Namespace},
	KindNamespaceAlias:   {"NamespaceAlias", Namespace | Alias},
	KindType:             {"Type", Type},
	KindEnum:             {"Enum", Enum},
	KindClass:            {"Class", Class},
	KindTypeAlias:        {"TypeAlias", Type | Alias | ScopeMember},
	KindEnumAlias:        {"EnumAlias", Enum | Alias},
	KindClassAlias:       {"ClassAlias", Class | Alias},
	KindTplTypeParam:     {"TplTypeParam", Template | Type | Parameter | Alias},
	KindVariable:         {"Variable", Variable},
	KindDataMember:       {"DataMember", RecordMember | Variable},
	KindMemberType:       {"MemberType", RecordMember | Type},
	KindMemberTypeAlias:  {"MemberTypeAlias", RecordMember | Type | Alias},
	KindMemberClass:      {"MemberClass", RecordMember | Class},
	KindMemberClassAlias: {"MemberClassAlias", RecordMember | Class | Alias},
	KindMemberEnum:       {"MemberEnum", RecordMember | Enum},
	KindMemberEnumAlias:  {"MemberEnumAlias", RecordMember | Enum | Alias},
	KindEnumerator:       {"Enumerator", Constant | Named | EnumMember},
	KindObjectSequence:   {"ObjectSequence", ObjectSequence},
}

// Concepts returns the fixed concept set of k. Out-of-range kinds have
// none.
func (k Kind) Concepts() Concept {
	if k >= kindCount {
		return NoConcept
	}
	return kinds[k].concepts
}

// Is reports whether kind k satisfies concept c.
func (k Kind) Is(c Concept) bool {
	return k.Concepts().Is(c)
}

func (k Kind) String() string {
	if k >= kindCount {
		return kinds[KindUnknown].name
	}
	return kinds[k].name
}

// Kinds lists every kind, Unknown first.
func Kinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// ParseKind is the inverse of Kind.String.
func ParseKind(name string) (Kind, bool) {
	for k, e := range kinds {
		if e.name == name {
			return Kind(k), true
		}
	}
	return KindUnknown, false
}

// MemberKind returns the record-member variant of a type kind and k
// itself for kinds without one.
func (k Kind) MemberKind() Kind {
	switch k {
	case KindType:
		return KindMemberType
	case KindTypeAlias:
		return KindMemberTypeAlias
	case KindClass:
		return KindMemberClass
	case KindClassAlias:
		return KindMemberClassAlias
	case KindEnum:
		return KindMemberEnum
	case KindEnumAlias:
		return KindMemberEnumAlias
	}
	return k
}
