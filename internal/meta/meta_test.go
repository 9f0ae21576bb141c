package meta

import (
	"slices"
	"testing"
)

func TestConceptRefinement(t *testing.T) {
	chains := [][]Concept{
		{Class, Record, TagType, Type, Named},
		{Enum, TagType, Scope},
		{GlobalScope, Namespace, ScopeMember},
		{Variable, Typed},
		{Constant, Typed},
		{EnumMember, ScopeMember},
		{RecordMember, ScopeMember},
	}
	for _, chain := range chains {
		for i := 1; i < len(chain); i++ {
			if !chain[i-1].Is(chain[i]) {
				t.Errorf("%s must refine %s", chain[i-1], chain[i])
			}
			if chain[i].Is(chain[i-1]) {
				t.Errorf("%s must not refine %s", chain[i], chain[i-1])
			}
		}
	}
	if Enum.Is(Record) || Record.Is(Enum) {
		t.Errorf("Enum and Record are unrelated")
	}
}

func TestKindConceptTable(t *testing.T) {
	for _, k := range Kinds() {
		if k.Concepts() != k.Concepts() {
			t.Fatalf("unstable concept set for %s", k)
		}
		if got, ok := ParseKind(k.String()); !ok || got != k {
			t.Errorf("ParseKind(%q) = %v, %v", k, got, ok)
		}
		if m := k.MemberKind(); m != k {
			if !m.Is(k.Concepts()) || !m.Is(RecordMember) {
				t.Errorf("%s must add RecordMember to %s", m, k)
			}
		}
	}
	if KindUnknown.Concepts() != NoConcept {
		t.Errorf("Unknown must satisfy nothing")
	}
	if !KindClass.Is(TagType) || !KindClass.Is(Type) || !KindClass.Is(Scope) {
		t.Errorf("Class concepts = %s", KindClass.Concepts())
	}
	if !KindGlobalScope.Is(Namespace) {
		t.Errorf("the global scope is a namespace")
	}
	if KindDataMember.Concepts() != RecordMember|Variable {
		t.Errorf("DataMember = %s", KindDataMember.Concepts())
	}
	if Kind(200).String() != "Unknown" {
		t.Errorf("out-of-range kind name = %q", Kind(200))
	}
}

func TestConceptNames(t *testing.T) {
	if got := Class.String(); got != "Class" {
		t.Errorf("Class.String() = %q", got)
	}
	got := (RecordMember | Variable).Most()
	if !slices.Equal(got, []string{"RecordMember", "Variable"}) {
		t.Errorf("Most = %v", got)
	}
	names := KindGlobalScope.Concepts().Names()
	for _, want := range []string{"Named", "Scope", "ScopeMember", "Namespace", "GlobalScope"} {
		if !slices.Contains(names, want) {
			t.Errorf("GlobalScope concepts %v lack %s", names, want)
		}
	}
	if len(Concepts()) != 22 {
		t.Errorf("got %d concepts", len(Concepts()))
	}
}

func TestTraitOpsMatchConcepts(t *testing.T) {
	cs := Concepts()
	for i, c := range cs {
		op := opTraitFirst + Op(i)
		info, _ := Info(op)
		if info.Trait != c || info.Name != "IsMeta"+c.Name() {
			t.Errorf("trait op %d = %+v, want concept %s", op, info, c)
		}
		if !op.IsTrait() || !op.Applicable(KindUnknown) {
			t.Errorf("%s must be an always applicable trait", op)
		}
	}
	if opTraitLast-opTraitFirst+1 != Op(len(cs)) {
		t.Fatalf("trait range does not cover the concept list")
	}
}

func TestOpTableComplete(t *testing.T) {
	for _, op := range Ops() {
		info, ok := Info(op)
		if !ok || info.Op != op || info.Name == "" {
			t.Errorf("row %d is incomplete: %+v", op, info)
		}
		if got, ok := LookupOp(info.Name); !ok || got != op {
			t.Errorf("LookupOp(%q) = %v", info.Name, got)
		}
		if len(info.Params) == 0 || info.Params[0] != ParamMetaobject {
			t.Errorf("%s: the first parameter must be the subject", op)
		}
	}
	if _, ok := Info(OpInvalid); ok {
		t.Errorf("OpInvalid has a row")
	}
	if OpReflectsSame.IsUnary() || OpGetElement.Arity() != 2 {
		t.Errorf("n-ary arity mismatch")
	}
}

func TestLookupSpellings(t *testing.T) {
	tests := []struct {
		name string
		want Op
	}{
		{"GetBaseName", OpGetBaseName},
		{"get_base_name", OpGetBaseName},
		{"__metaobject_get_base_name", OpGetBaseName},
		{"GetDataMembers", OpGetMemberVariables},
		{"get_data_members", OpGetMemberVariables},
		{"get_id_value", OpGetIdValue},
		{"is_meta_object_sequence", OpIsMetaObjectSequence},
		{"is_meta_tag_type", OpIsMetaTagType},
		{"reflects_same", OpReflectsSame},
		{"__metaobject_get_element", OpGetElement},
	}
	for _, tt := range tests {
		if got, ok := LookupOp(tt.name); !ok || got != tt.want {
			t.Errorf("LookupOp(%q) = %s, %v; want %s", tt.name, got, ok, tt.want)
		}
	}
	if _, ok := LookupOp("get_everything"); ok {
		t.Errorf("unknown spelling resolved")
	}
}

func TestApplicability(t *testing.T) {
	tests := []struct {
		op   Op
		kind Kind
		want bool
	}{
		{OpGetBaseClasses, KindClass, true},
		{OpGetBaseClasses, KindClassAlias, true},
		{OpGetBaseClasses, KindEnum, false},
		{OpGetScope, KindGlobalScope, true},
		{OpGetBaseName, KindSpecifier, true},
		{OpGetBaseName, KindInheritance, false},
		{OpIsPublic, KindDataMember, true},
		{OpIsPublic, KindInheritance, true},
		{OpIsPublic, KindMemberClass, true},
		{OpIsPublic, KindVariable, false},
		{OpGetConstant, KindEnumerator, true},
		{OpGetConstant, KindVariable, false},
		{OpUnreflectVariable, KindDataMember, true},
		{OpGetSize, KindObjectSequence, true},
		{OpGetSize, KindClass, false},
		{OpGetElement, KindObjectSequence, true},
		{OpReflectsSame, KindUnknown, true},
		{OpIsScopedEnum, KindMemberEnumAlias, true},
		{OpGetType, KindEnumerator, true},
		{OpGetAliased, KindTplTypeParam, true},
		{OpGetAliased, KindType, false},
	}
	for _, tt := range tests {
		if got := tt.op.Applicable(tt.kind); got != tt.want {
			t.Errorf("%s on %s = %v, want %v", tt.op, tt.kind, got, tt.want)
		}
	}
}

func TestSpecifiers(t *testing.T) {
	for s := SpecNone + 1; s < specCount; s++ {
		got, ok := ParseSpecifier(s.Keyword())
		if !ok || got != s {
			t.Errorf("ParseSpecifier(%q) = %v, %v", s.Keyword(), got, ok)
		}
	}
	if _, ok := ParseSpecifier(""); ok {
		t.Errorf("empty keyword parsed")
	}
	if _, ok := ParseSpecifier("friend"); ok {
		t.Errorf("friend is not a reflectable specifier")
	}
	if SpecNone.String() != "none" || SpecNone.Keyword() != "" {
		t.Errorf("SpecNone spelling")
	}
	// токены спецификаторов и концепт Specifier живут рядом
	var tok SpecToken = SpecProtected
	if tok.Keyword() != "protected" || !KindSpecifier.Is(Specifier) {
		t.Errorf("specifier token %v / concept %v", tok, KindSpecifier.Concepts())
	}
	if op, ok := LookupOp("IsMetaSpecifier"); !ok || op != OpIsMetaSpecifier {
		t.Errorf("IsMetaSpecifier lookup = %v, %v", op, ok)
	}
}

func TestSnakeCase(t *testing.T) {
	tests := map[string]string{
		"GetIdValue":           "get_id_value",
		"IsMetaObjectSequence": "is_meta_object_sequence",
		"UnreflectVariable":    "unreflect_variable",
		"GetSourceFileLen":     "get_source_file_len",
	}
	for in, want := range tests {
		if got := SnakeCase(in); got != want {
			t.Errorf("SnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
