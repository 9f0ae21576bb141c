package decl

import (
	"fmt"

	"fortio.org/safecast"

	"mirror/internal/source"
)

// Unit is an in-memory translation unit. It is built once by a loader and
// is read-only afterwards, so one Unit may back several reflection
// contexts at the same time.
type Unit struct {
	Name     string
	File     string // default spelling file for declarations
	Strings  *source.Interner
	decls    []Decl
	types    []Type
	bases    []BaseSpec
	typeKeys map[Type]TypeID
	builtins map[string]TypeID
	tu       DeclID
	frozen   bool
}

var _ Model = (*Unit)(nil)

// NewUnit returns a unit holding only its translation-unit declaration.
func NewUnit(name, file string) *Unit {
	u := &Unit{
		Name:     name,
		File:     file,
		Strings:  source.NewInterner(),
		decls:    make([]Decl, 1, 64),
		types:    make([]Type, 1, 64),
		bases:    make([]BaseSpec, 1, 8),
		typeKeys: make(map[Type]TypeID),
		builtins: make(map[string]TypeID),
	}
	u.tu = u.push(Decl{Kind: KindTranslationUnit, Loc: Location{File: file}})
	return u
}

// Len returns the number of declarations, the translation unit excluded.
func (u *Unit) Len() int { return len(u.decls) - 2 }

func (u *Unit) push(d Decl) DeclID {
	n, err := safecast.Conv[uint32](len(u.decls))
	if err != nil {
		panic(fmt.Errorf("decl arena overflow: %w", err))
	}
	u.decls = append(u.decls, d)
	return DeclID(n)
}

// Declare appends a declaration named name to parent's member list.
// Type declarations get their Self type immediately.
func (u *Unit) Declare(kind Kind, name string, parent DeclID) DeclID {
	if u.frozen {
		panic("decl: Declare on a forked unit")
	}
	if !parent.IsValid() {
		parent = u.tu
	}
	id := u.push(Decl{
		Kind:   kind,
		Name:   u.Strings.Intern(name),
		Parent: parent,
		Loc:    Location{File: u.File},
	})
	p := &u.decls[parent]
	p.Members = append(p.Members, id)
	switch kind {
	case KindRecord:
		u.decls[id].Self = u.intern(Type{Kind: TypeRecord, Decl: id})
	case KindEnum:
		u.decls[id].Tag = TagEnum
		u.decls[id].Self = u.intern(Type{Kind: TypeEnum, Decl: id})
	case KindTypedef:
		u.decls[id].Self = u.intern(Type{Kind: TypeTypedef, Decl: id})
	case KindTplTypeParam:
		u.decls[id].Self = u.intern(Type{Kind: TypeTplParam, Decl: id})
	case KindType:
		u.decls[id].Self = u.intern(Type{Kind: TypeOpaque, Decl: id})
	}
	return id
}

// SetTag records the class-key of a record.
func (u *Unit) SetTag(id DeclID, tag TagKind) {
	u.decls[id].Tag = tag
}

// AddBase appends a base-specifier to the record owner.
func (u *Unit) AddBase(owner DeclID, t TypeID, access Access, virtual bool) BaseID {
	if u.frozen {
		panic("decl: AddBase on a forked unit")
	}
	n, err := safecast.Conv[uint32](len(u.bases))
	if err != nil {
		panic(fmt.Errorf("base arena overflow: %w", err))
	}
	id := BaseID(n)
	u.bases = append(u.bases, BaseSpec{Owner: owner, Type: t, Access: access, Virtual: virtual})
	d := &u.decls[owner]
	d.Bases = append(d.Bases, id)
	return id
}

func (u *Unit) TranslationUnit() DeclID { return u.tu }

// Decl returns the declaration for id. Callers outside the loader must treat
// the result as read-only.
func (u *Unit) Decl(id DeclID) *Decl {
	if !id.IsValid() || int(id) >= len(u.decls) {
		return nil
	}
	return &u.decls[id]
}

func (u *Unit) Type(id TypeID) *Type {
	if !id.IsValid() || int(id) >= len(u.types) {
		return nil
	}
	return &u.types[id]
}

func (u *Unit) Base(id BaseID) *BaseSpec {
	if !id.IsValid() || int(id) >= len(u.bases) {
		return nil
	}
	return &u.bases[id]
}

// Decls returns the number of declarations, sentinel included.
func (u *Unit) Decls() int { return len(u.decls) }

func (u *Unit) DeclContextOf(id DeclID) DeclID {
	if d := u.Decl(id); d != nil {
		return d.Parent
	}
	return NoDeclID
}

func (u *Unit) MembersOf(id DeclID) []DeclID {
	if d := u.Decl(id); d != nil {
		return d.Members
	}
	return nil
}

func (u *Unit) BasesOf(id DeclID) []BaseID {
	if d := u.Decl(id); d != nil && d.Kind == KindRecord {
		return d.Bases
	}
	return nil
}

func (u *Unit) AccessOf(id DeclID) Access {
	if d := u.Decl(id); d != nil {
		return d.Access
	}
	return AccessNone
}

func (u *Unit) SourceLocationOf(id DeclID) Location {
	if d := u.Decl(id); d != nil {
		return d.Loc
	}
	return Location{}
}

func (u *Unit) UnderlyingTypeOf(id DeclID) TypeID {
	if d := u.Decl(id); d != nil && (d.Kind == KindTypedef || d.Kind == KindEnum) {
		return d.Type
	}
	return NoTypeID
}

func (u *Unit) TypeForDecl(id DeclID) TypeID {
	if d := u.Decl(id); d != nil {
		return d.Self
	}
	return NoTypeID
}

func (u *Unit) IntegralValueOf(id DeclID) Constant {
	if d := u.Decl(id); d != nil && d.Kind == KindEnumerator {
		return d.Value
	}
	return Constant{}
}
