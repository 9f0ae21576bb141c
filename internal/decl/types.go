package decl

import (
	"fmt"
	"maps"
	"strings"

	"fortio.org/safecast"
)

type builtinInfo struct {
	width    uint8
	signed   bool
	integral bool
}

var builtinTypes = map[string]builtinInfo{
	"void":               {},
	"bool":               {width: 8, integral: true},
	"char":               {width: 8, signed: true, integral: true},
	"signed char":        {width: 8, signed: true, integral: true},
	"unsigned char":      {width: 8, integral: true},
	"wchar_t":            {width: 32, signed: true, integral: true},
	"char8_t":            {width: 8, integral: true},
	"char16_t":           {width: 16, integral: true},
	"char32_t":           {width: 32, integral: true},
	"short":              {width: 16, signed: true, integral: true},
	"unsigned short":     {width: 16, integral: true},
	"int":                {width: 32, signed: true, integral: true},
	"unsigned int":       {width: 32, integral: true},
	"long":               {width: 64, signed: true, integral: true},
	"unsigned long":      {width: 64, integral: true},
	"long long":          {width: 64, signed: true, integral: true},
	"unsigned long long": {width: 64, integral: true},
	"float":              {},
	"double":             {},
	"long double":        {},
}

// IsBuiltinWord reports whether w can start or continue a builtin spelling.
func IsBuiltinWord(w string) bool {
	switch w {
	case "signed", "unsigned", "short", "long", "int", "char", "double",
		"void", "bool", "float", "wchar_t", "char8_t", "char16_t", "char32_t":
		return true
	}
	return false
}

// CanonicalBuiltin folds a multi-word builtin spelling ("long int",
// "unsigned") into the spelling used for names ("long", "unsigned int").
func CanonicalBuiltin(words []string) (string, bool) {
	var sgn, uns, short, long, ints, chars, dbl int
	other := ""
	for _, w := range words {
		switch w {
		case "signed":
			sgn++
		case "unsigned":
			uns++
		case "short":
			short++
		case "long":
			long++
		case "int":
			ints++
		case "char":
			chars++
		case "double":
			dbl++
		case "void", "bool", "float", "wchar_t", "char8_t", "char16_t", "char32_t":
			if other != "" {
				return "", false
			}
			other = w
		default:
			return "", false
		}
	}
	if sgn+uns > 1 || ints > 1 || chars > 1 || dbl > 1 || short > 1 || long > 2 || (short > 0 && long > 0) {
		return "", false
	}
	switch {
	case other != "":
		if len(words) != 1 {
			return "", false
		}
		return other, true
	case dbl == 1:
		if sgn+uns+short+ints+chars > 0 || long > 1 {
			return "", false
		}
		if long == 1 {
			return "long double", true
		}
		return "double", true
	case chars == 1:
		if short+long+ints > 0 {
			return "", false
		}
		switch {
		case uns > 0:
			return "unsigned char", true
		case sgn > 0:
			return "signed char", true
		}
		return "char", true
	}
	base := "int"
	switch {
	case short == 1:
		base = "short"
	case long == 1:
		base = "long"
	case long == 2:
		base = "long long"
	}
	if uns > 0 {
		return "unsigned " + base, true
	}
	return base, true
}

func (u *Unit) intern(t Type) TypeID {
	if id, ok := u.typeKeys[t]; ok {
		return id
	}
	n, err := safecast.Conv[uint32](len(u.types))
	if err != nil {
		panic(fmt.Errorf("type arena overflow: %w", err))
	}
	id := TypeID(n)
	u.types = append(u.types, t)
	u.typeKeys[t] = id
	return id
}

// Builtin returns the type for a canonical builtin spelling.
func (u *Unit) Builtin(name string) (TypeID, error) {
	if id, ok := u.builtins[name]; ok {
		return id, nil
	}
	canon, ok := CanonicalBuiltin(strings.Fields(name))
	if !ok {
		return NoTypeID, fmt.Errorf("unknown builtin type %q", name)
	}
	id := u.intern(Type{Kind: TypeBuiltin, Builtin: canon})
	u.builtins[name] = id
	return id, nil
}

// MustBuiltin is Builtin for spellings known to be valid.
func (u *Unit) MustBuiltin(name string) TypeID {
	id, err := u.Builtin(name)
	if err != nil {
		panic(err)
	}
	return id
}

func (u *Unit) PointerTo(t TypeID) TypeID {
	return u.intern(Type{Kind: TypePointer, Elem: t})
}

func (u *Unit) LValueRefTo(t TypeID) TypeID {
	return u.intern(Type{Kind: TypeLValueRef, Elem: t})
}

func (u *Unit) RValueRefTo(t TypeID) TypeID {
	return u.intern(Type{Kind: TypeRValueRef, Elem: t})
}

func (u *Unit) ArrayOf(t TypeID, n uint64) TypeID {
	return u.intern(Type{Kind: TypeArray, Elem: t, Len: n})
}

// Elaborated wraps t as written with a class-key or enum-key.
func (u *Unit) Elaborated(t TypeID) TypeID {
	return u.intern(Type{Kind: TypeElaborated, Elem: t})
}

func (u *Unit) Decltype(t TypeID) TypeID {
	return u.intern(Type{Kind: TypeDecltype, Elem: t})
}

// Subst is the sugar left after substituting param with replacement.
func (u *Unit) Subst(param DeclID, replacement TypeID) TypeID {
	return u.intern(Type{Kind: TypeSubstParam, Decl: param, Elem: replacement})
}

// WithConst returns the const-qualified variant of t.
func (u *Unit) WithConst(t TypeID) TypeID {
	tt := u.types[t]
	if tt.Const {
		return t
	}
	tt.Const = true
	return u.intern(tt)
}

// Desugar strips top-level sugar (typedefs, substitutions, elaborated
// keywords, decltype). Qualifiers of the sugar nodes are dropped.
func (u *Unit) Desugar(t TypeID) TypeID {
	for range len(u.types) {
		tt := u.Type(t)
		if tt == nil || !tt.Kind.IsSugar() {
			return t
		}
		if tt.Kind == TypeTypedef {
			t = u.decls[tt.Decl].Type
		} else {
			t = tt.Elem
		}
	}
	panic(fmt.Errorf("cyclic type sugar at type %d", t))
}

// BuiltinProps returns integral width and signedness of a builtin type.
func BuiltinProps(name string) (width uint8, signed, integral bool) {
	info := builtinTypes[name]
	return info.width, info.signed, info.integral
}

// Fork returns a unit that shares declarations with u but owns a private
// copy of the type table, so types created while evaluating queries stay
// local. Declarations must not be added to a fork.
func (u *Unit) Fork() *Unit {
	f := *u
	f.types = append(make([]Type, 0, len(u.types)+16), u.types...)
	f.typeKeys = maps.Clone(u.typeKeys)
	f.builtins = maps.Clone(u.builtins)
	f.frozen = true
	return &f
}
