package meta

// SpecToken is a syntactic specifier token a metaobject may reflect.
// SpecNone is the "no specifier" metaobject.
type SpecToken uint8

const (
	SpecNone SpecToken = iota
	SpecClass
	SpecStruct
	SpecUnion
	SpecEnum
	SpecInterface
	SpecPublic
	SpecProtected
	SpecPrivate
	SpecStatic
	SpecVirtual
	SpecConst
	SpecVolatile
	SpecConstexpr
	SpecExtern
	SpecMutable
	SpecInline
	SpecThreadLocal

	specCount
)

var specKeywords = [specCount]string{
	SpecNone:        "",
	SpecClass:       "class",
	SpecStruct:      "struct",
	SpecUnion:       "union",
	SpecEnum:        "enum",
	SpecInterface:   "__interface",
	SpecPublic:      "public",
	SpecProtected:   "protected",
	SpecPrivate:     "private",
	SpecStatic:      "static",
	SpecVirtual:     "virtual",
	SpecConst:       "const",
	SpecVolatile:    "volatile",
	SpecConstexpr:   "constexpr",
	SpecExtern:      "extern",
	SpecMutable:     "mutable",
	SpecInline:      "inline",
	SpecThreadLocal: "thread_local",
}

// Keyword returns the spelling; SpecNone spells as "".
func (s SpecToken) Keyword() string {
	if s >= specCount {
		return ""
	}
	return specKeywords[s]
}

func (s SpecToken) String() string {
	if s == SpecNone {
		return "none"
	}
	return s.Keyword()
}

// ParseSpecifier maps a keyword to its token.
func ParseSpecifier(word string) (SpecToken, bool) {
	if word == "" {
		return SpecNone, false
	}
	for s, kw := range specKeywords {
		if kw == word {
			return SpecToken(s), true
		}
	}
	return SpecNone, false
}
