package source

import "golang.org/x/text/unicode/norm"

// StringID names an interned identifier; NoStringID is the empty name.
type StringID uint32

const NoStringID StringID = 0

// Interner deduplicates identifiers. Strings are NFC-normalized first so
// that differently composed spellings of one name share an ID.
type Interner struct {
	byID  []string
	index map[string]StringID
}

func NewInterner() *Interner {
	return &Interner{
		byID:  []string{""},
		index: map[string]StringID{"": NoStringID},
	}
}

func (i *Interner) Intern(s string) StringID {
	s = norm.NFC.String(s)
	if id, ok := i.index[s]; ok {
		return id
	}
	id := StringID(len(i.byID)) // #nosec G115 -- bounded by declaration count
	i.byID = append(i.byID, s)
	i.index[s] = id
	return id
}

// Find reports the ID of s without inserting it.
func (i *Interner) Find(s string) (StringID, bool) {
	id, ok := i.index[norm.NFC.String(s)]
	return id, ok
}

func (i *Interner) Lookup(id StringID) (string, bool) {
	if int(id) >= len(i.byID) {
		return "", false
	}
	return i.byID[id], true
}

// MustLookup panics on an ID this interner never produced.
func (i *Interner) MustLookup(id StringID) string {
	s, ok := i.Lookup(id)
	if !ok {
		panic("invalid string ID")
	}
	return s
}

func (i *Interner) Len() int { return len(i.byID) }
