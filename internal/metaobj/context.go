package metaobj

import (
	"fmt"

	"fortio.org/safecast"

	"mirror/internal/decl"
	"mirror/internal/meta"
)

// Context owns every handle created while evaluating reflection against
// one translation unit. Canonical handles (global scope, "no specifier",
// specifiers and declarations) are interned here; type, base-specifier and
// derived handles are allocated fresh.
//
// A Context is not safe for concurrent use. Parallel evaluation gives each
// worker its own Context.
type Context struct {
	model   decl.Model
	handles []Handle
	global  ID
	noSpec  ID
	specs   map[meta.SpecToken]ID
	decls   map[decl.DeclID]ID
	stats   Stats
}

// Stats counts handle allocations of a Context.
type Stats struct {
	Allocated int // handles created
	Hits      int // reflections answered from the intern caches
}

// NewContext creates an empty context over m.
func NewContext(m decl.Model) *Context {
	c := &Context{model: m}
	c.Reset()
	return c
}

// Model returns the declaration model the context reflects.
func (c *Context) Model() decl.Model { return c.model }

// Reset discards every handle and cache entry. IDs handed out before the
// reset become invalid.
func (c *Context) Reset() {
	c.handles = make([]Handle, 1, 64) // slot 0 is NoID
	c.global, c.noSpec = NoID, NoID
	c.specs = make(map[meta.SpecToken]ID)
	c.decls = make(map[decl.DeclID]ID)
	c.stats = Stats{}
}

// Len returns the number of live handles.
func (c *Context) Len() int { return len(c.handles) - 1 }

func (c *Context) Stats() Stats { return c.stats }

// Get returns the handle for id; ok is false for IDs this context did not
// produce.
func (c *Context) Get(id ID) (Handle, bool) {
	if !id.IsValid() || int(id) >= len(c.handles) {
		return Handle{}, false
	}
	return c.handles[id], true
}

// MustGet is Get for IDs known to be valid.
func (c *Context) MustGet(id ID) Handle {
	h, ok := c.Get(id)
	if !ok {
		panic(fmt.Sprintf("metaobj: unknown metaobject id %d", id))
	}
	return h
}

func (c *Context) alloc(h Handle) ID {
	n, err := safecast.Conv[uint32](len(c.handles))
	if err != nil {
		panic(fmt.Errorf("metaobject arena overflow: %w", err))
	}
	h.ID = ID(n)
	c.handles = append(c.handles, h)
	c.stats.Allocated++
	return h.ID
}
