package context

// ID is a dense integer handle for an interned context. Ids order
// totally and substitute for full context comparison everywhere else
// in the analysis. The zero ID is reserved and never issued.
type ID uint32

// InvalidID is the reserved zero handle.
const InvalidID ID = 0

// Cache interns contexts by content: equal content always yields the
// same id, no matter how the context was built. The cache owns the
// canonical context list and is torn down only with the whole
// analysis. It is not safe for concurrent use.
type Cache struct {
	ids      map[string]ID
	contexts []*Context // index == ID; slot 0 reserved
}

// NewCache returns an empty cache. The empty context is interned
// eagerly so the most common lookup never allocates.
func NewCache() *Cache {
	c := &Cache{
		ids:      make(map[string]ID),
		contexts: make([]*Context, 1, 16),
	}
	c.Intern(Empty())
	return c
}

// Intern returns the id for ctx, allocating the next dense id on
// first sight of its content. Idempotent by value: independently
// built, content-equal contexts map to one id.
func (c *Cache) Intern(ctx *Context) ID {
	key := ctx.key()
	if id, ok := c.ids[key]; ok {
		return id
	}
	id := ID(len(c.contexts))
	c.ids[key] = id
	c.contexts = append(c.contexts, ctx)
	return id
}

// Context is the reverse lookup. Absence (the reserved id, or an id
// never issued) is an expected outcome, not an error.
func (c *Cache) Context(id ID) (*Context, bool) {
	if id == InvalidID || int(id) >= len(c.contexts) {
		return nil, false
	}
	return c.contexts[id], true
}

// Len returns the number of distinct interned contexts.
func (c *Cache) Len() int { return len(c.contexts) - 1 }
