package glbind

// LocationCache memoizes uniform locations of a compiled program by name.
// Failed lookups are memoized too so a missing uniform is queried once.
type LocationCache struct {
	lookup func(name string) (int32, error)
	cache  map[string]location
}

type location struct {
	loc int32
	err error
}

// NewLocationCache returns a cache backed by lookup, which is typically
// the program's uniform location query.
func NewLocationCache(lookup func(name string) (int32, error)) *LocationCache {
	if lookup == nil {
		panic("nil location lookup")
	}
	return &LocationCache{lookup: lookup, cache: make(map[string]location)}
}

// Location returns the location of the uniform with the given name.
func (c *LocationCache) Location(name string) (int32, error) {
	l, ok := c.cache[name]
	if !ok {
		l.loc, l.err = c.lookup(name)
		c.cache[name] = l
	}
	return l.loc, l.err
}

// Len returns the number of memoized lookups.
func (c *LocationCache) Len() int { return len(c.cache) }

// Reset forgets all memoized locations, i.e: after relinking the program.
func (c *LocationCache) Reset() {
	clear(c.cache)
}
