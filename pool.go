package term

// refPool is a hash-map+refcount dedup pool (spec.md §4.5 "Style and
// hyperlink pools are hash-map+refcount"). Index 0 is reserved as the
// implicit "none"/default entry and is never refcounted or reclaimed.
type refPool[K comparable] struct {
	values []K
	index  map[K]uint32
	refs   []uint32
	free   []uint32
}

func newRefPool[K comparable](zero K) *refPool[K] {
	return &refPool[K]{
		values: []K{zero},
		index:  map[K]uint32{zero: 0},
		refs:   []uint32{1}, // the zero entry is never reclaimed
	}
}

// Intern returns the pool index for v, allocating a new entry if v hasn't
// been seen before, and increments its refcount.
func (p *refPool[K]) Intern(v K) uint32 {
	if id, ok := p.index[v]; ok {
		p.refs[id]++
		return id
	}
	var id uint32
	if n := len(p.free); n > 0 {
		id = p.free[n-1]
		p.free = p.free[:n-1]
		p.values[id] = v
		p.refs[id] = 1
	} else {
		id = uint32(len(p.values))
		p.values = append(p.values, v)
		p.refs = append(p.refs, 1)
	}
	p.index[v] = id
	return id
}

// Release decrements id's refcount; when it hits zero the slot is reclaimed
// and made available for reuse (spec.md §3 Lifecycle).
func (p *refPool[K]) Release(id uint32) {
	if id == 0 || int(id) >= len(p.refs) || p.refs[id] == 0 {
		return
	}
	p.refs[id]--
	if p.refs[id] == 0 {
		delete(p.index, p.values[id])
		var zero K
		p.values[id] = zero
		p.free = append(p.free, id)
	}
}

// Retain increments id's refcount without interning. No code in this
// package calls it; resize re-wrap copies cells without touching refcounts.
func (p *refPool[K]) Retain(id uint32) {
	if id > 0 && int(id) < len(p.refs) {
		p.refs[id]++
	}
}

func (p *refPool[K]) Get(id uint32) K {
	if int(id) >= len(p.values) {
		var zero K
		return zero
	}
	return p.values[id]
}

// graphemeKey is the dedup key for a multi-rune cluster: []rune isn't
// comparable, so clusters are interned by their string form.
type graphemeKey = string
