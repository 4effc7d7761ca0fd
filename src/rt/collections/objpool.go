package collections

import "viper/src/rt"

// ObjectPool is a fixed-capacity allocator of integer slot indices,
// grounded in rt_objpool.h: Acquire hands out a free slot (or -1 when the
// pool is full, a defined non-trapping sentinel since pool exhaustion is
// routine control flow for callers, not a fault), Release returns a slot to
// the free list.
type ObjectPool struct {
	rt.Header
	capacity int64
	active   []bool
	free     []int64
}

// NewObjectPool allocates a pool of the given capacity, every slot free.
func NewObjectPool(capacity int64) *ObjectPool {
	p := &ObjectPool{
		Header:   rt.NewHeader(rt.KindObject, rt.ElemI64, 0, int(capacity), nil),
		capacity: capacity,
		active:   make([]bool, capacity),
	}
	for i := capacity - 1; i >= 0; i-- {
		p.free = append(p.free, i)
	}
	return p
}

// Capacity returns the pool's fixed slot count.
func (p *ObjectPool) Capacity() int64 { return p.capacity }

// ActiveCount returns the number of currently acquired slots.
func (p *ObjectPool) ActiveCount() int64 {
	n := int64(0)
	for _, a := range p.active {
		if a {
			n++
		}
	}
	return n
}

// Acquire returns a free slot index, or -1 if the pool is full.
func (p *ObjectPool) Acquire() int64 {
	if len(p.free) == 0 {
		return -1
	}
	n := len(p.free) - 1
	slot := p.free[n]
	p.free = p.free[:n]
	p.active[slot] = true
	return slot
}

// Release returns slot to the free list, reporting whether it was valid
// and active.
func (p *ObjectPool) Release(slot int64) bool {
	if slot < 0 || slot >= p.capacity || !p.active[slot] {
		return false
	}
	p.active[slot] = false
	p.free = append(p.free, slot)
	return true
}

// IsActive reports whether slot is currently acquired.
func (p *ObjectPool) IsActive(slot int64) bool {
	if slot < 0 || slot >= p.capacity {
		return false
	}
	return p.active[slot]
}
