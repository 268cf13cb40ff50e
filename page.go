package slab

import "math/bits"

// Dropper is implemented by elements that hold resources which must be
// released when their slot is vacated, either by Free or by page teardown.
// The method is looked up on *T.
type Dropper interface {
	Drop()
}

type pageHeader[T any] struct {
	refcount  refCount
	owner     *RootRef[T] // keeps the arena alive while this page exists
	allocated uint64      // bit i set: slot i holds a live element
	ready     uint64      // bit i set: slot i was marked ready by a scheduler
}

// Page is one fixed-size block of slots. Slot storage is allocated once when
// the page is created and never moves, so pointers returned by Get stay valid
// until the slot is freed or the page is torn down.
type Page[T any] struct {
	header pageHeader[T]
	index  int
	full   uint64
	values []T
}

func newPage[T any](owner *RootRef[T], index int, l Layout) *PageRef[T] {
	p := &Page[T]{
		header: pageHeader[T]{
			refcount: 1,
			owner:    owner,
		},
		index:  index,
		full:   l.fullMask(),
		values: make([]T, l.NumValues),
	}
	return &PageRef[T]{page: p}
}

// allocate stores v in the lowest free slot. It reports the slot and whether
// the page has no free slot left afterwards.
func (p *Page[T]) allocate(v T) (int, bool) {
	allocated := p.header.allocated
	ix := bits.TrailingZeros64(^allocated)
	if ix >= len(p.values) {
		panic(ErrPageFull)
	}
	p.values[ix] = v
	allocated |= 1 << uint(ix)
	p.header.allocated = allocated
	return ix, allocated == p.full
}

// free destroys the element in slot ix. It reports false if the slot holds
// nothing.
func (p *Page[T]) free(ix int) bool {
	v, ok := p.vacate(ix)
	if ok {
		dropValue(v)
	}
	return ok
}

// vacate marks slot ix empty and returns its storage, still holding the
// element, for the caller to destroy.
func (p *Page[T]) vacate(ix int) (*T, bool) {
	if !p.occupied(ix) {
		return nil, false
	}
	mask := uint64(1) << uint(ix)
	p.header.allocated &^= mask
	p.header.ready &^= mask
	return &p.values[ix], true
}

// Get returns the element in slot ix, or false if the slot is out of range
// or empty.
func (p *Page[T]) Get(ix int) (*T, bool) {
	if !p.occupied(ix) {
		return nil, false
	}
	return &p.values[ix], true
}

func (p *Page[T]) occupied(ix int) bool {
	if ix < 0 || ix >= len(p.values) {
		return false
	}
	return p.header.allocated&(uint64(1)<<uint(ix)) != 0
}

func (p *Page[T]) markReady(ix int) bool {
	if !p.occupied(ix) {
		return false
	}
	p.header.ready |= 1 << uint(ix)
	return true
}

// takeReady clears and returns the ready bits of occupied slots.
func (p *Page[T]) takeReady() uint64 {
	ready := p.header.ready & p.header.allocated
	p.header.ready = 0
	return ready
}

// teardown destroys every live element, then lets go of the arena.
func (p *Page[T]) teardown() {
	allocated := p.header.allocated
	for allocated != 0 {
		ix := bits.TrailingZeros64(allocated)
		dropValue(&p.values[ix])
		allocated &= allocated - 1
	}
	p.header.allocated = 0
	p.header.ready = 0
	p.values = nil

	owner := p.header.owner
	p.header.owner = nil
	owner.releaseBackRef()
}

func dropValue[T any](v *T) {
	if d, ok := any(v).(Dropper); ok {
		d.Drop()
	}
	var zero T
	*v = zero
}

// PageRef is a counted handle to a Page. The page is torn down when its
// last handle is released.
type PageRef[T any] struct {
	page *Page[T]
}

func (r *PageRef[T]) mustPage() *Page[T] {
	if r == nil || r.page == nil {
		panic(ErrReleased)
	}
	return r.page
}

// Clone returns a new handle to the same page.
func (r *PageRef[T]) Clone() *PageRef[T] {
	p := r.mustPage()
	p.header.refcount.retain()
	return &PageRef[T]{page: p}
}

// Release drops this handle. The handle must not be used afterwards.
func (r *PageRef[T]) Release() {
	p := r.mustPage()
	r.page = nil
	if p.header.refcount.release() {
		p.teardown()
	}
}

// Index returns the page's position in its arena.
func (r *PageRef[T]) Index() int { return r.mustPage().index }

// Get returns the element in slot ix.
func (r *PageRef[T]) Get(ix int) (*T, bool) { return r.mustPage().Get(ix) }

// Len returns the number of live elements.
func (r *PageRef[T]) Len() int { return bits.OnesCount64(r.mustPage().header.allocated) }

// Cap returns the number of usable slots.
func (r *PageRef[T]) Cap() int { return len(r.mustPage().values) }

// Full reports whether every usable slot is occupied.
func (r *PageRef[T]) Full() bool {
	p := r.mustPage()
	return p.header.allocated == p.full
}

// Occupied returns the page's occupancy bitmap.
func (r *PageRef[T]) Occupied() uint64 { return r.mustPage().header.allocated }

// Ready returns the page's per-slot readiness bitmap.
func (r *PageRef[T]) Ready() uint64 { return r.mustPage().header.ready }

// RefCount returns the number of outstanding handles to the page.
func (r *PageRef[T]) RefCount() int { return int(r.mustPage().header.refcount) }
