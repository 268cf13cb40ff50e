package slab

import "fmt"

// Key identifies a live element by page and slot. A key stays valid, and
// keeps addressing the same storage, until the element is freed.
type Key struct {
	Page int
	Slot int
}

func (k Key) String() string {
	return fmt.Sprintf("%d:%d", k.Page, k.Slot)
}

// Allocate stores v in the lowest free slot of the lowest page with free
// space, adding a page when every page is full.
func (h *RootRef[T]) Allocate(v T) Key {
	r := h.enter()
	defer r.exit()

	ix, ok := r.freePages.NextSet(0)
	fresh := !ok
	if fresh {
		ix = uint(h.addPage(r))
	}
	slot, full := r.pages[ix].page.allocate(v)
	if full {
		if fresh && r.layout.NumValues > 1 {
			panic(ErrFreshPageFull)
		}
		r.freePages.Clear(ix)
	}
	r.live++
	return Key{Page: int(ix), Slot: slot}
}

// Free destroys the element at k. It reports false if k does not name a live
// element, which includes keys that were already freed.
func (h *RootRef[T]) Free(k Key) bool {
	r := h.enter()
	defer r.exit()

	if k.Page < 0 || k.Page >= len(r.pages) {
		return false
	}
	p := r.pages[k.Page].page
	v, ok := p.vacate(k.Slot)
	if !ok {
		return false
	}
	r.live--
	if !r.freePages.Test(uint(k.Page)) {
		r.freePages.Set(uint(k.Page))
	}
	if p.header.ready == 0 {
		r.ready.Clear(uint(k.Page))
	}
	// Indexes are final before Drop runs.
	dropValue(v)
	return true
}

// Get returns a pointer to the element at k, or false if k does not name a
// live element. The pointer is stable until the element is freed.
func (h *RootRef[T]) Get(k Key) (*T, bool) {
	r := h.enter()
	defer r.exit()

	if k.Page < 0 || k.Page >= len(r.pages) {
		return nil, false
	}
	return r.pages[k.Page].page.Get(k.Slot)
}
