package slab

import "math/bits"

// Readiness is bookkeeping for a scheduler built on top of the arena: the
// arena never sets or clears ready bits from Allocate or Get. Free clears
// the freed slot's bit so a recycled slot never starts out ready.

// MarkReady flags the element at k as needing attention. It reports false
// if k does not name a live element.
func (h *RootRef[T]) MarkReady(k Key) bool {
	r := h.enter()
	defer r.exit()

	if k.Page < 0 || k.Page >= len(r.pages) {
		return false
	}
	if !r.pages[k.Page].page.markReady(k.Slot) {
		return false
	}
	r.ready.Set(uint(k.Page))
	return true
}

// IsReady reports whether the element at k is flagged ready.
func (h *RootRef[T]) IsReady(k Key) bool {
	r := h.enter()
	defer r.exit()

	if k.Page < 0 || k.Page >= len(r.pages) {
		return false
	}
	p := r.pages[k.Page].page
	return p.occupied(k.Slot) && p.header.ready&(uint64(1)<<uint(k.Slot)) != 0
}

// ReadyPages returns, in ascending order, the pages with at least one live
// slot flagged since the page was last drained.
func (h *RootRef[T]) ReadyPages() []int {
	r := h.enter()
	defer r.exit()

	var out []int
	for i, ok := r.ready.NextSet(0); ok; i, ok = r.ready.NextSet(i + 1) {
		out = append(out, int(i))
	}
	return out
}

// TakeReady clears every ready flag on page ix and returns the keys of the
// live elements that were flagged, lowest slot first.
func (h *RootRef[T]) TakeReady(ix int) []Key {
	r := h.enter()
	defer r.exit()

	if ix < 0 || ix >= len(r.pages) {
		return nil
	}
	r.ready.Clear(uint(ix))
	ready := r.pages[ix].page.takeReady()
	keys := make([]Key, 0, bits.OnesCount64(ready))
	for ready != 0 {
		keys = append(keys, Key{Page: ix, Slot: bits.TrailingZeros64(ready)})
		ready &= ready - 1
	}
	return keys
}
