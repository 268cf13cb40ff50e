package slab

// Live returns the number of elements currently stored in the arena.
func (h *RootRef[T]) Live() int {
	return h.mustRoot().live
}

// NumPages returns the number of pages the arena has added.
func (h *RootRef[T]) NumPages() int {
	return len(h.mustRoot().pages)
}

// SlotsPerPage returns the number of usable slots in each page.
func (h *RootRef[T]) SlotsPerPage() int {
	return h.mustRoot().layout.NumValues
}

// Capacity returns the total number of slots across all pages.
func (h *RootRef[T]) Capacity() int {
	r := h.mustRoot()
	return len(r.pages) * r.layout.NumValues
}

// FreePages returns the number of pages with at least one free slot.
func (h *RootRef[T]) FreePages() int {
	return int(h.mustRoot().freePages.Count())
}

// Utilization returns the ratio of live elements to capacity (0.0 to 1.0).
// Returns 0.0 if the arena has no pages.
func (h *RootRef[T]) Utilization() float64 {
	capacity := h.Capacity()
	if capacity == 0 {
		return 0
	}
	return float64(h.Live()) / float64(capacity)
}

// RefCount returns the number of outstanding handles to the arena,
// including the one held by each page.
func (h *RootRef[T]) RefCount() int {
	return int(h.mustRoot().refcount)
}

// Metrics returns a snapshot of arena statistics.
func (h *RootRef[T]) Metrics() SlabMetrics {
	r := h.mustRoot()
	return SlabMetrics{
		Live:         r.live,
		Capacity:     h.Capacity(),
		NumPages:     len(r.pages),
		FreePages:    h.FreePages(),
		SlotsPerPage: r.layout.NumValues,
		Bytes:        len(r.pages) * r.layout.Size,
		SlotBytes:    len(r.pages) * r.layout.NumValues * r.layout.ElemSize,
		RefCount:     int(r.refcount),
		PageRefs:     r.backRefs,
		Utilization:  h.Utilization(),
	}
}

// SlabMetrics contains statistical information about an arena.
type SlabMetrics struct {
	Live         int     `json:"live"`           // Elements currently stored
	Capacity     int     `json:"capacity"`       // Slots across all pages
	NumPages     int     `json:"num_pages"`      // Pages added
	FreePages    int     `json:"free_pages"`     // Pages with a free slot
	SlotsPerPage int     `json:"slots_per_page"` // Usable slots per page
	Bytes        int     `json:"bytes"`          // Modelled page footprint, NumPages * PageSize
	SlotBytes    int     `json:"slot_bytes"`     // Element storage actually held, NumPages * SlotsPerPage * elem size
	RefCount     int     `json:"ref_count"`      // Arena handles, page-held ones included
	PageRefs     int     `json:"page_refs"`      // Arena handles held by pages
	Utilization  float64 `json:"utilization"`    // Ratio of Live to Capacity (0.0-1.0)
}
