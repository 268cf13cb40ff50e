package slab

import "errors"

// Every error below marks a broken allocator invariant. They are raised with
// panic, never returned: a caller that recovers from one is operating on
// corrupted state.
var (
	// ErrZeroSizedElem indicates a slab was requested for a zero-sized element type.
	ErrZeroSizedElem = errors.New("slab: element type has zero size")

	// ErrHeaderTooAligned indicates the page header needs more alignment than a page provides.
	ErrHeaderTooAligned = errors.New("slab: page header alignment exceeds page size")

	// ErrNoSlotFits indicates not even one element fits after the page header.
	ErrNoSlotFits = errors.New("slab: element does not fit in a page")

	// ErrPageFull indicates an allocation was attempted on a page with no free slot.
	ErrPageFull = errors.New("slab: allocate on full page")

	// ErrFreshPageFull indicates a newly added page reported full after its first allocation.
	ErrFreshPageFull = errors.New("slab: fresh page reported full")

	// ErrBadRefCount indicates a clone or release of a handle whose count is already zero.
	ErrBadRefCount = errors.New("slab: invalid reference count")

	// ErrRefCountOverflow indicates a clone would overflow the reference count.
	ErrRefCountOverflow = errors.New("slab: reference count overflow")

	// ErrReleased indicates use of a handle after Release.
	ErrReleased = errors.New("slab: use after Release()")

	// ErrReentrant indicates an arena operation was started while another was still running.
	ErrReentrant = errors.New("slab: reentrant arena access")
)
