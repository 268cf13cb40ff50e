package slab

import "math"

// refCount is a non-atomic handle count. Handles are owned by a single
// goroutine; see the package documentation.
type refCount int

func (c *refCount) retain() {
	switch *c {
	case 0:
		panic(ErrBadRefCount)
	case math.MaxInt:
		panic(ErrRefCountOverflow)
	}
	*c++
}

// release reports whether the count dropped to zero.
func (c *refCount) release() bool {
	if *c <= 0 {
		panic(ErrBadRefCount)
	}
	*c--
	return *c == 0
}
