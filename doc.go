// Package slab implements a page-based slab allocator for long-lived,
// non-moving values such as per-task state in an asynchronous runtime.
//
// # Overview
//
// An arena stores elements of one type in fixed-size pages. Each page
// models a 4096-byte block: a small header followed by as many element
// slots as fit, capped at 64 so a single uint64 can track occupancy.
// Elements are addressed by a Key (page index, slot index) that stays
// valid until the element is freed, and an element never moves while it
// is alive.
//
// The arena keeps a bitset of pages that have at least one free slot.
// Allocation is first fit: the lowest such page, then the lowest free slot
// in that page. A new page is added only when every existing page is full.
//
// # Basic Usage
//
//	s := slab.New[Task]()
//	defer s.Release()
//
//	key := s.Allocate(Task{ID: 1})
//	t, ok := s.Get(key) // t stays at the same address until Free
//	s.Free(key)         // false if key was already freed
//
// # Handles
//
// RootRef and PageRef are counted handles. Clone adds a reference and
// Release drops one; a handle must not be used after Release. Every page
// holds a handle to its arena. When the last handle outside the arena is
// released, the arena releases its pages; pages that nobody else holds are
// torn down and their live elements destroyed. A page kept by an outside
// PageRef survives, with its elements, until that handle is released.
//
// Elements whose pointer type implements Dropper have Drop called when they
// are freed or torn down.
//
// # Readiness
//
// Each page carries a per-slot ready bitmap and the arena a per-page ready
// bitset. A scheduler sets them with MarkReady and drains them with
// ReadyPages and TakeReady; the allocator itself only clears a slot's bit
// when the slot is freed.
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent use. An arena and all of
// its handles belong to one goroutine. Starting an arena operation from
// inside another one, for example from a Drop method, panics with
// ErrReentrant.
//
// # Invariant Violations
//
// Broken invariants (a handle used after Release, a reference count
// overflow, an element type that cannot be laid out) panic with one of the
// Err values in this package. Stale or out-of-range keys are not errors:
// Get returns false and Free returns false.
package slab
