package slab

import (
	"log/slog"

	"github.com/bits-and-blooms/bitset"
)

// Root is the shared state of an arena: its pages, the index of pages with
// free slots, and the page-level readiness index. It is only reachable
// through RootRef handles.
type Root[T any] struct {
	refcount refCount
	backRefs int // handles held by this root's own pages

	pages     []*PageRef[T]
	freePages *bitset.BitSet
	ready     *bitset.BitSet
	layout    Layout
	live      int

	borrowed bool
	closing  bool
	log      *slog.Logger
}

// RootRef is a counted handle to an arena. All arena operations go through
// a RootRef.
type RootRef[T any] struct {
	root *Root[T]
}

// New returns a handle to an empty arena for elements of type T.
func New[T any]() *RootRef[T] {
	return NewWithOptions[T](Options{})
}

// NewWithOptions returns a handle to an empty arena configured by opts.
// It panics if T cannot be stored in a page; see LayoutFor.
func NewWithOptions[T any](opts Options) *RootRef[T] {
	r := &Root[T]{
		refcount:  1,
		freePages: bitset.New(0),
		ready:     bitset.New(0),
		layout:    LayoutFor[T](),
		log:       opts.logger(),
	}
	h := &RootRef[T]{root: r}
	for i := 0; i < opts.InitialPages; i++ {
		h.addPage(r)
	}
	return h
}

func (h *RootRef[T]) mustRoot() *Root[T] {
	if h == nil || h.root == nil {
		panic(ErrReleased)
	}
	return h.root
}

// enter marks the arena as in use for the duration of one operation.
func (h *RootRef[T]) enter() *Root[T] {
	r := h.mustRoot()
	if r.borrowed {
		panic(ErrReentrant)
	}
	r.borrowed = true
	return r
}

func (r *Root[T]) exit() {
	r.borrowed = false
}

// Clone returns a new handle to the same arena.
func (h *RootRef[T]) Clone() *RootRef[T] {
	r := h.mustRoot()
	r.refcount.retain()
	return &RootRef[T]{root: r}
}

// Release drops this handle. When only the arena's own pages still
// reference it, the arena closes: each page handle it owns is released,
// tearing down pages nobody else holds. The root's bookkeeping is freed
// once the last handle, including those held by pages, is gone.
func (h *RootRef[T]) Release() {
	r := h.mustRoot()
	if r.borrowed && !r.closing && int(r.refcount)-1 == r.backRefs {
		panic(ErrReentrant)
	}
	h.root = nil
	if r.refcount.release() {
		r.free()
		return
	}
	if !r.closing && int(r.refcount) == r.backRefs {
		r.close()
	}
}

func (h *RootRef[T]) cloneBackRef() *RootRef[T] {
	c := h.Clone()
	c.root.backRefs++
	return c
}

func (h *RootRef[T]) releaseBackRef() {
	h.mustRoot().backRefs--
	h.Release()
}

func (r *Root[T]) close() {
	r.closing = true
	pages := r.pages
	r.pages = nil
	r.freePages.ClearAll()
	r.log.Debug("slab: closing arena", "pages", len(pages), "live", r.live)
	for _, p := range pages {
		p.Release()
	}
}

func (r *Root[T]) free() {
	r.log.Debug("slab: arena released")
	r.pages = nil
	r.freePages = nil
	r.ready = nil
	r.live = 0
}

// AddPage appends an empty page and returns its index.
func (h *RootRef[T]) AddPage() int {
	r := h.enter()
	defer r.exit()
	return h.addPage(r)
}

func (h *RootRef[T]) addPage(r *Root[T]) int {
	ix := len(r.pages)
	r.pages = append(r.pages, newPage(h.cloneBackRef(), ix, r.layout))
	r.freePages.Set(uint(ix))
	reserve(r.ready, uint(ix+1))
	r.log.Debug("slab: page added", "page", ix, "pages", len(r.pages))
	return ix
}

// reserve grows b to hold at least n bits without setting any.
func reserve(b *bitset.BitSet, n uint) {
	if n == 0 || b.Len() >= n {
		return
	}
	b.Set(n - 1)
	b.Clear(n - 1)
}

// Page returns a new handle to page ix, or false if there is no such page.
// The handle keeps the page, its elements and the arena alive until released.
func (h *RootRef[T]) Page(ix int) (*PageRef[T], bool) {
	r := h.enter()
	defer r.exit()
	if ix < 0 || ix >= len(r.pages) {
		return nil, false
	}
	return r.pages[ix].Clone(), true
}

// Layout returns the page layout used by this arena.
func (h *RootRef[T]) Layout() Layout {
	return h.mustRoot().layout
}
