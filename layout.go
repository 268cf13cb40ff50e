package slab

import (
	"fmt"
	"unsafe"
)

const (
	// PageSize is the size in bytes of every page.
	PageSize = 4096

	// PageAlign is the alignment a page would need for its base address to be
	// recovered from an element address by masking.
	PageAlign = 4096

	// MaxSlotsPerPage bounds the slot count by the width of the occupancy bitmap.
	MaxSlotsPerPage = 64
)

// Layout describes how a page is carved up for one element type.
type Layout struct {
	Size       int // bytes per page
	Align      int // page alignment
	HeaderSize int // bytes used by the page header
	Padding    int // bytes between header and first slot
	ElemSize   int
	ElemAlign  int
	Fit        int // slots that physically fit after the header
	NumValues  int // usable slots: Fit capped at MaxSlotsPerPage
}

// LayoutFor computes the page layout for elements of type T.
// It panics if T has zero size or does not fit in a page.
func LayoutFor[T any]() Layout {
	var (
		hdr  pageHeader[T]
		elem T
	)
	return computeLayout(
		int(unsafe.Sizeof(hdr)), int(unsafe.Alignof(hdr)),
		int(unsafe.Sizeof(elem)), int(unsafe.Alignof(elem)),
	)
}

func computeLayout(headerSize, headerAlign, elemSize, elemAlign int) Layout {
	if headerAlign > PageSize {
		panic(fmt.Errorf("%w: align %d", ErrHeaderTooAligned, headerAlign))
	}
	if elemSize <= 0 {
		panic(ErrZeroSizedElem)
	}

	padding := paddingFor(headerSize, elemAlign)
	if headerSize+padding+elemSize > PageSize {
		panic(fmt.Errorf("%w: element size %d, header %d", ErrNoSlotFits, elemSize, headerSize+padding))
	}

	fit := (PageSize - (headerSize + padding)) / elemSize
	return Layout{
		Size:       PageSize,
		Align:      PageAlign,
		HeaderSize: headerSize,
		Padding:    padding,
		ElemSize:   elemSize,
		ElemAlign:  elemAlign,
		Fit:        fit,
		NumValues:  min(fit, MaxSlotsPerPage),
	}
}

// paddingFor returns the bytes needed after off to reach a multiple of align.
func paddingFor(off, align int) int {
	if align <= 1 {
		return 0
	}
	return (align - off%align) % align
}

// fullMask returns the occupancy bitmap of a page with every usable slot taken.
func (l Layout) fullMask() uint64 {
	if l.NumValues >= 64 {
		return ^uint64(0)
	}
	return uint64(1)<<uint(l.NumValues) - 1
}

// Wasted returns the bytes of a page not used by the header or usable slots.
func (l Layout) Wasted() int {
	return l.Size - l.HeaderSize - l.Padding - l.NumValues*l.ElemSize
}
