package slab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// task counts how many times it was destroyed.
type task struct {
	id    int
	drops *int
}

func (t *task) Drop() { *t.drops++ }

// wideTask fills a page with exactly four slots.
type wideTask struct {
	id  int64
	pad [1008]byte
}

func testPage[T any](t testing.TB) (*RootRef[T], *Page[T]) {
	t.Helper()
	s := New[T]()
	s.AddPage()
	return s, s.root.pages[0].page
}

func TestPageAllocateLowestFree(t *testing.T) {
	s, p := testPage[int](t)
	defer s.Release()

	for want := 0; want < 5; want++ {
		ix, full := p.allocate(want * 10)
		assert.Equal(t, want, ix)
		assert.False(t, full)
	}

	require.True(t, p.free(2))
	ix, _ := p.allocate(99)
	assert.Equal(t, 2, ix, "freed hole should be refilled first")

	v, ok := p.Get(2)
	require.True(t, ok)
	assert.Equal(t, 99, *v)
}

func TestPageReportsFull(t *testing.T) {
	s, p := testPage[wideTask](t)
	defer s.Release()

	require.Len(t, p.values, 4)
	for i := 0; i < 3; i++ {
		_, full := p.allocate(wideTask{id: int64(i)})
		assert.False(t, full)
	}
	ix, full := p.allocate(wideTask{id: 3})
	assert.Equal(t, 3, ix)
	assert.True(t, full)

	require.PanicsWithError(t, ErrPageFull.Error(), func() {
		p.allocate(wideTask{id: 4})
	})
}

func TestPageFullAt64(t *testing.T) {
	s, p := testPage[int64](t)
	defer s.Release()

	for i := 0; i < MaxSlotsPerPage-1; i++ {
		_, full := p.allocate(int64(i))
		require.False(t, full)
	}
	ix, full := p.allocate(63)
	assert.Equal(t, 63, ix)
	assert.True(t, full)
	assert.Equal(t, ^uint64(0), p.header.allocated)
	assert.Panics(t, func() { p.allocate(64) })
}

func TestPageFree(t *testing.T) {
	drops := 0
	s, p := testPage[task](t)
	defer s.Release()

	ix, _ := p.allocate(task{id: 7, drops: &drops})

	assert.True(t, p.free(ix))
	assert.Equal(t, 1, drops)
	assert.Equal(t, task{}, p.values[ix], "freed slot should be zeroed")

	assert.False(t, p.free(ix), "double free is a no-op")
	assert.Equal(t, 1, drops)

	assert.False(t, p.free(-1))
	assert.False(t, p.free(MaxSlotsPerPage))
	assert.False(t, p.free(1000))
}

func TestPageGet(t *testing.T) {
	s, p := testPage[string](t)
	defer s.Release()

	ix, _ := p.allocate("hello")

	v, ok := p.Get(ix)
	require.True(t, ok)
	assert.Equal(t, "hello", *v)

	for _, bad := range []int{-1, ix + 1, 64, 1 << 20} {
		v, ok := p.Get(bad)
		assert.False(t, ok, "Get(%d)", bad)
		assert.Nil(t, v)
	}
}

func TestPageTeardownSparse(t *testing.T) {
	drops := 0
	s, p := testPage[task](t)

	var keep []int
	for i := 0; i < 40; i++ {
		ix, _ := p.allocate(task{id: i, drops: &drops})
		keep = append(keep, ix)
	}
	freed := 0
	for _, ix := range keep {
		if ix%3 != 0 {
			require.True(t, p.free(ix))
			freed++
		}
	}
	require.Equal(t, freed, drops)

	live := 40 - freed
	s.Release()
	assert.Equal(t, freed+live, drops, "each live element destroyed exactly once")
	assert.Nil(t, p.values)
	assert.Zero(t, p.header.allocated)
	assert.Nil(t, p.header.owner)
}

func TestPageRefCounting(t *testing.T) {
	drops := 0
	s := New[task]()
	k := s.Allocate(task{id: 1, drops: &drops})

	ref, ok := s.Page(k.Page)
	require.True(t, ok)
	assert.Equal(t, 2, ref.RefCount())

	clones := make([]*PageRef[task], 10)
	for i := range clones {
		clones[i] = ref.Clone()
	}
	assert.Equal(t, 12, ref.RefCount())
	for _, c := range clones {
		c.Release()
	}
	assert.Equal(t, 2, ref.RefCount())
	assert.Zero(t, drops)

	assert.Equal(t, 0, ref.Index())
	assert.Equal(t, 1, ref.Len())
	assert.Equal(t, s.SlotsPerPage(), ref.Cap())
	assert.False(t, ref.Full())
	assert.Equal(t, uint64(1), ref.Occupied())

	ref.Release()
	require.PanicsWithError(t, ErrReleased.Error(), func() { ref.Release() })
	require.PanicsWithError(t, ErrReleased.Error(), func() { ref.Clone() })

	s.Release()
	assert.Equal(t, 1, drops)
}
