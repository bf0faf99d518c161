package alloc_test

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funny-falcon/refgc/alloc"
)

type point struct {
	X, Y int64
}

func TestTypedNewIsZeroed(t *testing.T) {
	var al alloc.Simple
	typed := alloc.NewTyped[point](&al)

	p := typed.New()
	p.X, p.Y = 7, 9
	typed.Free(p)

	q := typed.New()
	assert.Equal(t, point{}, *q)
}

func TestTypedArray(t *testing.T) {
	var al alloc.Simple
	typed := alloc.NewTyped[int64](&al)

	arr := typed.NewArray(5)
	s := unsafe.Slice(arr, 5)
	for i := range s {
		s[i] = int64(i * i)
	}
	require.Equal(t, []int64{0, 1, 4, 9, 16}, s)
	require.GreaterOrEqual(t, al.BlockSize(unsafe.Pointer(arr)), 5*8)

	typed.FreeArray(arr, 5)
	scalar, array := typed.Frees()
	assert.Zero(t, scalar)
	assert.EqualValues(t, 1, array)
}

func TestGoHeapFrees(t *testing.T) {
	var heap alloc.GoHeap[point]
	p := heap.New()
	p.X = 3
	heap.Free(p)
	assert.Equal(t, point{}, *p)

	arr := heap.NewArray(3)
	unsafe.Slice(arr, 3)[2].Y = 5
	heap.FreeArray(arr, 3)
	assert.Equal(t, []point{{}, {}, {}}, unsafe.Slice(arr, 3))

	scalar, array := heap.Frees()
	assert.EqualValues(t, 1, scalar)
	assert.EqualValues(t, 1, array)
}

func TestNewArrayEmpty(t *testing.T) {
	var al alloc.Simple
	typed := alloc.NewTyped[int64](&al)
	assert.Nil(t, typed.NewArray(0))
	assert.Nil(t, typed.NewArray(-1))
	assert.Zero(t, al.Stats().TotalAlloc)

	var heap alloc.GoHeap[point]
	assert.Nil(t, heap.NewArray(0))
	assert.Nil(t, heap.NewArray(-3))
}
