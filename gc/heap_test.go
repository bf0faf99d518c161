package gc_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/funny-falcon/refgc/atexit"
	"github.com/funny-falcon/refgc/gc"
)

func TestHeapOneRegistryPerKey(t *testing.T) {
	h := gc.NewHeap()
	a, err := gc.RegistryFor[int](h, gc.Scalar(), newRecorder[int]())
	require.NoError(t, err)
	b, err := gc.RegistryFor[int](h, gc.Scalar(), newRecorder[int]())
	require.NoError(t, err)
	require.Same(t, a, b)

	arr5, err := gc.RegistryFor[int](h, gc.Array(5), newRecorder[int]())
	require.NoError(t, err)
	arr6, err := gc.RegistryFor[int](h, gc.Array(6), newRecorder[int]())
	require.NoError(t, err)
	f, err := gc.RegistryFor[float64](h, gc.Scalar(), newRecorder[float64]())
	require.NoError(t, err)
	require.Equal(t, 4, h.Len())

	_, err = gc.RegistryFor[int](h, gc.Array(0), newRecorder[int]())
	require.ErrorIs(t, err, gc.ErrBadShape)
	require.Equal(t, 4, h.Len())

	require.NotSame(t, arr5, arr6)
	require.Equal(t, gc.Scalar(), f.Shape())
}

func TestHeapRegistriesAreIndependent(t *testing.T) {
	h := gc.NewHeap()
	intRec, floatRec, arrRec := newRecorder[int](), newRecorder[float64](), newRecorder[int]()
	ints, err := gc.RegistryFor[int](h, gc.Scalar(), intRec)
	require.NoError(t, err)
	floats, err := gc.RegistryFor[float64](h, gc.Scalar(), floatRec)
	require.NoError(t, err)
	arrs, err := gc.RegistryFor[int](h, gc.Array(2), arrRec)
	require.NoError(t, err)

	x := new(int)
	px := ints.Track(x)
	arr := []int{1, 2}
	pa := arrs.Track(&arr[0])
	pf := floats.Track(new(float64))
	require.Equal(t, 3, h.Size())

	// the same address in another registry gets its own record
	shared := arrs.Track(x)
	require.EqualValues(t, 1, refs(t, ints, x))
	require.EqualValues(t, 1, refs(t, arrs, x))

	pf.Release()
	require.Equal(t, 1, floatRec.total())
	require.Zero(t, intRec.total())
	require.Zero(t, arrRec.total())
	require.Equal(t, 1, ints.Size())
	require.Equal(t, 2, arrs.Size())

	shared.Release()
	require.Equal(t, 1, arrRec.array[x])
	require.Zero(t, intRec.frees(x))
	require.EqualValues(t, 1, refs(t, ints, x))

	px.Reset(nil)
	require.True(t, h.Collect())
	require.Equal(t, 1, intRec.scalar[x])
	pa.Release()
	require.Zero(t, h.Size())
}

func TestHeapShutdownWithExitHooks(t *testing.T) {
	var hooks atexit.Hooks
	h := gc.NewHeap(gc.WithExitHooks(&hooks))
	ints, err := gc.RegistryFor[int](h, gc.Scalar(), newRecorder[int]())
	require.NoError(t, err)
	arrs, err := gc.RegistryFor[int](h, gc.Array(3), newRecorder[int]())
	require.NoError(t, err)

	ints.Track(new(int))
	arrs.Track(&make([]int, 3)[0])
	require.Equal(t, []string{"registry<int, array[3]>", "registry<int, scalar>"}, hooks.Names())

	hooks.Run()
	require.Zero(t, h.Size())
}

func TestHeapSnapshot(t *testing.T) {
	h := gc.NewHeap()
	ints, err := gc.RegistryFor[int64](h, gc.Scalar(), newRecorder[int64]())
	require.NoError(t, err)
	x := int64(42)
	p := ints.Track(&x)
	_, err = p.Clone()
	require.NoError(t, err)

	snaps := h.Snapshot()
	require.Len(t, snaps, 1)
	snap := snaps[0]
	assert.Equal(t, "int64", snap.Type)
	assert.Equal(t, "scalar", snap.Shape)
	assert.Equal(t, 8, snap.ElemSize)
	assert.Equal(t, 1, snap.Size)
	require.Len(t, snap.Records, 1)
	assert.EqualValues(t, 2, snap.Records[0].Refs)

	data, err := gc.MarshalSnapshot(snaps...)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"type":"int64"`)
	assert.Contains(t, string(data), `"refs":2`)
	back, err := gc.UnmarshalSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, snaps, back)

	var buf bytes.Buffer
	h.Dump(&buf)
	assert.Contains(t, buf.String(), "registry<int64, scalar>:")
	assert.Contains(t, buf.String(), " 2 42\n")

	h.Shutdown()
	buf.Reset()
	h.Dump(&buf)
	assert.Contains(t, buf.String(), "empty")
	assert.EqualValues(t, 1, h.Snapshot()[0].FreedScalar)
}
