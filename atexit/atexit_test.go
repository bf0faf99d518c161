package atexit_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funny-falcon/refgc/atexit"
)

func TestRunOnceInReverse(t *testing.T) {
	var h atexit.Hooks
	var order []string
	for _, name := range []string{"a", "b", "c"} {
		name := name
		require.True(t, h.Register(name, func() { order = append(order, name) }))
	}
	require.Equal(t, 3, h.Pending())
	require.Equal(t, []string{"c", "b", "a"}, h.Names())

	h.Run()
	h.Run()
	require.Equal(t, []string{"c", "b", "a"}, order)
	require.Zero(t, h.Pending())
	require.False(t, h.Register("late", func() { t.Fatal("late hook ran") }))
	h.Run()
}

func TestRunConcurrent(t *testing.T) {
	var h atexit.Hooks
	var mu sync.Mutex
	calls := 0
	h.Register("count", func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Run()
		}()
	}
	wg.Wait()
	require.Equal(t, 1, calls)
}
