package gc_test

import "sync"

// recorder is a deallocator that only remembers what it was asked to free.
type recorder[T any] struct {
	mu     sync.Mutex
	scalar map[*T]int
	array  map[*T]int
	lens   map[*T]int
	order  []*T
}

func newRecorder[T any]() *recorder[T] {
	return &recorder[T]{
		scalar: map[*T]int{},
		array:  map[*T]int{},
		lens:   map[*T]int{},
	}
}

func (r *recorder[T]) Free(p *T) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.scalar[p]++
	r.order = append(r.order, p)
}

func (r *recorder[T]) FreeArray(p *T, n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.array[p]++
	r.lens[p] = n
	r.order = append(r.order, p)
}

func (r *recorder[T]) frees(p *T) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.scalar[p] + r.array[p]
}

func (r *recorder[T]) total() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.order)
}
