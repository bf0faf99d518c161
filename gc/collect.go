package gc

import "slices"

// Collect frees every record whose count is zero and reports whether
// anything was freed.
//
// Garbage is unlinked under the lock and freed after it is dropped, so a
// deallocator may release Pointers of this or any other registry. Sweeping
// repeats until a pass finds nothing, which picks up records those
// deallocators brought to zero.
func (r *Registry[T]) Collect() bool {
	freed := false
	for {
		garbage := r.takeGarbage()
		if len(garbage) == 0 {
			return freed
		}
		freed = true
		for _, rec := range garbage {
			r.free(rec)
		}
	}
}

// takeGarbage unlinks zero-count records, oldest first.
func (r *Registry[T]) takeGarbage() []*Record {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sweeps.Add(1)
	var garbage []*Record
	for addr, rec := range r.records {
		if !rec.garbage() {
			continue
		}
		garbage = append(garbage, rec)
		delete(r.records, addr)
	}
	slices.SortFunc(garbage, func(a, b *Record) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return garbage
}

func (r *Registry[T]) free(rec *Record) {
	if rec.Addr == nil {
		return
	}
	p := (*T)(rec.Addr)
	if rec.IsArray {
		r.logf("free array %p len %d", rec.Addr, rec.Len)
		r.dealloc.FreeArray(p, rec.Len)
		r.freedArray.Add(1)
	} else {
		r.logf("free %p", rec.Addr)
		r.dealloc.Free(p)
		r.freedScalar.Add(1)
	}
}
