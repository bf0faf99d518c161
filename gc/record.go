package gc

import "unsafe"

// Record describes one tracked allocation. A registry keys records by
// Addr, so two records are the same allocation iff their addresses match.
type Record struct {
	Addr    unsafe.Pointer
	Refs    uint32
	IsArray bool
	// Len is meaningful only when IsArray is set.
	Len int

	seq uint64
}

// newRecord counts its creator as the first reference.
func newRecord(addr unsafe.Pointer, shape Shape, seq uint64) *Record {
	r := &Record{Addr: addr, Refs: 1, seq: seq}
	if shape.array && shape.n > 0 {
		r.IsArray = true
		r.Len = shape.n
	}
	return r
}

func (r *Record) retain() {
	r.Refs++
}

// release never takes the count below zero.
func (r *Record) release() {
	if r.Refs > 0 {
		r.Refs--
	}
}

func (r *Record) garbage() bool {
	return r.Refs == 0
}
