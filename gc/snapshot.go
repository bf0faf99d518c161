package gc

import (
	"fmt"
	"io"
	"slices"

	jsoniter "github.com/json-iterator/go"
)

var jsonConfig = jsoniter.Config{
	OnlyTaggedField: true,
	CaseSensitive:   true,
}.Froze()

type RecordSnapshot struct {
	Addr    string `json:"addr"`
	Refs    uint32 `json:"refs"`
	IsArray bool   `json:"is_array"`
	Len     int    `json:"len,omitempty"`
}

type RegistrySnapshot struct {
	Type        string           `json:"type"`
	Shape       string           `json:"shape"`
	ElemSize    int              `json:"elem_size"`
	Size        int              `json:"size"`
	Attached    uint64           `json:"attached"`
	FreedScalar uint64           `json:"freed_scalar"`
	FreedArray  uint64           `json:"freed_array"`
	Sweeps      uint64           `json:"sweeps"`
	Records     []RecordSnapshot `json:"records"`
}

// sortedRecords returns the records in tracking order. Callers hold mu.
func (r *Registry[T]) sortedRecords() []*Record {
	recs := make([]*Record, 0, len(r.records))
	for _, rec := range r.records {
		recs = append(recs, rec)
	}
	slices.SortFunc(recs, func(a, b *Record) int {
		switch {
		case a.seq < b.seq:
			return -1
		case a.seq > b.seq:
			return 1
		}
		return 0
	})
	return recs
}

func (r *Registry[T]) Snapshot() RegistrySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := RegistrySnapshot{
		Type:        r.typ.String(),
		Shape:       r.shape.String(),
		ElemSize:    r.elemSize,
		Size:        len(r.records),
		Attached:    r.attached.Load(),
		FreedScalar: r.freedScalar.Load(),
		FreedArray:  r.freedArray.Load(),
		Sweeps:      r.sweeps.Load(),
		Records:     []RecordSnapshot{},
	}
	for _, rec := range r.sortedRecords() {
		snap.Records = append(snap.Records, RecordSnapshot{
			Addr:    fmt.Sprintf("%p", rec.Addr),
			Refs:    rec.Refs,
			IsArray: rec.IsArray,
			Len:     rec.Len,
		})
	}
	return snap
}

// Dump writes a table of the records and the value each address holds.
func (r *Registry[T]) Dump(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(w, "%v:\n", r)
	fmt.Fprintf(w, "addr refs value\n")
	if len(r.records) == 0 {
		fmt.Fprintf(w, "  empty\n\n")
		return
	}
	for _, rec := range r.sortedRecords() {
		fmt.Fprintf(w, "[%p] %d %v\n", rec.Addr, rec.Refs, r.typ.UnsafeIndirect(rec.Addr))
	}
	fmt.Fprintln(w)
}

// MarshalSnapshot encodes registry snapshots as JSON.
func MarshalSnapshot(snaps ...RegistrySnapshot) ([]byte, error) {
	return jsonConfig.Marshal(snaps)
}

func UnmarshalSnapshot(data []byte) ([]RegistrySnapshot, error) {
	var snaps []RegistrySnapshot
	err := jsonConfig.Unmarshal(data, &snaps)
	return snaps, err
}
