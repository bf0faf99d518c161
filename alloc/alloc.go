package alloc

import "unsafe"

// Allocator hands out raw blocks. Dealloc must receive a pointer previously
// returned by Alloc of the same allocator.
type Allocator interface {
	Alloc(ln int) unsafe.Pointer
	Dealloc(ptr unsafe.Pointer)
}

type Stats struct {
	TotalAlloc int `json:"total_alloc"`
	TotalFree  int `json:"total_free"`
	Chunks     int `json:"chunks"`
	FreeChunks int `json:"free_chunks"`
}
