//go:build !linux

package alloc

// Without anonymous mmap slabs come from the Go heap. Chunks stay
// referenced from Base.Chunks, so the collector never moves or frees them.
func mapSlab(size int) []byte {
	return make([]byte, size)
}

func munmap(b []byte) error {
	return nil
}
