//go:build linux

package alloc

import (
	"log"
	"unsafe"

	"golang.org/x/sys/unix"
)

func mapSlab(size int) []byte {
	slab, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS)
	if err != nil {
		log.Fatal(err)
	}
	return slab
}

// munmap releases part of a slab. unix.Munmap only accepts whole mappings,
// so the syscall is issued directly.
func munmap(b []byte) error {
	_, _, errno := unix.Syscall(unix.SYS_MUNMAP, uintptr(unsafe.Pointer(&b[0])), uintptr(len(b)), 0)
	if errno != 0 {
		return errno
	}
	return nil
}
