package alloc

import (
	"fmt"
	"log"
	"sync"
	"unsafe"
)

// headerSize bytes precede every block; the low 4 of them hold the block
// size. The first headerSize bytes of a chunk hold its free counter.
const headerSize = 8

// MaxAlloc is the largest block Simple can serve.
const MaxAlloc = ChunkSize - 2*headerSize

// Simple is a bump allocator over chunks. A chunk returns to the free list
// once every block in it has been deallocated.
type Simple struct {
	Base
	sync.Mutex
	Cur        chunk
	Free       []chunk
	TotalFree  int
	TotalAlloc int
	Log        string
}

type chunk struct {
	chunk uintptr
	off   uintptr
	free  *int
}

func (s *Simple) Alloc(ln int) unsafe.Pointer {
	s.Lock()
	defer s.Unlock()
	return s.alloc(ln)
}

func (s *Simple) alloc(ln int) unsafe.Pointer {
	if ln < 0 || ln > MaxAlloc {
		panic(fmt.Sprintf("alloc: block of %d bytes does not fit a chunk", ln))
	}
	n := headerSize + (ln+headerSize-1)&^(headerSize-1)
	if s.Cur.free == nil || int(s.Cur.off)+n > ChunkSize {
		if s.Cur.free != nil {
			*s.Cur.free += headerSize
			if *s.Cur.free == ChunkSize {
				s.Cur.off = headerSize
				s.Free = append(s.Free, s.Cur)
			}
		}
		if len(s.Free) > 0 {
			s.Cur = s.Free[len(s.Free)-1]
			s.Free = s.Free[:len(s.Free)-1]
			*s.Cur.free = ChunkSize - headerSize
		} else {
			s.Cur.chunk = uintptr(unsafe.Pointer(s.Base.ExtendChunks()))
			if s.Log != "" {
				fmt.Printf("%p chunk %s\n", unsafe.Pointer(s.Cur.chunk), s.Log)
			}
			if s.Cur.chunk&ChunkMask != 0 {
				panic("alloc: misaligned chunk")
			}
			s.Cur.off = headerSize
			s.Cur.free = (*int)(unsafe.Pointer(s.Cur.chunk))
			*s.Cur.free = ChunkSize - headerSize
			s.TotalFree += ChunkSize - headerSize
		}
	}
	res := s.Cur.chunk + s.Cur.off + headerSize
	*(*uint32)(unsafe.Pointer(res - 4)) = uint32(n)
	s.Cur.off += uintptr(n)
	*s.Cur.free -= n
	s.TotalAlloc += n
	s.TotalFree -= n
	if s.Log != "" {
		fmt.Printf("%p alloc %d %s\n", unsafe.Pointer(res), n, s.Log)
	}
	return unsafe.Pointer(res)
}

func (s *Simple) Dealloc(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	s.Lock()
	defer s.Unlock()
	s.dealloc(ptr)
}

func (s *Simple) dealloc(ptr unsafe.Pointer) {
	up := uintptr(ptr)
	sz := *(*uint32)(unsafe.Pointer(up - 4))
	s.TotalFree += int(sz)
	s.TotalAlloc -= int(sz)
	chunkp := up &^ ChunkMask
	freep := (*int)(unsafe.Pointer(chunkp))
	*freep += int(sz)
	if s.Log != "" {
		fmt.Printf("%p dealloc %s\n", ptr, s.Log)
	}
	if *freep == ChunkSize {
		s.Free = append(s.Free, chunk{
			chunk: chunkp,
			off:   headerSize,
			free:  freep,
		})
	}
}

// BlockSize reports the usable size of a block returned by Alloc.
func (s *Simple) BlockSize(ptr unsafe.Pointer) int {
	return int(*(*uint32)(unsafe.Pointer(uintptr(ptr) - 4))) - headerSize
}

func (s *Simple) ChunkSpace(ptr unsafe.Pointer) int {
	chunkp := uintptr(ptr) &^ ChunkMask
	return *(*int)(unsafe.Pointer(chunkp))
}

// FreeFree unmaps chunks sitting on the free list.
func (s *Simple) FreeFree() {
	s.Lock()
	defer s.Unlock()
	for _, free := range s.Free {
		c := (*Chunk)(unsafe.Pointer(free.chunk))
		if err := munmap(c[:]); err != nil {
			log.Fatal(err)
		}
		s.TotalFree -= ChunkSize - headerSize
		s.dropChunk(c)
	}
	s.Free = nil
}

func (s *Simple) dropChunk(c *Chunk) {
	for i, ch := range s.Chunks {
		if ch == c {
			s.Chunks = append(s.Chunks[:i], s.Chunks[i+1:]...)
			return
		}
	}
}

func (s *Simple) Stats() Stats {
	s.Lock()
	defer s.Unlock()
	return Stats{
		TotalAlloc: s.TotalAlloc,
		TotalFree:  s.TotalFree,
		Chunks:     len(s.Chunks),
		FreeChunks: len(s.Free),
	}
}
