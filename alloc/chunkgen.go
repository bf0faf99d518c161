package alloc

import (
	"sync"
	"unsafe"
)

const SlabSize = 1 << 24
const ChunkSizeShift = 18
const ChunkSize = 1 << ChunkSizeShift
const ChunkMask = ChunkSize - 1

type Chunk [ChunkSize]byte

// ChunkGen carves ChunkSize-aligned chunks out of large slabs.
type ChunkGen struct {
	sync.Mutex
	CurSlab    []byte
	TotalAlloc int
}

func (g *ChunkGen) Gen() *Chunk {
	g.Lock()
	defer g.Unlock()
	if len(g.CurSlab) == 0 {
		slab := mapSlab(SlabSize + ChunkSize)
		g.TotalAlloc += len(slab)
		off := int(-uintptr(unsafe.Pointer(&slab[0])) & ChunkMask)
		g.CurSlab = slab[off : off+SlabSize]
	}
	res := (*Chunk)(unsafe.Pointer(&g.CurSlab[0]))
	g.CurSlab = g.CurSlab[ChunkSize:]
	return res
}

var ChunkGenerator ChunkGen

type Base struct {
	Chunks []*Chunk
}

func (b *Base) ExtendChunks() *Chunk {
	chunk := ChunkGenerator.Gen()
	b.Chunks = append(b.Chunks, chunk)
	return chunk
}
