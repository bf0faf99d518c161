// Package gc tracks manually allocated memory with reference counts and
// frees it once no Pointer refers to it.
//
// A Registry holds one Record per tracked address for a single (element
// type, Shape) pair. Pointers attach to records on Track, Clone, Reset and
// Assign and detach on Release. Release also sweeps the registry, freeing
// every record whose count has dropped to zero through the registry's
// Deallocator. Cycles are never reclaimed.
//
// A Heap groups registries so that each (type, shape) pair gets exactly one.
package gc
