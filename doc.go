// Package chunkmap implements a generic, single-threaded, chunked and
// tagged hash table. Storage is split into fixed-size 64-slot chunks, each
// holding one metadata byte per slot (EMPTY, DELETED, or a 7-bit hash tag)
// scanned in parallel across four 16-byte lanes. Table is the default
// combined layout (keys and values interleaved per slot); SplitMap holds
// keys and values in separate arrays for workloads where that is denser.
package chunkmap
