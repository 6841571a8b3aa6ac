package shard

import "runtime"

const (
	offset32 = 2166136261
	prime32  = 16777619
)

// Index maps key onto [0, n) with FNV-1a.
func Index(key string, n int) int {
	if n <= 1 {
		return 0
	}
	h := uint32(offset32)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= prime32
	}
	return int(h % uint32(n))
}

// Count returns n, or a CPU-scaled default when n <= 0.
func Count(n int) int {
	if n > 0 {
		return n
	}
	return runtime.NumCPU() * 4
}
