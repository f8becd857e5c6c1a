//go:build alock_cachelinesize_32

package opt

// CacheLineSize_ pinned to 32 bytes via build tag.
const CacheLineSize_ = 32
