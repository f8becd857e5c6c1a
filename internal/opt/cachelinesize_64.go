//go:build alock_cachelinesize_64

package opt

// CacheLineSize_ pinned to 64 bytes via build tag.
const CacheLineSize_ = 64
