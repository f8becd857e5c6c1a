//go:build alock_cachelinesize_128

package opt

// CacheLineSize_ pinned to 128 bytes via build tag.
const CacheLineSize_ = 128
