//go:build alock_cachelinesize_256

package opt

// CacheLineSize_ pinned to 256 bytes via build tag.
const CacheLineSize_ = 256
