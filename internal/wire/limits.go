package wire

import "time"

// Wire-level size and time bounds, per spec ("Lengths are bounded").
const (
	MaxRequestLineLength = 8 << 10  // 8 KiB
	MaxHeaderLineLength  = 8 << 10  // 8 KiB
	MaxHeaderTotalLength = 64 << 10 // 64 KiB

	DefaultIdleTimeout    = 30 * time.Second
	DefaultRequestTimeout = 10 * time.Second
)

// DefaultMaxBodyBytes is the fallback request-body cap when configuration
// does not override it.
const DefaultMaxBodyBytes = 32 << 20 // 32 MiB
