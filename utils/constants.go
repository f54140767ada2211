package utils

import "time"

// AuthCachePrefix is the prefix used for Redis authorization cache keys.
const AuthCachePrefix = "auth:"

// AuthCacheTTL is the time-to-live for authorization cache entries.
const AuthCacheTTL = 10 * time.Minute

// SlotCachePrefix prefixes cached open-slot lists, keyed by dentist and date.
const SlotCachePrefix = "slots:"

// BookingLockPrefix prefixes the per dentist and date booking lock.
const BookingLockPrefix = "lock:booking:"

// CallerKey is the gin context key holding the request's access.Decision.
const CallerKey = "caller"
