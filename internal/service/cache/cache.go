package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL. Staged
// dashboard payloads and finished report exports both live behind it.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
}
