package cache

import (
	"context"
	"errors"
	"time"

	pkgcache "GlucoPulse/pkg/cache"
)

// ServiceCache adapts a pkg/cache Service (redis, memory, or layered) to the
// BytesCache API used by the handlers and the export job.
type ServiceCache struct {
	svc pkgcache.Service
}

func NewServiceCache(svc pkgcache.Service) *ServiceCache { return &ServiceCache{svc: svc} }

func (s *ServiceCache) GetBytes(key string) ([]byte, bool, error) {
	var b []byte
	if err := s.svc.Get(context.Background(), key, &b); err != nil {
		if errors.Is(err, pkgcache.ErrCacheMiss) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return b, true, nil
}

func (s *ServiceCache) SetBytes(key string, value []byte, ttl time.Duration) error {
	return s.svc.Set(context.Background(), key, value, ttl)
}

func (s *ServiceCache) Delete(key string) error {
	return s.svc.Delete(context.Background(), key)
}
