package database

import (
	"github.com/bradfitz/gomemcache/memcache"
)

// NewMemcached dials the memcached instance that holds the rendered home
// page aggregate.
func NewMemcached(addr string) *memcache.Client {
	return memcache.New(addr)
}
